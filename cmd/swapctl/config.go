package main

import (
	"errors"
	"fmt"
	"sort"
	"time"

	httpinterface "github.com/swapdex/swapd/internal/interfaces/http"
	"github.com/urfave/cli/v2"
)

var config = cli.Command{
	Name:   "config",
	Usage:  "Print local configuration of the swapctl CLI",
	Action: configAction,
	Subcommands: []*cli.Command{
		{
			Name:   "set",
			Usage:  "set a <key> <value> in the local state",
			Action: configSetAction,
		},
		{
			Name:   "init",
			Usage:  "initialize the local state with flags",
			Action: configInitAction,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  urlKey,
					Usage: "swapd daemon url",
					Value: defaultURL,
				},
				&cli.StringFlag{
					Name:  tokenKey,
					Usage: "auth token, see the token command",
				},
				&cli.StringFlag{
					Name:  uidKey,
					Usage: "caller uid, used only if the daemon runs without auth",
				},
			},
		},
	},
}

var token = cli.Command{
	Name:  "token",
	Usage: "mint an auth token with the daemon secret and store it in the local state",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "secret",
			Usage:    "the secret of the daemon, ie. SWAPD_AUTH_SECRET",
			Required: true,
		},
		&cli.StringFlag{
			Name:     uidKey,
			Usage:    "the uid of the token owner",
			Required: true,
		},
		&cli.BoolFlag{
			Name:  "operator",
			Usage: "grant the operator role",
		},
		&cli.DurationFlag{
			Name:  "ttl",
			Usage: "validity of the token, 0 for no expiration",
			Value: 24 * time.Hour,
		},
	},
	Action: tokenAction,
}

func configAction(ctx *cli.Context) error {
	state, err := getState()
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(state))
	for key := range state {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Println(key + ": " + state[key])
	}

	return nil
}

func configInitAction(ctx *cli.Context) error {
	return setState(map[string]string{
		urlKey:   ctx.String(urlKey),
		tokenKey: ctx.String(tokenKey),
		uidKey:   ctx.String(uidKey),
	})
}

func configSetAction(ctx *cli.Context) error {
	if ctx.NArg() < 2 {
		return errors.New("key and value are missing")
	}

	key := ctx.Args().Get(0)
	value := ctx.Args().Get(1)

	if err := setState(map[string]string{key: value}); err != nil {
		return err
	}

	fmt.Printf("%s %s has been set\n", key, value)
	return nil
}

func tokenAction(ctx *cli.Context) error {
	role := ""
	if ctx.Bool("operator") {
		role = httpinterface.RoleOperator
	}

	uid := ctx.String(uidKey)
	tok, err := httpinterface.NewToken(
		ctx.String("secret"), uid, role, ctx.Duration("ttl"),
	)
	if err != nil {
		return err
	}

	if err := setState(map[string]string{tokenKey: tok, uidKey: uid}); err != nil {
		return err
	}

	fmt.Println(tok)
	return nil
}
