package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/urfave/cli/v2"
)

var open = cli.Command{
	Name:  "open",
	Usage: "submit your public swap info to a session",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "id",
			Usage:    "the id of the swap session",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "info",
			Usage:    "your public info as JSON, ie. '{\"address\":\"...\"}'",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "hash",
			Usage: "hex sha256 of the secret, if not given with the order",
		},
	},
	Action: openAction,
}

var commit = cli.Command{
	Name:  "commit",
	Usage: "submit your commit confirmation to a session",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "id",
			Usage:    "the id of the swap session",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "confirmation",
			Usage:    "your confirmation as JSON, ie. '{\"txid\":\"...\"}'",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "secret",
			Usage: "the hex preimage of the hash, only for the secret holder",
		},
	},
	Action: commitAction,
}

var abort = cli.Command{
	Name:  "abort",
	Usage: "abort a swap session you are part of",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "id",
			Usage:    "the id of the swap session",
			Required: true,
		},
	},
	Action: func(ctx *cli.Context) error {
		resp, err := doRequest(http.MethodDelete, "/api/v1/swap/"+ctx.String("id"), nil)
		if err != nil {
			return err
		}
		printRespJSON(resp)
		return nil
	},
}

var getswap = cli.Command{
	Name:  "getswap",
	Usage: "show a swap session",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "id",
			Usage:    "the id of the swap session",
			Required: true,
		},
		&cli.BoolFlag{
			Name:  "operator",
			Usage: "show the session with operator rights",
		},
	},
	Action: func(ctx *cli.Context) error {
		prefix := "/api/v1"
		if ctx.Bool("operator") {
			prefix += "/operator"
		}
		return getAndPrint(prefix + "/swap/" + ctx.String("id"))
	},
}

var listswaps = cli.Command{
	Name:  "listswaps",
	Usage: "list swap sessions",
	Flags: append([]cli.Flag{
		&cli.BoolFlag{
			Name:  "operator",
			Usage: "list the sessions of all parties",
		},
	}, pageFlags...),
	Action: func(ctx *cli.Context) error {
		prefix := "/api/v1"
		if ctx.Bool("operator") {
			prefix += "/operator"
		}
		return getAndPrint(prefix + "/swaps" + pageQuery(ctx))
	},
}

func openAction(ctx *cli.Context) error {
	info, err := parseRawJSON("info", ctx.String("info"))
	if err != nil {
		return err
	}

	body := map[string]interface{}{
		"id":         ctx.String("id"),
		"publicInfo": info,
	}
	if hash := ctx.String("hash"); hash != "" {
		body["secretHash"] = hash
	}

	resp, err := doRequest(http.MethodPut, "/api/v1/swap", body)
	if err != nil {
		return err
	}
	printRespJSON(resp)
	return nil
}

func commitAction(ctx *cli.Context) error {
	confirmation, err := parseRawJSON("confirmation", ctx.String("confirmation"))
	if err != nil {
		return err
	}

	body := map[string]interface{}{
		"id":           ctx.String("id"),
		"confirmation": confirmation,
	}
	if secret := ctx.String("secret"); secret != "" {
		body["secret"] = secret
	}

	resp, err := doRequest(http.MethodPost, "/api/v1/swap", body)
	if err != nil {
		return err
	}
	printRespJSON(resp)
	return nil
}

func parseRawJSON(name, str string) (json.RawMessage, error) {
	if !json.Valid([]byte(str)) {
		return nil, fmt.Errorf("%s must be valid JSON", name)
	}
	return json.RawMessage(str), nil
}
