package main

import (
	"net/http"
	"net/url"

	"github.com/urfave/cli/v2"
)

var webhook = cli.Command{
	Name:  "webhook",
	Usage: "manage the webhooks notified on swap events",
	Subcommands: []*cli.Command{
		{
			Name:  "add",
			Usage: "register a webhook for an event",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "event",
					Usage:    "the event to subscribe to, or * for all",
					Required: true,
				},
				&cli.StringFlag{
					Name:     "endpoint",
					Usage:    "the url notified on the event",
					Required: true,
				},
				&cli.StringFlag{
					Name:  "secret",
					Usage: "the secret to sign the requests with",
				},
			},
			Action: addWebhookAction,
		},
		{
			Name:  "remove",
			Usage: "remove a webhook",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "id",
					Usage:    "the id of the webhook",
					Required: true,
				},
			},
			Action: removeWebhookAction,
		},
		{
			Name:  "list",
			Usage: "list the webhooks",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "event",
					Usage: "list only the webhooks of this event",
				},
			},
			Action: listWebhooksAction,
		},
	},
}

func addWebhookAction(ctx *cli.Context) error {
	resp, err := doRequest(http.MethodPut, "/api/v1/operator/webhooks", map[string]string{
		"event":    ctx.String("event"),
		"endpoint": ctx.String("endpoint"),
		"secret":   ctx.String("secret"),
	})
	if err != nil {
		return err
	}
	printRespJSON(resp)
	return nil
}

func removeWebhookAction(ctx *cli.Context) error {
	if _, err := doRequest(
		http.MethodDelete, "/api/v1/operator/webhooks/"+ctx.String("id"), nil,
	); err != nil {
		return err
	}
	return nil
}

func listWebhooksAction(ctx *cli.Context) error {
	path := "/api/v1/operator/webhooks"
	if event := ctx.String("event"); event != "" {
		path += "?event=" + url.QueryEscape(event)
	}
	return getAndPrint(path)
}
