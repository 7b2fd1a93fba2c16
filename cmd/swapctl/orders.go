package main

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/urfave/cli/v2"
)

var addorder = cli.Command{
	Name:  "addorder",
	Usage: "add a limit order to the book of a market",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "side",
			Usage:    "bid or ask",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "base",
			Usage:    "base asset and network, ie. BTC@bitcoin",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "base_quantity",
			Usage:    "quantity of base asset",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "quote",
			Usage:    "quote asset and network, ie. ETH@ethereum",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "quote_quantity",
			Usage:    "quantity of quote asset",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "hash",
			Usage: "hex sha256 of the swap secret, required for bids",
		},
	},
	Action: addOrderAction,
}

var cancelorder = cli.Command{
	Name:  "cancelorder",
	Usage: "remove an open order from the book",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "id",
			Usage:    "the id of the order",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "base_asset",
			Usage:    "base asset of the order market",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "quote_asset",
			Usage:    "quote asset of the order market",
			Required: true,
		},
	},
	Action: cancelOrderAction,
}

var orderbook = cli.Command{
	Name:  "orderbook",
	Usage: "show the book of a market, or the list of markets",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "market",
			Usage: "market in the form BASE@network/QUOTE@network",
		},
	},
	Action: orderBookAction,
}

var listorders = cli.Command{
	Name:  "orders",
	Usage: "list your open and closed orders",
	Flags: pageFlags,
	Action: func(ctx *cli.Context) error {
		return getAndPrint("/api/v1/orders" + pageQuery(ctx))
	},
}

var pageFlags = []cli.Flag{
	&cli.IntFlag{
		Name:  "page",
		Usage: "the page number of a paginated list",
	},
	&cli.IntFlag{
		Name:  "size",
		Usage: "the number of items per page",
	},
}

func addOrderAction(ctx *cli.Context) error {
	baseAsset, baseNetwork, err := parseAsset(ctx.String("base"))
	if err != nil {
		return err
	}
	quoteAsset, quoteNetwork, err := parseAsset(ctx.String("quote"))
	if err != nil {
		return err
	}

	body := map[string]interface{}{
		"side":          ctx.String("side"),
		"type":          "limit",
		"baseAsset":     baseAsset,
		"baseNetwork":   baseNetwork,
		"baseQuantity":  ctx.String("base_quantity"),
		"quoteAsset":    quoteAsset,
		"quoteNetwork":  quoteNetwork,
		"quoteQuantity": ctx.String("quote_quantity"),
	}
	if hash := ctx.String("hash"); hash != "" {
		body["hash"] = hash
	}

	resp, err := doRequest(http.MethodPut, "/api/v1/orderbook/limit", body)
	if err != nil {
		return err
	}
	printRespJSON(resp)
	return nil
}

func cancelOrderAction(ctx *cli.Context) error {
	resp, err := doRequest(http.MethodDelete, "/api/v1/orderbook/limit", map[string]string{
		"id":         ctx.String("id"),
		"baseAsset":  ctx.String("base_asset"),
		"quoteAsset": ctx.String("quote_asset"),
	})
	if err != nil {
		return err
	}
	printRespJSON(resp)
	return nil
}

func orderBookAction(ctx *cli.Context) error {
	path := "/api/v1/orderbook"
	if market := ctx.String("market"); market != "" {
		path += "?market=" + url.QueryEscape(market)
	}
	return getAndPrint(path)
}

func getAndPrint(path string) error {
	resp, err := doRequest(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	printRespJSON(resp)
	return nil
}

func pageQuery(ctx *cli.Context) string {
	query := url.Values{}
	if page := ctx.Int("page"); page > 0 {
		query.Set("page", fmt.Sprint(page))
	}
	if size := ctx.Int("size"); size > 0 {
		query.Set("size", fmt.Sprint(size))
	}
	if len(query) == 0 {
		return ""
	}
	return "?" + query.Encode()
}

func parseAsset(str string) (string, string, error) {
	for i := len(str) - 1; i >= 0; i-- {
		if str[i] == '@' {
			if i == 0 || i == len(str)-1 {
				break
			}
			return str[:i], str[i+1:], nil
		}
	}
	return "", "", fmt.Errorf("invalid asset %q, must be in the form ASSET@network", str)
}
