package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/urfave/cli/v2"
)

var watch = cli.Command{
	Name:   "watch",
	Usage:  "stream the swap events addressed to you until interrupted",
	Action: watchAction,
}

func watchAction(ctx *cli.Context) error {
	state, err := getState()
	if err != nil {
		return err
	}
	endpoint, err := updatesURL(state[urlKey])
	if err != nil {
		return err
	}

	header := http.Header{}
	setAuthHeaders(header, state)

	conn, resp, err := websocket.DefaultDialer.Dial(endpoint, header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("unable to connect to swapd: %s", resp.Status)
		}
		return fmt.Errorf("unable to connect to swapd: %w", err)
	}
	defer conn.Close()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				errChan <- err
				return
			}
			printEvent(msg)
		}
	}()

	select {
	case <-sigChan:
		//nolint
		conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		)
		return nil
	case err := <-errChan:
		if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
			return nil
		}
		return err
	}
}

func updatesURL(baseURL string) (string, error) {
	if baseURL == "" {
		return "", errors.New("set url with `config set url`")
	}
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	u.Path += "/api/v1/updates"
	return u.String(), nil
}

func printEvent(msg []byte) {
	event := struct {
		Type   string `json:"type"`
		SwapID string `json:"swapId"`
	}{}
	if err := json.Unmarshal(msg, &event); err != nil {
		fmt.Println(string(msg))
		return
	}
	fmt.Printf("[%s] %s\n", event.Type, event.SwapID)
	printRespJSON(msg)
}
