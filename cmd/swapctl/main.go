package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/urfave/cli/v2"
)

const (
	urlKey   = "url"
	tokenKey = "token"
	uidKey   = "uid"
	roleKey  = "role"

	defaultURL = "http://localhost:9090"
)

var (
	swapctlDataDir = btcutil.AppDataDir("swapctl", false)
	statePath      = filepath.Join(swapctlDataDir, "state.json")

	httpClient = &http.Client{Timeout: 30 * time.Second}
)

func main() {
	app := cli.NewApp()

	app.Version = "0.1.0"
	app.Name = "swapctl"
	app.Usage = "Command line interface for swapd traders and operators"
	app.Commands = append(
		app.Commands,
		&config,
		&token,
		&addorder,
		&cancelorder,
		&orderbook,
		&listorders,
		&open,
		&commit,
		&abort,
		&getswap,
		&listswaps,
		&watch,
		&webhook,
	)

	err := app.Run(os.Args)
	if err != nil {
		fatal(err)
	}
}

func getState() (map[string]string, error) {
	data := map[string]string{}

	file, err := os.ReadFile(statePath)
	if err != nil {
		return nil, errors.New("get config state error: try 'config init'")
	}
	if err := json.Unmarshal(file, &data); err != nil {
		return nil, fmt.Errorf("invalid config state: %w", err)
	}

	return data, nil
}

func setState(data map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(statePath), os.ModeDir|0755); err != nil {
		return err
	}

	currentData, err := getState()
	if err != nil {
		currentData = map[string]string{}
	}

	mergedData := merge(currentData, data)

	jsonString, err := json.Marshal(mergedData)
	if err != nil {
		return err
	}
	if err := os.WriteFile(statePath, jsonString, 0600); err != nil {
		return fmt.Errorf("writing to file: %w", err)
	}

	return nil
}

func merge(maps ...map[string]string) map[string]string {
	merge := make(map[string]string, 0)
	for _, m := range maps {
		for k, v := range m {
			merge[k] = v
		}
	}
	return merge
}

// doRequest sends the given body, if any, to the daemon and returns the
// response body. Responses other than 200 are turned into errors.
func doRequest(method, path string, body interface{}) ([]byte, error) {
	state, err := getState()
	if err != nil {
		return nil, err
	}
	baseURL, ok := state[urlKey]
	if !ok {
		return nil, errors.New("set url with `config set url`")
	}

	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequest(method, strings.TrimSuffix(baseURL, "/")+path, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	setAuthHeaders(req.Header, state)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to swapd: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		errResp := struct {
			Error string `json:"error"`
		}{}
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			return nil, fmt.Errorf("%s (%d)", errResp.Error, resp.StatusCode)
		}
		return nil, fmt.Errorf("%s (%d)", strings.TrimSpace(string(respBody)), resp.StatusCode)
	}
	return respBody, nil
}

// setAuthHeaders uses the token if set, otherwise the uid and role headers
// accepted by daemons running without auth.
func setAuthHeaders(header http.Header, state map[string]string) {
	if token := state[tokenKey]; token != "" {
		header.Set("Authorization", "Bearer "+token)
		return
	}
	if uid := state[uidKey]; uid != "" {
		header.Set("X-Swapd-Uid", uid)
	}
	if role := state[roleKey]; role != "" {
		header.Set("X-Swapd-Role", role)
	}
}

func printRespJSON(resp []byte) {
	var out bytes.Buffer
	if err := json.Indent(&out, resp, "", "\t"); err != nil {
		fmt.Println("unable to decode response: ", err)
		return
	}
	fmt.Println(out.String())
}

func fatal(err error) {
	_, _ = fmt.Fprintf(os.Stderr, "[swapctl] %v\n", err)
	os.Exit(1)
}
