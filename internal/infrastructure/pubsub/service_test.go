package pubsub_test

import (
	"crypto/rand"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/require"
	"github.com/swapdex/swapd/internal/core/ports"
	"github.com/swapdex/swapd/internal/infrastructure/pubsub"
)

const testMessage = `{"event":"SWAP_COMMITTED","swap":{"id":"swapid","status":"COMMITTED"}}`

func TestPubSubService(t *testing.T) {
	secret := randomSecret()
	server := newTestWebServer(t, secret)
	t.Cleanup(server.Close)

	pubsubSvc, err := pubsub.NewService(t.TempDir(), nil, 0)
	require.NoError(t, err)
	t.Cleanup(pubsubSvc.Close)

	testSubs := []struct {
		topic    string
		endpoint string
		secret   string
	}{
		{"SWAP_COMMITTED", server.URL + "/committed", secret},
		{"SWAP_COMMITTED", server.URL + "/committed", ""},
		{"SWAP_ERRORED", server.URL + "/errored", ""},
		{ports.AnyTopic, server.URL + "/allevents", ""},
	}
	for _, sub := range testSubs {
		id, err := pubsubSvc.Subscribe(sub.topic, sub.endpoint, sub.secret)
		require.NoError(t, err)
		require.NotEmpty(t, id)
	}

	subs := pubsubSvc.ListSubscriptionsForTopic("SWAP_COMMITTED")
	require.Len(t, subs, 3)
	secured := 0
	for _, sub := range subs {
		require.NotEmpty(t, sub.Id())
		if sub.IsSecured() {
			secured++
		}
	}
	require.Equal(t, 1, secured)

	all := pubsubSvc.ListSubscriptionsForTopic(ports.UnspecifiedTopic)
	require.Len(t, all, len(testSubs))

	// Should invoke the 2 hooks for the topic and the one for any topic.
	err = pubsubSvc.Publish("SWAP_COMMITTED", testMessage)
	require.NoError(t, err)
	require.Equal(t, 2, server.count("/committed"))
	require.Equal(t, 1, server.count("/allevents"))
	require.Zero(t, server.count("/errored"))

	for i, s := range all {
		err := pubsubSvc.Unsubscribe(s.Topic(), s.Id())
		require.NoError(t, err)

		left := pubsubSvc.ListSubscriptionsForTopic(ports.UnspecifiedTopic)
		require.Len(t, left, len(testSubs)-1-i)
	}

	err = pubsubSvc.Unsubscribe("", "unknown")
	require.ErrorIs(t, err, pubsub.ErrWebhookNotFound)

	// Checks that it's all ok if there are no hooks to invoke.
	err = pubsubSvc.Publish("SWAP_OPENED", testMessage)
	require.NoError(t, err)
}

func TestPubSubFailingEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		},
	))
	t.Cleanup(server.Close)

	pubsubSvc, err := pubsub.NewService("", nil, 10)
	require.NoError(t, err)
	t.Cleanup(pubsubSvc.Close)

	_, err = pubsubSvc.Subscribe("SWAP_ERRORED", server.URL, "")
	require.NoError(t, err)

	err = pubsubSvc.Publish("SWAP_ERRORED", testMessage)
	require.Error(t, err)
}

func TestInvalidSubscription(t *testing.T) {
	pubsubSvc, err := pubsub.NewService("", nil, 0)
	require.NoError(t, err)
	t.Cleanup(pubsubSvc.Close)

	_, err = pubsubSvc.Subscribe("", "http://localhost/hook", "")
	require.Error(t, err)
	_, err = pubsubSvc.Subscribe("SWAP_ERRORED", "not a url", "")
	require.Error(t, err)
	_, err = pubsubSvc.Subscribe("SWAP_ERRORED", "ftp://localhost/hook", "")
	require.Error(t, err)
}

type testWebServer struct {
	*httptest.Server
	lock  sync.Mutex
	calls map[string]int
}

func newTestWebServer(t *testing.T, secret string) *testWebServer {
	srv := &testWebServer{calls: make(map[string]int)}
	srv.Server = httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				http.Error(w, "Bad method", http.StatusMethodNotAllowed)
				return
			}
			if r.Header.Get("Content-Type") == "" {
				http.Error(w, "Missing Content-Type header", http.StatusUnsupportedMediaType)
				return
			}
			if auth := r.Header.Get("Authorization"); auth != "" {
				tokenString := strings.TrimPrefix(auth, "Bearer ")
				_, err := jwt.Parse(tokenString, func(*jwt.Token) (interface{}, error) {
					return []byte(secret), nil
				})
				if err != nil {
					http.Error(w, err.Error(), http.StatusUnauthorized)
					return
				}
			}

			defer r.Body.Close()
			payload, _ := io.ReadAll(r.Body)
			if string(payload) != testMessage {
				http.Error(w, "Unexpected payload", http.StatusBadRequest)
				return
			}

			srv.lock.Lock()
			srv.calls[r.URL.Path]++
			srv.lock.Unlock()
			w.WriteHeader(http.StatusOK)
		},
	))
	return srv
}

func (s *testWebServer) count(path string) int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.calls[path]
}

func randomSecret() string {
	b := make([]byte, 32)
	//nolint
	rand.Read(b)
	return hex.EncodeToString(b)
}
