package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/swapdex/swapd/internal/core/domain"
	"github.com/swapdex/swapd/pkg/hashlock"
)

var (
	alicePublicInfo = json.RawMessage(`{"address": "0xalice"}`)
	bobPublicInfo   = json.RawMessage(`{"address":"0xbob"}`)
	confirmation    = json.RawMessage(`{"txid":"0x01"}`)
)

func TestSessionID(t *testing.T) {
	bid := newOrder(t, "alice", "bid", "1", "10")
	ask := newOrder(t, "bob", "ask", "1", "10")

	id := domain.SessionID(bid.ID, ask.ID)
	require.Len(t, id, 64)
	require.Equal(t, id, domain.SessionID(ask.ID, bid.ID))

	other := newOrder(t, "carol", "ask", "1", "10")
	require.NotEqual(t, id, domain.SessionID(bid.ID, other.ID))

	fromBid, err := domain.NewSwapSession(*bid, *ask)
	require.NoError(t, err)
	fromAsk, err := domain.NewSwapSession(*ask, *bid)
	require.NoError(t, err)
	require.Equal(t, id, fromBid.ID)
	require.Equal(t, id, fromAsk.ID)
}

func TestNewSwapSession(t *testing.T) {
	_, hash, err := hashlock.NewSecret()
	require.NoError(t, err)

	bid := newOrder(t, "alice", "bid", "1", "10")
	bid.Hash = hash
	ask := newOrder(t, "bob", "ask", "1", "9")
	_, otherHash, err := hashlock.NewSecret()
	require.NoError(t, err)
	ask.Hash = otherHash

	swap, err := domain.NewSwapSession(*bid, *ask)
	require.NoError(t, err)
	require.Equal(t, domain.SwapStatusCreated, swap.Status)
	require.Equal(t, "alice", swap.SecretHolder.UID)
	require.Equal(t, domain.SwapRoleSecretHolder, swap.SecretHolder.Role)
	require.Equal(t, bid.ID, swap.SecretHolder.OrderID)
	require.Equal(t, "bob", swap.SecretSeeker.UID)
	require.Equal(t, domain.SwapRoleSecretSeeker, swap.SecretSeeker.Role)
	require.Equal(t, hash, swap.SecretHash)
	require.Equal(t, "9", swap.QuoteQuantity.String())
	require.Equal(t, bid.Market(), swap.Market)
}

func TestFailingNewSwapSession(t *testing.T) {
	bid := newOrder(t, "alice", "bid", "1", "10")

	tests := []struct {
		name  string
		other *domain.Order
	}{
		{"same_side", newOrder(t, "bob", "bid", "1", "10")},
		{"same_uid", newOrder(t, "alice", "ask", "1", "10")},
		{"different_quantity", newOrder(t, "bob", "ask", "2", "10")},
		{"no_crossing_price", newOrder(t, "bob", "ask", "1", "11")},
	}
	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			swap, err := domain.NewSwapSession(*bid, *tt.other)
			require.ErrorIs(t, err, domain.ErrSwapInvalidMatch)
			require.Nil(t, swap)
		})
	}
}

func TestSwapOpen(t *testing.T) {
	_, hash, err := hashlock.NewSecret()
	require.NoError(t, err)

	tests := []struct {
		name  string
		order []string
	}{
		{"holder_first", []string{"alice", "bob"}},
		{"seeker_first", []string{"bob", "alice"}},
	}
	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			swap := newSwap(t, "")
			payloads := map[string]json.RawMessage{
				"alice": alicePublicInfo, "bob": bobPublicInfo,
			}

			ok, err := swap.Open(tt.order[0], payloads[tt.order[0]], hash)
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, domain.SwapStatusOpening, swap.Status)
			require.False(t, swap.IsOpened())

			// identical resubmission is accepted without changes.
			ok, err = swap.Open(tt.order[0], payloads[tt.order[0]], hash)
			require.NoError(t, err)
			require.False(t, ok)
			require.Equal(t, domain.SwapStatusOpening, swap.Status)

			ok, err = swap.Open(tt.order[1], payloads[tt.order[1]], hash)
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, domain.SwapStatusOpened, swap.Status)
			require.True(t, swap.IsOpened())
			require.Equal(t, hash, swap.SecretHash)
			require.JSONEq(t, string(alicePublicInfo), string(swap.SecretHolder.PublicInfo))
			require.JSONEq(t, string(bobPublicInfo), string(swap.SecretSeeker.PublicInfo))
		})
	}
}

func TestFailingSwapOpen(t *testing.T) {
	_, hash, err := hashlock.NewSecret()
	require.NoError(t, err)
	_, otherHash, err := hashlock.NewSecret()
	require.NoError(t, err)

	tests := []struct {
		name       string
		swap       func() *domain.SwapSession
		uid        string
		publicInfo json.RawMessage
		secretHash string
		err        error
	}{
		{
			name:       "unknown_party",
			swap:       func() *domain.SwapSession { return newSwap(t, hash) },
			uid:        "mallory",
			publicInfo: alicePublicInfo,
			err:        domain.ErrSwapUnknownParty,
		},
		{
			name:       "missing_public_info",
			swap:       func() *domain.SwapSession { return newSwap(t, hash) },
			uid:        "bob",
			publicInfo: json.RawMessage("null"),
			err:        domain.ErrSwapMissingPublicInfo,
		},
		{
			name:       "invalid_public_info",
			swap:       func() *domain.SwapSession { return newSwap(t, hash) },
			uid:        "bob",
			publicInfo: json.RawMessage("{"),
			err:        domain.ErrSwapInvalidPayload,
		},
		{
			name:       "holder_missing_secret_hash",
			swap:       func() *domain.SwapSession { return newSwap(t, "") },
			uid:        "alice",
			publicInfo: alicePublicInfo,
			err:        domain.ErrSwapMissingSecretHash,
		},
		{
			name:       "holder_secret_hash_mismatch",
			swap:       func() *domain.SwapSession { return newSwap(t, hash) },
			uid:        "alice",
			publicInfo: alicePublicInfo,
			secretHash: otherHash,
			err:        domain.ErrSwapSecretHashMismatch,
		},
		{
			name: "conflicting_resubmission",
			swap: func() *domain.SwapSession {
				swap := newSwap(t, hash)
				_, err := swap.Open("bob", bobPublicInfo, "")
				require.NoError(t, err)
				return swap
			},
			uid:        "bob",
			publicInfo: json.RawMessage(`{"address":"0xother"}`),
			err:        domain.ErrSwapConflictingSubmission,
		},
		{
			name: "errored_swap",
			swap: func() *domain.SwapSession {
				swap := newSwap(t, hash)
				swap.Expire()
				return swap
			},
			uid:        "bob",
			publicInfo: bobPublicInfo,
			err:        domain.ErrSwapTerminated,
		},
	}
	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			swap := tt.swap()
			status := swap.Status
			ok, err := swap.Open(tt.uid, tt.publicInfo, tt.secretHash)
			require.ErrorIs(t, err, tt.err)
			require.False(t, ok)
			require.Equal(t, status, swap.Status)
		})
	}
}

func TestSwapCommit(t *testing.T) {
	secret, hash, err := hashlock.NewSecret()
	require.NoError(t, err)

	swap := openedSwap(t, hash)

	ok, err := swap.Commit("bob", confirmation, "")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, domain.SwapStatusCommitting, swap.Status)

	ok, err = swap.Commit("bob", confirmation, "")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = swap.Commit("bob", json.RawMessage(`{"txid":"0x02"}`), "")
	require.ErrorIs(t, err, domain.ErrSwapConflictingSubmission)
	require.False(t, ok)

	ok, err = swap.Commit("alice", confirmation, secret)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, domain.SwapStatusCommitted, swap.Status)
	require.True(t, swap.IsTerminal())

	_, err = swap.Commit("alice", confirmation, secret)
	require.ErrorIs(t, err, domain.ErrSwapTerminated)
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestFailingSwapCommit(t *testing.T) {
	_, hash, err := hashlock.NewSecret()
	require.NoError(t, err)
	wrongSecret, _, err := hashlock.NewSecret()
	require.NoError(t, err)

	t.Run("before_opened", func(t *testing.T) {
		swap := newSwap(t, hash)
		_, err := swap.Open("bob", bobPublicInfo, "")
		require.NoError(t, err)

		ok, err := swap.Commit("bob", confirmation, "")
		require.ErrorIs(t, err, domain.ErrSwapMustBeOpened)
		require.False(t, ok)
		require.Equal(t, domain.SwapStatusOpening, swap.Status)
	})

	t.Run("wrong_secret", func(t *testing.T) {
		swap := openedSwap(t, hash)
		ok, err := swap.Commit("alice", confirmation, wrongSecret)
		require.ErrorIs(t, err, domain.ErrSwapInvalidSecret)
		require.ErrorIs(t, err, domain.ErrValidation)
		require.False(t, ok)
		require.Equal(t, domain.SwapStatusOpened, swap.Status)
	})

	t.Run("missing_confirmation", func(t *testing.T) {
		swap := openedSwap(t, hash)
		ok, err := swap.Commit("alice", nil, "")
		require.ErrorIs(t, err, domain.ErrSwapMissingConfirmation)
		require.False(t, ok)
	})

	t.Run("open_after_commit_phase", func(t *testing.T) {
		swap := openedSwap(t, hash)
		_, err := swap.Commit("alice", confirmation, "")
		require.NoError(t, err)

		ok, err := swap.Open("bob", bobPublicInfo, "")
		require.NoError(t, err)
		require.False(t, ok)

		_, err = swap.Open("bob", alicePublicInfo, "")
		require.ErrorIs(t, err, domain.ErrSwapConflictingSubmission)
	})
}

func TestSwapAbortAndExpire(t *testing.T) {
	_, hash, err := hashlock.NewSecret()
	require.NoError(t, err)

	swap := newSwap(t, hash)
	require.ErrorIs(t, swap.Abort("mallory"), domain.ErrSwapUnknownParty)
	require.NoError(t, swap.Abort("bob"))
	require.Equal(t, domain.SwapStatusErrored, swap.Status)
	require.Equal(t, domain.ErrSwapAborted.Error(), swap.Error)
	require.ErrorIs(t, swap.Abort("alice"), domain.ErrSwapTerminated)
	require.False(t, swap.Expire())
	require.Equal(t, domain.ErrSwapAborted.Error(), swap.Error)

	swap = openedSwap(t, hash)
	require.True(t, swap.Expire())
	require.Equal(t, domain.SwapStatusErrored, swap.Status)
	require.Equal(t, domain.ErrSwapExpired.Error(), swap.Error)
}

func newSwap(t *testing.T, hash string) *domain.SwapSession {
	bid := newOrder(t, "alice", "bid", "1", "10")
	bid.Hash = hash
	ask := newOrder(t, "bob", "ask", "1", "10")
	swap, err := domain.NewSwapSession(*ask, *bid)
	require.NoError(t, err)
	return swap
}

func openedSwap(t *testing.T, hash string) *domain.SwapSession {
	swap := newSwap(t, hash)
	_, err := swap.Open("alice", alicePublicInfo, "")
	require.NoError(t, err)
	_, err = swap.Open("bob", bobPublicInfo, "")
	require.NoError(t, err)
	require.Equal(t, domain.SwapStatusOpened, swap.Status)
	return swap
}
