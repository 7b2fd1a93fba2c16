package hashlock_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/swapdex/swapd/pkg/hashlock"
)

func TestVerify(t *testing.T) {
	secret, hash, err := hashlock.NewSecret()
	require.NoError(t, err)
	require.Len(t, secret, 64)
	require.Len(t, hash, 64)

	require.NoError(t, hashlock.Verify(secret, hash))
	require.NoError(t, hashlock.Verify(secret, strings.ToUpper(hash)))

	otherSecret, _, err := hashlock.NewSecret()
	require.NoError(t, err)

	tests := []struct {
		name   string
		secret string
		hash   string
		err    error
	}{
		{"wrong_secret", otherSecret, hash, hashlock.ErrHashMismatch},
		{"short_secret", secret[:10], hash, hashlock.ErrInvalidSecret},
		{"non_hex_secret", strings.Repeat("z", 64), hash, hashlock.ErrInvalidSecret},
		{"short_hash", secret, hash[:62], hashlock.ErrInvalidHash},
	}
	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.ErrorIs(t, hashlock.Verify(tt.secret, tt.hash), tt.err)
		})
	}
}

func TestNormalizeHash(t *testing.T) {
	_, hash, err := hashlock.NewSecret()
	require.NoError(t, err)

	got, err := hashlock.NormalizeHash(" " + strings.ToUpper(hash) + " ")
	require.NoError(t, err)
	require.Equal(t, hash, got)

	_, err = hashlock.NormalizeHash("abcd")
	require.ErrorIs(t, err, hashlock.ErrInvalidHash)
}

func TestHashKnownVector(t *testing.T) {
	// sha256 of the empty string.
	require.Equal(
		t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		hashlock.Hash(nil),
	)
}
