// Package hashlock implements the one-way commitment used by the settlement
// contracts: a 32-byte secret is locked behind its sha256 digest, and both
// values travel hex encoded.
package hashlock

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

const (
	// SecretSize is the expected length in bytes of a secret.
	SecretSize = 32
	// HashSize is the length in bytes of a commitment.
	HashSize = chainhash.HashSize
)

var (
	// ErrInvalidHash is returned if a commitment is not a 32-byte hex string.
	ErrInvalidHash = errors.New("hash must be a 32-byte hex string")
	// ErrInvalidSecret is returned if a secret is not a 32-byte hex string.
	ErrInvalidSecret = errors.New("secret must be a 32-byte hex string")
	// ErrHashMismatch is returned if a secret does not open the commitment.
	ErrHashMismatch = errors.New("secret does not match hash")
)

// Hash returns the hex encoded commitment of the given secret.
func Hash(secret []byte) string {
	return hex.EncodeToString(chainhash.HashB(secret))
}

// NewSecret returns a fresh random secret along with its commitment, both hex
// encoded. Clients use this to prepare the secret-holder side of a swap.
func NewSecret() (secret, hash string, err error) {
	buf := make([]byte, SecretSize)
	if _, err = rand.Read(buf); err != nil {
		return
	}
	return hex.EncodeToString(buf), Hash(buf), nil
}

// NormalizeHash validates the given hex commitment and returns it lowercase.
func NormalizeHash(hash string) (string, error) {
	hash = strings.ToLower(strings.TrimSpace(hash))
	buf, err := hex.DecodeString(hash)
	if err != nil || len(buf) != HashSize {
		return "", ErrInvalidHash
	}
	return hash, nil
}

// Verify checks that sha256(secret) equals hash.
func Verify(secret, hash string) error {
	secretBytes, err := hex.DecodeString(strings.TrimSpace(secret))
	if err != nil || len(secretBytes) != SecretSize {
		return ErrInvalidSecret
	}
	hashBytes, err := hex.DecodeString(strings.TrimSpace(hash))
	if err != nil || len(hashBytes) != HashSize {
		return ErrInvalidHash
	}
	if !bytes.Equal(chainhash.HashB(secretBytes), hashBytes) {
		return ErrHashMismatch
	}
	return nil
}
