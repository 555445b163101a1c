package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
)

// Opaque secret lengths in bytes.
const (
	refreshSecretLen = 64 // 512 bits of entropy
	resetSecretLen   = 32
)

// Hash returns the hex SHA-256 of an opaque secret. It is the single hashing
// point for both issuance and redemption; the raw secret is never persisted.
func Hash(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:])
}

// NewRefreshSecret generates a random refresh secret and its storage hash.
func NewRefreshSecret() (raw, hash string, err error) {
	return newSecret(refreshSecretLen)
}

// NewResetSecret generates a random password-reset secret and its storage hash.
func NewResetSecret() (raw, hash string, err error) {
	return newSecret(resetSecretLen)
}

func newSecret(n int) (string, string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	raw := base64.RawURLEncoding.EncodeToString(b)
	return raw, Hash(raw), nil
}
