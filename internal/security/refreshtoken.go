package security

import (
	"crypto/rand"
	"encoding/base64"
)

// refreshTokenBytes is the entropy of a refresh token. Collisions between two
// 64-byte random tokens are cryptographically negligible, but the session
// store still surfaces them as conflicts.
const refreshTokenBytes = 64

// NewRefreshToken returns an opaque, URL-safe refresh token with 64 bytes of
// entropy from crypto/rand.
func NewRefreshToken() (string, error) {
	b := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
