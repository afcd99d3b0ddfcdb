package security

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRefreshToken(t *testing.T) {
	token, err := NewRefreshToken()
	require.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(token)
	require.NoError(t, err)
	assert.Len(t, raw, refreshTokenBytes)
}

func TestNewRefreshToken_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := NewRefreshToken()
		require.NoError(t, err)
		assert.False(t, seen[token], "duplicate refresh token")
		seen[token] = true
	}
}
