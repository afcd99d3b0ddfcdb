package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenCodec_RoundTrip(t *testing.T) {
	codec, err := NewTestTokenCodec(15 * time.Minute)
	require.NoError(t, err)

	token, err := codec.Encode("42")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := codec.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Subject)
}

func TestTokenCodec_ExpiryBoundary(t *testing.T) {
	issued := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	now := issued

	codec, err := NewTestTokenCodecWithClock(time.Hour, func() time.Time { return now })
	require.NoError(t, err)

	token, err := codec.Encode("7")
	require.NoError(t, err)

	now = issued.Add(time.Hour - time.Second)
	claims, err := codec.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "7", claims.Subject)

	now = issued.Add(time.Hour + time.Second)
	_, err = codec.Decode(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenCodec_Garbage(t *testing.T) {
	codec, err := NewTestTokenCodec(15 * time.Minute)
	require.NoError(t, err)

	for _, token := range []string{"", "garbage", "a.b.c"} {
		_, err := codec.Decode(token)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", token)
	}
}

func TestTokenCodec_TamperedSignature(t *testing.T) {
	codec, err := NewTestTokenCodec(15 * time.Minute)
	require.NoError(t, err)

	token, err := codec.Encode("42")
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = codec.Decode(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenCodec_DecodeBearer(t *testing.T) {
	codec, err := NewTestTokenCodec(15 * time.Minute)
	require.NoError(t, err)

	token, err := codec.Encode("42")
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		wantErr error
	}{
		{name: "lowercase scheme", header: "bearer " + token},
		{name: "canonical scheme", header: "Bearer " + token},
		{name: "uppercase scheme", header: "BEARER " + token},
		{name: "missing scheme", header: token, wantErr: ErrInvalidToken},
		{name: "wrong scheme", header: "Basic " + token, wantErr: ErrInvalidToken},
		{name: "empty header", header: "", wantErr: ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := codec.DecodeBearer(tt.header)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "42", claims.Subject)
		})
	}
}
