package security

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when a token is malformed, carries a bad
	// signature, or the bearer scheme prefix is missing or wrong.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is returned when a token is past its exp claim.
	ErrTokenExpired = errors.New("token expired")
)

const bearerPrefix = "bearer "

// Claims holds the access token payload: sub (user id), iat, exp.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies access tokens with an asymmetric key pair
// (RS256 or ES256, depending on the key type). It holds no mutable state
// after construction and is safe for concurrent use.
type TokenCodec struct {
	privateKey crypto.Signer
	publicKey  crypto.PublicKey
	accessTTL  time.Duration
	now        func() time.Time
}

// NewTokenCodec returns a TokenCodec that signs with privateKey and verifies
// with publicKey. accessTTL is the lifetime embedded in the exp claim.
func NewTokenCodec(privateKey crypto.Signer, publicKey crypto.PublicKey, accessTTL time.Duration) *TokenCodec {
	return &TokenCodec{
		privateKey: privateKey,
		publicKey:  publicKey,
		accessTTL:  accessTTL,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Encode mints a signed access token for subject with iat = now and
// exp = now + accessTTL.
func (c *TokenCodec) Encode(subject string) (string, error) {
	now := c.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.accessTTL)),
		},
	}

	var method jwt.SigningMethod
	switch c.privateKey.Public().(type) {
	case *rsa.PublicKey:
		method = jwt.SigningMethodRS256
	case *ecdsa.PublicKey:
		method = jwt.SigningMethodES256
	default:
		return "", ErrInvalidToken
	}
	return jwt.NewWithClaims(method, claims).SignedString(c.privateKey)
}

// Decode verifies the token's signature and expiry and returns its claims.
// Returns ErrTokenExpired when exp has passed and ErrInvalidToken for every
// other failure.
func (c *TokenCodec) Decode(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		switch token.Method.(type) {
		case *jwt.SigningMethodRSA, *jwt.SigningMethodECDSA:
			return c.publicKey, nil
		default:
			return nil, ErrInvalidToken
		}
	}, jwt.WithTimeFunc(c.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// DecodeBearer parses an Authorization header value of the form
// "Bearer <token>" (scheme matched case-insensitively) and decodes the token.
// A missing or wrong scheme word is ErrInvalidToken.
func (c *TokenCodec) DecodeBearer(header string) (*Claims, error) {
	header = strings.TrimSpace(header)
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return nil, ErrInvalidToken
	}
	return c.Decode(strings.TrimSpace(header[len(bearerPrefix):]))
}
