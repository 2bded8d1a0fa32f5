package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTCodec is the production Codec: compact JWS tokens signed with HS256.
type JWTCodec struct {
	secretKey []byte
	now       func() time.Time
}

// Option configures a JWTCodec.
type Option func(*JWTCodec)

// WithClock replaces the wall clock used for iat/exp and for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *JWTCodec) { c.now = now }
}

// NewJWTCodec returns a codec bound to secretKey. The key is copied, so later
// changes to the caller's slice do not affect signing.
func NewJWTCodec(secretKey []byte, opts ...Option) *JWTCodec {
	c := &JWTCodec{
		secretKey: append([]byte(nil), secretKey...),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Mint signs a token for subject that expires ttl from now. Every token gets a
// random jti, so two tokens minted in the same second still differ.
func (c *JWTCodec) Mint(subject string, ttl time.Duration) (string, error) {
	now := c.now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})

	tokenString, err := token.SignedString(c.secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func (c *JWTCodec) Verify(tokenString string) (*Claims, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, mapJWTError(err)
	}

	if !token.Valid || claims.Subject == "" {
		return nil, common.ErrTokenMalformed
	}

	out := &Claims{Subject: claims.Subject, ID: claims.ID}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	out.ExpiresAt = claims.ExpiresAt.Time

	return out, nil
}

func (c *JWTCodec) ExtractSubject(tokenString string) (string, error) {
	claims, err := c.Verify(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return common.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return common.ErrTokenSignatureInvalid
	default:
		return common.ErrTokenMalformed
	}
}
