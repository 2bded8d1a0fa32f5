// Package common defines shared constants and sentinel errors used across
// client and server layers of authkeeper. Callers should use errors.Is to
// match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Authentication flow errors.
	ErrBadCredentials       = errors.New("bad credentials")
	ErrAlreadyAuthenticated = errors.New("already authenticated")
	ErrAccessDenied         = errors.New("access denied")

	// Refresh token lifecycle errors.
	ErrTokenNotFound       = errors.New("refresh token not found")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// Codec errors. Each of them also matches ErrInvalidToken.
	ErrInvalidToken          = errors.New("invalid token")
	ErrTokenMalformed        = fmt.Errorf("%w: malformed", ErrInvalidToken)
	ErrTokenSignatureInvalid = fmt.Errorf("%w: signature mismatch", ErrInvalidToken)
	ErrTokenExpired          = fmt.Errorf("%w: token expired", ErrInvalidToken)
)
