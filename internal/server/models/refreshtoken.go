package models

import "time"

// RefreshToken is the server-side record of an issued refresh token. Token
// holds the signed value itself and is the lookup key.
type RefreshToken struct {
	ID        int64
	Token     string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
	// RevokedAt is nil while the token is active.
	RevokedAt *time.Time
}

// IsRevoked reports whether the token has been revoked.
func (t *RefreshToken) IsRevoked() bool {
	return t.RevokedAt != nil
}

// Revoke stamps the revocation time. Revoking an already revoked token
// re-stamps it; the token stays revoked either way.
func (t *RefreshToken) Revoke(at time.Time) {
	t.RevokedAt = &at
}
