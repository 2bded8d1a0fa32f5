// Package refreshtokens declares the server-side repository contract for
// storing issued refresh tokens and their revocation state.
package refreshtokens

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// Repository persists refresh-token records keyed by the token string.
type Repository interface {
	// Save inserts the record, or updates revocation and expiry when a record
	// with the same token already exists. The stored ID is written back.
	Save(ctx context.Context, rt *models.RefreshToken) error

	// FindByToken returns common.ErrorNotFound when the token was never stored.
	FindByToken(ctx context.Context, token string) (*models.RefreshToken, error)

	ExistsByToken(ctx context.Context, token string) (bool, error)

	// IsRevoked is false for unknown tokens.
	IsRevoked(ctx context.Context, token string) (bool, error)

	// DeleteAll clears the store.
	DeleteAll(ctx context.Context) error
}
