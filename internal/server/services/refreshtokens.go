package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
)

// RefreshTokenService issues refresh tokens, answers whether a presented
// token is still usable, and revokes tokens on logout. Tokens are never
// rotated or deleted by these flows; revocation only moves forward.
type RefreshTokenService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	codec       auth.Codec
	validity    time.Duration
	now         func() time.Time
}

func NewRefreshTokenService(db *sql.DB, m repomanager.RepositoryManager, codec auth.Codec, validity time.Duration) *RefreshTokenService {
	return &RefreshTokenService{
		db:          db,
		repomanager: m,
		codec:       codec,
		validity:    validity,
		now:         time.Now,
	}
}

// Issue mints a refresh token for user and stores it as active.
func (s *RefreshTokenService) Issue(ctx context.Context, user *models.User) (string, error) {
	token, err := s.codec.Mint(user.UserName, s.validity)
	if err != nil {
		return "", fmt.Errorf("%w: mint refresh token: %w", common.ErrorInternal, err)
	}

	now := s.now()
	rt := &models.RefreshToken{
		Token:     token,
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.validity),
	}

	if err := s.repomanager.RefreshTokens(s.db).Save(ctx, rt); err != nil {
		return "", fmt.Errorf("%w: save refresh token: %w", common.ErrorInternal, err)
	}
	return token, nil
}

// IsValid reports whether token verifies, is known to the store and has not
// been revoked. Verification failures are a plain false; store failures are
// returned.
func (s *RefreshTokenService) IsValid(ctx context.Context, token string) (bool, error) {
	if _, err := s.codec.Verify(token); err != nil {
		return false, nil
	}

	repo := s.repomanager.RefreshTokens(s.db)

	exists, err := repo.ExistsByToken(ctx, token)
	if err != nil {
		return false, fmt.Errorf("%w: lookup refresh token: %w", common.ErrorInternal, err)
	}
	if !exists {
		return false, nil
	}

	revoked, err := repo.IsRevoked(ctx, token)
	if err != nil {
		return false, fmt.Errorf("%w: check revocation: %w", common.ErrorInternal, err)
	}
	return !revoked, nil
}

// Revoke marks the stored token revoked. Unknown tokens fail with
// common.ErrTokenNotFound; revoking twice re-stamps the revocation time.
func (s *RefreshTokenService) Revoke(ctx context.Context, token string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.RefreshTokens(tx)

		rt, err := repo.FindByToken(ctx, token)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrTokenNotFound
			}
			return fmt.Errorf("%w: find refresh token: %w", common.ErrorInternal, err)
		}

		rt.Revoke(s.now())

		if err := repo.Save(ctx, rt); err != nil {
			return fmt.Errorf("%w: save refresh token: %w", common.ErrorInternal, err)
		}
		return nil
	})
}

// Reset drops every stored refresh token.
func (s *RefreshTokenService) Reset(ctx context.Context) error {
	if err := s.repomanager.RefreshTokens(s.db).DeleteAll(ctx); err != nil {
		return fmt.Errorf("%w: reset refresh tokens: %w", common.ErrorInternal, err)
	}
	return nil
}
