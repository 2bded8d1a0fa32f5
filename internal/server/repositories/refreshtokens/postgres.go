// Package refreshtokens provides a PostgreSQL-backed repository for the
// refresh tokens issued at login.
package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Save(ctx context.Context, rt *models.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (token, user_id, created_at, expires_at, revoked_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (token) DO UPDATE
		SET expires_at = EXCLUDED.expires_at, revoked_at = EXCLUDED.revoked_at
		RETURNING id
	`

	var revokedAt sql.NullTime
	if rt.RevokedAt != nil {
		revokedAt = sql.NullTime{Time: *rt.RevokedAt, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query,
		rt.Token, rt.UserID, rt.CreatedAt, rt.ExpiresAt, revokedAt).Scan(&rt.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	query := `
		SELECT id, token, user_id, created_at, expires_at, revoked_at
		FROM refresh_tokens
		WHERE token = $1
	`

	rt := &models.RefreshToken{}
	var revokedAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, token).
		Scan(&rt.ID, &rt.Token, &rt.UserID, &rt.CreatedAt, &rt.ExpiresAt, &revokedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if revokedAt.Valid {
		t := revokedAt.Time
		rt.RevokedAt = &t
	}
	return rt, nil
}

func (r *PostgresRepository) ExistsByToken(ctx context.Context, token string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM refresh_tokens WHERE token = $1)`
	return r.queryBool(ctx, query, token)
}

func (r *PostgresRepository) IsRevoked(ctx context.Context, token string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM refresh_tokens WHERE token = $1 AND revoked_at IS NOT NULL)`
	return r.queryBool(ctx, query, token)
}

func (r *PostgresRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens`); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) queryBool(ctx context.Context, query string, args ...any) (bool, error) {
	var ok bool
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&ok); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return ok, nil
}
