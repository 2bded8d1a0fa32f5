// Package dbx lets repositories run against either the pool or an open
// transaction. Refresh-token revocation and user registration are the
// multi-statement writes that go through WithTx.
package dbx

import (
	"context"
	"database/sql"
	"fmt"
)

// DBTX is what the repository constructors accept. *sql.DB and *sql.Tx
// both fit.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx runs fn on a fresh transaction. A nil error from fn commits;
// an error or panic rolls back, and the panic keeps unwinding. BeginTx
// failures come back wrapped as "begin tx".
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    rt, err := m.RefreshTokens(tx).FindByToken(ctx, token)
//	    ...
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}
