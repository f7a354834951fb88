// Package dbx holds the small database/sql helpers shared by the local
// repositories: the DBTX handle accepted by every repository and WithTx for
// grouping several writes into one transaction.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, so a repository built on it
// works the same inside and outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx runs fn inside a transaction opened on db. The transaction is
// committed when fn returns nil and rolled back when it returns an error or
// panics; a panic is re-raised after the rollback.
//
// The token store uses it so the session token and the user record are
// always written (or removed) together:
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    repo := metadata.NewSQLiteRepository(tx)
//	    if err := repo.Set(ctx, "token", tok); err != nil {
//	        return err
//	    }
//	    return repo.Set(ctx, "user", user)
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
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

	return fn(ctx, tx)
}
