package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/marketmemphis/mdash/internal/client/migrations"
	"github.com/marketmemphis/mdash/internal/filex"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// RunMigrations applies the embedded migrations to db. Already applied
// versions are skipped, so it is safe to call on every start.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.Migrations)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// InitDatabase opens the local SQLite database at dsn and migrates it. The
// directory of a file database is created if missing.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	if err := filex.EnsureParentDir(dsn); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
