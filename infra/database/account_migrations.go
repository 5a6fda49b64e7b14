package database

import (
	"context"
	"fmt"
	"time"

	"account_server/pkg/logger"

	"github.com/jmoiron/sqlx"
)

// migration is a named, idempotently-tracked schema change. Applied
// migrations are recorded in the migrations table and never re-run.
type migration struct {
	Name string
	SQL  string
}

var migrations = []migration{
	{
		Name: "001_create_users",
		SQL: `
			CREATE TABLE IF NOT EXISTS users (
				id UUID PRIMARY KEY,
				email TEXT NOT NULL,
				password_hash TEXT NOT NULL,
				first_name TEXT NOT NULL DEFAULT '',
				last_name TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMPTZ NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL
			);
			CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (email);`,
	},
	{
		Name: "002_create_user_addresses",
		SQL: `
			CREATE TABLE IF NOT EXISTS user_addresses (
				id UUID PRIMARY KEY,
				user_id UUID NOT NULL REFERENCES users (id),
				zipcode TEXT NOT NULL,
				street TEXT NOT NULL DEFAULT '',
				neighborhood TEXT NOT NULL DEFAULT '',
				city TEXT NOT NULL DEFAULT '',
				state TEXT NOT NULL DEFAULT '',
				complement TEXT,
				created_at TIMESTAMPTZ NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL
			);
			CREATE UNIQUE INDEX IF NOT EXISTS user_addresses_user_id_key ON user_addresses (user_id);`,
	},
	{
		Name: "003_create_refresh_tokens",
		SQL: `
			CREATE TABLE IF NOT EXISTS refresh_tokens (
				id UUID PRIMARY KEY,
				user_id UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
				token TEXT NOT NULL UNIQUE,
				expires_at TIMESTAMPTZ NOT NULL,
				created_at TIMESTAMPTZ NOT NULL
			);
			CREATE INDEX IF NOT EXISTS refresh_tokens_expires_at_idx ON refresh_tokens (expires_at);`,
	},
}

// Migrate applies all pending schema migrations in order.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS migrations (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			applied_at TIMESTAMPTZ NOT NULL
		)`); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	for _, m := range migrations {
		applied, err := migrationApplied(ctx, db, m.Name)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		if _, err := db.ExecContext(ctx, m.SQL); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.Name, err)
		}
		if _, err := db.ExecContext(ctx,
			`INSERT INTO migrations (name, applied_at) VALUES ($1, $2)`,
			m.Name, time.Now()); err != nil {
			return fmt.Errorf("record migration %s: %w", m.Name, err)
		}

		logger.Info("applied migration %s", m.Name)
	}

	return nil
}

func migrationApplied(ctx context.Context, db *sqlx.DB, name string) (bool, error) {
	var count int
	if err := db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM migrations WHERE name = $1`, name); err != nil {
		return false, fmt.Errorf("check migration %s: %w", name, err)
	}
	return count > 0, nil
}
