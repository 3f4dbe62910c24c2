// Package postgres opens the shared database handle and applies the schema.
// The connection lifecycle belongs to the composition root; stores receive
// the handle, never open their own.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Migrate applies the schema idempotently on startup.
func Migrate(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS identities (
			id UUID PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL,
			credit_balance INTEGER NOT NULL DEFAULT 0 CHECK (credit_balance >= 0),
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS restricted_zones (
			id UUID PRIMARY KEY,
			top_left_lat DOUBLE PRECISION NOT NULL,
			top_left_lon DOUBLE PRECISION NOT NULL,
			bottom_right_lat DOUBLE PRECISION NOT NULL,
			bottom_right_lon DOUBLE PRECISION NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			UNIQUE (top_left_lat, top_left_lon, bottom_right_lat, bottom_right_lon)
		)`,
		`CREATE TABLE IF NOT EXISTS navigation_plans (
			id UUID PRIMARY KEY,
			owner_id UUID NOT NULL REFERENCES identities (id),
			vessel_id TEXT NOT NULL,
			route JSONB NOT NULL,
			window_start TIMESTAMPTZ NOT NULL,
			window_end TIMESTAMPTZ NOT NULL,
			status TEXT NOT NULL,
			rejection_reason TEXT,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_navigation_plans_owner ON navigation_plans (owner_id)`,
		`CREATE INDEX IF NOT EXISTS idx_navigation_plans_status ON navigation_plans (status)`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
