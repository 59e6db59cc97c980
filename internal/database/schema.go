package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS campaigns (
		id          TEXT PRIMARY KEY,
		business_id TEXT NOT NULL,
		name        TEXT NOT NULL,
		description TEXT,
		type        TEXT NOT NULL,
		objective   INTEGER NOT NULL CHECK (objective >= 1),
		reward      TEXT NOT NULL,
		start_date  DATE NOT NULL,
		end_date    DATE CHECK (end_date IS NULL OR end_date >= start_date),
		active      BOOLEAN NOT NULL DEFAULT TRUE,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS campaigns_business_created_idx
		ON campaigns (business_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS clients (
		id            TEXT PRIMARY KEY,
		business_id   TEXT NOT NULL,
		campaign_id   TEXT NOT NULL REFERENCES campaigns (id),
		name          TEXT NOT NULL,
		surname       TEXT,
		email         TEXT,
		phone         TEXT,
		progress      INTEGER NOT NULL DEFAULT 0 CHECK (progress >= 0),
		visit_count   INTEGER NOT NULL DEFAULT 0 CHECK (visit_count >= 0),
		last_visit_at TIMESTAMPTZ,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS clients_campaign_created_idx
		ON clients (campaign_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS clients_business_created_idx
		ON clients (business_id, created_at DESC)`,
}

// EnsureSchema creates the campaign and client tables if they are missing
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
