package postgres

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS news (
		id             UUID PRIMARY KEY,
		title          VARCHAR(500) NOT NULL,
		summary        TEXT,
		content        TEXT NOT NULL,
		published_date TEXT,
		tags           TEXT[] NOT NULL DEFAULT '{}',
		author         TEXT,
		source_url     TEXT NOT NULL UNIQUE,
		source_name    TEXT,
		category_code  VARCHAR(100) NOT NULL,
		status         VARCHAR(20) NOT NULL DEFAULT 'ACTIVE',
		reaction_count INTEGER NOT NULL DEFAULT 0,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS failed_urls (
		id                     BIGSERIAL PRIMARY KEY,
		url                    TEXT NOT NULL UNIQUE,
		domain                 TEXT NOT NULL,
		outcome                VARCHAR(32) NOT NULL,
		failure_reason         TEXT,
		http_status_code       INTEGER,
		attempts               INTEGER NOT NULL DEFAULT 0,
		failure_count          INTEGER NOT NULL DEFAULT 1,
		last_attempt_timestamp TIMESTAMPTZ NOT NULL
	);`,
}

// EnsureSchema creates the crawler tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db DBTX) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
