package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS links (
	id         TEXT PRIMARY KEY,
	url        TEXT NOT NULL UNIQUE,
	domain     TEXT,
	keyword    TEXT,
	status     TEXT NOT NULL DEFAULT 'pending',
	attempts   INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS listings (
	id            TEXT PRIMARY KEY,
	title         TEXT NOT NULL,
	price         TEXT,
	area          TEXT,
	rooms         TEXT,
	bathrooms     TEXT,
	description   TEXT,
	address       TEXT,
	city          TEXT,
	region        TEXT,
	postal_code   TEXT,
	contact       TEXT,
	source_url    TEXT,
	source_domain TEXT,
	collected_at  TIMESTAMPTZ NOT NULL,
	raw_snippet   TEXT
);

CREATE INDEX IF NOT EXISTS idx_links_status_domain ON links (status, domain);
`

// Migrate applies the queue and listing schema.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply postgres schema: %w", err)
	}
	return nil
}
