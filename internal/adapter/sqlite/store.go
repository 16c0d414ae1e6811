// Package sqlite implements the link and listing repositories on a local
// SQLite database. Every operation is a single self-contained statement
// (insert-or-ignore, upsert, single-row update), so concurrent workers need
// no cross-operation locks and the database file itself is the checkpoint:
// a restarted run resumes from whatever is still pending.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS links (
	id         TEXT PRIMARY KEY,
	url        TEXT NOT NULL UNIQUE,
	domain     TEXT,
	keyword    TEXT,
	status     TEXT NOT NULL DEFAULT 'pending',
	attempts   INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL
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
	collected_at  TEXT NOT NULL,
	raw_snippet   TEXT
);

CREATE INDEX IF NOT EXISTS idx_links_status_domain ON links (status, domain);
`

// Open opens (creating if needed) the SQLite database at path and applies
// the schema. WAL mode keeps concurrent worker writes from serializing on
// the whole file.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}
	return db, nil
}
