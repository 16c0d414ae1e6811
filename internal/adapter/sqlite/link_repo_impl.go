package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/user/listing-harvester/internal/entity"
	"github.com/user/listing-harvester/pkg/utils"
)

// LinkRepoImpl provides the LinkRepository implementation backed by SQLite.
type LinkRepoImpl struct {
	db          *sql.DB
	maxAttempts int
}

// NewLinkRepo creates a new LinkRepoImpl. maxAttempts is the attempt
// ceiling after which a link transitions to the exhausted terminal state.
func NewLinkRepo(db *sql.DB, maxAttempts int) *LinkRepoImpl {
	return &LinkRepoImpl{db: db, maxAttempts: maxAttempts}
}

// Add inserts a link if its identity is absent. Inserting the same URL
// twice is a no-op, never an error.
func (r *LinkRepoImpl) Add(ctx context.Context, link *entity.Link) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO links (id, url, domain, keyword, status, attempts, created_at)
		VALUES (?, ?, ?, ?, ?, 0, ?)
		ON CONFLICT (id) DO NOTHING`,
		link.ID, link.URL, link.Domain, link.Keyword,
		string(entity.LinkPending), link.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// FindPending returns links eligible for processing: status pending or
// retry. Exhausted links never come back. No ordering is guaranteed.
func (r *LinkRepoImpl) FindPending(ctx context.Context, domain string, limit int) ([]*entity.Link, error) {
	query := `
		SELECT id, url, domain, keyword, status, attempts, created_at
		FROM links
		WHERE status IN ('pending', 'retry')`
	args := []interface{}{}
	if domain != "" {
		query += ` AND domain = ?`
		args = append(args, domain)
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []*entity.Link
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, link)
	}
	return links, rows.Err()
}

// MarkProcessed sets the link status by URL identity. The exhausted state is
// terminal: a late status write never reopens it.
func (r *LinkRepoImpl) MarkProcessed(ctx context.Context, url string, status entity.LinkStatus) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE links SET status = ? WHERE id = ? AND status != 'exhausted'`,
		string(status), linkID(url),
	)
	return err
}

// IncrementAttempts bumps the attempt counter. The transition to exhausted
// happens in the same statement the moment the counter reaches the ceiling,
// so it fires exactly once and readers never need a counter comparison.
func (r *LinkRepoImpl) IncrementAttempts(ctx context.Context, url string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE links
		SET attempts = attempts + 1,
		    status = CASE WHEN attempts + 1 >= ? THEN 'exhausted' ELSE status END
		WHERE id = ?`,
		r.maxAttempts, linkID(url),
	)
	return err
}

// Stats returns the queue counters in one pass.
func (r *LinkRepoImpl) Stats(ctx context.Context) (*entity.Stats, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'done'),
		       COUNT(*) FILTER (WHERE status IN ('pending', 'retry')),
		       COUNT(*) FILTER (WHERE status = 'error'),
		       COUNT(*) FILTER (WHERE status = 'exhausted')
		FROM links`)

	var s entity.Stats
	if err := row.Scan(&s.TotalLinks, &s.Done, &s.Pending, &s.Error, &s.Exhausted); err != nil {
		return nil, err
	}
	return &s, nil
}

func linkID(url string) string {
	return utils.HashURL(utils.NormalizeURL(url))
}

func scanLink(rows *sql.Rows) (*entity.Link, error) {
	var link entity.Link
	var status, createdAt string
	if err := rows.Scan(&link.ID, &link.URL, &link.Domain, &link.Keyword, &status, &link.Attempts, &createdAt); err != nil {
		return nil, err
	}
	link.Status = entity.LinkStatus(status)
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		link.CreatedAt = t
	}
	return &link, nil
}
