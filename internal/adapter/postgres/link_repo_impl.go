package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/listing-harvester/internal/entity"
	"github.com/user/listing-harvester/pkg/utils"
)

// LinkRepoImpl provides a concrete implementation for the LinkRepository
// interface using PostgreSQL, for deployments that share one queue database.
type LinkRepoImpl struct {
	db          *pgxpool.Pool
	maxAttempts int
}

// NewLinkRepo creates a new instance of LinkRepoImpl.
func NewLinkRepo(db *pgxpool.Pool, maxAttempts int) *LinkRepoImpl {
	return &LinkRepoImpl{db: db, maxAttempts: maxAttempts}
}

// Add inserts a link if its identity is absent; duplicates are a no-op.
func (r *LinkRepoImpl) Add(ctx context.Context, link *entity.Link) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO links (id, url, domain, keyword, status, attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, 0, $6)
		ON CONFLICT (id) DO NOTHING`,
		link.ID, link.URL, link.Domain, link.Keyword,
		string(entity.LinkPending), link.CreatedAt,
	)
	return err
}

// FindPending returns links with status pending or retry, optionally
// filtered by domain. No ordering is guaranteed.
func (r *LinkRepoImpl) FindPending(ctx context.Context, domain string, limit int) ([]*entity.Link, error) {
	query := `
		SELECT id, url, domain, keyword, status, attempts, created_at
		FROM links
		WHERE status IN ('pending', 'retry')`
	args := []interface{}{}
	if domain != "" {
		query += ` AND domain = $1 LIMIT $2`
		args = append(args, domain, limit)
	} else {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []*entity.Link
	for rows.Next() {
		var link entity.Link
		var status string
		if err := rows.Scan(&link.ID, &link.URL, &link.Domain, &link.Keyword, &status, &link.Attempts, &link.CreatedAt); err != nil {
			return nil, err
		}
		link.Status = entity.LinkStatus(status)
		links = append(links, &link)
	}
	return links, rows.Err()
}

// MarkProcessed sets the link status by URL identity; the exhausted state
// is never reopened.
func (r *LinkRepoImpl) MarkProcessed(ctx context.Context, url string, status entity.LinkStatus) error {
	_, err := r.db.Exec(ctx, `
		UPDATE links SET status = $1 WHERE id = $2 AND status != 'exhausted'`,
		string(status), linkID(url),
	)
	return err
}

// IncrementAttempts bumps the attempt counter, flipping to exhausted in the
// same statement when the ceiling is reached.
func (r *LinkRepoImpl) IncrementAttempts(ctx context.Context, url string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE links
		SET attempts = attempts + 1,
		    status = CASE WHEN attempts + 1 >= $1 THEN 'exhausted' ELSE status END
		WHERE id = $2`,
		r.maxAttempts, linkID(url),
	)
	return err
}

// Stats returns the queue counters.
func (r *LinkRepoImpl) Stats(ctx context.Context) (*entity.Stats, error) {
	row := r.db.QueryRow(ctx, `
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
