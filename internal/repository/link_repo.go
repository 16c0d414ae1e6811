package repository

import (
	"context"

	"github.com/user/listing-harvester/internal/entity"
)

// LinkRepository defines the interface for the durable URL work queue.
type LinkRepository interface {
	// Add inserts a link if its identity is absent, else does nothing.
	Add(ctx context.Context, link *entity.Link) error
	// FindPending returns links still eligible for processing (status
	// pending or retry), optionally filtered by domain, bounded by limit.
	// Selection order is implementation-defined.
	FindPending(ctx context.Context, domain string, limit int) ([]*entity.Link, error)
	// MarkProcessed transitions a link's status by URL identity. It never
	// reopens a link that already reached the exhausted terminal state.
	MarkProcessed(ctx context.Context, url string, status entity.LinkStatus) error
	// IncrementAttempts bumps the attempt counter, transitioning the link
	// to exhausted in the same statement when the ceiling is reached.
	IncrementAttempts(ctx context.Context, url string) error
	// Stats returns the queue counters.
	Stats(ctx context.Context) (*entity.Stats, error)
}
