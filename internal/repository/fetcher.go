package repository

import (
	"context"

	"github.com/user/listing-harvester/internal/entity"
)

// Fetcher is the injected page-fetch capability. One instance is owned
// exclusively by one worker for the duration of a batch, so session and
// cookie state never cross workers.
type Fetcher interface {
	// Fetch retrieves a URL and returns the raw page. A non-nil Page with a
	// non-2xx status is a valid return; classification is the caller's job.
	Fetch(ctx context.Context, url string) (*entity.Page, error)
	// Close releases the client and any resources it holds.
	Close() error
}

// FetcherFactory builds one Fetcher per worker.
type FetcherFactory interface {
	New() (Fetcher, error)
}
