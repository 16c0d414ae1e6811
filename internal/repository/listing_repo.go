package repository

import (
	"context"

	"github.com/user/listing-harvester/internal/entity"
)

// ListingRepository defines the interface for the deduplicated listing store.
type ListingRepository interface {
	// Save upserts a listing by identity; the latest write wins.
	Save(ctx context.Context, listing *entity.Listing) error
	// FindByID retrieves one listing, or ErrNotFound.
	FindByID(ctx context.Context, id string) (*entity.Listing, error)
	// FindAll returns up to limit listings; limit <= 0 means all.
	FindAll(ctx context.Context, limit int) ([]*entity.Listing, error)
	// Count returns the number of stored listings.
	Count(ctx context.Context) (int64, error)
}
