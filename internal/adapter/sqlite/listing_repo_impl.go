package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/user/listing-harvester/internal/entity"
	"github.com/user/listing-harvester/internal/repository"
)

// ListingRepoImpl provides the ListingRepository implementation backed by
// SQLite. Identity collisions intentionally overwrite: the store keeps at
// most one row per identity and the latest write wins.
type ListingRepoImpl struct {
	db *sql.DB
}

// NewListingRepo creates a new ListingRepoImpl.
func NewListingRepo(db *sql.DB) *ListingRepoImpl {
	return &ListingRepoImpl{db: db}
}

// Save upserts a listing by identity.
func (r *ListingRepoImpl) Save(ctx context.Context, l *entity.Listing) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO listings
			(id, title, price, area, rooms, bathrooms, description, address,
			 city, region, postal_code, contact, source_url, source_domain,
			 collected_at, raw_snippet)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			price = excluded.price,
			area = excluded.area,
			rooms = excluded.rooms,
			bathrooms = excluded.bathrooms,
			description = excluded.description,
			address = excluded.address,
			city = excluded.city,
			region = excluded.region,
			postal_code = excluded.postal_code,
			contact = excluded.contact,
			source_url = excluded.source_url,
			source_domain = excluded.source_domain,
			collected_at = excluded.collected_at,
			raw_snippet = excluded.raw_snippet`,
		l.ID, l.Title, l.Price, l.Area, l.Rooms, l.Bathrooms, l.Description,
		l.Address, l.City, l.Region, l.PostalCode, l.Contact, l.SourceURL,
		l.SourceDomain, l.CollectedAt.UTC().Format(time.RFC3339), l.RawSnippet,
	)
	return err
}

// FindByID retrieves one listing, or repository.ErrNotFound.
func (r *ListingRepoImpl) FindByID(ctx context.Context, id string) (*entity.Listing, error) {
	row := r.db.QueryRowContext(ctx, listingSelect+` WHERE id = ?`, id)
	l, err := scanListing(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return l, err
}

// FindAll returns up to limit listings; limit <= 0 means all. Order is
// implementation-defined.
func (r *ListingRepoImpl) FindAll(ctx context.Context, limit int) ([]*entity.Listing, error) {
	query := listingSelect
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []*entity.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// Count returns the number of stored listings.
func (r *ListingRepoImpl) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM listings`).Scan(&n)
	return n, err
}

const listingSelect = `
	SELECT id, title, price, area, rooms, bathrooms, description, address,
	       city, region, postal_code, contact, source_url, source_domain,
	       collected_at, raw_snippet
	FROM listings`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanListing(row rowScanner) (*entity.Listing, error) {
	var l entity.Listing
	var collectedAt string
	if err := row.Scan(
		&l.ID, &l.Title, &l.Price, &l.Area, &l.Rooms, &l.Bathrooms,
		&l.Description, &l.Address, &l.City, &l.Region, &l.PostalCode,
		&l.Contact, &l.SourceURL, &l.SourceDomain, &collectedAt, &l.RawSnippet,
	); err != nil {
		return nil, err
	}
	if t, err := time.Parse(time.RFC3339, collectedAt); err == nil {
		l.CollectedAt = t
	}
	return &l, nil
}
