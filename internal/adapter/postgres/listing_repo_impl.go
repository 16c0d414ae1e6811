package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/listing-harvester/internal/entity"
	"github.com/user/listing-harvester/internal/repository"
)

// ListingRepoImpl provides a concrete implementation for the
// ListingRepository interface using PostgreSQL.
type ListingRepoImpl struct {
	db *pgxpool.Pool
}

// NewListingRepo creates a new instance of ListingRepoImpl.
func NewListingRepo(db *pgxpool.Pool) *ListingRepoImpl {
	return &ListingRepoImpl{db: db}
}

// Save upserts a listing by identity; the latest write wins.
func (r *ListingRepoImpl) Save(ctx context.Context, l *entity.Listing) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO listings
			(id, title, price, area, rooms, bathrooms, description, address,
			 city, region, postal_code, contact, source_url, source_domain,
			 collected_at, raw_snippet)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			price = EXCLUDED.price,
			area = EXCLUDED.area,
			rooms = EXCLUDED.rooms,
			bathrooms = EXCLUDED.bathrooms,
			description = EXCLUDED.description,
			address = EXCLUDED.address,
			city = EXCLUDED.city,
			region = EXCLUDED.region,
			postal_code = EXCLUDED.postal_code,
			contact = EXCLUDED.contact,
			source_url = EXCLUDED.source_url,
			source_domain = EXCLUDED.source_domain,
			collected_at = EXCLUDED.collected_at,
			raw_snippet = EXCLUDED.raw_snippet`,
		l.ID, l.Title, l.Price, l.Area, l.Rooms, l.Bathrooms, l.Description,
		l.Address, l.City, l.Region, l.PostalCode, l.Contact, l.SourceURL,
		l.SourceDomain, l.CollectedAt, l.RawSnippet,
	)
	return err
}

// FindByID retrieves one listing, or repository.ErrNotFound.
func (r *ListingRepoImpl) FindByID(ctx context.Context, id string) (*entity.Listing, error) {
	row := r.db.QueryRow(ctx, listingSelect+` WHERE id = $1`, id)
	l, err := scanListing(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return l, err
}

// FindAll returns up to limit listings; limit <= 0 means all.
func (r *ListingRepoImpl) FindAll(ctx context.Context, limit int) ([]*entity.Listing, error) {
	query := listingSelect
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
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
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM listings`).Scan(&n)
	return n, err
}

const listingSelect = `
	SELECT id, title, price, area, rooms, bathrooms, description, address,
	       city, region, postal_code, contact, source_url, source_domain,
	       collected_at, raw_snippet
	FROM listings`

func scanListing(row pgx.Row) (*entity.Listing, error) {
	var l entity.Listing
	if err := row.Scan(
		&l.ID, &l.Title, &l.Price, &l.Area, &l.Rooms, &l.Bathrooms,
		&l.Description, &l.Address, &l.City, &l.Region, &l.PostalCode,
		&l.Contact, &l.SourceURL, &l.SourceDomain, &l.CollectedAt, &l.RawSnippet,
	); err != nil {
		return nil, err
	}
	return &l, nil
}
