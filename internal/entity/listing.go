package entity

import "time"

// Listing mirrors the `listings` table schema: one normalized real-estate ad.
// Price stays as collected (currency-prefixed text); parsing it into a number
// is a downstream concern.
type Listing struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Price        string    `json:"price"`
	Area         string    `json:"area"`
	Rooms        string    `json:"rooms"`
	Bathrooms    string    `json:"bathrooms"`
	Description  string    `json:"description"`
	Address      string    `json:"address"`
	City         string    `json:"city"`
	Region       string    `json:"region"`
	PostalCode   string    `json:"postal_code"`
	Contact      string    `json:"contact"`
	SourceURL    string    `json:"source_url"`
	SourceDomain string    `json:"source_domain"`
	CollectedAt  time.Time `json:"collected_at"`
	RawSnippet   string    `json:"raw_snippet,omitempty"`
}

// PartialListing is the output of a single extraction strategy. Empty fields
// mean "this stage found nothing"; the engine merges stages first-non-empty
// wins per field.
type PartialListing struct {
	NaturalID   string
	Title       string
	Price       string
	Area        string
	Rooms       string
	Bathrooms   string
	Description string
	Address     string
	City        string
	Region      string
	PostalCode  string
	Contact     string
}

// Empty reports whether the stage produced no fields at all.
func (p *PartialListing) Empty() bool {
	return p == nil || *p == PartialListing{}
}
