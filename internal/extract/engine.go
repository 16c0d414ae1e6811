package extract

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"time"

	"github.com/user/listing-harvester/internal/entity"
	"github.com/user/listing-harvester/pkg/utils"
)

const rawSnippetLen = 500

// Payload is the raw page content handed to the engine: an HTML document,
// a pre-parsed JSON body (API captures expose those directly), or both.
type Payload struct {
	HTML string
	JSON []byte
}

// Strategy is one extraction stage. It returns whatever fields it could
// populate, or nil when the payload yields nothing for this stage.
type Strategy interface {
	Name() string
	TryExtract(p Payload) *entity.PartialListing
}

// Engine runs the extraction stages in priority order and merges their
// output first-non-empty wins per field, so a structured value is never
// overwritten by a heuristic one.
type Engine struct {
	strategies []Strategy
}

// NewEngine builds the default engine: structured data first, heuristic
// regex fallback second.
func NewEngine() *Engine {
	return &Engine{
		strategies: []Strategy{
			NewStructuredStrategy(),
			NewHeuristicStrategy(),
		},
	}
}

// Extract produces zero or one normalized listing for a fetched page.
// A page that yields neither a title, nor a price, nor an area is rejected:
// a record must contain at least one substantive field besides the URL.
func (e *Engine) Extract(p Payload, sourceURL string) *entity.Listing {
	merged := &entity.PartialListing{}
	for _, s := range e.strategies {
		part := s.TryExtract(p)
		if part.Empty() {
			continue
		}
		mergeInto(merged, part)
	}

	if merged.Title == "" && merged.Price == "" && merged.Area == "" {
		return nil
	}

	return e.normalize(merged, p, sourceURL)
}

// normalize assigns the record identity and provenance fields. A natural
// numeric ad id (from structured data or the URL path) is preferred because
// it stays stable across repeated crawls; otherwise the identity is a
// content hash over title, price and source URL.
func (e *Engine) normalize(part *entity.PartialListing, p Payload, sourceURL string) *entity.Listing {
	id := part.NaturalID
	if id == "" {
		id = utils.AdIDFromURL(sourceURL)
	}
	if id == "" {
		id = contentHash(part.Title, part.Price, sourceURL)
	}

	domain := ""
	if u, err := url.Parse(sourceURL); err == nil {
		domain = u.Hostname()
	}

	return &entity.Listing{
		ID:           id,
		Title:        part.Title,
		Price:        part.Price,
		Area:         part.Area,
		Rooms:        part.Rooms,
		Bathrooms:    part.Bathrooms,
		Description:  part.Description,
		Address:      part.Address,
		City:         part.City,
		Region:       part.Region,
		PostalCode:   part.PostalCode,
		Contact:      part.Contact,
		SourceURL:    sourceURL,
		SourceDomain: utils.DomainLabel(domain),
		CollectedAt:  time.Now(),
		RawSnippet:   snippet(p),
	}
}

func mergeInto(dst, src *entity.PartialListing) {
	fill(&dst.NaturalID, src.NaturalID)
	fill(&dst.Title, src.Title)
	fill(&dst.Price, src.Price)
	fill(&dst.Area, src.Area)
	fill(&dst.Rooms, src.Rooms)
	fill(&dst.Bathrooms, src.Bathrooms)
	fill(&dst.Description, src.Description)
	fill(&dst.Address, src.Address)
	fill(&dst.City, src.City)
	fill(&dst.Region, src.Region)
	fill(&dst.PostalCode, src.PostalCode)
	fill(&dst.Contact, src.Contact)
}

func fill(dst *string, v string) {
	if *dst == "" && v != "" {
		*dst = v
	}
}

func contentHash(title, price, sourceURL string) string {
	h := sha256.New()
	h.Write([]byte(title))
	h.Write([]byte(price))
	h.Write([]byte(sourceURL))
	return hex.EncodeToString(h.Sum(nil))
}

func snippet(p Payload) string {
	raw := p.HTML
	if raw == "" {
		raw = string(p.JSON)
	}
	if len(raw) > rawSnippetLen {
		raw = raw[:rawSnippetLen]
	}
	return raw
}
