package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/user/listing-harvester/internal/entity"
	"github.com/user/listing-harvester/internal/repository"
	"github.com/user/listing-harvester/pkg/utils"
)

// LinkManager defines the interface for feeding discovered URLs into the
// work queue and reading aggregate state back.
type LinkManager interface {
	// Add enqueues one URL and returns its link identity. Insert errors are
	// logged and swallowed: link discovery must never abort on one bad row.
	Add(ctx context.Context, url, domain, keyword string) string
	// AddBatch enqueues many URLs and returns how many were submitted.
	AddBatch(ctx context.Context, urls []string, domain, keyword string) int
	// Stats returns combined queue and listing counters.
	Stats(ctx context.Context) (*entity.Stats, error)
	// Progress returns the observational checkpoint counters, or nil when
	// no checkpoint store is configured.
	Progress(ctx context.Context, keyword, domain string) (*entity.Progress, error)
}

type linkManagerUseCase struct {
	linkRepo       repository.LinkRepository
	listingRepo    repository.ListingRepository
	checkpointRepo repository.CheckpointRepository
}

// NewLinkManager creates a new LinkManager use case. checkpointRepo may be
// nil when progress counters are disabled.
func NewLinkManager(
	linkRepo repository.LinkRepository,
	listingRepo repository.ListingRepository,
	checkpointRepo repository.CheckpointRepository,
) LinkManager {
	return &linkManagerUseCase{
		linkRepo:       linkRepo,
		listingRepo:    listingRepo,
		checkpointRepo: checkpointRepo,
	}
}

func (uc *linkManagerUseCase) Add(ctx context.Context, url, domain, keyword string) string {
	normalized := utils.NormalizeURL(url)
	link := &entity.Link{
		ID:        utils.HashURL(normalized),
		URL:       normalized,
		Domain:    domain,
		Keyword:   keyword,
		Status:    entity.LinkPending,
		CreatedAt: time.Now(),
	}

	if err := uc.linkRepo.Add(ctx, link); err != nil {
		// Fire-and-forget: a failed insert loses one candidate URL, not the run.
		slog.Warn("Failed to add link", "url", url, "error", err)
		return link.ID
	}

	if uc.checkpointRepo != nil {
		if err := uc.checkpointRepo.RecordDiscovered(ctx, keyword, domain, 1); err != nil {
			slog.Warn("Failed to record discovered checkpoint", "domain", domain, "error", err)
		}
	}

	return link.ID
}

func (uc *linkManagerUseCase) AddBatch(ctx context.Context, urls []string, domain, keyword string) int {
	for _, u := range urls {
		uc.Add(ctx, u, domain, keyword)
	}
	return len(urls)
}

func (uc *linkManagerUseCase) Stats(ctx context.Context) (*entity.Stats, error) {
	stats, err := uc.linkRepo.Stats(ctx)
	if err != nil {
		return nil, err
	}
	listings, err := uc.listingRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalListings = listings
	return stats, nil
}

func (uc *linkManagerUseCase) Progress(ctx context.Context, keyword, domain string) (*entity.Progress, error) {
	if uc.checkpointRepo == nil {
		return nil, nil
	}
	return uc.checkpointRepo.Progress(ctx, keyword, domain)
}
