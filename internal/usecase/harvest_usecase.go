package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/user/listing-harvester/internal/entity"
	"github.com/user/listing-harvester/internal/extract"
	"github.com/user/listing-harvester/internal/repository"
	"github.com/user/listing-harvester/pkg/metrics"
)

// HarvestConfig carries the pipeline limits, passed in rather than read
// from globals so tests and callers can tune each run.
type HarvestConfig struct {
	WorkerCount int
	BatchSize   int
	MaxAttempts int
	BaseBackoff time.Duration
}

// Harvester defines the interface for draining the work queue.
type Harvester interface {
	// ProcessAll pulls pending links in batches and processes them until a
	// pull comes back empty. Remaining links either became done, or will be
	// retried on a later pass, or exhausted their attempts.
	ProcessAll(ctx context.Context, domainFilter string) error
}

type harvestUseCase struct {
	cfg            HarvestConfig
	linkRepo       repository.LinkRepository
	listingRepo    repository.ListingRepository
	checkpointRepo repository.CheckpointRepository
	fetcherFactory repository.FetcherFactory
	engine         *extract.Engine
}

// NewHarvester creates the batch worker pool use case. checkpointRepo may
// be nil.
func NewHarvester(
	cfg HarvestConfig,
	linkRepo repository.LinkRepository,
	listingRepo repository.ListingRepository,
	checkpointRepo repository.CheckpointRepository,
	fetcherFactory repository.FetcherFactory,
	engine *extract.Engine,
) Harvester {
	return &harvestUseCase{
		cfg:            cfg,
		linkRepo:       linkRepo,
		listingRepo:    listingRepo,
		checkpointRepo: checkpointRepo,
		fetcherFactory: fetcherFactory,
		engine:         engine,
	}
}

func (uc *harvestUseCase) ProcessAll(ctx context.Context, domainFilter string) error {
	for {
		links, err := uc.linkRepo.FindPending(ctx, domainFilter, uc.cfg.BatchSize)
		if err != nil {
			return fmt.Errorf("failed to pull pending links: %w", err)
		}
		if len(links) == 0 {
			slog.Info("No pending links remain, harvest complete")
			return nil
		}

		slog.Info("Processing batch", "links", len(links), "workers", uc.cfg.WorkerCount)
		uc.processBatch(ctx, links)
		uc.reportProgress(ctx)

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// processBatch fans the batch out to a fixed pool of workers. Each worker
// owns one fetch client for the whole batch; clients are never shared.
func (uc *harvestUseCase) processBatch(ctx context.Context, links []*entity.Link) {
	jobs := make(chan *entity.Link)
	var wg sync.WaitGroup

	workers := uc.cfg.WorkerCount
	if workers > len(links) {
		workers = len(links)
	}
	started := 0
	for i := 0; i < workers; i++ {
		fetcher, err := uc.fetcherFactory.New()
		if err != nil {
			slog.Error("Failed to create fetch client", "error", err)
			continue
		}
		started++
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer fetcher.Close()
			for link := range jobs {
				uc.processLink(ctx, fetcher, link)
			}
		}()
	}
	if started == 0 {
		slog.Error("No fetch clients could be created, skipping batch")
		close(jobs)
		wg.Wait()
		return
	}

	for _, link := range links {
		select {
		case jobs <- link:
		case <-ctx.Done():
			slog.Warn("Context cancelled mid-batch, stopping feed")
			close(jobs)
			wg.Wait()
			return
		}
	}
	close(jobs)
	wg.Wait()
}

// processLink runs one link end to end: fetch with backoff, extract,
// persist. Failure classification is deliberately coarse: fetch errors and
// pages with no extractable data both land on the retry path, and a panic
// inside the worker converts to the error status. All three increment the
// attempt counter.
func (uc *harvestUseCase) processLink(ctx context.Context, fetcher repository.Fetcher, link *entity.Link) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Worker panic while processing link", "url", link.URL, "panic", r)
			metrics.HarvestsTotal.WithLabelValues("failure", "panic").Inc()
			uc.failLink(ctx, link, entity.LinkError)
		}
	}()

	start := time.Now()
	page, err := uc.fetchWithBackoff(ctx, fetcher, link.URL)
	metrics.FetchDuration.WithLabelValues(hostOf(link.URL)).Observe(time.Since(start).Seconds())

	if err != nil {
		slog.Warn("Fetch failed after retries, link stays queued", "url", link.URL, "error", err)
		metrics.HarvestsTotal.WithLabelValues("failure", errorType(err)).Inc()
		uc.failLink(ctx, link, entity.LinkRetry)
		return
	}

	listing := uc.engine.Extract(extract.Payload{HTML: page.Body}, link.URL)
	if listing == nil {
		slog.Warn("No extractable listing data", "url", link.URL)
		metrics.HarvestsTotal.WithLabelValues("failure", "no_data").Inc()
		uc.failLink(ctx, link, entity.LinkRetry)
		return
	}

	if err := uc.listingRepo.Save(ctx, listing); err != nil {
		// Storage failures must not abort the batch; the page was
		// extractable, so the link still counts as processed.
		slog.Error("Failed to save listing", "url", link.URL, "id", listing.ID, "error", err)
	} else {
		metrics.ListingsSaved.Inc()
		uc.checkpoint(ctx, link, func(r repository.CheckpointRepository) error {
			return r.RecordSaved(ctx, link.Keyword, link.Domain, 1)
		})
	}

	if err := uc.linkRepo.MarkProcessed(ctx, link.URL, entity.LinkDone); err != nil {
		slog.Error("Failed to mark link done", "url", link.URL, "error", err)
	}
	metrics.HarvestsTotal.WithLabelValues("success", "").Inc()
	uc.checkpoint(ctx, link, func(r repository.CheckpointRepository) error {
		return r.RecordProcessed(ctx, link.Keyword, link.Domain, 1)
	})
}

// fetchWithBackoff retries the fetch in a tight loop with exponential
// backoff (base delay doubling per attempt) up to the attempt ceiling.
// A response past the client-error threshold counts as a failed fetch.
func (uc *harvestUseCase) fetchWithBackoff(ctx context.Context, fetcher repository.Fetcher, rawURL string) (*entity.Page, error) {
	var lastErr error
	delay := uc.cfg.BaseBackoff
	for attempt := 1; attempt <= uc.cfg.MaxAttempts; attempt++ {
		page, err := fetcher.Fetch(ctx, rawURL)
		if err == nil && page.StatusCode < 400 {
			return page, nil
		}
		if err == nil {
			err = fmt.Errorf("%w: status code %d", repository.ErrFetchFailed, page.StatusCode)
		}
		lastErr = err
		if attempt == uc.cfg.MaxAttempts {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		delay *= 2
	}
	return nil, lastErr
}

// failLink records one failed processing attempt: status transition plus
// attempt increment. The repository flips the link to exhausted when the
// increment reaches the ceiling.
func (uc *harvestUseCase) failLink(ctx context.Context, link *entity.Link, status entity.LinkStatus) {
	if err := uc.linkRepo.MarkProcessed(ctx, link.URL, status); err != nil {
		slog.Error("Failed to mark link", "url", link.URL, "status", status, "error", err)
	}
	if err := uc.linkRepo.IncrementAttempts(ctx, link.URL); err != nil {
		slog.Error("Failed to increment attempts", "url", link.URL, "error", err)
	}
	uc.checkpoint(ctx, link, func(r repository.CheckpointRepository) error {
		return r.RecordProcessed(ctx, link.Keyword, link.Domain, 1)
	})
}

func (uc *harvestUseCase) checkpoint(ctx context.Context, link *entity.Link, fn func(repository.CheckpointRepository) error) {
	if uc.checkpointRepo == nil {
		return
	}
	if err := fn(uc.checkpointRepo); err != nil {
		slog.Warn("Failed to update checkpoint", "domain", link.Domain, "keyword", link.Keyword, "error", err)
	}
}

func (uc *harvestUseCase) reportProgress(ctx context.Context) {
	stats, err := uc.linkRepo.Stats(ctx)
	if err != nil {
		slog.Warn("Failed to read queue stats", "error", err)
		return
	}
	listings, err := uc.listingRepo.Count(ctx)
	if err != nil {
		slog.Warn("Failed to count listings", "error", err)
	}
	metrics.LinksPending.Set(float64(stats.Pending))
	slog.Info("Batch complete",
		"listings", listings,
		"done", stats.Done,
		"pending", stats.Pending,
		"error", stats.Error,
		"exhausted", stats.Exhausted,
		"total_links", stats.TotalLinks,
	)
}

func errorType(err error) string {
	switch {
	case errors.Is(err, repository.ErrFetchTimeout):
		return "timeout"
	case errors.Is(err, repository.ErrFetchFailed):
		return "fetch"
	case errors.Is(err, repository.ErrNoListingData):
		return "no_data"
	}
	return "unknown"
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return u.Hostname()
}
