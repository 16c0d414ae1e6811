package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/listing-harvester/internal/adapter/sqlite"
	"github.com/user/listing-harvester/internal/entity"
	"github.com/user/listing-harvester/internal/extract"
	"github.com/user/listing-harvester/internal/repository"
	"github.com/user/listing-harvester/pkg/metrics"
	"github.com/user/listing-harvester/pkg/utils"
)

func TestMain(m *testing.M) {
	metrics.Init()
	os.Exit(m.Run())
}

const listingPage = `<html><head><title>Apto 2 quartos</title></head>
<body><p>R$ 250.000, 75 m², 2 quartos, 1 banheiro.</p></body></html>`

// fakeFetcher serves canned pages per URL. URLs in errs fail the fetch,
// URLs absent from pages come back as 404.
type fakeFetcher struct {
	pages map[string]*entity.Page
	errs  map[string]error
	calls *atomic.Int64
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*entity.Page, error) {
	f.calls.Add(1)
	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	if page, ok := f.pages[url]; ok {
		return page, nil
	}
	return &entity.Page{StatusCode: 404, Body: ""}, nil
}

func (f *fakeFetcher) Close() error { return nil }

type fakeFactory struct {
	fetcher *fakeFetcher
}

func (f *fakeFactory) New() (repository.Fetcher, error) { return f.fetcher, nil }

type harness struct {
	links     *sqlite.LinkRepoImpl
	listings  *sqlite.ListingRepoImpl
	fetcher   *fakeFetcher
	harvester Harvester
}

func newHarness(t *testing.T, cfg HarvestConfig) *harness {
	t.Helper()
	db, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "harvest.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	fetcher := &fakeFetcher{
		pages: map[string]*entity.Page{},
		errs:  map[string]error{},
		calls: &atomic.Int64{},
	}
	links := sqlite.NewLinkRepo(db, cfg.MaxAttempts)
	listings := sqlite.NewListingRepo(db)
	return &harness{
		links:     links,
		listings:  listings,
		fetcher:   fetcher,
		harvester: NewHarvester(cfg, links, listings, nil, &fakeFactory{fetcher: fetcher}, extract.NewEngine()),
	}
}

func (h *harness) enqueue(t *testing.T, url, domain string) {
	t.Helper()
	require.NoError(t, h.links.Add(context.Background(), &entity.Link{
		ID:        utils.HashURL(utils.NormalizeURL(url)),
		URL:       url,
		Domain:    domain,
		Status:    entity.LinkPending,
		CreatedAt: time.Now(),
	}))
}

func testConfig() HarvestConfig {
	return HarvestConfig{
		WorkerCount: 2,
		BatchSize:   10,
		MaxAttempts: 2,
		BaseBackoff: time.Millisecond,
	}
}

func TestProcessAll_Success(t *testing.T) {
	h := newHarness(t, testConfig())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		url := fmt.Sprintf("https://www.olx.com.br/vi/10000%d", i)
		h.fetcher.pages[url] = &entity.Page{StatusCode: 200, Body: listingPage}
		h.enqueue(t, url, "olx.com.br")
	}

	require.NoError(t, h.harvester.ProcessAll(ctx, ""))

	stats, err := h.links.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Done)
	assert.Equal(t, int64(0), stats.Pending)

	count, err := h.listings.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	// Identity comes from the numeric URL tail, so the saved row is
	// addressable by its natural ad id.
	saved, err := h.listings.FindByID(ctx, "100001")
	require.NoError(t, err)
	assert.Equal(t, "Apto 2 quartos", saved.Title)
	assert.Equal(t, "R$ 250.000", saved.Price)
	assert.Equal(t, "OLX", saved.SourceDomain)
}

func TestProcessAll_FetchFailureExhaustsLink(t *testing.T) {
	h := newHarness(t, testConfig())
	ctx := context.Background()
	url := "https://www.olx.com.br/vi/200001"

	h.fetcher.errs[url] = repository.ErrFetchFailed
	h.enqueue(t, url, "olx.com.br")

	// Each pass retries the fetch up to the ceiling, then requeues the
	// link; the attempt counter exhausts it after MaxAttempts passes.
	require.NoError(t, h.harvester.ProcessAll(ctx, ""))

	stats, err := h.links.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Exhausted)
	assert.Equal(t, int64(0), stats.Pending)
	assert.Equal(t, int64(4), h.fetcher.calls.Load(),
		"2 fetch retries per pass across 2 passes")

	count, err := h.listings.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestProcessAll_HTTPErrorStatusIsFailure(t *testing.T) {
	h := newHarness(t, testConfig())
	ctx := context.Background()
	url := "https://www.olx.com.br/vi/200002"

	h.fetcher.pages[url] = &entity.Page{StatusCode: 500, Body: "oops"}
	h.enqueue(t, url, "olx.com.br")

	require.NoError(t, h.harvester.ProcessAll(ctx, ""))

	stats, err := h.links.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Exhausted)
}

func TestProcessAll_NoDataRequeues(t *testing.T) {
	h := newHarness(t, testConfig())
	ctx := context.Background()
	url := "https://www.olx.com.br/vi/200003"

	// Fetch succeeds but the page has nothing extractable.
	h.fetcher.pages[url] = &entity.Page{StatusCode: 200, Body: "<html><body></body></html>"}
	h.enqueue(t, url, "olx.com.br")

	require.NoError(t, h.harvester.ProcessAll(ctx, ""))

	stats, err := h.links.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Exhausted)

	count, err := h.listings.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestProcessAll_MixedBatch(t *testing.T) {
	h := newHarness(t, testConfig())
	ctx := context.Background()

	good := "https://www.olx.com.br/vi/300001"
	bad := "https://www.olx.com.br/vi/300002"
	h.fetcher.pages[good] = &entity.Page{StatusCode: 200, Body: listingPage}
	h.fetcher.errs[bad] = errors.New("connection refused")
	h.enqueue(t, good, "olx.com.br")
	h.enqueue(t, bad, "olx.com.br")

	require.NoError(t, h.harvester.ProcessAll(ctx, ""))

	stats, err := h.links.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Done)
	assert.Equal(t, int64(1), stats.Exhausted)

	count, err := h.listings.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestProcessAll_DomainFilter(t *testing.T) {
	h := newHarness(t, testConfig())
	ctx := context.Background()

	olx := "https://www.olx.com.br/vi/400001"
	viva := "https://www.vivareal.com.br/imovel/casa-400002"
	h.fetcher.pages[olx] = &entity.Page{StatusCode: 200, Body: listingPage}
	h.fetcher.pages[viva] = &entity.Page{StatusCode: 200, Body: listingPage}
	h.enqueue(t, olx, "olx.com.br")
	h.enqueue(t, viva, "vivareal.com.br")

	require.NoError(t, h.harvester.ProcessAll(ctx, "olx.com.br"))

	stats, err := h.links.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Done)
	assert.Equal(t, int64(1), stats.Pending, "other domains stay queued")
}

func TestProcessAll_Cancelled(t *testing.T) {
	h := newHarness(t, testConfig())
	url := "https://www.olx.com.br/vi/500001"
	h.fetcher.pages[url] = &entity.Page{StatusCode: 200, Body: listingPage}
	h.enqueue(t, url, "olx.com.br")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, h.harvester.ProcessAll(ctx, ""))
}
