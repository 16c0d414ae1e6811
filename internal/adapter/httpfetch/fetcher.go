// Package httpfetch implements the Fetcher port with a plain net/http
// client, for sources that serve usable markup without a browser.
package httpfetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/user/listing-harvester/internal/entity"
	"github.com/user/listing-harvester/internal/repository"
)

const defaultUserAgent = `Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/108.0.0.0 Safari/537.36`

// maxBodyBytes bounds how much of a page is read; listing pages past this
// size carry nothing the extractor needs.
const maxBodyBytes = 4 << 20

// Factory builds one independent HTTP client per worker, so cookie jars and
// connection state never cross workers.
type Factory struct {
	timeout   time.Duration
	userAgent string
}

// NewFactory creates a fetcher factory with the given per-request timeout.
func NewFactory(timeout time.Duration, userAgent string) *Factory {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Factory{timeout: timeout, userAgent: userAgent}
}

// New returns a fresh Fetcher backed by its own http.Client.
func (f *Factory) New() (repository.Fetcher, error) {
	return &Client{
		client:    &http.Client{Timeout: f.timeout},
		userAgent: f.userAgent,
	}, nil
}

// Client is one worker's exclusive HTTP fetch client.
type Client struct {
	client    *http.Client
	userAgent string
}

// Fetch retrieves a URL. Non-2xx responses still return the page so the
// caller can classify; transport failures map to the fetch sentinels.
func (c *Client) Fetch(ctx context.Context, url string) (*entity.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Language", "pt-BR,pt;q=0.9,en;q=0.5")

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", repository.ErrFetchTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", repository.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", repository.ErrFetchFailed, err)
	}

	return &entity.Page{StatusCode: resp.StatusCode, Body: string(body)}, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}
