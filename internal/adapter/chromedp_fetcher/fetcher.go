// Package chromedp_fetcher implements the Fetcher port with a headless
// browser, for sources that only render listings client-side.
package chromedp_fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/user/listing-harvester/internal/entity"
	"github.com/user/listing-harvester/internal/repository"
)

// Factory builds one browser-backed Fetcher per worker. Each Fetcher owns
// its own exec allocator, so profile and cookie state never cross workers.
type Factory struct {
	timeout     time.Duration
	settleDelay time.Duration
	userAgent   string
}

// NewFactory creates a browser fetcher factory. settleDelay is the fixed
// post-navigation wait that lets dynamic content finish loading.
func NewFactory(timeout, settleDelay time.Duration, userAgent string) *Factory {
	if userAgent == "" {
		userAgent = `Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/108.0.0.0 Safari/537.36`
	}
	return &Factory{timeout: timeout, settleDelay: settleDelay, userAgent: userAgent}
}

// New allocates a fresh headless browser instance.
func (f *Factory) New() (repository.Fetcher, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(f.userAgent),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	return &Client{
		allocCtx:    allocCtx,
		cancel:      cancel,
		timeout:     f.timeout,
		settleDelay: f.settleDelay,
	}, nil
}

// Client is one worker's exclusive browser instance.
type Client struct {
	allocCtx    context.Context
	cancel      context.CancelFunc
	timeout     time.Duration
	settleDelay time.Duration
}

// Fetch navigates to a URL, waits for the page to settle, scrolls once to
// trigger lazy content, and returns the rendered markup. The status code
// comes from the main document network response.
func (c *Client) Fetch(ctx context.Context, url string) (*entity.Page, error) {
	taskCtx, cancelTask := chromedp.NewContext(c.allocCtx)
	defer cancelTask()

	taskCtx, cancelTimeout := context.WithTimeout(taskCtx, c.timeout)
	defer cancelTimeout()

	var mu sync.Mutex
	statusCode := http.StatusOK
	statusSeen := false
	chromedp.ListenTarget(taskCtx, func(ev interface{}) {
		resp, ok := ev.(*network.EventResponseReceived)
		if !ok || resp.Type != network.ResourceTypeDocument {
			return
		}
		mu.Lock()
		if !statusSeen {
			statusCode = int(resp.Response.Status)
			statusSeen = true
		}
		mu.Unlock()
	})

	var html string
	err := chromedp.Run(taskCtx,
		network.Enable(),
		chromedp.Navigate(url),
		chromedp.Sleep(c.settleDelay),
		chromedp.Evaluate(`window.scrollBy(0, window.innerHeight)`, nil),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", repository.ErrFetchTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", repository.ErrFetchFailed, err)
	}

	mu.Lock()
	defer mu.Unlock()
	return &entity.Page{StatusCode: statusCode, Body: html}, nil
}

// Close tears the browser instance down.
func (c *Client) Close() error {
	c.cancel()
	return nil
}
