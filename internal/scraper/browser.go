package scraper

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/dj-pearson/pulse-ingest/internal/config"
	"github.com/dj-pearson/pulse-ingest/pkg/models"
)

// BrowserBackend renders pages in a local headless browser. Slowest backend,
// but it handles aggregators that assemble their listings in JavaScript.
type BrowserBackend struct {
	Config *config.AppConfig
}

// NewBrowserBackend creates a new local-browser backend
func NewBrowserBackend(cfg *config.AppConfig) *BrowserBackend {
	return &BrowserBackend{Config: cfg}
}

func (b *BrowserBackend) Name() models.BackendName {
	return models.BackendBrowser
}

// Fetch navigates to the target, waits for the settle delay, and returns the
// rendered outer HTML.
func (b *BrowserBackend) Fetch(ctx context.Context, target models.ScrapeTarget) models.ScrapeResult {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, target.Timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", b.Config.Browser.Headless),
		chromedp.UserAgent(b.Config.Browser.UserAgent),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(target.URL),
		chromedp.Sleep(target.Wait),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return failedResult(target.URL, models.BackendBrowser, start, err)
	}

	return models.ScrapeResult{
		URL:       target.URL,
		Success:   true,
		Backend:   models.BackendBrowser,
		HTML:      html,
		Duration:  time.Since(start),
		Timestamp: time.Now(),
	}
}
