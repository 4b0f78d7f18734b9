package scraper

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"github.com/dj-pearson/pulse-ingest/internal/config"
	"github.com/dj-pearson/pulse-ingest/pkg/models"
)

// HTTPBackend fetches pages with plain GET requests. Cheapest backend; fine
// for server-rendered venue sites, useless for JavaScript-built listings.
type HTTPBackend struct {
	Config *config.AppConfig
}

// NewHTTPBackend creates a new raw-HTTP backend
func NewHTTPBackend(cfg *config.AppConfig) *HTTPBackend {
	return &HTTPBackend{Config: cfg}
}

func (b *HTTPBackend) Name() models.BackendName {
	return models.BackendHTTP
}

// Fetch retries transient failures with a growing delay, rotating user
// agents and, when configured, outbound proxies between attempts.
func (b *HTTPBackend) Fetch(ctx context.Context, target models.ScrapeTarget) models.ScrapeResult {
	start := time.Now()
	var lastErr error
	var statusCode int

	for retries := 0; retries <= b.Config.Scraper.MaxRetries; retries++ {
		if retries > 0 {
			select {
			case <-time.After(b.Config.Scraper.RetryDelay * time.Duration(retries)):
			case <-ctx.Done():
				return failedResult(target.URL, models.BackendHTTP, start, ctx.Err())
			}
		}

		transport := &http.Transport{}
		if proxyURL := b.proxyURL(); proxyURL != nil {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
		client := &http.Client{
			Transport: transport,
			Timeout:   target.Timeout,
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.URL, nil)
		if err != nil {
			lastErr = err
			continue
		}
		if agents := b.Config.Scraper.UserAgents; len(agents) > 0 {
			req.Header.Set("User-Agent", agents[rand.Intn(len(agents))])
		}

		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		statusCode = resp.StatusCode
		body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("received non-200 status code: %d", resp.StatusCode)
			continue
		}

		return models.ScrapeResult{
			URL:        target.URL,
			Success:    true,
			Backend:    models.BackendHTTP,
			HTML:       string(body),
			StatusCode: statusCode,
			Duration:   time.Since(start),
			Timestamp:  time.Now(),
		}
	}

	res := failedResult(target.URL, models.BackendHTTP, start, lastErr)
	res.StatusCode = statusCode
	return res
}

// proxyURL picks an outbound proxy for this attempt, or nil when proxying is
// disabled or misconfigured.
func (b *HTTPBackend) proxyURL() *url.URL {
	p := b.Config.Proxies
	if !p.Enabled || len(p.List) == 0 {
		return nil
	}
	raw := p.List[0]
	if p.Rotate && len(p.List) > 1 {
		raw = p.List[rand.Intn(len(p.List))]
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil
	}
	if p.Auth.Username != "" && p.Auth.Password != "" {
		u.User = url.UserPassword(p.Auth.Username, p.Auth.Password)
	}
	return u
}
