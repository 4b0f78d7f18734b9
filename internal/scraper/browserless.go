package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dj-pearson/pulse-ingest/internal/config"
	"github.com/dj-pearson/pulse-ingest/pkg/models"
)

// BrowserlessBackend drives a hosted Chrome-automation service through its
// content API. Rendering happens remotely, so it works from environments
// that can't run a local browser.
type BrowserlessBackend struct {
	Config *config.AppConfig
	HTTP   *http.Client
}

// NewBrowserlessBackend creates a new hosted-browser backend
func NewBrowserlessBackend(cfg *config.AppConfig) *BrowserlessBackend {
	return &BrowserlessBackend{
		Config: cfg,
		HTTP:   &http.Client{},
	}
}

func (b *BrowserlessBackend) Name() models.BackendName {
	return models.BackendBrowserless
}

type browserlessRequest struct {
	URL         string            `json:"url"`
	WaitFor     int64             `json:"waitFor,omitempty"`
	UserAgent   string            `json:"userAgent,omitempty"`
	GotoOptions map[string]any    `json:"gotoOptions,omitempty"`
	Headers     map[string]string `json:"setExtraHTTPHeaders,omitempty"`
}

// Fetch posts the target to the service's /content endpoint and returns the
// rendered HTML.
func (b *BrowserlessBackend) Fetch(ctx context.Context, target models.ScrapeTarget) models.ScrapeResult {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, target.Timeout)
	defer cancel()

	payload, err := json.Marshal(browserlessRequest{
		URL:       target.URL,
		WaitFor:   target.Wait.Milliseconds(),
		UserAgent: b.Config.Browser.UserAgent,
		GotoOptions: map[string]any{
			"waitUntil": "networkidle2",
			"timeout":   target.Timeout.Milliseconds(),
		},
	})
	if err != nil {
		return failedResult(target.URL, models.BackendBrowserless, start, err)
	}

	endpoint := fmt.Sprintf("%s/content?token=%s", b.Config.Browserless.URL, b.Config.Browserless.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return failedResult(target.URL, models.BackendBrowserless, start, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.HTTP.Do(req)
	if err != nil {
		return failedResult(target.URL, models.BackendBrowserless, start, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return failedResult(target.URL, models.BackendBrowserless, start, err)
	}
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("browserless: status %d: %.200s", resp.StatusCode, body)
		res := failedResult(target.URL, models.BackendBrowserless, start, err)
		res.StatusCode = resp.StatusCode
		return res
	}

	return models.ScrapeResult{
		URL:        target.URL,
		Success:    true,
		Backend:    models.BackendBrowserless,
		HTML:       string(body),
		StatusCode: resp.StatusCode,
		Duration:   time.Since(start),
		Timestamp:  time.Now(),
	}
}
