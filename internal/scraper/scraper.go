// Package scraper fetches pages through interchangeable backends with
// ordered fallback. A JavaScript-heavy aggregator needs a rendering backend;
// most venue sites are fine over plain HTTP. The orchestrator tries each
// configured backend in turn and batches multi-page fetches into small
// concurrency groups so target sites see a polite request rate.
package scraper

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/dj-pearson/pulse-ingest/internal/config"
	"github.com/dj-pearson/pulse-ingest/internal/metrics"
	"github.com/dj-pearson/pulse-ingest/pkg/models"
)

// Backend fetches exactly one page. Implementations must respect ctx and
// never panic on bad input; a failed fetch is a result with Success=false.
type Backend interface {
	Name() models.BackendName
	Fetch(ctx context.Context, target models.ScrapeTarget) models.ScrapeResult
}

// Orchestrator runs the configured backend chain.
type Orchestrator struct {
	cfg      *config.AppConfig
	backends map[models.BackendName]Backend
	order    []models.BackendName
}

// New builds an Orchestrator from the configuration. The fallback order is
// primary backend, then the rendering API when a key is configured, then raw
// HTTP. Backends without credentials are left out of the chain.
func New(cfg *config.AppConfig) *Orchestrator {
	o := &Orchestrator{
		cfg:      cfg,
		backends: make(map[models.BackendName]Backend),
	}

	o.register(NewHTTPBackend(cfg))
	o.register(NewBrowserBackend(cfg))
	if cfg.Browserless.APIKey != "" {
		o.register(NewBrowserlessBackend(cfg))
	}
	if cfg.Rendered.APIKey != "" {
		o.register(NewRenderedBackend(cfg))
	}

	primary := cfg.Scraper.Backend
	if _, ok := o.backends[primary]; !ok {
		log.Printf("backend %q not available, falling back to http", primary)
		primary = models.BackendHTTP
	}
	o.order = append(o.order, primary)
	if _, ok := o.backends[models.BackendRendered]; ok && primary != models.BackendRendered {
		o.order = append(o.order, models.BackendRendered)
	}
	if primary != models.BackendHTTP {
		o.order = append(o.order, models.BackendHTTP)
	}
	return o
}

func (o *Orchestrator) register(b Backend) {
	o.backends[b.Name()] = b
}

// NewWithBackends builds an Orchestrator over an explicit chain. Used by
// tests and by callers that already decided the order.
func NewWithBackends(cfg *config.AppConfig, chain ...Backend) *Orchestrator {
	o := &Orchestrator{
		cfg:      cfg,
		backends: make(map[models.BackendName]Backend),
	}
	for _, b := range chain {
		o.register(b)
		o.order = append(o.order, b.Name())
	}
	return o
}

// Fetch tries each backend in order and returns the first success. When the
// whole chain fails, the returned result carries every attempt's error. A
// target's BackendHint, when available, is tried before the configured
// order.
func (o *Orchestrator) Fetch(ctx context.Context, target models.ScrapeTarget) models.ScrapeResult {
	if target.Timeout == 0 {
		target.Timeout = o.cfg.Scraper.Timeout
	}
	if target.Wait == 0 {
		target.Wait = o.cfg.Scraper.WaitTime
	}

	order := o.order
	if target.BackendHint != "" {
		if _, ok := o.backends[target.BackendHint]; ok {
			order = append([]models.BackendName{target.BackendHint}, o.order...)
		}
	}

	var last models.ScrapeResult
	var attempts []string
	tried := make(map[models.BackendName]bool)

	for _, name := range order {
		if tried[name] {
			continue
		}
		tried[name] = true

		res := o.backends[name].Fetch(ctx, target)
		metrics.ScrapeAttempts.WithLabelValues(string(name), outcome(res.Success)).Inc()
		if res.Success {
			return res
		}
		attempts = append(attempts, fmt.Sprintf("%s: %s", name, res.Err))
		last = res

		if ctx.Err() != nil {
			break
		}
		log.Printf("backend %s failed for %s, trying next: %s", name, target.URL, res.Err)
	}

	last.Err = joinAttempts(attempts)
	return last
}

// FetchAll fetches targets in fixed-size concurrency groups with a delay
// between groups. Results come back in input order.
func (o *Orchestrator) FetchAll(ctx context.Context, targets []models.ScrapeTarget) []models.ScrapeResult {
	results := make([]models.ScrapeResult, len(targets))

	size := o.cfg.Scraper.Concurrency
	if size <= 0 {
		size = 3
	}

	for start := 0; start < len(targets); start += size {
		end := start + size
		if end > len(targets) {
			end = len(targets)
		}

		done := make(chan struct{})
		for i := start; i < end; i++ {
			go func(i int) {
				results[i] = o.Fetch(ctx, targets[i])
				done <- struct{}{}
			}(i)
		}
		for i := start; i < end; i++ {
			<-done
		}

		if end < len(targets) && o.cfg.Scraper.GroupDelay > 0 {
			select {
			case <-time.After(o.cfg.Scraper.GroupDelay):
			case <-ctx.Done():
				for i := end; i < len(targets); i++ {
					results[i] = failedResult(targets[i].URL, "", time.Now(), ctx.Err())
				}
				return results
			}
		}
	}
	return results
}

func joinAttempts(attempts []string) string {
	out := ""
	for i, a := range attempts {
		if i > 0 {
			out += "; "
		}
		out += a
	}
	return out
}

func outcome(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// failedResult builds the standard failure result every backend returns.
func failedResult(url string, backend models.BackendName, start time.Time, err error) models.ScrapeResult {
	return models.ScrapeResult{
		URL:       url,
		Success:   false,
		Backend:   backend,
		Err:       err.Error(),
		Duration:  time.Since(start),
		Timestamp: time.Now(),
	}
}
