package ingest

import (
	"context"
	"log"

	"github.com/dj-pearson/pulse-ingest/internal/metrics"
	"github.com/dj-pearson/pulse-ingest/pkg/models"
)

// RepairResult is the outcome of re-resolving one cataloged detail URL.
type RepairResult struct {
	DetailURL string `json:"detail_url"`
	Canonical string `json:"canonical_url,omitempty"`
	Matcher   string `json:"matcher,omitempty"`
	OK        bool   `json:"ok"`
	Err       string `json:"error,omitempty"`
}

// RepairSourceURLs re-resolves canonical source URLs for a batch of
// aggregator detail pages, typically entries that were cataloged before
// resolution existed or whose resolution fell back. Fetches run through the
// orchestrator's normal concurrency groups.
func (r *Runner) RepairSourceURLs(ctx context.Context, detailURLs []string) []RepairResult {
	targets := make([]models.ScrapeTarget, len(detailURLs))
	for i, u := range detailURLs {
		targets[i] = models.ScrapeTarget{URL: u}
	}
	pages := r.Fetcher.FetchAll(ctx, targets)

	out := make([]RepairResult, len(detailURLs))
	for i, page := range pages {
		out[i] = RepairResult{DetailURL: detailURLs[i]}
		if !page.Success {
			out[i].Err = page.Err
			continue
		}
		u, matcher, ok := r.Resolver.ResolveVisitURL(page.HTML)
		if !ok {
			metrics.URLResolutions.WithLabelValues("none").Inc()
			out[i].Err = "no source link found"
			continue
		}
		metrics.URLResolutions.WithLabelValues(matcher).Inc()
		out[i].Canonical = u
		out[i].Matcher = matcher
		out[i].OK = true
		log.Printf("resolved %s -> %s (%s)", detailURLs[i], u, matcher)
	}
	return out
}
