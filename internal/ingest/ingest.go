// Package ingest wires the whole pipeline together: scrape, extract,
// resolve, normalize, dedup, and write. One Run processes one source URL for
// one category and always comes back with a Summary, however many individual
// items failed along the way.
package ingest

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/dj-pearson/pulse-ingest/internal/catalog"
	"github.com/dj-pearson/pulse-ingest/internal/config"
	"github.com/dj-pearson/pulse-ingest/internal/datetime"
	"github.com/dj-pearson/pulse-ingest/internal/metrics"
	"github.com/dj-pearson/pulse-ingest/internal/resolver"
	"github.com/dj-pearson/pulse-ingest/internal/textmatch"
	"github.com/dj-pearson/pulse-ingest/pkg/models"
)

// Fetcher is the orchestrator surface the pipeline needs.
type Fetcher interface {
	Fetch(ctx context.Context, target models.ScrapeTarget) models.ScrapeResult
	FetchAll(ctx context.Context, targets []models.ScrapeTarget) []models.ScrapeResult
}

// Extractor turns one scraped page into candidate records.
type Extractor interface {
	Extract(ctx context.Context, category models.Category, res models.ScrapeResult, ref time.Time) ([]models.CandidateRecord, error)
}

// Request describes one ingestion run.
type Request struct {
	URL             string
	Category        models.Category
	MaxPages        int
	BackendOverride models.BackendName
	DryRun          bool
}

// Runner holds the assembled pipeline.
type Runner struct {
	Cfg       *config.AppConfig
	Fetcher   Fetcher
	Extractor Extractor
	Resolver  *resolver.Resolver
	Store     catalog.Store
	Matcher   *catalog.Matcher
	Zone      string
	Now       func() time.Time
}

// NewRunner assembles a Runner from already-constructed parts.
func NewRunner(cfg *config.AppConfig, f Fetcher, e Extractor, store catalog.Store) *Runner {
	return &Runner{
		Cfg:       cfg,
		Fetcher:   f,
		Extractor: e,
		Resolver:  resolver.New(cfg.Resolver.BaseURL),
		Store:     store,
		Matcher:   catalog.NewMatcher(cfg.Resolver.SimilarityThreshold),
		Zone:      "America/Chicago",
		Now:       time.Now,
	}
}

// Run executes the pipeline for one request. Item-level failures accumulate
// in the summary; only configuration problems return an error.
func (r *Runner) Run(ctx context.Context, req Request) (models.Summary, error) {
	start := r.Now()
	defer func() {
		metrics.RunDuration.Observe(time.Since(start).Seconds())
	}()

	if req.URL == "" {
		return models.Summary{}, fmt.Errorf("ingest: no URL given")
	}
	if !req.Category.Valid() {
		return models.Summary{}, fmt.Errorf("ingest: unknown category %q", req.Category)
	}
	if r.Store == nil && !req.DryRun {
		return models.Summary{}, fmt.Errorf("ingest: no catalog store configured")
	}

	ref := start
	var summary models.Summary

	pages := r.fetchPages(ctx, req, &summary)

	type pending struct {
		cand models.CandidateRecord
		page models.ScrapeResult
	}
	var all []pending
	seen := make(map[string]bool)

	for _, page := range pages {
		if !page.Success {
			summary.Errors = append(summary.Errors, models.ItemError{
				URL: page.URL, Stage: "scrape", Err: page.Err,
			})
			continue
		}
		cands, err := r.Extractor.Extract(ctx, req.Category, page, ref)
		if err != nil {
			summary.Errors = append(summary.Errors, models.ItemError{
				URL: page.URL, Stage: "extract", Err: err.Error(),
			})
			continue
		}
		summary.TotalFound += len(cands)
		for _, c := range cands {
			metrics.CandidatesExtracted.WithLabelValues(string(req.Category)).Inc()
			key := dedupKey(c)
			if seen[key] {
				summary.Dropped++
				continue
			}
			seen[key] = true
			all = append(all, pending{cand: c, page: page})
		}
	}

	for _, p := range all {
		resolved, ok := r.resolveItem(ctx, p.cand, p.page, &summary)
		if !ok {
			continue
		}
		if p.cand.Category == models.CategoryEvents {
			summary.FutureItems++
		}
		r.commit(ctx, req, resolved, &summary)
	}

	return summary, nil
}

// fetchPages turns the request URL into scraped listing pages: paginated
// expansion for aggregator list URLs, event-page probing for bare venue
// roots, a single fetch otherwise.
func (r *Runner) fetchPages(ctx context.Context, req Request, summary *models.Summary) []models.ScrapeResult {
	if req.Category == models.CategoryEvents && isSiteRoot(req.URL) {
		if res, ok := r.probeBestEventPage(ctx, req.URL, req.BackendOverride); ok {
			return []models.ScrapeResult{res}
		}
		summary.Errors = append(summary.Errors, models.ItemError{
			URL: req.URL, Stage: "scrape", Err: "no reachable page on site",
		})
		return nil
	}

	urls := []string{req.URL}
	if resolver.IsListURL(req.URL) && req.MaxPages > 1 {
		urls = ExpandPagination(req.URL, req.MaxPages)
	}

	targets := make([]models.ScrapeTarget, len(urls))
	for i, u := range urls {
		targets[i] = models.ScrapeTarget{URL: u, BackendHint: req.BackendOverride}
	}
	return r.Fetcher.FetchAll(ctx, targets)
}

// resolveItem runs URL resolution and datetime normalization for one
// candidate. Resolution failures degrade to the detail-page URL; datetime
// failures on dated records drop the item.
func (r *Runner) resolveItem(ctx context.Context, cand models.CandidateRecord, page models.ScrapeResult, summary *models.Summary) (models.ResolvedEvent, bool) {
	out := models.ResolvedEvent{Candidate: cand}

	canonical, note := r.resolveSourceURL(ctx, cand, page)
	out.CanonicalURL = canonical
	out.URLFallbackNote = note

	if cand.DateRaw != "" || cand.Category == models.CategoryEvents {
		res, ok := datetime.Parse(cand.DateRaw, "", r.Zone)
		if !ok {
			if cand.Category == models.CategoryEvents {
				log.Printf("dropping %q: unparsable date %q", cand.Title, cand.DateRaw)
				summary.Dropped++
				summary.Errors = append(summary.Errors, models.ItemError{
					Title: cand.Title, URL: page.URL, Stage: "datetime",
					Err: fmt.Sprintf("unparsable date %q", cand.DateRaw),
				})
				return models.ResolvedEvent{}, false
			}
			// Dated non-event records keep going without a normalized time.
		} else {
			out.StartUTC = res.UTC
			out.StartLocal = res.Local
			out.Timezone = r.Zone
		}
	}
	return out, true
}

// resolveSourceURL finds the canonical outbound URL for one candidate. The
// record always survives; a resolution failure just keeps the best
// aggregator URL we have, with a note saying so.
func (r *Runner) resolveSourceURL(ctx context.Context, cand models.CandidateRecord, page models.ScrapeResult) (string, string) {
	if cand.Category != models.CategoryEvents {
		if u, ok := r.Resolver.Normalize(cand.Website); ok && !r.Resolver.Excluded(u) {
			return u, ""
		}
		return "", ""
	}

	if u, ok := r.Resolver.Normalize(cand.SourceRaw); ok && !r.Resolver.Excluded(u) {
		metrics.URLResolutions.WithLabelValues("extracted").Inc()
		return u, ""
	}

	detailURL := cand.DetailURL
	if detailURL == "" {
		links := r.Resolver.ExtractDetailLinks(page.HTML)
		if link, ok := resolver.MatchDetailLink(cand.Title, links); ok {
			detailURL = link.URL
		}
	}

	if detailURL != "" && resolver.IsDetailURL(detailURL) {
		detail := r.Fetcher.Fetch(ctx, models.ScrapeTarget{URL: detailURL})
		if detail.Success {
			if u, matcher, ok := r.Resolver.ResolveVisitURL(detail.HTML); ok {
				metrics.URLResolutions.WithLabelValues(matcher).Inc()
				return u, ""
			}
		}
		metrics.URLResolutions.WithLabelValues("fallback").Inc()
		return detailURL, "source link not found; kept aggregator detail page"
	}

	metrics.URLResolutions.WithLabelValues("none").Inc()
	return page.URL, "no detail page found; kept listing page URL"
}

// commit matches one resolved item against the catalog and applies the
// decision. Writes are sequential and item-level failures accumulate.
func (r *Runner) commit(ctx context.Context, req Request, item models.ResolvedEvent, summary *models.Summary) {
	entry := toEntry(item)

	var existing []models.CatalogEntry
	if r.Store != nil {
		var err error
		existing, err = r.Store.FindByNameAndLocation(ctx, entry.Category, entry.Title, entry.Location)
		if err != nil {
			summary.Errors = append(summary.Errors, models.ItemError{
				Title: entry.Title, Stage: "catalog", Err: err.Error(),
			})
			return
		}
	}

	decision := r.Matcher.Decide(entry, existing)
	metrics.CatalogWrites.WithLabelValues(string(decision.Action)).Inc()

	if req.DryRun {
		summary.Preview = append(summary.Preview, item)
		switch decision.Action {
		case models.ActionInsert:
			summary.Inserted++
		case models.ActionUpdate:
			summary.Updated++
		default:
			summary.Skipped++
		}
		return
	}

	switch decision.Action {
	case models.ActionInsert:
		if _, err := r.Store.Insert(ctx, decision.Merged); err != nil {
			summary.Errors = append(summary.Errors, models.ItemError{
				Title: entry.Title, Stage: "insert", Err: err.Error(),
			})
			return
		}
		summary.Inserted++
	case models.ActionUpdate:
		if err := r.Store.Update(ctx, decision.ExistingID, decision.Merged); err != nil {
			summary.Errors = append(summary.Errors, models.ItemError{
				Title: entry.Title, Stage: "update", Err: err.Error(),
			})
			return
		}
		summary.Updated++
	default:
		summary.Skipped++
	}
}

func toEntry(item models.ResolvedEvent) models.CatalogEntry {
	c := item.Candidate
	return models.CatalogEntry{
		Category:    c.Category,
		Title:       c.Title,
		Description: c.Description,
		Location:    c.Location,
		Venue:       c.Venue,
		Cuisine:     c.Cuisine,
		Price:       c.Price,
		Status:      c.Status,
		Timeframe:   c.Timeframe,
		Phone:       c.Phone,
		Website:     c.Website,
		SourceURL:   item.CanonicalURL,
		StartUTC:    item.StartUTC,
		StartLocal:  item.StartLocal,
		Timezone:    item.Timezone,
	}
}

// dedupKey collapses repeat sightings of the same listing within a run.
// Events key on title+venue, everything else on title+location.
func dedupKey(c models.CandidateRecord) string {
	second := c.Location
	if c.Category == models.CategoryEvents && c.Venue != "" {
		second = c.Venue
	}
	return string(c.Category) + "|" + textmatch.Normalize(c.Title) + "|" + textmatch.Normalize(second)
}
