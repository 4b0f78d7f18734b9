package ingest

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/dj-pearson/pulse-ingest/internal/config"
	"github.com/dj-pearson/pulse-ingest/pkg/models"
)

// pageSize is the aggregator's fixed listing page size, reflected in its
// skip parameter.
const pageSize = 12

// ExpandPagination turns one listing URL into maxPages paginated URLs using
// the aggregator's skip parameter. The first URL is always the original.
func ExpandPagination(listURL string, maxPages int) []string {
	urls := []string{listURL}
	if maxPages <= 1 {
		return urls
	}
	sep := "?"
	if strings.Contains(listURL, "?") {
		sep = "&"
	}
	for page := 1; page < maxPages; page++ {
		urls = append(urls, fmt.Sprintf("%s%sskip=%d", listURL, sep, page*pageSize))
	}
	return urls
}

// eventKeywords score a page's likelihood of being an event listing.
var eventKeywords = []string{
	"event", "concert", "show", "performance", "tickets",
	"calendar", "live music", "doors", "upcoming",
}

// probeBestEventPage hunts for a venue site's event listing across common
// paths, scoring each fetched page by keyword density. Returns the root page
// when nothing scores better.
func (r *Runner) probeBestEventPage(ctx context.Context, siteURL string, hint models.BackendName) (models.ScrapeResult, bool) {
	base := strings.TrimRight(siteURL, "/")

	targets := []models.ScrapeTarget{{URL: siteURL, BackendHint: hint}}
	for _, p := range config.DefaultProbePaths {
		targets = append(targets, models.ScrapeTarget{URL: base + p, BackendHint: hint})
	}

	results := r.Fetcher.FetchAll(ctx, targets)

	best := -1
	bestScore := 0
	for i, res := range results {
		if !res.Success {
			continue
		}
		score := scoreEventPage(res.Content())
		if i == 0 && best == -1 {
			best, bestScore = 0, score
			continue
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return models.ScrapeResult{}, false
	}
	if best > 0 {
		log.Printf("probed %s: using %s (score %d)", siteURL, results[best].URL, bestScore)
	}
	return results[best], true
}

func scoreEventPage(content string) int {
	lower := strings.ToLower(content)
	score := 0
	for _, kw := range eventKeywords {
		n := strings.Count(lower, kw)
		if n > 20 {
			n = 20
		}
		score += n
	}
	return score
}

// isSiteRoot reports whether u points at a bare host with no meaningful
// path, the case where probing for an event page is worth the extra
// fetches.
func isSiteRoot(u string) bool {
	parsed, err := url.Parse(u)
	if err != nil {
		return false
	}
	return parsed.Path == "" || parsed.Path == "/"
}
