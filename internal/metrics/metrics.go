// Package metrics exposes the pipeline's Prometheus instrumentation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ScrapeAttempts counts backend fetch attempts by backend and outcome.
	ScrapeAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_scrape_attempts_total",
		Help: "Page fetch attempts by backend and outcome.",
	}, []string{"backend", "outcome"})

	// CandidatesExtracted counts validated candidates by category.
	CandidatesExtracted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_candidates_extracted_total",
		Help: "Candidate records that passed extraction validation, by category.",
	}, []string{"category"})

	// URLResolutions counts source URL resolution outcomes by matcher.
	URLResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_url_resolutions_total",
		Help: "Source URL resolution outcomes by matcher (or 'fallback'/'none').",
	}, []string{"matcher"})

	// CatalogWrites counts catalog write decisions.
	CatalogWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_catalog_writes_total",
		Help: "Catalog match decisions by action.",
	}, []string{"action"})

	// RunDuration observes end-to-end ingestion run time.
	RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ingest_run_duration_seconds",
		Help:    "End-to-end ingestion run duration.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})
)

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
