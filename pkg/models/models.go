package models

import (
	"time"
)

// BackendName identifies one page-fetching strategy.
type BackendName string

const (
	BackendBrowser     BackendName = "browser"
	BackendBrowserless BackendName = "browserless"
	BackendRendered    BackendName = "rendered"
	BackendHTTP        BackendName = "http"
)

// ScrapeTarget describes one page to fetch. Created per crawl request and
// consumed once by the orchestrator.
type ScrapeTarget struct {
	URL         string        `json:"url"`
	BackendHint BackendName   `json:"backend_hint,omitempty"`
	Wait        time.Duration `json:"wait"`
	Timeout     time.Duration `json:"timeout"`
}

// ScrapeResult is the outcome of exactly one backend attempt. A failed result
// triggers fallback to the next configured backend; it is never mutated after
// being produced.
type ScrapeResult struct {
	URL        string        `json:"url"`
	Success    bool          `json:"success"`
	Backend    BackendName   `json:"backend"`
	HTML       string        `json:"html,omitempty"`
	Markdown   string        `json:"markdown,omitempty"`
	Text       string        `json:"text,omitempty"`
	Err        string        `json:"error,omitempty"`
	StatusCode int           `json:"status_code,omitempty"`
	Duration   time.Duration `json:"duration"`
	Timestamp  time.Time     `json:"timestamp"`
}

// Content returns the best available page content for extraction, preferring
// markdown when a rendering backend supplied it.
func (r ScrapeResult) Content() string {
	if r.Markdown != "" {
		return r.Markdown
	}
	if r.Text != "" {
		return r.Text
	}
	return r.HTML
}

// Category selects the extraction schema and the catalog table a candidate
// belongs to.
type Category string

const (
	CategoryEvents             Category = "events"
	CategoryRestaurants        Category = "restaurants"
	CategoryRestaurantOpenings Category = "restaurant_openings"
	CategoryAttractions        Category = "attractions"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryEvents, CategoryRestaurants, CategoryRestaurantOpenings, CategoryAttractions:
		return true
	}
	return false
}

// OpeningStatus is the lifecycle state of a restaurant-opening entry. The
// order is forward-only: a cataloged entry never moves backwards.
type OpeningStatus string

const (
	StatusAnnounced   OpeningStatus = "announced"
	StatusOpeningSoon OpeningStatus = "opening_soon"
	StatusNewlyOpened OpeningStatus = "newly_opened"
	StatusOpen        OpeningStatus = "open"
)

// Rank returns the position of s in the lifecycle, or -1 for unknown states.
func (s OpeningStatus) Rank() int {
	switch s {
	case StatusAnnounced:
		return 0
	case StatusOpeningSoon:
		return 1
	case StatusNewlyOpened:
		return 2
	case StatusOpen:
		return 3
	}
	return -1
}

// CandidateRecord is one unresolved, unmatched listing extracted from a page.
// It is transient: merged into the catalog or rejected, never stored as-is.
type CandidateRecord struct {
	Category    Category      `json:"category"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Location    string        `json:"location,omitempty"`
	Venue       string        `json:"venue,omitempty"`
	Cuisine     string        `json:"cuisine,omitempty"`
	Price       string        `json:"price,omitempty"`
	DateRaw     string        `json:"date_raw,omitempty"`
	Timeframe   string        `json:"timeframe,omitempty"`
	Status      OpeningStatus `json:"status,omitempty"`
	Phone       string        `json:"phone,omitempty"`
	Website     string        `json:"website,omitempty"`
	DetailURL   string        `json:"detail_url,omitempty"`
	SourceRaw   string        `json:"source_url_raw,omitempty"`
}

// ResolvedEvent is a candidate that survived URL resolution and datetime
// normalization. Produced at most once per candidate; a candidate that fails a
// required step is dropped with a reason, never partially committed.
type ResolvedEvent struct {
	Candidate       CandidateRecord `json:"candidate"`
	CanonicalURL    string          `json:"canonical_source_url"`
	URLFallbackNote string          `json:"url_fallback_note,omitempty"`
	StartUTC        time.Time       `json:"event_start_utc"`
	StartLocal      string          `json:"event_start_local"`
	Timezone        string          `json:"timezone_name"`
}

// CatalogEntry is the persisted row being matched against. The pipeline reads
// and conditionally updates or inserts entries; it never deletes.
type CatalogEntry struct {
	ID          string        `json:"id"`
	Category    Category      `json:"category"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Location    string        `json:"location,omitempty"`
	Venue       string        `json:"venue,omitempty"`
	Cuisine     string        `json:"cuisine,omitempty"`
	Price       string        `json:"price,omitempty"`
	Status      OpeningStatus `json:"status,omitempty"`
	Timeframe   string        `json:"timeframe,omitempty"`
	Phone       string        `json:"phone,omitempty"`
	Website     string        `json:"website,omitempty"`
	SourceURL   string        `json:"source_url,omitempty"`
	StartUTC    time.Time     `json:"event_start_utc,omitempty"`
	StartLocal  string        `json:"event_start_local,omitempty"`
	Timezone    string        `json:"event_timezone,omitempty"`
	UpdatedAt   time.Time     `json:"updated_at,omitempty"`
}

// MatchAction is the single write a MatchDecision prescribes.
type MatchAction string

const (
	ActionInsert MatchAction = "insert"
	ActionUpdate MatchAction = "update"
	ActionSkip   MatchAction = "skip"
)

// MatchDecision maps one resolved candidate onto the catalog.
type MatchDecision struct {
	ExistingID   string       `json:"existing_entry_id,omitempty"`
	Similarity   float64      `json:"similarity_score"`
	Action       MatchAction  `json:"action"`
	Merged       CatalogEntry `json:"merged_fields"`
	ChangeReason string       `json:"change_reason,omitempty"`
}

// ItemError reports one per-item failure inside a run.
type ItemError struct {
	Title string `json:"title,omitempty"`
	URL   string `json:"url,omitempty"`
	Stage string `json:"stage"`
	Err   string `json:"error"`
}

// Summary is the outcome of one ingestion run. It is always returned, even
// when every item failed; only configuration-level problems surface as errors
// from the run itself.
type Summary struct {
	TotalFound  int             `json:"totalFound"`
	FutureItems int             `json:"futureItems"`
	Inserted    int             `json:"inserted"`
	Updated     int             `json:"updated"`
	Skipped     int             `json:"skipped"`
	Dropped     int             `json:"dropped"`
	Errors      []ItemError     `json:"errors,omitempty"`
	Preview     []ResolvedEvent `json:"preview,omitempty"`
}
