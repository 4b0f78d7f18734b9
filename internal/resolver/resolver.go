// Package resolver extracts the canonical outbound "visit site" link from an
// aggregator's listing detail page. Aggregators bury the real source URL
// behind inconsistent markup, so resolution runs an ordered chain of
// structural matchers with an HTML-level fallback for candidates whose detail
// page was never linked by the extractor.
package resolver

import (
	"regexp"
	"strings"
)

// DefaultExcludedDomains is the substring blocklist applied to every
// candidate URL. Social platforms, analytics and CDN hosts, mail/tel links,
// and the aggregator's own domain never count as a listing's true source.
var DefaultExcludedDomains = []string{
	"catchdesmoines.com",
	"simpleview",
	"facebook.com",
	"twitter.com",
	"instagram.com",
	"youtube.com",
	"vimeo.com",
	"google.com",
	"googleapis.com",
	"cloudflare",
	"doubleclick",
	"mailto:",
	"tel:",
	"#",
}

// DefaultPriorityDomains mark ticketing and registration platforms. When the
// matcher chain finds nothing, an external anchor pointing at one of these is
// preferred over arbitrary outbound links.
var DefaultPriorityDomains = []string{
	"eventbrite", "ticketmaster", "tickets", "register", "signup", "rsvp",
	"axs.com", "ticketfly", "seetickets", "stubhub", "vivid", "seatgeek",
	"etix", "showclix", "eventeny", "universe.com", "dice.fm", "goelevent",
}

// Detail pages look like /event/<slug>/<numeric-id>/; the numeric id is
// required. Without it the aggregator serves a page with no outbound link.
var (
	detailURLRe = regexp.MustCompile(`(?i)/event/[^/]+/\d+/?$`)
	listURLRe   = regexp.MustCompile(`(?i)/events/?(\?|#|$)`)
)

// Resolver holds the per-aggregator policy for source URL extraction.
type Resolver struct {
	// BaseURL is the aggregator origin used to absolutize site-relative
	// links, e.g. "https://www.catchdesmoines.com".
	BaseURL string

	// ExcludedDomains are case-insensitive substrings that disqualify a
	// candidate URL.
	ExcludedDomains []string

	// PriorityDomains steer the external-anchor fallback toward ticketing
	// platforms.
	PriorityDomains []string
}

// New returns a Resolver with the default exclusion and priority lists.
func New(baseURL string) *Resolver {
	return &Resolver{
		BaseURL:         strings.TrimRight(baseURL, "/"),
		ExcludedDomains: DefaultExcludedDomains,
		PriorityDomains: DefaultPriorityDomains,
	}
}

// IsDetailURL reports whether url is a listing's own page rather than a
// multi-listing index. Only detail pages carry a "visit website" link.
func IsDetailURL(url string) bool {
	if url == "" {
		return false
	}
	return detailURLRe.MatchString(strings.Split(url, "?")[0])
}

// IsListURL reports whether url is a list/filtered-listing page. List pages
// superficially resemble detail pages but point back at the aggregator.
func IsListURL(url string) bool {
	if url == "" {
		return false
	}
	return listURLRe.MatchString(url) && !IsDetailURL(url)
}

// Excluded reports whether url hits the exclusion list.
func (r *Resolver) Excluded(url string) bool {
	lower := strings.ToLower(url)
	for _, d := range r.ExcludedDomains {
		if strings.Contains(lower, strings.ToLower(d)) {
			return true
		}
	}
	return false
}

// Normalize absolutizes protocol-relative and site-relative URLs against the
// aggregator origin. It returns ok=false for anything that does not come out
// as an http(s) URL.
func (r *Resolver) Normalize(raw string) (string, bool) {
	u := strings.TrimSpace(raw)
	switch {
	case u == "":
		return "", false
	case strings.HasPrefix(u, "//"):
		u = "https:" + u
	case strings.HasPrefix(u, "/"):
		u = r.BaseURL + u
	}
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		return "", false
	}
	return u, true
}

// acceptable normalizes raw and applies the exclusion policy in one step.
func (r *Resolver) acceptable(raw string) (string, bool) {
	u, ok := r.Normalize(raw)
	if !ok || r.Excluded(u) {
		return "", false
	}
	return u, true
}
