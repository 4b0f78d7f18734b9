package resolver

import (
	"strings"
	"testing"
)

const base = "https://www.catchdesmoines.com"

func TestIsDetailURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"/event/jazz-night/12345/", true},
		{"https://www.catchdesmoines.com/event/jazz-night/12345/", true},
		{"/event/jazz-night/12345", true},
		{"/events/?filter=music", false},
		{"/events/", false},
		{"/event/jazz-night/", false}, // numeric id required
		{"/event/jazz-night/abc/", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsDetailURL(tt.url); got != tt.want {
			t.Errorf("IsDetailURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestIsListURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"/events/?filter=music", true},
		{"/events/", true},
		{"https://www.catchdesmoines.com/events?skip=12", true},
		{"/event/jazz-night/12345/", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsListURL(tt.url); got != tt.want {
			t.Errorf("IsListURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	r := New(base)

	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"https://venue.example.com/show", "https://venue.example.com/show", true},
		{"//venue.example.com/show", "https://venue.example.com/show", true},
		{"/event/jazz-night/12345/", base + "/event/jazz-night/12345/", true},
		{"javascript:void(0)", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := r.Normalize(tt.in)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("Normalize(%q) = (%q,%v), want (%q,%v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestExcluded(t *testing.T) {
	r := New(base)

	excluded := []string{
		"https://www.facebook.com/someevent",
		"https://instagram.com/venue",
		"https://www.catchdesmoines.com/event/jazz/1/",
		"mailto:info@venue.com",
		"https://example.com/page#section",
	}
	for _, u := range excluded {
		if !r.Excluded(u) {
			t.Errorf("Excluded(%q) = false, want true", u)
		}
	}

	if r.Excluded("https://venue.example.com/show") {
		t.Error("plain venue URL should not be excluded")
	}
}

func TestResolveVisitURLMatcherOrder(t *testing.T) {
	r := New(base)

	tests := []struct {
		name        string
		html        string
		wantURL     string
		wantMatcher string
	}{
		{
			name:        "action-item class wins",
			html:        `<a href="https://venue.example.com/show" target="_blank" class="action-item"><i class="icon"></i>Visit Website</a>`,
			wantURL:     "https://venue.example.com/show",
			wantMatcher: "action-item-class",
		},
		{
			name:        "link text alone",
			html:        `<div><a href="https://venue.example.com/show">Visit Website</a></div>`,
			wantURL:     "https://venue.example.com/show",
			wantMatcher: "visit-website-text",
		},
		{
			name:        "blank target with qualifying text",
			html:        `<a href="https://venue.example.com/" target="_blank">Official Website</a>`,
			wantURL:     "https://venue.example.com/",
			wantMatcher: "blank-target-text",
		},
		{
			name:        "priority ticketing anchor",
			html:        `<a href="https://example.org/about">About</a><a href="https://www.eventbrite.com/e/jazz-12345">Get Tickets</a>`,
			wantURL:     "https://www.eventbrite.com/e/jazz-12345",
			wantMatcher: "priority-anchor",
		},
		{
			name:        "embedded json blob",
			html:        `<script>var data = {"ticketUrl": "https://tickets.example.com/jazz"};</script>`,
			wantURL:     "https://tickets.example.com/jazz",
			wantMatcher: "embedded-json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url, matcher, ok := r.ResolveVisitURL(tt.html)
			if !ok {
				t.Fatal("expected a match")
			}
			if url != tt.wantURL {
				t.Errorf("url = %q, want %q", url, tt.wantURL)
			}
			if matcher != tt.wantMatcher {
				t.Errorf("matcher = %q, want %q", matcher, tt.wantMatcher)
			}
		})
	}
}

func TestResolveVisitURLSkipsExcluded(t *testing.T) {
	r := New(base)

	html := `
		<a href="https://www.facebook.com/event" class="action-item">Visit Website</a>
		<a href="https://venue.example.com/show" class="action-item">Visit Website</a>`

	url, _, ok := r.ResolveVisitURL(html)
	if !ok {
		t.Fatal("expected a match")
	}
	if url != "https://venue.example.com/show" {
		t.Errorf("expected excluded facebook link to be skipped, got %q", url)
	}
}

func TestResolveVisitURLNoMatch(t *testing.T) {
	r := New(base)

	html := `<a href="https://www.instagram.com/venue">Visit Website</a><p>no other links</p>`
	if _, _, ok := r.ResolveVisitURL(html); ok {
		t.Error("expected no match when every candidate is excluded")
	}
}

func TestResolveVisitURLNormalizesRelative(t *testing.T) {
	r := New("https://aggregator.example.com")
	r.ExcludedDomains = []string{"mailto:", "tel:", "#"}

	html := `<a href="//venue.example.com/show" class="action-item">Visit Website</a>`
	url, _, ok := r.ResolveVisitURL(html)
	if !ok || url != "https://venue.example.com/show" {
		t.Errorf("protocol-relative link not normalized, got (%q,%v)", url, ok)
	}
}

func TestExtractDetailLinks(t *testing.T) {
	r := New(base)

	html := `
		<a href="/event/jazz-night/12345/">Jazz Night</a>
		<a href="https://www.catchdesmoines.com/event/iowa-cubs-game/678/">Cubs</a>
		<a href="/event/jazz-night/12345/">duplicate</a>
		<a href="/events/?filter=music">All Events</a>
		<a href="/event/ab/99/">too short slug</a>`

	links := r.ExtractDetailLinks(html)
	if len(links) != 2 {
		t.Fatalf("expected 2 links, got %d: %+v", len(links), links)
	}
	if links[0].Slug != "jazznight" || links[0].ID != "12345" {
		t.Errorf("unexpected first link %+v", links[0])
	}
	if !strings.HasPrefix(links[0].URL, base) {
		t.Errorf("relative link should be absolutized, got %q", links[0].URL)
	}
}

func TestMatchDetailLink(t *testing.T) {
	links := []DetailLink{
		{URL: "u1", Slug: "jazznightatthetemple", ID: "1"},
		{URL: "u2", Slug: "iowacubsvsomahagame", ID: "2"},
	}

	tests := []struct {
		name    string
		title   string
		wantURL string
		wantOK  bool
	}{
		{"close prefix", "Jazz Night at the Temple", "u1", true},
		{"substring match", "Iowa Cubs vs Omaha", "u2", true},
		{"no relation", "Quilting Expo", "", false},
		{"empty title", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, ok := MatchDetailLink(tt.title, links)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && l.URL != tt.wantURL {
				t.Errorf("url = %q, want %q", l.URL, tt.wantURL)
			}
		})
	}
}
