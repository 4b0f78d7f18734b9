package resolver

import (
	"net/url"
	"regexp"
	"strings"
)

// detailAnchorRe finds /event/<slug>/<id>/ hrefs inside raw list-page HTML.
var detailAnchorRe = regexp.MustCompile(`(?i)href=["']([^"']*/event/([^/"']+)/(\d+)/?)["']`)

// DetailLink is one detail-page URL harvested from a list page, keyed for
// matching by its normalized slug.
type DetailLink struct {
	URL  string
	Slug string // lowercased, alphanumerics only
	ID   string
}

// ExtractDetailLinks scans list-page HTML for detail-page anchors. Links that
// fail detail-URL validation are discarded.
func (r *Resolver) ExtractDetailLinks(html string) []DetailLink {
	seen := make(map[string]struct{})
	var links []DetailLink

	for _, m := range detailAnchorRe.FindAllStringSubmatch(html, -1) {
		raw, slug, id := m[1], m[2], m[3]

		full, ok := r.Normalize(raw)
		if !ok || !IsDetailURL(full) {
			continue
		}

		decoded := slug
		if d, err := url.PathUnescape(slug); err == nil {
			decoded = d
		}
		norm := normalizeSlug(decoded)
		if len(norm) <= 2 {
			continue
		}
		if _, dup := seen[full]; dup {
			continue
		}
		seen[full] = struct{}{}
		links = append(links, DetailLink{URL: full, Slug: norm, ID: id})
	}
	return links
}

// MatchDetailLink picks the detail page most likely to belong to title.
// Titles usually track their URL slugs closely, so matching compares the
// normalized title against each slug by character-prefix overlap, falling
// back to an 8+ character substring test in either direction. The heuristic
// can confuse listings with a long shared prefix; see DESIGN.md.
func MatchDetailLink(title string, links []DetailLink) (DetailLink, bool) {
	norm := normalizeSlug(title)
	if norm == "" {
		return DetailLink{}, false
	}

	for _, l := range links {
		overlap := prefixOverlap(norm, l.Slug)
		if overlap >= 10 || (overlap >= 5 && float64(overlap) >= float64(len(norm))*0.5) {
			return l, true
		}
		if len(l.Slug) > 8 && strings.Contains(norm, l.Slug[:8]) {
			return l, true
		}
		if len(norm) > 8 && strings.Contains(l.Slug, norm[:8]) {
			return l, true
		}
	}
	return DetailLink{}, false
}

func normalizeSlug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func prefixOverlap(a, b string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	count := 0
	for i := 0; i < n; i++ {
		if a[i] == b[i] {
			count++
		}
	}
	return count
}
