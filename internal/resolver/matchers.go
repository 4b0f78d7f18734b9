package resolver

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// matcher is one strategy for locating the outbound link in detail-page
// HTML. Matchers are tried strictly in order; the first normalized,
// non-excluded URL wins.
type matcher struct {
	name string
	fn   func(r *Resolver, doc *goquery.Document, html string) string
}

var matchers = []matcher{
	{"action-item-class", matchActionItemClass},
	{"visit-website-text", matchVisitWebsiteText},
	{"blank-target-text", matchBlankTargetText},
	{"priority-anchor", matchPriorityAnchor},
	{"embedded-json", matchEmbeddedJSON},
}

// ResolveVisitURL runs the matcher chain over detail-page HTML and returns
// the canonical outbound URL plus the name of the matcher that produced it.
func (r *Resolver) ResolveVisitURL(html string) (string, string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", "", false
	}
	for _, m := range matchers {
		if url := m.fn(r, doc, html); url != "" {
			return url, m.name, true
		}
	}
	return "", "", false
}

// matchActionItemClass finds the aggregator's dedicated action button: an
// anchor carrying the action-item class.
func matchActionItemClass(r *Resolver, doc *goquery.Document, _ string) string {
	var found string
	doc.Find("a.action-item").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, ok := s.Attr("href")
		if !ok {
			return true
		}
		if u, ok := r.acceptable(href); ok {
			found = u
			return false
		}
		return true
	})
	return found
}

// matchVisitWebsiteText matches any anchor whose visible text says "Visit
// Website", regardless of class.
func matchVisitWebsiteText(r *Resolver, doc *goquery.Document, _ string) string {
	return r.firstAnchorWithText(doc, "a", "visit website")
}

// matchBlankTargetText matches external-style anchors (target=_blank) whose
// text still qualifies them as a website link.
func matchBlankTargetText(r *Resolver, doc *goquery.Document, _ string) string {
	return r.firstAnchorWithText(doc, `a[target="_blank"]`, "website")
}

func (r *Resolver) firstAnchorWithText(doc *goquery.Document, selector, needle string) string {
	var found string
	doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.ToLower(strings.Join(strings.Fields(s.Text()), " "))
		if !strings.Contains(text, needle) {
			return true
		}
		href, ok := s.Attr("href")
		if !ok {
			return true
		}
		if u, ok := r.acceptable(href); ok {
			found = u
			return false
		}
		return true
	})
	return found
}

// matchPriorityAnchor scans every external anchor on the page for ticketing
// and registration platforms. Runs after the text matchers so an explicit
// "Visit Website" link always outranks a ticket link.
func matchPriorityAnchor(r *Resolver, doc *goquery.Document, _ string) string {
	var found string
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		if !strings.HasPrefix(href, "http") {
			return true
		}
		u, ok := r.acceptable(href)
		if !ok {
			return true
		}
		lower := strings.ToLower(u)
		for _, d := range r.PriorityDomains {
			if strings.Contains(lower, d) {
				found = u
				return false
			}
		}
		return true
	})
	return found
}

// Embedded data blobs sometimes carry the link the markup never rendered.
// Event-specific fields are tried before generic website fields, which often
// hold the venue homepage rather than the listing's own page.
var jsonURLFields = []*regexp.Regexp{
	regexp.MustCompile(`(?i)["']ticketUrl["']\s*:\s*["'](https?://[^"']+)["']`),
	regexp.MustCompile(`(?i)["']eventUrl["']\s*:\s*["'](https?://[^"']+)["']`),
	regexp.MustCompile(`(?i)["']linkUrl["']\s*:\s*["'](https?://[^"']+)["']`),
	regexp.MustCompile(`(?i)["']externalUrl["']\s*:\s*["'](https?://[^"']+)["']`),
	regexp.MustCompile(`(?i)["']weburl["']\s*:\s*["'](https?://[^"']+)["']`),
	regexp.MustCompile(`(?i)["']web_url["']\s*:\s*["'](https?://[^"']+)["']`),
	regexp.MustCompile(`(?i)["']website_url["']\s*:\s*["'](https?://[^"']+)["']`),
}

func matchEmbeddedJSON(r *Resolver, _ *goquery.Document, html string) string {
	for _, re := range jsonURLFields {
		for _, m := range re.FindAllStringSubmatch(html, -1) {
			if u, ok := r.acceptable(m[1]); ok {
				return u
			}
		}
	}
	return ""
}
