package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/dj-pearson/pulse-ingest/pkg/models"
)

// DefaultCharBudget bounds how much page text goes into one generation
// request. Listing pages routinely exceed it several times over.
const DefaultCharBudget = 15000

// mainSelectors are tried in order; the first non-trivial match becomes the
// extraction text. Falling through all of them means taking the whole body.
var mainSelectors = []string{
	"main",
	`[role="main"]`,
	"#main",
	"#content",
	".main-content",
	"article",
}

// ReduceContent turns a scrape result into bounded plain text for the
// extraction prompt. Markdown from a rendering backend is used as-is;
// raw HTML is stripped of script/style/nav chrome and narrowed to the
// main content area when one exists.
func ReduceContent(res models.ScrapeResult, budget int) string {
	if budget <= 0 {
		budget = DefaultCharBudget
	}
	if res.Markdown != "" {
		return truncate(res.Markdown, budget)
	}
	if res.HTML == "" {
		return truncate(res.Text, budget)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(res.HTML))
	if err != nil {
		return truncate(res.Text, budget)
	}

	doc.Find("script, style, noscript, iframe, svg").Remove()

	var text string
	for _, sel := range mainSelectors {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			if t := collapse(s.Text()); len(t) > 200 {
				text = t
				break
			}
		}
	}
	if text == "" {
		doc.Find("nav, header, footer").Remove()
		text = collapse(doc.Find("body").Text())
	}
	return truncate(text, budget)
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n]
}
