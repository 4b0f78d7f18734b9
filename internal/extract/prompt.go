package extract

import (
	"fmt"
	"strings"
	"time"

	"github.com/dj-pearson/pulse-ingest/pkg/models"
)

// categorySchemas spell out, per category, exactly which fields the model
// must emit. Loose prompts produce loose JSON; these are deliberately
// explicit about formats and about returning [] when nothing matches.
var categorySchemas = map[models.Category]string{
	models.CategoryEvents: `Each object must have:
- "title": event name (required)
- "date": start date in YYYY-MM-DD format (required; use the reference date to resolve relative or partial dates)
- "time": start time in HH:MM 24-hour format, or "" if the page gives none
- "venue": venue name, or ""
- "location": address or neighborhood, or ""
- "description": one or two sentences, or ""
- "price": ticket price text, or ""
- "url": the event's own page or ticket URL if shown, or ""`,

	models.CategoryRestaurants: `Each object must have:
- "name": restaurant name (required)
- "cuisine": cuisine type, or ""
- "location": address or neighborhood, or ""
- "price_range": like "$" through "$$$$", or ""
- "description": one or two sentences, or ""
- "phone": phone number, or ""
- "website": the restaurant's own site, or ""`,

	models.CategoryRestaurantOpenings: `Each object must have:
- "name": restaurant name (required)
- "cuisine": cuisine type, or ""
- "location": address or neighborhood, or ""
- "status": one of "announced", "opening_soon", "newly_opened", "open"
- "timeframe": opening timeframe as written on the page, or ""
- "opening_date": in YYYY-MM-DD if the page gives an exact date, or ""
- "description": one or two sentences, or ""`,

	models.CategoryAttractions: `Each object must have:
- "name": attraction name (required)
- "location": address or neighborhood, or ""
- "description": one or two sentences, or ""
- "price": admission price text, or ""
- "website": the attraction's own site, or ""`,
}

func categoryNoun(c models.Category) string {
	switch c {
	case models.CategoryEvents:
		return "events"
	case models.CategoryRestaurants:
		return "restaurants"
	case models.CategoryRestaurantOpenings:
		return "restaurant openings (announced, upcoming, or newly opened restaurants)"
	case models.CategoryAttractions:
		return "attractions"
	}
	return string(c)
}

// buildPrompt assembles the extraction request for one page.
func buildPrompt(category models.Category, pageURL, content string, ref time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Today's date is %s. Extract all %s from the following web page content.\n\n",
		ref.Format("2006-01-02"), categoryNoun(category))
	b.WriteString("Respond with ONLY a JSON array of objects, no commentary. If the page lists none, respond with [].\n\n")
	b.WriteString(categorySchemas[category])
	fmt.Fprintf(&b, "\n\nPage URL: %s\n\nPage content:\n%s", pageURL, content)
	return b.String()
}
