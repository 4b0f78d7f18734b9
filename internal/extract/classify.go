package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/dj-pearson/pulse-ingest/internal/genai"
	"github.com/dj-pearson/pulse-ingest/pkg/models"
)

const classifyPrompt = `Classify this web page into exactly one category:
- "events" for event listings or calendars
- "restaurants" for restaurant listings or dining guides
- "restaurant_openings" for news about upcoming or newly opened restaurants
- "attractions" for attraction or things-to-do listings

Respond with only the category word, nothing else.

Page URL: %s

Page content:
%s`

// classifyBudget keeps classification calls cheap; the opening of a page is
// enough to tell a calendar from a dining guide.
const classifyBudget = 4000

// Classify guesses a page's listing category with a lightweight call.
func (e *Extractor) Classify(ctx context.Context, res models.ScrapeResult) (models.Category, error) {
	content := ReduceContent(res, classifyBudget)
	if content == "" {
		return "", fmt.Errorf("classify: empty page %s", res.URL)
	}

	raw, err := e.Client.Complete(ctx, genai.Request{
		Profile: genai.ProfileLightweight,
		Prompt:  fmt.Sprintf(classifyPrompt, res.URL, content),
	})
	if err != nil {
		return "", fmt.Errorf("classifying %s: %w", res.URL, err)
	}

	answer := strings.ToLower(strings.Trim(strings.TrimSpace(raw), `"'.`))
	answer = strings.ReplaceAll(answer, " ", "_")
	category := models.Category(answer)
	if !category.Valid() {
		return "", fmt.Errorf("classifying %s: unusable answer %q", res.URL, raw)
	}
	return category, nil
}
