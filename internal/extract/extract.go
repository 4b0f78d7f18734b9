// Package extract turns scraped page content into validated candidate
// records using the generation service. Model output is untrusted: every
// response goes through staged JSON recovery and field-level validation
// before anything reaches the rest of the pipeline.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/dj-pearson/pulse-ingest/internal/datetime"
	"github.com/dj-pearson/pulse-ingest/internal/genai"
	"github.com/dj-pearson/pulse-ingest/pkg/models"
)

// Extractor runs structured extraction for one category at a time.
type Extractor struct {
	Client     *genai.Client
	CharBudget int
	Zone       string // IANA-style zone name recorded on event candidates
}

// New returns an Extractor with the default content budget.
func New(client *genai.Client) *Extractor {
	return &Extractor{
		Client:     client,
		CharBudget: DefaultCharBudget,
		Zone:       "America/Chicago",
	}
}

// Extract pulls candidates of the given category out of one scraped page.
// ref anchors relative dates and filters already-past events. A model
// response that cannot be parsed yields zero candidates and a log line, not
// an error; the error return is reserved for the generation call itself.
func (e *Extractor) Extract(ctx context.Context, category models.Category, res models.ScrapeResult, ref time.Time) ([]models.CandidateRecord, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("extract: unknown category %q", category)
	}

	content := ReduceContent(res, e.CharBudget)
	if content == "" {
		return nil, nil
	}

	raw, err := e.Client.Complete(ctx, genai.Request{
		Profile: genai.ProfileStandard,
		Prompt:  buildPrompt(category, res.URL, content, ref),
	})
	if err != nil {
		return nil, fmt.Errorf("extracting %s from %s: %w", category, res.URL, err)
	}

	items, ok := parseCandidateArray(raw)
	if !ok {
		// A single-object response still counts as one candidate.
		if obj, objOK := parseSingleObject(raw); objOK {
			items = []json.RawMessage{obj}
		} else {
			log.Printf("unparseable extraction response for %s (%d bytes), skipping page", res.URL, len(raw))
			return nil, nil
		}
	}

	var out []models.CandidateRecord
	for _, item := range items {
		rec, err := decodeCandidate(category, item)
		if err != nil {
			log.Printf("rejecting candidate from %s: %v", res.URL, err)
			continue
		}
		if category == models.CategoryEvents {
			if r, ok := datetime.Parse(rec.DateRaw, "", e.Zone); ok && r.IsPast(ref) {
				continue
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

// Wire shapes for the per-category candidate objects. Kept separate from
// models.CandidateRecord so schema drift in model output stays contained
// here.
type eventCandidate struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Venue       string `json:"venue"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Price       string `json:"price"`
	URL         string `json:"url"`
}

type restaurantCandidate struct {
	Name        string `json:"name"`
	Cuisine     string `json:"cuisine"`
	Location    string `json:"location"`
	PriceRange  string `json:"price_range"`
	Description string `json:"description"`
	Phone       string `json:"phone"`
	Website     string `json:"website"`
}

type openingCandidate struct {
	Name        string `json:"name"`
	Cuisine     string `json:"cuisine"`
	Location    string `json:"location"`
	Status      string `json:"status"`
	Timeframe   string `json:"timeframe"`
	OpeningDate string `json:"opening_date"`
	Description string `json:"description"`
}

type attractionCandidate struct {
	Name        string `json:"name"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Website     string `json:"website"`
}

func decodeCandidate(category models.Category, raw json.RawMessage) (models.CandidateRecord, error) {
	switch category {
	case models.CategoryEvents:
		var c eventCandidate
		if err := json.Unmarshal(raw, &c); err != nil {
			return models.CandidateRecord{}, fmt.Errorf("event candidate: %w", err)
		}
		if strings.TrimSpace(c.Title) == "" {
			return models.CandidateRecord{}, fmt.Errorf("event candidate: missing title")
		}
		if strings.TrimSpace(c.Date) == "" {
			return models.CandidateRecord{}, fmt.Errorf("event candidate %q: missing date", c.Title)
		}
		dateRaw := strings.TrimSpace(c.Date)
		if t := strings.TrimSpace(c.Time); t != "" {
			dateRaw = dateRaw + " " + t
		}
		return models.CandidateRecord{
			Category:    category,
			Title:       strings.TrimSpace(c.Title),
			Description: strings.TrimSpace(c.Description),
			Location:    strings.TrimSpace(c.Location),
			Venue:       strings.TrimSpace(c.Venue),
			Price:       strings.TrimSpace(c.Price),
			DateRaw:     dateRaw,
			SourceRaw:   strings.TrimSpace(c.URL),
		}, nil

	case models.CategoryRestaurants:
		var c restaurantCandidate
		if err := json.Unmarshal(raw, &c); err != nil {
			return models.CandidateRecord{}, fmt.Errorf("restaurant candidate: %w", err)
		}
		if strings.TrimSpace(c.Name) == "" {
			return models.CandidateRecord{}, fmt.Errorf("restaurant candidate: missing name")
		}
		return models.CandidateRecord{
			Category:    category,
			Title:       strings.TrimSpace(c.Name),
			Cuisine:     strings.TrimSpace(c.Cuisine),
			Location:    strings.TrimSpace(c.Location),
			Price:       strings.TrimSpace(c.PriceRange),
			Description: strings.TrimSpace(c.Description),
			Phone:       strings.TrimSpace(c.Phone),
			Website:     strings.TrimSpace(c.Website),
		}, nil

	case models.CategoryRestaurantOpenings:
		var c openingCandidate
		if err := json.Unmarshal(raw, &c); err != nil {
			return models.CandidateRecord{}, fmt.Errorf("opening candidate: %w", err)
		}
		if strings.TrimSpace(c.Name) == "" {
			return models.CandidateRecord{}, fmt.Errorf("opening candidate: missing name")
		}
		status, err := normalizeStatus(c.Status)
		if err != nil {
			return models.CandidateRecord{}, fmt.Errorf("opening candidate %q: %w", c.Name, err)
		}
		return models.CandidateRecord{
			Category:    category,
			Title:       strings.TrimSpace(c.Name),
			Cuisine:     strings.TrimSpace(c.Cuisine),
			Location:    strings.TrimSpace(c.Location),
			Status:      status,
			Timeframe:   strings.TrimSpace(c.Timeframe),
			DateRaw:     strings.TrimSpace(c.OpeningDate),
			Description: strings.TrimSpace(c.Description),
		}, nil

	case models.CategoryAttractions:
		var c attractionCandidate
		if err := json.Unmarshal(raw, &c); err != nil {
			return models.CandidateRecord{}, fmt.Errorf("attraction candidate: %w", err)
		}
		if strings.TrimSpace(c.Name) == "" {
			return models.CandidateRecord{}, fmt.Errorf("attraction candidate: missing name")
		}
		return models.CandidateRecord{
			Category:    category,
			Title:       strings.TrimSpace(c.Name),
			Location:    strings.TrimSpace(c.Location),
			Description: strings.TrimSpace(c.Description),
			Price:       strings.TrimSpace(c.Price),
			Website:     strings.TrimSpace(c.Website),
		}, nil
	}
	return models.CandidateRecord{}, fmt.Errorf("unknown category %q", category)
}

// normalizeStatus maps loose model output onto the opening lifecycle. An
// empty status defaults to announced; anything else unrecognized is a
// validation failure.
func normalizeStatus(s string) (models.OpeningStatus, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
	norm = strings.ReplaceAll(norm, "-", "_")
	switch norm {
	case "":
		return models.StatusAnnounced, nil
	case "announced":
		return models.StatusAnnounced, nil
	case "opening_soon", "coming_soon":
		return models.StatusOpeningSoon, nil
	case "newly_opened", "just_opened", "recently_opened":
		return models.StatusNewlyOpened, nil
	case "open", "now_open":
		return models.StatusOpen, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}
