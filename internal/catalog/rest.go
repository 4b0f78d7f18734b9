package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/dj-pearson/pulse-ingest/pkg/models"
)

// categoryTables maps a category onto its REST resource.
var categoryTables = map[models.Category]string{
	models.CategoryEvents:             "events",
	models.CategoryRestaurants:        "restaurants",
	models.CategoryRestaurantOpenings: "restaurant_openings",
	models.CategoryAttractions:        "attractions",
}

// RESTStore talks to a hosted Postgres exposed over a PostgREST-style HTTP
// API: GET with query-string filters, POST for inserts, PATCH for updates.
type RESTStore struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

// NewRESTStore returns a RESTStore for the given endpoint.
func NewRESTStore(baseURL, apiKey string) *RESTStore {
	return &RESTStore{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

// FindByNameAndLocation fetches loose matches with a case-insensitive name
// filter. Location narrowing happens client-side in the matcher, since
// locations vary too much for a server-side ilike to be trustworthy.
func (s *RESTStore) FindByNameAndLocation(ctx context.Context, category models.Category, name, location string) ([]models.CatalogEntry, error) {
	table, ok := categoryTables[category]
	if !ok {
		return nil, fmt.Errorf("catalog: unknown category %q", category)
	}

	q := url.Values{}
	q.Set("title", "ilike.*"+escapeFilter(name)+"*")
	q.Set("limit", "20")
	endpoint := fmt.Sprintf("%s/rest/v1/%s?%s", s.BaseURL, table, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building find request: %w", err)
	}
	s.auth(req)

	resp, err := s.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("finding %s entries: %w", category, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("reading find response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("finding %s entries: status %d: %.200s", category, resp.StatusCode, body)
	}

	var entries []models.CatalogEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("decoding find response: %w", err)
	}
	for i := range entries {
		entries[i].Category = category
	}
	return entries, nil
}

// Insert writes one new entry and returns it with the server-assigned id.
func (s *RESTStore) Insert(ctx context.Context, entry models.CatalogEntry) (models.CatalogEntry, error) {
	table, ok := categoryTables[entry.Category]
	if !ok {
		return models.CatalogEntry{}, fmt.Errorf("catalog: unknown category %q", entry.Category)
	}

	payload, err := json.Marshal(Clamp(entry))
	if err != nil {
		return models.CatalogEntry{}, fmt.Errorf("encoding entry: %w", err)
	}

	endpoint := fmt.Sprintf("%s/rest/v1/%s", s.BaseURL, table)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return models.CatalogEntry{}, fmt.Errorf("building insert request: %w", err)
	}
	s.auth(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	resp, err := s.HTTP.Do(req)
	if err != nil {
		return models.CatalogEntry{}, fmt.Errorf("inserting %q: %w", entry.Title, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return models.CatalogEntry{}, fmt.Errorf("reading insert response: %w", err)
	}
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return models.CatalogEntry{}, fmt.Errorf("inserting %q: status %d: %.200s", entry.Title, resp.StatusCode, body)
	}

	var created []models.CatalogEntry
	if err := json.Unmarshal(body, &created); err != nil || len(created) == 0 {
		// Insert succeeded even when the representation is missing.
		return entry, nil
	}
	created[0].Category = entry.Category
	return created[0], nil
}

// Update patches one entry by id.
func (s *RESTStore) Update(ctx context.Context, id string, entry models.CatalogEntry) error {
	table, ok := categoryTables[entry.Category]
	if !ok {
		return fmt.Errorf("catalog: unknown category %q", entry.Category)
	}

	payload, err := json.Marshal(Clamp(entry))
	if err != nil {
		return fmt.Errorf("encoding entry: %w", err)
	}

	endpoint := fmt.Sprintf("%s/rest/v1/%s?id=eq.%s", s.BaseURL, table, url.QueryEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building update request: %w", err)
	}
	s.auth(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("updating %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return fmt.Errorf("updating %s: status %d: %.200s", id, resp.StatusCode, body)
	}
	return nil
}

func (s *RESTStore) auth(req *http.Request) {
	req.Header.Set("apikey", s.APIKey)
	req.Header.Set("Authorization", "Bearer "+s.APIKey)
}

// escapeFilter strips the characters PostgREST treats as filter syntax.
func escapeFilter(s string) string {
	r := make([]rune, 0, len(s))
	for _, c := range s {
		switch c {
		case ',', '.', '*', '(', ')':
			continue
		}
		r = append(r, c)
	}
	return string(r)
}
