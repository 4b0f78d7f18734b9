// Package catalog persists matched entries and decides, per candidate,
// whether the catalog needs an insert, an update, or nothing. The store is
// append-and-amend only; nothing in the pipeline ever deletes an entry.
package catalog

import (
	"context"
	"strings"

	"github.com/dj-pearson/pulse-ingest/internal/textmatch"
	"github.com/dj-pearson/pulse-ingest/pkg/models"
)

// Store is the persistence boundary. FindByNameAndLocation returns loose
// candidates for matching; exact filtering happens in the matcher.
type Store interface {
	FindByNameAndLocation(ctx context.Context, category models.Category, name, location string) ([]models.CatalogEntry, error)
	Insert(ctx context.Context, entry models.CatalogEntry) (models.CatalogEntry, error)
	Update(ctx context.Context, id string, entry models.CatalogEntry) error
}

// fieldLimits clamp free-text fields before a write so an over-long model
// answer can't blow a column limit.
var fieldLimits = map[string]int{
	"title":       200,
	"description": 2000,
	"location":    300,
	"venue":       200,
	"cuisine":     100,
	"price":       100,
	"timeframe":   200,
	"phone":       50,
	"website":     500,
	"source_url":  500,
}

// Clamp truncates every free-text field to its column limit.
func Clamp(e models.CatalogEntry) models.CatalogEntry {
	e.Title = clampField(e.Title, "title")
	e.Description = clampField(e.Description, "description")
	e.Location = clampField(e.Location, "location")
	e.Venue = clampField(e.Venue, "venue")
	e.Cuisine = clampField(e.Cuisine, "cuisine")
	e.Price = clampField(e.Price, "price")
	e.Timeframe = clampField(e.Timeframe, "timeframe")
	e.Phone = clampField(e.Phone, "phone")
	e.Website = clampField(e.Website, "website")
	e.SourceURL = clampField(e.SourceURL, "source_url")
	return e
}

func clampField(v, name string) string {
	limit := fieldLimits[name]
	v = strings.TrimSpace(v)
	if limit > 0 && len(v) > limit {
		return v[:limit]
	}
	return v
}

// nameMatches reports whether an entry's title is close enough to count as
// the same listing during a Find. Used by the in-memory store; the REST
// store filters server-side and re-checks in the matcher.
func nameMatches(a, b string, threshold float64) bool {
	return textmatch.Score(a, b) >= threshold
}
