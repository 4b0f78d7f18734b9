package catalog

import (
	"context"
	"strings"
	"testing"

	"github.com/dj-pearson/pulse-ingest/pkg/models"
)

func TestDecideInsertWhenNoMatch(t *testing.T) {
	m := NewMatcher(0)
	candidate := models.CatalogEntry{
		Category: models.CategoryRestaurants,
		Title:    "Blue Door Bistro",
		Location: "East Village, Des Moines",
	}

	d := m.Decide(candidate, nil)
	if d.Action != models.ActionInsert {
		t.Fatalf("action = %q, want insert", d.Action)
	}
	if d.Merged.Title != "Blue Door Bistro" {
		t.Errorf("merged title = %q", d.Merged.Title)
	}
}

func TestDecideSameNameDifferentLocationIsNewEntity(t *testing.T) {
	m := NewMatcher(0)
	existing := []models.CatalogEntry{{
		ID:       "1",
		Category: models.CategoryRestaurants,
		Title:    "Blue Door Bistro",
		Location: "Ankeny, IA",
	}}
	candidate := models.CatalogEntry{
		Category: models.CategoryRestaurants,
		Title:    "Blue Door Bistro",
		Location: "West Des Moines, IA",
	}

	if d := m.Decide(candidate, existing); d.Action != models.ActionInsert {
		t.Errorf("action = %q, want insert for different location", d.Action)
	}
}

func TestDecideSkipWhenNothingChanged(t *testing.T) {
	m := NewMatcher(0)
	existing := []models.CatalogEntry{{
		ID:          "1",
		Category:    models.CategoryRestaurantOpenings,
		Title:       "Blue Door Bistro",
		Location:    "East Village, Des Moines",
		Status:      models.StatusOpeningSoon,
		Description: "French bistro",
		Timeframe:   "Fall 2025",
	}}
	candidate := models.CatalogEntry{
		Category:  models.CategoryRestaurantOpenings,
		Title:     "Blue Door Bistro",
		Location:  "East Village",
		Status:    models.StatusOpeningSoon,
		Timeframe: "Fall 2025",
	}

	d := m.Decide(candidate, existing)
	if d.Action != models.ActionSkip {
		t.Fatalf("action = %q (%s), want skip", d.Action, d.ChangeReason)
	}
	if d.ExistingID != "1" {
		t.Errorf("existing id = %q", d.ExistingID)
	}
}

func TestDecideStatusAdvances(t *testing.T) {
	m := NewMatcher(0)
	existing := []models.CatalogEntry{{
		ID:       "1",
		Category: models.CategoryRestaurantOpenings,
		Title:    "Blue Door Bistro",
		Location: "East Village",
		Status:   models.StatusAnnounced,
	}}
	candidate := models.CatalogEntry{
		Category: models.CategoryRestaurantOpenings,
		Title:    "Blue Door Bistro",
		Location: "East Village",
		Status:   models.StatusNewlyOpened,
	}

	d := m.Decide(candidate, existing)
	if d.Action != models.ActionUpdate {
		t.Fatalf("action = %q, want update", d.Action)
	}
	if d.Merged.Status != models.StatusNewlyOpened {
		t.Errorf("merged status = %q", d.Merged.Status)
	}
	if !strings.Contains(d.ChangeReason, "status advanced") {
		t.Errorf("reason = %q", d.ChangeReason)
	}
}

func TestDecideStatusNeverMovesBackwards(t *testing.T) {
	m := NewMatcher(0)
	existing := []models.CatalogEntry{{
		ID:       "1",
		Category: models.CategoryRestaurantOpenings,
		Title:    "Blue Door Bistro",
		Location: "East Village",
		Status:   models.StatusOpen,
	}}
	candidate := models.CatalogEntry{
		Category: models.CategoryRestaurantOpenings,
		Title:    "Blue Door Bistro",
		Location: "East Village",
		Status:   models.StatusAnnounced,
	}

	d := m.Decide(candidate, existing)
	if d.Action == models.ActionUpdate && d.Merged.Status != models.StatusOpen {
		t.Fatalf("status regressed to %q", d.Merged.Status)
	}
	if d.Action != models.ActionSkip {
		t.Errorf("action = %q, want skip for a stale sighting", d.Action)
	}
}

func TestDecideFillsEmptyFields(t *testing.T) {
	m := NewMatcher(0)
	existing := []models.CatalogEntry{{
		ID:       "1",
		Category: models.CategoryRestaurants,
		Title:    "Blue Door Bistro",
		Location: "East Village",
	}}
	candidate := models.CatalogEntry{
		Category:    models.CategoryRestaurants,
		Title:       "Blue Door Bistro",
		Location:    "East Village",
		Description: "French bistro with a patio",
		Website:     "https://bluedoor.example.com",
	}

	d := m.Decide(candidate, existing)
	if d.Action != models.ActionUpdate {
		t.Fatalf("action = %q, want update", d.Action)
	}
	if d.Merged.Description == "" || d.Merged.Website == "" {
		t.Errorf("empty fields not filled: %+v", d.Merged)
	}
}

func TestDecideDoesNotOverwriteNonEmpty(t *testing.T) {
	m := NewMatcher(0)
	existing := []models.CatalogEntry{{
		ID:          "1",
		Category:    models.CategoryRestaurants,
		Title:       "Blue Door Bistro",
		Location:    "East Village",
		Description: "original description",
	}}
	candidate := models.CatalogEntry{
		Category:    models.CategoryRestaurants,
		Title:       "Blue Door Bistro",
		Location:    "East Village",
		Description: "some other description",
	}

	d := m.Decide(candidate, existing)
	if d.Action == models.ActionUpdate && d.Merged.Description != "original description" {
		t.Errorf("non-empty description overwritten: %q", d.Merged.Description)
	}
}

func TestClamp(t *testing.T) {
	e := models.CatalogEntry{
		Title:       strings.Repeat("t", 300),
		Description: strings.Repeat("d", 3000),
		Phone:       "  515-555-0100  ",
	}
	c := Clamp(e)
	if len(c.Title) != 200 {
		t.Errorf("title len = %d", len(c.Title))
	}
	if len(c.Description) != 2000 {
		t.Errorf("description len = %d", len(c.Description))
	}
	if c.Phone != "515-555-0100" {
		t.Errorf("phone = %q", c.Phone)
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	created, err := s.Insert(ctx, models.CatalogEntry{
		Category: models.CategoryEvents,
		Title:    "Jazz Night",
		Location: "Des Moines",
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if created.ID == "" {
		t.Fatal("insert assigned no id")
	}

	found, err := s.FindByNameAndLocation(ctx, models.CategoryEvents, "Jazz Night", "Des Moines")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("found %d entries, want 1", len(found))
	}

	created.Description = "updated"
	if err := s.Update(ctx, created.ID, created); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ := s.Get(created.ID)
	if got.Description != "updated" {
		t.Errorf("description = %q", got.Description)
	}

	if err := s.Update(ctx, "missing", created); err == nil {
		t.Error("expected error updating missing id")
	}
}
