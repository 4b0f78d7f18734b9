package catalog

import (
	"strings"

	"github.com/dj-pearson/pulse-ingest/internal/textmatch"
	"github.com/dj-pearson/pulse-ingest/pkg/models"
)

// Matcher maps one incoming entry onto the existing catalog.
type Matcher struct {
	Threshold float64
}

// NewMatcher returns a Matcher with the given name-similarity threshold;
// zero means the package default.
func NewMatcher(threshold float64) *Matcher {
	if threshold <= 0 {
		threshold = textmatch.DefaultThreshold
	}
	return &Matcher{Threshold: threshold}
}

// Decide compares candidate against the existing entries and prescribes
// exactly one write. A name that matches an entry in a different location is
// a different entity, not a match; two venues can host the same franchise.
func (m *Matcher) Decide(candidate models.CatalogEntry, existing []models.CatalogEntry) models.MatchDecision {
	var best *models.CatalogEntry
	var bestScore float64

	for i := range existing {
		e := &existing[i]
		score := textmatch.Score(candidate.Title, e.Title)
		if score < m.Threshold {
			continue
		}
		if !textmatch.SameLocation(candidate.Location, e.Location) {
			continue
		}
		if score > bestScore {
			best = e
			bestScore = score
		}
	}

	if best == nil {
		return models.MatchDecision{
			Action: models.ActionInsert,
			Merged: Clamp(candidate),
		}
	}

	merged, reason := merge(*best, candidate)
	if reason == "" {
		return models.MatchDecision{
			ExistingID: best.ID,
			Similarity: bestScore,
			Action:     models.ActionSkip,
			Merged:     *best,
		}
	}
	return models.MatchDecision{
		ExistingID:   best.ID,
		Similarity:   bestScore,
		Action:       models.ActionUpdate,
		Merged:       Clamp(merged),
		ChangeReason: reason,
	}
}

// merge overlays candidate onto existing and reports why an update is
// warranted, or "" when nothing about the entry meaningfully changed.
// Non-empty candidate values win for descriptive fields; the status only
// ever moves forward through the lifecycle.
func merge(existing, candidate models.CatalogEntry) (models.CatalogEntry, string) {
	merged := existing
	var reasons []string

	if candidate.Status != "" && candidate.Status.Rank() > existing.Status.Rank() {
		merged.Status = candidate.Status
		reasons = append(reasons, "status advanced to "+string(candidate.Status))
	}
	if candidate.StartLocal != "" && candidate.StartLocal != existing.StartLocal {
		merged.StartLocal = candidate.StartLocal
		merged.StartUTC = candidate.StartUTC
		merged.Timezone = candidate.Timezone
		reasons = append(reasons, "start time changed")
	}
	if candidate.Timeframe != "" && candidate.Timeframe != existing.Timeframe {
		merged.Timeframe = candidate.Timeframe
		reasons = append(reasons, "timeframe changed")
	}

	filled := false
	fill := func(dst *string, src string) {
		if src != "" && *dst == "" {
			*dst = src
			filled = true
		}
	}
	fill(&merged.Description, candidate.Description)
	fill(&merged.Location, candidate.Location)
	fill(&merged.Venue, candidate.Venue)
	fill(&merged.Cuisine, candidate.Cuisine)
	fill(&merged.Price, candidate.Price)
	fill(&merged.Phone, candidate.Phone)
	fill(&merged.Website, candidate.Website)
	fill(&merged.SourceURL, candidate.SourceURL)
	if filled {
		reasons = append(reasons, "filled empty fields")
	}

	return merged, strings.Join(reasons, "; ")
}
