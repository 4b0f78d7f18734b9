package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dj-pearson/pulse-ingest/pkg/models"
)

// MemoryStore is an in-memory Store for tests and dry runs.
type MemoryStore struct {
	mu      sync.Mutex
	nextID  int
	entries map[string]models.CatalogEntry
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]models.CatalogEntry)}
}

// Seed preloads entries, assigning ids to any that lack one.
func (s *MemoryStore) Seed(entries ...models.CatalogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		if e.ID == "" {
			s.nextID++
			e.ID = fmt.Sprintf("mem-%d", s.nextID)
		}
		s.entries[e.ID] = e
	}
}

func (s *MemoryStore) FindByNameAndLocation(ctx context.Context, category models.Category, name, location string) ([]models.CatalogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.CatalogEntry
	for _, e := range s.entries {
		if e.Category != category {
			continue
		}
		if nameMatches(e.Title, name, 0.3) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *MemoryStore) Insert(ctx context.Context, entry models.CatalogEntry) (models.CatalogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	entry = Clamp(entry)
	entry.ID = fmt.Sprintf("mem-%d", s.nextID)
	entry.UpdatedAt = time.Now()
	s.entries[entry.ID] = entry
	return entry, nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, entry models.CatalogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return fmt.Errorf("catalog: no entry %s", id)
	}
	entry = Clamp(entry)
	entry.ID = id
	entry.UpdatedAt = time.Now()
	s.entries[id] = entry
	return nil
}

// Get returns one entry by id, for test assertions.
func (s *MemoryStore) Get(id string) (models.CatalogEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	return e, ok
}

// Len returns the number of stored entries.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
