package catalog

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryStore struct {
	mu      sync.Mutex
	entries map[string]Entry
	gets    int
	lists   int
}

func newMemoryStore(entries ...Entry) *memoryStore {
	s := &memoryStore{entries: map[string]Entry{}}
	for _, e := range entries {
		s.entries[e.ID] = e
	}
	return s
}

func (s *memoryStore) GetEntry(ctx context.Context, id string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	e, ok := s.entries[id]
	if !ok {
		return Entry{}, ErrEntryNotFound
	}
	return e, nil
}

func (s *memoryStore) ListEntriesForItem(ctx context.Context, itemID string) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists++
	var out []Entry
	for _, e := range s.entries {
		if e.ItemID == itemID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UnitPrice.Equal(out[j].UnitPrice) {
			return out[i].UnitPrice.LessThan(out[j].UnitPrice)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *memoryStore) ListEntries(ctx context.Context, ids []string) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Entry
	for _, id := range ids {
		if e, ok := s.entries[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *memoryStore) InsertEntry(ctx context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[e.ID] = e
	return nil
}

func (s *memoryStore) UpdatePrice(ctx context.Context, id string, u PriceUpdate, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return ErrEntryNotFound
	}
	e.UnitPrice = u.UnitPrice
	e.Tax = u.Tax
	e.Availability = u.Availability
	e.UpdatedAt = at
	s.entries[id] = e
	return nil
}
