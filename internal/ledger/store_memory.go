package ledger

import (
	"context"
	"sort"
	"sync"
)

type InMemoryStore struct {
	mu      sync.RWMutex
	nextID  int64
	entries map[int64][]Entry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{nextID: 1, entries: make(map[int64][]Entry)}
}

func (s *InMemoryStore) Append(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry.ID = s.nextID
	s.nextID++
	s.entries[entry.ChildID] = append(s.entries[entry.ChildID], entry)
	return nil
}

func (s *InMemoryStore) ListFor(_ context.Context, childID int64) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := append([]Entry{}, s.entries[childID]...)
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].ID > entries[j].ID
		}
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}
