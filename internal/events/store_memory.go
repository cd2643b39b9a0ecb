package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryStore backs service and relay tests.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Record(_ context.Context, eventType Type, aggregateID string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, Event{
		ID:          uuid.New(),
		Type:        eventType,
		AggregateID: aggregateID,
		Payload:     body,
		CreatedAt:   time.Now(),
	})
	return nil
}

func (s *InMemoryStore) FetchUnpublished(_ context.Context, limit int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var batch []Event
	for _, e := range s.events {
		if e.PublishedAt == nil {
			batch = append(batch, e)
			if len(batch) == limit {
				break
			}
		}
	}
	return batch, nil
}

func (s *InMemoryStore) MarkPublished(_ context.Context, ids []uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	marked := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		marked[id] = true
	}
	for i := range s.events {
		if marked[s.events[i].ID] {
			published := at
			s.events[i].PublishedAt = &published
		}
	}
	return nil
}

// All returns a copy of every recorded event, for test assertions.
func (s *InMemoryStore) All() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.events...)
}
