package audit

import (
	"context"
	"sync"
)

// InMemoryStore keeps events in a slice. Default when no database is
// configured; also the test double.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []Event
}

// NewInMemoryStore creates an empty in-memory trail.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// Append implements Store.
func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// Events returns a copy of the recorded trail.
func (s *InMemoryStore) Events() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.events...)
}
