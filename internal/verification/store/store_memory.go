package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"firstaccess/internal/verification/models"
)

// InMemoryStore keeps records in a process-local map with lazy TTL
// eviction. It backs tests and local runs; production uses RedisStore.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	clock   func() time.Time
}

type memoryEntry struct {
	issuer    string
	subjectID string
	record    models.VerificationRequest
	expiresAt time.Time
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		entries: make(map[string]memoryEntry),
		clock:   time.Now,
	}
}

// WithClock overrides the eviction clock. Test hook.
func (s *InMemoryStore) WithClock(clock func() time.Time) *InMemoryStore {
	s.clock = clock
	return s
}

func (s *InMemoryStore) key(issuer, subjectID string) string {
	return Key("mem", issuer, subjectID)
}

// Put stores a copy of the record, replacing any prior entry for the key.
func (s *InMemoryStore) Put(_ context.Context, issuer, subjectID string, rec *models.VerificationRequest, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[s.key(issuer, subjectID)] = memoryEntry{
		issuer:    strings.ToLower(strings.TrimSpace(issuer)),
		subjectID: rec.SubjectID,
		record:    *rec,
		expiresAt: s.clock().Add(ttl),
	}
	return nil
}

// Get returns a copy of the stored record or ErrNotFound once the TTL has
// lapsed or nothing was stored.
func (s *InMemoryStore) Get(_ context.Context, issuer, subjectID string) (*models.VerificationRequest, error) {
	s.mu.RLock()
	entry, ok := s.entries[s.key(issuer, subjectID)]
	s.mu.RUnlock()
	if !ok || s.clock().After(entry.expiresAt) {
		return nil, ErrNotFound
	}
	rec := entry.record
	return &rec, nil
}

// Exists reports whether a live record is stored for the key.
func (s *InMemoryStore) Exists(ctx context.Context, issuer, subjectID string) (bool, error) {
	_, err := s.Get(ctx, issuer, subjectID)
	if err == ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes the record if present.
func (s *InMemoryStore) Delete(_ context.Context, issuer, subjectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, s.key(issuer, subjectID))
	return nil
}

// List returns copies of all live entries.
func (s *InMemoryStore) List(_ context.Context) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := s.clock()
	out := make([]Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		if now.After(entry.expiresAt) {
			continue
		}
		rec := entry.record
		out = append(out, Entry{Issuer: entry.issuer, SubjectID: entry.subjectID, Record: &rec})
	}
	return out, nil
}
