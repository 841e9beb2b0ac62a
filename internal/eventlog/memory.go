package eventlog

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store. Used in tests and as a fallback when no
// Redis URL is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID][]Record
}

// NewMemoryStore creates a new in-memory event log store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[uuid.UUID][]Record)}
}

// Append adds a record to the user's log
func (s *MemoryStore) Append(_ context.Context, userID uuid.UUID, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[userID] = append(s.records[userID], record)
	return nil
}

// Records returns the user's full log, oldest first
func (s *MemoryStore) Records(_ context.Context, userID uuid.UUID) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, len(s.records[userID]))
	copy(out, s.records[userID])
	return out, nil
}

// RecordsSince returns the user's records with Timestamp >= since, oldest first
func (s *MemoryStore) RecordsSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]Record, error) {
	all, err := s.Records(ctx, userID)
	if err != nil {
		return nil, err
	}
	var out []Record
	for _, r := range all {
		if !r.Timestamp.Before(since) {
			out = append(out, r)
		}
	}
	return out, nil
}

// Clear removes the user's log
func (s *MemoryStore) Clear(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, userID)
	return nil
}

var _ Store = (*MemoryStore)(nil)
