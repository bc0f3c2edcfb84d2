package jobs

import (
	"context"
	"sync"
	"time"

	"newsgraph/types"
)

// Verify interface compliance
var _ Store = (*MemoryStore)(nil)

// MemoryStore is the single-process fallback when no Redis is configured.
// Expiry is enforced lazily on read.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	rec       types.JobRecord
	expiresAt time.Time
}

// NewMemoryStore creates an empty in-process job store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Set(_ context.Context, rec *types.JobRecord, ttl time.Duration) error {
	rec.UpdatedAt = s.now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = memoryEntry{rec: *rec, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*types.JobRecord, error) {
	s.mu.RLock()
	entry, ok := s.records[id]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if s.now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.records, id)
		s.mu.Unlock()
		return nil, ErrNotFound
	}

	rec := entry.rec
	return &rec, nil
}
