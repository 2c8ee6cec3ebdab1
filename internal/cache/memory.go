package cache

import (
	"context"
	"sync"
	"time"

	"philliesbot/internal/metrics"
)

type memoryEntry struct {
	req     PendingRequest
	expires time.Time
}

// MemoryStore is an in-process PendingStore
type MemoryStore struct {
	mu      sync.Mutex
	entries map[Key]memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[Key]memoryEntry),
		now:     time.Now,
	}
}

// Put stores req under key until ttl elapses
func (s *MemoryStore) Put(ctx context.Context, key Key, req PendingRequest, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = memoryEntry{req: req, expires: s.now().Add(ttl)}
	metrics.RecordPending("stored")
	return nil
}

// Take removes and returns the request stored under key
func (s *MemoryStore) Take(ctx context.Context, key Key) (*PendingRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	delete(s.entries, key)

	if !s.now().Before(entry.expires) {
		metrics.RecordPending("expired")
		return nil, nil
	}

	metrics.RecordPending("taken")
	req := entry.req
	return &req, nil
}

// Sweep drops entries that expired before now and returns how many it dropped
func (s *MemoryStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := 0
	for key, entry := range s.entries {
		if !now.Before(entry.expires) {
			delete(s.entries, key)
			dropped++
		}
	}
	if dropped > 0 {
		metrics.PendingRequestsTotal.WithLabelValues("expired").Add(float64(dropped))
	}
	return dropped
}

// Len returns the number of stored entries, expired ones included
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
