package cache

import (
	"context"
	"sync"

	"github.com/dvsite/interactome/internal/core/model"
)

// MemoryStore is a mutex-guarded in-memory NetworkStore. Used by tests and
// local development; results are treated as immutable once stored, so the
// map swap under lock is the whole atomicity story.
type MemoryStore struct {
	mu       sync.RWMutex
	networks map[string]*model.NetworkResult
}

var _ NetworkStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{networks: make(map[string]*model.NetworkResult)}
}

func (s *MemoryStore) Lookup(_ context.Context, key model.NetworkRequestKey) (*model.NetworkResult, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result, ok := s.networks[key.Fingerprint()]
	return result, ok, nil
}

func (s *MemoryStore) Store(_ context.Context, result *model.NetworkResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.networks[result.Key.Fingerprint()] = result
	return nil
}

func (s *MemoryStore) Invalidate(_ context.Context, key model.NetworkRequestKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.networks, key.Fingerprint())
	return nil
}

// Len reports the number of cached networks.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.networks)
}
