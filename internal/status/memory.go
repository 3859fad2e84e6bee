package status

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryStore struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]BuildStatus
}

// NewMemoryStore returns the default in-process status store.
func NewMemoryStore() Store {
	return &memoryStore{entries: make(map[uuid.UUID]BuildStatus)}
}

func (s *memoryStore) Set(_ context.Context, topologyID uuid.UUID, st BuildStatus) error {
	if st.CreatedAt.IsZero() {
		st.CreatedAt = time.Now().UTC()
	}
	s.mu.Lock()
	s.entries[topologyID] = st
	s.mu.Unlock()
	return nil
}

func (s *memoryStore) Update(_ context.Context, topologyID uuid.UUID, progress int, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.entries[topologyID]
	if !ok {
		st = BuildStatus{Status: StateProcessing, CreatedAt: time.Now().UTC()}
	}
	st.Progress = progress
	st.Message = message
	s.entries[topologyID] = st
	return nil
}

func (s *memoryStore) Get(_ context.Context, topologyID uuid.UUID) (BuildStatus, bool, error) {
	s.mu.RLock()
	st, ok := s.entries[topologyID]
	s.mu.RUnlock()
	return st, ok, nil
}

func (s *memoryStore) Delete(_ context.Context, topologyID uuid.UUID) error {
	s.mu.Lock()
	delete(s.entries, topologyID)
	s.mu.Unlock()
	return nil
}
