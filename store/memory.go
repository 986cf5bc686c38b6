package store

import (
	"context"
	"sync"

	"go-dispensary/models"
)

// MemoryStore is an in-process SnapshotStore for tests and for
// running without a database.
type MemoryStore struct {
	mu        sync.Mutex
	snapshots map[string]models.SessionSnapshot
}

// NewMemoryStore creates an empty in-memory snapshot store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[string]models.SessionSnapshot)}
}

func (s *MemoryStore) Load(_ context.Context, sessionID string) (*models.SessionSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot, ok := s.snapshots[sessionID]
	if !ok {
		return nil, nil
	}
	out := snapshot
	return &out, nil
}

func (s *MemoryStore) Save(_ context.Context, snapshot *models.SessionSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snapshot.Session.SessionID] = *snapshot
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, sessionID)
	return nil
}
