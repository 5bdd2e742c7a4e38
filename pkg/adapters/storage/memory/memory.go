package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aescanero/chaincfg/pkg/ports"
)

// InMemorySnapshotStore implements ports.SnapshotStore using an in-memory map.
// It does not expire snapshots.
type InMemorySnapshotStore struct {
	snapshots map[string]*ports.Snapshot
	latest    string
	mu        sync.RWMutex
}

// NewInMemorySnapshotStore creates a new in-memory snapshot store
func NewInMemorySnapshotStore() *InMemorySnapshotStore {
	return &InMemorySnapshotStore{
		snapshots: make(map[string]*ports.Snapshot),
	}
}

// Save stores a copy of the snapshot and marks it as the latest
func (s *InMemorySnapshotStore) Save(ctx context.Context, snapshot *ports.Snapshot) error {
	if snapshot == nil || snapshot.ID == "" {
		return fmt.Errorf("snapshot ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshots[snapshot.ID] = copySnapshot(snapshot)
	s.latest = snapshot.ID
	return nil
}

// Get retrieves a snapshot by ID
func (s *InMemorySnapshotStore) Get(ctx context.Context, id string) (*ports.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot, ok := s.snapshots[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ports.ErrSnapshotNotFound, id)
	}

	return copySnapshot(snapshot), nil
}

// Latest retrieves the most recently saved snapshot
func (s *InMemorySnapshotStore) Latest(ctx context.Context) (*ports.Snapshot, error) {
	s.mu.RLock()
	id := s.latest
	s.mu.RUnlock()

	if id == "" {
		return nil, ports.ErrSnapshotNotFound
	}
	return s.Get(ctx, id)
}

// List returns all stored snapshot IDs
func (s *InMemorySnapshotStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.snapshots))
	for id := range s.snapshots {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids, nil
}

// SetTTL is a no-op; in-memory snapshots live as long as the process
func (s *InMemorySnapshotStore) SetTTL(ctx context.Context, id string, ttl time.Duration) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.snapshots[id]; !ok {
		return fmt.Errorf("%w: %s", ports.ErrSnapshotNotFound, id)
	}
	return nil
}

// Delete removes a snapshot
func (s *InMemorySnapshotStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.snapshots, id)
	if s.latest == id {
		s.latest = ""
	}
	return nil
}

func copySnapshot(snapshot *ports.Snapshot) *ports.Snapshot {
	c := *snapshot
	if snapshot.Config != nil {
		c.Config = snapshot.Config.Clone()
	}
	return &c
}
