package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrNoSnapshot is returned by Get before the first snapshot is published.
var ErrNoSnapshot = errors.New("no snapshot published yet")

type InMemorySnapshotStore struct {
	lock     sync.RWMutex
	snapshot *WorldSnapshot
}

func NewInMemorySnapshotStore() *InMemorySnapshotStore {
	return &InMemorySnapshotStore{}
}

// Get returns the latest snapshot. Snapshots are never mutated after Set,
// so the same value is shared between callers.
func (s *InMemorySnapshotStore) Get(ctx context.Context) (*WorldSnapshot, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if s.snapshot == nil {
		return nil, ErrNoSnapshot
	}
	return s.snapshot, nil
}

func (s *InMemorySnapshotStore) Set(ctx context.Context, snapshot *WorldSnapshot) error {
	if snapshot == nil {
		return fmt.Errorf("snapshot is nil")
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	s.snapshot = snapshot
	return nil
}
