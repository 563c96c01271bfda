// Package memory is an in-memory snapshot store for tests.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/netops-tools/prepost/pkg/snapshot"
)

type entry struct {
	snap    snapshot.Snapshot
	content string
}

type Store struct {
	mu      sync.RWMutex
	nextID  int64
	entries map[string][]entry // key: host/category, append order
}

func New() *Store {
	return &Store{entries: make(map[string][]entry)}
}

func key(host, category string) string {
	return host + "/" + category
}

func (s *Store) Append(ctx context.Context, host, category, content string) (snapshot.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return snapshot.Snapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	snap := snapshot.Snapshot{
		ID:        fmt.Sprintf("%d", s.nextID),
		Host:      host,
		Category:  category,
		CreatedAt: time.Now(),
	}
	k := key(host, category)
	s.entries[k] = append(s.entries[k], entry{snap: snap, content: content})
	return snap, nil
}

func (s *Store) ListRecent(ctx context.Context, host, category string, n int) ([]snapshot.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.entries[key(host, category)]
	var snaps []snapshot.Snapshot
	for i := len(all) - 1; i >= 0 && (n <= 0 || len(snaps) < n); i-- {
		snaps = append(snaps, all[i].snap)
	}
	return snaps, nil
}

func (s *Store) Read(ctx context.Context, snap snapshot.Snapshot) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.entries[key(snap.Host, snap.Category)] {
		if e.snap.ID == snap.ID {
			return e.content, nil
		}
	}
	return "", fmt.Errorf("snapshot %s not found", snap.ID)
}

func (s *Store) Close() error { return nil }
