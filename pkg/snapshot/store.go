// Package snapshot defines the append-only store of collected device state.
// Each snapshot captures one host/category/run; stores order them so the two
// most recent are unambiguous. Snapshots are immutable once appended.
package snapshot

import (
	"context"
	"time"
)

// Snapshot identifies one immutable capture. ID is store-specific but
// monotonic within a host/category.
type Snapshot struct {
	ID        string
	Host      string
	Category  string
	CreatedAt time.Time
}

// Store is the snapshot persistence boundary. Append must make a snapshot
// visible atomically: a concurrent ListRecent/Read never observes a partial
// write.
type Store interface {
	Append(ctx context.Context, host, category, content string) (Snapshot, error)
	// ListRecent returns up to n snapshots for host/category, newest first.
	ListRecent(ctx context.Context, host, category string, n int) ([]Snapshot, error)
	Read(ctx context.Context, snap Snapshot) (string, error)
	Close() error
}
