// Package fs stores snapshots as text files in a change's output folder,
// one file per host/category/run. File names embed a nanosecond timestamp so
// recency ordering is a plain name sort.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/netops-tools/prepost/pkg/snapshot"
)

const timeLayout = "20060102-150405.000000000"

type Store struct {
	dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create snapshot folder: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string { return s.dir }

// Append writes the snapshot to a temp file and renames it into place, so a
// concurrent reader never sees a partial snapshot.
func (s *Store) Append(ctx context.Context, host, category, content string) (snapshot.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return snapshot.Snapshot{}, err
	}

	now := time.Now()
	name := fmt.Sprintf("%s_%s_%s_%s.txt",
		host, category, now.Format(timeLayout), uuid.NewString()[:8])

	tmp := filepath.Join(s.dir, name+".tmp")
	if err := os.WriteFile(tmp, []byte(content), 0644); err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmp)
		return snapshot.Snapshot{}, fmt.Errorf("publish snapshot: %w", err)
	}

	return snapshot.Snapshot{ID: name, Host: host, Category: category, CreatedAt: now}, nil
}

func (s *Store) ListRecent(ctx context.Context, host, category string, n int) ([]snapshot.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pattern := filepath.Join(s.dir, fmt.Sprintf("%s_%s_*.txt", host, category))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}

	// Newest first: the timestamp field sorts lexicographically.
	sort.Sort(sort.Reverse(sort.StringSlice(matches)))
	if n > 0 && len(matches) > n {
		matches = matches[:n]
	}

	snaps := make([]snapshot.Snapshot, 0, len(matches))
	for _, m := range matches {
		name := filepath.Base(m)
		snaps = append(snaps, snapshot.Snapshot{
			ID:        name,
			Host:      host,
			Category:  category,
			CreatedAt: parseCreated(name),
		})
	}
	return snaps, nil
}

func (s *Store) Read(ctx context.Context, snap snapshot.Snapshot) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, snap.ID))
	if err != nil {
		return "", fmt.Errorf("read snapshot %s: %w", snap.ID, err)
	}
	return string(data), nil
}

func (s *Store) Close() error { return nil }

// parseCreated pulls the timestamp field out of a snapshot file name. The
// uuid suffix and .txt extension are the last field; the timestamp is the
// one before it.
func parseCreated(name string) time.Time {
	name = strings.TrimSuffix(name, ".txt")
	fields := strings.Split(name, "_")
	if len(fields) < 2 {
		return time.Time{}
	}
	ts, err := time.ParseInLocation(timeLayout, fields[len(fields)-2], time.Local)
	if err != nil {
		return time.Time{}
	}
	return ts
}
