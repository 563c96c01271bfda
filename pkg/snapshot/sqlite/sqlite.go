// Package sqlite backs the snapshot store with a single-file database.
// Rowids give a monotonically increasing snapshot identifier, so recency
// never depends on clock resolution.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/netops-tools/prepost/pkg/snapshot"
)

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma %s: %w", p, err)
		}
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			host TEXT NOT NULL,
			category TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_snapshots_host_category ON snapshots(host, category)`)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Append(ctx context.Context, host, category, content string) (snapshot.Snapshot, error) {
	now := time.Now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (host, category, content, created_at)
		VALUES (?, ?, ?, ?)
	`, host, category, content, now.UnixNano())
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("append snapshot: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return snapshot.Snapshot{}, err
	}

	return snapshot.Snapshot{
		ID:        strconv.FormatInt(id, 10),
		Host:      host,
		Category:  category,
		CreatedAt: now,
	}, nil
}

func (s *Store) ListRecent(ctx context.Context, host, category string, n int) ([]snapshot.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at FROM snapshots
		WHERE host = ? AND category = ?
		ORDER BY id DESC LIMIT ?
	`, host, category, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []snapshot.Snapshot
	for rows.Next() {
		var id int64
		var created int64
		if err := rows.Scan(&id, &created); err != nil {
			return nil, err
		}
		snaps = append(snaps, snapshot.Snapshot{
			ID:        strconv.FormatInt(id, 10),
			Host:      host,
			Category:  category,
			CreatedAt: time.Unix(0, created),
		})
	}
	return snaps, rows.Err()
}

func (s *Store) Read(ctx context.Context, snap snapshot.Snapshot) (string, error) {
	var content string
	err := s.db.QueryRowContext(ctx, `
		SELECT content FROM snapshots WHERE id = ?
	`, snap.ID).Scan(&content)
	if err != nil {
		return "", fmt.Errorf("read snapshot %s: %w", snap.ID, err)
	}
	return content, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
