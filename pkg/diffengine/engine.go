// Package diffengine compares the two most recent snapshots for a
// host/category and classifies every line as unchanged, added, changed or
// removed. Comparison is read-only and deterministic: the same pair always
// yields the same result.
package diffengine

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/netops-tools/prepost/pkg/snapshot"
	"github.com/pmezard/go-difflib/difflib"
)

type Class int

const (
	Unchanged Class = iota
	Added
	Changed
	Removed
)

func (c Class) String() string {
	switch c {
	case Added:
		return "added"
	case Changed:
		return "changed"
	case Removed:
		return "removed"
	}
	return "unchanged"
}

// Line is one classified diff line. Old carries the pre-change text for
// changed lines; Text is the pre text for removed lines and the post text
// otherwise.
type Line struct {
	Class Class
	Text  string
	Old   string
}

// Result pairs the two compared snapshots with the classified line sequence.
type Result struct {
	Host     string
	Category string
	Older    snapshot.Snapshot
	Newer    snapshot.Snapshot
	// OlderName/NewerName label the report; for file comparisons they are
	// the file names.
	OlderName string
	NewerName string
	Lines     []Line
}

// Engine holds the tuning for changed-line pairing.
type Engine struct {
	// SimilarityThreshold is the minimum ratio for pairing a removed line
	// with an added line as changed.
	SimilarityThreshold float64
}

func New(threshold float64) *Engine {
	if threshold <= 0 {
		threshold = 0.5
	}
	return &Engine{SimilarityThreshold: threshold}
}

// Diff selects the two most recent snapshots for host/category from the
// store and compares them. Fewer than two snapshots is an
// InsufficientHistoryError: the engine never compares against an empty
// baseline, and never against anything older than the second-newest.
func (e *Engine) Diff(ctx context.Context, store snapshot.Store, host, category string) (*Result, error) {
	snaps, err := store.ListRecent(ctx, host, category, 2)
	if err != nil {
		return nil, fmt.Errorf("list snapshots for %s/%s: %w", host, category, err)
	}
	if len(snaps) < 2 {
		return nil, &InsufficientHistoryError{Host: host, Category: category, Found: len(snaps)}
	}

	newer, older := snaps[0], snaps[1]
	newContent, err := store.Read(ctx, newer)
	if err != nil {
		return nil, err
	}
	oldContent, err := store.Read(ctx, older)
	if err != nil {
		return nil, err
	}

	return &Result{
		Host:      host,
		Category:  category,
		Older:     older,
		Newer:     newer,
		OlderName: older.ID,
		NewerName: newer.ID,
		Lines:     e.Compare(splitLines(oldContent), splitLines(newContent)),
	}, nil
}

// DiffFiles compares two explicit files, for operator-driven comparisons
// outside the snapshot store.
func (e *Engine) DiffFiles(pathA, pathB string) (*Result, error) {
	a, err := os.ReadFile(pathA)
	if err != nil {
		return nil, fmt.Errorf("read compare file: %w", err)
	}
	b, err := os.ReadFile(pathB)
	if err != nil {
		return nil, fmt.Errorf("read compare file: %w", err)
	}

	return &Result{
		OlderName: pathA,
		NewerName: pathB,
		Lines:     e.Compare(splitLines(string(a)), splitLines(string(b))),
	}, nil
}

// Compare runs an LCS diff over the two line sequences and classifies the
// edit script. Replace blocks are walked positionally: the i-th removed line
// pairs with the i-th added line as changed when their similarity reaches
// the threshold, otherwise both are emitted independently.
func (e *Engine) Compare(older, newer []string) []Line {
	matcher := difflib.NewMatcher(older, newer)

	var lines []Line
	for _, op := range matcher.GetOpCodes() {
		switch op.Tag {
		case 'e':
			for _, text := range newer[op.J1:op.J2] {
				lines = append(lines, Line{Class: Unchanged, Text: text})
			}
		case 'd':
			for _, text := range older[op.I1:op.I2] {
				lines = append(lines, Line{Class: Removed, Text: text})
			}
		case 'i':
			for _, text := range newer[op.J1:op.J2] {
				lines = append(lines, Line{Class: Added, Text: text})
			}
		case 'r':
			lines = append(lines, e.pairReplace(older[op.I1:op.I2], newer[op.J1:op.J2])...)
		}
	}
	return lines
}

func (e *Engine) pairReplace(removed, added []string) []Line {
	var lines []Line
	n := len(removed)
	if len(added) > n {
		n = len(added)
	}
	for i := 0; i < n; i++ {
		switch {
		case i < len(removed) && i < len(added):
			if similarity(removed[i], added[i]) >= e.SimilarityThreshold {
				lines = append(lines, Line{Class: Changed, Text: added[i], Old: removed[i]})
			} else {
				lines = append(lines, Line{Class: Removed, Text: removed[i]})
				lines = append(lines, Line{Class: Added, Text: added[i]})
			}
		case i < len(removed):
			lines = append(lines, Line{Class: Removed, Text: removed[i]})
		default:
			lines = append(lines, Line{Class: Added, Text: added[i]})
		}
	}
	return lines
}

// similarity is the character-level matching ratio between two lines.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	m := difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, ""))
	return m.Ratio()
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}
