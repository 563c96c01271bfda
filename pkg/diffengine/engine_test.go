package diffengine

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/netops-tools/prepost/pkg/snapshot/memory"
)

func TestCompareClassification(t *testing.T) {
	e := New(0.5)

	older := []string{
		"interface Ethernet1/1",
		"  description uplink",
		"  mtu 1500",
		"  shutdown",
	}
	newer := []string{
		"interface Ethernet1/1",
		"  description uplink",
		"  mtu 9216",
		"  ip address 10.0.0.1/31",
	}

	lines := e.Compare(older, newer)

	var classes []Class
	for _, l := range lines {
		classes = append(classes, l.Class)
	}

	want := []Class{Unchanged, Unchanged, Changed, Removed, Added}
	if !reflect.DeepEqual(classes, want) {
		t.Fatalf("expected classes %v, got %v (lines %+v)", want, classes, lines)
	}

	if lines[2].Old != "  mtu 1500" || lines[2].Text != "  mtu 9216" {
		t.Errorf("changed line should carry both texts, got %+v", lines[2])
	}
}

func TestCompareDissimilarReplaceSplits(t *testing.T) {
	e := New(0.5)

	lines := e.Compare(
		[]string{"same", "router ospf 1"},
		[]string{"same", "ntp server 10.1.1.1"},
	)

	// No heuristic match: independent removed + added, never a forced pair.
	var got []Class
	for _, l := range lines {
		got = append(got, l.Class)
	}
	want := []Class{Unchanged, Removed, Added}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestCompareDeterministic(t *testing.T) {
	e := New(0.5)
	older := []string{"a 1", "b 2", "c 3", "d 4"}
	newer := []string{"a 1", "b 9", "x y z", "d 4"}

	first := e.Compare(older, newer)
	for i := 0; i < 10; i++ {
		if !reflect.DeepEqual(first, e.Compare(older, newer)) {
			t.Fatal("repeated comparison produced a different result")
		}
	}
}

func TestDiffSelectsTwoMostRecent(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	store.Append(ctx, "R1", "vital", "t1 output\n")
	store.Append(ctx, "R1", "vital", "t2 output\n")
	store.Append(ctx, "R1", "vital", "t3 output\n")

	res, err := New(0.5).Diff(ctx, store, "R1", "vital")
	if err != nil {
		t.Fatalf("diff failed: %v", err)
	}

	older, _ := store.Read(ctx, res.Older)
	newer, _ := store.Read(ctx, res.Newer)
	if older != "t2 output\n" || newer != "t3 output\n" {
		t.Errorf("expected t2 vs t3, got %q vs %q", older, newer)
	}
}

func TestDiffInsufficientHistory(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	store.Append(ctx, "R1", "vital", "only one\n")

	_, err := New(0.5).Diff(ctx, store, "R1", "vital")
	var insufficient *InsufficientHistoryError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientHistoryError, got %v", err)
	}
	if insufficient.Found != 1 {
		t.Errorf("expected Found=1, got %d", insufficient.Found)
	}
}

func TestDiffIdempotent(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	store.Append(ctx, "R1", "config", "hostname R1\nmtu 1500\n")
	store.Append(ctx, "R1", "config", "hostname R1\nmtu 9216\n")

	e := New(0.5)
	first, err := e.Diff(ctx, store, "R1", "config")
	if err != nil {
		t.Fatalf("diff failed: %v", err)
	}
	second, _ := e.Diff(ctx, store, "R1", "config")
	if !reflect.DeepEqual(first, second) {
		t.Error("diff on the same pair is not idempotent")
	}
}

func TestRenderHTMLContainsClasses(t *testing.T) {
	res := &Result{
		OlderName: "pre.txt",
		NewerName: "post.txt",
		Lines: []Line{
			{Class: Unchanged, Text: "hostname R1"},
			{Class: Removed, Text: "mtu 1500"},
			{Class: Added, Text: "mtu 9216"},
			{Class: Changed, Text: "ip route 0.0.0.0/0 10.0.0.2", Old: "ip route 0.0.0.0/0 10.0.0.1"},
		},
	}

	html, err := RenderHTML(res)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	for _, class := range []string{"diff_add", "diff_sub", "diff_chg"} {
		if !strings.Contains(html, class) {
			t.Errorf("rendered report missing %s", class)
		}
	}
	if !strings.Contains(html, "pre.txt") || !strings.Contains(html, "post.txt") {
		t.Error("rendered report missing snapshot names")
	}
}
