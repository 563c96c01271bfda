package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/netops-tools/prepost/pkg/facts"
	"github.com/netops-tools/prepost/pkg/inventory"
	"github.com/netops-tools/prepost/pkg/runner/mock"
	"github.com/netops-tools/prepost/pkg/snapshot/memory"
	"github.com/netops-tools/prepost/pkg/spec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInventory() *inventory.Inventory {
	return &inventory.Inventory{
		Hosts: []*inventory.Host{
			{Name: "R1", Hostname: "10.0.0.1", Groups: []string{"ios"}},
			{Name: "R2", Hostname: "10.0.0.2", Groups: []string{"ios"}},
		},
	}
}

func commandDoc() *spec.Document {
	return &spec.Document{
		Kind: spec.KindCommand,
		All: spec.Layer{
			"run_cfg":   true,
			"cmd_print": []any{"show clock"},
			"cmd_vital": []any{"show version"},
		},
	}
}

func newTestEngine(t *testing.T) (*Engine, *mock.Runner, *memory.Store) {
	t.Helper()
	run := mock.New()
	store := memory.New()
	e := New(testInventory(), store, run)
	e.OutputDir = t.TempDir()
	return e, run, store
}

func TestRunVitalPersistsSnapshots(t *testing.T) {
	e, _, store := newTestEngine(t)
	ctx := context.Background()

	batch, err := e.RunCommands(ctx, RunVital, commandDoc())
	require.NoError(t, err)
	require.False(t, batch.Failed())

	for _, host := range []string{"R1", "R2"} {
		vital, err := store.ListRecent(ctx, host, spec.CategoryVital, 10)
		require.NoError(t, err)
		assert.Len(t, vital, 1, "one vital snapshot for %s", host)

		cfg, _ := store.ListRecent(ctx, host, spec.CategoryConfig, 10)
		assert.Len(t, cfg, 1, "run_cfg should persist a config snapshot for %s", host)
	}
}

func TestRunVitalSnapshotContent(t *testing.T) {
	e, run, store := newTestEngine(t)
	ctx := context.Background()
	run.Script("R1", "show version", "NXOS 9.3.9\n")

	_, err := e.RunCommands(ctx, RunVital, commandDoc())
	require.NoError(t, err)

	snaps, _ := store.ListRecent(ctx, "R1", spec.CategoryVital, 1)
	content, _ := store.Read(ctx, snaps[0])
	assert.Contains(t, content, "==== show version ")
	assert.Contains(t, content, "NXOS 9.3.9")
}

func TestPostRunDiffsLatestPair(t *testing.T) {
	e, run, _ := newTestEngine(t)
	ctx := context.Background()

	run.Script("R1", "show version", "uptime 1 day\n")
	run.Script("R2", "show version", "uptime 1 day\n")
	_, err := e.RunCommands(ctx, RunPre, commandDoc())
	require.NoError(t, err)

	run.Script("R1", "show version", "uptime 2 days\n")
	run.Script("R2", "show version", "uptime 2 days\n")
	batch, err := e.RunCommands(ctx, RunPost, commandDoc())
	require.NoError(t, err)
	require.False(t, batch.Failed())

	for _, res := range batch.Results {
		var htmls int
		for _, a := range res.Artifacts {
			if strings.HasSuffix(a, ".html") {
				htmls++
			}
		}
		// One diff report for vital, one for config.
		assert.Equal(t, 2, htmls, "host %s artifacts: %v", res.Host, res.Artifacts)
	}
}

func TestPostWithoutHistoryFailsPerHost(t *testing.T) {
	e, _, _ := newTestEngine(t)

	// First ever run: persisting leaves one snapshot, diff then lacks a pair.
	batch, err := e.RunCommands(context.Background(), RunPost, commandDoc())
	require.NoError(t, err)
	require.True(t, batch.Failed())
	for _, res := range batch.Results {
		assert.Error(t, res.Err, "host %s should fail on insufficient history", res.Host)
	}
}

func TestHostFailureDoesNotAbortBatch(t *testing.T) {
	e, run, store := newTestEngine(t)

	failing := mock.New()
	failing.Err = errors.New("connection refused")
	e.Runner = &selectiveRunner{fail: "R1", failing: failing, ok: run}

	batch, err := e.RunCommands(context.Background(), RunVital, commandDoc())
	require.NoError(t, err)

	require.Len(t, batch.Results, 2)
	assert.Error(t, batch.Results[0].Err, "R1 should fail")
	assert.NoError(t, batch.Results[1].Err, "R2 should succeed")

	snaps, _ := store.ListRecent(context.Background(), "R2", spec.CategoryVital, 1)
	assert.Len(t, snaps, 1)
}

type selectiveRunner struct {
	fail    string
	failing *mock.Runner
	ok      *mock.Runner
}

func (s *selectiveRunner) Run(ctx context.Context, host *inventory.Host, command string) (string, error) {
	if host.Name == s.fail {
		return s.failing.Run(ctx, host, command)
	}
	return s.ok.Run(ctx, host, command)
}

func TestCancelledContextStopsBatch(t *testing.T) {
	e, _, store := newTestEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	batch, err := e.RunCommands(ctx, RunVital, commandDoc())
	require.NoError(t, err)
	require.True(t, batch.Failed())

	// No partially-written snapshots.
	for _, host := range []string{"R1", "R2"} {
		snaps, _ := store.ListRecent(context.Background(), host, spec.CategoryVital, 10)
		assert.Empty(t, snaps)
	}
}

func TestPreWarnsOnEmptyClasses(t *testing.T) {
	e, _, _ := newTestEngine(t)

	doc := &spec.Document{
		Kind: spec.KindCommand,
		All:  spec.Layer{"cmd_vital": []any{"show version"}},
	}

	batch, err := e.RunCommands(context.Background(), RunPre, doc)
	require.NoError(t, err)

	for _, res := range batch.Results {
		assert.Contains(t, res.Warnings, spec.CategoryPrint)
		assert.Contains(t, res.Warnings, spec.CategoryDetail)
		assert.Contains(t, res.Warnings, spec.CategoryConfig)
		assert.NotContains(t, res.Warnings, spec.CategoryVital)
	}
}

func TestValidateAggregates(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.Facts = facts.Fixed{
		"R1": {"image": map[string]any{"version": "9.3.9"}},
		"R2": {"image": map[string]any{"version": "9.3.8"}},
	}

	doc := &spec.Document{
		Kind: spec.KindValidation,
		All:  spec.Layer{"image": map[string]any{"version": "9.3.9"}},
	}

	batch, err := e.Validate(context.Background(), doc)
	require.NoError(t, err)
	require.NotNil(t, batch.Report)

	assert.False(t, batch.Complies, "R2 runs the wrong image")
	require.Len(t, batch.Report.Hosts, 2)
	assert.True(t, batch.Report.Hosts[0].Complies)
	assert.False(t, batch.Report.Hosts[1].Complies)
}

func TestValidateHostOverride(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.Facts = facts.Fixed{
		"R1": {"image": map[string]any{"version": "10.1.1"}},
		"R2": {"image": map[string]any{"version": "9.3.9"}},
	}

	doc := &spec.Document{
		Kind:  spec.KindValidation,
		All:   spec.Layer{"image": map[string]any{"version": "9.3.9"}},
		Hosts: map[string]spec.Layer{"R1": {"image": map[string]any{"version": "10.1.1"}}},
	}

	batch, err := e.Validate(context.Background(), doc)
	require.NoError(t, err)
	assert.True(t, batch.Complies)
}

func TestGenerateValFiles(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.Facts = facts.Fixed{
		"R1": {"vlan": map[string]any{"ids": []any{10, 20}}},
		"R2": {},
	}

	dir := t.TempDir()
	batch, paths, err := e.GenerateValFiles(context.Background(), []string{"vlan.ids"}, dir)
	require.NoError(t, err)
	require.False(t, batch.Failed())

	require.Len(t, paths, 1, "only R1 has vlan enabled")
	doc, err := spec.Load(paths[0], spec.KindValidation)
	require.NoError(t, err)
	assert.Contains(t, doc.Hosts, "R1")
}

func TestCompareFiles(t *testing.T) {
	e, _, _ := newTestEngine(t)
	dir := t.TempDir()

	pre := filepath.Join(dir, "pre.txt")
	post := filepath.Join(dir, "post.txt")
	require.NoError(t, os.WriteFile(pre, []byte("hostname R1\nmtu 1500\n"), 0644))
	require.NoError(t, os.WriteFile(post, []byte("hostname R1\nmtu 9216\n"), 0644))

	path, err := e.CompareFiles(pre, post)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".html"))
}
