// Package engine orchestrates batch runs across the filtered inventory.
// Hosts are independent: each runs in its own goroutine, and one host's
// failure never aborts the others. Within a host the order is always
// collect, persist, then diff or evaluate.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/netops-tools/prepost/pkg/compliance"
	"github.com/netops-tools/prepost/pkg/diffengine"
	"github.com/netops-tools/prepost/pkg/facts"
	"github.com/netops-tools/prepost/pkg/inventory"
	"github.com/netops-tools/prepost/pkg/logger"
	"github.com/netops-tools/prepost/pkg/metrics"
	"github.com/netops-tools/prepost/pkg/runner"
	"github.com/netops-tools/prepost/pkg/snapshot"
	"github.com/netops-tools/prepost/pkg/spec"
)

type RunType string

const (
	RunPrint  RunType = "print"
	RunVital  RunType = "vital"
	RunDetail RunType = "detail"
	RunPre    RunType = "pre"
	RunPost   RunType = "post"
)

type Engine struct {
	Inventory *inventory.Inventory
	Store     snapshot.Store
	Runner    runner.Runner
	Facts     facts.Provider
	Diff      *diffengine.Engine
	Metrics   *metrics.Metrics
	MergeOpts spec.Options
	// OutputDir receives rendered diff and compliance reports.
	OutputDir string

	log *slog.Logger
}

func New(inv *inventory.Inventory, store snapshot.Store, run runner.Runner) *Engine {
	return &Engine{
		Inventory: inv,
		Store:     store,
		Runner:    run,
		Diff:      diffengine.New(0),
		Metrics:   metrics.New(),
		log:       logger.Get(logger.Engine),
	}
}

// HostResult is one host's outcome: artifacts written, warnings, or the
// error that ended its processing.
type HostResult struct {
	Host      string
	Artifacts []string
	Warnings  []string
	Err       error
}

// BatchResult collects per-host outcomes; Report is set for validation runs.
type BatchResult struct {
	Results  []HostResult
	Report   *compliance.Report
	Complies bool
}

// Failed reports whether any host ended in an error.
func (b *BatchResult) Failed() bool {
	for _, r := range b.Results {
		if r.Err != nil {
			return true
		}
	}
	return false
}

// forEachHost fans one function out across the inventory and collects
// results in inventory (name) order.
func (e *Engine) forEachHost(ctx context.Context, fn func(ctx context.Context, h *inventory.Host) HostResult) []HostResult {
	hosts := e.Inventory.Hosts
	results := make([]HostResult, len(hosts))

	var wg sync.WaitGroup
	for i, h := range hosts {
		wg.Add(1)
		go func(i int, h *inventory.Host) {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				results[i] = HostResult{Host: h.Name, Err: err}
				return
			}
			results[i] = fn(ctx, h)
		}(i, h)
	}
	wg.Wait()

	for _, r := range results {
		e.Metrics.HostsProcessed.Inc()
		if r.Err != nil {
			e.Metrics.HostFailures.Inc()
		}
	}
	return results
}

// RunCommands executes a command-kind document for the whole batch.
func (e *Engine) RunCommands(ctx context.Context, runType RunType, doc *spec.Document) (*BatchResult, error) {
	merged, err := spec.Merge(doc, e.Inventory.Names(), e.Inventory.HostGroups(), e.MergeOpts)
	if err != nil {
		return nil, err
	}

	results := e.forEachHost(ctx, func(ctx context.Context, h *inventory.Host) HostResult {
		return e.runHost(ctx, runType, h, merged[h.Name])
	})
	return &BatchResult{Results: results}, nil
}

func (e *Engine) runHost(ctx context.Context, runType RunType, h *inventory.Host, eff *spec.Effective) HostResult {
	res := HostResult{Host: h.Name}
	log := logger.WithHost(e.log, h.Name)

	addArtifact := func(artifact string, err error) bool {
		if err != nil {
			res.Err = err
			return false
		}
		if artifact != "" {
			res.Artifacts = append(res.Artifacts, artifact)
		}
		return true
	}

	switch runType {
	case RunPrint:
		res.Err = e.printCommands(ctx, h, eff, log)

	case RunVital, RunDetail:
		category := spec.CategoryVital
		if runType == RunDetail {
			category = spec.CategoryDetail
		}
		if !addArtifact(e.persist(ctx, h, eff, spec.CategoryConfig)) {
			return res
		}
		addArtifact(e.persist(ctx, h, eff, category))

	case RunPre:
		res.Warnings = emptyClasses(eff)
		if err := e.printCommands(ctx, h, eff, log); err != nil {
			res.Err = err
			return res
		}
		if !addArtifact(e.persist(ctx, h, eff, spec.CategoryConfig)) {
			return res
		}
		if !addArtifact(e.persist(ctx, h, eff, spec.CategoryVital)) {
			return res
		}
		addArtifact(e.persist(ctx, h, eff, spec.CategoryDetail))

	case RunPost:
		res.Warnings = emptyClasses(eff)
		if err := e.printCommands(ctx, h, eff, log); err != nil {
			res.Err = err
			return res
		}
		if !addArtifact(e.persist(ctx, h, eff, spec.CategoryConfig)) {
			return res
		}
		if !addArtifact(e.persist(ctx, h, eff, spec.CategoryVital)) {
			return res
		}
		if len(eff.Vital) > 0 {
			if !addArtifact(e.renderDiff(ctx, h.Name, spec.CategoryVital)) {
				return res
			}
		}
		if eff.RunCfg {
			addArtifact(e.renderDiff(ctx, h.Name, spec.CategoryConfig))
		}

	default:
		res.Err = fmt.Errorf("unknown run type %q", runType)
	}

	return res
}

func (e *Engine) printCommands(ctx context.Context, h *inventory.Host, eff *spec.Effective, log *slog.Logger) error {
	if len(eff.Print) == 0 {
		return nil
	}
	output, err := runner.RunAll(ctx, e.Runner, h, eff.Print)
	if err != nil {
		return err
	}
	log.Info("command output", "output", output)
	return nil
}

// persist collects one category's commands and appends the output as a new
// snapshot. No commands means no snapshot and no artifact.
func (e *Engine) persist(ctx context.Context, h *inventory.Host, eff *spec.Effective, category string) (string, error) {
	cmds := eff.Commands(category)
	if len(cmds) == 0 {
		return "", nil
	}

	output, err := runner.RunAll(ctx, e.Runner, h, cmds)
	if err != nil {
		return "", err
	}

	snap, err := e.Store.Append(ctx, h.Name, category, output)
	if err != nil {
		return "", err
	}
	e.Metrics.SnapshotsWritten.Inc()
	return snap.ID, nil
}

func (e *Engine) renderDiff(ctx context.Context, host, category string) (string, error) {
	res, err := e.Diff.Diff(ctx, e.Store, host, category)
	if err != nil {
		return "", err
	}
	path, err := diffengine.WriteReport(res, e.OutputDir)
	if err != nil {
		return "", err
	}
	e.Metrics.DiffsRendered.Inc()
	return path, nil
}

// CompareFiles diffs two explicit files and writes the report.
func (e *Engine) CompareFiles(pathA, pathB string) (string, error) {
	res, err := e.Diff.DiffFiles(pathA, pathB)
	if err != nil {
		return "", err
	}
	path, err := diffengine.WriteReport(res, e.OutputDir)
	if err != nil {
		return "", err
	}
	e.Metrics.DiffsRendered.Inc()
	return path, nil
}

func emptyClasses(eff *spec.Effective) []string {
	var empty []string
	if len(eff.Print) == 0 {
		empty = append(empty, spec.CategoryPrint)
	}
	if len(eff.Vital) == 0 {
		empty = append(empty, spec.CategoryVital)
	}
	if len(eff.Detail) == 0 {
		empty = append(empty, spec.CategoryDetail)
	}
	if !eff.RunCfg {
		empty = append(empty, spec.CategoryConfig)
	}
	return empty
}
