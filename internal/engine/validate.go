package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/netops-tools/prepost/pkg/compliance"
	"github.com/netops-tools/prepost/pkg/facts"
	"github.com/netops-tools/prepost/pkg/index"
	"github.com/netops-tools/prepost/pkg/inventory"
	"github.com/netops-tools/prepost/pkg/spec"
)

// Validate merges a validation-kind document, gathers facts per host and
// evaluates compliance. Evaluation errors stay scoped to their host; the
// aggregate only covers hosts that evaluated.
func (e *Engine) Validate(ctx context.Context, doc *spec.Document) (*BatchResult, error) {
	merged, err := spec.Merge(doc, e.Inventory.Names(), e.Inventory.HostGroups(), e.MergeOpts)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	hostReports := make(map[string]*compliance.HostReport)
	results := e.forEachHost(ctx, func(ctx context.Context, h *inventory.Host) HostResult {
		res := HostResult{Host: h.Name}

		actual, err := e.Facts.Gather(ctx, h.Name)
		if err != nil {
			res.Err = fmt.Errorf("gather facts: %w", err)
			return res
		}

		report, err := compliance.Evaluate(merged[h.Name], actual)
		if err != nil {
			res.Err = err
			return res
		}
		mu.Lock()
		hostReports[h.Name] = report
		mu.Unlock()
		return res
	})

	var reports []compliance.HostReport
	for _, r := range results {
		if report, ok := hostReports[r.Host]; ok {
			reports = append(reports, *report)
		}
	}

	batch := &BatchResult{Results: results}
	batch.Report = compliance.Aggregate(reports)
	batch.Complies = batch.Report.Complies && !batch.Failed()

	for _, h := range batch.Report.Hosts {
		for _, c := range h.Checks {
			if c.Passed {
				e.Metrics.Checks.WithLabelValues("pass").Inc()
			} else {
				e.Metrics.Checks.WithLabelValues("fail").Inc()
			}
		}
	}
	return batch, nil
}

// GenerateValFiles expands a feature index against each host's current
// facts and writes the skeleton validation files into dir.
func (e *Engine) GenerateValFiles(ctx context.Context, entries []string, dir string) (*BatchResult, []string, error) {
	var mu sync.Mutex
	enabled := make(map[string]facts.HostFacts)

	results := e.forEachHost(ctx, func(ctx context.Context, h *inventory.Host) HostResult {
		res := HostResult{Host: h.Name}
		actual, err := e.Facts.Gather(ctx, h.Name)
		if err != nil {
			res.Err = fmt.Errorf("gather facts: %w", err)
			return res
		}
		mu.Lock()
		enabled[h.Name] = actual
		mu.Unlock()
		return res
	})

	doc, err := index.Resolve(entries, enabled)
	if err != nil {
		return &BatchResult{Results: results}, nil, err
	}

	paths, err := index.WriteValFiles(doc, dir)
	if err != nil {
		return &BatchResult{Results: results}, nil, err
	}
	return &BatchResult{Results: results}, paths, nil
}
