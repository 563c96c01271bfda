// Package metrics counts batch-run outcomes. Because the process is
// one-shot there is nothing to scrape; after a run the registry is dumped in
// exposition text format next to the other artifacts.
package metrics

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

type Metrics struct {
	registry *prometheus.Registry

	HostsProcessed   prometheus.Counter
	HostFailures     prometheus.Counter
	SnapshotsWritten prometheus.Counter
	DiffsRendered    prometheus.Counter
	Checks           *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.HostsProcessed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "prepost_hosts_processed_total",
		Help: "Hosts a batch run processed.",
	})
	m.HostFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "prepost_host_failures_total",
		Help: "Hosts whose processing ended in an error.",
	})
	m.SnapshotsWritten = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "prepost_snapshots_written_total",
		Help: "Snapshots appended to the store.",
	})
	m.DiffsRendered = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "prepost_diff_reports_total",
		Help: "Diff reports rendered.",
	})
	m.Checks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "prepost_compliance_checks_total",
		Help: "Compliance checks evaluated, by result.",
	}, []string{"result"})

	m.registry.MustRegister(
		m.HostsProcessed,
		m.HostFailures,
		m.SnapshotsWritten,
		m.DiffsRendered,
		m.Checks,
	)
	return m
}

// WriteTextfile dumps all metric families to path.
func (m *Metrics) WriteTextfile(path string) error {
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create metrics file: %w", err)
	}
	defer f.Close()

	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(f, mf); err != nil {
			return fmt.Errorf("write metrics file: %w", err)
		}
	}
	return nil
}
