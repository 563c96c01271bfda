// Package compliance evaluates a merged validation specification against
// collected facts and produces a structured, explainable pass/fail report.
// Feature semantics live in registered check functions; the walk here only
// dispatches and aggregates.
package compliance

import (
	"fmt"
	"sort"

	"github.com/netops-tools/prepost/pkg/facts"
	"github.com/netops-tools/prepost/pkg/spec"
)

// Check is one atomic desired-vs-actual evaluation.
type Check struct {
	Feature string `json:"feature"`
	Path    string `json:"path"`
	Desired any    `json:"desired"`
	Actual  any    `json:"actual,omitempty"`
	Passed  bool   `json:"passed"`
	Reason  string `json:"reason,omitempty"`
}

// HostReport holds the ordered check results for one host.
type HostReport struct {
	Host     string  `json:"host"`
	Checks   []Check `json:"checks"`
	Complies bool    `json:"complies"`
}

// Report aggregates per-host outcomes. Complies is true iff every check on
// every host passed.
type Report struct {
	Hosts    []HostReport `json:"hosts"`
	Complies bool         `json:"complies"`
}

// InvalidSpecPathError reports a validation spec addressing a feature no
// check function is registered for. This is a configuration error, distinct
// from a failing check.
type InvalidSpecPathError struct {
	Host    string
	Feature string
}

func (e *InvalidSpecPathError) Error() string {
	return fmt.Sprintf("validation spec for %s references unknown feature %q", e.Host, e.Feature)
}

// Evaluate walks every feature of an effective validation spec for one host.
// Features are visited in sorted name order so repeated runs produce
// byte-identical reports. A feature desired but absent from facts yields a
// failing check, not an error.
func Evaluate(eff *spec.Effective, actual facts.HostFacts) (*HostReport, error) {
	report := &HostReport{Host: eff.Host, Complies: true}

	features := make([]string, 0, len(eff.Validation))
	for name := range eff.Validation {
		features = append(features, name)
	}
	sort.Strings(features)

	for _, feature := range features {
		desired := eff.Validation[feature]

		fn, ok := lookup(feature)
		if !ok {
			return nil, &InvalidSpecPathError{Host: eff.Host, Feature: feature}
		}

		actualSub, present := actual[feature]
		if !present {
			report.Checks = append(report.Checks, Check{
				Feature: feature,
				Path:    feature,
				Desired: desired,
				Passed:  false,
				Reason:  "feature not present/enabled",
			})
			report.Complies = false
			continue
		}

		checks := fn(feature, desired, actualSub)
		for _, c := range checks {
			if !c.Passed {
				report.Complies = false
			}
		}
		report.Checks = append(report.Checks, checks...)
	}

	return report, nil
}

// Aggregate assembles per-host reports into one batch report, hosts in name
// order.
func Aggregate(hosts []HostReport) *Report {
	sorted := append([]HostReport(nil), hosts...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Host < sorted[j].Host })

	report := &Report{Hosts: sorted, Complies: true}
	for _, h := range sorted {
		if !h.Complies {
			report.Complies = false
		}
	}
	return report
}
