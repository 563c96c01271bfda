// Package index expands a compact feature/sub-feature index into a skeleton
// validation specification, scoped to what each host actually has enabled.
package index

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/netops-tools/prepost/pkg/compliance"
	"github.com/netops-tools/prepost/pkg/facts"
	"github.com/netops-tools/prepost/pkg/spec"
	"gopkg.in/yaml.v3"
)

// Entry is one parsed index identifier, feature or feature.subfeature.
type Entry struct {
	Feature string
	Sub     string
}

// InvalidIndexEntryError reports a structurally malformed index identifier.
type InvalidIndexEntryError struct {
	Entry string
}

func (e *InvalidIndexEntryError) Error() string {
	return fmt.Sprintf("invalid feature index entry %q", e.Entry)
}

// ParseEntry validates one identifier. Disabled features are not the
// parser's concern; only structure fails here.
func ParseEntry(raw string) (Entry, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.ContainsAny(trimmed, " \t") {
		return Entry{}, &InvalidIndexEntryError{Entry: raw}
	}

	parts := strings.Split(trimmed, ".")
	if len(parts) > 2 {
		return Entry{}, &InvalidIndexEntryError{Entry: raw}
	}
	for _, p := range parts {
		if p == "" {
			return Entry{}, &InvalidIndexEntryError{Entry: raw}
		}
	}

	e := Entry{Feature: parts[0]}
	if len(parts) == 2 {
		e.Sub = parts[1]
	}
	return e, nil
}

// Resolve expands the index against per-host enabled features into a
// validation-kind skeleton document with one host layer per host. An entry
// whose feature a host does not have enabled is omitted for that host, never
// an error. With no index entries the resolver goes full-coverage: every
// feature enabled on the host that has a registered skeleton.
func Resolve(entries []string, enabled map[string]facts.HostFacts) (*spec.Document, error) {
	parsed := make([]Entry, 0, len(entries))
	for _, raw := range entries {
		e, err := ParseEntry(raw)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, e)
	}

	doc := &spec.Document{
		Kind:  spec.KindValidation,
		Hosts: make(map[string]spec.Layer),
	}

	hosts := make([]string, 0, len(enabled))
	for host := range enabled {
		hosts = append(hosts, host)
	}
	sort.Strings(hosts)

	for _, host := range hosts {
		hostFacts := enabled[host]
		layer := make(spec.Layer)

		if len(parsed) == 0 {
			for _, feature := range hostFacts.Features() {
				if skel, ok := complianceSkeleton(feature, "", hostFacts); ok {
					layer[feature] = skel
				}
			}
		} else {
			for _, e := range parsed {
				if _, on := hostFacts[e.Feature]; !on {
					continue
				}
				skel, ok := complianceSkeleton(e.Feature, e.Sub, hostFacts)
				if !ok {
					continue
				}
				if existing, ok := layer[e.Feature].(map[string]any); ok {
					for k, v := range skel {
						existing[k] = v
					}
				} else {
					layer[e.Feature] = skel
				}
			}
		}

		if len(layer) > 0 {
			doc.Hosts[host] = layer
		}
	}

	if doc.Empty() {
		return nil, &spec.EmptySpecError{}
	}
	return doc, nil
}

// complianceSkeleton builds the skeleton subtree for feature (optionally one
// sub-feature), seeding values from the host's current state where facts
// carry them, so generated files start as a snapshot-as-desired baseline.
func complianceSkeleton(feature, sub string, hostFacts facts.HostFacts) (map[string]any, bool) {
	skel, ok := compliance.SkeletonFor(feature)
	if !ok {
		return nil, false
	}

	out := make(map[string]any)
	actual, _ := hostFacts[feature].(map[string]any)
	for key, placeholder := range skel {
		if sub != "" && key != sub {
			continue
		}
		if current, ok := actual[key]; ok {
			out[key] = seedValue(current)
		} else {
			out[key] = placeholder
		}
	}
	if sub != "" && len(out) == 0 {
		// Sub-feature without a registered skeleton slot still gets an
		// empty placeholder for the operator to fill.
		out[sub] = nil
	}
	return out, true
}

// seedValue flattens actual state into desired form: mappings of
// name-to-state become name lists, everything else carries over.
func seedValue(v any) any {
	if m, ok := v.(map[string]any); ok {
		keys := make([]any, 0, len(m))
		names := make([]string, 0, len(m))
		for k := range m {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, k := range names {
			keys = append(keys, k)
		}
		return keys
	}
	return v
}

// WriteValFiles writes one validation document per host layer into dir,
// named <host>_vals.yml, and returns the written paths.
func WriteValFiles(doc *spec.Document, dir string) ([]string, error) {
	hosts := make([]string, 0, len(doc.Hosts))
	for host := range doc.Hosts {
		hosts = append(hosts, host)
	}
	sort.Strings(hosts)

	var paths []string
	for _, host := range hosts {
		out := spec.Document{Hosts: map[string]spec.Layer{host: doc.Hosts[host]}}
		data, err := yaml.Marshal(&out)
		if err != nil {
			return nil, fmt.Errorf("marshal validation file for %s: %w", host, err)
		}

		path := filepath.Join(dir, host+"_vals.yml")
		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("write validation file for %s: %w", host, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
