package spec

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Load reads one specification document.
func Load(path string, kind Kind) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spec file: %w", err)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse spec file %s: %w", path, err)
	}
	doc.Kind = kind

	if doc.Empty() {
		return nil, &EmptySpecError{Path: path}
	}
	return &doc, nil
}

// LoadDir reads every .yml/.yaml document in a directory and combines them
// additively into one document: section bodies for the same host or group
// name are deep-merged, lists appended, later scalar values winning. This is
// how a change's validation folder of per-feature files becomes one input.
func LoadDir(dir string, kind Kind) (*Document, error) {
	entries, err := filepath.Glob(filepath.Join(dir, "*.yml"))
	if err != nil {
		return nil, err
	}
	more, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	entries = append(entries, more...)
	sort.Strings(entries)

	if len(entries) == 0 {
		return nil, fmt.Errorf("no .yml validation files in %s", dir)
	}

	combined := &Document{
		Kind:   kind,
		Hosts:  make(map[string]Layer),
		Groups: make(map[string]Layer),
		All:    make(Layer),
	}

	for _, path := range entries {
		doc, err := Load(path, kind)
		if err != nil {
			return nil, err
		}

		additiveMerge(combined.All, doc.All)
		for name, body := range doc.Groups {
			if _, ok := combined.Groups[name]; !ok {
				combined.Groups[name] = make(Layer)
			}
			additiveMerge(combined.Groups[name], body)
		}
		for name, body := range doc.Hosts {
			if _, ok := combined.Hosts[name]; !ok {
				combined.Hosts[name] = make(Layer)
			}
			additiveMerge(combined.Hosts[name], body)
		}
	}

	if combined.Empty() {
		return nil, &EmptySpecError{Path: dir}
	}
	return combined, nil
}

// additiveMerge folds src into dst: nested maps merge recursively, lists
// append, anything else overwrites.
func additiveMerge(dst map[string]any, src map[string]any) {
	for k, sv := range src {
		dv, ok := dst[k]
		if !ok {
			dst[k] = deepCopy(sv)
			continue
		}
		switch svv := sv.(type) {
		case map[string]any:
			if dvv, ok := dv.(map[string]any); ok {
				additiveMerge(dvv, svv)
				continue
			}
			dst[k] = deepCopy(sv)
		case []any:
			if dvv, ok := dv.([]any); ok {
				dst[k] = append(dvv, deepCopy(svv).([]any)...)
				continue
			}
			dst[k] = deepCopy(sv)
		default:
			dst[k] = sv
		}
	}
}
