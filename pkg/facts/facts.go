// Package facts models collected actual state per device: a feature-keyed
// tree the compliance evaluator walks. How facts are gathered (SSH, API,
// parsed command output) is a transport concern behind the Provider
// interface.
package facts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// HostFacts maps feature name to the feature's actual-state subtree.
type HostFacts map[string]any

// Features returns the enabled feature names in order.
func (f HostFacts) Features() []string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Provider gathers facts for one host. Implementations own their timeout
// and retry policy; callers treat Gather as a black box.
type Provider interface {
	Gather(ctx context.Context, host string) (HostFacts, error)
}

// Static serves facts from per-host YAML files in a directory, named
// <host>_facts.yml. Useful for offline evaluation and tests.
type Static struct {
	dir string
}

func NewStatic(dir string) *Static {
	return &Static{dir: dir}
}

func (s *Static) Gather(ctx context.Context, host string) (HostFacts, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.dir, host+"_facts.yml"))
	if err != nil {
		return nil, fmt.Errorf("read facts for %s: %w", host, err)
	}

	var f HostFacts
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse facts for %s: %w", host, err)
	}
	return f, nil
}

// Fixed returns the same facts for every host. Test helper.
type Fixed map[string]HostFacts

func (f Fixed) Gather(ctx context.Context, host string) (HostFacts, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hf, ok := f[host]
	if !ok {
		return HostFacts{}, nil
	}
	return hf, nil
}
