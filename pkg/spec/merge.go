package spec

import (
	"errors"
	"sort"
	"strings"
)

// Options tune the command-kind merge.
type Options struct {
	// DedupCommands drops repeat commands across layers, keeping the first
	// occurrence. Default keeps duplicates: listing a command at two layers
	// runs it twice.
	DedupCommands bool
}

// Merge combines a document into one effective spec for every target host.
// Layer order is all, then each matching group in lexicographic order, then
// the host's own layer. Group or host names in the document without a
// counterpart in the inputs contribute nothing: filtering, not the document,
// determines scope. Merge is pure; calling it twice with the same inputs
// yields identical results.
func Merge(doc *Document, targets []string, hostGroups map[string][]string, opts Options) (map[string]*Effective, error) {
	if doc == nil || doc.Empty() {
		return nil, &EmptySpecError{}
	}
	if len(targets) == 0 {
		return nil, errors.New("merge requires at least one target host")
	}

	out := make(map[string]*Effective, len(targets))
	for _, host := range targets {
		layers := layersFor(doc, host, hostGroups[host])

		eff := &Effective{Host: host}
		switch doc.Kind {
		case KindValidation:
			eff.Validation = mergeValidation(layers)
		default:
			mergeCommands(eff, layers, opts)
		}
		out[host] = eff
	}
	return out, nil
}

// layersFor orders the contributing layers from least to most specific.
func layersFor(doc *Document, host string, groups []string) []Layer {
	var layers []Layer
	if len(doc.All) > 0 {
		layers = append(layers, doc.All)
	}

	sorted := append([]string(nil), groups...)
	sort.Strings(sorted)
	for _, g := range sorted {
		if body, ok := doc.Groups[g]; ok {
			layers = append(layers, body)
		}
	}

	var hostNames []string
	for name := range doc.Hosts {
		if strings.EqualFold(name, host) {
			hostNames = append(hostNames, name)
		}
	}
	sort.Strings(hostNames)
	for _, name := range hostNames {
		layers = append(layers, doc.Hosts[name])
	}
	return layers
}

func mergeCommands(eff *Effective, layers []Layer, opts Options) {
	for _, l := range layers {
		eff.RunCfg = eff.RunCfg || boolValue(l[keyRunCfg])
		eff.Print = append(eff.Print, stringList(l[keyCmdPrint])...)
		eff.Vital = append(eff.Vital, stringList(l[keyCmdVital])...)
		eff.Detail = append(eff.Detail, stringList(l[keyCmdDetail])...)
	}
	if opts.DedupCommands {
		eff.Print = dedup(eff.Print)
		eff.Vital = dedup(eff.Vital)
		eff.Detail = dedup(eff.Detail)
	}
}

// mergeValidation applies precedence: a feature declared at a more specific
// layer replaces the whole subtree from less specific ones. It never merges
// below the feature key, so conflicting leaves cannot interleave across
// layers. Features unique to any layer are all retained.
func mergeValidation(layers []Layer) map[string]any {
	out := make(map[string]any)
	for _, l := range layers {
		for feature, desired := range l {
			out[feature] = deepCopy(desired)
		}
	}
	return out
}

func boolValue(v any) bool {
	b, ok := v.(bool)
	return ok && b
}

func stringList(v any) []string {
	switch vv := v.(type) {
	case []string:
		return vv
	case []any:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func dedup(cmds []string) []string {
	if len(cmds) < 2 {
		return cmds
	}
	seen := make(map[string]struct{}, len(cmds))
	out := cmds[:0]
	for _, c := range cmds {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

func deepCopy(v any) any {
	switch vv := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(vv))
		for k, item := range vv {
			out[k] = deepCopy(item)
		}
		return out
	case Layer:
		out := make(map[string]any, len(vv))
		for k, item := range vv {
			out[k] = deepCopy(item)
		}
		return out
	case []any:
		out := make([]any, len(vv))
		for i, item := range vv {
			out[i] = deepCopy(item)
		}
		return out
	}
	return v
}
