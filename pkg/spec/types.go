// Package spec models layered command/validation specification documents and
// merges them into one effective specification per target host. Command-kind
// documents merge additively; validation-kind documents merge by precedence,
// host over group over all.
package spec

// Kind selects the merge discipline for a document.
type Kind int

const (
	KindCommand Kind = iota
	KindValidation
)

func (k Kind) String() string {
	if k == KindValidation {
		return "validation"
	}
	return "command"
}

// Layer is one body within the hosts/groups/all sections. For command-kind
// documents the recognized keys are run_cfg, cmd_print, cmd_vital and
// cmd_detail; validation-kind bodies are arbitrary feature-keyed trees owned
// by the compliance evaluator.
type Layer map[string]any

// Document is a three-layer specification. At least one section must be
// present.
type Document struct {
	Kind   Kind             `yaml:"-"`
	Hosts  map[string]Layer `yaml:"hosts,omitempty"`
	Groups map[string]Layer `yaml:"groups,omitempty"`
	All    Layer            `yaml:"all,omitempty"`
}

// Empty reports whether no section carries data.
func (d *Document) Empty() bool {
	return len(d.Hosts) == 0 && len(d.Groups) == 0 && len(d.All) == 0
}

// Effective is the fully merged per-host specification.
type Effective struct {
	Host string

	// Command kind.
	RunCfg bool
	Print  []string
	Vital  []string
	Detail []string

	// Validation kind: feature name to desired-state subtree.
	Validation map[string]any
}

// Commands returns the command list for a snapshot category.
func (e *Effective) Commands(category string) []string {
	switch category {
	case CategoryPrint:
		return e.Print
	case CategoryVital:
		return e.Vital
	case CategoryDetail:
		return e.Detail
	case CategoryConfig:
		if e.RunCfg {
			return []string{RunningConfigCommand}
		}
		return nil
	}
	return nil
}

// Snapshot categories an effective command spec feeds.
const (
	CategoryPrint  = "print"
	CategoryVital  = "vital"
	CategoryDetail = "detail"
	CategoryConfig = "config"
)

// RunningConfigCommand is what an effective run_cfg=true expands to.
const RunningConfigCommand = "show running-config"

const (
	keyRunCfg    = "run_cfg"
	keyCmdPrint  = "cmd_print"
	keyCmdVital  = "cmd_vital"
	keyCmdDetail = "cmd_detail"
)
