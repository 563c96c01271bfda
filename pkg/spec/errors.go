package spec

import "fmt"

// EmptySpecError reports a document that declares none of the hosts, groups
// or all sections.
type EmptySpecError struct {
	Path string
}

func (e *EmptySpecError) Error() string {
	if e.Path == "" {
		return "spec document must have at least one hosts, groups or all section"
	}
	return fmt.Sprintf("spec document %s must have at least one hosts, groups or all section", e.Path)
}
