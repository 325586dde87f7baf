// Package targets maps target names to their ordered step pipelines:
// the built-in Dart SDK bootstrap plus any targets declared in
// dartcc.yaml.
package targets

import (
	"sort"
	"strings"

	"github.com/zopnote/dartcc/pipeline"
)

// Registry maps target names to ordered step lists. Resolution is by
// exact string match.
type Registry struct {
	targets map[string][]pipeline.Step
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{targets: make(map[string][]pipeline.Step)}
}

// Builtin returns a Registry holding the built-in targets.
func Builtin() *Registry {
	r := NewRegistry()
	r.Register("sdk", SDKSteps())
	return r
}

// Register adds or replaces a target.
func (r *Registry) Register(name string, steps []pipeline.Step) {
	r.targets[name] = steps
}

// Resolve returns the step list for name. An unknown name is a
// UserInputError.
func (r *Registry) Resolve(name string) ([]pipeline.Step, error) {
	steps, ok := r.targets[name]
	if !ok {
		return nil, pipeline.Userf("unknown target %q (available: %s)",
			name, strings.Join(r.Names(), ", "))
	}
	return steps, nil
}

// Names returns the registered target names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.targets))
	for name := range r.targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered targets.
func (r *Registry) Len() int { return len(r.targets) }
