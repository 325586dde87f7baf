// Package pipeline implements the conditional step-pipeline engine that
// drives dartcc targets: a mutable Environment shared across an ordered
// list of Steps, executed by an Executor through the configure →
// condition → execute protocol.
package pipeline

import (
	"path/filepath"

	"github.com/zopnote/dartcc/platform"
)

// Environment is the run-scoped context shared by every step of one
// pipeline run. Host and Target describe the executing machine and the
// machine being built for; WorkDir is the root working directory derived
// from the target name. Variables grow monotonically across steps and
// are never persisted between runs.
//
// An Environment is owned by a single run and mutated only by step
// hooks executing sequentially; no locking is needed because the
// executor never runs two steps concurrently.
type Environment struct {
	Host    platform.Host
	Target  platform.Host
	WorkDir string

	vars map[string]any
}

// Options configures Environment construction.
type Options struct {
	// WorkRoot is the directory under which the run's working directory
	// is created. Defaults to ".".
	WorkRoot string
	// Target is the platform being built for. Defaults to the host.
	Target platform.Host
	// Vars seeds the variable store.
	Vars map[string]any
}

// NewEnvironment creates the Environment for one run of the named
// target. The working directory is WorkRoot/<name>.
func NewEnvironment(name string, opts Options) *Environment {
	host := platform.Current()
	target := opts.Target
	if target == (platform.Host{}) {
		target = host
	}
	root := opts.WorkRoot
	if root == "" {
		root = "."
	}

	vars := make(map[string]any, len(opts.Vars))
	for k, v := range opts.Vars {
		vars[k] = v
	}

	return &Environment{
		Host:    host,
		Target:  target,
		WorkDir: filepath.Join(root, name),
		vars:    vars,
	}
}

// Set stores a variable, replacing any previous value.
func (e *Environment) Set(key string, value any) {
	e.vars[key] = value
}

// SetDefault stores a variable only if the key is not already present.
func (e *Environment) SetDefault(key string, value any) {
	if _, ok := e.vars[key]; !ok {
		e.vars[key] = value
	}
}

// Lookup returns the raw value for key.
func (e *Environment) Lookup(key string) (any, bool) {
	v, ok := e.vars[key]
	return v, ok
}

// Len returns the number of stored variables.
func (e *Environment) Len() int { return len(e.vars) }

// String returns the string variable for key.
func (e *Environment) String(key string) (string, error) {
	v, ok := e.vars[key]
	if !ok {
		return "", &TypeError{Key: key, Want: "string", Got: nil}
	}
	s, ok := v.(string)
	if !ok {
		return "", &TypeError{Key: key, Want: "string", Got: v}
	}
	return s, nil
}

// Strings returns the string-list variable for key. Lists decoded from
// YAML arrive as []any and are converted element-wise.
func (e *Environment) Strings(key string) ([]string, error) {
	v, ok := e.vars[key]
	if !ok {
		return nil, &TypeError{Key: key, Want: "[]string", Got: nil}
	}
	switch list := v.(type) {
	case []string:
		return list, nil
	case []any:
		out := make([]string, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, &TypeError{Key: key, Want: "[]string", Got: v}
			}
			out[i] = s
		}
		return out, nil
	default:
		return nil, &TypeError{Key: key, Want: "[]string", Got: v}
	}
}

// Int returns the integer variable for key.
func (e *Environment) Int(key string) (int, error) {
	v, ok := e.vars[key]
	if !ok {
		return 0, &TypeError{Key: key, Want: "int", Got: nil}
	}
	n, ok := v.(int)
	if !ok {
		return 0, &TypeError{Key: key, Want: "int", Got: v}
	}
	return n, nil
}

// Bool returns the boolean variable for key.
func (e *Environment) Bool(key string) (bool, error) {
	v, ok := e.vars[key]
	if !ok {
		return false, &TypeError{Key: key, Want: "bool", Got: nil}
	}
	b, ok := v.(bool)
	if !ok {
		return false, &TypeError{Key: key, Want: "bool", Got: v}
	}
	return b, nil
}

// BoolOr returns the boolean variable for key, or def when the key is
// absent. A present value of the wrong type is still a TypeError.
func (e *Environment) BoolOr(key string, def bool) (bool, error) {
	if _, ok := e.vars[key]; !ok {
		return def, nil
	}
	return e.Bool(key)
}
