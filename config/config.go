// Package config holds configuration types for dartcc.yaml, the
// declarative file that defines user targets.
package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level dartcc.yaml configuration.
type Config struct {
	// WorkRoot overrides the directory under which target working
	// directories are created.
	WorkRoot string `yaml:"work_root,omitempty"`
	// Targets defines additional pipelines, in declaration order.
	Targets []TargetDef `yaml:"targets,omitempty"`
}

// TargetDef is one named, ordered list of step definitions.
type TargetDef struct {
	Name  string    `yaml:"name"`
	Steps []StepDef `yaml:"steps"`
}

// StepDef is the declarative form of a pipeline step. Program/Args
// describe an external invocation; Vars become environment defaults;
// UnlessExists is a path (relative to the run's working directory)
// whose presence skips the step.
type StepDef struct {
	Name            string         `yaml:"name"`
	Vars            map[string]any `yaml:"vars,omitempty"`
	UnlessExists    string         `yaml:"unless_exists,omitempty"`
	Program         string         `yaml:"program,omitempty"`
	Args            []string       `yaml:"args,omitempty"`
	Dir             string         `yaml:"dir,omitempty"`
	Admin           bool           `yaml:"admin,omitempty"`
	Spinner         bool           `yaml:"spinner,omitempty"`
	ContinueOnError bool           `yaml:"continue_on_error,omitempty"`
}

// Parse parses raw YAML bytes into a Config and checks required fields.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing dartcc config: %w", err)
	}

	for i, t := range cfg.Targets {
		if t.Name == "" {
			return nil, fmt.Errorf("dartcc config: targets[%d]: name is required", i)
		}
		if len(t.Steps) == 0 {
			return nil, fmt.Errorf("dartcc config: target %q defines no steps", t.Name)
		}
		for j, s := range t.Steps {
			if s.Name == "" {
				return nil, fmt.Errorf("dartcc config: target %q: steps[%d]: name is required", t.Name, j)
			}
		}
	}

	return &cfg, nil
}
