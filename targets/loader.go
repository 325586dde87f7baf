package targets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/zopnote/dartcc/config"
	"github.com/zopnote/dartcc/pipeline"
)

// LoadFile reads, schema-validates, and registers the targets defined
// in a dartcc.yaml file. A missing file leaves the registry unchanged
// and returns an empty config.
func (r *Registry) LoadFile(path string) (*config.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &config.Config{}, nil
		}
		return nil, fmt.Errorf("reading dartcc config %s: %w", path, err)
	}

	msgs, err := ValidateDefinition(data)
	if err != nil {
		return nil, err
	}
	if len(msgs) > 0 {
		return nil, pipeline.Userf("invalid config %s:\n  %s", path, strings.Join(msgs, "\n  "))
	}

	cfg, err := config.Parse(data)
	if err != nil {
		return nil, err
	}
	if err := r.AddConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// AddConfig compiles every target defined in cfg into pipeline steps
// and registers it. A definition that shadows an existing target is a
// UserInputError.
func (r *Registry) AddConfig(cfg *config.Config) error {
	for _, def := range cfg.Targets {
		if _, exists := r.targets[def.Name]; exists {
			return pipeline.Userf("target %q is already defined", def.Name)
		}
		steps := make([]pipeline.Step, len(def.Steps))
		for i, stepDef := range def.Steps {
			steps[i] = compileStep(stepDef)
		}
		r.Register(def.Name, steps)
	}
	return nil
}

// compileStep turns a declarative step definition into an executable
// pipeline step: vars become configure defaults, unless_exists becomes
// the condition, and program/args become the command. Program, args,
// and dir expand ${key} references against the environment's variables.
func compileStep(def config.StepDef) pipeline.Step {
	step := pipeline.Step{
		Name:            def.Name,
		Spinner:         def.Spinner,
		ContinueOnError: def.ContinueOnError,
	}

	if len(def.Vars) > 0 {
		vars := def.Vars
		step.Configure = func(env *pipeline.Environment) error {
			// Defaults only: values seeded by the caller win.
			for k, v := range vars {
				env.SetDefault(k, v)
			}
			return nil
		}
	}

	if def.UnlessExists != "" {
		marker := def.UnlessExists
		step.Condition = func(env *pipeline.Environment) (bool, error) {
			path, err := expand(env, marker)
			if err != nil {
				return false, err
			}
			if !filepath.IsAbs(path) {
				path = filepath.Join(env.WorkDir, path)
			}
			_, err = os.Stat(path)
			if err == nil {
				return false, nil
			}
			if errors.Is(err, fs.ErrNotExist) {
				return true, nil
			}
			return false, err
		}
	}

	if def.Program != "" {
		program, args, dir, admin := def.Program, def.Args, def.Dir, def.Admin
		step.Command = func(env *pipeline.Environment) (*pipeline.Command, error) {
			prog, err := expand(env, program)
			if err != nil {
				return nil, err
			}
			expanded := make([]string, len(args))
			for i, arg := range args {
				if expanded[i], err = expand(env, arg); err != nil {
					return nil, err
				}
			}
			workDir, err := expand(env, dir)
			if err != nil {
				return nil, err
			}
			return &pipeline.Command{
				Program:       prog,
				Args:          expanded,
				Dir:           workDir,
				Administrator: admin,
			}, nil
		}
	}

	return step
}

// expand substitutes ${key} references with environment variables. A
// reference to an unknown key is a UserInputError, not an empty string,
// so a typo in dartcc.yaml surfaces instead of mangling the command.
func expand(env *pipeline.Environment, s string) (string, error) {
	var missing string
	out := os.Expand(s, func(key string) string {
		if v, ok := env.Lookup(key); ok {
			return fmt.Sprint(v)
		}
		if missing == "" {
			missing = key
		}
		return ""
	})
	if missing != "" {
		return "", pipeline.Userf("unknown variable %q referenced in %q", missing, s)
	}
	return out, nil
}
