package targets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/zopnote/dartcc/pipeline"
	"github.com/zopnote/dartcc/platform"
)

const depotToolsURL = "https://chromium.googlesource.com/chromium/tools/depot_tools.git"

// syncSentinel marks a completed gclient sync inside the working
// directory. Its absence re-triggers the sync steps on the next run.
const syncSentinel = ".dartcc_synced"

// buildArchs maps the target processor architecture to the --arch
// values tools/build.py expects.
var buildArchs = map[string][]string{
	"amd64": {"x64"},
	"arm64": {"arm64"},
	"386":   {"ia32"},
	"arm":   {"arm"},
}

// SDKSteps returns the pipeline that bootstraps and builds the Dart
// SDK: locate an interpreter, install depot_tools, fetch the checkout,
// sync dependencies, and build. Every step's condition reflects prior
// completion, so re-running only executes what is missing.
func SDKSteps() []pipeline.Step {
	return []pipeline.Step{
		{
			Name: "locate python",
			// Discovery happens in Configure so the interpreter path
			// reaches later steps even when this step is not selected.
			Configure: func(env *pipeline.Environment) error {
				if _, ok := env.Lookup("tools.python"); ok {
					return nil
				}
				for _, candidate := range []string{"python3", "python"} {
					if path, err := exec.LookPath(candidate); err == nil {
						env.Set("tools.python", path)
						break
					}
				}
				return nil
			},
			Run: func(env *pipeline.Environment) (bool, error) {
				if _, ok := env.Lookup("tools.python"); ok {
					return true, nil
				}
				return false, errors.New("no python interpreter on PATH")
			},
		},
		{
			Name: "install depot_tools",
			Configure: func(env *pipeline.Environment) error {
				env.Set("depot_tools.dir", filepath.Join(env.WorkDir, "depot_tools"))
				return nil
			},
			Condition: func(env *pipeline.Environment) (bool, error) {
				dir, err := env.String("depot_tools.dir")
				if err != nil {
					return false, err
				}
				return notExists(dir)
			},
			Command: func(env *pipeline.Environment) (*pipeline.Command, error) {
				dir, err := env.String("depot_tools.dir")
				if err != nil {
					return nil, err
				}
				return &pipeline.Command{
					Program: "git",
					Args:    []string{"clone", "--depth=1", depotToolsURL, dir},
				}, nil
			},
			Spinner: true,
		},
		{
			Name: "configure checkout",
			Configure: func(env *pipeline.Environment) error {
				env.Set("sdk.src", filepath.Join(env.WorkDir, "sdk"))
				env.SetDefault("build.mode", "release")
				return nil
			},
			Condition: func(env *pipeline.Environment) (bool, error) {
				return notExists(filepath.Join(env.WorkDir, ".gclient"))
			},
			Command: func(env *pipeline.Environment) (*pipeline.Command, error) {
				script, err := depotScript(env, "fetch")
				if err != nil {
					return nil, err
				}
				return &pipeline.Command{
					Program: script,
					Args:    []string{"--no-history", "dart"},
				}, nil
			},
			Spinner: true,
		},
		{
			Name: "sync dependencies",
			Condition: func(env *pipeline.Environment) (bool, error) {
				return notExists(filepath.Join(env.WorkDir, syncSentinel))
			},
			Command: func(env *pipeline.Environment) (*pipeline.Command, error) {
				script, err := depotScript(env, "gclient")
				if err != nil {
					return nil, err
				}
				return &pipeline.Command{
					Program: script,
					Args:    []string{"sync", "-D", "--no-history"},
				}, nil
			},
			Spinner: true,
		},
		{
			Name: "record sync",
			Condition: func(env *pipeline.Environment) (bool, error) {
				return notExists(filepath.Join(env.WorkDir, syncSentinel))
			},
			Run: func(env *pipeline.Environment) (bool, error) {
				stamp := time.Now().UTC().Format(time.RFC3339) + "\n"
				path := filepath.Join(env.WorkDir, syncSentinel)
				if err := os.WriteFile(path, []byte(stamp), 0644); err != nil {
					return false, fmt.Errorf("writing sync sentinel: %w", err)
				}
				return true, nil
			},
		},
		{
			Name: "install system packages",
			Condition: func(env *pipeline.Environment) (bool, error) {
				if env.Host.OS != "linux" {
					return false, nil
				}
				return env.BoolOr("sdk.system_deps", false)
			},
			Command: func(env *pipeline.Environment) (*pipeline.Command, error) {
				return &pipeline.Command{
					Program:       "apt-get",
					Args:          []string{"install", "-y", "git", "curl", "xz-utils", "python3"},
					Administrator: true,
				}, nil
			},
			// A failed package install leaves the checkout usable; the
			// build step surfaces any genuinely missing dependency.
			ContinueOnError: true,
		},
		{
			Name: "build sdk",
			Configure: func(env *pipeline.Environment) error {
				archs, ok := buildArchs[env.Target.Arch]
				if !ok {
					return fmt.Errorf("unsupported target architecture %q", env.Target.Arch)
				}
				env.SetDefault("build.archs", archs)
				return nil
			},
			Command: func(env *pipeline.Environment) (*pipeline.Command, error) {
				python, err := env.String("tools.python")
				if err != nil {
					return nil, err
				}
				src, err := env.String("sdk.src")
				if err != nil {
					return nil, err
				}
				mode, err := env.String("build.mode")
				if err != nil {
					return nil, err
				}
				archs, err := env.Strings("build.archs")
				if err != nil {
					return nil, err
				}
				return &pipeline.Command{
					Program: python,
					Args: []string{
						filepath.Join("tools", "build.py"),
						"--mode", mode,
						"--arch", strings.Join(archs, ","),
						"create_sdk",
					},
					Dir: src,
				}, nil
			},
			Spinner: true,
		},
	}
}

// depotScript returns the path of a depot_tools entry point, with the
// platform script suffix applied.
func depotScript(env *pipeline.Environment, name string) (string, error) {
	dir, err := env.String("depot_tools.dir")
	if err != nil {
		return "", err
	}
	policy := platform.NewPolicy(env.Host)
	return filepath.Join(dir, policy.ScriptName(name)), nil
}

func notExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return false, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}
	return false, err
}
