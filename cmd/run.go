package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zopnote/dartcc/internal/ui"
	"github.com/zopnote/dartcc/logging"
	"github.com/zopnote/dartcc/pipeline"
	"github.com/zopnote/dartcc/platform"
	"github.com/zopnote/dartcc/proc"
	"github.com/zopnote/dartcc/targets"
)

var (
	runForce      bool
	runSteps      string
	runSetVars    []string
	runTargetOS   string
	runTargetArch string
	runNoProgress bool
)

var runCmd = &cobra.Command{
	Use:           "run <target>",
	Short:         "Run a target's step pipeline",
	Args:          cobra.ExactArgs(1),
	RunE:          runRun,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	runCmd.Flags().BoolVar(&runForce, "force", false, "execute every selected step regardless of its condition")
	runCmd.Flags().StringVar(&runSteps, "steps", "", "semicolon-separated 1-based step indices to execute (e.g. \"1;3\")")
	runCmd.Flags().StringArrayVar(&runSetVars, "set", nil, "seed an environment variable as key=value (repeatable)")
	runCmd.Flags().StringVar(&runTargetOS, "target-os", "", "operating system to build for (defaults to the host)")
	runCmd.Flags().StringVar(&runTargetArch, "target-arch", "", "architecture to build for (defaults to the host)")
	runCmd.Flags().BoolVar(&runNoProgress, "no-progress", false, "disable spinners")
}

func runRun(cmd *cobra.Command, args []string) error {
	name := args[0]
	styles := ui.DefaultStyles()

	fail := func(err error) error {
		fmt.Fprintln(os.Stderr, styles.Error.Render(err.Error()))
		return err
	}

	reg := targets.Builtin()
	cfg, err := reg.LoadFile(configPath())
	if err != nil {
		return fail(err)
	}

	steps, err := reg.Resolve(name)
	if err != nil {
		return fail(err)
	}

	indices, err := parseStepIndices(runSteps)
	if err != nil {
		return fail(err)
	}

	vars, err := parseAssignments(runSetVars)
	if err != nil {
		return fail(err)
	}

	root := workRoot
	if cfg.WorkRoot != "" && !cmd.Flags().Changed("work-root") {
		root = cfg.WorkRoot
	}

	target := platform.Current()
	if runTargetOS != "" {
		target.OS = runTargetOS
	}
	if runTargetArch != "" {
		target.Arch = runTargetArch
	}

	env := pipeline.NewEnvironment(name, pipeline.Options{
		WorkRoot: root,
		Target:   target,
		Vars:     vars,
	})
	if err := os.MkdirAll(env.WorkDir, 0755); err != nil {
		return fail(fmt.Errorf("creating working directory: %w", err))
	}

	logger := logging.Nop()
	if verbose {
		logger = logging.NewTraceWriter(os.Stderr, logging.LevelDebug)
	}

	runner := proc.NewRunner(platform.NewPolicy(env.Host), logger)
	if !runNoProgress {
		runner.Spin = ui.Spin
	}

	executor := pipeline.Executor{
		Runner:   runner,
		Reporter: ui.NewStepPrinter(os.Stdout, styles),
		Logger:   logger,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var res pipeline.Result
	if indices == nil && !runForce {
		res = executor.RunAll(ctx, env, steps)
	} else {
		res = executor.RunSelected(ctx, env, steps, indices, runForce)
	}

	if !res.Succeeded {
		if pipeline.IsUserInputError(res.Err) {
			return fail(res.Err)
		}
		if verbose && res.Err != nil {
			fmt.Fprintln(os.Stderr, res.Err)
		}
		fmt.Fprintln(os.Stderr, styles.Error.Render(
			fmt.Sprintf("An error occurred at step %d.", res.FailedStep)))
		return fmt.Errorf("target %s failed at step %d", name, res.FailedStep)
	}

	fmt.Println(styles.Success.Render(fmt.Sprintf(
		"Target %s completed (%d of %d steps executed).", name, len(res.Executed), len(steps))))
	return nil
}

// configPath resolves the --config flag against the working directory.
func configPath() string {
	if filepath.IsAbs(cfgFile) {
		return cfgFile
	}
	wd, err := os.Getwd()
	if err != nil {
		return cfgFile
	}
	return filepath.Join(wd, cfgFile)
}

// parseStepIndices parses the --steps value: semicolon-separated
// 1-based integers. An empty value selects every step (nil). A
// non-integer token is a UserInputError.
func parseStepIndices(value string) ([]int, error) {
	if value == "" {
		return nil, nil
	}
	tokens := strings.Split(value, ";")
	indices := make([]int, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		n, err := strconv.Atoi(tok)
		if err != nil {
			return nil, pipeline.Userf("invalid --steps value %q: %q is not an integer", value, tok)
		}
		if n < 1 {
			return nil, pipeline.Userf("invalid --steps value %q: indices are 1-based", value)
		}
		indices = append(indices, n)
	}
	if len(indices) == 0 {
		return nil, nil
	}
	return indices, nil
}

// parseAssignments parses repeated --set key=value flags. Values that
// read as booleans or integers are stored typed so step conditions can
// use the typed accessors.
func parseAssignments(assignments []string) (map[string]any, error) {
	if len(assignments) == 0 {
		return nil, nil
	}
	vars := make(map[string]any, len(assignments))
	for _, assign := range assignments {
		key, value, ok := strings.Cut(assign, "=")
		if !ok || key == "" {
			return nil, pipeline.Userf("invalid --set value %q: expected key=value", assign)
		}
		switch {
		case value == "true" || value == "false":
			vars[key] = value == "true"
		default:
			if n, err := strconv.Atoi(value); err == nil {
				vars[key] = n
			} else {
				vars[key] = value
			}
		}
	}
	return vars, nil
}
