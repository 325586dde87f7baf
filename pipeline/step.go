package pipeline

import "context"

// Step is one named stage of a pipeline. All hooks are optional; a step
// defining neither Command nor Run executes as a no-op success. Steps
// are immutable once constructed — only the Environment carries run
// state.
type Step struct {
	// Name labels the step, unique within its target's list.
	Name string

	// Configure mutates Environment variables and derives paths. It runs
	// for every step of a run, even steps that are skipped or not
	// selected, because later conditions may depend on its writes. An
	// error is fatal to the run.
	Configure func(*Environment) error

	// Condition decides whether the step's Command/Run should execute.
	// Absent means true. An error counts as "do not execute".
	Condition func(*Environment) (bool, error)

	// Command describes an external process to launch. A nil *Command
	// with nil error means nothing to launch.
	Command func(*Environment) (*Command, error)

	// Run is an inline action returning success. When both Command and
	// Run are set, Run executes after the command succeeds.
	Run func(*Environment) (bool, error)

	// Spinner shows indeterminate progress while the step executes.
	// Display-only.
	Spinner bool

	// ContinueOnError tolerates a failure of this step instead of
	// aborting the run. The zero value aborts, which is the default for
	// build steps. Launch errors abort regardless.
	ContinueOnError bool
}

// Command describes one external process invocation.
type Command struct {
	Program string
	Args    []string
	// Dir overrides the working directory; empty means the
	// Environment's WorkDir.
	Dir string
	// Administrator requests privilege elevation for the launch.
	Administrator bool
}

// Runner launches external programs on behalf of the executor. Spawn
// failures must surface as LaunchError, distinct from a non-zero exit
// code.
type Runner interface {
	Launch(ctx context.Context, cmd Command, progress bool) (exitCode int, err error)
}
