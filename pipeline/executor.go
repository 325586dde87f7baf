package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/zopnote/dartcc/logging"
)

// Reporter receives step progress events. Implementations render the
// "(i/N) <name>" lines.
type Reporter interface {
	StepStarted(index, total int, name string)
	StepSkipped(index, total int, name string)
	StepFinished(index, total int, name string, err error)
}

// NopReporter discards all progress events.
type NopReporter struct{}

func (NopReporter) StepStarted(int, int, string)         {}
func (NopReporter) StepSkipped(int, int, string)         {}
func (NopReporter) StepFinished(int, int, string, error) {}

// Result is the outcome of one pipeline run.
type Result struct {
	// Succeeded is true iff every non-tolerated step succeeded.
	Succeeded bool
	// Executed lists the 1-based indices whose command/run was invoked,
	// including tolerated failures.
	Executed []int
	// Tolerated lists the 1-based indices that failed but had
	// ContinueOnError set.
	Tolerated []int
	// FailedStep is the 1-based index of the step that aborted the run,
	// or 0 when none did.
	FailedStep int
	// Err is the failure that aborted the run, nil on success.
	Err error
}

// Executor walks an ordered list of Steps against one Environment.
// Steps execute strictly in list order, never concurrently; a later
// step's configure or condition may read variables written by any
// earlier step's configure, including steps whose execution was
// skipped.
type Executor struct {
	Runner   Runner
	Reporter Reporter
	Logger   logging.Logger
}

// New creates an Executor with the given runner and no-op reporting and
// logging.
func New(runner Runner) *Executor {
	return &Executor{Runner: runner, Reporter: NopReporter{}, Logger: logging.Nop()}
}

// RunAll executes every step in order, aborting at the first
// non-tolerated failure.
func (e *Executor) RunAll(ctx context.Context, env *Environment, steps []Step) Result {
	return e.RunSelected(ctx, env, steps, nil, false)
}

// RunSelected executes the steps whose 1-based index appears in indices
// (nil means all). Configure and condition hooks run for every step
// regardless of selection, so variable propagation stays intact; the
// command/run is only invoked for selected steps whose condition (or
// force) allows it. force bypasses condition evaluation entirely but
// never skips configure.
func (e *Executor) RunSelected(ctx context.Context, env *Environment, steps []Step, indices []int, force bool) Result {
	total := len(steps)

	selected := make(map[int]bool, total)
	if indices == nil {
		for i := 1; i <= total; i++ {
			selected[i] = true
		}
	} else {
		for _, idx := range indices {
			if idx < 1 || idx > total {
				return Result{Err: Userf("step index %d out of range (target has %d steps)", idx, total)}
			}
			selected[idx] = true
		}
	}

	rep := e.Reporter
	if rep == nil {
		rep = NopReporter{}
	}
	log := e.Logger
	if log == nil {
		log = logging.Nop()
	}

	res := Result{Succeeded: true}
	for i, step := range steps {
		idx := i + 1
		if err := ctx.Err(); err != nil {
			res.Succeeded = false
			res.FailedStep = idx
			res.Err = fmt.Errorf("run cancelled before step %d (%s): %w", idx, step.Name, err)
			return res
		}

		if step.Configure != nil {
			log.Log(logging.LevelDebug, "configure", map[string]any{"step": step.Name, "index": idx})
			if err := step.Configure(env); err != nil {
				res.Succeeded = false
				res.FailedStep = idx
				res.Err = &ConfigureError{Step: step.Name, Index: idx, Err: err}
				rep.StepFinished(idx, total, step.Name, res.Err)
				return res
			}
		}

		proceed := true
		if !force && step.Condition != nil {
			ok, err := step.Condition(env)
			if err != nil {
				// Fail-safe: a broken condition skips the step rather
				// than aborting the run.
				log.Log(logging.LevelWarn, "condition error, skipping step", map[string]any{
					"step": step.Name, "index": idx, "error": err.Error(),
				})
				proceed = false
			} else {
				proceed = ok
			}
			log.Log(logging.LevelDebug, "condition", map[string]any{"step": step.Name, "index": idx, "execute": proceed})
		}

		if !selected[idx] {
			continue
		}
		if !proceed {
			rep.StepSkipped(idx, total, step.Name)
			continue
		}

		rep.StepStarted(idx, total, step.Name)
		log.Log(logging.LevelDebug, "execute", map[string]any{"step": step.Name, "index": idx})
		res.Executed = append(res.Executed, idx)

		if err := e.execute(ctx, env, step, idx); err != nil {
			var launch *LaunchError
			if !errors.As(err, &launch) && step.ContinueOnError {
				res.Tolerated = append(res.Tolerated, idx)
				log.Log(logging.LevelWarn, "step failed, continuing", map[string]any{
					"step": step.Name, "index": idx, "error": err.Error(),
				})
				rep.StepFinished(idx, total, step.Name, err)
				continue
			}
			res.Succeeded = false
			res.FailedStep = idx
			res.Err = err
			rep.StepFinished(idx, total, step.Name, err)
			return res
		}
		rep.StepFinished(idx, total, step.Name, nil)
	}
	return res
}

// execute invokes a step's command and run hooks. The command launches
// first; the run hook only executes if the command succeeded.
func (e *Executor) execute(ctx context.Context, env *Environment, step Step, idx int) error {
	if step.Command != nil {
		cmd, err := step.Command(env)
		if err != nil {
			return &StepFailure{Step: step.Name, Index: idx, Err: fmt.Errorf("building command: %w", err)}
		}
		if cmd != nil {
			launch := *cmd
			if launch.Dir == "" {
				launch.Dir = env.WorkDir
			}
			exit, err := e.Runner.Launch(ctx, launch, step.Spinner)
			if err != nil {
				return err
			}
			if exit != 0 {
				return &StepFailure{Step: step.Name, Index: idx, ExitCode: exit}
			}
		}
	}

	if step.Run != nil {
		ok, err := step.Run(env)
		if err != nil {
			return &StepFailure{Step: step.Name, Index: idx, Err: err}
		}
		if !ok {
			return &StepFailure{Step: step.Name, Index: idx}
		}
	}

	return nil
}
