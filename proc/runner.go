// Package proc launches the external build tools (git, python, fetch,
// gclient) a pipeline step describes.
package proc

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/zopnote/dartcc/logging"
	"github.com/zopnote/dartcc/pipeline"
	"github.com/zopnote/dartcc/platform"
)

// SpinFunc displays indeterminate progress while fn runs and returns
// fn's error.
type SpinFunc func(label string, fn func() error) error

// ExecRunner implements pipeline.Runner on top of os/exec.
type ExecRunner struct {
	Policy platform.Policy
	Logger logging.Logger

	// Spin, when set, wraps the wait on a launched process with a
	// progress display for steps that request one.
	Spin SpinFunc

	// Stdout and Stderr receive the child's output when no spinner is
	// active. Nil means the dartcc process's own streams.
	Stdout io.Writer
	Stderr io.Writer
}

// NewRunner creates an ExecRunner for the given platform policy.
func NewRunner(policy platform.Policy, logger logging.Logger) *ExecRunner {
	if logger == nil {
		logger = logging.Nop()
	}
	return &ExecRunner{Policy: policy, Logger: logger}
}

// Launch resolves and runs the described program, blocking until it
// exits. A program that cannot be found or spawned returns a
// LaunchError; a program that runs and exits non-zero returns its exit
// code with a nil error.
func (r *ExecRunner) Launch(ctx context.Context, cmd pipeline.Command, progress bool) (int, error) {
	resolved, err := exec.LookPath(cmd.Program)
	if err != nil {
		return 0, &pipeline.LaunchError{Program: cmd.Program, Err: err}
	}

	program, args := resolved, cmd.Args
	if cmd.Administrator {
		program, args = r.Policy.Elevate(program, args)
		if program != resolved {
			if program, err = exec.LookPath(program); err != nil {
				return 0, &pipeline.LaunchError{Program: cmd.Program, Err: err}
			}
		}
	}

	r.Logger.Log(logging.LevelDebug, "launch", map[string]any{
		"program": program,
		"args":    args,
		"dir":     cmd.Dir,
		"admin":   cmd.Administrator,
	})

	spinning := progress && r.Spin != nil

	var exit int
	run := func() error {
		c := exec.CommandContext(ctx, program, args...)
		c.Dir = cmd.Dir
		c.Stdin = os.Stdin
		if spinning {
			c.Stdout = io.Discard
			c.Stderr = io.Discard
		} else {
			c.Stdout = r.stdout()
			c.Stderr = r.stderr()
		}

		if err := c.Start(); err != nil {
			return &pipeline.LaunchError{Program: cmd.Program, Err: err}
		}
		if err := c.Wait(); err != nil {
			var ee *exec.ExitError
			if errors.As(err, &ee) {
				exit = ee.ExitCode()
				return nil
			}
			return &pipeline.LaunchError{Program: cmd.Program, Err: err}
		}
		return nil
	}

	if spinning {
		err = r.Spin(filepath.Base(cmd.Program), run)
	} else {
		err = run()
	}
	if err != nil {
		return 0, err
	}
	return exit, nil
}

func (r *ExecRunner) stdout() io.Writer {
	if r.Stdout != nil {
		return r.Stdout
	}
	return os.Stdout
}

func (r *ExecRunner) stderr() io.Writer {
	if r.Stderr != nil {
		return r.Stderr
	}
	return os.Stderr
}
