package pipeline

import (
	"errors"
	"fmt"
)

// UserInputError reports invalid caller input (unknown target, malformed
// step selection). It is presented as a plain message, never a crash.
type UserInputError struct {
	Msg string
}

func (e *UserInputError) Error() string { return e.Msg }

// Userf creates a UserInputError with a formatted message.
func Userf(format string, args ...any) error {
	return &UserInputError{Msg: fmt.Sprintf(format, args...)}
}

// IsUserInputError reports whether err is (or wraps) a UserInputError.
func IsUserInputError(err error) bool {
	var u *UserInputError
	return errors.As(err, &u)
}

// TypeError reports a variable read with the wrong expected shape.
type TypeError struct {
	Key  string
	Want string
	Got  any
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("variable %q: want %s, got %T", e.Key, e.Want, e.Got)
}

// ConfigureError reports a failed configure hook. It always aborts the
// run at the failing step.
type ConfigureError struct {
	Step  string
	Index int
	Err   error
}

func (e *ConfigureError) Error() string {
	return fmt.Sprintf("configuring step %d (%s): %v", e.Index, e.Step, e.Err)
}

func (e *ConfigureError) Unwrap() error { return e.Err }

// LaunchError reports that an external program could not be spawned at
// all, as opposed to running and exiting non-zero. It indicates a
// misconfigured environment and is always fatal.
type LaunchError struct {
	Program string
	Err     error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launching %s: %v", e.Program, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// StepFailure reports a step whose command exited non-zero or whose run
// hook returned failure.
type StepFailure struct {
	Step     string
	Index    int
	ExitCode int
	Err      error
}

func (e *StepFailure) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("step %d (%s): %v", e.Index, e.Step, e.Err)
	}
	if e.ExitCode != 0 {
		return fmt.Sprintf("step %d (%s): exit code %d", e.Index, e.Step, e.ExitCode)
	}
	return fmt.Sprintf("step %d (%s) failed", e.Index, e.Step)
}

func (e *StepFailure) Unwrap() error { return e.Err }
