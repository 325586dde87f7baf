package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// fakeRunner records launches and returns scripted exit codes or launch
// errors per program name.
type fakeRunner struct {
	launches  []Command
	exits     map[string]int
	launchErr map[string]error
}

func (r *fakeRunner) Launch(ctx context.Context, cmd Command, progress bool) (int, error) {
	if err, ok := r.launchErr[cmd.Program]; ok {
		return 0, &LaunchError{Program: cmd.Program, Err: err}
	}
	r.launches = append(r.launches, cmd)
	return r.exits[cmd.Program], nil
}

func newTestEnv(t *testing.T) *Environment {
	t.Helper()
	return NewEnvironment("test", Options{WorkRoot: t.TempDir()})
}

func TestRunAll_ExecutesInOrder(t *testing.T) {
	var trace []string
	mk := func(i int) Step {
		return Step{
			Name: fmt.Sprintf("step-%d", i),
			Configure: func(env *Environment) error {
				trace = append(trace, fmt.Sprintf("configure-%d", i))
				return nil
			},
			Condition: func(env *Environment) (bool, error) {
				trace = append(trace, fmt.Sprintf("condition-%d", i))
				return true, nil
			},
			Run: func(env *Environment) (bool, error) {
				trace = append(trace, fmt.Sprintf("run-%d", i))
				return true, nil
			},
		}
	}

	exec := New(&fakeRunner{})
	res := exec.RunAll(context.Background(), newTestEnv(t), []Step{mk(1), mk(2), mk(3)})

	if !res.Succeeded {
		t.Fatalf("RunAll failed: %v", res.Err)
	}
	want := []string{
		"configure-1", "condition-1", "run-1",
		"configure-2", "condition-2", "run-2",
		"configure-3", "condition-3", "run-3",
	}
	if len(trace) != len(want) {
		t.Fatalf("trace = %v, want %v", trace, want)
	}
	for i := range want {
		if trace[i] != want[i] {
			t.Fatalf("trace[%d] = %s, want %s", i, trace[i], want[i])
		}
	}
	if len(res.Executed) != 3 {
		t.Fatalf("Executed = %v, want 3 entries", res.Executed)
	}
}

func TestRunAll_AbortsAtFirstFailure(t *testing.T) {
	laterTouched := false
	steps := []Step{
		{Name: "ok", Run: func(env *Environment) (bool, error) { return true, nil }},
		{Name: "fails", Run: func(env *Environment) (bool, error) { return false, nil }},
		{
			Name:      "never",
			Configure: func(env *Environment) error { laterTouched = true; return nil },
			Run:       func(env *Environment) (bool, error) { laterTouched = true; return true, nil },
		},
	}

	exec := New(&fakeRunner{})
	res := exec.RunAll(context.Background(), newTestEnv(t), steps)

	if res.Succeeded {
		t.Fatal("expected failure")
	}
	if res.FailedStep != 2 {
		t.Fatalf("FailedStep = %d, want 2", res.FailedStep)
	}
	if laterTouched {
		t.Fatal("steps after the failure must not run at all")
	}
	var sf *StepFailure
	if !errors.As(res.Err, &sf) {
		t.Fatalf("Err = %v, want StepFailure", res.Err)
	}
}

func TestRunAll_ToleratedFailureContinues(t *testing.T) {
	ranLast := false
	steps := []Step{
		{
			Name:            "tolerated",
			Run:             func(env *Environment) (bool, error) { return false, nil },
			ContinueOnError: true,
		},
		{Name: "last", Run: func(env *Environment) (bool, error) { ranLast = true; return true, nil }},
	}

	exec := New(&fakeRunner{})
	res := exec.RunAll(context.Background(), newTestEnv(t), steps)

	if !res.Succeeded {
		t.Fatalf("tolerated failure must not fail the run: %v", res.Err)
	}
	if !ranLast {
		t.Fatal("step after a tolerated failure must run")
	}
	if len(res.Tolerated) != 1 || res.Tolerated[0] != 1 {
		t.Fatalf("Tolerated = %v, want [1]", res.Tolerated)
	}
}

func TestRunSelected_HooksRunForUnselectedSteps(t *testing.T) {
	var configured, conditioned, executed []int
	mk := func(i int) Step {
		return Step{
			Name: fmt.Sprintf("step-%d", i),
			Configure: func(env *Environment) error {
				configured = append(configured, i)
				return nil
			},
			Condition: func(env *Environment) (bool, error) {
				conditioned = append(conditioned, i)
				return true, nil
			},
			Run: func(env *Environment) (bool, error) {
				executed = append(executed, i)
				return true, nil
			},
		}
	}

	exec := New(&fakeRunner{})
	res := exec.RunSelected(context.Background(), newTestEnv(t), []Step{mk(1), mk(2), mk(3)}, []int{2}, false)

	if !res.Succeeded {
		t.Fatalf("RunSelected failed: %v", res.Err)
	}
	if len(configured) != 3 || len(conditioned) != 3 {
		t.Fatalf("configure/condition must run for every step: configured=%v conditioned=%v",
			configured, conditioned)
	}
	if len(executed) != 1 || executed[0] != 2 {
		t.Fatalf("executed = %v, want [2]", executed)
	}
	if len(res.Executed) != 1 || res.Executed[0] != 2 {
		t.Fatalf("Executed = %v, want [2]", res.Executed)
	}
}

func TestRunSelected_VarsPropagateThroughUnselectedSteps(t *testing.T) {
	steps := []Step{
		{
			Name: "writer",
			Configure: func(env *Environment) error {
				env.Set("path", "from-writer")
				return nil
			},
		},
		{
			Name: "reader",
			Condition: func(env *Environment) (bool, error) {
				v, err := env.String("path")
				return v == "from-writer", err
			},
			Run: func(env *Environment) (bool, error) { return true, nil },
		},
	}

	exec := New(&fakeRunner{})
	res := exec.RunSelected(context.Background(), newTestEnv(t), steps, []int{2}, false)

	if !res.Succeeded {
		t.Fatalf("RunSelected failed: %v", res.Err)
	}
	if len(res.Executed) != 1 || res.Executed[0] != 2 {
		t.Fatalf("Executed = %v, want [2]: unselected configure must still feed later conditions", res.Executed)
	}
}

func TestForce_BypassesConditionButNotConfigure(t *testing.T) {
	configured := 0
	conditioned := 0
	executed := 0
	steps := []Step{{
		Name:      "guarded",
		Configure: func(env *Environment) error { configured++; return nil },
		Condition: func(env *Environment) (bool, error) { conditioned++; return false, nil },
		Run:       func(env *Environment) (bool, error) { executed++; return true, nil },
	}}

	exec := New(&fakeRunner{})
	res := exec.RunSelected(context.Background(), newTestEnv(t), steps, nil, true)

	if !res.Succeeded {
		t.Fatalf("forced run failed: %v", res.Err)
	}
	if configured != 1 {
		t.Fatalf("configure calls = %d, want 1", configured)
	}
	if conditioned != 0 {
		t.Fatalf("condition calls = %d, want 0 under force", conditioned)
	}
	if executed != 1 {
		t.Fatalf("run calls = %d, want 1 under force", executed)
	}
}

func TestConditionError_SkipsStepFailSafe(t *testing.T) {
	executed := false
	steps := []Step{
		{
			Name:      "broken-condition",
			Condition: func(env *Environment) (bool, error) { return true, errors.New("boom") },
			Run:       func(env *Environment) (bool, error) { executed = true; return true, nil },
		},
		{Name: "after", Run: func(env *Environment) (bool, error) { return true, nil }},
	}

	exec := New(&fakeRunner{})
	res := exec.RunAll(context.Background(), newTestEnv(t), steps)

	if !res.Succeeded {
		t.Fatalf("condition error must not abort the run: %v", res.Err)
	}
	if executed {
		t.Fatal("step with erroring condition must not execute")
	}
	if len(res.Executed) != 1 || res.Executed[0] != 2 {
		t.Fatalf("Executed = %v, want [2]", res.Executed)
	}
}

func TestConfigureError_IsFatal(t *testing.T) {
	steps := []Step{
		{Name: "fine", Run: func(env *Environment) (bool, error) { return true, nil }},
		{Name: "misconfigured", Configure: func(env *Environment) error { return errors.New("bad path") }},
		{Name: "never", Run: func(env *Environment) (bool, error) { return true, nil }},
	}

	exec := New(&fakeRunner{})
	res := exec.RunAll(context.Background(), newTestEnv(t), steps)

	if res.Succeeded {
		t.Fatal("expected failure")
	}
	if res.FailedStep != 2 {
		t.Fatalf("FailedStep = %d, want 2", res.FailedStep)
	}
	var ce *ConfigureError
	if !errors.As(res.Err, &ce) {
		t.Fatalf("Err = %v, want ConfigureError", res.Err)
	}
}

func TestLaunchError_FatalDespiteContinueOnError(t *testing.T) {
	runner := &fakeRunner{launchErr: map[string]error{"missing-tool": errors.New("not found")}}
	steps := []Step{
		{
			Name: "spawn-fails",
			Command: func(env *Environment) (*Command, error) {
				return &Command{Program: "missing-tool"}, nil
			},
			ContinueOnError: true,
		},
		{Name: "never", Run: func(env *Environment) (bool, error) { return true, nil }},
	}

	exec := New(runner)
	res := exec.RunAll(context.Background(), newTestEnv(t), steps)

	if res.Succeeded {
		t.Fatal("a launch error must abort the run even with ContinueOnError")
	}
	if res.FailedStep != 1 {
		t.Fatalf("FailedStep = %d, want 1", res.FailedStep)
	}
	var le *LaunchError
	if !errors.As(res.Err, &le) {
		t.Fatalf("Err = %v, want LaunchError", res.Err)
	}
}

func TestNonZeroExit_IsStepFailureWithCode(t *testing.T) {
	runner := &fakeRunner{exits: map[string]int{"tool": 3}}
	steps := []Step{{
		Name: "runs-tool",
		Command: func(env *Environment) (*Command, error) {
			return &Command{Program: "tool"}, nil
		},
	}}

	exec := New(runner)
	res := exec.RunAll(context.Background(), newTestEnv(t), steps)

	if res.Succeeded {
		t.Fatal("expected failure")
	}
	var sf *StepFailure
	if !errors.As(res.Err, &sf) {
		t.Fatalf("Err = %v, want StepFailure", res.Err)
	}
	if sf.ExitCode != 3 {
		t.Fatalf("ExitCode = %d, want 3", sf.ExitCode)
	}
}

func TestCommandDir_DefaultsToWorkDir(t *testing.T) {
	runner := &fakeRunner{}
	env := newTestEnv(t)
	steps := []Step{{
		Name: "no-dir",
		Command: func(env *Environment) (*Command, error) {
			return &Command{Program: "tool"}, nil
		},
	}}

	exec := New(runner)
	if res := exec.RunAll(context.Background(), env, steps); !res.Succeeded {
		t.Fatalf("RunAll failed: %v", res.Err)
	}
	if len(runner.launches) != 1 {
		t.Fatalf("launches = %d, want 1", len(runner.launches))
	}
	if runner.launches[0].Dir != env.WorkDir {
		t.Fatalf("Dir = %q, want %q", runner.launches[0].Dir, env.WorkDir)
	}
}

func TestStepWithoutCommandOrRun_IsNoopSuccess(t *testing.T) {
	exec := New(&fakeRunner{})
	res := exec.RunAll(context.Background(), newTestEnv(t), []Step{{Name: "noop"}})
	if !res.Succeeded {
		t.Fatalf("noop step must succeed: %v", res.Err)
	}
}

func TestRunSelected_IndexOutOfRange(t *testing.T) {
	exec := New(&fakeRunner{})
	res := exec.RunSelected(context.Background(), newTestEnv(t), []Step{{Name: "only"}}, []int{4}, false)
	if res.Succeeded {
		t.Fatal("expected failure")
	}
	if !IsUserInputError(res.Err) {
		t.Fatalf("Err = %v, want UserInputError", res.Err)
	}
}

func TestRunAll_SecondRunSkipsCompletedSteps(t *testing.T) {
	steps := []Step{{
		Name: "once",
		Condition: func(env *Environment) (bool, error) {
			done, err := env.BoolOr("once.done", false)
			return !done, err
		},
		Run: func(env *Environment) (bool, error) {
			env.Set("once.done", true)
			return true, nil
		},
	}}

	exec := New(&fakeRunner{})
	env := newTestEnv(t)

	first := exec.RunAll(context.Background(), env, steps)
	if !first.Succeeded || len(first.Executed) != 1 {
		t.Fatalf("first run: %+v", first)
	}

	second := exec.RunAll(context.Background(), env, steps)
	if !second.Succeeded {
		t.Fatalf("second run failed: %v", second.Err)
	}
	if len(second.Executed) != 0 {
		t.Fatalf("second run Executed = %v, want none", second.Executed)
	}
}

// The two-step demo pipeline: a condition-false step is skipped while
// the unconditional command step executes.
func TestDemoPipeline(t *testing.T) {
	runner := &fakeRunner{}
	steps := []Step{
		{
			Name:      "A",
			Condition: func(env *Environment) (bool, error) { return false, nil },
			Run: func(env *Environment) (bool, error) {
				t.Fatal("A must never run")
				return false, nil
			},
		},
		{
			Name: "B",
			Command: func(env *Environment) (*Command, error) {
				return &Command{Program: "echo", Args: []string{"ok"}}, nil
			},
		},
	}

	exec := New(runner)
	res := exec.RunAll(context.Background(), newTestEnv(t), steps)

	if !res.Succeeded {
		t.Fatalf("demo pipeline failed: %v", res.Err)
	}
	if len(res.Executed) != 1 || res.Executed[0] != 2 {
		t.Fatalf("Executed = %v, want [2]", res.Executed)
	}
}

func TestRunAll_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := New(&fakeRunner{})
	res := exec.RunAll(ctx, newTestEnv(t), []Step{{Name: "never"}})
	if res.Succeeded {
		t.Fatal("expected cancellation failure")
	}
	if !errors.Is(res.Err, context.Canceled) {
		t.Fatalf("Err = %v, want context.Canceled", res.Err)
	}
}
