package task

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/pyskel/cli/internal/errors"
	"github.com/pyskel/cli/internal/executor"
)

// recorder is an Executor that records commands and answers with canned
// exit codes.
type recorder struct {
	commands []string
	codes    map[string]int
}

func (r *recorder) Run(_ context.Context, command string, mode executor.Mode) (*executor.Result, error) {
	if mode != executor.Stream {
		return nil, fmt.Errorf("unexpected mode %s", mode)
	}
	r.commands = append(r.commands, command)
	return &executor.Result{ExitCode: r.codes[command]}, nil
}

func (r *recorder) Start(context.Context, string) (*executor.Process, error) {
	return nil, errors.New("background processes not supported")
}

func newRunner(t *testing.T, rec *recorder) *Runner {
	t.Helper()
	return &Runner{Registry: Builtin(), Executor: rec, Env: testEnv(t)}
}

func TestRunner_ExecutesInOrder(t *testing.T) {
	rec := &recorder{}
	r := newRunner(t, rec)

	require.NoError(t, r.Run(context.Background(), Invocation{Task: "format"}))
	assert.Equal(t, []string{py + " -m isort .", py + " -m black ."}, rec.commands)
}

func TestRunner_StopsAtFirstFailure(t *testing.T) {
	rec := &recorder{codes: map[string]int{py + " -m isort .": 3}}
	r := newRunner(t, rec)

	err := r.Run(context.Background(), Invocation{Task: "format"})
	require.Error(t, err)

	var exitErr *ExitStatusError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.Code)
	assert.Equal(t, "format", exitErr.Task)
	assert.Equal(t, py+" -m isort .", exitErr.Command)
	assert.ErrorIs(t, err, oerrors.ErrToolFailed)
	assert.Equal(t, []string{py + " -m isort ."}, rec.commands)
}

func TestRunner_WheelhouseRemovesBuildDir(t *testing.T) {
	rec := &recorder{}
	r := newRunner(t, rec)
	build := filepath.Join(r.Env.Root, "build", "lib")
	require.NoError(t, os.MkdirAll(build, 0o755))

	require.NoError(t, r.Run(context.Background(), Invocation{Task: "wheelhouse"}))
	assert.NoDirExists(t, filepath.Join(r.Env.Root, "build"))
}

func TestRunner_CleanupSkipped(t *testing.T) {
	t.Run("dry run", func(t *testing.T) {
		r := newRunner(t, &recorder{})
		r.DryRun = true
		r.Out = &bytes.Buffer{}
		require.NoError(t, os.Mkdir(filepath.Join(r.Env.Root, "build"), 0o755))

		require.NoError(t, r.Run(context.Background(), Invocation{Task: "wheelhouse"}))
		assert.DirExists(t, filepath.Join(r.Env.Root, "build"))
	})

	t.Run("failed command", func(t *testing.T) {
		r := newRunner(t, &recorder{codes: map[string]int{py + " -m pip wheel . -w dist/wheelhouse": 1}})
		require.NoError(t, os.Mkdir(filepath.Join(r.Env.Root, "build"), 0o755))

		require.Error(t, r.Run(context.Background(), Invocation{Task: "wheelhouse"}))
		assert.DirExists(t, filepath.Join(r.Env.Root, "build"))
	})
}

func TestRunner_RequiresRunFirst(t *testing.T) {
	rec := &recorder{}
	r := newRunner(t, rec)

	require.NoError(t, r.Run(context.Background(), Invocation{Task: "docker", Args: []string{"--build"}}))
	require.Len(t, rec.commands, 3)
	assert.Equal(t, "rm -rf dist/wheelhouse", rec.commands[0])
	assert.Equal(t, py+" -m pip wheel . -w dist/wheelhouse", rec.commands[1])
	assert.Contains(t, rec.commands[2], "docker buildx build")
}

func TestRunner_RequiredFailureAbortsDependent(t *testing.T) {
	rec := &recorder{codes: map[string]int{py + " -m pip wheel . -w dist/wheelhouse": 1}}
	r := newRunner(t, rec)

	err := r.Run(context.Background(), Invocation{Task: "docker", Args: []string{"--build"}})
	var exitErr *ExitStatusError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, "wheelhouse", exitErr.Task)
	assert.Len(t, rec.commands, 2)

	// Prepare never ran.
	assert.NoFileExists(t, r.Env.PipConfig)
}

func TestRunner_DryRunNeverExecutes(t *testing.T) {
	rec := &recorder{}
	var out bytes.Buffer
	r := newRunner(t, rec)
	r.DryRun = true
	r.Out = &out

	require.NoError(t, r.Run(context.Background(), Invocation{Task: "coverage", Args: []string{"--run"}}))
	assert.Empty(t, rec.commands)
	assert.Equal(t,
		py+" -m pytest --cov src/demo_project tests/unit/\n"+py+" -m http.server 8000 --dir coverage-report\n",
		out.String())
}

func TestRunner_UnknownTask(t *testing.T) {
	r := newRunner(t, &recorder{})
	err := r.Run(context.Background(), Invocation{Task: "deploy"})
	assert.ErrorIs(t, err, oerrors.ErrUnknownTask)
}

func TestRunner_UnknownOption(t *testing.T) {
	rec := &recorder{}
	r := newRunner(t, rec)
	err := r.Run(context.Background(), Invocation{Task: "lint", Args: []string{"--fix"}})
	assert.ErrorIs(t, err, oerrors.ErrUsage)
	assert.Empty(t, rec.commands)
}

type transition struct {
	task     string
	from, to State
}

func TestRunner_StateTransitions(t *testing.T) {
	tests := []struct {
		name   string
		dry    bool
		codes  map[string]int
		states []State
	}{
		{"dry run", true, nil, []State{Composed, DryPrinted, Done}},
		{"success", false, nil, []State{Composed, Running, Succeeded, Done}},
		{"failure", false, map[string]int{py + " -m flake8 .": 1}, []State{Composed, Running, Failed, Done}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen []transition
			r := newRunner(t, &recorder{codes: tt.codes})
			r.DryRun = tt.dry
			r.Out = &bytes.Buffer{}
			r.OnTransition = func(task string, from, to State) {
				seen = append(seen, transition{task, from, to})
			}

			_ = r.Run(context.Background(), Invocation{Task: "lint"})

			require.Len(t, seen, len(tt.states))
			from := Pending
			for i, to := range tt.states {
				assert.Equal(t, transition{"lint", from, to}, seen[i])
				from = to
			}
		})
	}
}

func TestRunner_RejectsRequireCycle(t *testing.T) {
	body := func(Env, Values) ([]Command, error) { return nil, nil }
	reg := MustRegistry(
		&Task{Name: "a", Body: body, Requires: func(Values) []Invocation { return []Invocation{{Task: "b"}} }},
		&Task{Name: "b", Body: body, Requires: func(Values) []Invocation { return []Invocation{{Task: "a"}} }},
	)
	r := &Runner{Registry: reg, Executor: &recorder{}, Env: testEnv(t)}
	err := r.Run(context.Background(), Invocation{Task: "a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires itself")
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "PENDING", Pending.String())
	assert.Equal(t, "DRY_PRINTED", DryPrinted.String())
	assert.Equal(t, "DONE", Done.String())
	assert.Equal(t, "State(42)", State(42).String())
}

func serveRunner(t *testing.T, script string) (*Runner, *Task) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	task := &Task{
		Name: "serve",
		Body: func(Env, Values) ([]Command, error) {
			return []Command{NewCommand(script).Build()}, nil
		},
		Serve: &Serve{
			Marker:  func(Values) string { return "listening" },
			Address: func(Values) string { return "http://localhost:1" },
		},
	}
	env := testEnv(t)
	exec, err := executor.New(env.Root, executor.WithOutput(&bytes.Buffer{}, &bytes.Buffer{}))
	require.NoError(t, err)
	return &Runner{Registry: MustRegistry(task), Executor: exec, Env: env}, task
}

func TestRunner_ServeStopsOnCancel(t *testing.T) {
	r, task := serveRunner(t, "echo listening; sleep 30")

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	start := time.Now()
	require.NoError(t, r.Execute(ctx, task, task.Defaults()))
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestRunner_ServePropagatesExitAfterReady(t *testing.T) {
	r, task := serveRunner(t, "echo listening; exit 3")

	err := r.Execute(context.Background(), task, task.Defaults())
	var exitErr *ExitStatusError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.Code)
}

func TestRunner_ServeStartupFailure(t *testing.T) {
	r, task := serveRunner(t, "echo address in use; exit 4")

	err := r.Execute(context.Background(), task, task.Defaults())
	var startup *executor.StartupError
	require.ErrorAs(t, err, &startup)
	assert.Equal(t, 4, startup.ExitCode)
	assert.Contains(t, startup.Output, "address in use")
}
