package task

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"

	oerrors "github.com/pyskel/cli/internal/errors"
	"github.com/pyskel/cli/internal/executor"
	"github.com/pyskel/cli/internal/output"
)

// State is the lifecycle position of one task invocation.
type State int

const (
	Pending State = iota
	Composed
	DryPrinted
	Running
	Succeeded
	Failed
	Done
)

var stateNames = map[State]string{
	Pending:    "PENDING",
	Composed:   "COMPOSED",
	DryPrinted: "DRY_PRINTED",
	Running:    "RUNNING",
	Succeeded:  "SUCCEEDED",
	Failed:     "FAILED",
	Done:       "DONE",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Executor runs composed command lines.
type Executor interface {
	Run(ctx context.Context, command string, mode executor.Mode) (*executor.Result, error)
	Start(ctx context.Context, command string) (*executor.Process, error)
}

// ExitStatusError reports a command that exited nonzero. Code is the tool's
// own exit status.
type ExitStatusError struct {
	Task    string
	Command string
	Code    int
}

func (e *ExitStatusError) Error() string {
	return fmt.Sprintf("task %s: %q exited with status %d", e.Task, e.Command, e.Code)
}

// Unwrap lets errors.Is match ErrToolFailed.
func (e *ExitStatusError) Unwrap() error {
	return oerrors.ErrToolFailed
}

// Runner executes tasks from a registry against one project.
type Runner struct {
	// Registry resolves task names.
	Registry *Registry

	// Executor runs commands. It is never called in dry-run mode.
	Executor Executor

	// Env is the project the tasks run against.
	Env Env

	// Out receives dry-run output. Defaults to os.Stdout.
	Out io.Writer

	// DryRun prints commands instead of executing them.
	DryRun bool

	// OnTransition, when set, observes every state change.
	OnTransition func(task string, from, to State)

	active []string
}

// Run resolves and executes a task by name with raw option arguments.
func (r *Runner) Run(ctx context.Context, inv Invocation) error {
	t, err := r.Registry.Lookup(inv.Task)
	if err != nil {
		return err
	}
	values, err := ParseArgs(t, inv.Args)
	if err != nil {
		return err
	}
	return r.Execute(ctx, t, values)
}

// Execute runs t with already resolved values: required tasks first, then
// Prepare, then the composed commands, then Cleanup.
func (r *Runner) Execute(ctx context.Context, t *Task, values Values) error {
	if slices.Contains(r.active, t.Name) {
		return fmt.Errorf("task %s requires itself via %v", t.Name, r.active)
	}
	r.active = append(r.active, t.Name)
	defer func() { r.active = r.active[:len(r.active)-1] }()

	log := output.TaskLogger(t.Name)
	state := Pending
	move := func(to State) {
		log.Debug("state", "from", state, "to", to)
		if r.OnTransition != nil {
			r.OnTransition(t.Name, state, to)
		}
		state = to
	}

	if t.Requires != nil {
		for _, inv := range t.Requires(values) {
			log.Debug("running required task", "task", inv.String())
			if err := r.Run(ctx, inv); err != nil {
				return fmt.Errorf("task %s: required task %s: %w", t.Name, inv.Task, err)
			}
		}
	}

	if t.Prepare != nil {
		if err := t.Prepare(r.Env, values); err != nil {
			return fmt.Errorf("task %s: %w", t.Name, err)
		}
	}

	cmds, err := t.Compose(r.Env, values)
	if err != nil {
		return err
	}
	move(Composed)

	if r.DryRun {
		out := r.Out
		if out == nil {
			out = os.Stdout
		}
		for _, c := range cmds {
			fmt.Fprintln(out, c.String())
		}
		move(DryPrinted)
		move(Done)
		return nil
	}

	move(Running)
	if t.Serve != nil && len(cmds) > 0 {
		err = r.serve(ctx, t, values, cmds)
	} else {
		err = r.runAll(ctx, t, cmds)
	}
	if err != nil {
		move(Failed)
		move(Done)
		return err
	}
	if t.Cleanup != nil {
		if err := t.Cleanup(r.Env, values); err != nil {
			log.Warn("cleanup failed", "err", err)
		}
	}
	move(Succeeded)
	move(Done)
	return nil
}

// runAll executes commands in order and stops at the first failure.
func (r *Runner) runAll(ctx context.Context, t *Task, cmds []Command) error {
	log := output.TaskLogger(t.Name)
	for _, c := range cmds {
		line := c.String()
		log.Info(line)
		res, err := r.Executor.Run(ctx, line, executor.Stream)
		if err != nil {
			return fmt.Errorf("task %s: %w", t.Name, err)
		}
		if res.ExitCode != 0 {
			return &ExitStatusError{Task: t.Name, Command: line, Code: res.ExitCode}
		}
	}
	return nil
}

// serve runs every command but the last normally, then keeps the last one
// in the background until it exits or ctx is cancelled.
func (r *Runner) serve(ctx context.Context, t *Task, values Values, cmds []Command) error {
	if err := r.runAll(ctx, t, cmds[:len(cmds)-1]); err != nil {
		return err
	}

	log := output.TaskLogger(t.Name)
	line := cmds[len(cmds)-1].String()
	log.Info(line)

	proc, err := r.Executor.Start(ctx, line)
	if err != nil {
		return fmt.Errorf("task %s: %w", t.Name, err)
	}

	marker := t.Serve.Marker(values)
	if err := proc.WaitReady(marker); err != nil {
		return fmt.Errorf("task %s: %w", t.Name, err)
	}

	address := ""
	if t.Serve.Address != nil {
		address = t.Serve.Address(values)
	}
	log.Info("ready", "address", address)

	type exit struct {
		res *executor.Result
		err error
	}
	exited := make(chan exit, 1)
	go func() {
		res, err := proc.Wait()
		exited <- exit{res, err}
	}()

	select {
	case <-ctx.Done():
		log.Info("stopping")
		if _, err := proc.Terminate(); err != nil {
			return fmt.Errorf("task %s: %w", t.Name, err)
		}
		return nil
	case e := <-exited:
		if e.err != nil {
			return fmt.Errorf("task %s: %w", t.Name, e.err)
		}
		// Cancellation may reap the process before ctx.Done is selected.
		if ctx.Err() != nil {
			log.Info("stopped")
			return nil
		}
		if e.res.ExitCode != 0 {
			return &ExitStatusError{Task: t.Name, Command: line, Code: e.res.ExitCode}
		}
		return nil
	}
}
