// Package executor runs composed commands against the operating environment.
//
// Commands are handed to the platform shell exactly as composed, so globbing
// and quoting behave the same as the text printed by a dry run.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"sort"
	"time"

	"github.com/joho/godotenv"

	"github.com/pyskel/cli/internal/output"
)

// Mode selects how the output of a command is handled.
type Mode int

const (
	// Stream relays stdout and stderr live to the executor's writers.
	Stream Mode = iota

	// Capture buffers stdout and stderr and returns them in the Result.
	Capture
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Stream:
		return "stream"
	case Capture:
		return "capture"
	default:
		return "unknown"
	}
}

// Result is the outcome of one completed command.
type Result struct {
	// ExitCode is the exit status of the process, unmodified.
	ExitCode int

	// Stdout is the captured standard output (Capture mode only).
	Stdout string

	// Stderr is the captured standard error (Capture mode only).
	Stderr string
}

// Success reports whether the command exited with status zero.
func (r *Result) Success() bool {
	return r.ExitCode == 0
}

// waitDelay bounds how long Wait blocks on output pipes after the process
// has been signalled.
const waitDelay = 5 * time.Second

// Executor runs commands with a fixed working directory.
type Executor struct {
	dir    string
	env    []string
	stdout io.Writer
	stderr io.Writer
}

// Option configures an Executor.
type Option func(*Executor) error

// WithOutput sets the writers used in Stream mode and for relaying the output
// of background processes.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(e *Executor) error {
		e.stdout = stdout
		e.stderr = stderr
		return nil
	}
}

// WithEnv appends KEY=VALUE entries to the inherited environment.
func WithEnv(env ...string) Option {
	return func(e *Executor) error {
		e.env = append(e.env, env...)
		return nil
	}
}

// WithDotEnv loads variables from a dotenv file. A missing file is ignored.
// Variables already present in the process environment win.
func WithDotEnv(path string) Option {
	return func(e *Executor) error {
		values, err := godotenv.Read(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return fmt.Errorf("reading %s: %w", path, err)
		}

		keys := make([]string, 0, len(values))
		for k := range values {
			if _, set := os.LookupEnv(k); !set {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			e.env = append(e.env, k+"="+values[k])
		}
		output.Debug("loaded dotenv", "path", path, "variables", len(keys))
		return nil
	}
}

// New creates an Executor rooted at dir.
func New(dir string, opts ...Option) (*Executor, error) {
	e := &Executor{
		dir:    dir,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Dir returns the working directory commands run in.
func (e *Executor) Dir() string {
	return e.dir
}

// Run executes command and waits for it to finish. A nonzero exit status is
// not an error: it is reported in Result.ExitCode. The returned error is
// non-nil only when the process could not be run at all.
func (e *Executor) Run(ctx context.Context, command string, mode Mode) (*Result, error) {
	cmd := e.command(ctx, command)

	var stdout, stderr bytes.Buffer
	switch mode {
	case Capture:
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	default:
		cmd.Stdin = os.Stdin
		cmd.Stdout = e.stdout
		cmd.Stderr = e.stderr
	}

	output.Debug("running command", "command", command, "dir", e.dir, "mode", mode)

	err := cmd.Run()
	result := &Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("running %q: %w", command, err)
		}
		result.ExitCode = exitErr.ExitCode()
	}

	output.Debug("command finished", "command", command, "exit_code", result.ExitCode)
	return result, nil
}

// command builds the shell invocation for command.
func (e *Executor) command(ctx context.Context, command string) *exec.Cmd {
	name, args := shell(command)
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = e.dir
	cmd.Env = append(os.Environ(), e.env...)
	setProcessGroup(cmd)
	cmd.Cancel = func() error {
		return terminate(cmd)
	}
	cmd.WaitDelay = waitDelay
	return cmd
}

// shell returns the platform shell invocation for a command line.
func shell(command string) (string, []string) {
	if runtime.GOOS == "windows" {
		return "cmd", []string{"/C", command}
	}
	return "sh", []string{"-c", command}
}
