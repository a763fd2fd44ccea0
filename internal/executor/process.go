package executor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/pyskel/cli/internal/output"
)

// StartupError reports a background process that exited before it printed
// its readiness marker.
type StartupError struct {
	// Command is the command line that was started.
	Command string

	// Marker is the readiness marker that never appeared.
	Marker string

	// ExitCode is the exit status of the process.
	ExitCode int

	// Output is everything the process printed, stdout and stderr interleaved.
	Output string
}

// Error implements the error interface.
func (e *StartupError) Error() string {
	return fmt.Sprintf("%q exited with status %d before printing %q:\n%s",
		e.Command, e.ExitCode, e.Marker, e.Output)
}

// Process is a command running in the background. The owner must call
// Terminate or Wait.
type Process struct {
	command string
	cmd     *exec.Cmd

	mu    sync.Mutex
	cond  *sync.Cond
	lines []string
	ready bool
	// open counts output pumps that have not reached EOF.
	open int

	pumps    sync.WaitGroup
	waitOnce sync.Once
	result   *Result
	waitErr  error
}

// Start launches command without waiting for it to finish. Its output is
// relayed line by line to the executor's writers and retained until
// WaitReady observes the readiness marker.
func (e *Executor) Start(ctx context.Context, command string) (*Process, error) {
	cmd := e.command(ctx, command)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("opening stdout of %q: %w", command, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("opening stderr of %q: %w", command, err)
	}

	p := &Process{command: command, cmd: cmd, open: 2}
	p.cond = sync.NewCond(&p.mu)

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %q: %w", command, err)
	}

	p.pumps.Add(2)
	go p.pump(stdout, e.stdout)
	go p.pump(stderr, e.stderr)

	return p, nil
}

// pump relays one output stream and records its lines.
func (p *Process) pump(r io.Reader, relay io.Writer) {
	defer p.pumps.Done()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if relay != nil {
			fmt.Fprintln(relay, line)
		}

		p.mu.Lock()
		if !p.ready {
			p.lines = append(p.lines, line)
		}
		p.cond.Broadcast()
		p.mu.Unlock()
	}
	if err := scanner.Err(); err != nil {
		// Keep the pipe drained so the child never blocks on a full buffer.
		output.Debug("output no longer scanned for lines", "command", p.command, "err", err)
		if relay == nil {
			relay = io.Discard
		}
		_, _ = io.Copy(relay, r)
	}

	p.mu.Lock()
	p.open--
	p.cond.Broadcast()
	p.mu.Unlock()
}

// Pid returns the process id.
func (p *Process) Pid() int {
	return p.cmd.Process.Pid
}

// WaitReady blocks until a line of output contains marker. If the process
// closes its output first, it is reaped and a *StartupError is returned.
func (p *Process) WaitReady(marker string) error {
	p.mu.Lock()
	seen := 0
	for {
		for ; seen < len(p.lines); seen++ {
			if strings.Contains(p.lines[seen], marker) {
				p.ready = true
				p.lines = nil
				p.mu.Unlock()
				return nil
			}
		}
		if p.open == 0 {
			break
		}
		p.cond.Wait()
	}
	out := strings.Join(p.lines, "\n")
	p.mu.Unlock()

	res, err := p.Wait()
	if err != nil {
		return err
	}
	return &StartupError{
		Command:  p.command,
		Marker:   marker,
		ExitCode: res.ExitCode,
		Output:   out,
	}
}

// Wait blocks until the process exits and returns its exit status.
func (p *Process) Wait() (*Result, error) {
	p.waitOnce.Do(func() {
		p.pumps.Wait()
		err := p.cmd.Wait()
		p.result = &Result{}
		if err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				p.result.ExitCode = exitErr.ExitCode()
				return
			}
			p.waitErr = fmt.Errorf("waiting for %q: %w", p.command, err)
		}
	})
	return p.result, p.waitErr
}

// Terminate signals the process to stop and waits for it to exit.
func (p *Process) Terminate() (*Result, error) {
	// A process that already exited is reported by Wait.
	_ = terminate(p.cmd)
	return p.Wait()
}
