package task

import (
	"fmt"
)

// Task is a named, parameterized unit of project automation. Body composes
// the commands from the option values; it must be deterministic so that a
// dry run prints exactly what a real run executes.
type Task struct {
	// Name is the unique task name.
	Name string

	// Short is a one-line description.
	Short string

	// Options are the declared parameters, in declaration order.
	Options []Option

	// Requires lists tasks that must run first, given this task's values.
	Requires func(Values) []Invocation

	// Prepare performs non-destructive filesystem setup. It runs in dry-run
	// mode too.
	Prepare func(Env, Values) error

	// Body composes the commands to execute, in order.
	Body func(Env, Values) ([]Command, error)

	// Cleanup removes transient build artifacts after the commands
	// succeed. It never runs in dry-run mode; failures are only logged.
	Cleanup func(Env, Values) error

	// Serve marks a long-running task. Its last command runs in the
	// background until the ready marker appears in its output.
	Serve *Serve
}

// Serve describes readiness detection for a long-running task.
type Serve struct {
	// Marker returns the output substring announcing readiness.
	Marker func(Values) string

	// Address returns the address to report once ready.
	Address func(Values) string
}

// Invocation names a task and its raw option arguments.
type Invocation struct {
	Task string
	Args []string
}

func (i Invocation) String() string {
	if len(i.Args) == 0 {
		return i.Task
	}
	return fmt.Sprintf("%s %v", i.Task, i.Args)
}

// Option returns the declared option with the given name.
func (t *Task) Option(name string) (Option, bool) {
	for _, o := range t.Options {
		if o.Name == name {
			return o, true
		}
	}
	return Option{}, false
}

// Compose runs Body, returning no commands for a task without one.
func (t *Task) Compose(env Env, values Values) ([]Command, error) {
	if t.Body == nil {
		return nil, nil
	}
	cmds, err := t.Body(env, values)
	if err != nil {
		return nil, fmt.Errorf("composing %s: %w", t.Name, err)
	}
	return cmds, nil
}

// Defaults returns the values the task sees when no options are given.
func (t *Task) Defaults() Values {
	v, err := ParseArgs(t, nil)
	if err != nil {
		// Defaults are validated at registration.
		panic(err)
	}
	return v
}

// validate checks option names are unique across long names, aliases and
// shorthands.
func (t *Task) validate() error {
	if t.Name == "" {
		return fmt.Errorf("task has no name")
	}
	if t.Body == nil {
		return fmt.Errorf("task %s: no body", t.Name)
	}
	long := map[string]string{"dry-run": "", "help": ""}
	short := map[string]string{"h": ""}
	for _, o := range t.Options {
		if err := o.validate(); err != nil {
			return fmt.Errorf("task %s: %w", t.Name, err)
		}
		for _, n := range o.FlagNames() {
			if owner, dup := long[n]; dup {
				return fmt.Errorf("task %s: flag --%s of option %s clashes with %q", t.Name, n, o.Name, owner)
			}
			long[n] = o.Name
		}
		if o.Short != "" {
			if owner, dup := short[o.Short]; dup {
				return fmt.Errorf("task %s: shorthand -%s of option %s clashes with %q", t.Name, o.Short, o.Name, owner)
			}
			short[o.Short] = o.Name
		}
	}
	return nil
}
