package task

import (
	"fmt"

	oerrors "github.com/pyskel/cli/internal/errors"
)

// Registry holds tasks by name.
type Registry struct {
	tasks map[string]*Task
	order []string
}

// NewRegistry validates and registers tasks. Duplicate task names, clashing
// option flags and invalid defaults are rejected.
func NewRegistry(tasks ...*Task) (*Registry, error) {
	r := &Registry{tasks: make(map[string]*Task, len(tasks))}
	for _, t := range tasks {
		if err := t.validate(); err != nil {
			return nil, err
		}
		if _, dup := r.tasks[t.Name]; dup {
			return nil, fmt.Errorf("task %s registered twice", t.Name)
		}
		if _, err := ParseArgs(t, nil); err != nil {
			return nil, fmt.Errorf("task %s: invalid defaults: %w", t.Name, err)
		}
		r.tasks[t.Name] = t
		r.order = append(r.order, t.Name)
	}
	return r, nil
}

// MustRegistry is NewRegistry for static task tables.
func MustRegistry(tasks ...*Task) *Registry {
	r, err := NewRegistry(tasks...)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the named task.
func (r *Registry) Lookup(name string) (*Task, error) {
	t, ok := r.tasks[name]
	if !ok {
		return nil, oerrors.NewUnknownTaskError(name, r.Names())
	}
	return t, nil
}

// Names returns task names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// All returns tasks in registration order.
func (r *Registry) All() []*Task {
	all := make([]*Task, 0, len(r.order))
	for _, name := range r.order {
		all = append(all, r.tasks[name])
	}
	return all
}
