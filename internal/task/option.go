package task

import (
	"fmt"
	"sort"
)

// Kind is the value type of an Option.
type Kind int

const (
	// Bool is an on/off flag.
	Bool Kind = iota

	// String is a free-form string.
	String

	// Int is an integer.
	Int

	// Enum is a string restricted to Choices.
	Enum

	// List is a comma-separated list whose elements are restricted to Choices.
	List
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Bool:
		return "bool"
	case String:
		return "string"
	case Int:
		return "int"
	case Enum:
		return "enum"
	case List:
		return "list"
	default:
		return "unknown"
	}
}

// Option is a named parameter of a Task.
type Option struct {
	// Name is the long flag name, unique within the task.
	Name string `json:"name"`

	// Short is an optional single-letter shorthand.
	Short string `json:"short,omitempty"`

	// Aliases are additional long flag names bound to the same value.
	Aliases []string `json:"aliases,omitempty"`

	// Kind is the value type.
	Kind Kind `json:"-"`

	// Default is used when the option is absent. Its Go type must match Kind:
	// bool, string, int, string, and string (comma-separated) respectively.
	Default any `json:"default,omitempty"`

	// Usage is the help text.
	Usage string `json:"usage"`

	// Choices restricts Enum and List values.
	Choices []string `json:"choices,omitempty"`

	// Negatable exposes a true-by-default Bool option as --no-<name>.
	Negatable bool `json:"negatable,omitempty"`
}

// FlagNames returns every long flag name the option registers.
func (o Option) FlagNames() []string {
	if o.Negatable {
		return []string{"no-" + o.Name}
	}
	return append([]string{o.Name}, o.Aliases...)
}

// validate checks that the declaration is internally consistent.
func (o Option) validate() error {
	if o.Name == "" {
		return fmt.Errorf("option has no name")
	}
	if len(o.Short) > 1 {
		return fmt.Errorf("option %s: shorthand %q must be a single letter", o.Name, o.Short)
	}

	var ok bool
	switch o.Kind {
	case Bool:
		_, ok = o.Default.(bool)
	case String, Enum, List:
		_, ok = o.Default.(string)
	case Int:
		_, ok = o.Default.(int)
	}
	if !ok && o.Default != nil {
		return fmt.Errorf("option %s: default %v does not match kind %s", o.Name, o.Default, o.Kind)
	}

	if o.Negatable {
		if o.Kind != Bool || o.Default != true {
			return fmt.Errorf("option %s: only bool options defaulting to true can be negatable", o.Name)
		}
		if len(o.Aliases) > 0 {
			return fmt.Errorf("option %s: negatable options cannot have aliases", o.Name)
		}
	}
	if (o.Kind == Enum || o.Kind == List) && len(o.Choices) == 0 {
		return fmt.Errorf("option %s: %s options need choices", o.Name, o.Kind)
	}
	return nil
}

// Values is the resolved option name to value mapping handed to a task body.
type Values struct {
	m map[string]any
}

// NewValues creates Values from a plain map. Intended for callers that build
// values programmatically; the map is copied.
func NewValues(m map[string]any) Values {
	c := make(map[string]any, len(m))
	for k, v := range m {
		c[k] = v
	}
	return Values{m: c}
}

// With returns a copy of v with name set to value.
func (v Values) With(name string, value any) Values {
	c := NewValues(v.m)
	c.m[name] = value
	return c
}

// Bool returns a bool option value, false when unset.
func (v Values) Bool(name string) bool {
	b, _ := v.m[name].(bool)
	return b
}

// String returns a string option value, empty when unset.
func (v Values) String(name string) string {
	s, _ := v.m[name].(string)
	return s
}

// Int returns an int option value, zero when unset.
func (v Values) Int(name string) int {
	i, _ := v.m[name].(int)
	return i
}

// List returns a list option value, nil when unset.
func (v Values) List(name string) []string {
	l, _ := v.m[name].([]string)
	return l
}

// Names returns the set option names in sorted order.
func (v Values) Names() []string {
	names := make([]string, 0, len(v.m))
	for k := range v.m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
