package task

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/pflag"

	oerrors "github.com/pyskel/cli/internal/errors"
)

// BindFlags registers the task's options on fs and returns a function that
// reads the resolved Values after fs has been parsed.
func BindFlags(t *Task, fs *pflag.FlagSet) func() (Values, error) {
	readers := make([]func(map[string]any) error, 0, len(t.Options))

	for _, opt := range t.Options {
		switch opt.Kind {
		case Bool:
			def, _ := opt.Default.(bool)
			p := new(bool)
			if opt.Negatable {
				fs.BoolVar(p, "no-"+opt.Name, false, opt.Usage)
				readers = append(readers, func(m map[string]any) error {
					m[opt.Name] = !*p
					return nil
				})
				continue
			}
			fs.BoolVarP(p, opt.Name, opt.Short, def, opt.Usage)
			for _, alias := range opt.Aliases {
				fs.BoolVar(p, alias, def, "alias for --"+opt.Name)
			}
			readers = append(readers, func(m map[string]any) error {
				m[opt.Name] = *p
				return nil
			})

		case Int:
			def, _ := opt.Default.(int)
			p := new(int)
			fs.IntVarP(p, opt.Name, opt.Short, def, opt.Usage)
			for _, alias := range opt.Aliases {
				fs.IntVar(p, alias, def, "alias for --"+opt.Name)
			}
			readers = append(readers, func(m map[string]any) error {
				m[opt.Name] = *p
				return nil
			})

		default:
			def, _ := opt.Default.(string)
			p := new(string)
			usage := opt.Usage
			if len(opt.Choices) > 0 {
				usage = fmt.Sprintf("%s (one of: %s)", usage, strings.Join(opt.Choices, ", "))
			}
			fs.StringVarP(p, opt.Name, opt.Short, def, usage)
			for _, alias := range opt.Aliases {
				fs.StringVar(p, alias, def, "alias for --"+opt.Name)
			}
			readers = append(readers, func(m map[string]any) error {
				v, err := resolveString(opt, *p)
				if err != nil {
					return err
				}
				m[opt.Name] = v
				return nil
			})
		}
	}

	return func() (Values, error) {
		m := make(map[string]any, len(readers))
		for _, read := range readers {
			if err := read(m); err != nil {
				return Values{}, err
			}
		}
		return Values{m: m}, nil
	}
}

// resolveString validates enum and list values against their choices.
func resolveString(opt Option, raw string) (any, error) {
	switch opt.Kind {
	case Enum:
		if !slices.Contains(opt.Choices, raw) {
			return nil, choiceError(opt, raw)
		}
		return raw, nil
	case List:
		var items []string
		for _, item := range strings.Split(raw, ",") {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}
			if !slices.Contains(opt.Choices, item) {
				return nil, choiceError(opt, item)
			}
			items = append(items, item)
		}
		if len(items) == 0 {
			return nil, oerrors.NewUsageError(fmt.Sprintf("--%s needs at least one value", opt.Name), "")
		}
		return items, nil
	default:
		return raw, nil
	}
}

func choiceError(opt Option, value string) error {
	return oerrors.NewUsageError(
		fmt.Sprintf("invalid value %q for --%s", value, opt.Name),
		"Valid values: "+strings.Join(opt.Choices, ", "),
	)
}

// ParseArgs resolves raw option arguments for t. Unknown options, malformed
// values and positional arguments are usage errors.
func ParseArgs(t *Task, args []string) (Values, error) {
	fs := pflag.NewFlagSet(t.Name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	read := BindFlags(t, fs)

	if err := fs.Parse(args); err != nil {
		return Values{}, oerrors.NewUsageError(fmt.Sprintf("%s: %v", t.Name, err), Usage(t))
	}
	if fs.NArg() > 0 {
		return Values{}, oerrors.NewUsageError(
			fmt.Sprintf("%s: unexpected arguments: %s", t.Name, strings.Join(fs.Args(), " ")),
			Usage(t),
		)
	}
	return read()
}

// Usage renders the option help for t.
func Usage(t *Task) string {
	fs := pflag.NewFlagSet(t.Name, pflag.ContinueOnError)
	BindFlags(t, fs)
	var b strings.Builder
	fmt.Fprintf(&b, "Usage: %s [options]\n", t.Name)
	if fs.HasFlags() {
		b.WriteString("\nOptions:\n")
		b.WriteString(fs.FlagUsages())
	}
	return b.String()
}
