package task

import (
	"strings"
)

// Command is an ordered list of shell tokens. String joins them with single
// spaces; tokens are expected to be quoted already where quoting is needed.
type Command struct {
	tokens []string
}

// Tokens returns a copy of the command tokens.
func (c Command) Tokens() []string {
	return append([]string(nil), c.tokens...)
}

// String renders the command as a single shell line.
func (c Command) String() string {
	return strings.Join(c.tokens, " ")
}

// Empty reports whether the command has no tokens.
func (c Command) Empty() bool {
	return len(c.tokens) == 0
}

// Builder assembles a Command token by token. Conditional helpers skip
// their tokens when the condition is false or the value is empty, so a task
// body reads as a straight list of everything the command may contain.
type Builder struct {
	tokens []string
}

// NewCommand starts a builder with the given leading tokens.
func NewCommand(base ...string) *Builder {
	return &Builder{tokens: append([]string(nil), base...)}
}

// Arg appends tokens unconditionally.
func (b *Builder) Arg(tokens ...string) *Builder {
	b.tokens = append(b.tokens, tokens...)
	return b
}

// Flag appends tokens when on is true.
func (b *Builder) Flag(on bool, tokens ...string) *Builder {
	if on {
		b.tokens = append(b.tokens, tokens...)
	}
	return b
}

// Value appends "flag value" as two tokens when value is non-empty.
func (b *Builder) Value(flag, value string) *Builder {
	if value != "" {
		b.tokens = append(b.tokens, flag, value)
	}
	return b
}

// Assign appends "flag=value" as one token when value is non-empty.
func (b *Builder) Assign(flag, value string) *Builder {
	if value != "" {
		b.tokens = append(b.tokens, flag+"="+value)
	}
	return b
}

// BuildArgs appends one "--build-arg KEY=VALUE" pair per entry, in the
// order the entries were set.
func (b *Builder) BuildArgs(args *BuildArgs) *Builder {
	if args == nil {
		return b
	}
	for _, key := range args.keys {
		b.tokens = append(b.tokens, "--build-arg", key+"="+args.values[key])
	}
	return b
}

// Build returns the assembled command.
func (b *Builder) Build() Command {
	return Command{tokens: append([]string(nil), b.tokens...)}
}

// BuildArgs is an insertion-ordered set of container build arguments.
type BuildArgs struct {
	keys   []string
	values map[string]string
}

// NewBuildArgs creates an empty set.
func NewBuildArgs() *BuildArgs {
	return &BuildArgs{values: make(map[string]string)}
}

// Set records key=value. Empty values are skipped; setting an existing key
// replaces its value and keeps its position.
func (a *BuildArgs) Set(key, value string) *BuildArgs {
	if value == "" {
		return a
	}
	if _, ok := a.values[key]; !ok {
		a.keys = append(a.keys, key)
	}
	a.values[key] = value
	return a
}

// Len returns the number of entries.
func (a *BuildArgs) Len() int {
	return len(a.keys)
}

// Destination selects the image output flag. Push wins over load, which wins
// over a local output directory; with none set it returns "".
func Destination(push, load bool, output string) string {
	switch {
	case push:
		return "--push"
	case load:
		return "--load"
	case output != "":
		return "--output=type=local,dest=" + output
	default:
		return ""
	}
}

// ImageRef composes "[registry/]name:tag". Trailing slashes on the registry
// are dropped.
func ImageRef(registry, name, tag string) string {
	ref := name + ":" + tag
	if r := strings.TrimRight(registry, "/"); r != "" {
		ref = r + "/" + ref
	}
	return ref
}

// Quote returns s quoted for a POSIX shell when it contains characters the
// shell would interpret. Plain words are returned unchanged.
func Quote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsFunc(s, needsQuote) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func needsQuote(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	}
	return !strings.ContainsRune("-_./:=,+@%", r)
}
