// Package prompt asks for template answers interactively, one field at a
// time, with the default shown in brackets.
package prompt

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pyskel/cli/internal/output"
)

// ErrCancelled is returned when the user aborts the prompt.
var ErrCancelled = errors.New("prompt cancelled")

// Field is one question.
type Field struct {
	Key     string
	Label   string
	Default string

	// Choices turns the field into a selection cycled with the arrow keys.
	Choices []string

	// Validate rejects an answer; the error is shown and the field stays open.
	Validate func(string) error
}

// Model is the bubbletea model driving a sequence of fields.
type Model struct {
	fields    []Field
	answers   map[string]string
	current   int
	choice    int
	input     textinput.Model
	err       error
	cancelled bool
}

// New creates a model for fields.
func New(fields []Field) Model {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 60
	ti.Prompt = ""

	m := Model{
		fields:  fields,
		answers: make(map[string]string, len(fields)),
		input:   ti,
	}
	m.focusField()
	return m
}

func (m *Model) focusField() {
	m.input.SetValue("")
	m.err = nil
	if m.current >= len(m.fields) {
		m.input.Blur()
		return
	}
	f := m.fields[m.current]
	m.input.Placeholder = f.Default
	m.choice = 0
	for i, c := range f.Choices {
		if c == f.Default {
			m.choice = i
		}
	}
	m.input.Focus()
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.Done() {
		return m, tea.Quit
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	f := m.fields[m.current]
	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.cancelled = true
		return m, tea.Quit

	case tea.KeyEnter:
		answer := strings.TrimSpace(m.input.Value())
		if len(f.Choices) > 0 {
			answer = f.Choices[m.choice]
		} else if answer == "" {
			answer = f.Default
		}
		if f.Validate != nil {
			if err := f.Validate(answer); err != nil {
				m.err = err
				return m, nil
			}
		}
		m.answers[f.Key] = answer
		m.current++
		m.focusField()
		if m.Done() {
			return m, tea.Quit
		}
		return m, textinput.Blink

	case tea.KeyUp, tea.KeyLeft, tea.KeyShiftTab:
		if len(f.Choices) > 0 {
			m.choice = (m.choice + len(f.Choices) - 1) % len(f.Choices)
			return m, nil
		}

	case tea.KeyDown, tea.KeyRight, tea.KeyTab:
		if len(f.Choices) > 0 {
			m.choice = (m.choice + 1) % len(f.Choices)
			return m, nil
		}
	}

	if len(f.Choices) > 0 {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	for i := 0; i < m.current && i < len(m.fields); i++ {
		f := m.fields[i]
		b.WriteString(output.StyleDim.Render(f.Label+": ") + m.answers[f.Key] + "\n")
	}
	if m.Done() {
		return b.String()
	}

	f := m.fields[m.current]
	if len(f.Choices) > 0 {
		b.WriteString(output.StyleAction.Render(f.Label) + "\n")
		for i, c := range f.Choices {
			if i == m.choice {
				b.WriteString("  > " + output.StyleNoun.Render(c) + "\n")
			} else {
				b.WriteString("    " + c + "\n")
			}
		}
	} else {
		b.WriteString(output.StyleAction.Render(f.Label))
		if f.Default != "" {
			b.WriteString(output.StyleDim.Render(" [" + f.Default + "]"))
		}
		b.WriteString(": " + m.input.View() + "\n")
	}
	if m.err != nil {
		b.WriteString(output.StatusStyle(output.StatusFailed).Render("  "+m.err.Error()) + "\n")
	}
	return b.String()
}

// Done reports whether every field has an answer.
func (m Model) Done() bool {
	return m.current >= len(m.fields)
}

// Cancelled reports whether the user aborted.
func (m Model) Cancelled() bool {
	return m.cancelled
}

// Answers returns the collected answers keyed by Field.Key.
func (m Model) Answers() map[string]string {
	return m.answers
}

// Run asks every field on the terminal and returns the answers.
func Run(ctx context.Context, fields []Field, in io.Reader, out io.Writer) (map[string]string, error) {
	if len(fields) == 0 {
		return map[string]string{}, nil
	}
	p := tea.NewProgram(New(fields),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	m := final.(Model)
	if m.Cancelled() || !m.Done() {
		return nil, ErrCancelled
	}
	return m.Answers(), nil
}
