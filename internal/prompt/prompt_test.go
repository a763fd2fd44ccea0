package prompt

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func send(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	var model tea.Model = m
	for _, msg := range msgs {
		model, _ = model.Update(msg)
	}
	out, ok := model.(Model)
	require.True(t, ok)
	return out
}

func typed(s string) tea.Msg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var enter = tea.KeyMsg{Type: tea.KeyEnter}

func TestModel_DefaultsAndTypedAnswers(t *testing.T) {
	m := New([]Field{
		{Key: "author", Label: "Author", Default: "Jane"},
		{Key: "org", Label: "Organization", Default: "my-org"},
	})

	m = send(t, m, enter, typed("acme"), enter)

	assert.True(t, m.Done())
	assert.False(t, m.Cancelled())
	assert.Equal(t, map[string]string{"author": "Jane", "org": "acme"}, m.Answers())
	assert.Contains(t, m.View(), "Organization: acme")
}

func TestModel_Choices(t *testing.T) {
	m := New([]Field{
		{Key: "cli", Label: "CLI", Default: "click", Choices: []string{"none", "argparse", "click", "typer"}},
	})
	assert.Contains(t, m.View(), "> ")

	m = send(t, m, tea.KeyMsg{Type: tea.KeyDown}, typed("x"), enter)
	assert.Equal(t, "typer", m.Answers()["cli"])

	m = New([]Field{
		{Key: "cli", Label: "CLI", Default: "none", Choices: []string{"none", "argparse"}},
	})
	m = send(t, m, tea.KeyMsg{Type: tea.KeyUp}, enter)
	assert.Equal(t, "argparse", m.Answers()["cli"])
}

func TestModel_Validation(t *testing.T) {
	m := New([]Field{{
		Key:   "version",
		Label: "Version",
		Validate: func(s string) error {
			if s != "1.0.0" {
				return errors.New("bad version")
			}
			return nil
		},
	}})

	m = send(t, m, typed("x"), enter)
	assert.False(t, m.Done())
	assert.Contains(t, m.View(), "bad version")

	m = send(t, m, tea.KeyMsg{Type: tea.KeyBackspace}, typed("1.0.0"), enter)
	assert.True(t, m.Done())
	assert.Equal(t, "1.0.0", m.Answers()["version"])
}

func TestModel_Cancel(t *testing.T) {
	m := New([]Field{{Key: "a", Label: "A"}})
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, m.Cancelled())
	assert.False(t, m.Done())
}
