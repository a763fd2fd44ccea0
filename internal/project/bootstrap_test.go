package project

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyskel/cli/internal/executor"
	"github.com/pyskel/cli/internal/task"
	"github.com/pyskel/cli/internal/templates"
)

type fakeShell struct {
	commands []string
	fail     string
}

func (f *fakeShell) Run(_ context.Context, command string, _ executor.Mode) (*executor.Result, error) {
	f.commands = append(f.commands, command)
	if command == f.fail {
		return &executor.Result{ExitCode: 128, Stderr: "fatal: no identity\n"}, nil
	}
	return &executor.Result{}, nil
}

func setup(t *testing.T) (*Bootstrapper, *fakeShell, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var dry, out bytes.Buffer
	env := task.Env{Root: t.TempDir(), Python: "/p/.venv/bin/python", ProjectName: "demo", Slug: "demo"}
	runner := &task.Runner{Registry: task.Builtin(), Env: env, Out: &dry, DryRun: true}
	shell := &fakeShell{}
	return NewBootstrapper(runner, shell, &out), shell, &dry, &out
}

func testData() templates.TemplateData {
	return templates.TemplateData{ProjectName: "demo", Org: "acme"}.WithDefaults()
}

func TestBootstrap_FullSequence(t *testing.T) {
	b, shell, dry, out := setup(t)

	require.NoError(t, b.Bootstrap(context.Background(), testData(), Options{Python: "python3.12"}))

	lines := strings.Split(strings.TrimSpace(dry.String()), "\n")
	assert.Equal(t, "python3.12 -m venv .venv", lines[0])
	assert.Contains(t, lines[len(lines)-1], "-m piptools compile")

	assert.Equal(t, []string{
		"git init",
		"git checkout -b main",
		"git add .",
		"git commit -m 'chore(project): initialize project layout and configured development tools'",
		"git checkout -b next",
		"git --no-pager log --stat",
	}, shell.commands)

	assert.Contains(t, out.String(), "https://github.com/acme/demo")
	assert.Contains(t, out.String(), "git@github.com:acme/demo.git")
}

func TestBootstrap_Skips(t *testing.T) {
	b, shell, dry, out := setup(t)

	require.NoError(t, b.Bootstrap(context.Background(), testData(), Options{SkipInstall: true, NoGit: true}))
	assert.Empty(t, dry.String())
	assert.Empty(t, shell.commands)
	assert.Contains(t, out.String(), "Next steps")
}

func TestBootstrap_GitFailureStops(t *testing.T) {
	b, shell, _, out := setup(t)
	shell.fail = "git commit -m 'chore(project): initialize project layout and configured development tools'"

	err := b.Bootstrap(context.Background(), testData(), Options{SkipInstall: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 128")
	assert.Contains(t, err.Error(), "no identity")
	assert.Len(t, shell.commands, 4)
	assert.Empty(t, out.String())
}

func TestBootstrap_GitLogFailure(t *testing.T) {
	b, shell, _, out := setup(t)
	shell.fail = "git --no-pager log --stat"

	err := b.Bootstrap(context.Background(), testData(), Options{SkipInstall: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exited with status 128")
	assert.Len(t, shell.commands, 6)
	assert.Empty(t, out.String())
}

func TestNextSteps(t *testing.T) {
	help, err := NextSteps(testData())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(help, "\n####### Next steps"))
	assert.Contains(t, help, "$ git checkout -b feat/my_feature_branch")
}
