package main

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pyskelBinary string

func TestMain(m *testing.M) {
	// Build the binary once for all tests
	tmpDir, err := os.MkdirTemp("", "pyskel-e2e-*")
	if err != nil {
		panic("failed to create temp dir: " + err.Error())
	}

	pyskelBinary = filepath.Join(tmpDir, "pyskel")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	cmd := exec.CommandContext(ctx, "go", "build", "-o", pyskelBinary, ".")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		cancel()
		os.RemoveAll(tmpDir)
		panic("failed to build pyskel binary: " + err.Error())
	}
	cancel()

	code := m.Run()
	os.RemoveAll(tmpDir)
	os.Exit(code)
}

// runPyskel runs the binary and returns its output and exit code.
func runPyskel(t *testing.T, workDir string, args ...string) (stdout, stderr string, code int) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, pyskelBinary, args...)
	cmd.Dir = workDir
	cmd.Env = append(os.Environ(), "PYSKEL_PROJECT=", "PYSKEL_CONFIG=", "PYSKEL_PYTHON=", "PYSKEL_PIP_CONFIG=", "HOME="+workDir)

	var out, errOut strings.Builder
	cmd.Stdout = &out
	cmd.Stderr = &errOut

	err := cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		code = 0
	case errors.As(err, &exitErr):
		code = exitErr.ExitCode()
	default:
		t.Fatalf("running pyskel: %v", err)
	}
	return out.String(), errOut.String(), code
}

func TestE2E_NewThenDryRun(t *testing.T) {
	tmpDir := t.TempDir()

	_, stderr, code := runPyskel(t, tmpDir, "new", "my-app", "--no-input", "--skip-install", "--no-git", "--cli", "typer")
	require.Equal(t, 0, code, "stderr: %s", stderr)

	project := filepath.Join(tmpDir, "my-app")
	assert.FileExists(t, filepath.Join(project, "src", "my_app", "cli", "app.py"))
	assert.FileExists(t, filepath.Join(project, "pyskel.yaml"))

	stdout, stderr, code := runPyskel(t, project, "run", "format", "--dry-run")
	require.Equal(t, 0, code, "stderr: %s", stderr)
	py := filepath.Join(project, ".venv", "bin", "python")
	assert.Equal(t, py+" -m isort .\n"+py+" -m black .\n", stdout)

	stdout, _, code = runPyskel(t, project, "diff")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "No changes detected")
}

func TestE2E_ExitCodes(t *testing.T) {
	tmpDir := t.TempDir()

	_, stderr, code := runPyskel(t, tmpDir, "run", "deploy")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "unknown task")

	_, _, code = runPyskel(t, tmpDir, "run", "test", "--no-such-option")
	assert.Equal(t, 2, code)

	_, _, code = runPyskel(t, tmpDir, "config", "vet")
	assert.Equal(t, 5, code)
}

func TestE2E_ToolStatusPropagates(t *testing.T) {
	projectDir := filepath.Join(t.TempDir(), "demo-project")
	require.NoError(t, os.Mkdir(projectDir, 0o755))
	script := filepath.Join(projectDir, "fake-python")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nexit 7\n"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(projectDir, "pyskel.yaml"), []byte("python: "+script+"\n"), 0o644))

	_, stderr, code := runPyskel(t, projectDir, "run", "lint")
	assert.Equal(t, 7, code)
	assert.Contains(t, stderr, "exited with status 7")
}
