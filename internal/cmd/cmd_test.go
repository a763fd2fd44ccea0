package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns everything written
// to its output streams.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, k := range []string{"PYSKEL_PROJECT", "PYSKEL_CONFIG", "PYSKEL_PYTHON", "PYSKEL_PIP_CONFIG"} {
		t.Setenv(k, "")
	}

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

// projectDir creates an empty directory named name and optionally writes
// a pyskel.yaml into it.
func projectDir(t *testing.T, name, pyskelYAML string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	if pyskelYAML != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "pyskel.yaml"), []byte(pyskelYAML), 0o644))
	}
	return dir
}
