package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyskel/cli/internal/config"
	oerrors "github.com/pyskel/cli/internal/errors"
)

func TestNewConfigInitCmd(t *testing.T) {
	c := NewConfigInitCmd(&GlobalConfig{})

	assert.Equal(t, "init", c.Use)
	assert.NotEmpty(t, c.Short)
	assert.NotEmpty(t, c.Long)
	assert.NotNil(t, c.Flags().Lookup("force"))
}

func TestConfigInit_WritesDefaults(t *testing.T) {
	dir := projectDir(t, "my-service", "")

	out, err := execute(t, "config", "init", "-C", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration written")

	cfg, err := config.NewLoader().Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, "my-service", cfg.Project.Name)
	assert.Equal(t, "my_service", cfg.Project.Slug)
	assert.Equal(t, config.DefaultVersion, cfg.Project.Version)
	assert.Equal(t, config.DefaultCLI, cfg.Project.CLI)

	out, err = execute(t, "config", "vet", "-C", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid")
}

func TestConfigInit_RefusesOverwrite(t *testing.T) {
	dir := projectDir(t, "demo", "project:\n  name: keep-me\n")

	_, err := execute(t, "config", "init", "-C", dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, oerrors.ErrValidation)

	data, err := os.ReadFile(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "keep-me")

	_, err = execute(t, "config", "init", "--force", "-C", dir)
	require.NoError(t, err)
	data, err = os.ReadFile(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "keep-me")
}

func TestConfigInit_ReplacesBrokenFile(t *testing.T) {
	dir := projectDir(t, "demo", "project: [unclosed\n")

	_, err := execute(t, "config", "init", "--force", "-C", dir)
	require.NoError(t, err)
}

func TestConfigVet(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"valid", "project:\n  name: demo\n  cli: typer\n", nil},
		{"unknown key", "project:\n  name: demo\n  colour: red\n", oerrors.ErrValidation},
		{"bad cli", "project:\n  cli: fire\n", oerrors.ErrValidation},
		{"keyword slug", "project:\n  slug: import\n", oerrors.ErrValidation},
		{"bad yaml", "project: [unclosed\n", oerrors.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := projectDir(t, "demo", tt.content)
			_, err := execute(t, "config", "vet", "-C", dir)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestConfigVet_Missing(t *testing.T) {
	dir := projectDir(t, "demo", "")

	_, err := execute(t, "config", "vet", "-C", dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, oerrors.ErrNotFound)
	assert.Equal(t, ExitNotFound, ExitCodeFromError(err))
}

func TestConfigVet_ExplicitPath(t *testing.T) {
	dir := projectDir(t, "demo", "")
	path := filepath.Join(t.TempDir(), "other.yaml")
	require.NoError(t, os.WriteFile(path, []byte("project:\n  version: 2.0.0\n"), 0o644))

	out, err := execute(t, "config", "vet", "-C", dir, "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)
}
