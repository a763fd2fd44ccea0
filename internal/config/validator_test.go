package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_Validate(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	t.Run("default config is valid", func(t *testing.T) {
		assert.NoError(t, v.Validate(DefaultConfig("demo-project", "demo_project")))
	})

	t.Run("empty config is valid", func(t *testing.T) {
		assert.NoError(t, v.Validate(&Config{}))
	})

	tests := []struct {
		name  string
		cfg   Config
		field string
	}{
		{"bad cli", Config{Project: ProjectConfig{CLI: "fire"}}, "cli"},
		{"bad version", Config{Project: ProjectConfig{Version: "one"}}, "version"},
		{"bad slug", Config{Project: ProjectConfig{Slug: "demo-project"}}, "slug"},
		{"keyword slug", Config{Project: ProjectConfig{Slug: "lambda"}}, "slug"},
		{"bad python version", Config{Project: ProjectConfig{PythonVersion: "2.7"}}, "pythonVersion"},
		{"bad email", Config{Project: ProjectConfig{Email: "nobody"}}, "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.cfg)
			require.Error(t, err)
			var errs ValidationErrors
			require.ErrorAs(t, err, &errs)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestValidator_ValidateFile(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)
	dir := t.TempDir()

	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte("project:\n  name: demo\n  cli: none\nlog:\n  timestamps: true\n"), 0o644))
	assert.NoError(t, v.ValidateFile(good))

	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("project:\n  name: demo\nregistry: ghcr.io\n"), 0o644))
	err = v.ValidateFile(unknown)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "registry")

	assert.Error(t, v.ValidateFile(filepath.Join(dir, "missing.yaml")))
}

func TestValidationErrors_Error(t *testing.T) {
	assert.Equal(t, "no validation errors", ValidationErrors{}.Error())
	errs := ValidationErrors{{Field: "project.cli", Message: "bad"}}
	assert.Equal(t, "config validation failed:\n  project.cli: bad\n", errs.Error())
}
