// Package config provides configuration loading and management.
package config

// Default values for a freshly initialized project.
const (
	DefaultVersion       = "0.1.0"
	DefaultCLI           = "none"
	DefaultPythonVersion = "3.12"
)

// ProjectConfig records the answers a project was generated from.
type ProjectConfig struct {
	// Name is the distribution name, also the default image name.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Slug is the importable package name under src/.
	Slug string `json:"slug,omitempty" yaml:"slug,omitempty"`

	// Version is the initial package version.
	Version string `json:"version,omitempty" yaml:"version,omitempty"`

	// CLI is the command-line interface variant: none, argparse, click or typer.
	CLI string `json:"cli,omitempty" yaml:"cli,omitempty"`

	Description   string `json:"description,omitempty" yaml:"description,omitempty"`
	Author        string `json:"author,omitempty" yaml:"author,omitempty"`
	Email         string `json:"email,omitempty" yaml:"email,omitempty"`
	Org           string `json:"org,omitempty" yaml:"org,omitempty"`
	PythonVersion string `json:"pythonVersion,omitempty" yaml:"pythonVersion,omitempty"`
}

// LogConfig contains logging-related settings.
type LogConfig struct {
	// Timestamps controls whether timestamps are shown in log output.
	// Default: true. Override with --timestamps flag.
	Timestamps *bool `json:"timestamps,omitempty" yaml:"timestamps,omitempty"`
}

// Config represents a project's pyskel.yaml.
type Config struct {
	Project ProjectConfig `json:"project,omitempty" yaml:"project,omitempty"`

	// Python overrides the interpreter tasks run with.
	// Env: PYSKEL_PYTHON, Default: <root>/.venv/bin/python
	Python string `json:"python,omitempty" yaml:"python,omitempty"`

	// PipConfig is the pip configuration mounted into container builds.
	// Env: PYSKEL_PIP_CONFIG, Default: ~/.config/pip/pip.conf
	PipConfig string `json:"pipConfig,omitempty" yaml:"pipConfig,omitempty"`

	Log LogConfig `json:"log,omitempty" yaml:"log,omitempty"`
}

// DefaultConfig returns a Config with all default values populated.
// Used by `pyskel config init` to generate the initial file.
func DefaultConfig(name, slug string) *Config {
	return &Config{
		Project: ProjectConfig{
			Name:          name,
			Slug:          slug,
			Version:       DefaultVersion,
			CLI:           DefaultCLI,
			PythonVersion: DefaultPythonVersion,
		},
	}
}

// WithDefaults fills unset fields. Name and slug fall back to the given
// directory-derived values.
func (c *Config) WithDefaults(name, slug string) *Config {
	out := *c
	if out.Project.Name == "" {
		out.Project.Name = name
	}
	if out.Project.Slug == "" {
		out.Project.Slug = slug
	}
	if out.Project.Version == "" {
		out.Project.Version = DefaultVersion
	}
	if out.Project.CLI == "" {
		out.Project.CLI = DefaultCLI
	}
	if out.Project.PythonVersion == "" {
		out.Project.PythonVersion = DefaultPythonVersion
	}
	return &out
}
