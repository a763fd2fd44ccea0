package config

import (
	"os"
	"path/filepath"

	"github.com/pyskel/cli/internal/output"
)

// ConfigSource indicates where a configuration value came from.
type ConfigSource string

const (
	// SourceFlag indicates value came from command-line flag.
	SourceFlag ConfigSource = "flag"
	// SourceEnv indicates value came from environment variable.
	SourceEnv ConfigSource = "env"
	// SourceConfig indicates value came from config file.
	SourceConfig ConfigSource = "config"
	// SourceDefault indicates value is the built-in default.
	SourceDefault ConfigSource = "default"
)

// ResolvedValue is one configuration value and where it came from.
type ResolvedValue struct {
	Key    string
	Value  string
	Source ConfigSource
	// Shadowed contains values that were overridden by higher precedence.
	Shadowed map[ConfigSource]string
}

// Candidates are the values one key may take from each source. Empty
// strings mean unset.
type Candidates struct {
	Flag    string
	Env     string
	Config  string
	Default string
}

// Resolve picks a value using precedence flag > env > config > default and
// records every lower-precedence value it shadowed.
func Resolve(key string, c Candidates) ResolvedValue {
	rv := ResolvedValue{Key: key, Shadowed: make(map[ConfigSource]string)}
	ordered := []struct {
		source ConfigSource
		value  string
	}{
		{SourceFlag, c.Flag},
		{SourceEnv, c.Env},
		{SourceConfig, c.Config},
		{SourceDefault, c.Default},
	}
	for _, o := range ordered {
		if o.value == "" {
			continue
		}
		if rv.Source == "" {
			rv.Value = o.value
			rv.Source = o.source
			continue
		}
		rv.Shadowed[o.source] = o.value
	}
	return rv
}

// ResolveProjectRoot resolves the project directory using precedence:
// (1) --project flag, (2) PYSKEL_PROJECT env, (3) the nearest ancestor of
// the working directory holding a project marker, (4) the working directory.
func ResolveProjectRoot(flagValue string) (ResolvedValue, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return ResolvedValue{}, err
	}
	discovered, err := FindProjectRoot(cwd)
	if err != nil {
		return ResolvedValue{}, err
	}

	def := discovered
	if def == "" {
		def = cwd
	}
	rv := Resolve("project", Candidates{
		Flag:    flagValue,
		Env:     os.Getenv("PYSKEL_PROJECT"),
		Default: def,
	})

	expanded, err := ExpandPath(rv.Value)
	if err != nil {
		return rv, err
	}
	rv.Value, err = filepath.Abs(expanded)
	return rv, err
}

// ResolveConfigPath resolves the config file path using precedence:
// (1) --config flag, (2) PYSKEL_CONFIG env, (3) <root>/pyskel.yaml
func ResolveConfigPath(flagValue, root string) ResolvedValue {
	return Resolve("config", Candidates{
		Flag:    flagValue,
		Env:     os.Getenv("PYSKEL_CONFIG"),
		Default: filepath.Join(root, FileName),
	})
}

// LogResolvedValues logs configuration resolution at DEBUG level.
func LogResolvedValues(values []ResolvedValue) {
	for _, v := range values {
		output.Debug("config value resolved",
			"key", v.Key,
			"value", v.Value,
			"source", v.Source,
		)
		for source, shadowed := range v.Shadowed {
			output.Debug("  shadowed by higher precedence",
				"key", v.Key,
				"shadowed_source", source,
				"shadowed_value", shadowed,
			)
		}
	}
}

// ResolveAllOptions carries the global flag values.
type ResolveAllOptions struct {
	// ProjectFlag is the --project flag value (empty if not set).
	ProjectFlag string
	// ConfigFlag is the --config flag value (empty if not set).
	ConfigFlag string
}

// ResolvedConfig is the effective configuration of one project.
type ResolvedConfig struct {
	Root       ResolvedValue
	ConfigPath ResolvedValue
	Python     ResolvedValue
	PipConfig  ResolvedValue

	// File is the loaded file with environment overrides, before any
	// directory-derived defaults are applied.
	File *Config

	// Config is File with defaults filled in.
	Config *Config
}

// Values returns every resolved value, for logging.
func (r *ResolvedConfig) Values() []ResolvedValue {
	return []ResolvedValue{r.Root, r.ConfigPath, r.Python, r.PipConfig}
}

// ResolveAll locates the project, loads its pyskel.yaml and resolves every
// value with its source. Python and PipConfig resolve to "" when no source
// sets them; callers substitute the interpreter and pip defaults.
func ResolveAll(opts ResolveAllOptions) (*ResolvedConfig, error) {
	root, err := ResolveProjectRoot(opts.ProjectFlag)
	if err != nil {
		return nil, err
	}
	cfgPath := ResolveConfigPath(opts.ConfigFlag, root.Value)

	loader := NewLoader()
	cfg, err := loader.Load(cfgPath.Value)
	if err != nil {
		return nil, err
	}

	name := filepath.Base(root.Value)
	effective := cfg.WithDefaults(name, Slugify(name))

	return &ResolvedConfig{
		Root:       root,
		ConfigPath: cfgPath,
		Python: Resolve("python", Candidates{
			Env:    os.Getenv("PYSKEL_PYTHON"),
			Config: loader.FileString("python"),
		}),
		PipConfig: Resolve("pipConfig", Candidates{
			Env:    os.Getenv("PYSKEL_PIP_CONFIG"),
			Config: loader.FileString("pipConfig"),
		}),
		File:   cfg,
		Config: effective,
	}, nil
}
