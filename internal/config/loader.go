package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
)

// Environment variable prefix for pyskel configuration.
const envPrefix = "PYSKEL"

// envBindings maps config keys to their environment variables.
var envBindings = map[string]string{
	"project.name":    "PYSKEL_PROJECT_NAME",
	"project.slug":    "PYSKEL_PROJECT_SLUG",
	"project.version": "PYSKEL_PROJECT_VERSION",
	"project.cli":     "PYSKEL_PROJECT_CLI",
	"python":          "PYSKEL_PYTHON",
	"pipConfig":       "PYSKEL_PIP_CONFIG",
	"log.timestamps":  "PYSKEL_LOG_TIMESTAMPS",
}

// Loader handles loading and merging configuration from multiple sources.
type Loader struct {
	v *viper.Viper

	// file holds the config file alone, without environment overrides.
	file *viper.Viper
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	v := viper.New()

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	return &Loader{v: v, file: viper.New()}
}

// Load reads the config file at path. A missing file is not an error:
// the result then holds only environment overrides.
// Environment variables take precedence over file values.
func (l *Loader) Load(path string) (*Config, error) {
	expanded, err := ExpandPath(path)
	if err != nil {
		return nil, fmt.Errorf("expanding config path: %w", err)
	}

	for _, v := range []*viper.Viper{l.v, l.file} {
		v.SetConfigFile(expanded)
		v.SetConfigType("yaml")

		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// FileString returns the value of key as written in the config file,
// ignoring environment overrides.
func (l *Loader) FileString(key string) string {
	return l.file.GetString(key)
}
