package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pyskel/cli/internal/config"
	oerrors "github.com/pyskel/cli/internal/errors"
	"github.com/pyskel/cli/internal/output"
)

// NewConfigCmd creates the config command group.
func NewConfigCmd(g *GlobalConfig) *cobra.Command {
	c := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  `Manage the project's pyskel.yaml.`,
	}

	c.AddCommand(NewConfigInitCmd(g))
	c.AddCommand(NewConfigVetCmd(g))

	return c
}

// configLocation resolves the project root and config path without
// loading the file, so broken files can still be vetted or replaced.
func (g *GlobalConfig) configLocation() (string, string, error) {
	root, err := config.ResolveProjectRoot(g.ProjectFlag)
	if err != nil {
		return "", "", err
	}
	return root.Value, config.ResolveConfigPath(g.ConfigFlag, root.Value).Value, nil
}

// NewConfigInitCmd creates the config init command.
func NewConfigInitCmd(g *GlobalConfig) *cobra.Command {
	var force bool

	c := &cobra.Command{
		Use:   "init",
		Short: "Write a default pyskel.yaml",
		Long: `Write a pyskel.yaml with default answers into the project root.

The project name and slug are derived from the directory name.

Examples:
  # Initialize configuration in the current project
  pyskel config init

  # Overwrite an existing file
  pyskel config init --force`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, path, err := g.configLocation()
			if err != nil {
				return err
			}

			if _, err := os.Stat(path); err == nil && !force {
				return &oerrors.DetailError{
					Type:     "validation failed",
					Message:  "configuration already exists",
					Location: path,
					Hint:     "Use --force to overwrite existing configuration.",
					Cause:    oerrors.ErrValidation,
				}
			}

			name := filepath.Base(root)
			data, err := marshalConfig(config.DefaultConfig(name, config.Slugify(name)))
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), output.FormatCheckmark("Configuration written to "+output.StyleNoun.Render(path)))
			fmt.Fprintln(cmd.OutOrStdout(), "Validate with: pyskel config vet")
			return nil
		},
	}

	c.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing configuration")

	return c
}

// marshalConfig renders cfg as YAML with two-space indentation.
func marshalConfig(cfg *config.Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// NewConfigVetCmd creates the config vet command.
func NewConfigVetCmd(g *GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "vet",
		Short: "Validate pyskel.yaml",
		Long: `Validate the project's pyskel.yaml against the configuration schema.

Checks performed:
  1. The file exists at the resolved path
  2. It is valid YAML with no unknown keys
  3. Every value satisfies its constraint (names, slug, versions, cli)

The path is resolved using precedence:
  --config flag > PYSKEL_CONFIG env > <project>/pyskel.yaml`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, path, err := g.configLocation()
			if err != nil {
				return err
			}
			output.Debug("validating config", "path", path)

			exists, err := config.ConfigFileExists(path)
			if err != nil {
				return err
			}
			if !exists {
				return oerrors.NewNotFoundError("configuration file not found", path,
					"Run 'pyskel config init' to create default configuration")
			}

			v, err := config.NewValidator()
			if err != nil {
				return err
			}
			if err := v.ValidateFile(path); err != nil {
				return &oerrors.DetailError{
					Type:     "validation failed",
					Message:  err.Error(),
					Location: path,
					Cause:    oerrors.ErrValidation,
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), output.FormatCheckmark("Configuration is valid: "+path))
			return nil
		},
	}
}
