// Package cmd provides CLI command implementations.
package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/pyskel/cli/internal/config"
	oerrors "github.com/pyskel/cli/internal/errors"
	"github.com/pyskel/cli/internal/output"
	"github.com/pyskel/cli/internal/task"
)

// GlobalConfig holds CLI-wide configuration resolved during
// PersistentPreRunE and passed explicitly into every sub-command.
type GlobalConfig struct {
	// ProjectFlag is the raw --project flag value.
	ProjectFlag string
	// ConfigFlag is the raw --config flag value.
	ConfigFlag string
	Verbose    bool
	Timestamps bool

	// Resolved is the project configuration, nil when resolution failed.
	Resolved   *config.ResolvedConfig
	resolveErr error
}

// Project returns the resolved project configuration. A pyskel.yaml that
// exists is validated against the schema first. Only values the file sets
// are checked; a name derived from the directory is not.
func (g *GlobalConfig) Project() (*config.ResolvedConfig, error) {
	if g.resolveErr != nil {
		return nil, g.resolveErr
	}
	if g.Resolved == nil {
		return nil, errors.New("configuration not initialized")
	}

	exists, err := config.ConfigFileExists(g.Resolved.ConfigPath.Value)
	if err != nil {
		return nil, err
	}
	if exists {
		v, err := config.NewValidator()
		if err != nil {
			return nil, err
		}
		if err := v.Validate(g.Resolved.File); err != nil {
			return nil, &oerrors.DetailError{
				Type:     "validation failed",
				Message:  err.Error(),
				Location: g.Resolved.ConfigPath.Value,
				Hint:     "Run 'pyskel config vet' for details.",
				Cause:    oerrors.ErrValidation,
			}
		}
	}
	return g.Resolved, nil
}

// NewRootCmd creates the root command for the pyskel CLI.
func NewRootCmd() *cobra.Command {
	g := &GlobalConfig{}
	registry := task.Builtin()

	rootCmd := &cobra.Command{
		Use:   "pyskel",
		Short: "Python project generator and task runner",
		Long: `pyskel generates skeleton Python projects and runs their development tasks:
tests, type checks, linting, formatting, packaging, docs and container builds.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initializeGlobals(cmd, g)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&g.ProjectFlag, "project", "C", "", "Project directory (env: PYSKEL_PROJECT)")
	rootCmd.PersistentFlags().StringVar(&g.ConfigFlag, "config", "", "Path to pyskel.yaml (env: PYSKEL_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&g.Verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&g.Timestamps, "timestamps", true, "Show timestamps in log output")

	rootCmd.SetFlagErrorFunc(flagError)

	rootCmd.AddCommand(NewNewCmd(g, registry))
	rootCmd.AddCommand(NewRunCmd(g, registry))
	rootCmd.AddCommand(NewTasksCmd(registry))
	rootCmd.AddCommand(NewDiffCmd(g))
	rootCmd.AddCommand(NewConfigCmd(g))
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// initializeGlobals sets up logging and resolves the project configuration.
// Resolution errors are kept for the commands that need a project.
func initializeGlobals(cmd *cobra.Command, g *GlobalConfig) error {
	resolved, err := config.ResolveAll(config.ResolveAllOptions{
		ProjectFlag: g.ProjectFlag,
		ConfigFlag:  g.ConfigFlag,
	})
	g.Resolved, g.resolveErr = resolved, err

	logCfg := output.LogConfig{
		Verbose: g.Verbose,
	}

	// flag (if explicitly set) > config > default (nil = true)
	if cmd.Flags().Changed("timestamps") {
		logCfg.Timestamps = output.BoolPtr(g.Timestamps)
	} else if resolved != nil && resolved.Config.Log.Timestamps != nil {
		logCfg.Timestamps = resolved.Config.Log.Timestamps
	}

	output.SetupLogging(logCfg)

	if err != nil {
		output.Debug("config load error", "error", err)
		return nil
	}
	config.LogResolvedValues(resolved.Values())
	return nil
}
