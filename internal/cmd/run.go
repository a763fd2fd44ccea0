package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pyskel/cli/internal/config"
	oerrors "github.com/pyskel/cli/internal/errors"
	"github.com/pyskel/cli/internal/executor"
	"github.com/pyskel/cli/internal/task"
)

// dotEnvFile is loaded from the project root into every task's environment.
const dotEnvFile = ".env"

// NewRunCmd creates the run command with one sub-command per registered task.
func NewRunCmd(g *GlobalConfig, registry *task.Registry) *cobra.Command {
	var dryRun bool

	c := &cobra.Command{
		Use:   "run <task> [options]",
		Short: "Run a project task",
		Long: `Run one of the project's development tasks.

Each task accepts its own options; see 'pyskel run <task> --help'.
With --dry-run the composed command lines are printed and nothing runs.
Commands run through the shell in the project root with variables from
<project>/.env added to the environment.

Examples:
  # Run the unit tests with coverage
  pyskel run test --cov

  # Show what a cross-platform image build would execute
  pyskel run docker-cp --platforms linux/amd64,linux/arm64 --push --dry-run`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return oerrors.NewUsageError("no task given", cmd.UsageString())
			}
			return oerrors.NewUnknownTaskError(args[0], registry.Names())
		},
	}

	c.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Print the commands instead of running them")

	for _, t := range registry.All() {
		c.AddCommand(newTaskCmd(g, registry, t, &dryRun))
	}

	return c
}

// newTaskCmd exposes one task as a cobra command whose flags are the
// task's options.
func newTaskCmd(g *GlobalConfig, registry *task.Registry, t *task.Task, dryRun *bool) *cobra.Command {
	c := &cobra.Command{
		Use:   t.Name + " [options]",
		Short: t.Short,
		Args:  usageArgs(cobra.NoArgs),
	}
	read := task.BindFlags(t, c.Flags())

	c.RunE = func(cmd *cobra.Command, args []string) error {
		values, err := read()
		if err != nil {
			return err
		}
		resolved, err := g.Project()
		if err != nil {
			return err
		}
		runner, err := newRunner(cmd, registry, projectEnv(resolved), *dryRun)
		if err != nil {
			return err
		}
		return runner.Execute(cmd.Context(), t, values)
	}

	return c
}

// projectEnv builds the task environment, applying the configured
// interpreter and pip config over the defaults.
func projectEnv(r *config.ResolvedConfig) task.Env {
	env := task.NewEnv(r.Root.Value, r.Config.Project.Name, r.Config.Project.Slug)
	if r.Python.Value != "" {
		env.Python = env.Expand(r.Python.Value)
	}
	if r.PipConfig.Value != "" {
		env.PipConfig = env.Expand(r.PipConfig.Value)
	}
	return env
}

// newRunner wires an executor rooted at the project into a task runner.
func newRunner(cmd *cobra.Command, registry *task.Registry, env task.Env, dryRun bool) (*task.Runner, error) {
	exec, err := executor.New(env.Root,
		executor.WithOutput(cmd.OutOrStdout(), cmd.ErrOrStderr()),
		executor.WithDotEnv(filepath.Join(env.Root, dotEnvFile)),
	)
	if err != nil {
		return nil, err
	}
	return &task.Runner{
		Registry: registry,
		Executor: exec,
		Env:      env,
		Out:      cmd.OutOrStdout(),
		DryRun:   dryRun,
	}, nil
}
