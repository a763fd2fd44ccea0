package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pyskel/cli/internal/config"
	"github.com/pyskel/cli/internal/drift"
	oerrors "github.com/pyskel/cli/internal/errors"
	"github.com/pyskel/cli/internal/output"
	"github.com/pyskel/cli/internal/templates"
)

// NewDiffCmd creates the diff command.
func NewDiffCmd(g *GlobalConfig) *cobra.Command {
	var exitCode, stat bool

	c := &cobra.Command{
		Use:   "diff",
		Short: "Compare the project against its template",
		Long: `Re-render the template with the answers recorded in pyskel.yaml and
compare the result with the project.

YAML and JSON files are compared structurally, so comments and formatting
changes are not reported. Other files are compared line by line.

Examples:
  pyskel diff
  pyskel diff -C path/to/project --exit-code`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := g.Project()
			if err != nil {
				return err
			}
			exists, err := config.ConfigFileExists(resolved.ConfigPath.Value)
			if err != nil {
				return err
			}
			if !exists {
				return oerrors.NewNotFoundError("no recorded template answers",
					resolved.ConfigPath.Value,
					"Projects generated with 'pyskel new' record their answers in "+config.FileName+".")
			}

			data := templates.DataFromConfig(resolved.Config)
			output.Debug("comparing project with template",
				"root", resolved.Root.Value, "cli", data.CLI)

			report, err := drift.Compare(resolved.Root.Value, data, drift.Options{UseColor: output.IsTTY()})
			if err != nil {
				return err
			}
			if stat {
				if !report.IsEmpty() {
					fmt.Fprintln(cmd.OutOrStdout(), report.Status())
				}
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), report.String())
			}

			if exitCode && !report.IsEmpty() {
				exitErr := oerrors.NewExitError(errors.New("project differs from template"), ExitGeneralError)
				exitErr.Printed = true
				return exitErr
			}
			return nil
		},
	}

	c.Flags().BoolVar(&stat, "stat", false, "Print only the changed paths with their status")
	c.Flags().BoolVar(&exitCode, "exit-code", false, "Exit with status 1 when differences are found")

	return c
}
