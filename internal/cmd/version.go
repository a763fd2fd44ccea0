package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pyskel/cli/internal/version"
)

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	var asJSON bool

	c := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Show pyskel version information.

Displays:
  - pyskel version, commit, and build date
  - CUE SDK version (embedded in the CLI)
  - python, git and docker as found in PATH`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()
			tools := version.DetectTools(cmd.Context())

			if asJSON {
				data, err := json.MarshalIndent(struct {
					version.Info
					Tools []version.ToolInfo `json:"tools"`
				}{info, tools}, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), version.FullVersionString(info, tools))
			return nil
		},
	}

	c.Flags().BoolVar(&asJSON, "json", false, "Print version information as JSON")

	return c
}
