package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/pyskel/cli/internal/output"
	"github.com/pyskel/cli/internal/task"
)

// taskInfo is the serialized form of a task for yaml and json listings.
type taskInfo struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Serves      bool         `json:"serves,omitempty"`
	Options     []optionInfo `json:"options,omitempty"`
}

type optionInfo struct {
	Name      string   `json:"name"`
	Short     string   `json:"short,omitempty"`
	Aliases   []string `json:"aliases,omitempty"`
	Kind      string   `json:"kind"`
	Default   any      `json:"default,omitempty"`
	Choices   []string `json:"choices,omitempty"`
	Negatable bool     `json:"negatable,omitempty"`
	Usage     string   `json:"usage,omitempty"`
}

func describeTasks(registry *task.Registry) []taskInfo {
	tasks := registry.All()
	infos := make([]taskInfo, 0, len(tasks))
	for _, t := range tasks {
		info := taskInfo{Name: t.Name, Description: t.Short, Serves: t.Serve != nil}
		for _, o := range t.Options {
			info.Options = append(info.Options, optionInfo{
				Name:      o.Name,
				Short:     o.Short,
				Aliases:   o.Aliases,
				Kind:      o.Kind.String(),
				Default:   o.Default,
				Choices:   o.Choices,
				Negatable: o.Negatable,
				Usage:     o.Usage,
			})
		}
		infos = append(infos, info)
	}
	return infos
}

// NewTasksCmd creates the tasks command.
func NewTasksCmd(registry *task.Registry) *cobra.Command {
	var format string

	c := &cobra.Command{
		Use:   "tasks",
		Short: "List the available tasks",
		Long: `List the tasks 'pyskel run' accepts, in registration order.

Examples:
  pyskel tasks
  pyskel tasks -o yaml`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := output.ParseOutputFormat(format)
			if !f.IsValid() {
				return outputFormatError(cmd, format, output.ValidFormats())
			}
			rendered, err := renderTasks(describeTasks(registry), f)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return nil
		},
	}

	c.Flags().StringVarP(&format, "output", "o", "table", "Output format: "+strings.Join(output.ValidFormats(), ", "))

	return c
}

func renderTasks(infos []taskInfo, format output.OutputFormat) (string, error) {
	switch format {
	case output.FormatYAML:
		data, err := yaml.Marshal(infos)
		if err != nil {
			return "", fmt.Errorf("marshaling tasks: %w", err)
		}
		return strings.TrimRight(string(data), "\n"), nil
	case output.FormatJSON:
		data, err := json.MarshalIndent(infos, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshaling tasks: %w", err)
		}
		return string(data), nil
	}

	tbl := output.NewTable("TASK", "DESCRIPTION", "OPTIONS")
	for _, info := range infos {
		opts := make([]string, 0, len(info.Options))
		for _, o := range info.Options {
			if o.Negatable {
				opts = append(opts, "--no-"+o.Name)
				continue
			}
			opts = append(opts, "--"+o.Name)
		}
		tbl.Row(output.StyleNoun.Render(info.Name), info.Description, strings.Join(opts, " "))
	}
	return tbl.String(), nil
}
