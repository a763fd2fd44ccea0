package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pyskel/cli/internal/config"
	"github.com/pyskel/cli/internal/executor"
	"github.com/pyskel/cli/internal/output"
	"github.com/pyskel/cli/internal/project"
	"github.com/pyskel/cli/internal/prompt"
	"github.com/pyskel/cli/internal/task"
	"github.com/pyskel/cli/internal/templates"
)

type newOptions struct {
	outputDir     string
	slug          string
	cli           string
	version       string
	description   string
	author        string
	email         string
	org           string
	pythonVersion string
	python        string
	force         bool
	skipInstall   bool
	noGit         bool
	noInput       bool
	list          bool
}

// NewNewCmd creates the new command.
func NewNewCmd(_ *GlobalConfig, registry *task.Registry) *cobra.Command {
	o := &newOptions{}

	c := &cobra.Command{
		Use:   "new <name>",
		Short: "Generate a new Python project",
		Long: `Generate a Python project from the built-in template.

The project is written to <output-dir>/<name>. Unless disabled, pyskel then
creates the virtual environment, pins requirements.txt and initializes a git
repository with main and next branches.

On a terminal, answers not given as flags are asked for interactively.

Examples:
  # Generate a library with defaults, no prompts
  pyskel new my-lib --no-input

  # Generate a Typer application without touching the network
  pyskel new my-tool --cli typer --skip-install`,
		Args: usageArgs(func(cmd *cobra.Command, args []string) error {
			if o.list {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		}),
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.list {
				fmt.Fprint(cmd.OutOrStdout(), listVariants())
				return nil
			}
			data := o.data(args[0])

			if !o.noInput && output.IsInteractive() {
				var err error
				data, err = askMissing(cmd, data)
				if err != nil {
					return err
				}
			}

			gen := templates.NewGenerator(templates.GenerateOptions{
				OutputDir: o.outputDir,
				Data:      data,
				Force:     o.force,
			})
			result, err := gen.Generate()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, output.RenderSimpleTree(result.Data.ProjectName, result.Files))
			fmt.Fprintln(out, output.FormatCheckmark(fmt.Sprintf("Generated %s (%s variant, %d files)",
				output.StyleNoun.Render(result.TargetDir), result.Variant, len(result.Files))))

			env := task.NewEnv(result.TargetDir, result.Data.ProjectName, result.Data.Slug)
			runner, err := newRunner(cmd, registry, env, false)
			if err != nil {
				return err
			}
			shell, err := executor.New(result.TargetDir, executor.WithOutput(out, cmd.ErrOrStderr()))
			if err != nil {
				return err
			}

			return project.NewBootstrapper(runner, shell, out).Bootstrap(cmd.Context(), result.Data, project.Options{
				SkipInstall: o.skipInstall,
				NoGit:       o.noGit,
				Python:      o.python,
			})
		},
	}

	f := c.Flags()
	f.StringVarP(&o.outputDir, "output-dir", "o", ".", "Directory the project directory is created in")
	f.StringVar(&o.slug, "slug", "", "Python package name (default: derived from the name)")
	f.StringVar(&o.cli, "cli", "", "Command-line interface: "+strings.Join(templates.Names(), ", "))
	f.StringVar(&o.version, "version", "", "Initial version (default "+config.DefaultVersion+")")
	f.StringVar(&o.description, "description", "", "One-line project description")
	f.StringVar(&o.author, "author", "", "Author name")
	f.StringVar(&o.email, "email", "", "Author email")
	f.StringVar(&o.org, "org", "", "GitHub organization (default "+templates.DefaultOrg+")")
	f.StringVar(&o.pythonVersion, "python-version", "", "Python version of CI and images (default "+config.DefaultPythonVersion+")")
	f.StringVar(&o.python, "python", "", "Interpreter used to create the virtual environment")
	f.BoolVarP(&o.force, "force", "f", false, "Overwrite files in a non-empty target directory")
	f.BoolVar(&o.skipInstall, "skip-install", false, "Do not create the virtual environment or pin requirements")
	f.BoolVar(&o.noGit, "no-git", false, "Do not initialize a git repository")
	f.BoolVar(&o.noInput, "no-input", false, "Never prompt; use flags and defaults")
	f.BoolVar(&o.list, "list", false, "List the CLI variants and exit")

	return c
}

// listVariants renders the CLI variants with their descriptions.
func listVariants() string {
	variants := templates.List()
	entries := make([]output.ListEntry, 0, len(variants))
	for _, v := range variants {
		name := v.Name
		if name == templates.DefaultVariant {
			name += " (default)"
		}
		entries = append(entries, output.ListEntry{Name: name, Description: v.Description})
	}
	return output.RenderList(entries, 18)
}

func (o *newOptions) data(name string) templates.TemplateData {
	return templates.TemplateData{
		ProjectName:   name,
		Slug:          o.slug,
		Version:       o.version,
		Description:   o.description,
		Author:        o.author,
		Email:         o.email,
		Org:           o.org,
		CLI:           o.cli,
		PythonVersion: o.pythonVersion,
	}
}

// askMissing prompts for every answer still empty, showing the default
// the template would otherwise use.
func askMissing(cmd *cobra.Command, data templates.TemplateData) (templates.TemplateData, error) {
	defaults := data.WithDefaults()
	fields := promptFields(data, defaults)

	answers, err := prompt.Run(cmd.Context(), fields, os.Stdin, cmd.OutOrStdout())
	if errors.Is(err, prompt.ErrCancelled) {
		return data, errors.New("generation cancelled")
	}
	if err != nil {
		return data, err
	}

	for key, value := range answers {
		switch key {
		case "slug":
			data.Slug = value
		case "version":
			data.Version = value
		case "description":
			data.Description = value
		case "author":
			data.Author = value
		case "email":
			data.Email = value
		case "org":
			data.Org = value
		case "cli":
			data.CLI = value
		case "pythonVersion":
			data.PythonVersion = value
		}
	}
	return data, nil
}

func promptFields(data, defaults templates.TemplateData) []prompt.Field {
	var fields []prompt.Field
	add := func(current string, f prompt.Field) {
		if current == "" {
			fields = append(fields, f)
		}
	}
	add(data.Slug, prompt.Field{Key: "slug", Label: "Package name", Default: defaults.Slug, Validate: config.ValidateSlug})
	add(data.Version, prompt.Field{Key: "version", Label: "Version", Default: defaults.Version, Validate: config.ValidateVersion})
	add(data.Description, prompt.Field{Key: "description", Label: "Description", Default: defaults.Description})
	add(data.Author, prompt.Field{Key: "author", Label: "Author"})
	add(data.Email, prompt.Field{Key: "email", Label: "Email"})
	add(data.Org, prompt.Field{Key: "org", Label: "GitHub organization", Default: defaults.Org})
	add(data.CLI, prompt.Field{Key: "cli", Label: "Command-line interface", Default: defaults.CLI, Choices: templates.Names()})
	add(data.PythonVersion, prompt.Field{Key: "pythonVersion", Label: "Python version", Default: defaults.PythonVersion, Validate: config.ValidatePythonVersion})
	return fields
}
