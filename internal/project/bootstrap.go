// Package project prepares a freshly generated project: its virtual
// environment, pinned requirements and git history.
package project

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/pyskel/cli/internal/executor"
	"github.com/pyskel/cli/internal/output"
	"github.com/pyskel/cli/internal/task"
	"github.com/pyskel/cli/internal/templates"
)

// InitialCommitMessage is the message of the first commit on main.
const InitialCommitMessage = "chore(project): initialize project layout and configured development tools"

const gitLogCommand = "git --no-pager log --stat"

// Options configures Bootstrap.
type Options struct {
	// SkipInstall skips creating the virtual environment and pinning
	// requirements.
	SkipInstall bool

	// NoGit skips repository initialization.
	NoGit bool

	// Python is the interpreter used to create the virtual environment.
	Python string
}

// Commander runs a shell command line in the project directory.
type Commander interface {
	Run(ctx context.Context, command string, mode executor.Mode) (*executor.Result, error)
}

// Bootstrapper runs the post-generation steps for one project.
type Bootstrapper struct {
	runner *task.Runner
	shell  Commander
	out    io.Writer
}

// NewBootstrapper creates a Bootstrapper. runner executes the install and
// requirements tasks; shell runs git.
func NewBootstrapper(runner *task.Runner, shell Commander, out io.Writer) *Bootstrapper {
	return &Bootstrapper{runner: runner, shell: shell, out: out}
}

// Bootstrap installs dependencies, initializes git and prints the next
// steps. Each step stops the sequence on failure.
func (b *Bootstrapper) Bootstrap(ctx context.Context, data templates.TemplateData, opts Options) error {
	if !opts.SkipInstall {
		var args []string
		if opts.Python != "" {
			args = append(args, "--python", opts.Python)
		}
		for _, inv := range []task.Invocation{
			{Task: "install", Args: args},
			{Task: "requirements"},
		} {
			output.Info("running task", "task", output.StyleNoun.Render(inv.Task))
			if err := b.runner.Run(ctx, inv); err != nil {
				return fmt.Errorf("bootstrapping project: %w", err)
			}
		}
	}

	if !opts.NoGit {
		err := output.RunWithSpinner(ctx, func() error {
			return b.initGit(ctx)
		}, output.WithTitle("Initializing git repository"))
		if err != nil {
			return err
		}
		res, err := b.shell.Run(ctx, gitLogCommand, executor.Stream)
		if err != nil {
			return fmt.Errorf("showing git log: %w", err)
		}
		if !res.Success() {
			return fmt.Errorf("%q exited with status %d", gitLogCommand, res.ExitCode)
		}
	}

	help, err := NextSteps(data)
	if err != nil {
		return err
	}
	fmt.Fprint(b.out, help)
	return nil
}

// GitCommands returns the repository initialization sequence.
func GitCommands() []task.Command {
	return []task.Command{
		task.NewCommand("git", "init").Build(),
		task.NewCommand("git", "checkout", "-b", "main").Build(),
		task.NewCommand("git", "add", ".").Build(),
		task.NewCommand("git", "commit", "-m", task.Quote(InitialCommitMessage)).Build(),
		task.NewCommand("git", "checkout", "-b", "next").Build(),
	}
}

// initGit runs the git sequence with captured output, reporting the
// captured stderr of the first failing command.
func (b *Bootstrapper) initGit(ctx context.Context) error {
	for _, c := range GitCommands() {
		line := c.String()
		output.Debug("running", "command", line)
		res, err := b.shell.Run(ctx, line, executor.Capture)
		if err != nil {
			return fmt.Errorf("running %q: %w", line, err)
		}
		if !res.Success() {
			return fmt.Errorf("%q exited with status %d: %s", line, res.ExitCode, strings.TrimSpace(res.Stderr))
		}
	}
	return nil
}

var nextSteps = template.Must(template.New("next-steps").Parse(`
####### Next steps ##########


1. Visit project on GitHub:

    {{ .RepoURL }}


2. Configure GitHub Pages to be deployed using Github Action:

    https://docs.github.com/en/pages/getting-started-with-github-pages/configuring-a-publishing-source-for-your-github-pages-site


3. Create a deploy key named COMMIT_KEY and an associated action secret named COMMIT_KEY:

    $ ssh-keygen -t ed25519 -f id_ed25519 -N "" -q -C ""
    $ cat id_ed25519.pub  # This is the value of the deploy key
    $ cat id_ed25519      # This is the value of the action secret


4. Import project in sonarcloud:

    https://sonarcloud.io/projects/create


5. Obtain project token from SonarCloud and create an action secret named SONAR_TOKEN:

    https://docs.sonarcloud.io/advanced-setup/ci-based-analysis/github-actions-for-sonarcloud/


6. Add git origin remote:

    $ git remote add origin git@github.com:{{ .Org }}/{{ .RepoName }}.git


7. Push next branch:

    $ git push -u origin next


8. Push main branch:

    $ git checkout main
    $ git push -u origin main


9. Start developing on a new branch:

    $ git checkout -b feat/my_feature_branch
`))

// NextSteps renders the post-generation instructions for data.
func NextSteps(data templates.TemplateData) (string, error) {
	var buf bytes.Buffer
	if err := nextSteps.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering next steps: %w", err)
	}
	return buf.String(), nil
}
