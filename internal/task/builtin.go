package task

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Platforms lists the container platforms accepted by the docker tasks.
var Platforms = []string{
	"linux/amd64",
	"linux/arm64",
	"linux/arm/v7",
	"linux/arm/v6",
	"linux/386",
	"linux/ppc64le",
	"linux/s390x",
	"linux/riscv64",
}

// Builtin returns the standard registry every generated project uses.
func Builtin() *Registry {
	return MustRegistry(
		Clean(),
		Test(),
		Coverage(),
		Check(),
		Lint(),
		Format(),
		Build(),
		Wheelhouse(),
		Requirements(),
		Install(),
		Docs(),
		Docker(),
		DockerCrossPlatform(),
	)
}

// Clean removes build artifacts. Patterns are left to the shell to expand.
func Clean() *Task {
	return &Task{
		Name:  "clean",
		Short: "Remove built distributions and other artifacts",
		Options: []Option{
			{Name: "docs", Kind: Bool, Default: false, Usage: "also remove the built documentation"},
			{Name: "bytecode", Kind: Bool, Default: false, Usage: "also remove compiled *.pyc files"},
			{Name: "extra", Kind: String, Default: "", Usage: "additional path or pattern to remove"},
		},
		Body: func(_ Env, v Values) ([]Command, error) {
			cmds := []Command{
				NewCommand("rm", "-rf", "dist/*.whl").Build(),
				NewCommand("rm", "-rf", "dist/*.tar.gz").Build(),
			}
			if v.Bool("docs") {
				cmds = append(cmds, NewCommand("rm", "-rf", "dist/documentation").Build())
			}
			if v.Bool("bytecode") {
				cmds = append(cmds, NewCommand("rm", "-rf", "**/*.pyc").Build())
			}
			if extra := v.String("extra"); extra != "" {
				cmds = append(cmds, NewCommand("rm", "-rf", extra).Build())
			}
			return cmds, nil
		},
	}
}

// Test runs the unit suite, or every suite with --e2e.
func Test() *Task {
	return &Task{
		Name:  "test",
		Short: "Run the test suite with pytest",
		Options: []Option{
			{Name: "cov", Aliases: []string{"coverage"}, Kind: Bool, Default: false, Usage: "collect coverage for the package"},
			{Name: "e2e", Kind: Bool, Default: false, Usage: "run end-to-end tests as well"},
		},
		Body: func(env Env, v Values) ([]Command, error) {
			target := "tests/unit/"
			if v.Bool("e2e") {
				target = "tests/"
			}
			return []Command{
				env.py("pytest").
					Flag(v.Bool("cov"), "--cov", "src/"+env.Slug).
					Arg(target).
					Build(),
			}, nil
		},
	}
}

// Coverage serves the HTML coverage report, optionally regenerating it.
func Coverage() *Task {
	return &Task{
		Name:  "coverage",
		Short: "Serve the HTML coverage report",
		Options: []Option{
			{Name: "run", Kind: Bool, Default: false, Usage: "run the tests with coverage first"},
			{Name: "port", Kind: Int, Default: 8000, Usage: "port to serve on"},
		},
		Requires: func(v Values) []Invocation {
			if !v.Bool("run") {
				return nil
			}
			return []Invocation{{Task: "test", Args: []string{"--cov"}}}
		},
		Body: func(env Env, v Values) ([]Command, error) {
			return []Command{
				env.py("http.server").
					Arg(strconv.Itoa(v.Int("port")), "--dir", "coverage-report").
					Build(),
			}, nil
		},
		Serve: &Serve{
			Marker:  func(Values) string { return "Serving HTTP on" },
			Address: localAddress,
		},
	}
}

// Check type-checks the sources.
func Check() *Task {
	return &Task{
		Name:  "check",
		Short: "Type-check the sources with mypy",
		Options: []Option{
			{Name: "include-tests", Kind: Bool, Default: false, Usage: "type-check the tests too"},
		},
		Body: func(env Env, v Values) ([]Command, error) {
			return []Command{
				env.py("mypy").Arg("src/").Flag(v.Bool("include-tests"), "tests/").Build(),
			}, nil
		},
	}
}

// Lint runs flake8 over the project.
func Lint() *Task {
	return &Task{
		Name:  "lint",
		Short: "Lint the project with flake8",
		Body: func(env Env, _ Values) ([]Command, error) {
			return []Command{env.py("flake8").Arg(".").Build()}, nil
		},
	}
}

// Format sorts imports and then reformats.
func Format() *Task {
	return &Task{
		Name:  "format",
		Short: "Format the project with isort and black",
		Body: func(env Env, _ Values) ([]Command, error) {
			return []Command{
				env.py("isort").Arg(".").Build(),
				env.py("black").Arg(".").Build(),
			}, nil
		},
	}
}

// Build produces the source and wheel distributions.
func Build() *Task {
	return &Task{
		Name:  "build",
		Short: "Build the source and wheel distributions",
		Options: []Option{
			{Name: "docs", Kind: Bool, Default: false, Usage: "build the documentation as well"},
		},
		Body: func(env Env, v Values) ([]Command, error) {
			cmds := []Command{
				env.py("build").Arg("--no-isolation", "--outdir", "dist", ".").Build(),
			}
			if v.Bool("docs") {
				cmds = append(cmds, env.py("mkdocs").Arg("build", "-d", "dist/documentation").Build())
			}
			return cmds, nil
		},
	}
}

// Wheelhouse collects wheels for the project and its dependencies.
func Wheelhouse() *Task {
	return &Task{
		Name:  "wheelhouse",
		Short: "Collect wheels for the project and its dependencies",
		Options: []Option{
			{Name: "clean", Kind: Bool, Default: false, Usage: "remove the existing wheelhouse first"},
			{Name: "compress", Kind: Bool, Default: false, Usage: "archive the wheelhouse as dist/wheelhouse.tar.gz"},
		},
		Body: func(env Env, v Values) ([]Command, error) {
			var cmds []Command
			if v.Bool("clean") {
				cmds = append(cmds, NewCommand("rm", "-rf", "dist/wheelhouse").Build())
			}
			cmds = append(cmds, env.py("pip").Arg("wheel", ".", "-w", "dist/wheelhouse").Build())
			if v.Bool("compress") {
				cmds = append(cmds, NewCommand("tar", "-czf", "dist/wheelhouse.tar.gz", "-C", "dist", "wheelhouse").Build())
			}
			return cmds, nil
		},
		Cleanup: removeBuildDir,
	}
}

// removeBuildDir drops the build/ tree pip wheel leaves behind.
func removeBuildDir(env Env, _ Values) error {
	return os.RemoveAll(env.Path("build"))
}

// Requirements pins the dependencies declared in pyproject.toml.
func Requirements() *Task {
	return &Task{
		Name:  "requirements",
		Short: "Compile requirements.txt from pyproject.toml",
		Options: []Option{
			{Name: "with-hashes", Kind: Bool, Default: false, Usage: "include package hashes"},
		},
		Body: func(env Env, v Values) ([]Command, error) {
			return []Command{
				env.py("piptools").
					Arg("compile", "--no-header", "--output-file=requirements.txt", "--resolver=backtracking").
					Flag(v.Bool("with-hashes"), "--generate-hashes").
					Arg("pyproject.toml").
					Build(),
			}, nil
		},
	}
}

// Install creates the virtual environment and installs the requirements.
func Install() *Task {
	return &Task{
		Name:  "install",
		Short: "Create the virtual environment and install dependencies",
		Options: []Option{
			{Name: "docs", Kind: Bool, Default: false, Usage: "install the documentation requirements too"},
			{Name: "python", Kind: String, Default: "python3", Usage: "interpreter used to create the environment"},
		},
		Body: func(env Env, v Values) ([]Command, error) {
			python := v.String("python")
			if python == "" {
				return nil, fmt.Errorf("--python must not be empty")
			}
			cmds := []Command{
				NewCommand(Quote(python), "-m", "venv", ".venv").Build(),
				env.py("pip").Arg("install", "-U", "pip", "setuptools", "wheel").Build(),
				env.py("pip").Arg("install", "-r", "requirements.txt").Build(),
			}
			if v.Bool("docs") {
				cmds = append(cmds, env.py("pip").Arg("install", "-r", "requirements-docs.txt").Build())
			}
			return cmds, nil
		},
	}
}

// Docs serves the documentation site.
func Docs() *Task {
	return &Task{
		Name:  "docs",
		Short: "Serve the documentation with live reload",
		Options: []Option{
			{Name: "watch", Kind: Bool, Default: true, Negatable: true, Usage: "disable live reload and source watching"},
			{Name: "port", Kind: Int, Default: 8000, Usage: "port to serve on"},
		},
		Body: func(env Env, v Values) ([]Command, error) {
			return []Command{
				env.py("mkdocs").
					Arg("serve", "-a", "localhost:"+strconv.Itoa(v.Int("port"))).
					Flag(v.Bool("watch"), "--livereload", "--watch", "docs/", "--watch", "src").
					Build(),
			}, nil
		},
		Serve: &Serve{
			Marker:  func(v Values) string { return "Serving on " + localAddress(v) },
			Address: localAddress,
		},
	}
}

func localAddress(v Values) string {
	return "http://localhost:" + strconv.Itoa(v.Int("port"))
}

// imageOptions are shared by the docker tasks.
func imageOptions(platforms string) []Option {
	return []Option{
		{Name: "base-image", Kind: String, Default: "", Usage: "override the BASE_IMAGE build argument"},
		{Name: "name", Short: "n", Kind: String, Default: "", Usage: "image name (default: the project name)"},
		{Name: "registry", Short: "r", Kind: String, Default: "", Usage: "registry to prefix the image with"},
		{Name: "tag", Short: "t", Kind: String, Default: "latest", Usage: "image tag"},
		{Name: "platforms", Kind: List, Default: platforms, Choices: Platforms, Usage: "comma-separated target platforms"},
		{Name: "push", Kind: Bool, Default: false, Usage: "push the image to the registry"},
		{Name: "pip-config", Kind: String, Default: "", Usage: "pip configuration mounted as a build secret (default: " + DefaultPipConfig + ")"},
		{Name: "build", Kind: Bool, Default: false, Usage: "rebuild the wheelhouse first"},
	}
}

func pipConfig(env Env, v Values) string {
	if p := v.String("pip-config"); p != "" {
		return env.Expand(p)
	}
	return env.PipConfig
}

// ensurePipConfig creates an empty pip configuration when none exists, so
// the build secret always has a source.
func ensurePipConfig(env Env, v Values) error {
	path := env.Path(pipConfig(env, v))
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking pip config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating pip config directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("creating pip config: %w", err)
	}
	return f.Close()
}

func rebuildWheelhouse(v Values) []Invocation {
	if !v.Bool("build") {
		return nil
	}
	return []Invocation{{Task: "wheelhouse", Args: []string{"--clean"}}}
}

// buildx starts a docker buildx command up to and including the Dockerfile
// and provenance flags.
func buildx(env Env, v Values, dockerfile string) *Builder {
	name := v.String("name")
	if name == "" {
		name = env.ProjectName
	}
	return NewCommand("docker", "buildx", "build").
		Arg("--secret", Quote("id=pip-config,src="+pipConfig(env, v))).
		Arg("-t", Quote(ImageRef(v.String("registry"), name, v.String("tag")))).
		Arg("-f", dockerfile).
		Arg("--provenance=false")
}

func platformFlag(v Values) string {
	return "--platform='" + strings.Join(v.List("platforms"), ",") + "'"
}

// Docker builds the project image.
func Docker() *Task {
	return &Task{
		Name:     "docker",
		Short:    "Build the container image",
		Options:  imageOptions("linux/amd64"),
		Requires: rebuildWheelhouse,
		Prepare:  ensurePipConfig,
		Body: func(env Env, v Values) ([]Command, error) {
			args := NewBuildArgs().Set("BASE_IMAGE", v.String("base-image"))
			return []Command{
				buildx(env, v, "Dockerfile").
					Flag(v.Bool("push"), "--push").
					Arg(platformFlag(v)).
					BuildArgs(args).
					Arg(".").
					Build(),
			}, nil
		},
	}
}

// DockerCrossPlatform builds the project image with a separate build stage
// image, for targets the base image cannot compile on.
func DockerCrossPlatform() *Task {
	opts := append(imageOptions("linux/amd64,linux/arm64"),
		Option{Name: "build-image", Kind: String, Default: "", Usage: "override the BUILD_IMAGE build argument"},
		Option{Name: "load", Kind: Bool, Default: false, Usage: "load the image into the local docker daemon"},
		Option{Name: "output", Kind: String, Default: "", Usage: "export the image to a local directory"},
	)
	return &Task{
		Name:     "docker-cp",
		Short:    "Build the container image with a cross-platform build stage",
		Options:  opts,
		Requires: rebuildWheelhouse,
		Prepare:  ensurePipConfig,
		Body: func(env Env, v Values) ([]Command, error) {
			args := NewBuildArgs().
				Set("BASE_IMAGE", v.String("base-image")).
				Set("BUILD_IMAGE", v.String("build-image"))

			b := buildx(env, v, "Dockerfile.cross-platform")
			if dest := Destination(v.Bool("push"), v.Bool("load"), v.String("output")); dest != "" {
				b.Arg(Quote(dest))
			}
			return []Command{
				b.Arg(platformFlag(v)).BuildArgs(args).Arg(".").Build(),
			}, nil
		},
	}
}
