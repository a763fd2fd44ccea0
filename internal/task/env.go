package task

import (
	"os"
	"path/filepath"
	"runtime"
)

// DefaultPipConfig is the pip configuration mounted as a build secret when a
// container task is not given one explicitly. "~" is expanded against Home.
const DefaultPipConfig = "~/.config/pip/pip.conf"

// Env describes the project a task runs against.
type Env struct {
	// Root is the project root; commands run here.
	Root string

	// Python is the virtual environment interpreter.
	Python string

	// ProjectName is the distribution name, used as the default image name.
	ProjectName string

	// Slug is the importable package name under src/.
	Slug string

	// PipConfig is the default pip configuration path.
	PipConfig string

	// Home is the user home directory used to expand "~".
	Home string
}

// NewEnv builds an Env for the project at root, filling the interpreter and
// pip configuration defaults.
func NewEnv(root, projectName, slug string) Env {
	home, _ := os.UserHomeDir()
	env := Env{
		Root:        root,
		Python:      VenvPython(root),
		ProjectName: projectName,
		Slug:        slug,
		Home:        home,
	}
	env.PipConfig = env.Expand(DefaultPipConfig)
	return env
}

// VenvPython returns the interpreter inside root/.venv.
func VenvPython(root string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(root, ".venv", "Scripts", "python.exe")
	}
	return filepath.Join(root, ".venv", "bin", "python")
}

// Expand replaces a leading "~" with the home directory.
func (e Env) Expand(path string) string {
	if path == "~" {
		return e.Home
	}
	if len(path) > 1 && path[0] == '~' && (path[1] == '/' || path[1] == filepath.Separator) {
		return filepath.Join(e.Home, path[2:])
	}
	return path
}

// Path resolves a project-relative path against Root.
func (e Env) Path(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(e.Root, rel)
}

// py starts a command running a module with the project interpreter.
func (e Env) py(module string) *Builder {
	return NewCommand(Quote(e.Python), "-m", module)
}
