package templates

import (
	"fmt"
	"os"
	"path/filepath"

	oerrors "github.com/pyskel/cli/internal/errors"
	"github.com/pyskel/cli/internal/output"
)

// Generator handles project generation from the template.
type Generator struct {
	opts GenerateOptions
}

// NewGenerator creates a new generator with the given options.
func NewGenerator(opts GenerateOptions) *Generator {
	return &Generator{opts: opts}
}

// TargetDir returns the directory the project is generated in.
func (g *Generator) TargetDir() string {
	return filepath.Join(g.opts.OutputDir, g.opts.Data.ProjectName)
}

// Generate creates a new project from the template.
func (g *Generator) Generate() (*GenerateResult, error) {
	data := g.opts.Data.WithDefaults()
	if err := data.Validate(); err != nil {
		return nil, err
	}

	targetDir := filepath.Join(g.opts.OutputDir, data.ProjectName)
	if err := g.checkTargetDir(targetDir); err != nil {
		return nil, err
	}

	output.Debug("generating project",
		"name", data.ProjectName,
		"slug", data.Slug,
		"cli", data.CLI,
		"target", targetDir)

	renderer, err := NewRenderer(data)
	if err != nil {
		return nil, err
	}
	files, err := renderer.Render()
	if err != nil {
		return nil, fmt.Errorf("rendering template: %w", err)
	}

	created := make([]string, 0, len(files))
	for _, f := range files {
		targetPath := filepath.Join(targetDir, filepath.FromSlash(f.TargetPath))

		parentDir := filepath.Dir(targetPath)
		if err := os.MkdirAll(parentDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating directory %s: %w", parentDir, err)
		}

		if err := os.WriteFile(targetPath, f.Content, 0o644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", targetPath, err)
		}

		output.Debug("created file", "path", f.TargetPath)
		created = append(created, f.TargetPath)
	}

	return &GenerateResult{
		Files:     created,
		Variant:   data.CLI,
		TargetDir: targetDir,
		Data:      data,
	}, nil
}

// checkTargetDir refuses a non-empty directory unless Force is set.
func (g *Generator) checkTargetDir(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking target directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading target directory: %w", err)
	}

	if len(entries) > 0 && !g.opts.Force {
		return oerrors.NewValidationError("target directory is not empty", dir, "",
			"use --force to overwrite existing files")
	}

	return nil
}
