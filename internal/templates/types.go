// Package templates provides the embedded Python project template and the
// generator that renders it.
package templates

// TemplateData holds the answers passed to template rendering.
type TemplateData struct {
	// ProjectName is the distribution name and target directory (e.g., "my-app").
	ProjectName string

	// Slug is the importable package name (e.g., "my_app").
	Slug string

	// Version is the initial package version.
	Version string

	Description string
	Author      string
	Email       string

	// Org is the GitHub organization or user owning the repository.
	Org string

	// RepoName is the GitHub repository name.
	RepoName string

	// RepoURL is the repository home page.
	RepoURL string

	// CLI is the command-line interface variant.
	CLI string

	// PythonVersion is the minimum supported interpreter, such as "3.12".
	PythonVersion string
}

// GenerateOptions configures project generation behavior.
type GenerateOptions struct {
	// OutputDir is the parent directory; the project is created in
	// OutputDir/ProjectName.
	OutputDir string

	// Data are the template answers.
	Data TemplateData

	// Force allows writing into a non-empty directory.
	Force bool
}

// GenerateResult contains the result of project generation.
type GenerateResult struct {
	// Files is the list of files created, relative to TargetDir.
	Files []string

	// Variant is the CLI variant that was applied.
	Variant string

	// TargetDir is the directory where files were created.
	TargetDir string

	// Data are the answers after defaults were applied.
	Data TemplateData
}

// TemplateFile represents a file to be generated from the template.
type TemplateFile struct {
	// SourcePath is the path within the embedded filesystem.
	SourcePath string

	// TargetPath is the output path relative to the project root.
	TargetPath string

	// Content is the rendered content.
	Content []byte
}
