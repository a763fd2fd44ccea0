package templates

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyskel/cli/internal/config"
	oerrors "github.com/pyskel/cli/internal/errors"
)

func testData(cli string) TemplateData {
	return TemplateData{
		ProjectName: "test-project",
		Version:     "1.2.0",
		Author:      "Jane Doe",
		Email:       "jane@example.com",
		Org:         "acme",
		CLI:         cli,
	}
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"none", "argparse", "click", "typer"}, Names())
	assert.Len(t, List(), 4)

	_, err := Get("fire")
	assert.Error(t, err)
}

func TestWithDefaults(t *testing.T) {
	d := TemplateData{ProjectName: "test-project"}.WithDefaults()

	assert.Equal(t, "test_project", d.Slug)
	assert.Equal(t, "0.1.0", d.Version)
	assert.Equal(t, "none", d.CLI)
	assert.Equal(t, "3.12", d.PythonVersion)
	assert.Equal(t, DefaultOrg, d.Org)
	assert.Equal(t, "test-project", d.RepoName)
	assert.Equal(t, "https://github.com/my-org/test-project", d.RepoURL)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, testData("none").WithDefaults().Validate())

	bad := TemplateData{ProjectName: "1bad", Slug: "for", Version: "x", CLI: "fire", PythonVersion: "2.7"}
	err := bad.Validate()
	var errs config.ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.Len(t, errs, 5)
}

func TestListFiles_Variants(t *testing.T) {
	tests := []struct {
		cli     string
		present []string
		absent  []string
	}{
		{
			cli: "none",
			present: []string{
				".coveragerc", ".gitignore", "README.md", "pyproject.toml", "setup.cfg",
				"release.config.js", "sonar-project.properties", "Dockerfile",
				"Dockerfile.cross-platform", "mkdocs.yml", "pyskel.yaml",
				".github/workflows/ci.yml", ".github/workflows/cd.yml",
				".github/workflows/semantic_release.yml", ".vscode/settings.json",
				"docs/index.md", "tests/unit/conftest.py", "tests/unit/test_version.py",
				"tests/e2e/conftest.py", "src/test_project/__init__.py",
				"src/test_project/__about__.py", "src/test_project/py.typed",
			},
			absent: []string{
				"src/test_project/cli/__init__.py", "src/test_project/__main__.py",
				"tests/e2e/test_cli.py",
			},
		},
		{
			cli: "argparse",
			present: []string{
				"src/test_project/cli/__init__.py", "src/test_project/cli/app.py",
				"src/test_project/__main__.py", "tests/e2e/test_cli.py",
			},
			absent: []string{
				"src/test_project/cli/app.argparse.py", "src/test_project/cli/app.click.py",
				"src/test_project/cli/app.typer.py",
			},
		},
		{
			cli:     "typer",
			present: []string{"src/test_project/cli/app.py"},
			absent:  []string{"src/test_project/cli/app.typer.py", "src/test_project/cli/app.click.py"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.cli, func(t *testing.T) {
			r, err := NewRenderer(testData(tt.cli).WithDefaults())
			require.NoError(t, err)
			files, err := r.ListFiles()
			require.NoError(t, err)

			for _, f := range tt.present {
				assert.Contains(t, files, f)
			}
			for _, f := range tt.absent {
				assert.NotContains(t, files, f)
			}
			for _, f := range files {
				assert.NotContains(t, f, slugPlaceholder)
				assert.False(t, strings.HasSuffix(f, tmplSuffix), f)
			}
		})
	}
}

func render(t *testing.T, data TemplateData) map[string]string {
	t.Helper()
	r, err := NewRenderer(data.WithDefaults())
	require.NoError(t, err)
	files, err := r.Render()
	require.NoError(t, err)

	out := make(map[string]string, len(files))
	for _, f := range files {
		out[f.TargetPath] = string(f.Content)
	}
	return out
}

func TestRender_Content(t *testing.T) {
	files := render(t, testData("click"))

	assert.Contains(t, files["pyproject.toml"], `name = "test-project"`)
	assert.Contains(t, files["pyproject.toml"], `"click",`)
	assert.Contains(t, files["pyproject.toml"], `test-project = "test_project.cli.app:cli"`)
	assert.Contains(t, files["pyproject.toml"], `target-version = ["py312"]`)
	assert.Contains(t, files["src/test_project/__about__.py"], `__version__ = "1.2.0"`)
	assert.Contains(t, files["src/test_project/__main__.py"], "from test_project.cli.app import cli")
	assert.Contains(t, files["src/test_project/cli/app.py"], "import click")
	assert.Contains(t, files["tests/e2e/test_cli.py"], "from click.testing import CliRunner")
	assert.Contains(t, files["setup.cfg"], "--cov-report html:coverage-report")
	assert.Contains(t, files["sonar-project.properties"], "sonar.projectKey=acme_test-project")

	// Files without the template suffix are copied verbatim.
	assert.Contains(t, files[".github/workflows/ci.yml"], "${{ secrets.SONAR_TOKEN }}")
}

func TestRender_NoneVariant(t *testing.T) {
	files := render(t, testData("none"))

	assert.NotContains(t, files["pyproject.toml"], "[project.scripts]")
	assert.NotContains(t, files["Dockerfile"], "ENTRYPOINT")
}

func TestRender_AnswersRoundTrip(t *testing.T) {
	data := testData("typer")
	data.Description = `Says "hello"`
	files := render(t, data)

	path := filepath.Join(t.TempDir(), config.FileName)
	require.NoError(t, os.WriteFile(path, []byte(files["pyskel.yaml"]), 0o644))

	cfg, err := config.NewLoader().Load(path)
	require.NoError(t, err)
	assert.Equal(t, data.WithDefaults(), DataFromConfig(cfg))
}

func TestGenerate(t *testing.T) {
	out := t.TempDir()
	g := NewGenerator(GenerateOptions{OutputDir: out, Data: testData("argparse")})

	result, err := g.Generate()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(out, "test-project"), result.TargetDir)
	assert.Equal(t, g.TargetDir(), result.TargetDir)
	assert.Equal(t, "argparse", result.Variant)
	assert.Equal(t, "test_project", result.Data.Slug)
	assert.Contains(t, result.Files, "src/test_project/cli/app.py")
	assert.FileExists(t, filepath.Join(result.TargetDir, "src", "test_project", "cli", "app.py"))
	assert.FileExists(t, filepath.Join(result.TargetDir, ".github", "workflows", "ci.yml"))
	assert.NoFileExists(t, filepath.Join(result.TargetDir, "src", "test_project", "cli", "app.click.py"))
}

func TestGenerate_RefusesNonEmptyTarget(t *testing.T) {
	out := t.TempDir()
	target := filepath.Join(out, "test-project")
	require.NoError(t, os.MkdirAll(target, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(target, "keep.txt"), []byte("x"), 0o644))

	_, err := NewGenerator(GenerateOptions{OutputDir: out, Data: testData("none")}).Generate()
	require.Error(t, err)
	assert.ErrorIs(t, err, oerrors.ErrValidation)

	_, err = NewGenerator(GenerateOptions{OutputDir: out, Data: testData("none"), Force: true}).Generate()
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(target, "keep.txt"))
}

func TestGenerate_InvalidAnswers(t *testing.T) {
	data := testData("none")
	data.Slug = "import"
	_, err := NewGenerator(GenerateOptions{OutputDir: t.TempDir(), Data: data}).Generate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Python keyword")
}
