package templates

import (
	"bytes"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"text/template"
)

// funcs are available to every template.
var funcs = template.FuncMap{
	"nodot": func(s string) string { return strings.ReplaceAll(s, ".", "") },
	"quote": strconv.Quote,
}

// Renderer handles template rendering with data substitution.
type Renderer struct {
	data    TemplateData
	variant Variant
	fsys    fs.FS
}

// NewRenderer creates a renderer for data. The variant named by data.CLI
// must exist.
func NewRenderer(data TemplateData) (*Renderer, error) {
	v, err := Get(data.CLI)
	if err != nil {
		return nil, err
	}
	return &Renderer{data: data, variant: v, fsys: FS()}, nil
}

// RenderFile renders a single template file and returns the content.
func (r *Renderer) RenderFile(name string, content []byte) ([]byte, error) {
	tmpl, err := template.New(name).Funcs(funcs).Option("missingkey=error").Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("parsing template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, r.data); err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}

	return buf.Bytes(), nil
}

// Render renders every file the variant keeps, in lexical path order.
func (r *Renderer) Render() ([]TemplateFile, error) {
	var files []TemplateFile

	err := fs.WalkDir(r.fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		target := r.targetPath(path)
		if target == "" {
			return nil
		}

		content, err := fs.ReadFile(r.fsys, path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		if strings.HasSuffix(path, tmplSuffix) {
			content, err = r.RenderFile(path, content)
			if err != nil {
				return fmt.Errorf("rendering %s: %w", path, err)
			}
		}

		files = append(files, TemplateFile{
			SourcePath: path,
			TargetPath: target,
			Content:    content,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking template: %w", err)
	}

	return files, nil
}

// targetPath maps a template path to its output path, or "" when the
// variant drops it.
func (r *Renderer) targetPath(path string) string {
	target := r.variant.apply(strings.TrimSuffix(path, tmplSuffix))
	return strings.ReplaceAll(target, slugPlaceholder, r.data.Slug)
}

// ListFiles returns the target paths the variant produces without rendering.
func (r *Renderer) ListFiles() ([]string, error) {
	var files []string
	err := fs.WalkDir(r.fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if target := r.targetPath(path); target != "" {
			files = append(files, target)
		}
		return nil
	})
	return files, err
}
