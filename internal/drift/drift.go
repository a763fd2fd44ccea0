// Package drift compares a project against a fresh rendering of the
// template it was generated from.
package drift

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gonvenience/ytbx"
	"github.com/homeport/dyff/pkg/dyff"

	"github.com/pyskel/cli/internal/output"
	"github.com/pyskel/cli/internal/templates"
)

// Report is the result of a drift comparison.
type Report struct {
	// Added files exist in the project but the template does not produce them.
	Added []string

	// Missing files are produced by the template but absent from the project.
	Missing []string

	// Modified files differ from the template.
	Modified []output.ModifiedItem

	// Unchanged counts files identical to the template.
	Unchanged int
}

// IsEmpty returns true if there are no changes.
func (r *Report) IsEmpty() bool {
	return len(r.Added) == 0 && len(r.Missing) == 0 && len(r.Modified) == 0
}

// String renders the report for the terminal.
func (r *Report) String() string {
	return output.RenderDiff(r.Added, r.Missing, r.Modified)
}

// Status renders one line per changed file with its status, sorted by path.
func (r *Report) Status() string {
	type entry struct{ path, status string }
	entries := make([]entry, 0, len(r.Added)+len(r.Missing)+len(r.Modified))
	for _, p := range r.Added {
		entries = append(entries, entry{p, output.StatusAdded})
	}
	for _, p := range r.Missing {
		entries = append(entries, entry{p, output.StatusMissing})
	}
	for _, m := range r.Modified {
		entries = append(entries, entry{m.Name, output.StatusModified})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].path < entries[j].path })

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, output.FormatFileLine(e.path, e.status))
	}
	return strings.Join(lines, "\n")
}

// Options configures Compare.
type Options struct {
	// UseColor enables dyff's colored table output.
	UseColor bool
}

// Compare renders the template with data in memory and compares it with
// the project at root.
func Compare(root string, data templates.TemplateData, opts Options) (*Report, error) {
	data = data.WithDefaults()
	renderer, err := templates.NewRenderer(data)
	if err != nil {
		return nil, err
	}
	files, err := renderer.Render()
	if err != nil {
		return nil, err
	}

	report := &Report{}
	produced := make(map[string]bool, len(files))

	for _, f := range files {
		produced[f.TargetPath] = true

		actual, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(f.TargetPath)))
		if errors.Is(err, fs.ErrNotExist) {
			report.Missing = append(report.Missing, f.TargetPath)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f.TargetPath, err)
		}

		diff, err := compareFile(f.TargetPath, f.Content, actual, opts.UseColor)
		if err != nil {
			return nil, err
		}
		if diff == "" {
			report.Unchanged++
			continue
		}
		report.Modified = append(report.Modified, output.ModifiedItem{Name: f.TargetPath, Diff: diff})
	}

	added, err := strayFiles(root, data, produced)
	if err != nil {
		return nil, err
	}
	report.Added = added

	return report, nil
}

// strayFiles returns files other CLI variants would produce that exist in
// the project although the current variant does not produce them.
func strayFiles(root string, data templates.TemplateData, produced map[string]bool) ([]string, error) {
	seen := make(map[string]bool)
	var stray []string
	for _, name := range templates.Names() {
		if name == data.CLI {
			continue
		}
		alt := data
		alt.CLI = name
		r, err := templates.NewRenderer(alt)
		if err != nil {
			return nil, err
		}
		paths, err := r.ListFiles()
		if err != nil {
			return nil, err
		}
		for _, p := range paths {
			if produced[p] || seen[p] {
				continue
			}
			seen[p] = true
			if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(p))); err == nil {
				stray = append(stray, p)
			}
		}
	}
	sort.Strings(stray)
	return stray, nil
}

// compareFile returns a rendered diff, or "" when the files are equivalent.
// YAML and JSON files are compared structurally; a parse failure falls
// back to a line comparison.
func compareFile(name string, want, got []byte, useColor bool) (string, error) {
	if bytes.Equal(want, got) {
		return "", nil
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".yml", ".yaml", ".json":
		diff, err := diffYAML(name, want, got, useColor)
		if err == nil {
			return diff, nil
		}
		output.Debug("structural comparison failed, comparing lines", "file", name, "error", err)
	}

	return diffLines(want, got), nil
}

// diffYAML computes a YAML-aware diff using dyff.
func diffYAML(name string, want, got []byte, useColor bool) (string, error) {
	from, err := parseYAMLInput("template/"+name, want)
	if err != nil {
		return "", fmt.Errorf("parsing template YAML: %w", err)
	}
	to, err := parseYAMLInput("project/"+name, got)
	if err != nil {
		return "", fmt.Errorf("parsing project YAML: %w", err)
	}

	report, err := dyff.CompareInputFiles(from, to)
	if err != nil {
		return "", fmt.Errorf("comparing YAML: %w", err)
	}
	if len(report.Diffs) == 0 {
		return "", nil
	}

	return renderDyffReport(report, useColor)
}

// parseYAMLInput parses YAML bytes into a dyff input file.
func parseYAMLInput(name string, data []byte) (ytbx.InputFile, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return ytbx.InputFile{Location: name}, nil
	}

	docs, err := ytbx.LoadYAMLDocuments(data)
	if err != nil {
		return ytbx.InputFile{}, err
	}

	return ytbx.InputFile{
		Location:  name,
		Documents: docs,
	}, nil
}

// renderDyffReport renders a dyff report to a string.
func renderDyffReport(report dyff.Report, useColor bool) (string, error) {
	var buf bytes.Buffer

	reportWriter := &dyff.HumanReport{
		Report:            report,
		DoNotInspectCerts: true,
		NoTableStyle:      !useColor,
		OmitHeader:        true,
	}

	if err := reportWriter.WriteReport(io.Writer(&buf)); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}

	lines := strings.Split(buf.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}

	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}

// diffLines reports lines only in the template ("-") or only in the
// project ("+"), in file order. Line multiplicity is respected.
func diffLines(want, got []byte) string {
	wantLines := strings.Split(strings.TrimRight(string(want), "\n"), "\n")
	gotLines := strings.Split(strings.TrimRight(string(got), "\n"), "\n")

	remaining := make(map[string]int, len(gotLines))
	for _, l := range gotLines {
		remaining[l]++
	}
	var sb strings.Builder
	for _, l := range wantLines {
		if remaining[l] > 0 {
			remaining[l]--
			continue
		}
		sb.WriteString("- " + l + "\n")
	}

	expected := make(map[string]int, len(wantLines))
	for _, l := range wantLines {
		expected[l]++
	}
	for _, l := range gotLines {
		if expected[l] > 0 {
			expected[l]--
			continue
		}
		sb.WriteString("+ " + l + "\n")
	}

	if sb.Len() == 0 {
		// Same lines in a different order, or whitespace at the end.
		return "~ content differs in line order or trailing whitespace"
	}
	return strings.TrimRight(sb.String(), "\n")
}
