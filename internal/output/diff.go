package output

import (
	"fmt"
	"strings"
)

// ModifiedItem represents a modified file for rendering.
type ModifiedItem struct {
	Name string
	Diff string
}

// RenderDiff renders a drift report. Added files exist in the project although
// the template does not produce them, missing files are produced by the
// template but absent from the project, and modified files differ.
func RenderDiff(added, missing []string, modified []ModifiedItem) string {
	if len(added) == 0 && len(missing) == 0 && len(modified) == 0 {
		return "No changes detected."
	}

	var sb strings.Builder

	if len(added) > 0 {
		sb.WriteString(StatusStyle(StatusAdded).Render("Added:"))
		sb.WriteString("\n")
		for _, name := range added {
			sb.WriteString("  + ")
			sb.WriteString(StatusStyle(StatusAdded).Render(name))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	if len(missing) > 0 {
		sb.WriteString(StatusStyle(StatusMissing).Render("Missing:"))
		sb.WriteString("\n")
		for _, name := range missing {
			sb.WriteString("  - ")
			sb.WriteString(StatusStyle(StatusMissing).Render(name))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	if len(modified) > 0 {
		sb.WriteString(StatusStyle(StatusModified).Render("Modified:"))
		sb.WriteString("\n")
		for _, mod := range modified {
			sb.WriteString("  ~ ")
			sb.WriteString(StatusStyle(StatusModified).Render(mod.Name))
			sb.WriteString("\n")
			sb.WriteString(IndentDiff(mod.Diff, "    "))
			sb.WriteString("\n")
		}
	}

	sb.WriteString("Summary: ")
	sb.WriteString(diffSummary(len(added), len(missing), len(modified)))
	sb.WriteString("\n")

	return sb.String()
}

// IndentDiff indents every non-empty line of diff.
func IndentDiff(diff string, indent string) string {
	if diff == "" {
		return ""
	}

	var sb strings.Builder
	for _, line := range strings.Split(diff, "\n") {
		if line != "" {
			sb.WriteString(indent)
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func diffSummary(added, missing, modified int) string {
	parts := make([]string, 0, 3)
	if added > 0 {
		parts = append(parts, fmt.Sprintf("%d added", added))
	}
	if missing > 0 {
		parts = append(parts, fmt.Sprintf("%d missing", missing))
	}
	if modified > 0 {
		parts = append(parts, fmt.Sprintf("%d modified", modified))
	}
	return strings.Join(parts, ", ")
}
