package config

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode"
)

// Slugify derives a Python package name from a project name: lower case,
// with every run of characters outside [a-z0-9_] collapsed to "_".
func Slugify(name string) string {
	var b strings.Builder
	sep := false
	for _, r := range strings.ToLower(name) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			if sep && b.Len() > 0 {
				b.WriteByte('_')
			}
			sep = false
			b.WriteRune(r)
			continue
		}
		sep = true
	}
	slug := b.String()
	if slug != "" && unicode.IsDigit(rune(slug[0])) {
		slug = "_" + slug
	}
	return slug
}

// CLIVariants are the supported command-line interface choices.
var CLIVariants = []string{"none", "argparse", "click", "typer"}

var (
	projectNameRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)
	slugRegex        = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	versionRegex     = regexp.MustCompile(`^[0-9]+\.[0-9]+\.[0-9]+([-+][0-9A-Za-z.-]+)?$`)
	pythonRegex      = regexp.MustCompile(`^3\.[0-9]+$`)
)

// pythonKeywords cannot be used as package names.
var pythonKeywords = map[string]bool{
	"False": true, "None": true, "True": true, "and": true, "as": true,
	"assert": true, "async": true, "await": true, "break": true, "class": true,
	"continue": true, "def": true, "del": true, "elif": true, "else": true,
	"except": true, "finally": true, "for": true, "from": true, "global": true,
	"if": true, "import": true, "in": true, "is": true, "lambda": true,
	"nonlocal": true, "not": true, "or": true, "pass": true, "raise": true,
	"return": true, "try": true, "while": true, "with": true, "yield": true,
}

// ValidateProjectName checks a distribution name.
func ValidateProjectName(name string) error {
	if !projectNameRegex.MatchString(name) {
		return &ValidationError{
			Field:   "project.name",
			Message: fmt.Sprintf("%q must start with a letter and contain only letters, digits, '-' and '_'", name),
		}
	}
	return nil
}

// ValidateSlug checks that slug is importable as a Python package.
func ValidateSlug(slug string) error {
	if !slugRegex.MatchString(slug) {
		return &ValidationError{
			Field:   "project.slug",
			Message: fmt.Sprintf("%q is not a valid Python identifier", slug),
		}
	}
	if pythonKeywords[slug] {
		return &ValidationError{
			Field:   "project.slug",
			Message: fmt.Sprintf("%q is a Python keyword", slug),
		}
	}
	return nil
}

// ValidateVersion checks a MAJOR.MINOR.PATCH version with optional suffix.
func ValidateVersion(version string) error {
	if !versionRegex.MatchString(version) {
		return &ValidationError{
			Field:   "project.version",
			Message: fmt.Sprintf("%q is not a semantic version (MAJOR.MINOR.PATCH)", version),
		}
	}
	return nil
}

// ValidatePythonVersion checks a 3.N interpreter version.
func ValidatePythonVersion(version string) error {
	if !pythonRegex.MatchString(version) {
		return &ValidationError{
			Field:   "project.pythonVersion",
			Message: fmt.Sprintf("%q is not a Python 3 version such as 3.12", version),
		}
	}
	return nil
}

// ValidateCLI checks a command-line interface variant name.
func ValidateCLI(cli string) error {
	if !slices.Contains(CLIVariants, cli) {
		return &ValidationError{
			Field:   "project.cli",
			Message: fmt.Sprintf("%q is not one of %s", cli, strings.Join(CLIVariants, ", ")),
		}
	}
	return nil
}
