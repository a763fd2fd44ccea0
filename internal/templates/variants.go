package templates

import (
	"fmt"
	"strings"

	"github.com/pyskel/cli/internal/config"
)

// Variant describes how one CLI choice shapes the generated tree. Paths
// are template paths with the ".tmpl" suffix removed and the slug
// placeholder intact. A Drop entry ending in "/" removes a directory.
type Variant struct {
	Name        string
	Description string
	Drop        []string
	Rename      map[string]string
}

const cliDir = "src/" + slugPlaceholder + "/cli/"

func appFile(name string) string {
	return cliDir + "app." + name + ".py"
}

// cliVariant keeps the app.<name>.py module as app.py and drops the others.
func cliVariant(name, description string) Variant {
	v := Variant{
		Name:        name,
		Description: description,
		Rename:      map[string]string{appFile(name): cliDir + "app.py"},
	}
	for _, other := range []string{"argparse", "click", "typer"} {
		if other != name {
			v.Drop = append(v.Drop, appFile(other))
		}
	}
	return v
}

// variants is the internal registry of CLI variants, resolved once.
var variants = map[string]Variant{
	"none": {
		Name:        "none",
		Description: "Library only, no command-line interface",
		Drop: []string{
			cliDir,
			"src/" + slugPlaceholder + "/__main__.py",
			"tests/e2e/test_cli.py",
		},
	},
	"argparse": cliVariant("argparse", "Standard library argparse entrypoint"),
	"click":    cliVariant("click", "Click command group"),
	"typer":    cliVariant("typer", "Typer application"),
}

// DefaultVariant is used when no CLI is chosen.
const DefaultVariant = config.DefaultCLI

// Get returns a variant by name.
func Get(name string) (Variant, error) {
	v, ok := variants[name]
	if !ok {
		return Variant{}, fmt.Errorf("unknown CLI variant %q; valid variants: %s", name, strings.Join(Names(), ", "))
	}
	return v, nil
}

// List returns all variants in presentation order.
func List() []Variant {
	out := make([]Variant, 0, len(config.CLIVariants))
	for _, name := range config.CLIVariants {
		out = append(out, variants[name])
	}
	return out
}

// Names returns all variant names.
func Names() []string {
	return append([]string(nil), config.CLIVariants...)
}

// dropped reports whether path is removed by the variant.
func (v Variant) dropped(path string) bool {
	for _, d := range v.Drop {
		if path == d || (strings.HasSuffix(d, "/") && strings.HasPrefix(path, d)) {
			return true
		}
	}
	return false
}

// apply maps a template path to its target path, or "" when dropped.
func (v Variant) apply(path string) string {
	if v.dropped(path) {
		return ""
	}
	if to, ok := v.Rename[path]; ok {
		return to
	}
	return path
}
