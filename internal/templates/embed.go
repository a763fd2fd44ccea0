package templates

import (
	"embed"
	"io/fs"
)

// root is the template directory inside projectFS.
const root = "project"

//go:embed all:project
var projectFS embed.FS

// slugPlaceholder is replaced by the package slug in template paths.
const slugPlaceholder = "__slug__"

// tmplSuffix marks files rendered with text/template; others are copied.
const tmplSuffix = ".tmpl"

// FS returns the template tree rooted at the project directory.
func FS() fs.FS {
	sub, err := fs.Sub(projectFS, root)
	if err != nil {
		// root is a compile-time constant embedded above.
		panic(err)
	}
	return sub
}
