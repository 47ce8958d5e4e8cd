// Package theme is the built in set of templates and static files.
package theme

import "embed"

// FS holds templates/*.tmpl and static/*.
//
//go:embed templates static
var FS embed.FS
