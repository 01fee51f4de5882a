package paramconfig

import (
	"io/fs"

	"github.com/goliatone/go-paramconfig/pkg/renderers/html"
)

// EmbeddedTemplates exposes the built-in HTML templates so callers can copy
// or override them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return html.TemplatesFS()
}
