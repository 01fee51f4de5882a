package template

import (
	"errors"
	"io"
)

var (
	ErrFilterRequired = errors.New("template: filter name and function required")
	ErrFilterExists   = errors.New("template: filter already registered")
)

// FilterFunc transforms a template value. param is nil when the filter is
// used without an argument.
type FilterFunc func(input any, param any) (any, error)

// TemplateRenderer is the engine seam the HTML renderer depends on.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn FilterFunc) error
	GlobalContext(data any) error
}
