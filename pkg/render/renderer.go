// Package render defines the renderer contract and a renderer-agnostic view
// of a control document.
package render

import (
	"context"

	"github.com/goliatone/go-paramconfig/pkg/control"
)

// Renderer converts a control document into a byte representation.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, doc *control.Document, options RenderOptions) ([]byte, error)
}
