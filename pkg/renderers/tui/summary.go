package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-paramconfig/pkg/control"
	"github.com/goliatone/go-paramconfig/pkg/model"
	"github.com/goliatone/go-paramconfig/pkg/render"
)

// SummaryName is the registry name of the plain-text renderer.
const SummaryName = "text"

// Summary renders a document as "label: value" lines. Buttons and the row
// controls of collections are left out.
type Summary struct{}

var _ render.Renderer = Summary{}

func (Summary) Name() string        { return SummaryName }
func (Summary) ContentType() string { return "text/plain; charset=utf-8" }

func (Summary) Render(ctx context.Context, doc *control.Document, options render.RenderOptions) ([]byte, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}
	var b strings.Builder
	if options.Title != "" {
		b.WriteString(options.Title)
		b.WriteString("\n")
	}
	row := 0
	render.Walk(render.BuildView(doc), func(c render.Control, depth int) {
		indent := strings.Repeat("  ", depth)
		switch {
		case c.Group && c.Label != "":
			row = 0
			fmt.Fprintf(&b, "%s%s:\n", indent, c.Label)
		case c.Group && len(c.Children) > 0 && c.Children[0].Role == string(control.RoleRowSelect):
			row++
			fmt.Fprintf(&b, "%s#%d\n", indent, row)
		case c.Group, c.Kind == string(model.KindButton), c.Role == string(control.RoleRowSelect):
		case c.Kind == string(model.KindCheckbox):
			fmt.Fprintf(&b, "%s%s: %t\n", indent, c.Label, c.Checked)
		case c.Kind == string(model.KindFile):
			state := "empty"
			if c.Loaded {
				state = "loaded"
			}
			fmt.Fprintf(&b, "%s%s: %s\n", indent, c.Label, state)
		default:
			fmt.Fprintf(&b, "%s%s: %s\n", indent, c.Label, c.Value)
		}
	})
	if options.Query != "" {
		fmt.Fprintf(&b, "?%s\n", options.Query)
	}
	return []byte(b.String()), ctx.Err()
}
