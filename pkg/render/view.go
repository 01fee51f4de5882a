package render

import (
	"strconv"
	"time"

	"github.com/goliatone/go-paramconfig/pkg/codec"
	"github.com/goliatone/go-paramconfig/pkg/control"
	"github.com/goliatone/go-paramconfig/pkg/model"
)

// Control is a flattened, display-ready copy of one document node.
type Control struct {
	ID       string    `json:"id"`
	Kind     string    `json:"kind,omitempty"`
	Role     string    `json:"role,omitempty"`
	Label    string    `json:"label,omitempty"`
	Tooltip  string    `json:"tooltip,omitempty"`
	Value    string    `json:"value,omitempty"`
	Checked  bool      `json:"checked,omitempty"`
	Loaded   bool      `json:"loaded,omitempty"`
	Options  []string  `json:"options,omitempty"`
	Min      string    `json:"min,omitempty"`
	Max      string    `json:"max,omitempty"`
	Step     string    `json:"step,omitempty"`
	Group    bool      `json:"group,omitempty"`
	Children []Control `json:"children,omitempty"`
}

// BuildView snapshots the document below its root.
func BuildView(doc *control.Document) []Control {
	if doc == nil {
		return nil
	}
	return buildChildren(doc.Root())
}

func buildChildren(node *control.Node) []Control {
	children := node.Children()
	out := make([]Control, 0, len(children))
	for _, child := range children {
		out = append(out, buildControl(child))
	}
	return out
}

func buildControl(node *control.Node) Control {
	if node.IsGroup() {
		return Control{
			ID:       node.ID(),
			Label:    node.Label(),
			Group:    true,
			Children: buildChildren(node),
		}
	}

	d := node.Descriptor()
	c := Control{
		ID:      d.ID,
		Kind:    string(d.Kind),
		Role:    string(d.Role),
		Label:   d.Label,
		Tooltip: d.Tooltip,
		Options: d.Options,
	}
	switch d.Kind {
	case model.KindCheckbox:
		c.Checked, _ = d.Value.(bool)
	case model.KindFile:
		s, _ := d.Value.(string)
		c.Loaded = s != ""
	default:
		c.Value = FormatValue(d.Kind, d.Value)
	}
	if d.Attrs != nil {
		c.Min = formatBound(d.Attrs.Min)
		c.Max = formatBound(d.Attrs.Max)
		c.Step = formatBound(d.Attrs.Step)
	}
	return c
}

// FormatValue renders a runtime value the way an HTML input expects it.
// File and button values have no textual form.
func FormatValue(kind model.Kind, value any) string {
	switch kind {
	case model.KindCheckbox:
		if b, _ := value.(bool); b {
			return "true"
		}
		return "false"
	case model.KindNumber, model.KindRange:
		if f, ok := value.(float64); ok {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
	case model.KindColor:
		if s, ok := value.(string); ok && s != "" {
			if normalised, err := codec.NormaliseColor(s); err == nil {
				return "#" + normalised
			}
		}
	case model.KindDatetime:
		if t, ok := value.(time.Time); ok {
			return t.Format(codec.DatetimeLayout)
		}
	case model.KindText, model.KindSelect:
		s, _ := value.(string)
		return s
	}
	return ""
}

func formatBound(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// Walk visits controls depth first.
func Walk(controls []Control, fn func(Control, int)) {
	walk(controls, fn, 0)
}

func walk(controls []Control, fn func(Control, int), depth int) {
	for _, c := range controls {
		fn(c, depth)
		if c.Group {
			walk(c.Children, fn, depth+1)
		}
	}
}
