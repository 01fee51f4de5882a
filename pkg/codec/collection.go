package codec

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-paramconfig/pkg/model"
)

// ErrRowShape reports a collection value whose cells do not line up with
// the configured child fields.
var ErrRowShape = fmt.Errorf("%w: collection row shape", ErrInvalidValue)

// CollectionCodec exposes the child codecs so the collection parser can
// seed new rows and coerce individual cells.
type CollectionCodec struct {
	base
	children []Codec
}

func newCollection(field model.Field) (Codec, error) {
	if len(field.Fields) == 0 {
		return nil, fmt.Errorf("%w: field %q", model.ErrCollectionFields, field.ID)
	}
	c := &CollectionCodec{base: base{field: field}}
	for _, child := range field.Fields {
		if child.Kind == model.KindCollection {
			return nil, fmt.Errorf("%w: field %q", model.ErrNestedCollection, field.ID)
		}
		childCodec, err := ForField(child)
		if err != nil {
			return nil, fmt.Errorf("collection %q: %w", field.ID, err)
		}
		c.children = append(c.children, childCodec)
	}
	def, err := resolveDefault(field, c.Coerce, [][]any{})
	if err != nil {
		return nil, err
	}
	c.def = def
	return c, nil
}

// Children returns the per-column codecs in field order.
func (c *CollectionCodec) Children() []Codec {
	return append([]Codec(nil), c.children...)
}

// Default returns a fresh copy of the default rows.
func (c *CollectionCodec) Default() any {
	return CloneRows(c.def.([][]any))
}

// DefaultRow seeds a new row from each child default.
func (c *CollectionCodec) DefaultRow() []any {
	row := make([]any, len(c.children))
	for i, child := range c.children {
		row[i] = child.Default()
	}
	return row
}

// Coerce accepts [][]any or a []any of rows, as produced by JSON and YAML
// decoders, and coerces every cell through its child codec.
func (c *CollectionCodec) Coerce(v any) (any, error) {
	var rows []any
	switch value := v.(type) {
	case nil:
		return [][]any{}, nil
	case [][]any:
		rows = make([]any, len(value))
		for i := range value {
			rows[i] = value[i]
		}
	case []any:
		rows = value
	case []map[string]any:
		rows = make([]any, len(value))
		for i := range value {
			rows[i] = value[i]
		}
	default:
		return nil, invalid(c.field, v)
	}

	out := make([][]any, 0, len(rows))
	for i, raw := range rows {
		row, err := c.coerceRow(raw)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out = append(out, row)
	}
	return out, nil
}

func (c *CollectionCodec) coerceRow(raw any) ([]any, error) {
	var cells []any
	switch value := raw.(type) {
	case []any:
		cells = value
	case map[string]any:
		cells = make([]any, len(c.children))
		for i, child := range c.children {
			cell, ok := value[child.Field().ID]
			if !ok {
				cell = child.Default()
			}
			cells[i] = cell
		}
	default:
		return nil, invalid(c.field, raw)
	}
	if len(cells) != len(c.children) {
		return nil, fmt.Errorf("%w: got %d cells, want %d", ErrRowShape, len(cells), len(c.children))
	}
	row := make([]any, len(cells))
	for i, cell := range cells {
		coerced, err := c.children[i].Coerce(cell)
		if err != nil {
			return nil, err
		}
		row[i] = coerced
	}
	return row, nil
}

func (c *CollectionCodec) Encode(v any, mode Mode) (string, bool) {
	rows, ok := v.([][]any)
	if !ok {
		return "", false
	}
	cells := make([]string, 0, len(rows)*len(c.children))
	for _, row := range rows {
		if len(row) != len(c.children) {
			return "", false
		}
		for i, cell := range row {
			encoded, ok := c.children[i].Encode(cell, mode)
			if !ok {
				encoded = ""
			}
			cells = append(cells, EscapeCell(encoded))
		}
	}
	return strings.Join(cells, ","), true
}

// Decode splits raw into rows. Cells that fail to decode take their child
// default; a cell count that is not a multiple of the column count fails
// the whole value. The empty string is zero rows.
func (c *CollectionCodec) Decode(raw string, mode Mode) (any, error) {
	if raw == "" {
		return [][]any{}, nil
	}
	cells := SplitCells(raw)
	width := len(c.children)
	if len(cells)%width != 0 {
		return nil, fmt.Errorf("%w: %d cells for %d columns", ErrRowShape, len(cells), width)
	}
	rows := make([][]any, 0, len(cells)/width)
	for start := 0; start < len(cells); start += width {
		row := make([]any, width)
		for i, child := range c.children {
			value, err := child.Decode(cells[start+i], mode)
			if err != nil {
				value = child.Default()
			}
			row[i] = value
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Equal compares whole row sets cell by cell.
func (c *CollectionCodec) Equal(a, b any) bool {
	x, okA := a.([][]any)
	y, okB := b.([][]any)
	if !okA || !okB || len(x) != len(y) {
		return false
	}
	for r := range x {
		if len(x[r]) != len(c.children) || len(y[r]) != len(c.children) {
			return false
		}
		for i, child := range c.children {
			if !child.Equal(x[r][i], y[r][i]) {
				return false
			}
		}
	}
	return true
}

// CloneRows copies the row slices. Cell values are immutable scalars.
func CloneRows(rows [][]any) [][]any {
	out := make([][]any, len(rows))
	for i, row := range rows {
		out[i] = append([]any(nil), row...)
	}
	return out
}
