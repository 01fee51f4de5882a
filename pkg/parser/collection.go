package parser

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-paramconfig/pkg/codec"
	"github.com/goliatone/go-paramconfig/pkg/control"
	"github.com/goliatone/go-paramconfig/pkg/model"
	"github.com/goliatone/go-paramconfig/pkg/slotmap"
)

const (
	AddRowLabel     = "Add Row"
	DeleteRowsLabel = "Delete Selected"
)

// row is one tuple of child parsers. index is its current position in the
// collection value and is kept up to date as earlier rows are deleted.
type row struct {
	index    int
	group    control.Container
	selector control.Element
	parsers  []Parser
}

// collection renders a table of child parsers. Row callbacks capture the
// row key, never a position, so they stay correct across deletions.
type collection struct {
	field    model.Field
	codec    *codec.CollectionCodec
	registry *Registry
	logger   *slog.Logger

	mu       sync.Mutex
	id       string
	rowsRoot control.Container
	rows     *slotmap.Map[*row]
	onChange func(any)
}

// NewCollection builds the parser for collection fields.
func NewCollection(field model.Field, registry *Registry) (Parser, error) {
	c, err := codec.ForField(field)
	if err != nil {
		return nil, err
	}
	collectionCodec, ok := c.(*codec.CollectionCodec)
	if !ok {
		return nil, fmt.Errorf("parser: field %q is not a collection", field.ID)
	}
	for _, child := range field.Fields {
		if !registry.Has(child.Kind) {
			return nil, fmt.Errorf("parser: collection %q: kind %q not registered", field.ID, child.Kind)
		}
	}
	return &collection{
		field:    field,
		codec:    collectionCodec,
		registry: registry,
		logger:   registry.Logger().With("field", field.ID),
		rows:     slotmap.New[*row](),
	}, nil
}

func (p *collection) Field() model.Field { return p.field }
func (p *collection) Default() any       { return p.codec.Default() }

func (p *collection) Decode(raw string, mode codec.Mode) (any, error) {
	return p.codec.Decode(raw, mode)
}

// initialRows accepts a decoded value when it has as many rows as the
// default, or whenever the collection is expandable. Decoding an empty raw
// value yields zero rows, so an expandable collection can start empty.
func (p *collection) initialRows(initial any) [][]any {
	def := p.codec.Default().([][]any)
	if initial == nil {
		return def
	}
	coerced, err := p.codec.Coerce(initial)
	if err != nil {
		p.logger.Debug("initial rows rejected, using default", "error", err)
		return def
	}
	rows := coerced.([][]any)
	if len(rows) == len(def) || p.field.Expandable {
		return rows
	}
	p.logger.Debug("initial row count differs from default", "rows", len(rows), "default", len(def))
	return def
}

func (p *collection) Materialize(c control.Container, id string, initial any, onChange func(any)) error {
	rows := p.initialRows(initial)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.rowsRoot != nil {
		return ErrMaterialized
	}

	group, err := c.Group(id, p.field.DisplayLabel())
	if err != nil {
		return err
	}
	rowsRoot, err := group.Group(id+"-rows", "")
	if err != nil {
		return err
	}
	p.id = id
	p.rowsRoot = rowsRoot
	p.onChange = onChange

	for _, values := range rows {
		if err := p.mountRow(values); err != nil {
			return err
		}
	}
	if !p.field.Expandable {
		return nil
	}

	add, err := group.Mount(control.Descriptor{
		ID:    id + "-add",
		Kind:  model.KindButton,
		Role:  control.RoleAddRow,
		Label: AddRowLabel,
	})
	if err != nil {
		return err
	}
	add.Listen(func(any) { p.appendRow() })

	del, err := group.Mount(control.Descriptor{
		ID:    id + "-delete",
		Kind:  model.KindButton,
		Role:  control.RoleDeleteRows,
		Label: DeleteRowsLabel,
	})
	if err != nil {
		return err
	}
	del.Listen(func(any) { p.deleteSelected() })
	return nil
}

// mountRow appends a row at the end. Callers hold p.mu.
func (p *collection) mountRow(values []any) error {
	r := &row{index: p.rows.Len()}
	key := p.rows.Insert(r)
	rowID := fmt.Sprintf("%s-%s", p.id, key)

	group, err := p.rowsRoot.Group(rowID, "")
	if err != nil {
		p.rows.Remove(key)
		return err
	}
	r.group = group

	if p.field.Expandable {
		selector, err := group.Mount(control.Descriptor{
			ID:    rowID + "-select",
			Kind:  model.KindCheckbox,
			Role:  control.RoleRowSelect,
			Value: false,
		})
		if err != nil {
			p.discardRow(key, r)
			return err
		}
		r.selector = selector
	}

	for i, child := range p.field.Fields {
		parser, err := p.registry.New(child)
		if err != nil {
			p.discardRow(key, r)
			return err
		}
		var initial any
		if i < len(values) {
			initial = values[i]
		}
		if err := parser.Materialize(group, rowID+"-"+child.ID, initial, func(any) { p.rowChanged(key) }); err != nil {
			p.discardRow(key, r)
			return err
		}
		r.parsers = append(r.parsers, parser)
	}
	return nil
}

func (p *collection) discardRow(key slotmap.Key, r *row) {
	p.rows.Remove(key)
	if r.group != nil {
		if err := r.group.Remove(); err != nil {
			p.logger.Debug("row cleanup failed", "error", err)
		}
	}
}

func (p *collection) rowChanged(key slotmap.Key) {
	p.mu.Lock()
	live := p.rows.Contains(key)
	p.mu.Unlock()
	if !live {
		return
	}
	p.notify()
}

func (p *collection) appendRow() {
	p.mu.Lock()
	err := p.mountRow(p.codec.DefaultRow())
	p.mu.Unlock()
	if err != nil {
		p.logger.Error("add row failed", "error", err)
		return
	}
	p.notify()
}

func (p *collection) deleteSelected() {
	p.mu.Lock()
	var (
		doomed  []slotmap.Key
		indices []int
	)
	p.rows.Each(func(key slotmap.Key, r **row) {
		if (*r).selector == nil {
			return
		}
		if isChecked((*r).selector.Value()) {
			doomed = append(doomed, key)
			indices = append(indices, (*r).index)
		}
	})
	for _, key := range doomed {
		r, _ := p.rows.Remove(key)
		if err := r.group.Remove(); err != nil {
			p.logger.Debug("row removal failed", "error", err)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(indices)))
	for _, removed := range indices {
		p.rows.Each(func(_ slotmap.Key, r **row) {
			if (*r).index > removed {
				(*r).index--
			}
		})
	}
	p.mu.Unlock()
	p.notify()
}

func isChecked(v any) bool {
	switch value := v.(type) {
	case bool:
		return value
	case string:
		return value == "1" || strings.EqualFold(value, "true") || value == "on"
	}
	return false
}

func (p *collection) notify() {
	p.mu.Lock()
	onChange := p.onChange
	p.mu.Unlock()
	if onChange != nil {
		onChange(p.Value())
	}
}

func (p *collection) Value() any {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.rowsRoot == nil {
		return p.codec.Default()
	}
	return p.snapshot()
}

// snapshot assembles the rows in index order. Callers hold p.mu.
func (p *collection) snapshot() [][]any {
	out := make([][]any, p.rows.Len())
	p.rows.Each(func(_ slotmap.Key, r **row) {
		values := make([]any, len((*r).parsers))
		for i, parser := range (*r).parsers {
			values[i] = parser.Value()
		}
		if (*r).index >= 0 && (*r).index < len(out) {
			out[(*r).index] = values
		}
	})
	return out
}

// SetValue replaces every row. Listeners are not notified.
func (p *collection) SetValue(v any) error {
	coerced, err := p.codec.Coerce(v)
	if err != nil {
		return err
	}
	rows := coerced.([][]any)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.rowsRoot == nil {
		return ErrNotMaterialized
	}
	var keys []slotmap.Key
	p.rows.Each(func(key slotmap.Key, _ **row) { keys = append(keys, key) })
	for _, key := range keys {
		r, _ := p.rows.Remove(key)
		if err := r.group.Remove(); err != nil {
			p.logger.Debug("row removal failed", "error", err)
		}
	}
	for _, values := range rows {
		if err := p.mountRow(values); err != nil {
			return err
		}
	}
	return nil
}

// RowCount reports the number of live rows.
func (p *collection) RowCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rows.Len()
}

func (p *collection) Changed() bool {
	return !p.codec.Equal(p.Value(), p.codec.Default())
}

func (p *collection) Serialise(mode codec.Mode) (string, bool) {
	return serialise(p.codec, p.Value(), p.Changed(), mode, p.logger)
}
