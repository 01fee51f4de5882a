package parser

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/goliatone/go-paramconfig/pkg/codec"
	"github.com/goliatone/go-paramconfig/pkg/control"
	"github.com/goliatone/go-paramconfig/pkg/model"
)

// scalar serves every kind whose control holds a single value: checkbox,
// number, range, color, text, datetime and select.
type scalar struct {
	field  model.Field
	codec  codec.Codec
	logger *slog.Logger

	mu      sync.Mutex
	element control.Element
	last    any
}

// NewScalar builds the parser for single-valued kinds.
func NewScalar(field model.Field, registry *Registry) (Parser, error) {
	c, err := codec.ForField(field)
	if err != nil {
		return nil, err
	}
	return &scalar{
		field:  field,
		codec:  c,
		logger: registry.Logger().With("field", field.ID),
		last:   c.Default(),
	}, nil
}

func (p *scalar) Field() model.Field { return p.field }
func (p *scalar) Default() any       { return p.codec.Default() }

func (p *scalar) Decode(raw string, mode codec.Mode) (any, error) {
	return p.codec.Decode(raw, mode)
}

func (p *scalar) Materialize(c control.Container, id string, initial any, onChange func(any)) error {
	value := p.initialValue(initial)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.element != nil {
		return ErrMaterialized
	}
	element, err := c.Mount(descriptorFor(p.field, id, value))
	if err != nil {
		return err
	}
	p.element = element
	p.last = value

	element.Listen(func(raw any) {
		v, err := p.codec.Coerce(raw)
		if err != nil {
			p.logger.Debug("ignoring input", "value", raw, "error", err)
			p.restore()
			return
		}
		p.store(v)
		if onChange != nil {
			onChange(v)
		}
	})
	return nil
}

func (p *scalar) initialValue(initial any) any {
	if initial == nil {
		return p.codec.Default()
	}
	value, err := p.codec.Coerce(initial)
	if err != nil {
		p.logger.Debug("initial value rejected, using default", "value", initial, "error", err)
		return p.codec.Default()
	}
	return value
}

func (p *scalar) store(v any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = v
	if p.element != nil {
		p.element.SetValue(v)
	}
}

func (p *scalar) restore() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.element != nil {
		p.element.SetValue(p.last)
	}
}

func (p *scalar) Value() any {
	p.mu.Lock()
	element, last := p.element, p.last
	p.mu.Unlock()
	if element == nil {
		return last
	}
	value, err := p.codec.Coerce(element.Value())
	if err != nil {
		return last
	}
	return value
}

func (p *scalar) SetValue(v any) error {
	value, err := p.codec.Coerce(v)
	if err != nil {
		return err
	}
	p.store(value)
	return nil
}

func (p *scalar) Changed() bool {
	return !p.codec.Equal(p.Value(), p.codec.Default())
}

func (p *scalar) Serialise(mode codec.Mode) (string, bool) {
	return serialise(p.codec, p.Value(), p.Changed(), mode, p.logger)
}

func serialise(c codec.Codec, value any, changed bool, mode codec.Mode, logger *slog.Logger) (string, bool) {
	if !changed {
		return "", false
	}
	encoded, ok := c.Encode(value, mode)
	if !ok {
		return "", false
	}
	if len(encoded) > codec.MaxEncodedLength {
		logger.Debug("dropping oversized value", "length", len(encoded), "limit", codec.MaxEncodedLength, "mode", mode)
		return "", false
	}
	return encoded, true
}

func descriptorFor(field model.Field, id string, value any) control.Descriptor {
	return control.Descriptor{
		ID:      id,
		Kind:    field.Kind,
		Role:    control.RoleField,
		Label:   field.DisplayLabel(),
		Tooltip: field.Tooltip,
		Options: append([]string(nil), field.Options...),
		Attrs:   field.Attrs,
		Value:   value,
	}
}

// button is edge triggered: it has no value and is never serialised.
type button struct {
	field model.Field

	mu      sync.Mutex
	element control.Element
}

// NewButton builds the parser for button fields.
func NewButton(field model.Field, _ *Registry) (Parser, error) {
	return &button{field: field}, nil
}

func (p *button) Field() model.Field { return p.field }
func (p *button) Default() any       { return nil }

func (p *button) Decode(string, codec.Mode) (any, error) {
	return nil, fmt.Errorf("%w: button %q", codec.ErrNotEncodable, p.field.ID)
}

func (p *button) Materialize(c control.Container, id string, _ any, onChange func(any)) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.element != nil {
		return ErrMaterialized
	}
	element, err := c.Mount(descriptorFor(p.field, id, nil))
	if err != nil {
		return err
	}
	p.element = element
	element.Listen(func(any) {
		if onChange != nil {
			onChange(nil)
		}
	})
	return nil
}

func (p *button) Value() any                          { return nil }
func (p *button) SetValue(any) error                  { return nil }
func (p *button) Changed() bool                       { return false }
func (p *button) Serialise(codec.Mode) (string, bool) { return "", false }
