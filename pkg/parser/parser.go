// Package parser binds field codecs to mounted controls. One Parser is
// created per configured field; it mounts the control, reads the live value
// back from it and reports whether that value differs from the default.
package parser

import (
	"errors"

	"github.com/goliatone/go-paramconfig/pkg/codec"
	"github.com/goliatone/go-paramconfig/pkg/control"
	"github.com/goliatone/go-paramconfig/pkg/model"
)

var (
	ErrNotMaterialized = errors.New("parser: control has not been materialized")
	ErrMaterialized    = errors.New("parser: control already materialized")
)

// Parser owns the control of one field.
type Parser interface {
	Field() model.Field
	Default() any
	// Decode turns a raw query value into a runtime value. Callers fall
	// back to the default on error.
	Decode(raw string, mode codec.Mode) (any, error)
	// Materialize mounts the control under c with the given element id.
	// A nil initial value selects the default. onChange receives every
	// user edit after it has been coerced to the field kind.
	Materialize(c control.Container, id string, initial any, onChange func(any)) error
	// Value reads the control. Before Materialize it is the default.
	Value() any
	// SetValue writes into the control without calling onChange.
	SetValue(v any) error
	// Changed reports whether Value differs from Default.
	Changed() bool
	// Serialise encodes Value. It reports false when the value equals the
	// default, has no encoding in mode or exceeds codec.MaxEncodedLength.
	Serialise(mode codec.Mode) (string, bool)
}
