package codec

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-paramconfig/pkg/model"
)

// MaxEncodedLength caps a single serialised value. Longer encodings are
// left out of the query so the field loads with its default.
const MaxEncodedLength = 250

// Mode selects between the readable and the short URL encoding.
type Mode int

const (
	Verbose Mode = iota
	Compact
)

func (m Mode) String() string {
	if m == Compact {
		return "compact"
	}
	return "verbose"
}

// ModeFor maps the short-URL flag onto a Mode.
func ModeFor(short bool) Mode {
	if short {
		return Compact
	}
	return Verbose
}

var (
	ErrUnsupportedKind = errors.New("codec: unsupported field kind")
	ErrInvalidValue    = errors.New("codec: invalid value")
	ErrInvalidDefault  = errors.New("codec: invalid default")
	ErrNotEncodable    = errors.New("codec: value is not encodable")
)

// Codec converts the runtime value of one field to and from its query
// representation. Implementations are stateless and safe for concurrent use.
type Codec interface {
	Field() model.Field
	// Default is the value used when the query carries nothing usable.
	Default() any
	// Coerce normalises a runtime or user supplied value into the shape the
	// field kind expects.
	Coerce(v any) (any, error)
	// Encode reports false when the value has no representation in mode.
	Encode(v any, mode Mode) (string, bool)
	Decode(raw string, mode Mode) (any, error)
	Equal(a, b any) bool
}

type factory func(field model.Field) (Codec, error)

// factories is filled in init: newCollection builds its children through
// ForField, which reads the table.
var factories map[model.Kind]factory

func init() {
	factories = map[model.Kind]factory{
		model.KindCheckbox:   newCheckbox,
		model.KindNumber:     newNumber,
		model.KindRange:      newNumber,
		model.KindColor:      newColor,
		model.KindText:       newText,
		model.KindSelect:     newSelect,
		model.KindDatetime:   newDatetime,
		model.KindFile:       newFile,
		model.KindButton:     newButton,
		model.KindCollection: newCollection,
	}
}

// ForField builds the codec for field. A configured default that cannot be
// coerced to the field kind is reported as ErrInvalidDefault.
func ForField(field model.Field) (Codec, error) {
	build, ok := factories[field.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, field.Kind)
	}
	return build(field)
}

// Supports reports whether kind has a built-in codec.
func Supports(kind model.Kind) bool {
	_, ok := factories[kind]
	return ok
}

// Serialise encodes v and applies the MaxEncodedLength ceiling.
func Serialise(c Codec, v any, mode Mode) (string, bool) {
	encoded, ok := c.Encode(v, mode)
	if !ok || len(encoded) > MaxEncodedLength {
		return "", false
	}
	return encoded, true
}

func invalid(field model.Field, v any) error {
	return fmt.Errorf("%w: field %q (%s) cannot hold %T", ErrInvalidValue, field.ID, field.Kind, v)
}

func resolveDefault(field model.Field, coerce func(any) (any, error), fallback any) (any, error) {
	if field.Default == nil {
		return fallback, nil
	}
	value, err := coerce(field.Default)
	if err != nil {
		return nil, fmt.Errorf("%w: field %q: %v", ErrInvalidDefault, field.ID, err)
	}
	return value, nil
}
