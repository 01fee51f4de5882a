package model

import internalmodel "github.com/goliatone/go-paramconfig/internal/model"

// Kind re-exports the internal Kind enumeration.
type Kind = internalmodel.Kind

const (
	KindCheckbox   = internalmodel.KindCheckbox
	KindNumber     = internalmodel.KindNumber
	KindRange      = internalmodel.KindRange
	KindColor      = internalmodel.KindColor
	KindText       = internalmodel.KindText
	KindDatetime   = internalmodel.KindDatetime
	KindSelect     = internalmodel.KindSelect
	KindFile       = internalmodel.KindFile
	KindButton     = internalmodel.KindButton
	KindCollection = internalmodel.KindCollection
)

type Attrs = internalmodel.Attrs
type Field = internalmodel.Field
type Form = internalmodel.Form

var (
	ErrFieldIDMissing     = internalmodel.ErrFieldIDMissing
	ErrDuplicateFieldID   = internalmodel.ErrDuplicateFieldID
	ErrUnknownKind        = internalmodel.ErrUnknownKind
	ErrSelectOptions      = internalmodel.ErrSelectOptions
	ErrCollectionFields   = internalmodel.ErrCollectionFields
	ErrNestedCollection   = internalmodel.ErrNestedCollection
	ErrInvalidStep        = internalmodel.ErrInvalidStep
	ErrCollectionDefaults = internalmodel.ErrCollectionDefaults
)

// Kinds lists the built-in kinds.
func Kinds() []Kind { return internalmodel.Kinds() }

// Validate checks ids, kinds and kind-specific attributes. known may be nil;
// when set it reports additional kinds registered by the caller.
func Validate(fields []Field, known func(Kind) bool) error {
	return internalmodel.Validate(fields, known)
}

// DefaultLabeler derives a human label from a field id.
func DefaultLabeler(id string) string { return internalmodel.DefaultLabeler(id) }

// Float returns a pointer to v, convenient when building Attrs literals.
func Float(v float64) *float64 { return &v }
