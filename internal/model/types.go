package model

// Kind selects the control, codec and value shape used for a field.
type Kind string

const (
	KindCheckbox   Kind = "checkbox"
	KindNumber     Kind = "number"
	KindRange      Kind = "range"
	KindColor      Kind = "color"
	KindText       Kind = "text"
	KindDatetime   Kind = "datetime"
	KindSelect     Kind = "select"
	KindFile       Kind = "file"
	KindButton     Kind = "button"
	KindCollection Kind = "collection"
)

// Kinds lists the built-in kinds in a stable order.
func Kinds() []Kind {
	return []Kind{
		KindCheckbox,
		KindNumber,
		KindRange,
		KindColor,
		KindText,
		KindDatetime,
		KindSelect,
		KindFile,
		KindButton,
		KindCollection,
	}
}

// Attrs carries the numeric bounds for number and range fields. Nil pointers
// mean the bound was not configured.
type Attrs struct {
	Min  *float64 `json:"min,omitempty" yaml:"min,omitempty" toml:"min,omitempty"`
	Max  *float64 `json:"max,omitempty" yaml:"max,omitempty" toml:"max,omitempty"`
	Step *float64 `json:"step,omitempty" yaml:"step,omitempty" toml:"step,omitempty"`
}

// Complete reports whether min, max and step are all present.
func (a *Attrs) Complete() bool {
	return a != nil && a.Min != nil && a.Max != nil && a.Step != nil
}

// Field is the caller-authored configuration of a single input. Label and
// Tooltip are presentation only and never reach the serialised form.
//
// Runtime values follow the kind: checkbox bool, number/range float64,
// color string (six uppercase hex digits), text/select string, datetime
// time.Time, file string (data URL), button nil, collection [][]any where
// every row lines up with Fields.
type Field struct {
	ID         string   `json:"id" yaml:"id" toml:"id"`
	Kind       Kind     `json:"kind" yaml:"kind" toml:"kind"`
	Label      string   `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty"`
	Tooltip    string   `json:"tooltip,omitempty" yaml:"tooltip,omitempty" toml:"tooltip,omitempty"`
	Default    any      `json:"default,omitempty" yaml:"default,omitempty" toml:"default,omitempty"`
	Attrs      *Attrs   `json:"attrs,omitempty" yaml:"attrs,omitempty" toml:"attrs,omitempty"`
	Options    []string `json:"options,omitempty" yaml:"options,omitempty" toml:"options,omitempty"`
	Fields     []Field  `json:"fields,omitempty" yaml:"fields,omitempty" toml:"fields,omitempty"`
	Expandable bool     `json:"expandable,omitempty" yaml:"expandable,omitempty" toml:"expandable,omitempty"`
}

// IsSerialisable reports whether the field can carry state in a URL. Buttons
// are edge-triggered and never persisted.
func (f Field) IsSerialisable() bool {
	return f.Kind != KindButton
}

// DisplayLabel returns the configured label or a label derived from the id.
func (f Field) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return DefaultLabeler(f.ID)
}

// Form is the document shape used by the field loaders.
type Form struct {
	Title  string  `json:"title,omitempty" yaml:"title,omitempty" toml:"title,omitempty"`
	Fields []Field `json:"fields" yaml:"fields" toml:"fields"`
}
