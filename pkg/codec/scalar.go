package codec

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/goliatone/go-paramconfig/pkg/model"
)

type base struct {
	field model.Field
	def   any
}

func (b base) Field() model.Field { return b.field }
func (b base) Default() any       { return b.def }

// checkbox

type checkboxCodec struct{ base }

func newCheckbox(field model.Field) (Codec, error) {
	c := &checkboxCodec{base{field: field}}
	def, err := resolveDefault(field, c.Coerce, false)
	if err != nil {
		return nil, err
	}
	c.def = def
	return c, nil
}

func (c *checkboxCodec) Coerce(v any) (any, error) {
	switch value := v.(type) {
	case bool:
		return value, nil
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return nil, invalid(c.field, v)
		}
		return parsed, nil
	}
	return nil, invalid(c.field, v)
}

func (c *checkboxCodec) Encode(v any, mode Mode) (string, bool) {
	checked, ok := v.(bool)
	if !ok {
		return "", false
	}
	switch {
	case mode == Compact && checked:
		return "1", true
	case mode == Compact:
		return "0", true
	}
	return strconv.FormatBool(checked), true
}

func (c *checkboxCodec) Decode(raw string, _ Mode) (any, error) {
	return raw == "1" || strings.EqualFold(raw, "true"), nil
}

func (c *checkboxCodec) Equal(a, b any) bool {
	x, okA := a.(bool)
	y, okB := b.(bool)
	return okA && okB && x == y
}

// number and range

type numberCodec struct{ base }

func newNumber(field model.Field) (Codec, error) {
	c := &numberCodec{base{field: field}}
	def, err := resolveDefault(field, c.Coerce, stepDefault(field.Attrs))
	if err != nil {
		return nil, err
	}
	c.def = def
	return c, nil
}

// stepDefault is the largest value not above max that is reachable from min
// in whole steps, floor((max-min)/step)*step + min. Rounding up instead would
// overshoot max whenever the range is not a whole number of steps: min 0,
// max 10, step 3 gives 9 here, not 12. Without complete attrs it is zero.
func stepDefault(attrs *model.Attrs) float64 {
	if !attrs.Complete() {
		return 0
	}
	lo, hi, step := *attrs.Min, *attrs.Max, *attrs.Step
	if step <= 0 || hi < lo {
		return lo
	}
	steps := math.Floor((hi-lo)/step + 1e-9)
	return steps*step + lo
}

func (c *numberCodec) Coerce(v any) (any, error) {
	if f, ok := toFloat(v); ok {
		return f, nil
	}
	return nil, invalid(c.field, v)
}

func toFloat(v any) (float64, bool) {
	switch value := v.(type) {
	case float64:
		return value, true
	case float32:
		return float64(value), true
	case int:
		return float64(value), true
	case int8:
		return float64(value), true
	case int16:
		return float64(value), true
	case int32:
		return float64(value), true
	case int64:
		return float64(value), true
	case uint:
		return float64(value), true
	case uint8:
		return float64(value), true
	case uint16:
		return float64(value), true
	case uint32:
		return float64(value), true
	case uint64:
		return float64(value), true
	case json.Number:
		f, err := value.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		return f, err == nil
	}
	return 0, false
}

// FormatNumber renders f in the shorter of fixed and exponential notation,
// preferring fixed on a tie.
func FormatNumber(f float64) string {
	fixed := strconv.FormatFloat(f, 'f', -1, 64)
	exp := strconv.FormatFloat(f, 'e', -1, 64)
	if len(exp) < len(fixed) {
		return exp
	}
	return fixed
}

func (c *numberCodec) Encode(v any, _ Mode) (string, bool) {
	f, ok := v.(float64)
	if !ok {
		return "", false
	}
	return FormatNumber(f), true
}

func (c *numberCodec) Decode(raw string, _ Mode) (any, error) {
	if strings.Contains(raw, "%") {
		if unescaped, err := url.PathUnescape(raw); err == nil {
			raw = unescaped
		}
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidValue, raw)
	}
	return f, nil
}

func (c *numberCodec) Equal(a, b any) bool {
	x, okA := a.(float64)
	y, okB := b.(float64)
	if !okA || !okB {
		return false
	}
	return x == y || (math.IsNaN(x) && math.IsNaN(y))
}

// color

type colorCodec struct{ base }

func newColor(field model.Field) (Codec, error) {
	c := &colorCodec{base{field: field}}
	def, err := resolveDefault(field, c.Coerce, "000000")
	if err != nil {
		return nil, err
	}
	c.def = def
	return c, nil
}

// NormaliseColor accepts "#aabbcc" or "aabbcc" and returns "AABBCC".
func NormaliseColor(s string) (string, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return "", fmt.Errorf("%w: color %q", ErrInvalidValue, s)
	}
	if _, err := strconv.ParseUint(s, 16, 32); err != nil {
		return "", fmt.Errorf("%w: color %q", ErrInvalidValue, s)
	}
	return strings.ToUpper(s), nil
}

func (c *colorCodec) Coerce(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, invalid(c.field, v)
	}
	return NormaliseColor(s)
}

func (c *colorCodec) Encode(v any, mode Mode) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	if mode == Verbose {
		return s, true
	}
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return "", false
	}
	return EncodeInt(n, 0), true
}

func (c *colorCodec) Decode(raw string, mode Mode) (any, error) {
	if mode == Verbose {
		unescaped, err := url.PathUnescape(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		return NormaliseColor(unescaped)
	}
	n, err := DecodeInt(raw)
	if err != nil {
		return nil, err
	}
	if n > 0xFFFFFF {
		return nil, fmt.Errorf("%w: color %q out of range", ErrInvalidValue, raw)
	}
	return fmt.Sprintf("%06X", n), nil
}

func (c *colorCodec) Equal(a, b any) bool { return equalStrings(a, b) }

// text

type textCodec struct{ base }

func newText(field model.Field) (Codec, error) {
	c := &textCodec{base{field: field}}
	def, err := resolveDefault(field, c.Coerce, "")
	if err != nil {
		return nil, err
	}
	c.def = def
	return c, nil
}

func (c *textCodec) Coerce(v any) (any, error) {
	switch value := v.(type) {
	case string:
		return value, nil
	case []byte:
		return string(value), nil
	}
	return nil, invalid(c.field, v)
}

func (c *textCodec) Encode(v any, mode Mode) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	if mode == Compact {
		return s, true
	}
	return EscapeComponent(s), true
}

func (c *textCodec) Decode(raw string, mode Mode) (any, error) {
	if mode == Compact {
		return raw, nil
	}
	s, err := url.PathUnescape(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return s, nil
}

func (c *textCodec) Equal(a, b any) bool { return equalStrings(a, b) }

// select

type selectCodec struct {
	textCodec
	options map[string]struct{}
}

func newSelect(field model.Field) (Codec, error) {
	if len(field.Options) == 0 {
		return nil, fmt.Errorf("%w: field %q", model.ErrSelectOptions, field.ID)
	}
	c := &selectCodec{
		textCodec: textCodec{base{field: field}},
		options:   make(map[string]struct{}, len(field.Options)),
	}
	for _, option := range field.Options {
		c.options[option] = struct{}{}
	}
	c.def = field.Options[0]
	if s, ok := field.Default.(string); ok && c.member(s) {
		c.def = s
	}
	return c, nil
}

func (c *selectCodec) member(s string) bool {
	_, ok := c.options[s]
	return ok
}

func (c *selectCodec) Coerce(v any) (any, error) {
	s, err := c.textCodec.Coerce(v)
	if err != nil {
		return nil, err
	}
	if !c.member(s.(string)) {
		return nil, fmt.Errorf("%w: %q is not an option of %q", ErrInvalidValue, s, c.field.ID)
	}
	return s, nil
}

// Decode never fails on an unknown option; it yields the default instead.
func (c *selectCodec) Decode(raw string, mode Mode) (any, error) {
	value, err := c.textCodec.Decode(raw, mode)
	if err != nil {
		return nil, err
	}
	if !c.member(value.(string)) {
		return c.def, nil
	}
	return value, nil
}

// file

type fileCodec struct{ base }

func newFile(field model.Field) (Codec, error) {
	c := &fileCodec{base{field: field}}
	def, err := resolveDefault(field, c.Coerce, "")
	if err != nil {
		return nil, err
	}
	c.def = def
	return c, nil
}

func (c *fileCodec) Coerce(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, invalid(c.field, v)
	}
	return s, nil
}

func (c *fileCodec) Encode(v any, mode Mode) (string, bool) {
	s, ok := v.(string)
	if !ok || mode == Compact {
		return "", false
	}
	return s, true
}

func (c *fileCodec) Decode(raw string, _ Mode) (any, error) { return raw, nil }

func (c *fileCodec) Equal(a, b any) bool { return equalStrings(a, b) }

// button

type buttonCodec struct{ base }

func newButton(field model.Field) (Codec, error) {
	return &buttonCodec{base{field: field}}, nil
}

func (c *buttonCodec) Coerce(any) (any, error) { return nil, nil }

func (c *buttonCodec) Encode(any, Mode) (string, bool) { return "", false }

func (c *buttonCodec) Decode(string, Mode) (any, error) {
	return nil, fmt.Errorf("%w: button %q", ErrNotEncodable, c.field.ID)
}

func (c *buttonCodec) Equal(a, b any) bool { return a == nil && b == nil }

func equalStrings(a, b any) bool {
	x, okA := a.(string)
	y, okB := b.(string)
	return okA && okB && x == y
}
