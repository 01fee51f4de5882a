package codec

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-paramconfig/pkg/model"
)

func mustCodec(t *testing.T, field model.Field) Codec {
	t.Helper()
	c, err := ForField(field)
	if err != nil {
		t.Fatalf("ForField(%s): %v", field.ID, err)
	}
	return c
}

func TestRoundTripBothModes(t *testing.T) {
	local := time.Date(2024, time.March, 15, 13, 45, 0, 0, time.Local)
	cases := []struct {
		name  string
		field model.Field
		value any
	}{
		{"checkbox true", model.Field{ID: "c", Kind: model.KindCheckbox}, true},
		{"checkbox false", model.Field{ID: "c", Kind: model.KindCheckbox}, false},
		{"number", model.Field{ID: "n", Kind: model.KindNumber}, 10.0},
		{"number fraction", model.Field{ID: "n", Kind: model.KindNumber}, -0.125},
		{"number large", model.Field{ID: "n", Kind: model.KindNumber}, 1e21},
		{"range", model.Field{ID: "r", Kind: model.KindRange}, 0.5},
		{"color", model.Field{ID: "k", Kind: model.KindColor}, "FF8800"},
		{"color black", model.Field{ID: "k", Kind: model.KindColor}, "000000"},
		{"text", model.Field{ID: "t", Kind: model.KindText}, "hello world"},
		{"select", model.Field{ID: "s", Kind: model.KindSelect, Options: []string{"a", "b c"}}, "b c"},
		{"datetime", model.Field{ID: "d", Kind: model.KindDatetime}, local},
		{"collection", model.Field{ID: "rows", Kind: model.KindCollection, Fields: []model.Field{
			{ID: "name", Kind: model.KindText},
			{ID: "size", Kind: model.KindNumber},
			{ID: "on", Kind: model.KindCheckbox},
		}}, [][]any{{"a,b", 1.5, true}, {`c\d`, 2.0, false}}},
	}

	for _, tc := range cases {
		for _, mode := range []Mode{Verbose, Compact} {
			t.Run(tc.name+"/"+mode.String(), func(t *testing.T) {
				c := mustCodec(t, tc.field)
				encoded, ok := c.Encode(tc.value, mode)
				if !ok {
					t.Fatalf("Encode reported not encodable")
				}
				decoded, err := c.Decode(encoded, mode)
				if err != nil {
					t.Fatalf("Decode(%q): %v", encoded, err)
				}
				if !c.Equal(tc.value, decoded) {
					t.Fatalf("round trip mismatch: encoded %q decoded %#v", encoded, decoded)
				}
			})
		}
	}
}

func TestCheckboxEncoding(t *testing.T) {
	c := mustCodec(t, model.Field{ID: "c", Kind: model.KindCheckbox})
	if got, _ := c.Encode(true, Compact); got != "1" {
		t.Fatalf("compact true = %q", got)
	}
	if got, _ := c.Encode(true, Verbose); got != "true" {
		t.Fatalf("verbose true = %q", got)
	}
	for raw, want := range map[string]bool{"1": true, "TRUE": true, "true": true, "0": false, "yes": false, "": false} {
		got, err := c.Decode(raw, Compact)
		if err != nil || got != want {
			t.Fatalf("Decode(%q) = %v, %v; want %v", raw, got, err, want)
		}
	}
}

func TestFormatNumberPicksShorterForm(t *testing.T) {
	cases := map[float64]string{
		10:       "10",
		1234.5:   "1234.5",
		0.000001: "1e-06",
		1e21:     "1e+21",
		-3:       "-3",
		100000:   "1e+05",
	}
	for in, want := range cases {
		if got := FormatNumber(in); got != want {
			t.Fatalf("FormatNumber(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestNumberDefaults(t *testing.T) {
	cases := []struct {
		name  string
		field model.Field
		want  float64
	}{
		{"no attrs", model.Field{ID: "n", Kind: model.KindNumber}, 0},
		{"explicit", model.Field{ID: "n", Kind: model.KindNumber, Default: 5}, 5},
		{"stepped", model.Field{ID: "n", Kind: model.KindRange, Attrs: &model.Attrs{
			Min: model.Float(0), Max: model.Float(10), Step: model.Float(3),
		}}, 9},
		{"exact", model.Field{ID: "n", Kind: model.KindRange, Attrs: &model.Attrs{
			Min: model.Float(1), Max: model.Float(2), Step: model.Float(0.25),
		}}, 2},
		{"incomplete", model.Field{ID: "n", Kind: model.KindRange, Attrs: &model.Attrs{
			Min: model.Float(4),
		}}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := mustCodec(t, tc.field)
			if got := c.Default(); got != tc.want {
				t.Fatalf("Default = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNumberDecodeFailure(t *testing.T) {
	c := mustCodec(t, model.Field{ID: "n", Kind: model.KindNumber})
	if _, err := c.Decode("ten", Verbose); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}
}

func TestColorEncoding(t *testing.T) {
	c := mustCodec(t, model.Field{ID: "k", Kind: model.KindColor, Default: "#ff8800"})
	if got := c.Default(); got != "FF8800" {
		t.Fatalf("Default = %v", got)
	}
	if got, _ := c.Encode("FF8800", Compact); got != "-uW0" {
		t.Fatalf("compact = %q", got)
	}
	if got, err := c.Decode("ff8800", Verbose); err != nil || got != "FF8800" {
		t.Fatalf("verbose decode = %v, %v", got, err)
	}
	if _, err := c.Decode("zzzzzz", Verbose); err == nil {
		t.Fatalf("expected invalid hex to fail")
	}
	if _, err := ForField(model.Field{ID: "k", Kind: model.KindColor, Default: "red"}); !errors.Is(err, ErrInvalidDefault) {
		t.Fatalf("expected ErrInvalidDefault, got %v", err)
	}
}

func TestTextVerboseIsPercentEncoded(t *testing.T) {
	c := mustCodec(t, model.Field{ID: "t", Kind: model.KindText})
	got, _ := c.Encode("a&b=c d/é", Verbose)
	if got != "a%26b%3Dc%20d%2F%C3%A9" {
		t.Fatalf("verbose text = %q", got)
	}
	raw, _ := c.Encode("a b", Compact)
	if raw != "a b" {
		t.Fatalf("compact text should be raw, got %q", raw)
	}
}

func TestSelectFallback(t *testing.T) {
	noDefault := mustCodec(t, model.Field{ID: "s", Kind: model.KindSelect, Options: []string{"a", "b"}})
	if got, err := noDefault.Decode("z", Verbose); err != nil || got != "a" {
		t.Fatalf("fallback without default = %v, %v", got, err)
	}

	withDefault := mustCodec(t, model.Field{ID: "s", Kind: model.KindSelect, Options: []string{"a", "b"}, Default: "b"})
	if got, err := withDefault.Decode("z", Compact); err != nil || got != "b" {
		t.Fatalf("fallback with default = %v, %v", got, err)
	}
	if _, err := withDefault.Coerce("z"); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("Coerce non-member should fail, got %v", err)
	}
}

func TestDatetimeVerboseLayout(t *testing.T) {
	c := mustCodec(t, model.Field{ID: "d", Kind: model.KindDatetime})
	at := time.Date(2023, time.January, 2, 3, 4, 5, 600_000_000, time.Local)

	got, _ := c.Encode(at, Verbose)
	if got != "2023-01-02T03%3A04%3A05" {
		t.Fatalf("verbose = %q", got)
	}
	for _, raw := range []string{"2023-01-02T03:04:05Z", "2023-01-02T03%3A04%3A05.600", "2023-01-02T03:04"} {
		decoded, err := c.Decode(raw, Verbose)
		if err != nil {
			t.Fatalf("Decode(%q): %v", raw, err)
		}
		if decoded.(time.Time).Hour() != 3 {
			t.Fatalf("Decode(%q) = %v", raw, decoded)
		}
	}
}

func TestDatetimeEqualityIsMillisecondExact(t *testing.T) {
	c := mustCodec(t, model.Field{ID: "d", Kind: model.KindDatetime})
	a := time.Date(2023, 1, 2, 3, 4, 5, 1_000_000, time.UTC)
	b := time.Date(2023, 1, 2, 3, 4, 5, 1_900_000, time.UTC)
	if !c.Equal(a, b) {
		t.Fatalf("sub-millisecond difference should compare equal")
	}
	if c.Equal(a, a.Add(time.Millisecond)) {
		t.Fatalf("millisecond difference should compare unequal")
	}
}

func TestCollectionEscaping(t *testing.T) {
	c := mustCodec(t, model.Field{ID: "rows", Kind: model.KindCollection, Fields: []model.Field{
		{ID: "name", Kind: model.KindText},
	}})
	value := [][]any{{`Foo, Bar, Baz\`}}

	encoded, ok := c.Encode(value, Compact)
	if !ok || encoded != `Foo\, Bar\, Baz\\` {
		t.Fatalf("encoded = %q", encoded)
	}
	decoded, err := c.Decode(encoded, Compact)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if diff := cmp.Diff(value, decoded); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCollectionDecode(t *testing.T) {
	c := mustCodec(t, model.Field{ID: "rows", Kind: model.KindCollection, Fields: []model.Field{
		{ID: "x", Kind: model.KindNumber, Default: 7},
		{ID: "label", Kind: model.KindText},
	}})

	decoded, err := c.Decode("1,a,oops,b", Verbose)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := [][]any{{1.0, "a"}, {7.0, "b"}}
	if diff := cmp.Diff(want, decoded); diff != "" {
		t.Fatalf("decoded mismatch (-want +got):\n%s", diff)
	}

	if _, err := c.Decode("1,a,2", Verbose); !errors.Is(err, ErrRowShape) {
		t.Fatalf("expected ErrRowShape, got %v", err)
	}
	empty, err := c.Decode("", Verbose)
	if err != nil || len(empty.([][]any)) != 0 {
		t.Fatalf("empty decode = %v, %v", empty, err)
	}
}

// A single-column row holding an empty cell encodes to the same empty string
// as zero rows, so it reloads as zero rows.
func TestCollectionSingleEmptyCellIsLossy(t *testing.T) {
	c := mustCodec(t, model.Field{ID: "tags", Kind: model.KindCollection, Expandable: true, Fields: []model.Field{
		{ID: "tag", Kind: model.KindText},
	}})

	encoded, ok := c.Encode([][]any{{""}}, Verbose)
	if !ok || encoded != "" {
		t.Fatalf("Encode = %q (%v)", encoded, ok)
	}
	decoded, err := c.Decode(encoded, Verbose)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if diff := cmp.Diff([][]any{}, decoded); diff != "" {
		t.Fatalf("decoded mismatch (-want +got):\n%s", diff)
	}
}

func TestCollectionCoerceFromDecodedDocuments(t *testing.T) {
	c := mustCodec(t, model.Field{ID: "rows", Kind: model.KindCollection, Fields: []model.Field{
		{ID: "x", Kind: model.KindNumber},
		{ID: "on", Kind: model.KindCheckbox},
	}, Default: []any{[]any{1, true}, map[string]any{"x": 2.5}}})

	want := [][]any{{1.0, true}, {2.5, false}}
	if diff := cmp.Diff(want, c.Default()); diff != "" {
		t.Fatalf("default mismatch (-want +got):\n%s", diff)
	}

	rows := c.Default().([][]any)
	rows[0][0] = 99.0
	if c.Default().([][]any)[0][0] != 1.0 {
		t.Fatalf("Default must return an independent copy")
	}
}

func TestFileAndButtonEncodability(t *testing.T) {
	file := mustCodec(t, model.Field{ID: "f", Kind: model.KindFile})
	if _, ok := file.Encode("data:text/plain;base64,aGk=", Compact); ok {
		t.Fatalf("file should not be encodable in compact mode")
	}
	if got, ok := file.Encode("data:text/plain;base64,aGk=", Verbose); !ok || got != "data:text/plain;base64,aGk=" {
		t.Fatalf("verbose file = %q, %v", got, ok)
	}

	button := mustCodec(t, model.Field{ID: "b", Kind: model.KindButton})
	if _, ok := button.Encode(nil, Verbose); ok {
		t.Fatalf("button should never encode")
	}
	if _, err := button.Decode("x", Verbose); !errors.Is(err, ErrNotEncodable) {
		t.Fatalf("expected ErrNotEncodable, got %v", err)
	}
}

func TestSerialiseAppliesLengthCeiling(t *testing.T) {
	c := mustCodec(t, model.Field{ID: "t", Kind: model.KindText})
	if _, ok := Serialise(c, strings.Repeat("a", MaxEncodedLength), Compact); !ok {
		t.Fatalf("value at the ceiling should serialise")
	}
	if _, ok := Serialise(c, strings.Repeat("a", MaxEncodedLength+1), Compact); ok {
		t.Fatalf("value over the ceiling should be dropped")
	}
}

func TestForFieldUnknownKind(t *testing.T) {
	if _, err := ForField(model.Field{ID: "x", Kind: "knob"}); !errors.Is(err, ErrUnsupportedKind) {
		t.Fatalf("expected ErrUnsupportedKind, got %v", err)
	}
}
