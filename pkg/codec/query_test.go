package codec

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseQueryVerbose(t *testing.T) {
	q := ParseQuery("?exampleNumber=10&flag&label=Foo%2C%20Bar&extra=hello&exampleNumber=12", Verbose)

	if got, ok := q.Get("exampleNumber"); !ok || got != "12" {
		t.Fatalf("exampleNumber = %q (%v), want last value 12", got, ok)
	}
	if got, ok := q.Get("flag"); !ok || got != "" {
		t.Fatalf("flag = %q (%v), want present and empty", got, ok)
	}
	if got, _ := q.Get("label"); got != "Foo%2C%20Bar" {
		t.Fatalf("label should stay percent-encoded, got %q", got)
	}
	if extra, ok := q.Extra(); !ok || extra != "hello" {
		t.Fatalf("extra = %q (%v)", extra, ok)
	}
	if diff := cmp.Diff([]string{"exampleNumber", "flag", "label"}, q.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestParseQueryVerboseWithoutLeadingMark(t *testing.T) {
	q := ParseQuery("a=1&b=2", Verbose)
	if q.Len() != 2 {
		t.Fatalf("expected two keys, got %v", q.Keys())
	}
	if _, ok := q.Extra(); ok {
		t.Fatalf("extra should be absent")
	}
}

func TestParseQueryVerboseExtraPosition(t *testing.T) {
	cases := []struct {
		name  string
		query string
	}{
		{name: "leading", query: "?extra=x&a=1"},
		{name: "leading without mark", query: "extra=x&a=1"},
		{name: "trailing", query: "?a=1&extra=x"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := ParseQuery(tc.query, Verbose)
			if extra, ok := q.Extra(); !ok || extra != "x" {
				t.Fatalf("extra = %q (%v)", extra, ok)
			}
			if diff := cmp.Diff([]string{"a"}, q.Keys()); diff != "" {
				t.Fatalf("keys mismatch (-want +got):\n%s", diff)
			}
			if got, _ := q.Get("a"); got != "1" {
				t.Fatalf("a = %q", got)
			}
		})
	}
}

func TestParseQueryCompact(t *testing.T) {
	key := HashKey("exampleNumber", KeyLength)
	q := ParseQuery("?"+key+"10&e=&00001X&abc", Compact)

	if got, ok := q.Get(key); !ok || got != "10" {
		t.Fatalf("%s = %q (%v)", key, got, ok)
	}
	if got, ok := q.Get("00001X"); !ok || got != "" {
		t.Fatalf("bare key = %q (%v)", got, ok)
	}
	if extra, ok := q.Extra(); !ok || extra != "" {
		t.Fatalf("extra = %q (%v), want present and empty", extra, ok)
	}
	if q.Len() != 2 {
		t.Fatalf("short segments should be ignored, keys = %v", q.Keys())
	}
}

func TestPairFormatting(t *testing.T) {
	if got := Pair("id", "v", Verbose); got != "id=v" {
		t.Fatalf("verbose pair = %q", got)
	}
	if got := Pair("ABCDEF", "v", Compact); got != "ABCDEFv" {
		t.Fatalf("compact pair = %q", got)
	}
	if got := ExtraPair("", Verbose); got != "extra=" {
		t.Fatalf("verbose extra = %q", got)
	}
	if got := ExtraPair("x", Compact); got != "e=x" {
		t.Fatalf("compact extra = %q", got)
	}
	if got := QueryKey("a", Compact); got != "00001X" {
		t.Fatalf("compact key = %q", got)
	}
}
