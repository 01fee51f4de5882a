package codec

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-paramconfig/pkg/model"
)

// DatetimeLayout is the verbose wire layout: local wall clock, no zone.
const DatetimeLayout = "2006-01-02T15:04:05"

var datetimeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

type datetimeCodec struct{ base }

func newDatetime(field model.Field) (Codec, error) {
	c := &datetimeCodec{base{field: field}}
	def, err := resolveDefault(field, c.Coerce, time.Time{})
	if err != nil {
		return nil, err
	}
	c.def = def
	return c, nil
}

func (c *datetimeCodec) Coerce(v any) (any, error) {
	switch value := v.(type) {
	case time.Time:
		return value, nil
	case string:
		t, err := ParseDatetime(value)
		if err != nil {
			return nil, err
		}
		return t, nil
	}
	return nil, invalid(c.field, v)
}

// ParseDatetime reads a local wall-clock timestamp. Missing seconds, a
// fractional part and a trailing "Z" are tolerated; the zone marker is
// ignored so the value always lands in time.Local.
func ParseDatetime(s string) (time.Time, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "Z")
	for _, layout := range datetimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: datetime %q", ErrInvalidValue, s)
}

func (c *datetimeCodec) Encode(v any, mode Mode) (string, bool) {
	t, ok := v.(time.Time)
	if !ok {
		return "", false
	}
	t = t.In(time.Local)
	if mode == Verbose {
		return EscapeComponent(t.Format(DatetimeLayout)), true
	}
	return EncodeSigned(wallMinutes(t), 0), true
}

func (c *datetimeCodec) Decode(raw string, mode Mode) (any, error) {
	if mode == Verbose {
		unescaped, err := url.PathUnescape(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		return ParseDatetime(unescaped)
	}
	minutes, err := DecodeInt(raw)
	if err != nil {
		return nil, err
	}
	return fromWallMinutes(int64(minutes)), nil
}

// Equal compares at millisecond precision.
func (c *datetimeCodec) Equal(a, b any) bool {
	x, okA := a.(time.Time)
	y, okB := b.(time.Time)
	return okA && okB && x.UnixMilli() == y.UnixMilli()
}

// wallMinutes counts minutes from the epoch as read on the local wall
// clock, so the compact form carries no zone offset.
func wallMinutes(t time.Time) int64 {
	wall := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
	return wall.Unix() / 60
}

func fromWallMinutes(minutes int64) time.Time {
	wall := time.Unix(minutes*60, 0).UTC()
	return time.Date(wall.Year(), wall.Month(), wall.Day(), wall.Hour(), wall.Minute(), 0, 0, time.Local)
}
