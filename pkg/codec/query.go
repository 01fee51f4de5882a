package codec

import (
	"regexp"
	"strings"
)

const (
	// ExtraKey carries caller data in verbose queries.
	ExtraKey = "extra"
	// CompactExtraKey carries caller data in compact queries.
	CompactExtraKey = "e"
)

var verbosePair = regexp.MustCompile(`(?:^|&)([^&=]+)(?:=([^&]*))?`)

// Query is the raw key/value view of a URL query string. Values are kept
// exactly as they appeared; every field codec decodes its own value.
type Query struct {
	mode     Mode
	values   map[string]string
	order    []string
	extra    string
	hasExtra bool
}

// ParseQuery splits query according to mode. A leading '?' is optional and
// malformed segments are skipped rather than reported.
func ParseQuery(query string, mode Mode) Query {
	q := Query{mode: mode, values: make(map[string]string)}
	if mode == Compact {
		q.parseCompact(query)
	} else {
		q.parseVerbose(query)
	}
	return q
}

func (q *Query) parseVerbose(query string) {
	query = strings.TrimPrefix(query, "?")
	for _, match := range verbosePair.FindAllStringSubmatch(query, -1) {
		key, value := match[1], match[2]
		if key == ExtraKey {
			q.extra, q.hasExtra = value, true
			continue
		}
		q.set(key, value)
	}
}

func (q *Query) parseCompact(query string) {
	query = strings.TrimPrefix(query, "?")
	for _, segment := range strings.Split(query, "&") {
		if rest, ok := strings.CutPrefix(segment, CompactExtraKey+"="); ok {
			q.extra, q.hasExtra = rest, true
			continue
		}
		if len(segment) < KeyLength {
			continue
		}
		q.set(segment[:KeyLength], segment[KeyLength:])
	}
}

func (q *Query) set(key, value string) {
	if _, exists := q.values[key]; !exists {
		q.order = append(q.order, key)
	}
	q.values[key] = value
}

// Mode reports the encoding the query was parsed with.
func (q Query) Mode() Mode { return q.mode }

// Get returns the raw value for key. A key written without "=value" is
// present with an empty value.
func (q Query) Get(key string) (string, bool) {
	value, ok := q.values[key]
	return value, ok
}

// Extra returns the reserved pseudo-field.
func (q Query) Extra() (string, bool) {
	return q.extra, q.hasExtra
}

// Keys lists keys in first-seen order.
func (q Query) Keys() []string {
	return append([]string(nil), q.order...)
}

// Len reports the number of distinct keys, excluding extra.
func (q Query) Len() int { return len(q.order) }

// Pair formats a single query entry. Compact keys have a fixed width so no
// separator is written.
func Pair(key, value string, mode Mode) string {
	if mode == Compact {
		return key + value
	}
	return key + "=" + value
}

// ExtraPair formats the reserved pseudo-field for mode.
func ExtraPair(value string, mode Mode) string {
	if mode == Compact {
		return CompactExtraKey + "=" + value
	}
	return ExtraKey + "=" + value
}

// QueryKey returns the query key used for a field id in mode.
func QueryKey(id string, mode Mode) string {
	if mode == Compact {
		return HashKey(id, KeyLength)
	}
	return id
}
