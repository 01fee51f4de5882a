package codec

import "strings"

const upperhex = "0123456789ABCDEF"

// EscapeComponent percent-encodes s with the encodeURIComponent character
// set: letters, digits and -_.!~*'() pass through, everything else is
// written as UTF-8 %XX triplets. url.PathUnescape reverses it.
func EscapeComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if componentSafe(ch) {
			b.WriteByte(ch)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[ch>>4])
		b.WriteByte(upperhex[ch&15])
	}
	return b.String()
}

func componentSafe(ch byte) bool {
	switch {
	case 'a' <= ch && ch <= 'z', 'A' <= ch && ch <= 'Z', '0' <= ch && ch <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", ch) >= 0
}

// EscapeCell protects the collection separator inside one cell.
func EscapeCell(s string) string {
	if !strings.ContainsAny(s, `\,`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' || s[i] == ',' {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// SplitCells splits on unescaped commas and unescapes every cell. A
// trailing lone backslash is kept literally.
func SplitCells(s string) []string {
	var (
		cells   []string
		current strings.Builder
	)
	for i := 0; i < len(s); i++ {
		switch ch := s[i]; {
		case ch == '\\' && i+1 < len(s):
			i++
			current.WriteByte(s[i])
		case ch == ',':
			cells = append(cells, current.String())
			current.Reset()
		default:
			current.WriteByte(ch)
		}
	}
	return append(cells, current.String())
}
