package model

import (
	"strings"
	"unicode"
)

// DefaultLabeler turns a field id such as "strokeWidth2" or "bg_color" into
// "Stroke width 2" / "Bg color". Runs of capitals are kept together so
// "svgURL" becomes "Svg URL".
func DefaultLabeler(id string) string {
	words := splitWords(id)
	if len(words) == 0 {
		return ""
	}
	for i, word := range words {
		if isAcronym(word) {
			continue
		}
		words[i] = strings.ToLower(word)
	}
	first := []rune(words[0])
	first[0] = unicode.ToUpper(first[0])
	words[0] = string(first)
	return strings.Join(words, " ")
}

func splitWords(id string) []string {
	var (
		words   []string
		current []rune
	)
	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = current[:0]
		}
	}

	runes := []rune(strings.TrimSpace(id))
	for i, r := range runes {
		if r == '_' || r == '-' || unicode.IsSpace(r) {
			flush()
			continue
		}
		if i > 0 && len(current) > 0 && wordBoundary(runes, i) {
			flush()
		}
		current = append(current, r)
	}
	flush()
	return words
}

func wordBoundary(runes []rune, i int) bool {
	prev, cur := runes[i-1], runes[i]
	switch {
	case unicode.IsLower(prev) && unicode.IsUpper(cur):
		return true
	case unicode.IsLetter(prev) && unicode.IsDigit(cur):
		return true
	case unicode.IsDigit(prev) && unicode.IsLetter(cur):
		return true
	case unicode.IsUpper(prev) && unicode.IsUpper(cur) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
		return true
	}
	return false
}

func isAcronym(word string) bool {
	if len(word) < 2 {
		return false
	}
	for _, r := range word {
		if !unicode.IsUpper(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
