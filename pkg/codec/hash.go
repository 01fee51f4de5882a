package codec

import "unicode/utf16"

// KeyLength is the width of compact query keys.
const KeyLength = 6

// HashKey derives the fixed-width compact key for a field id: the classic
// h*31+c string hash over UTF-16 code units, folded to an unsigned 32-bit
// value, encoded over Alphabet and cut to the last length symbols.
func HashKey(id string, length int) string {
	var h uint32
	for _, unit := range utf16.Encode([]rune(id)) {
		h = h*31 + uint32(unit)
	}
	key := EncodeInt(uint64(h), length)
	if length > 0 && len(key) > length {
		key = key[len(key)-length:]
	}
	return key
}
