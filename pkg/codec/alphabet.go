package codec

import (
	"errors"
	"fmt"
	"strings"
)

// Alphabet is the 64-symbol digit set used for compact integers and keys.
// It is not RFC 4648: digits come first so that small numbers stay readable
// and both extra symbols are safe inside a query string.
const Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz+-"

var (
	ErrInvalidSymbol = errors.New("codec: symbol outside alphabet")
	ErrOverflow      = errors.New("codec: integer overflow")
)

var symbolIndex = func() [256]int8 {
	var table [256]int8
	for i := range table {
		table[i] = -1
	}
	for i := 0; i < len(Alphabet); i++ {
		table[Alphabet[i]] = int8(i)
	}
	return table
}()

// EncodeInt writes n big-endian over Alphabet. Zero encodes as "" unless
// minLen asks for padding, in which case the result is left-padded with '0'.
func EncodeInt(n uint64, minLen int) string {
	var buf [11]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = Alphabet[n&63]
		n >>= 6
	}
	digits := string(buf[pos:])
	if pad := minLen - len(digits); pad > 0 {
		return strings.Repeat(string(Alphabet[0]), pad) + digits
	}
	return digits
}

// EncodeSigned encodes the magnitude of n. The sign is dropped, so negative
// values do not survive a round trip.
func EncodeSigned(n int64, minLen int) string {
	if n < 0 {
		return EncodeInt(uint64(-n), minLen)
	}
	return EncodeInt(uint64(n), minLen)
}

// DecodeInt reverses EncodeInt. The empty string decodes to zero.
func DecodeInt(s string) (uint64, error) {
	var n uint64
	for i := 0; i < len(s); i++ {
		digit := symbolIndex[s[i]]
		if digit < 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidSymbol, s[i])
		}
		if n > (1<<64-1)>>6 {
			return 0, fmt.Errorf("%w: %q", ErrOverflow, s)
		}
		n = n<<6 | uint64(digit)
	}
	return n, nil
}
