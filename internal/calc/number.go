package calc

import (
	"errors"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

var (
	decimalLiteral = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)
	radixLiteral   = regexp.MustCompile(`^0([xX][0-9a-fA-F]+|[oO][0-7]+|[bB][01]+)$`)
)

// ParseNumber converts s to a float64. Surrounding whitespace, including
// the byte order mark, is ignored.
// Decimal literals with an optional exponent, Infinity with an optional
// sign, and unsigned 0x/0o/0b integer literals are accepted. Values beyond
// the float64 range become infinities.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimFunc(s, isNumberSpace)

	switch s {
	case "":
		return 0, false
	case "Infinity", "+Infinity":
		return math.Inf(1), true
	case "-Infinity":
		return math.Inf(-1), true
	}

	if radixLiteral.MatchString(s) {
		return parseRadix(s)
	}

	if !decimalLiteral.MatchString(s) {
		return 0, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}

	if math.IsNaN(f) {
		return 0, false
	}

	return f, true
}

// isNumberSpace reports whether r may surround a number: ASCII whitespace,
// the Zs space separators, U+2028, U+2029 and the byte order mark. Unlike
// unicode.IsSpace it accepts U+FEFF and rejects U+0085.
func isNumberSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ', '\u00a0', '\u1680',
		'\u2028', '\u2029', '\u202f', '\u205f', '\u3000', '\ufeff':
		return true
	}
	return r >= '\u2000' && r <= '\u200a'
}

func parseRadix(s string) (float64, bool) {
	base := 16
	switch s[1] {
	case 'o', 'O':
		base = 8
	case 'b', 'B':
		base = 2
	}

	n, ok := new(big.Int).SetString(s[2:], base)
	if !ok {
		return 0, false
	}

	f, _ := new(big.Float).SetInt(n).Float64()
	return f, true
}

// FormatNumber renders f as decimal text: integers carry no fraction,
// other values use the shortest representation that round-trips, and
// magnitudes of at least 1e21 or below 1e-6 switch to exponent form.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	abs := math.Abs(f)
	if abs < 1e21 && abs >= 1e-6 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	// strconv pads the exponent to two digits (1e-07).
	mantissa, exp, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
	return mantissa + "e" + exp[:1] + strings.TrimLeft(exp[1:], "0")
}
