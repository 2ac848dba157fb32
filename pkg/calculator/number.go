package calculator

import (
	"math"
	"strconv"
	"strings"
)

const infinity = "Infinity"

// ParseFloat parses the longest numeric prefix of s, ignoring leading whitespace
// and any trailing characters. It returns NaN when s has no numeric prefix,
// so "", "-" and "." are all NaN while "12abc" is 12 and "Infinity" is +Inf.
func ParseFloat(s string) float64 {
	s = strings.TrimLeft(s, " \t\n\r\v\f")

	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	if strings.HasPrefix(s[i:], infinity) {
		if s[0] == '-' {
			return math.Inf(-1)
		}
		return math.Inf(1)
	}

	digits := 0
	for i < len(s) && isDecimal(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDecimal(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return math.NaN()
	}

	// Exponent only counts when at least one exponent digit follows.
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && isDecimal(s[j]) {
			for j < len(s) && isDecimal(s[j]) {
				j++
			}
			i = j
		}
	}

	// Out-of-range literals still carry the correctly rounded value (±Inf or 0).
	v, err := strconv.ParseFloat(s[:i], 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); !ok || ne.Err != strconv.ErrRange {
			return math.NaN()
		}
	}
	return v
}

// FormatNumber renders f using the shortest representation that round-trips.
// Magnitudes in [1e-7, 1e21) use fixed notation, others use exponential
// notation with an explicit exponent sign ("1e+21", "1.5e-7").
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return infinity
	case math.IsInf(f, -1):
		return "-" + infinity
	case f == 0:
		return "0"
	}

	sign := ""
	if f < 0 {
		sign = "-"
		f = -f
	}

	// Shortest digits and decimal exponent: d.ddde±XX
	sci := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, exp, _ := strings.Cut(sci, "e")
	digits := strings.Replace(mantissa, ".", "", 1)
	e, _ := strconv.Atoi(exp)

	k := len(digits)
	n := e + 1 // position of the decimal point relative to digits

	var b strings.Builder
	b.WriteString(sign)
	switch {
	case k <= n && n <= 21:
		b.WriteString(digits)
		b.WriteString(strings.Repeat("0", n-k))
	case 0 < n && n <= 21:
		b.WriteString(digits[:n])
		b.WriteByte('.')
		b.WriteString(digits[n:])
	case -6 < n && n <= 0:
		b.WriteString("0.")
		b.WriteString(strings.Repeat("0", -n))
		b.WriteString(digits)
	default:
		b.WriteByte(digits[0])
		if k > 1 {
			b.WriteByte('.')
			b.WriteString(digits[1:])
		}
		b.WriteByte('e')
		if n-1 >= 0 {
			b.WriteByte('+')
		}
		b.WriteString(strconv.Itoa(n - 1))
	}
	return b.String()
}

func isDecimal(c byte) bool {
	return c >= '0' && c <= '9'
}
