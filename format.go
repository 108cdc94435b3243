package abacus

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

const (
	// Magnitudes above this render in scientific notation.
	sciUpper = 1e15
	// Nonzero magnitudes below this render in scientific notation.
	sciLower = 1e-10
	// Results are rounded to this many decimal places.
	roundScale = 1e10
	// Largest magnitude where every integer is exact in a float64.
	maxExactScaled = 1 << 53
)

// FormatResult renders a raw result as the canonical shortest decimal string.
//
// Very large or very small magnitudes are cut to 11 significant digits.
// Everything else is rounded to 10 decimal places, which absorbs binary
// representation noise such as 0.1+0.2. Non-finite values render as
// "NaN", "Infinity" and "-Infinity".
func FormatResult(x float64) string {
	switch {
	case math.IsNaN(x):
		return "NaN"
	case math.IsInf(x, 1):
		return "Infinity"
	case math.IsInf(x, -1):
		return "-Infinity"
	}

	abs := math.Abs(x)
	if abs > sciUpper || (abs < sciLower && x != 0) {
		v, err := strconv.ParseFloat(strconv.FormatFloat(x, 'e', 10, 64), 64)
		if err == nil {
			x = v
		}
		return formatNumber(x)
	}

	// Past maxExactScaled the scaled value is no longer an exact integer and
	// dividing back adds noise. A double that large is already coarser than
	// 1/roundScale, so it needs no rounding.
	if abs*roundScale >= maxExactScaled {
		return formatNumber(x)
	}

	// Round half up, not half away from zero.
	rounded := math.Floor(x*roundScale+0.5) / roundScale
	return formatNumber(rounded)
}

// formatNumber produces the shortest string that round-trips to a finite x.
// Plain notation is used for 1e-7 <= |x| < 1e21, exponent notation otherwise,
// with an unpadded exponent ("1e-11", "1.5e+21").
func formatNumber(x float64) string {
	if x == 0 {
		// Also covers negative zero.
		return "0"
	}

	abs := math.Abs(x)
	if abs >= 1e21 || abs < 1e-7 {
		s := strconv.FormatFloat(x, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		sign := exp[:1]
		exp = strings.TrimLeft(exp[1:], "0")
		if exp == "" {
			exp = "0"
		}
		return mant + "e" + sign + exp
	}
	return strconv.FormatFloat(x, 'f', -1, 64)
}

// parseOperand reads a number the way a browser's parseFloat does: the
// longest prefix that forms a decimal literal is used, so "3." and "1e-7."
// both parse. It reports false when no prefix is a number.
func parseOperand(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	for end := len(s); end > 0; end-- {
		v, err := strconv.ParseFloat(s[:end], 64)
		if err == nil {
			return v, true
		}
		// Out-of-range literals still carry a usable value (±Inf or 0).
		if errors.Is(err, strconv.ErrRange) {
			return v, true
		}
	}
	return math.NaN(), false
}
