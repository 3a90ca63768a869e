// Package jsonnum composes floating point values from decimal
// mantissa digits and a decimal exponent.
package jsonnum

import "math"

// pow10 holds the powers of ten that are exactly representable in float64.
var pow10 = [...]float64{
	1e0, 1e1, 1e2, 1e3, 1e4, 1e5, 1e6, 1e7, 1e8, 1e9, 1e10, 1e11,
	1e12, 1e13, 1e14, 1e15, 1e16, 1e17, 1e18, 1e19, 1e20, 1e21, 1e22,
}

// MaxCachedExp is the largest exponent served from the table.
const MaxCachedExp = len(pow10) - 1

// maxMantissaDigits is the number of decimal digits that always fit uint64.
const maxMantissaDigits = 19

// Pow10 returns 10^e for e >= 0.
// Exponents up to MaxCachedExp are read from the table,
// larger exponents are computed by exponentiation by squaring.
// Pow10 returns 0 for negative e.
func Pow10(e int) float64 {
	if e < 0 {
		return 0
	}
	if e <= MaxCachedExp {
		return pow10[e]
	}
	r, b := 1.0, 10.0
	for ; e > 0; e >>= 1 {
		if e&1 != 0 {
			r *= b
		}
		b *= b
	}
	return r
}

// Mantissa accumulates up to 19 leading decimal digits into an unsigned
// integer and returns the number of trailing digits that didn't fit,
// which the caller must add to the decimal exponent.
func Mantissa(digits []byte) (m uint64, dropped int) {
	n := len(digits)
	if n > maxMantissaDigits {
		dropped = n - maxMantissaDigits
		n = maxMantissaDigits
	}
	for _, c := range digits[:n] {
		m = m*10 + uint64(c-'0')
	}
	return m, dropped
}

// Compose returns ±mantissa * 10^exp10.
// If mantissa < 1<<53 and |exp10| <= MaxCachedExp the result is
// correctly rounded.
func Compose(mantissa uint64, exp10 int, neg bool) float64 {
	f := float64(mantissa)
	switch {
	case mantissa == 0:
	case exp10 > 0:
		f *= Pow10(exp10)
	case exp10 < 0:
		if exp10 < -308 {
			// Scale in two steps to reach the subnormal range.
			f /= 1e308
			exp10 += 308
		}
		f /= Pow10(-exp10)
	}
	if neg {
		return -f
	}
	return f
}

// Float32 converts f to float32 reporting overflow if f is finite
// but out of the float32 range.
// NaN and infinities are passed through with their sign preserved.
func Float32(f float64) (v float32, overflow bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return float32(f), false
	}
	if math.Abs(f) > math.MaxFloat32 {
		return 0, true
	}
	return float32(f), false
}
