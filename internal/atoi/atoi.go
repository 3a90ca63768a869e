// Package atoi assembles integers from ASCII digits with checked arithmetic.
package atoi

import (
	"errors"
	"math/bits"
)

// BufferSize is the capacity of Buffer in bytes.
const BufferSize = 64

var ErrBufferFull = errors.New("digit buffer capacity exceeded")

// Buffer is a fixed-capacity accumulator of digit and sign bytes.
// The zero value is an empty buffer.
type Buffer struct {
	b [BufferSize]byte
	n uint8
}

// Push appends c or returns ErrBufferFull without modifying the buffer
// if its capacity is exhausted.
func (b *Buffer) Push(c byte) error {
	if int(b.n) >= BufferSize {
		return ErrBufferFull
	}
	b.b[b.n] = c
	b.n++
	return nil
}

// Reset empties the buffer.
func (b *Buffer) Reset() { b.n = 0 }

// Len returns the number of bytes in the buffer.
func (b *Buffer) Len() int { return int(b.n) }

// Bytes returns the accumulated bytes.
// The returned slice is only valid until the next call to Push or Reset.
func (b *Buffer) Bytes() []byte { return b.b[:b.n] }

// Negative returns true if the first byte is '-'.
func (b *Buffer) Negative() bool { return b.n > 0 && b.b[0] == '-' }

// Signed returns true if the first byte is either '-' or '+'.
func (b *Buffer) Signed() bool { return b.n > 0 && (b.b[0] == '-' || b.b[0] == '+') }

// Digits returns the accumulated bytes without the leading sign.
func (b *Buffer) Digits() []byte {
	if b.Signed() {
		return b.b[1:b.n]
	}
	return b.b[:b.n]
}

func splitSign[S []byte | string](s S) (digits S, neg bool) {
	if len(s) > 0 {
		switch s[0] {
		case '-':
			return s[1:], true
		case '+':
			return s[1:], false
		}
	}
	return s, false
}

// magnitude accumulates decimal digits of s into an unsigned integer
// returning overflow=true once the value would exceed limit.
// s must only contain bytes from '0' to '9'.
func magnitude[S []byte | string](s S, limit uint64) (m uint64, overflow bool) {
	for i := 0; i < len(s); i++ {
		d := uint64(s[i] - '0')
		if d > limit || m > (limit-d)/10 {
			return 0, true
		}
		m = m*10 + d
	}
	return m, false
}

// Int parses s of the form [-+]?[0-9]* as a signed integer of bitSize bits.
// An empty digit sequence yields 0.
func Int[S []byte | string](s S, bitSize int) (v int64, overflow bool) {
	digits, neg := splitSign(s)
	limit := uint64(1)<<(bitSize-1) - 1
	if neg {
		limit++
	}
	m, overflow := magnitude(digits, limit)
	if overflow {
		return 0, true
	}
	if neg {
		return -int64(m), false
	}
	return int64(m), false
}

// Uint parses s of the form [-+]?[0-9]* as an unsigned integer of bitSize bits.
// A negative sign is only accepted for a zero magnitude.
func Uint[S []byte | string](s S, bitSize int) (v uint64, overflow bool) {
	digits, neg := splitSign(s)
	limit := uint64(1)<<bitSize - 1
	if bitSize >= 64 {
		limit = 1<<64 - 1
	}
	m, overflow := magnitude(digits, limit)
	if overflow || (neg && m != 0) {
		return 0, true
	}
	return m, false
}

// mul10add computes (hi,lo)*10+d reporting overflow of 128 bits.
func mul10add(hi, lo, d uint64) (uint64, uint64, bool) {
	carry, lo := bits.Mul64(lo, 10)
	h1, hi := bits.Mul64(hi, 10)
	if h1 != 0 {
		return 0, 0, true
	}
	var c uint64
	hi, c = bits.Add64(hi, carry, 0)
	if c != 0 {
		return 0, 0, true
	}
	lo, c = bits.Add64(lo, d, 0)
	hi, c = bits.Add64(hi, 0, c)
	if c != 0 {
		return 0, 0, true
	}
	return hi, lo, false
}

func magnitude128[S []byte | string](s S) (hi, lo uint64, overflow bool) {
	for i := 0; i < len(s); i++ {
		if hi, lo, overflow = mul10add(hi, lo, uint64(s[i]-'0')); overflow {
			return 0, 0, true
		}
	}
	return hi, lo, false
}

// Uint128 parses s as an unsigned 128-bit integer returned as a word pair.
func Uint128[S []byte | string](s S) (hi, lo uint64, overflow bool) {
	digits, neg := splitSign(s)
	if hi, lo, overflow = magnitude128(digits); overflow {
		return 0, 0, true
	}
	if neg && (hi != 0 || lo != 0) {
		return 0, 0, true
	}
	return hi, lo, false
}

// Int128 parses s as a signed two's complement 128-bit integer
// returned as a word pair.
func Int128[S []byte | string](s S) (hi int64, lo uint64, overflow bool) {
	digits, neg := splitSign(s)
	h, l, overflow := magnitude128(digits)
	if overflow {
		return 0, 0, true
	}
	const signBit = 1 << 63
	if neg {
		if h > signBit || (h == signBit && l != 0) {
			return 0, 0, true
		}
		h, l = negate128(h, l)
		return int64(h), l, false
	}
	if h >= signBit {
		return 0, 0, true
	}
	return int64(h), l, false
}

// negate128 returns the two's complement of (hi,lo).
func negate128(hi, lo uint64) (uint64, uint64) {
	lo, c := bits.Add64(^lo, 1, 0)
	hi, _ = bits.Add64(^hi, 0, c)
	return hi, lo
}

// HexDigit returns the value of the hexadecimal digit c
// or -1 if c isn't one of 0-9, A-F, a-f.
func HexDigit(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}

// Hex parses s of the form [-+]?[0-9A-Fa-f]* as an integer of bitSize bits.
// For unsigned targets the digits must fit into bitSize bits.
// For signed targets the digits are reinterpreted as a two's complement
// bit pattern of bitSize bits, a leading '-' negates the magnitude instead.
// The result is sign-extended to 64 bits for signed targets.
// invalid is true if s contains a byte that isn't a hex digit.
func Hex[S []byte | string](
	s S, bitSize int, signed bool,
) (v uint64, overflow, invalid bool) {
	digits, neg := splitSign(s)
	for i := 0; i < len(digits); i++ {
		d := HexDigit(digits[i])
		if d < 0 {
			return 0, false, true
		}
		if v>>(bitSize-4) != 0 {
			return 0, true, false
		}
		v = v<<4 | uint64(d)
	}
	if bitSize < 64 && v>>bitSize != 0 {
		return 0, true, false
	}
	if !signed {
		if neg && v != 0 {
			return 0, true, false
		}
		return v, false, false
	}
	shift := 64 - bitSize
	if neg {
		if v > uint64(1)<<(bitSize-1) {
			return 0, true, false
		}
		return uint64(-int64(v)), false, false
	}
	// Sign-extend the bitSize-wide pattern.
	return uint64(int64(v<<shift) >> shift), false, false
}
