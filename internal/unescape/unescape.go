// Package unescape incrementally decodes the contents of JSON strings
// one byte at a time.
package unescape

import (
	"errors"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/romshark/jscan-partial/internal/atoi"
)

var (
	ErrInvalidUTF8   = errors.New("invalid UTF-8 sequence")
	ErrInvalidEscape = errors.New("invalid escape sequence")
	ErrControlChar   = errors.New("control character in string")
)

type state uint8

const (
	stateChar state = iota
	stateUTF8
	stateEscape
	stateHex
	stateSurrogateBackslash
	stateSurrogateU
)

// Decoder is the resumable state of a string being decoded.
// The zero value is ready to decode the first byte after an opening quote.
type Decoder struct {
	seq     [utf8.UTFMax]byte
	hex     atoi.Buffer
	high    rune // Pending high surrogate
	seqLen  uint8
	seqNeed uint8
	state   state
}

// Reset prepares the decoder for a new string.
func (d *Decoder) Reset() { *d = Decoder{} }

// Step consumes byte b of the string contents.
// It returns dst extended by the character b completed, if any.
// end is true if b is the closing quote.
// A byte that only partially determines a character returns dst unchanged.
func (d *Decoder) Step(dst []byte, b byte) (out []byte, end bool, err error) {
	switch d.state {
	case stateUTF8:
		if b&0xC0 != 0x80 {
			return dst, false, ErrInvalidUTF8
		}
		d.seq[d.seqLen] = b
		d.seqLen++
		if d.seqLen < d.seqNeed {
			return dst, false, nil
		}
		d.state = stateChar
		if r, size := utf8.DecodeRune(d.seq[:d.seqLen]); r == utf8.RuneError && size < 2 {
			// Overlong encodings and encoded surrogates.
			return dst, false, ErrInvalidUTF8
		}
		return append(dst, d.seq[:d.seqLen]...), false, nil

	case stateEscape:
		d.state = stateChar
		switch b {
		case '"', '\\', '/':
			return append(dst, b), false, nil
		case 'b':
			return append(dst, '\b'), false, nil
		case 'f':
			return append(dst, '\f'), false, nil
		case 'n':
			return append(dst, '\n'), false, nil
		case 'r':
			return append(dst, '\r'), false, nil
		case 't':
			return append(dst, '\t'), false, nil
		case 'u':
			d.state = stateHex
			d.hex.Reset()
			return dst, false, nil
		}
		return dst, false, ErrInvalidEscape

	case stateHex:
		if atoi.HexDigit(b) < 0 {
			return dst, false, ErrInvalidEscape
		}
		_ = d.hex.Push(b) // Never exceeds 4 bytes
		if d.hex.Len() < 4 {
			return dst, false, nil
		}
		v, _, _ := atoi.Hex(d.hex.Bytes(), 16, false)
		d.state = stateChar
		return d.codepoint(dst, rune(v)), false, nil

	case stateSurrogateBackslash:
		if b != '\\' {
			dst = utf8.AppendRune(dst, utf8.RuneError)
			d.high, d.state = 0, stateChar
			return d.char(dst, b)
		}
		d.state = stateSurrogateU
		return dst, false, nil

	case stateSurrogateU:
		if b != 'u' {
			dst = utf8.AppendRune(dst, utf8.RuneError)
			d.high, d.state = 0, stateEscape
			return d.Step(dst, b)
		}
		d.state = stateHex
		d.hex.Reset()
		return dst, false, nil
	}
	return d.char(dst, b)
}

func (d *Decoder) char(dst []byte, b byte) ([]byte, bool, error) {
	switch {
	case b == '"':
		return dst, true, nil
	case b == '\\':
		d.state = stateEscape
		return dst, false, nil
	case b < 0x20:
		return dst, false, ErrControlChar
	case b < utf8.RuneSelf:
		return append(dst, b), false, nil
	case b >= 0xC2 && b <= 0xDF:
		d.seqNeed = 2
	case b >= 0xE0 && b <= 0xEF:
		d.seqNeed = 3
	case b >= 0xF0 && b <= 0xF4:
		d.seqNeed = 4
	default:
		return dst, false, ErrInvalidUTF8
	}
	d.seq[0], d.seqLen, d.state = b, 1, stateUTF8
	return dst, false, nil
}

// codepoint appends r resolving UTF-16 surrogate pairs.
// Unpaired surrogates are replaced by utf8.RuneError.
func (d *Decoder) codepoint(dst []byte, r rune) []byte {
	if d.high != 0 {
		high := d.high
		d.high = 0
		if utf16.IsSurrogate(r) && r >= 0xDC00 {
			return utf8.AppendRune(dst, utf16.DecodeRune(high, r))
		}
		dst = utf8.AppendRune(dst, utf8.RuneError)
	}
	switch {
	case r >= 0xD800 && r < 0xDC00:
		d.high, d.state = r, stateSurrogateBackslash
		return dst
	case utf16.IsSurrogate(r):
		r = utf8.RuneError
	}
	return utf8.AppendRune(dst, r)
}
