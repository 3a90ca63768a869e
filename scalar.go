package jscanpartial

import (
	"math"
	"strconv"
	"unsafe"

	"golang.org/x/exp/constraints"

	"github.com/romshark/jscan-partial/internal/jsonnum"
)

// Scalar is an immutable tagged primitive value.
// Scalars are comparable using ==, equality is structural.
type Scalar struct {
	str  string
	lo   uint64 // Integer bits, float64 bits, bool or low word of 128-bit values.
	hi   uint64 // High word of 128-bit values.
	kind Kind
}

// Int128 is a signed two's complement 128-bit integer.
type Int128 struct {
	Hi int64
	Lo uint64
}

// Uint128 is an unsigned 128-bit integer.
type Uint128 struct{ Hi, Lo uint64 }

func Str(v string) Scalar      { return Scalar{kind: KindString, str: v} }
func Double(v float64) Scalar  { return Scalar{kind: KindDouble, lo: math.Float64bits(v)} }
func Float(v float32) Scalar   { return Scalar{kind: KindFloat, lo: math.Float64bits(float64(v))} }
func Null() Scalar             { return Scalar{kind: KindNull} }
func Int8(v int8) Scalar       { return Scalar{kind: KindInt8, lo: uint64(int64(v))} }
func Int16(v int16) Scalar     { return Scalar{kind: KindInt16, lo: uint64(int64(v))} }
func Int32(v int32) Scalar     { return Scalar{kind: KindInt32, lo: uint64(int64(v))} }
func Int64(v int64) Scalar     { return Scalar{kind: KindInt64, lo: uint64(v)} }
func Uint8(v uint8) Scalar     { return Scalar{kind: KindUint8, lo: uint64(v)} }
func Uint16(v uint16) Scalar   { return Scalar{kind: KindUint16, lo: uint64(v)} }
func Uint32(v uint32) Scalar   { return Scalar{kind: KindUint32, lo: uint64(v)} }
func Uint64(v uint64) Scalar   { return Scalar{kind: KindUint64, lo: v} }
func Int128Value(v Int128) Scalar {
	return Scalar{kind: KindInt128, hi: uint64(v.Hi), lo: v.Lo}
}
func Uint128Value(v Uint128) Scalar {
	return Scalar{kind: KindUint128, hi: v.Hi, lo: v.Lo}
}

func Bool(v bool) Scalar {
	if v {
		return Scalar{kind: KindBool, lo: 1}
	}
	return Scalar{kind: KindBool}
}

// Kind returns the type of s.
func (s Scalar) Kind() Kind { return s.kind }

// IsNull returns true if s is the null value.
func (s Scalar) IsNull() bool { return s.kind == KindNull }

func (s Scalar) String() string {
	var v string
	switch {
	case s.kind == KindString:
		v = strconv.Quote(s.str)
	case s.kind == KindBool:
		v = strconv.FormatBool(s.lo == 1)
	case s.kind == KindNull:
		return "null"
	case s.kind.isFloat():
		v = strconv.FormatFloat(math.Float64frombits(s.lo), 'g', -1, s.kind.bitSize())
	case s.kind.isSigned():
		v = strconv.FormatInt(int64(s.lo), 10)
	case s.kind.isUnsigned():
		v = strconv.FormatUint(s.lo, 10)
	case s.kind == KindInt128, s.kind == KindUint128:
		v = "0x" + strconv.FormatUint(s.hi, 16) + "_" + strconv.FormatUint(s.lo, 16)
	default:
		return "invalid"
	}
	return s.kind.String() + "(" + v + ")"
}

// AsString returns the value of a KindString scalar.
func (s Scalar) AsString() (string, error) {
	if s.kind != KindString {
		return "", ErrTypeMismatch
	}
	return s.str, nil
}

// AsBool returns the value of a KindBool scalar.
func (s Scalar) AsBool() (bool, error) {
	if s.kind != KindBool {
		return false, ErrTypeMismatch
	}
	return s.lo == 1, nil
}

// AsInt128 converts any integer scalar to Int128.
func (s Scalar) AsInt128() (Int128, error) {
	switch {
	case s.kind.isSigned():
		v := int64(s.lo)
		return Int128{Hi: v >> 63, Lo: s.lo}, nil
	case s.kind.isUnsigned():
		return Int128{Lo: s.lo}, nil
	case s.kind == KindInt128:
		return Int128{Hi: int64(s.hi), Lo: s.lo}, nil
	case s.kind == KindUint128:
		if s.hi>>63 != 0 {
			return Int128{}, ErrNumericOverflow
		}
		return Int128{Hi: int64(s.hi), Lo: s.lo}, nil
	}
	return Int128{}, ErrTypeMismatch
}

// AsUint128 converts any integer scalar to Uint128.
func (s Scalar) AsUint128() (Uint128, error) {
	switch {
	case s.kind.isSigned():
		if int64(s.lo) < 0 {
			return Uint128{}, ErrNumericOverflow
		}
		return Uint128{Lo: s.lo}, nil
	case s.kind.isUnsigned():
		return Uint128{Lo: s.lo}, nil
	case s.kind == KindInt128:
		if int64(s.hi) < 0 {
			return Uint128{}, ErrNumericOverflow
		}
		return Uint128{Hi: s.hi, Lo: s.lo}, nil
	case s.kind == KindUint128:
		return Uint128{Hi: s.hi, Lo: s.lo}, nil
	}
	return Uint128{}, ErrTypeMismatch
}

// ToInt converts an integer scalar to T.
// It fails with ErrNumericOverflow if the value doesn't fit T
// and with ErrTypeMismatch for non-integer scalars.
func ToInt[T constraints.Signed](s Scalar) (T, error) {
	bits := int(unsafe.Sizeof(T(0))) * 8
	var v int64
	switch {
	case s.kind.isSigned():
		v = int64(s.lo)
	case s.kind.isUnsigned():
		if s.lo > uint64(1)<<(bits-1)-1 {
			return 0, ErrNumericOverflow
		}
		return T(s.lo), nil
	case s.kind == KindInt128:
		if int64(s.hi) != int64(s.lo)>>63 {
			return 0, ErrNumericOverflow
		}
		v = int64(s.lo)
	case s.kind == KindUint128:
		if s.hi != 0 || s.lo > uint64(1)<<(bits-1)-1 {
			return 0, ErrNumericOverflow
		}
		return T(s.lo), nil
	default:
		return 0, ErrTypeMismatch
	}
	if shift := 64 - bits; v<<shift>>shift != v {
		return 0, ErrNumericOverflow
	}
	return T(v), nil
}

// ToUint converts an integer scalar to T.
// Negative values fail with ErrNumericOverflow, they never wrap.
func ToUint[T constraints.Unsigned](s Scalar) (T, error) {
	bits := int(unsafe.Sizeof(T(0))) * 8
	max := uint64(1)<<bits - 1 // Shifting by 64 yields 0.
	var u uint64
	switch {
	case s.kind.isSigned():
		if int64(s.lo) < 0 {
			return 0, ErrNumericOverflow
		}
		u = s.lo
	case s.kind.isUnsigned():
		u = s.lo
	case s.kind == KindInt128, s.kind == KindUint128:
		if s.hi != 0 {
			return 0, ErrNumericOverflow
		}
		u = s.lo
	default:
		return 0, ErrTypeMismatch
	}
	if u > max {
		return 0, ErrNumericOverflow
	}
	return T(u), nil
}

// ToFloat converts a numeric scalar to T.
// NaN and infinities are propagated with their sign.
// Finite values out of the range of T fail with ErrNumericOverflow.
func ToFloat[T constraints.Float](s Scalar) (T, error) {
	var f float64
	switch {
	case s.kind.isFloat():
		f = math.Float64frombits(s.lo)
	case s.kind.isSigned():
		f = float64(int64(s.lo))
	case s.kind.isUnsigned():
		f = float64(s.lo)
	case s.kind == KindInt128:
		hi, lo := s.hi, s.lo
		neg := int64(hi) < 0
		if neg {
			lo = -lo
			hi = ^hi
			if lo == 0 {
				hi++
			}
		}
		f = float64(hi)*(1<<64) + float64(lo)
		if neg {
			f = -f
		}
	case s.kind == KindUint128:
		f = float64(s.hi)*(1<<64) + float64(s.lo)
	default:
		return 0, ErrTypeMismatch
	}
	if unsafe.Sizeof(T(0)) == 4 {
		v, overflow := jsonnum.Float32(f)
		if overflow {
			return 0, ErrNumericOverflow
		}
		return T(v), nil
	}
	return T(f), nil
}

// Reduce implements Reducer accepting SetValue with any integer scalar.
func (v *Int128) Reduce(a Action) error {
	s, ok := a.(SetValue)
	if !ok {
		return ErrUnsupportedAction
	}
	x, err := s.Value.AsInt128()
	if err != nil {
		return err
	}
	*v = x
	return nil
}

// Reduce implements Reducer accepting SetValue with any integer scalar.
func (v *Uint128) Reduce(a Action) error {
	s, ok := a.(SetValue)
	if !ok {
		return ErrUnsupportedAction
	}
	x, err := s.Value.AsUint128()
	if err != nil {
		return err
	}
	*v = x
	return nil
}
