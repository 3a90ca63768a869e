package jscanpartial

// Kind identifies the type of a Scalar.
type Kind int8

const (
	_ Kind = iota

	// KindString is a UTF-8 string.
	KindString

	// KindDouble is a 64-bit floating point number.
	KindDouble

	// KindFloat is a 32-bit floating point number.
	KindFloat

	// KindBool is a boolean.
	KindBool

	// KindNull is the null value.
	KindNull

	KindInt8
	KindInt16
	KindInt32
	KindInt64

	// KindInt128 is a signed 128-bit integer represented as a word pair.
	KindInt128

	KindUint8
	KindUint16
	KindUint32
	KindUint64

	// KindUint128 is an unsigned 128-bit integer represented as a word pair.
	KindUint128

	kindCount
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindDouble:
		return "double"
	case KindFloat:
		return "float"
	case KindBool:
		return "boolean"
	case KindNull:
		return "null"
	case KindInt8:
		return "int8"
	case KindInt16:
		return "int16"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindInt128:
		return "int128"
	case KindUint8:
		return "uint8"
	case KindUint16:
		return "uint16"
	case KindUint32:
		return "uint32"
	case KindUint64:
		return "uint64"
	case KindUint128:
		return "uint128"
	}
	return ""
}

// isSigned returns true for signed integer kinds up to 64 bits.
func (k Kind) isSigned() bool { return k >= KindInt8 && k <= KindInt64 }

// isUnsigned returns true for unsigned integer kinds up to 64 bits.
func (k Kind) isUnsigned() bool { return k >= KindUint8 && k <= KindUint64 }

// isInteger returns true for all integer kinds including 128-bit ones.
func (k Kind) isInteger() bool { return k >= KindInt8 && k <= KindUint128 }

// isFloat returns true for KindDouble and KindFloat.
func (k Kind) isFloat() bool { return k == KindDouble || k == KindFloat }

// bitSize returns the width of integer kinds.
func (k Kind) bitSize() int {
	switch k {
	case KindInt8, KindUint8:
		return 8
	case KindInt16, KindUint16:
		return 16
	case KindInt32, KindUint32, KindFloat:
		return 32
	case KindInt64, KindUint64, KindDouble:
		return 64
	case KindInt128, KindUint128:
		return 128
	}
	return 0
}
