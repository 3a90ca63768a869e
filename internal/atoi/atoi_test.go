package atoi_test

import (
	"math"
	"strings"
	"testing"

	"github.com/romshark/jscan-partial/internal/atoi"

	"github.com/stretchr/testify/require"
)

func TestBuffer(t *testing.T) {
	var b atoi.Buffer
	require.Equal(t, 0, b.Len())
	require.False(t, b.Negative())
	require.False(t, b.Signed())

	for _, c := range []byte("-123") {
		require.NoError(t, b.Push(c))
	}
	require.Equal(t, "-123", string(b.Bytes()))
	require.Equal(t, "123", string(b.Digits()))
	require.True(t, b.Negative())
	require.True(t, b.Signed())

	b.Reset()
	require.NoError(t, b.Push('+'))
	require.False(t, b.Negative())
	require.True(t, b.Signed())

	b.Reset()
	for i := 0; i < atoi.BufferSize; i++ {
		require.NoError(t, b.Push('9'))
	}
	require.ErrorIs(t, b.Push('9'), atoi.ErrBufferFull)
	require.Equal(t, atoi.BufferSize, b.Len(), "never exceeds capacity")
}

func TestInt(t *testing.T) {
	for _, td := range []struct {
		Input    string
		Bits     int
		Expect   int64
		Overflow bool
	}{
		{"", 64, 0, false},
		{"-", 64, 0, false},
		{"0", 8, 0, false},
		{"127", 8, 127, false},
		{"128", 8, 0, true},
		{"-128", 8, -128, false},
		{"-129", 8, 0, true},
		{"+42", 16, 42, false},
		{"32767", 16, math.MaxInt16, false},
		{"32768", 16, 0, true},
		{"-2147483648", 32, math.MinInt32, false},
		{"2147483648", 32, 0, true},
		{"9223372036854775807", 64, math.MaxInt64, false},
		{"9223372036854775808", 64, 0, true},
		{"-9223372036854775808", 64, math.MinInt64, false},
		{"-9223372036854775809", 64, 0, true},
		{"99999999999999999999", 64, 0, true},
	} {
		t.Run(td.Input, func(t *testing.T) {
			v, overflow := atoi.Int(td.Input, td.Bits)
			require.Equal(t, td.Overflow, overflow)
			require.Equal(t, td.Expect, v)
			vb, overflowb := atoi.Int([]byte(td.Input), td.Bits)
			require.Equal(t, td.Overflow, overflowb)
			require.Equal(t, td.Expect, vb)
		})
	}
}

func TestUint(t *testing.T) {
	for _, td := range []struct {
		Input    string
		Bits     int
		Expect   uint64
		Overflow bool
	}{
		{"0", 8, 0, false},
		{"-0", 8, 0, false},
		{"-1", 8, 0, true},
		{"255", 8, 255, false},
		{"256", 8, 0, true},
		{"65535", 16, math.MaxUint16, false},
		{"65536", 16, 0, true},
		{"4294967295", 32, math.MaxUint32, false},
		{"18446744073709551615", 64, math.MaxUint64, false},
		{"18446744073709551616", 64, 0, true},
	} {
		t.Run(td.Input, func(t *testing.T) {
			v, overflow := atoi.Uint(td.Input, td.Bits)
			require.Equal(t, td.Overflow, overflow)
			require.Equal(t, td.Expect, v)
		})
	}
}

func TestUint128(t *testing.T) {
	hi, lo, overflow := atoi.Uint128("18446744073709551616")
	require.False(t, overflow)
	require.Equal(t, uint64(1), hi)
	require.Equal(t, uint64(0), lo)

	hi, lo, overflow = atoi.Uint128("340282366920938463463374607431768211455")
	require.False(t, overflow)
	require.Equal(t, uint64(math.MaxUint64), hi)
	require.Equal(t, uint64(math.MaxUint64), lo)

	_, _, overflow = atoi.Uint128("340282366920938463463374607431768211456")
	require.True(t, overflow)

	_, _, overflow = atoi.Uint128("-1")
	require.True(t, overflow)
}

func TestInt128(t *testing.T) {
	hi, lo, overflow := atoi.Int128("-1")
	require.False(t, overflow)
	require.Equal(t, int64(-1), hi)
	require.Equal(t, uint64(math.MaxUint64), lo)

	hi, lo, overflow = atoi.Int128("170141183460469231731687303715884105727")
	require.False(t, overflow)
	require.Equal(t, int64(math.MaxInt64), hi)
	require.Equal(t, uint64(math.MaxUint64), lo)

	hi, lo, overflow = atoi.Int128("-170141183460469231731687303715884105728")
	require.False(t, overflow)
	require.Equal(t, int64(math.MinInt64), hi)
	require.Equal(t, uint64(0), lo)

	_, _, overflow = atoi.Int128("170141183460469231731687303715884105728")
	require.True(t, overflow)
	_, _, overflow = atoi.Int128("-170141183460469231731687303715884105729")
	require.True(t, overflow)
}

func TestHex(t *testing.T) {
	for _, td := range []struct {
		Input    string
		Bits     int
		Signed   bool
		Expect   uint64
		Overflow bool
		Invalid  bool
	}{
		{Input: "00e9", Bits: 16, Expect: 0xe9},
		{Input: "FFFF", Bits: 16, Expect: 0xffff},
		{Input: "fFfF", Bits: 16, Expect: 0xffff},
		{Input: "10000", Bits: 16, Overflow: true},
		{Input: "FF", Bits: 8, Signed: true, Expect: math.MaxUint64}, // -1
		{Input: "7F", Bits: 8, Signed: true, Expect: 127},
		{Input: "-80", Bits: 8, Signed: true, Expect: uint64(0xFFFFFFFFFFFFFF80)},
		{Input: "-81", Bits: 8, Signed: true, Overflow: true},
		{Input: "-1", Bits: 8, Overflow: true},
		{Input: "FFFFFFFFFFFFFFFF", Bits: 64, Expect: math.MaxUint64},
		{Input: "10000000000000000", Bits: 64, Overflow: true},
		{Input: "xz", Bits: 16, Invalid: true},
	} {
		t.Run(td.Input, func(t *testing.T) {
			v, overflow, invalid := atoi.Hex(td.Input, td.Bits, td.Signed)
			require.Equal(t, td.Invalid, invalid)
			require.Equal(t, td.Overflow, overflow)
			require.Equal(t, td.Expect, v)
		})
	}
}

func TestIntBufferRoundtrip(t *testing.T) {
	var b atoi.Buffer
	for _, c := range []byte(strings.Repeat("1", 19)) {
		require.NoError(t, b.Push(c))
	}
	v, overflow := atoi.Int(b.Bytes(), 64)
	require.False(t, overflow)
	require.Equal(t, int64(1111111111111111111), v)
	require.NoError(t, b.Push('1'))
	_, overflow = atoi.Int(b.Bytes(), 64)
	require.True(t, overflow)
}
