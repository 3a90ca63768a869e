package jsonnum_test

import (
	"math"
	"strings"
	"testing"

	"github.com/romshark/jscan-partial/internal/jsonnum"

	"github.com/stretchr/testify/require"
)

func TestPow10(t *testing.T) {
	for e := 0; e <= jsonnum.MaxCachedExp; e++ {
		require.Equal(t, math.Pow10(e), jsonnum.Pow10(e), "exponent %d", e)
	}
	require.InEpsilon(t, 1e23, jsonnum.Pow10(23), 1e-15)
	require.InEpsilon(t, 1e100, jsonnum.Pow10(100), 1e-13)
	require.InEpsilon(t, 1e308, jsonnum.Pow10(308), 1e-13)
	require.True(t, math.IsInf(jsonnum.Pow10(309), 1))
	require.Equal(t, float64(0), jsonnum.Pow10(-1))
}

func TestMantissa(t *testing.T) {
	m, dropped := jsonnum.Mantissa([]byte("12345"))
	require.Equal(t, uint64(12345), m)
	require.Equal(t, 0, dropped)

	m, dropped = jsonnum.Mantissa([]byte(strings.Repeat("9", 19)))
	require.Equal(t, uint64(9999999999999999999), m)
	require.Equal(t, 0, dropped)

	m, dropped = jsonnum.Mantissa([]byte("123456789012345678901"))
	require.Equal(t, uint64(1234567890123456789), m)
	require.Equal(t, 2, dropped)
}

func TestCompose(t *testing.T) {
	for _, td := range []struct {
		Mantissa uint64
		Exp      int
		Neg      bool
		Expect   float64
	}{
		{0, 0, false, 0},
		{0, 0, true, math.Copysign(0, -1)},
		{1, 0, false, 1},
		{12, 3, false, 12000},
		{15, -1, false, 1.5},
		{314159, -5, false, 3.14159},
		{1, -1, true, -0.1},
		{123, -22, false, 123e-22},
		{5, 22, false, 5e22},
	} {
		require.Equal(t, td.Expect, jsonnum.Compose(td.Mantissa, td.Exp, td.Neg),
			"%d e%d neg=%t", td.Mantissa, td.Exp, td.Neg)
	}
	require.InEpsilon(t, 1e-310, jsonnum.Compose(1, -310, false), 1e-9)
	require.Equal(t, float64(0), jsonnum.Compose(1, -400, false))
	require.True(t, math.IsInf(jsonnum.Compose(1, 400, true), -1))
}

func TestFloat32(t *testing.T) {
	v, overflow := jsonnum.Float32(1.5)
	require.False(t, overflow)
	require.Equal(t, float32(1.5), v)

	_, overflow = jsonnum.Float32(1e39)
	require.True(t, overflow)

	v, overflow = jsonnum.Float32(math.Inf(-1))
	require.False(t, overflow)
	require.True(t, math.IsInf(float64(v), -1))

	v, overflow = jsonnum.Float32(math.NaN())
	require.False(t, overflow)
	require.True(t, math.IsNaN(float64(v)))
}
