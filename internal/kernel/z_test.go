package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZArithmetic(t *testing.T) {
	tests := []struct {
		name     string
		a, b     int64
		op       func(a, b Z) Z
		want     string
	}{
		{"add", 2, 3, Z.Add, "5"},
		{"sub", 2, 3, Z.Sub, "-1"},
		{"mul", 6, 7, Z.Mul, "42"},
		{"mul negative", -6, 7, Z.Mul, "-42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.op(NewZ(tt.a), NewZ(tt.b))
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestZBignum2Pow100(t *testing.T) {
	// S6: 2^100 must be computed exactly, matching math/big's own result.
	got, err := NewZ(2).Pow(NewZ(100))
	require.NoError(t, err)
	assert.Equal(t, "1267650600228229401496703205376", got.String())
}

func TestZDivModRounding(t *testing.T) {
	// 7 / 2 under every rounding mode: truncated quotient is 3, remainder 1.
	q, r, err := NewZ(7).DivMod(NewZ(2), RoundTrunc)
	require.NoError(t, err)
	assert.Equal(t, "3", q.String())
	assert.Equal(t, "1", r.String())

	// -7 / 2: truncation rounds toward zero (-3, -1); floor rounds toward
	// -inf (-4, 1).
	q, r, err = NewZ(-7).DivMod(NewZ(2), RoundTrunc)
	require.NoError(t, err)
	assert.Equal(t, "-3", q.String())
	assert.Equal(t, "-1", r.String())

	q, r, err = NewZ(-7).DivMod(NewZ(2), RoundFloorCeil)
	require.NoError(t, err)
	assert.Equal(t, "-4", q.String())
	assert.Equal(t, "1", r.String())
}

func TestZDivModByZero(t *testing.T) {
	_, _, err := NewZ(1).DivMod(NewZ(0), RoundTrunc)
	require.Error(t, err)
}

func TestZGcd(t *testing.T) {
	assert.Equal(t, "6", NewZ(54).Gcd(NewZ(24)).String())
	assert.Equal(t, "1", NewZ(17).Gcd(NewZ(5)).String())
}

func TestZBitOps(t *testing.T) {
	z := NewZ(0b1010)
	assert.True(t, z.IsEven())
	assert.Equal(t, uint(0), z.Bit(0))
	assert.Equal(t, uint(1), z.Bit(1))
	assert.Equal(t, 3, z.HighBit())
	assert.Equal(t, 1, z.LowBit())
}
