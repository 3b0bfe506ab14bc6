package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQReducesToLowestTerms(t *testing.T) {
	// S3: 1/3 + 2/3 must reduce to 1/1, printed as an integer.
	a, err := QFromInt64(1, 3)
	require.NoError(t, err)
	b, err := QFromInt64(2, 3)
	require.NoError(t, err)
	sum := a.Add(b)
	assert.True(t, sum.IsInt())
	assert.Equal(t, "1", sum.String())
}

func TestQInvariantAlwaysReduced(t *testing.T) {
	q, err := QFromInt64(4, 8)
	require.NoError(t, err)
	assert.Equal(t, "1/2", q.String())
	assert.Equal(t, int64(1), gcdOfParts(t, q))
}

func gcdOfParts(t *testing.T, q Q) int64 {
	t.Helper()
	g := q.Num.Abs().Gcd(q.Den)
	n, ok := g.Int64()
	require.True(t, ok)
	return n
}

func TestQDivisionByZero(t *testing.T) {
	// S5: 1/0 is E_1OVER0, not a panic.
	one := QFromZ(NewZ(1))
	zero := QFromZ(NewZ(0))
	_, err := one.Div(zero)
	require.Error(t, err)
	kerr, ok := err.(*KernelError)
	require.True(t, ok)
	assert.Equal(t, "E_1OVER0", kerr.Code)
}

func TestQZeroDividedByZero(t *testing.T) {
	zero := QFromZ(NewZ(0))
	_, err := zero.Div(zero)
	require.Error(t, err)
}

func TestQFromStringDecimalAndExponent(t *testing.T) {
	tests := []struct {
		lit  string
		want string
	}{
		{"1.5", "3/2"},
		{"2", "2"},
		{"1e2", "100"},
		{"-3.25", "-13/4"},
	}
	for _, tt := range tests {
		t.Run(tt.lit, func(t *testing.T) {
			q, err := QFromString(tt.lit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, q.String())
		})
	}
}

func TestQScale(t *testing.T) {
	q := QFromZ(NewZ(3))
	assert.Equal(t, "12", q.Scale(2).String())
	assert.Equal(t, "3/4", q.Scale(-2).String())
}

func TestQPowNegativeExponent(t *testing.T) {
	q, err := QFromInt64(2, 1)
	require.NoError(t, err)
	inv, err := q.Pow(NewZ(-1))
	require.NoError(t, err)
	assert.Equal(t, "1/2", inv.String())
}
