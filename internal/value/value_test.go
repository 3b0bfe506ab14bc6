package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcn2/calc-sub001/internal/kernel"
)

func TestIntArithmeticFastPath(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		op   func(a, b Value) Value
		want string
	}{
		{"add", NewInt(2), NewInt(3), Add, "5"},
		{"sub", NewInt(5), NewInt(3), Sub, "2"},
		{"mul", NewInt(4), NewInt(6), Mul, "24"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.op(tt.a, tt.b)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestDivisionByZeroBecomesErrorValue(t *testing.T) {
	// S5: 1/0 surfaces as an Error-tagged Value, not a panic.
	got := Div(NewInt(1), NewInt(0))
	assert.True(t, got.IsError())
}

func TestEqualAcrossIntAndNum(t *testing.T) {
	q, err := kernel.QFromInt64(1, 1)
	require.NoError(t, err)
	assert.True(t, Equal(NewInt(1), NewNum(q)))
}

func TestComCollapsesToNumWhenReal(t *testing.T) {
	real, err := kernel.QFromInt64(1, 1)
	require.NoError(t, err)
	c := kernel.NewC(real, kernel.QFromZ(kernel.NewZ(0)))
	v := NewCom(c)
	assert.Equal(t, Num, v.Tag)
}

func TestSubtypeFlagsUnionOnWithSubtype(t *testing.T) {
	v := NewInt(1).WithSubtype(NoAssignTo)
	v2 := v.WithSubtype(NoCopyTo)
	assert.True(t, v2.Has(NoAssignTo))
	assert.True(t, v2.Has(NoCopyTo))
}

func TestCopyRetainsSharedArms(t *testing.T) {
	s := NewStr("hello")
	c := s.Copy()
	ref := s.Body.(Ref[[]byte])
	assert.Equal(t, int32(2), ref.RefCount())
	assert.Equal(t, "hello", c.String())
}
