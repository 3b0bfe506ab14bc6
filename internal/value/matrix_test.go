package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fill2x2(vals [4]int64) *Matrix {
	m, _ := NewMatrix([]int64{0, 0}, []int64{1, 1})
	for i, v := range vals {
		m.Data[i] = NewInt(v)
	}
	return m
}

func TestS4TwoByTwoMatrixMultiply(t *testing.T) {
	// [[1,2],[3,4]] * [[5,6],[7,8]] = [[19,22],[43,50]]
	a := fill2x2([4]int64{1, 2, 3, 4})
	b := fill2x2([4]int64{5, 6, 7, 8})

	out, err := MatMul(a, b, Mul, Add, NewInt(0))
	require.NoError(t, err)

	want := []string{"19", "22", "43", "50"}
	for i, w := range want {
		assert.Equal(t, w, out.Data[i].String())
	}
}

func TestMatrixTransposeIsInvolution(t *testing.T) {
	a := fill2x2([4]int64{1, 2, 3, 4})
	once, err := a.Transpose()
	require.NoError(t, err)
	twice, err := once.Transpose()
	require.NoError(t, err)
	for i := range a.Data {
		assert.Equal(t, a.Data[i].String(), twice.Data[i].String())
	}
}

func TestMatrixOutOfRangeDimensions(t *testing.T) {
	_, err := NewMatrix([]int64{0, 0, 0, 0, 0}, []int64{1, 1, 1, 1, 1})
	require.Error(t, err)
}
