package value

import (
	"fmt"
	"strings"
)

// Matrix is a rectangular N-dimensional (N <= 4) array of Value, held in
// row-major order with per-axis inclusive bounds. A zero-dimension matrix
// holds exactly one scalar.
type Matrix struct {
	Dims int
	Min  []int64 // per-axis inclusive minimum, len == Dims
	Max  []int64 // per-axis inclusive maximum, len == Dims
	Data []Value // flat, row-major: last index varies fastest
}

// NewMatrix allocates a matrix with the given per-axis [min,max] bounds,
// every cell initialized to Null.
func NewMatrix(min, max []int64) (*Matrix, error) {
	if len(min) != len(max) {
		return nil, fmt.Errorf("value: mismatched matrix bounds")
	}
	if len(min) > 4 {
		return nil, fmt.Errorf("value: matrix dimension count must be <= 4")
	}
	size := int64(1)
	for i := range min {
		if max[i] < min[i] {
			return nil, fmt.Errorf("value: empty matrix axis %d", i)
		}
		size *= max[i] - min[i] + 1
	}
	data := make([]Value, size)
	for i := range data {
		data[i] = NewNull()
	}
	return &Matrix{Dims: len(min), Min: append([]int64(nil), min...), Max: append([]int64(nil), max...), Data: data}, nil
}

// span returns the number of positions along axis i.
func (m *Matrix) span(i int) int64 { return m.Max[i] - m.Min[i] + 1 }

// Size is the total element count, the product of all axis spans.
func (m *Matrix) Size() int64 {
	n := int64(1)
	for i := 0; i < m.Dims; i++ {
		n *= m.span(i)
	}
	return n
}

// Offset computes the flat index of idx using
// offset = sum (idx_i - min_i) * prod_{j>i}(span_j), per §3.3.
func (m *Matrix) Offset(idx []int64) (int, error) {
	if len(idx) != m.Dims {
		return 0, fmt.Errorf("value: matrix index dimension mismatch")
	}
	offset := int64(0)
	for i := 0; i < m.Dims; i++ {
		if idx[i] < m.Min[i] || idx[i] > m.Max[i] {
			return 0, fmt.Errorf("value: matrix index out of range at axis %d", i)
		}
		stride := int64(1)
		for j := i + 1; j < m.Dims; j++ {
			stride *= m.span(j)
		}
		offset += (idx[i] - m.Min[i]) * stride
	}
	return int(offset), nil
}

// SameShape reports whether m and o agree on dimension count and every
// axis span (origins may differ; see §4.2 shape rules).
func (m *Matrix) SameShape(o *Matrix) bool {
	if m.Dims != o.Dims {
		return false
	}
	for i := 0; i < m.Dims; i++ {
		if m.span(i) != o.span(i) {
			return false
		}
	}
	return true
}

// Clone deep-copies the matrix shell and retains every element handle,
// used by Ref.COW when a Mat Value is about to be mutated in place.
func (m Matrix) Clone() Matrix {
	data := make([]Value, len(m.Data))
	for i, v := range m.Data {
		data[i] = v.Copy()
	}
	return Matrix{Dims: m.Dims, Min: append([]int64(nil), m.Min...), Max: append([]int64(nil), m.Max...), Data: data}
}

func (m *Matrix) String() string {
	if m.Dims == 0 {
		if len(m.Data) == 1 {
			return m.Data[0].String()
		}
		return "mat"
	}
	if m.Dims == 1 {
		parts := make([]string, len(m.Data))
		for i, v := range m.Data {
			parts[i] = v.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	if m.Dims == 2 {
		rows := m.Max[0] - m.Min[0] + 1
		cols := m.Max[1] - m.Min[1] + 1
		var sb strings.Builder
		sb.WriteByte('[')
		for r := int64(0); r < rows; r++ {
			sb.WriteByte('[')
			for c := int64(0); c < cols; c++ {
				if c > 0 {
					sb.WriteString(", ")
				}
				off, _ := m.Offset([]int64{m.Min[0] + r, m.Min[1] + c})
				sb.WriteString(m.Data[off].String())
			}
			sb.WriteByte(']')
			if r < rows-1 {
				sb.WriteString(", ")
			}
		}
		sb.WriteByte(']')
		return sb.String()
	}
	return fmt.Sprintf("mat[%d dims, %d elems]", m.Dims, len(m.Data))
}

// MatAdd implements Matrix + Matrix: elementwise, requiring identical
// dimension count and per-axis span. The result inherits whichever
// operand's origin is non-zero (a's, if both are, by convention).
func MatAdd(a, b *Matrix, add func(x, y Value) Value) (*Matrix, error) {
	if !a.SameShape(b) {
		return nil, fmt.Errorf("value: matrix shape mismatch")
	}
	origin := a
	hasZeroOrigin := func(m *Matrix) bool {
		for _, v := range m.Min {
			if v != 0 {
				return false
			}
		}
		return true
	}
	if hasZeroOrigin(a) && !hasZeroOrigin(b) {
		origin = b
	}
	out := &Matrix{Dims: a.Dims, Min: append([]int64(nil), origin.Min...), Max: append([]int64(nil), origin.Max...)}
	out.Data = make([]Value, len(a.Data))
	for i := range a.Data {
		out.Data[i] = add(a.Data[i], b.Data[i])
	}
	return out, nil
}

// MatScale implements scalar * matrix (rank 0 multiplication).
func MatScale(s Value, m *Matrix, mul func(x, y Value) Value) *Matrix {
	out := &Matrix{Dims: m.Dims, Min: append([]int64(nil), m.Min...), Max: append([]int64(nil), m.Max...)}
	out.Data = make([]Value, len(m.Data))
	for i, v := range m.Data {
		out.Data[i] = mul(s, v)
	}
	return out
}

// MatHadamard implements elementwise matrix*matrix for matching spans
// (rank 1 multiplication).
func MatHadamard(a, b *Matrix, mul func(x, y Value) Value) (*Matrix, error) {
	if !a.SameShape(b) {
		return nil, fmt.Errorf("value: matrix shape mismatch")
	}
	out := &Matrix{Dims: a.Dims, Min: append([]int64(nil), a.Min...), Max: append([]int64(nil), a.Max...)}
	out.Data = make([]Value, len(a.Data))
	for i := range a.Data {
		out.Data[i] = mul(a.Data[i], b.Data[i])
	}
	return out, nil
}

// MatMul implements row-by-column multiplication for rank-2 matrices with
// a matching inner span (a is r x k, b is k x c, result is r x c).
func MatMul(a, b *Matrix, mul, add func(x, y Value) Value, zero Value) (*Matrix, error) {
	if a.Dims != 2 || b.Dims != 2 {
		return nil, fmt.Errorf("value: matrix multiply requires rank-2 operands")
	}
	rows := a.span(0)
	inner := a.span(1)
	if inner != b.span(0) {
		return nil, fmt.Errorf("value: matrix inner dimension mismatch")
	}
	cols := b.span(1)
	out, err := NewMatrix([]int64{0, 0}, []int64{rows - 1, cols - 1})
	if err != nil {
		return nil, err
	}
	for r := int64(0); r < rows; r++ {
		for c := int64(0); c < cols; c++ {
			sum := zero
			for k := int64(0); k < inner; k++ {
				aOff, _ := a.Offset([]int64{a.Min[0] + r, a.Min[1] + k})
				bOff, _ := b.Offset([]int64{b.Min[0] + k, b.Min[1] + c})
				sum = add(sum, mul(a.Data[aOff], b.Data[bOff]))
			}
			outOff, _ := out.Offset([]int64{r, c})
			out.Data[outOff] = sum
		}
	}
	return out, nil
}

// Transpose returns the transpose of a rank-2 matrix. Applying it twice
// is the identity, per §8's round-trip property.
func (m *Matrix) Transpose() (*Matrix, error) {
	if m.Dims != 2 {
		return nil, fmt.Errorf("value: transpose requires a rank-2 matrix")
	}
	rows, cols := m.span(0), m.span(1)
	out, err := NewMatrix([]int64{0, 0}, []int64{cols - 1, rows - 1})
	if err != nil {
		return nil, err
	}
	for r := int64(0); r < rows; r++ {
		for c := int64(0); c < cols; c++ {
			srcOff, _ := m.Offset([]int64{m.Min[0] + r, m.Min[1] + c})
			dstOff, _ := out.Offset([]int64{c, r})
			out.Data[dstOff] = m.Data[srcOff]
		}
	}
	return out, nil
}
