package kernel

import "fmt"

// C is a Gaussian/complex rational: real + imag*i, both exact Q. Real
// numbers satisfy imag == 0; the value layer collapses such a C back to a
// bare Q before it escapes dispatch.
type C struct {
	Real Q
	Imag Q
}

// CFromQ lifts a real Q into C.
func CFromQ(q Q) C { return C{q, qZero} }

// NewC builds a complex value from real and imaginary parts.
func NewC(real, imag Q) C { return C{real, imag} }

// IsReal reports whether the imaginary part is exactly zero.
func (c C) IsReal() bool { return c.Imag.IsZero() }

func (c C) String() string {
	if c.IsReal() {
		return c.Real.String()
	}
	return fmt.Sprintf("%s+%si", c.Real.String(), c.Imag.String())
}

// Add is componentwise.
func (c C) Add(o C) C { return C{c.Real.Add(o.Real), c.Imag.Add(o.Imag)} }

// Sub is componentwise.
func (c C) Sub(o C) C { return C{c.Real.Sub(o.Real), c.Imag.Sub(o.Imag)} }

// Neg negates both components.
func (c C) Neg() C { return C{c.Real.Neg(), c.Imag.Neg()} }

// Conj returns the complex conjugate; an involution.
func (c C) Conj() C { return C{c.Real, c.Imag.Neg()} }

// Mul uses the three-real-multiplication scheme (ac-bd) + (ad+bc)i.
func (c C) Mul(o C) C {
	k1 := o.Real.Mul(c.Real.Add(c.Imag))
	k2 := c.Real.Mul(o.Imag.Sub(o.Real))
	k3 := c.Imag.Mul(o.Real.Add(o.Imag))
	return C{k1.Sub(k3), k1.Add(k2)}
}

// Norm returns a^2 + b^2 as an exact Q.
func (c C) Norm() Q {
	return c.Real.Mul(c.Real).Add(c.Imag.Mul(c.Imag))
}

// Inv returns 1/c by multiplying by the conjugate over the norm.
func (c C) Inv() (C, error) {
	n := c.Norm()
	if n.IsZero() {
		return C{}, errOneOverZero
	}
	invN, _ := n.Inv()
	return C{c.Real.Mul(invN), c.Imag.Neg().Mul(invN)}, nil
}

// Div multiplies numerator and denominator by the conjugate of o.
func (c C) Div(o C) (C, error) {
	if o.Norm().IsZero() {
		return C{}, errOneOverZero
	}
	inv, err := o.Inv()
	if err != nil {
		return C{}, err
	}
	return c.Mul(inv), nil
}

// Pow raises c to a non-negative integer exponent by repeated squaring;
// negative exponents invert first.
func (c C) Pow(e Z) (C, error) {
	if e.Sign() == 0 {
		return CFromQ(qOne), nil
	}
	base := c
	if e.Sign() < 0 {
		inv, err := c.Inv()
		if err != nil {
			return C{}, err
		}
		base = inv
		e = e.Neg()
	}
	result := CFromQ(qOne)
	bit := e
	sq := base
	for !bit.IsZero() {
		if bit.Bit(0) == 1 {
			result = result.Mul(sq)
		}
		sq = sq.Mul(sq)
		bit = bit.Rsh(1)
	}
	return result, nil
}

// Cmp orders two complex values by real part first, then imaginary part,
// mirroring calc's <=> on C which returns a Com indicator.
func (c C) Cmp(o C) (int, int) {
	return c.Real.Cmp(o.Real), c.Imag.Cmp(o.Imag)
}

// Equal reports structural equality.
func (c C) Equal(o C) bool {
	return c.Real.Cmp(o.Real) == 0 && c.Imag.Cmp(o.Imag) == 0
}
