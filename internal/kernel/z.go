// Package kernel implements the arbitrary-precision numeric core: signed
// integers (Z), exact rationals in lowest terms (Q), and Gaussian rationals
// (C). Nothing above this package may reach past it into raw limbs; every
// function here takes immutable operands and returns a freshly normalized
// result.
package kernel

import (
	"fmt"
	"math/big"
)

// RoundMode selects how Div and Mod round a non-exact quotient. Bits may be
// combined the way calc's config("quo")/config("mod") knobs do.
type RoundMode uint8

const (
	RoundTrunc    RoundMode = 0    // toward zero
	RoundAway     RoundMode = 1    // away from zero
	RoundFloorCeil RoundMode = 2   // toward -inf (or +inf if combined with Away)
	RoundEvenOdd  RoundMode = 4    // toward even (or odd if combined with Away)
	RoundHalf     RoundMode = 8    // round-half modifier
	RoundSticky   RoundMode = 16   // sticky-bit modifier, used by sqrt-style rounding
)

// Z is a sign-magnitude arbitrary-precision integer. The zero value of Z
// (no underlying big.Int) reads as 0; ZZero returns a shared zero.
type Z struct {
	i *big.Int
}

var (
	zMinusOne = Z{big.NewInt(-1)}
	zZero     = Z{big.NewInt(0)}
	zOne      = Z{big.NewInt(1)}
	zTwo      = Z{big.NewInt(2)}
	zTen      = Z{big.NewInt(10)}
)

// Shared small constants, permitted as an optimization; they compare equal
// to their computed equivalents.
func ZMinusOne() Z { return zMinusOne }
func ZZero() Z     { return zZero }
func ZOne() Z      { return zOne }
func ZTwo() Z      { return zTwo }
func ZTen() Z      { return zTen }

// NewZ wraps an int64 into a Z.
func NewZ(v int64) Z {
	return Z{big.NewInt(v)}
}

// ParseZ parses a string in the given base (2..36, or 0 to infer from a
// leading 0x/0o/0b prefix) into a Z.
func ParseZ(s string, base int) (Z, error) {
	n, ok := new(big.Int).SetString(s, base)
	if !ok {
		return Z{}, fmt.Errorf("kernel: invalid integer literal %q", s)
	}
	return Z{n}, nil
}

func (z Z) big() *big.Int {
	if z.i == nil {
		return big.NewInt(0)
	}
	return z.i
}

// Big exposes the underlying math/big.Int for callers (quickhash limb
// access, formatting) that need to walk raw limbs; it must not be mutated.
func (z Z) Big() *big.Int { return z.big() }

// String renders z in base 10.
func (z Z) String() string { return z.big().String() }

// Text renders z in the given base, as math/big.Int.Text does.
func (z Z) Text(base int) string { return z.big().Text(base) }

// Sign returns -1, 0, or +1.
func (z Z) Sign() int { return z.big().Sign() }

// IsZero reports whether z is the canonical zero.
func (z Z) IsZero() bool { return z.big().Sign() == 0 }

// IsEven reports whether z has no set low bit.
func (z Z) IsEven() bool { return z.big().Bit(0) == 0 }

// BitLen returns the number of bits required to represent |z|.
func (z Z) BitLen() int { return z.big().BitLen() }

// Int64 returns z and true when z fits in an int64, or 0 and false otherwise.
func (z Z) Int64() (int64, bool) {
	if !z.big().IsInt64() {
		return 0, false
	}
	return z.big().Int64(), true
}

// Cmp returns -1, 0, +1 as z <, ==, > other.
func (z Z) Cmp(other Z) int { return z.big().Cmp(other.big()) }

// Add returns a freshly owned z + other.
func (z Z) Add(other Z) Z { return Z{new(big.Int).Add(z.big(), other.big())} }

// Sub returns a freshly owned z - other.
func (z Z) Sub(other Z) Z { return Z{new(big.Int).Sub(z.big(), other.big())} }

// Mul returns a freshly owned z * other. Schoolbook vs. Karatsuba selection
// is left to math/big, which already switches algorithms by operand size
// the way calc's mul2/sq2 thresholds do; we do not second-guess it.
func (z Z) Mul(other Z) Z { return Z{new(big.Int).Mul(z.big(), other.big())} }

// Neg returns -z.
func (z Z) Neg() Z { return Z{new(big.Int).Neg(z.big())} }

// Abs returns |z|.
func (z Z) Abs() Z { return Z{new(big.Int).Abs(z.big())} }

// Square returns z*z.
func (z Z) Square() Z { return z.Mul(z) }

// DivMod divides z by other under the given rounding mode and returns the
// quotient and remainder such that quo*other + rem == z. other must be
// non-zero.
func (z Z) DivMod(other Z, rnd RoundMode) (q, r Z, err error) {
	if other.IsZero() {
		return Z{}, Z{}, errDivByZero
	}
	// truncated (toward zero) quotient/remainder from math/big.QuoRem.
	tq, tr := new(big.Int), new(big.Int)
	tq.QuoRem(z.big(), other.big(), tr)
	if tr.Sign() == 0 {
		return Z{tq}, Z{tr}, nil
	}

	adjust := func(dir int) {
		// dir > 0 means round the truncated quotient away from zero.
		if dir > 0 {
			if (z.Sign() < 0) != (other.Sign() < 0) {
				tq.Sub(tq, big.NewInt(1))
				tr.Add(tr, other.big())
			} else {
				tq.Add(tq, big.NewInt(1))
				tr.Sub(tr, other.big())
			}
		}
	}

	switch {
	case rnd&RoundHalf != 0:
		// round-half: compare 2|r| to |other|.
		twice := new(big.Int).Lsh(new(big.Int).Abs(tr), 1)
		cmp := twice.Cmp(new(big.Int).Abs(other.big()))
		switch {
		case cmp < 0:
			// magnitude already nearest; keep truncated result.
		case cmp > 0:
			adjust(1)
		default:
			// exactly half: toward even unless RoundEvenOdd asks odd.
			wantOdd := rnd&RoundEvenOdd != 0
			if tq.Bit(0) == 0 == wantOdd {
				adjust(1)
			}
		}
	case rnd&RoundFloorCeil != 0:
		// bit 2 selects the family; the Away bit (1) picks ceiling over
		// floor within it, since the quotient's natural sign already
		// tells us which of {floor, ceil} agrees with truncation.
		quotientNegative := (z.Sign() < 0) != (other.Sign() < 0)
		wantCeil := rnd&RoundAway != 0
		if quotientNegative != wantCeil {
			adjust(1)
		}
	case rnd&RoundEvenOdd != 0:
		wantOdd := rnd&RoundAway != 0
		if (tq.Bit(0) == 0) == wantOdd {
			adjust(1)
		}
	case rnd&RoundAway != 0:
		adjust(1)
	default:
		// RoundTrunc: nothing to do.
	}

	return Z{tq}, Z{tr}, nil
}

// Gcd computes the GCD of |z| and |other| with math/big's Int.GCD; it is
// not a binary GCD.
func (z Z) Gcd(other Z) Z {
	return Z{new(big.Int).GCD(nil, nil, new(big.Int).Abs(z.big()), new(big.Int).Abs(other.big()))}
}

// Pow raises z to a non-negative integer exponent e.
func (z Z) Pow(e Z) (Z, error) {
	if e.Sign() < 0 {
		return Z{}, fmt.Errorf("kernel: negative exponent for Z.Pow")
	}
	return Z{new(big.Int).Exp(z.big(), e.big(), nil)}, nil
}

// PowMod raises z to exponent e modulo m using Montgomery-style reduction
// (delegated to math/big's REDC-based Exp, which already switches to it
// for large moduli the way calc's redc2/pow2 thresholds do).
func (z Z) PowMod(e, m Z) (Z, error) {
	if m.IsZero() {
		return Z{}, errDivByZero
	}
	return Z{new(big.Int).Exp(z.big(), e.big(), m.big())}, nil
}

// IntSqrt returns floor(sqrt(z)) for z >= 0.
func (z Z) IntSqrt() (Z, error) {
	if z.Sign() < 0 {
		return Z{}, fmt.Errorf("kernel: sqrt of negative Z")
	}
	return Z{new(big.Int).Sqrt(z.big())}, nil
}

// And, Or, Xor, Not implement bitwise operations in two's-complement, as
// math/big does natively.
func (z Z) And(other Z) Z { return Z{new(big.Int).And(z.big(), other.big())} }
func (z Z) Or(other Z) Z  { return Z{new(big.Int).Or(z.big(), other.big())} }
func (z Z) Xor(other Z) Z { return Z{new(big.Int).Xor(z.big(), other.big())} }
func (z Z) Not() Z        { return Z{new(big.Int).Not(z.big())} }
func (z Z) Lsh(bits uint) Z { return Z{new(big.Int).Lsh(z.big(), bits)} }
func (z Z) Rsh(bits uint) Z { return Z{new(big.Int).Rsh(z.big(), bits)} }

// Bit returns bit i (0 = LSB) of z's two's-complement representation.
func (z Z) Bit(i int) uint { return z.big().Bit(i) }

// HighBit returns the index of the highest set bit of |z|, or -1 for zero.
func (z Z) HighBit() int { return z.BitLen() - 1 }

// LowBit returns the index of the lowest set bit of |z|, or -1 for zero.
func (z Z) LowBit() int {
	if z.IsZero() {
		return -1
	}
	n := z.big()
	for i := 0; ; i++ {
		if n.Bit(i) != 0 {
			return i
		}
	}
}

// Log returns floor(log_b(z)) for z >= 1, b >= 2, by multiplying a running
// power by b once per step until it exceeds z; it does not square b, so the
// step count equals the result plus one.
func (z Z) Log(base Z) (Z, error) {
	if z.Sign() <= 0 || base.Cmp(zTwo) < 0 {
		return Z{}, fmt.Errorf("kernel: Log requires z >= 1 and base >= 2")
	}
	count := big.NewInt(0)
	cur := big.NewInt(1)
	b := base.big()
	n := z.big()
	for cur.Cmp(n) <= 0 {
		cur.Mul(cur, b)
		count.Add(count, big.NewInt(1))
	}
	return Z{count.Sub(count, big.NewInt(1))}, nil
}

var errDivByZero = &KernelError{Code: "E_DIVBYZERO", Message: "Division by zero"}

// KernelError is returned by kernel functions instead of ever aborting; the
// value layer folds it into an Error Value.
type KernelError struct {
	Code    string
	Message string
}

func (e *KernelError) Error() string { return e.Message }
