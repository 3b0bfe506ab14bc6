package kernel

import (
	"fmt"
	"math/big"
)

// Q is an exact rational in lowest terms: den > 0 and gcd(|num|, den) == 1.
// An integer has den == 1; zero is represented as 0/1.
type Q struct {
	Num Z
	Den Z
}

var (
	qZero = Q{ZZero(), ZOne()}
	qOne  = Q{ZOne(), ZOne()}
)

func QZero() Q { return qZero }
func QOne() Q  { return qOne }

// NewQ builds and reduces num/den. den must be non-zero.
func NewQ(num, den Z) (Q, error) {
	if den.IsZero() {
		return Q{}, errDivByZero
	}
	return reduce(num, den), nil
}

// QFromZ lifts an integer into Q.
func QFromZ(z Z) Q { return Q{z, ZOne()} }

// QFromInt64 builds Q from a pair of machine ints.
func QFromInt64(num, den int64) (Q, error) {
	return NewQ(NewZ(num), NewZ(den))
}

func reduce(num, den Z) Q {
	if den.Sign() < 0 {
		num, den = num.Neg(), den.Neg()
	}
	if num.IsZero() {
		return Q{ZZero(), ZOne()}
	}
	g := num.Gcd(den)
	if g.Cmp(ZOne()) == 0 {
		return Q{num, den}
	}
	n, _, _ := num.DivMod(g, RoundTrunc)
	d, _, _ := den.DivMod(g, RoundTrunc)
	return Q{n, d}
}

// IsInt reports whether q has denominator 1, enabling the fast paths the
// dispatcher uses for Int-tagged values.
func (q Q) IsInt() bool { return q.Den.Cmp(ZOne()) == 0 }

// IsZero reports whether q == 0.
func (q Q) IsZero() bool { return q.Num.IsZero() }

// Sign returns -1, 0, +1.
func (q Q) Sign() int { return q.Num.Sign() }

func (q Q) String() string {
	if q.IsInt() {
		return q.Num.String()
	}
	return fmt.Sprintf("%s/%s", q.Num.String(), q.Den.String())
}

// Cmp returns -1, 0, +1 as q <, ==, > other.
func (q Q) Cmp(other Q) int {
	// a/b <=> c/d, b,d > 0  <=>  a*d <=> c*b
	lhs := q.Num.Mul(other.Den)
	rhs := other.Num.Mul(q.Den)
	return lhs.Cmp(rhs)
}

// Add returns q + other, reduced.
func (q Q) Add(other Q) Q {
	num := q.Num.Mul(other.Den).Add(other.Num.Mul(q.Den))
	den := q.Den.Mul(other.Den)
	return reduce(num, den)
}

// Sub returns q - other, reduced.
func (q Q) Sub(other Q) Q { return q.Add(other.Neg()) }

// Neg returns -q.
func (q Q) Neg() Q { return Q{q.Num.Neg(), q.Den} }

// Abs returns |q|.
func (q Q) Abs() Q { return Q{q.Num.Abs(), q.Den} }

// Mul returns q * other, reduced.
func (q Q) Mul(other Q) Q {
	return reduce(q.Num.Mul(other.Num), q.Den.Mul(other.Den))
}

// Inv returns 1/q. Inversion of zero is E_1OVER0.
func (q Q) Inv() (Q, error) {
	if q.IsZero() {
		return Q{}, errOneOverZero
	}
	if q.Num.Sign() < 0 {
		return reduce(q.Den.Neg(), q.Num.Neg()), nil
	}
	return reduce(q.Den, q.Num), nil
}

// Div returns q / other.
func (q Q) Div(other Q) (Q, error) {
	if other.IsZero() {
		if q.IsZero() {
			return Q{}, errZeroDivZero
		}
		return Q{}, errOneOverZero
	}
	inv, _ := other.Inv()
	return q.Mul(inv), nil
}

// QuoMod divides q by other under rnd, returning an integer-valued quotient
// Q and a remainder Q such that quo*other + mod == q. Matches the integer
// semantics generalized to rationals via a common denominator.
func (q Q) QuoMod(other Q, rnd RoundMode) (quo, mod Q, err error) {
	if other.IsZero() {
		return Q{}, Q{}, errDivByZero
	}
	// Bring both to a common denominator, then integer-divide numerators.
	lhsNum := q.Num.Mul(other.Den)
	rhsNum := other.Num.Mul(q.Den)
	commonDen := q.Den.Mul(other.Den)
	qz, rz, err := lhsNum.DivMod(rhsNum, rnd)
	if err != nil {
		return Q{}, Q{}, err
	}
	quo = QFromZ(qz)
	mod = reduce(rz, commonDen)
	return quo, mod, nil
}

// Pow raises q to an integer exponent (possibly negative).
func (q Q) Pow(e Z) (Q, error) {
	if e.Sign() == 0 {
		return qOne, nil
	}
	base := q
	if e.Sign() < 0 {
		inv, err := q.Inv()
		if err != nil {
			return Q{}, err
		}
		base = inv
		e = e.Neg()
	}
	num, err := base.Num.Pow(e)
	if err != nil {
		return Q{}, err
	}
	den, err := base.Den.Pow(e)
	if err != nil {
		return Q{}, err
	}
	return reduce(num, den), nil
}

// Int returns the integer part (truncated toward zero) as Q with Den == 1.
func (q Q) Int() Q {
	qz, _, _ := q.Num.DivMod(q.Den, RoundTrunc)
	return QFromZ(qz)
}

// Frac returns q minus its truncated integer part.
func (q Q) Frac() Q { return q.Sub(q.Int()) }

// Scale returns q * 2^n (n may be negative).
func (q Q) Scale(n int) Q {
	if n == 0 {
		return q
	}
	if n > 0 {
		return reduce(q.Num.Lsh(uint(n)), q.Den)
	}
	return reduce(q.Num, q.Den.Lsh(uint(-n)))
}

// FloatApprox converts q to a float64, for display and as a seed for
// Newton iteration; never used where exactness matters.
func (q Q) FloatApprox() float64 {
	r := new(big.Rat).SetFrac(q.Num.big(), q.Den.big())
	f, _ := r.Float64()
	return f
}

// Int64 returns q and true when q is an integer (den == 1) that fits in an
// int64; otherwise it returns 0 and false, without truncating.
func (q Q) Int64() (int64, bool) {
	if !q.IsInt() {
		return 0, false
	}
	return q.Num.Int64()
}

// QFromString parses a decimal literal with an optional fractional part
// and an optional e/E exponent (e.g. "1.5", "1e-20", "-3.25e+4") into an
// exact Q, the way calc reads a numeric constant token.
func QFromString(s string) (Q, error) {
	mantissa := s
	exp := 0
	if i := indexAny(s, "eE"); i >= 0 {
		mantissa = s[:i]
		e, err := parseIntStrict(s[i+1:])
		if err != nil {
			return Q{}, fmt.Errorf("kernel: invalid exponent in %q: %w", s, err)
		}
		exp = e
	}
	neg := false
	if len(mantissa) > 0 && (mantissa[0] == '+' || mantissa[0] == '-') {
		neg = mantissa[0] == '-'
		mantissa = mantissa[1:]
	}
	intPart, fracPart := mantissa, ""
	if i := indexAny(mantissa, "."); i >= 0 {
		intPart, fracPart = mantissa[:i], mantissa[i+1:]
	}
	digits := intPart + fracPart
	if digits == "" {
		return Q{}, fmt.Errorf("kernel: invalid numeric literal %q", s)
	}
	num, err := ParseZ(digits, 10)
	if err != nil {
		return Q{}, fmt.Errorf("kernel: invalid numeric literal %q: %w", s, err)
	}
	if neg {
		num = num.Neg()
	}
	exp -= len(fracPart)
	if exp >= 0 {
		scale, _ := NewZ(10).Pow(NewZ(int64(exp)))
		return QFromZ(num.Mul(scale)), nil
	}
	scale, _ := NewZ(10).Pow(NewZ(int64(-exp)))
	return NewQ(num, scale)
}

// QMustFromString is QFromString for literals known at compile time to be
// valid (e.g. built-in default constants); it panics on a malformed input.
func QMustFromString(s string) Q {
	q, err := QFromString(s)
	if err != nil {
		panic(err)
	}
	return q
}

func indexAny(s, chars string) int {
	for i := 0; i < len(s); i++ {
		for j := 0; j < len(chars); j++ {
			if s[i] == chars[j] {
				return i
			}
		}
	}
	return -1
}

func parseIntStrict(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty exponent")
	}
	neg := false
	if s[0] == '+' || s[0] == '-' {
		neg = s[0] == '-'
		s = s[1:]
	}
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("non-digit %q", c)
		}
		n = n*10 + int(c-'0')
	}
	if neg {
		n = -n
	}
	return n, nil
}

var (
	errOneOverZero = &KernelError{Code: "E_1OVER0", Message: "Division by zero"}
	errZeroDivZero = &KernelError{Code: "E_ZERODIVZERO", Message: "Indeterminate (0/0)"}
)
