package kernel

import (
	"math"
	"sync"
)

// Every transcendental here accepts a Q or C argument and a positive Q
// epsilon, and returns a value within epsilon of the mathematical answer.
// Internally we compute with exact Q (rational) arithmetic so each partial
// sum is itself exact; we stop summing once the next term's float
// magnitude estimate drops below epsilon/2, which is the "guard bits"
// strategy of §4.1.1 implemented without tracking bit counts explicitly.
//
// Division-by-zero or a singular argument to an inverse function returns
// (Q{}, false); callers surface this as the engine's None/Error.

const maxTaylorTerms = 4000

func epsFloat(eps Q) float64 {
	f := eps.FloatApprox()
	if f <= 0 {
		return 1e-18
	}
	return f
}

// taylorSum evaluates sum_{n=0}^inf term(n) in Q arithmetic, stopping once
// |term(n)| (as a float estimate) is smaller than eps/2, or after a hard
// cap on iterations to guarantee termination on pathological input.
func taylorSum(eps Q, term func(n int) Q) Q {
	bound := epsFloat(eps) / 2
	sum := qZero
	for n := 0; n < maxTaylorTerms; n++ {
		t := term(n)
		sum = sum.Add(t)
		if math.Abs(t.FloatApprox()) < bound && n > 0 {
			break
		}
	}
	return sum
}

// factorialQ returns n! as an exact Q/Z-backed rational (Den == 1).
func factorialQ(n int) Q {
	z := ZOne()
	for i := 2; i <= n; i++ {
		z = z.Mul(NewZ(int64(i)))
	}
	return QFromZ(z)
}

// QExp computes e^x to within eps using the Taylor series sum x^n/n!.
func QExp(x, eps Q) Q {
	return taylorSum(eps, func(n int) Q {
		xn, _ := x.Pow(NewZ(int64(n)))
		return xn.Mul(mustInv(factorialQ(n)))
	})
}

func mustInv(q Q) Q {
	inv, err := q.Inv()
	if err != nil {
		// factorials and powers of nonzero bases are never zero.
		panic(err)
	}
	return inv
}

// QLn computes ln(x) for x > 0 to within eps, by Newton iteration on
// f(y) = exp(y) - x using QExp as the forward function.
func QLn(x, eps Q) (Q, bool) {
	if x.Sign() <= 0 {
		return Q{}, false
	}
	seed := math.Log(x.FloatApprox())
	y := floatToQ(seed)
	for i := 0; i < 200; i++ {
		ey := QExp(y, eps)
		diff := x.Sub(ey)
		if math.Abs(diff.FloatApprox()) < epsFloat(eps)/2 {
			break
		}
		y = y.Add(diff.Mul(mustInv(ey)))
	}
	return y, true
}

func bigDenomFor(eps Q) int64 {
	f := epsFloat(eps)
	if f <= 0 {
		return 1 << 40
	}
	d := int64(1 / f)
	if d < 1 {
		d = 1
	}
	return d
}

// floatToQ approximates a float64 as Q via a power-of-two denominator,
// used only as a Newton seed (never as the final answer).
func floatToQ(f float64) Q {
	const scale = 1 << 52
	num := int64(f * scale)
	q, _ := QFromInt64(num, scale)
	return q
}

// QLog10 and QLog2 divide by cached ln(10) / ln(2).
func QLog10(x, eps Q) (Q, bool) {
	lx, ok := QLn(x, eps)
	if !ok {
		return Q{}, false
	}
	l10 := ln10Cache.get(eps)
	inv, _ := l10.Inv()
	return lx.Mul(inv), true
}

func QLog2(x, eps Q) (Q, bool) {
	lx, ok := QLn(x, eps)
	if !ok {
		return Q{}, false
	}
	l2 := ln2Cache.get(eps)
	inv, _ := l2.Inv()
	return lx.Mul(inv), true
}

// --- §4.1.2 transcendental constant cache ---------------------------------

// constCache memoizes a single transcendental constant at the tightest
// epsilon requested so far, guarded by a mutex the way the rest of the
// kernel's process-wide state is, since a caller embedding this in a
// server is one rename away from concurrent access.
type constCache struct {
	mu      sync.Mutex
	have    bool
	eps     Q
	value   Q
	compute func(eps Q) Q
}

func (c *constCache) get(eps Q) Q {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.have && c.eps.Cmp(eps) <= 0 {
		return c.value
	}
	c.value = c.compute(eps)
	c.eps = eps
	c.have = true
	return c.value
}

var ln2Cache = &constCache{compute: func(eps Q) Q {
	half, _ := QFromInt64(1, 2)
	neg := half.Neg()
	// ln(1/2) = -ln(2); series for ln(1+u) converges for |u|<1, u=-1/2.
	u := neg
	return taylorSum(eps, func(n int) Q {
		if n == 0 {
			return qZero
		}
		un, _ := u.Pow(NewZ(int64(n)))
		sign := qOne
		if n%2 == 0 {
			sign = sign.Neg()
		}
		inv, _ := QFromInt64(1, int64(n))
		return un.Mul(inv).Mul(sign).Neg()
	})
}}

var ln10Cache = &constCache{compute: func(eps Q) Q {
	ten := QFromZ(ZTen())
	l, _ := QLn(ten, eps)
	return l
}}

// --- circular trig, via Taylor series --------------------------------------

func QSin(x, eps Q) Q {
	return taylorSum(eps, func(n int) Q {
		xn, _ := x.Pow(NewZ(int64(2*n + 1)))
		term := xn.Mul(mustInv(factorialQ(2*n + 1)))
		if n%2 == 1 {
			term = term.Neg()
		}
		return term
	})
}

func QCos(x, eps Q) Q {
	return taylorSum(eps, func(n int) Q {
		xn, _ := x.Pow(NewZ(int64(2 * n)))
		term := xn.Mul(mustInv(factorialQ(2 * n)))
		if n%2 == 1 {
			term = term.Neg()
		}
		return term
	})
}

func QTan(x, eps Q) (Q, bool) {
	c := QCos(x, eps)
	if c.IsZero() {
		return Q{}, false
	}
	return QSin(x, eps).Mul(mustInv(c)), true
}

func QCot(x, eps Q) (Q, bool) {
	s := QSin(x, eps)
	if s.IsZero() {
		return Q{}, false
	}
	return QCos(x, eps).Mul(mustInv(s)), true
}

func QSec(x, eps Q) (Q, bool) {
	c := QCos(x, eps)
	if c.IsZero() {
		return Q{}, false
	}
	return mustInv(c), true
}

func QCsc(x, eps Q) (Q, bool) {
	s := QSin(x, eps)
	if s.IsZero() {
		return Q{}, false
	}
	return mustInv(s), true
}

// --- inverse circular trig, via Newton on the forward function ------------

func newtonInvert(x, eps Q, forward func(Q, Q) Q, derivative func(Q, Q) Q, seed float64) Q {
	y := floatToQ(seed)
	for i := 0; i < 200; i++ {
		fy := forward(y, eps)
		diff := x.Sub(fy)
		if math.Abs(diff.FloatApprox()) < epsFloat(eps)/2 {
			break
		}
		d := derivative(y, eps)
		if d.IsZero() {
			break
		}
		y = y.Add(diff.Mul(mustInv(d)))
	}
	return y
}

func QAsin(x, eps Q) (Q, bool) {
	if x.FloatApprox() < -1 || x.FloatApprox() > 1 {
		return Q{}, false
	}
	seed := math.Asin(x.FloatApprox())
	return newtonInvert(x, eps, QSin, QCos, seed), true
}

func QAcos(x, eps Q) (Q, bool) {
	if x.FloatApprox() < -1 || x.FloatApprox() > 1 {
		return Q{}, false
	}
	seed := math.Acos(x.FloatApprox())
	return newtonInvert(x, eps, QCos, func(y, e Q) Q { return QSin(y, e).Neg() }, seed), true
}

func QAtan(x, eps Q) Q {
	seed := math.Atan(x.FloatApprox())
	tanDeriv := func(y, e Q) Q {
		t, _ := QTan(y, e)
		return t.Mul(t).Add(qOne)
	}
	forward := func(y, e Q) Q {
		t, _ := QTan(y, e)
		return t
	}
	return newtonInvert(x, eps, forward, tanDeriv, seed)
}

// --- hyperbolic counterparts ------------------------------------------------

func QSinh(x, eps Q) Q {
	return taylorSum(eps, func(n int) Q {
		xn, _ := x.Pow(NewZ(int64(2*n + 1)))
		return xn.Mul(mustInv(factorialQ(2*n + 1)))
	})
}

func QCosh(x, eps Q) Q {
	return taylorSum(eps, func(n int) Q {
		xn, _ := x.Pow(NewZ(int64(2 * n)))
		return xn.Mul(mustInv(factorialQ(2 * n)))
	})
}

func QTanh(x, eps Q) (Q, bool) {
	c := QCosh(x, eps)
	if c.IsZero() {
		return Q{}, false
	}
	return QSinh(x, eps).Mul(mustInv(c)), true
}

func QCoth(x, eps Q) (Q, bool) {
	s := QSinh(x, eps)
	if s.IsZero() {
		return Q{}, false
	}
	return QCosh(x, eps).Mul(mustInv(s)), true
}

func QSech(x, eps Q) (Q, bool) {
	c := QCosh(x, eps)
	if c.IsZero() {
		return Q{}, false
	}
	return mustInv(c), true
}

func QCsch(x, eps Q) (Q, bool) {
	s := QSinh(x, eps)
	if s.IsZero() {
		return Q{}, false
	}
	return mustInv(s), true
}

func QAsinh(x, eps Q) Q {
	inner := x.Mul(x).Add(qOne)
	root, _ := QSqrt(inner, eps)
	v, _ := QLn(x.Add(root), eps)
	return v
}

func QAcosh(x, eps Q) (Q, bool) {
	if x.FloatApprox() < 1 {
		return Q{}, false
	}
	inner := x.Mul(x).Sub(qOne)
	root, _ := QSqrt(inner, eps)
	v, ok := QLn(x.Add(root), eps)
	return v, ok
}

func QAtanh(x, eps Q) (Q, bool) {
	f := x.FloatApprox()
	if f <= -1 || f >= 1 {
		return Q{}, false
	}
	num := qOne.Add(x)
	den := qOne.Sub(x)
	ratio := num.Mul(mustInv(den))
	v, ok := QLn(ratio, eps)
	if !ok {
		return Q{}, false
	}
	half, _ := QFromInt64(1, 2)
	return v.Mul(half), true
}

// --- Gudermannian and its inverse, expressed without pi --------------------

func QGd(x, eps Q) Q {
	return QAtan(QSinh(x, eps), eps)
}

func QGdInv(x, eps Q) (Q, bool) {
	t, ok := QTan(x, eps)
	if !ok {
		return Q{}, false
	}
	return QAsinh(t, eps), true
}

// --- archaic trigonometric functions ---------------------------------------

func QVersin(x, eps Q) Q    { return qOne.Sub(QCos(x, eps)) }
func QCoversin(x, eps Q) Q  { return qOne.Sub(QSin(x, eps)) }
func QHaversin(x, eps Q) Q  { half, _ := QFromInt64(1, 2); return QVersin(x, eps).Mul(half) }
func QChord(x, eps Q) Q {
	half, _ := QFromInt64(1, 2)
	two, _ := QFromInt64(2, 1)
	return two.Mul(QSin(x.Mul(half), eps))
}
func QCas(x, eps Q) Q { return QCos(x, eps).Add(QSin(x, eps)) }

func QInvVersin(x, eps Q) (Q, bool) { return QAcos(qOne.Sub(x), eps) }
func QInvCoversin(x, eps Q) (Q, bool) { return QAsin(qOne.Sub(x), eps) }
func QInvHaversin(x, eps Q) (Q, bool) {
	two, _ := QFromInt64(2, 1)
	root, ok := QSqrt(x, eps)
	if !ok {
		return Q{}, false
	}
	a, ok := QAsin(root, eps)
	if !ok {
		return Q{}, false
	}
	return a.Mul(two), true
}

// --- sqrt-to-epsilon, via Newton iteration ---------------------------------

// QSqrt returns a Q within eps of sqrt(x), for x >= 0.
func QSqrt(x, eps Q) (Q, bool) {
	if x.Sign() < 0 {
		return Q{}, false
	}
	if x.IsZero() {
		return qZero, true
	}
	seed := math.Sqrt(x.FloatApprox())
	y := floatToQ(seed)
	half, _ := QFromInt64(1, 2)
	for i := 0; i < 200; i++ {
		if y.IsZero() {
			y = floatToQ(seed + 1e-9)
		}
		next := y.Add(x.Mul(mustInv(y))).Mul(half)
		diff := next.Sub(y)
		y = next
		if math.Abs(diff.FloatApprox()) < epsFloat(eps)/2 {
			break
		}
	}
	return y, true
}

// --- complex reductions, via real/imag decomposition -----------------------

// CExp computes e^(a+bi) = e^a (cos b + i sin b).
func CExp(c C, eps Q) C {
	mag := QExp(c.Real, eps)
	return C{mag.Mul(QCos(c.Imag, eps)), mag.Mul(QSin(c.Imag, eps))}
}

// CCos computes cos(a+bi) = cos a cosh b - i sin a sinh b.
func CCos(c C, eps Q) C {
	return C{
		QCos(c.Real, eps).Mul(QCosh(c.Imag, eps)),
		QSin(c.Real, eps).Mul(QSinh(c.Imag, eps)).Neg(),
	}
}

// CSin computes sin(a+bi) = sin a cosh b + i cos a sinh b.
func CSin(c C, eps Q) C {
	return C{
		QSin(c.Real, eps).Mul(QCosh(c.Imag, eps)),
		QCos(c.Real, eps).Mul(QSinh(c.Imag, eps)),
	}
}

// CLn computes ln(c) = ln|c| + i*arg(c), where arg uses QAtan on the ratio
// of parts (quadrant-adjusted).
func CLn(c C, eps Q) (C, bool) {
	normQ := c.Norm()
	if normQ.IsZero() {
		return C{}, false
	}
	magSq, ok := QSqrt(normQ, eps)
	if !ok {
		return C{}, false
	}
	lnMag, ok := QLn(magSq, eps)
	if !ok {
		return C{}, false
	}
	arg := CArg(c, eps)
	return C{lnMag, arg}, true
}

// CArg returns atan2-style argument of c using quadrant correction.
func CArg(c C, eps Q) Q {
	re, im := c.Real, c.Imag
	if re.Sign() > 0 {
		return QAtan(im.Mul(mustInv(re)), eps)
	}
	pi := piApprox(eps)
	if re.Sign() < 0 && im.Sign() >= 0 {
		return QAtan(im.Mul(mustInv(re)), eps).Add(pi)
	}
	if re.Sign() < 0 && im.Sign() < 0 {
		return QAtan(im.Mul(mustInv(re)), eps).Sub(pi)
	}
	half, _ := QFromInt64(1, 2)
	if im.Sign() > 0 {
		return pi.Mul(half)
	}
	if im.Sign() < 0 {
		return pi.Mul(half).Neg()
	}
	return qZero
}

var piCache = &constCache{compute: func(eps Q) Q {
	// Machin-like: pi = 16*atan(1/5) - 4*atan(1/239), both fast-converging.
	oneFifth, _ := QFromInt64(1, 5)
	oneTwoThirtyNine, _ := QFromInt64(1, 239)
	sixteen, _ := QFromInt64(16, 1)
	four, _ := QFromInt64(4, 1)
	return sixteen.Mul(QAtan(oneFifth, eps)).Sub(four.Mul(QAtan(oneTwoThirtyNine, eps)))
}}

func piApprox(eps Q) Q { return piCache.get(eps) }
