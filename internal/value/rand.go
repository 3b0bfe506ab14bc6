package value

import "github.com/lcn2/calc-sub001/internal/kernel"

// RandState is the "rand" PRNG value arm: an additive/subtractive
// lagged-Fibonacci generator in the style of calc's default `rand()`
// generator, seeded from a 100-word table and iterated with lags 37 and
// 100 (§3.2's "Rand = subtractive-100 lagged-Fibonacci PRNG state").
type RandState struct {
	table [100]kernel.Z
	pos   int
	seed  kernel.Z
}

const (
	randLagShort = 37
	randLagLong  = 100
)

// NewRandState seeds a generator from seed using a simple linear
// congruential warm-up to fill the lagged-Fibonacci table, matching the
// teacher's convention of deriving initial generator state deterministically
// from a single seed value.
func NewRandState(seed kernel.Z) *RandState {
	r := &RandState{seed: seed}
	x := seed.Big().Uint64() | 1
	for i := range r.table {
		x = x*6364136223846793005 + 1442695040888963407
		r.table[i] = kernel.NewZ(int64(x >> 1))
	}
	return r
}

// Clone deep-copies the generator state for copy-on-write.
func (r RandState) Clone() RandState {
	out := r
	return out
}

// Next produces the next word and advances the lagged-Fibonacci state:
// table[pos] -= table[(pos+lagShort)%lagLong], stored back in place.
func (r *RandState) Next() kernel.Z {
	short := (r.pos + randLagShort) % randLagLong
	v := r.table[r.pos].Sub(r.table[short])
	if v.Sign() < 0 {
		v = v.Neg()
	}
	r.table[r.pos] = v
	out := v
	r.pos = (r.pos + 1) % randLagLong
	return out
}

// Seed reports the generator's original seed, for config("rand") display.
func (r *RandState) Seed() kernel.Z { return r.seed }

// RandomState is the "random" PRNG value arm: a Blum-Blum-Shub generator,
// x[n+1] = x[n]^2 mod m for an m = p*q product of two large primes
// congruent to 3 mod 4 (§3.2's "Random = Blum-Blum-Shub PRNG state").
type RandomState struct {
	modulus kernel.Z
	state   kernel.Z
	seed    kernel.Z
}

// NewRandomState starts a BBS generator with the given Blum modulus and
// seed; callers are responsible for ensuring modulus is a valid Blum
// integer (product of two primes ≡ 3 mod 4), since primality selection is
// an external collaborator (§1) outside the evaluation core.
func NewRandomState(modulus, seed kernel.Z) *RandomState {
	state, _ := seed.PowMod(kernel.NewZ(2), modulus)
	return &RandomState{modulus: modulus, state: state, seed: seed}
}

// Clone deep-copies the generator state for copy-on-write.
func (r RandomState) Clone() RandomState {
	out := r
	return out
}

// NextBit extracts the low bit of the current state and advances it.
func (r *RandomState) NextBit() uint {
	bit := r.state.Bit(0)
	r.state, _ = r.state.PowMod(kernel.NewZ(2), r.modulus)
	return bit
}

// NextBits returns n bits packed low-to-high into a Z, advancing the
// generator once per bit.
func (r *RandomState) NextBits(n int) kernel.Z {
	out := kernel.ZZero()
	for i := 0; i < n; i++ {
		if r.NextBit() != 0 {
			out = out.Or(kernel.NewZ(1).Lsh(uint(i)))
		}
	}
	return out
}

// Modulus reports the generator's Blum modulus, for config("random") display.
func (r *RandomState) Modulus() kernel.Z { return r.modulus }
