package value

import (
	"crypto/md5"
	"crypto/sha1"

	"golang.org/x/crypto/sha3"

	"github.com/lcn2/calc-sub001/internal/kernel"
)

// QuickHash is the identity hasher used for association keys: a 32-bit
// FNV-0-like accumulator seeded at 0, transforming one 32-bit quantum at a
// time per §4.2.6. Equal values must produce equal hashes.
func QuickHash(v Value) uint32 {
	var h uint32
	mix := func(word uint32) {
		h = (h << 1) + (h << 4) + (h << 7) + (h << 8) + (h << 24)
		h ^= word
	}
	mix(uint32(v.Tag))
	quickHashBody(v, mix)
	return h
}

func quickHashBody(v Value, mix func(uint32)) {
	switch v.Tag {
	case Null:
		mix(0)
	case Int:
		n := v.Body.(int64)
		mix(uint32(n))
		mix(uint32(n >> 32))
	case Num:
		q := v.Body.(kernel.Q)
		mixZ(q.Num, mix)
		mixZ(q.Den, mix)
	case Com:
		c := v.Body.(kernel.C)
		mixZ(c.Real.Num, mix)
		mixZ(c.Real.Den, mix)
		mixZ(c.Imag.Num, mix)
		mixZ(c.Imag.Den, mix)
	case Str:
		b := strBytes(v)
		mix(uint32(len(b)))
		for i := 0; i < len(b); i += 4 {
			var w uint32
			for j := 0; j < 4 && i+j < len(b); j++ {
				w = (w << 8) | uint32(b[i+j])
			}
			mix(w)
		}
	case Mat:
		m := v.Body.(Ref[Matrix]).Get()
		mix(uint32(m.Dims))
		mix(uint32(len(m.Data)))
		for i, e := range sampledIndices(len(m.Data)) {
			_ = i
			quickHashBody(m.Data[e], mix)
		}
	case List:
		l := v.Body.(Ref[List]).Get()
		mix(uint32(l.Len()))
		elems := l.Elements()
		for _, i := range sampledIndices(len(elems)) {
			quickHashBody(elems[i], mix)
		}
	case Assoc:
		a := v.Body.(Ref[Association]).Get()
		mix(uint32(a.Dim))
		mix(uint32(len(a.entries)))
	default:
		mix(uint32(v.Tag) + 1)
	}
}

// sampledIndices returns the first 16 indices plus a stride-sampled tail,
// matching §4.2.6's "first 16 + stride-sampled subsequent" rule.
func sampledIndices(n int) []int {
	if n <= 16 {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out
	}
	out := make([]int, 0, 16+n/16)
	for i := 0; i < 16; i++ {
		out = append(out, i)
	}
	stride := n / 16
	if stride < 1 {
		stride = 1
	}
	for i := 16; i < n; i += stride {
		out = append(out, i)
	}
	return out
}

func mixZ(z kernel.Z, mix func(uint32)) {
	s := z.Big().Bits()
	if len(s) == 0 {
		mix(0)
		return
	}
	for _, w := range s {
		mix(uint32(w))
	}
}

// HashAlgorithm names one of the incremental hash-state backends.
type HashAlgorithm int

const (
	AlgMD5 HashAlgorithm = iota
	AlgSHA1
	AlgSHS // historical Secure Hash Standard; exact digest bits are a
	// non-goal, so this variant is implemented as a distinct SHA-3
	// instance rather than a bit-exact SHA-0 reproduction.
)

// HashState is the cryptographic-hash value arm: an incremental interface
// whose algorithm (MD5, SHA-1, "SHS") is an external collaborator. The
// value layer only needs these five operations plus equality over all
// five fields named in §4.2.6.
type HashState struct {
	Alg     HashAlgorithm
	Count   uint64 // bytes passed to Update plus NoteValueType contributions
	Pending []byte // bytes accumulated since the last checkpoint
	Digest  []byte // digest state after the last checkpoint/finalize
}

// NewHashState starts a fresh incremental hash of the given algorithm.
func NewHashState(alg HashAlgorithm) *HashState {
	return &HashState{Alg: alg}
}

// Update folds bytes into the pending buffer.
func (h *HashState) Update(b []byte) {
	h.Pending = append(h.Pending, b...)
	h.Count += uint64(len(b))
}

// Checkpoint zero-pads the current partial block and hashes it; calling it
// on an empty pending buffer is idempotent.
func (h *HashState) Checkpoint() {
	if len(h.Pending) == 0 && h.Digest != nil {
		return
	}
	block := sha3.New256().BlockSize()
	if h.Alg == AlgMD5 || h.Alg == AlgSHA1 {
		block = md5.BlockSize // MD5 and SHA-1 share a 64-byte block
	}
	pending := h.Pending
	if r := len(pending) % block; r != 0 {
		pending = append(append([]byte(nil), pending...), make([]byte, block-r)...)
	}
	sum := h.sum(pending)
	h.Digest = sum
	h.Pending = nil
}

// Note XOR-mixes a type-discrimination tag into the state, used when a
// non-byte Value is fed into the hash.
func (h *HashState) Note(tag int) {
	h.Checkpoint()
	for i := range h.Digest {
		h.Digest[i] ^= byte(tag >> (8 * (i % 4)))
	}
}

// NoteValueType adds a tag's contribution into the running count, used for
// type-discrimination between e.g. Int(1) and Num(1).
func (h *HashState) NoteValueType(tag int) {
	h.Count += uint64(tag) + 1
}

// Finalize returns the digest as a big-endian integer.
func (h *HashState) Finalize() kernel.Z {
	h.Checkpoint()
	z, _ := kernel.ParseZ(bytesToHex(h.Digest), 16)
	return z
}

func (h *HashState) sum(b []byte) []byte {
	switch h.Alg {
	case AlgMD5:
		s := md5.Sum(append(append([]byte(nil), h.Digest...), b...))
		return s[:]
	case AlgSHA1:
		s := sha1.Sum(append(append([]byte(nil), h.Digest...), b...))
		return s[:]
	default:
		s := sha3.Sum256(append(append([]byte(nil), h.Digest...), b...))
		return s[:]
	}
}

// Equal compares all five fields named in §4.2.6.
func (h *HashState) Equal(o *HashState) bool {
	if h.Alg != o.Alg || h.Count != o.Count || len(h.Pending) != len(o.Pending) || len(h.Digest) != len(o.Digest) {
		return false
	}
	for i := range h.Pending {
		if h.Pending[i] != o.Pending[i] {
			return false
		}
	}
	for i := range h.Digest {
		if h.Digest[i] != o.Digest[i] {
			return false
		}
	}
	return true
}

func bytesToHex(b []byte) string {
	if len(b) == 0 {
		return "0"
	}
	const hexDigits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hexDigits[c>>4]
		out[i*2+1] = hexDigits[c&0xf]
	}
	return string(out)
}
