// Package value implements calc's polymorphic Value: a tagged sum over
// integers, exact rationals, Gaussian rationals, strings, matrices, lists,
// associations, user objects, pointers, and a handful of engine-side
// states (file ids, PRNGs, a configuration snapshot, a hash state, byte
// blocks), plus the dispatch layer that makes +, -, *, /, and friends work
// across every pair of those arms.
package value

import (
	"fmt"

	"github.com/lcn2/calc-sub001/internal/kernel"
)

// Tag identifies which arm of the sum a Value currently holds.
type Tag int

const (
	Null Tag = iota
	Int      // machine int fast path, convertible to Num
	Num      // shared kernel.Q
	Com      // shared kernel.C
	Str      // shared immutable byte string
	Mat      // shared Matrix
	List     // shared List
	Assoc    // shared Association
	Obj      // shared Object
	File     // opaque file id
	Rand     // shared subtractive-100 PRNG state
	Random   // shared Blum-Blum-Shub PRNG state
	Config   // shared configuration snapshot
	Hash     // shared hash state
	Block    // shared resizable byte block
	Octet    // pointer to one byte inside a Block or Str
	NBlock   // named block
	Addr     // non-owning pointer to a Value slot
	VPtr     // pointer to a Value cell
	OPtr     // pointer to a byte
	SPtr     // pointer to a string handle
	NPtr     // pointer to a Q handle
	Error    // tag carries a negative errno in Body.(int)
)

func (t Tag) String() string {
	switch t {
	case Null:
		return "null"
	case Int:
		return "int"
	case Num:
		return "rational"
	case Com:
		return "complex"
	case Str:
		return "string"
	case Mat:
		return "matrix"
	case List:
		return "list"
	case Assoc:
		return "assoc"
	case Obj:
		return "object"
	case File:
		return "file"
	case Rand:
		return "rand"
	case Random:
		return "random"
	case Config:
		return "config"
	case Hash:
		return "hash"
	case Block:
		return "block"
	case Octet:
		return "octet"
	case NBlock:
		return "named block"
	case Addr, VPtr, OPtr, SPtr, NPtr:
		return "pointer"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Subtype is a protection-flag bitmask. Flags propagate on copy and union
// on merge (see §3.2).
type Subtype uint32

const (
	NoAssignTo    Subtype = 1 << iota // destination cannot be written
	NoNewValue                        // writes must not change equality
	NoNewType                         // writes must not change tag
	NoError                           // writes must not store an Error
	NoCopyTo                          // forbids elem_init / copy-into
	NoReallocate                      // forbids resize
	NoAssignFrom                      // forbids use as an assign source
	NoCopyFrom                        // forbids use as a copy source
	ProtectAll                        // recursively protects contained values
)

// Value is the tagged sum described in §3.2. Body holds the arm-specific
// payload: nil for Null, int64 for Int, kernel.Q for Num, kernel.C for Com,
// Ref[[]byte] for Str, Ref[Matrix] for Mat, Ref[List] for List,
// Ref[Association] for Assoc, Ref[Object] for Obj, a string id for File,
// int for Error, Ref[RandState] for Rand, Ref[RandomState] for Random,
// Ref[Config] for Config, Ref[HashState] for Hash, Ref[Block] for Block,
// *OctetRef for Octet, *NBlockRef for NBlock, *Value for Addr/VPtr/SPtr/
// NPtr (*ArrayRef for a VPtr moved by PointerAdjust), and *byte for OPtr.
type Value struct {
	Tag     Tag
	Subtype Subtype
	Body    interface{}
}

// NewNull returns the null Value.
func NewNull() Value { return Value{Tag: Null} }

// NewInt wraps a machine int on the fast path.
func NewInt(i int64) Value { return Value{Tag: Int, Body: i} }

// NewNum wraps an exact rational.
func NewNum(q kernel.Q) Value { return Value{Tag: Num, Body: q} }

// NewCom wraps a Gaussian rational, collapsing to Num if imag == 0, per the
// invariant in §3.1 / §8 ("Collapse").
func NewCom(c kernel.C) Value {
	if c.IsReal() {
		return NewNum(c.Real)
	}
	return Value{Tag: Com, Body: c}
}

// NewError builds an Error Value from a calc error code (see internal/errors).
func NewError(code int) Value { return Value{Tag: Error, Body: -abs(code)} }

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}

// ErrorCode returns the positive error code carried by an Error Value.
func (v Value) ErrorCode() int {
	if v.Tag != Error {
		return 0
	}
	return -v.Body.(int)
}

// IsError reports whether v is the Error arm.
func (v Value) IsError() bool { return v.Tag == Error }

// IsNull reports whether v is Null.
func (v Value) IsNull() bool { return v.Tag == Null }

// AsQ promotes Int/Num to an exact rational, or reports false.
func (v Value) AsQ() (kernel.Q, bool) {
	switch v.Tag {
	case Int:
		return kernel.QFromZ(kernel.NewZ(v.Body.(int64))), true
	case Num:
		return v.Body.(kernel.Q), true
	}
	return kernel.Q{}, false
}

// AsC promotes Int/Num/Com to a complex rational, or reports false.
func (v Value) AsC() (kernel.C, bool) {
	if c, ok := v.Body.(kernel.C); ok && v.Tag == Com {
		return c, true
	}
	if q, ok := v.AsQ(); ok {
		return kernel.CFromQ(q), true
	}
	return kernel.C{}, false
}

// Has reports whether every bit in flags is set on v's subtype.
func (v Value) Has(flags Subtype) bool { return v.Subtype&flags == flags }

// WithSubtype returns a copy of v carrying the union of its current
// subtype flags and flags, matching the "union on merge" propagation rule.
func (v Value) WithSubtype(flags Subtype) Value {
	v.Subtype |= flags
	return v
}

// Copy duplicates a Value handle. For shared arms this increments the
// underlying refcount (cheap handle copy); for Int/Num/Com/Null/Error it is
// already a plain value copy. Mutating operations that need to observe
// exclusive ownership call COW explicitly before writing.
func (v Value) Copy() Value {
	switch v.Tag {
	case Str:
		v.Body = v.Body.(Ref[[]byte]).Retain()
	case Mat:
		v.Body = v.Body.(Ref[Matrix]).Retain()
	case List:
		v.Body = v.Body.(Ref[List]).Retain()
	case Assoc:
		v.Body = v.Body.(Ref[Association]).Retain()
	case Obj:
		v.Body = v.Body.(Ref[Object]).Retain()
	case Rand:
		v.Body = v.Body.(Ref[RandState]).Retain()
	case Random:
		v.Body = v.Body.(Ref[RandomState]).Retain()
	case Config:
		v.Body = v.Body.(Ref[Config]).Retain()
	case Hash:
		v.Body = v.Body.(Ref[HashState]).Retain()
	case Block:
		v.Body = v.Body.(Ref[Block]).Retain()
	}
	return v
}

func (v Value) String() string {
	switch v.Tag {
	case Null:
		return "null"
	case Int:
		return fmt.Sprintf("%d", v.Body.(int64))
	case Num:
		return v.Body.(kernel.Q).String()
	case Com:
		return v.Body.(kernel.C).String()
	case Str:
		return string(*v.Body.(Ref[[]byte]).Get())
	case Error:
		return fmt.Sprintf("Error %d", v.ErrorCode())
	case Mat:
		return v.Body.(Ref[Matrix]).Get().String()
	case List:
		return v.Body.(Ref[List]).Get().String()
	case Assoc:
		return "assoc"
	case Obj:
		return v.Body.(Ref[Object]).Get().String()
	case File:
		return fileString(v)
	case Block:
		return v.Body.(Ref[Block]).Get().String()
	default:
		return fmt.Sprintf("<%s>", v.Tag)
	}
}
