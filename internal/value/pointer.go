package value

import "fmt"

// NewAddr builds a non-owning Addr Value pointing at slot. Addr and the
// typed pointer arms must never outlive their referent (§3.2).
func NewAddr(slot *Value) Value { return Value{Tag: Addr, Body: slot} }

// Deref copies the referent of an Addr/VPtr/SPtr Value, or reads the byte
// addressed by an OPtr as an Int.
func Deref(v Value) (Value, error) {
	switch v.Tag {
	case Addr, VPtr, SPtr, NPtr:
		if a, ok := v.Body.(*ArrayRef); ok && v.Tag == VPtr {
			if a.Index < 0 || a.Index >= len(*a.Backing) {
				return Value{}, fmt.Errorf("value: value pointer out of range")
			}
			return (*a.Backing)[a.Index].Copy(), nil
		}
		slot, ok := v.Body.(*Value)
		if !ok || slot == nil {
			return Value{}, fmt.Errorf("value: dereference of a dangling pointer")
		}
		return slot.Copy(), nil
	case OPtr:
		b, ok := v.Body.(*byte)
		if !ok || b == nil {
			return Value{}, fmt.Errorf("value: dereference of a dangling octet pointer")
		}
		return NewInt(int64(*b)), nil
	case Octet:
		o, ok := v.Body.(*OctetRef)
		if !ok {
			return Value{}, fmt.Errorf("value: dereference of a dangling octet address")
		}
		b, err := o.Read()
		if err != nil {
			return Value{}, err
		}
		return NewInt(int64(b)), nil
	default:
		return Value{}, fmt.Errorf("value: %s is not a pointer", v.Tag)
	}
}

// PointerAdjust implements pointer +- integer: advance an Octet address by n
// bytes within its Block/Str, or a VPtr by n elements within a contiguous
// array.
func PointerAdjust(v Value, n int64) (Value, error) {
	switch v.Tag {
	case Octet:
		o := v.Body.(*OctetRef)
		idx := o.Index + int(n)
		if idx < 0 || idx >= len(*o.Backing) {
			return Value{}, fmt.Errorf("value: octet address out of range")
		}
		return Value{Tag: Octet, Body: &OctetRef{Backing: o.Backing, Index: idx}}, nil
	case VPtr:
		a, ok := v.Body.(*ArrayRef)
		if !ok {
			return Value{}, fmt.Errorf("value: pointer arithmetic undefined for a scalar VPtr")
		}
		idx := a.Index + int(n)
		if idx < 0 || idx >= len(*a.Backing) {
			return Value{}, fmt.Errorf("value: value pointer out of range")
		}
		return Value{Tag: VPtr, Body: &ArrayRef{Backing: a.Backing, Index: idx}}, nil
	default:
		return Value{}, fmt.Errorf("value: pointer arithmetic undefined for %s", v.Tag)
	}
}

// OctetRef is the Octet body: an address of one byte inside a Block or Str,
// as produced by Index() when indexing into those containers (§4.2.4).
type OctetRef struct {
	Backing *[]byte
	Index   int
}

// Read returns the addressed byte.
func (o *OctetRef) Read() (byte, error) {
	if o.Index < 0 || o.Index >= len(*o.Backing) {
		return 0, fmt.Errorf("value: octet address out of range")
	}
	return (*o.Backing)[o.Index], nil
}

// Write stores the low 8 bits of b at the addressed position.
func (o *OctetRef) Write(b byte) error {
	if o.Index < 0 || o.Index >= len(*o.Backing) {
		return fmt.Errorf("value: octet address out of range")
	}
	(*o.Backing)[o.Index] = b
	return nil
}

// ArrayRef is the VPtr body for pointer arithmetic over a contiguous
// Value array (e.g. a Matrix's flat Data or a List snapshot).
type ArrayRef struct {
	Backing *[]Value
	Index   int
}

// NewOctetAddr builds an Octet Value addressing backing[index].
func NewOctetAddr(backing *[]byte, index int) Value {
	return Value{Tag: Octet, Body: &OctetRef{Backing: backing, Index: index}}
}

// AddressOf builds the typed pointer Value for tag t addressing slot,
// implementing the unary address-of operator over VPtr/SPtr/NPtr.
func AddressOf(t Tag, slot *Value) Value {
	return Value{Tag: t, Body: slot}
}

// NewOctetPtr wraps a raw byte pointer as an OPtr, used when an Octet
// address is promoted to a first-class pointer value.
func NewOctetPtr(b *byte) Value { return Value{Tag: OPtr, Body: b} }
