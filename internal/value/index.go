package value

import "fmt"

// Index resolves container[indices...] to an addressable slot, per
// §4.2.4. writable asks for a slot suitable for assignment: for an Assoc
// it creates a missing key; the other containers ignore it. The result
// is always expressed as a
// pointer into the container's own storage, so writing through it is
// visible to every other handle sharing that container.
func Index(container *Value, writable bool, indices []Value) (Value, error) {
	switch container.Tag {
	case Mat:
		return indexMatrix(container, indices)
	case List:
		return indexList(container, indices)
	case Assoc:
		return indexAssoc(container, writable, indices)
	case Str:
		return indexOctets(container, indices, true)
	case Block:
		return indexOctets(container, indices, false)
	case NBlock:
		nref := container.Body.(*NBlockRef)
		nested := Value{Tag: Block, Body: nref.Block}
		return indexOctets(&nested, indices, false)
	case Obj:
		return indexObject(container, indices)
	default:
		return Value{}, fmt.Errorf("value: %s is not indexable", container.Tag)
	}
}

func indexMatrix(container *Value, indices []Value) (Value, error) {
	ref := container.Body.(Ref[Matrix])
	m := ref.Get()
	idx := make([]int64, len(indices))
	for i, v := range indices {
		n, ok := asIntParam(v)
		if !ok {
			return Value{}, fmt.Errorf("value: matrix index must be an integer")
		}
		idx[i] = n
	}
	off, err := m.Offset(idx)
	if err != nil {
		return Value{}, err
	}
	return NewAddr(&m.Data[off]), nil
}

func indexList(container *Value, indices []Value) (Value, error) {
	if len(indices) != 1 {
		return Value{}, fmt.Errorf("value: list index takes exactly one subscript")
	}
	ref := container.Body.(Ref[List])
	l := ref.Get()
	n, ok := asIntParam(indices[0])
	if !ok {
		return Value{}, fmt.Errorf("value: list index must be an integer")
	}
	slot, err := l.AddrAt(int(n))
	if err != nil {
		return Value{}, err
	}
	return NewAddr(slot), nil
}

func indexAssoc(container *Value, writable bool, indices []Value) (Value, error) {
	ref := container.Body.(Ref[Association])
	a := ref.Get()
	if len(indices) != a.Dim {
		return Value{}, fmt.Errorf("value: association key has %d components, expected %d", len(indices), a.Dim)
	}
	if writable {
		idx := a.bucketIndex(indices)
		for e := a.buckets[idx]; e != nil; e = e.next {
			if a.keyEqual(e.key, indices) {
				return NewAddr(&e.val), nil
			}
		}
		keyCopy := make([]Value, len(indices))
		for i, k := range indices {
			keyCopy[i] = k.Copy()
		}
		a.Set(keyCopy, NewNull())
		idx = a.bucketIndex(keyCopy)
		for e := a.buckets[idx]; e != nil; e = e.next {
			if a.keyEqual(e.key, keyCopy) {
				return NewAddr(&e.val), nil
			}
		}
	}
	idx := a.bucketIndex(indices)
	for e := a.buckets[idx]; e != nil; e = e.next {
		if a.keyEqual(e.key, indices) {
			return NewAddr(&e.val), nil
		}
	}
	return Value{}, fmt.Errorf("value: no association entry for key")
}

func indexOctets(container *Value, indices []Value, isStr bool) (Value, error) {
	if len(indices) != 1 {
		return Value{}, fmt.Errorf("value: string/block index takes exactly one subscript")
	}
	n, ok := asIntParam(indices[0])
	if !ok {
		return Value{}, fmt.Errorf("value: string/block index must be an integer")
	}
	var backing *[]byte
	if isStr {
		ptr := container.Body.(Ref[[]byte])
		backing = ptr.Get()
	} else {
		ptr := container.Body.(Ref[Block])
		backing = &ptr.Get().Data
	}
	if n < 0 || int(n) >= len(*backing) {
		return Value{}, fmt.Errorf("value: string/block index out of range")
	}
	return Value{Tag: Octet, Body: &OctetRef{Backing: backing, Index: int(n)}}, nil
}

func indexObject(container *Value, indices []Value) (Value, error) {
	if len(indices) != 1 || indices[0].Tag != Str {
		return Value{}, fmt.Errorf("value: object index must be a single element name")
	}
	ref := container.Body.(Ref[Object])
	o := ref.Get()
	name := indices[0].String()
	idx := o.Schema.ElementIndex(name)
	if idx < 0 {
		return Value{}, fmt.Errorf("value: object has no element %q", name)
	}
	return NewAddr(&o.Elements[idx]), nil
}

// ElemInit implements §4.2.5's position/value validation for a container
// literal's element initializer: truncating a numeric initializer to its
// low 8 bits for Str/Block/NBlock elements, and bounding a List
// initializer's position to 0..len inclusive (append-at-end allowed).
func ElemInit(container *Value, pos int64, v Value) (Value, error) {
	switch container.Tag {
	case Str, Block, NBlock:
		n, ok := asIntParam(v)
		if !ok {
			return Value{}, fmt.Errorf("value: string/block element must be an integer")
		}
		return NewInt(n & 0xff), nil
	case List:
		ref := container.Body.(Ref[List])
		l := ref.Get()
		if pos < 0 || pos > int64(l.Len()) {
			return Value{}, fmt.Errorf("value: list element position out of range")
		}
		return v, nil
	default:
		return v, nil
	}
}
