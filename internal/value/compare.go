package value

import "github.com/lcn2/calc-sub001/internal/kernel"

// Equal implements calc's `==`: structural equality across every arm.
// Int/Num/Com compare by numeric value regardless of which fast-path tag
// they carry; containers compare elementwise; everything else compares by
// identity of the underlying shared body.
func Equal(a, b Value) bool {
	if isNumeric(a) && isNumeric(b) {
		if a.Tag == Com || b.Tag == Com {
			ca, _ := a.AsC()
			cb, _ := b.AsC()
			return ca.Equal(cb)
		}
		qa, _ := a.AsQ()
		qb, _ := b.AsQ()
		return qa.Cmp(qb) == 0
	}
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case Null:
		return true
	case Str:
		ab, bb := strBytes(a), strBytes(b)
		if len(ab) != len(bb) {
			return false
		}
		for i := range ab {
			if ab[i] != bb[i] {
				return false
			}
		}
		return true
	case Mat:
		ma, mb := a.Body.(Ref[Matrix]).Get(), b.Body.(Ref[Matrix]).Get()
		if !ma.SameShape(mb) {
			return false
		}
		for i := range ma.Data {
			if !Equal(ma.Data[i], mb.Data[i]) {
				return false
			}
		}
		return true
	case List:
		la, lb := a.Body.(Ref[List]).Get(), b.Body.(Ref[List]).Get()
		return ListCompare(la, lb, Cmp) == 0
	case Assoc:
		aa, ab := a.Body.(Ref[Association]).Get(), b.Body.(Ref[Association]).Get()
		if aa.Dim != ab.Dim || aa.Len() != ab.Len() {
			return false
		}
		for _, e := range aa.entries {
			v, ok := ab.Get(e.key)
			if !ok || !Equal(v, e.val) {
				return false
			}
		}
		return true
	case Obj:
		oa, ob := a.Body.(Ref[Object]).Get(), b.Body.(Ref[Object]).Get()
		if oa.Schema != ob.Schema || len(oa.Elements) != len(ob.Elements) {
			return false
		}
		for i := range oa.Elements {
			if !Equal(oa.Elements[i], ob.Elements[i]) {
				return false
			}
		}
		return true
	case Error:
		return a.ErrorCode() == b.ErrorCode()
	case Hash:
		return a.Body.(Ref[HashState]).Get().Equal(b.Body.(Ref[HashState]).Get())
	default:
		return a.Body == b.Body
	}
}

// Cmp implements calc's `<=>` over the ordered arms: Int/Num by value, Str
// lexicographically by byte, and List elementwise with the shorter-prefix
// rule. Returns -1/0/1; callers that need the unorderable-pair behavior
// (e.g. Com vs Com, which calc reports componentwise) should call CmpCom
// instead.
func Cmp(a, b Value) int {
	if isNumeric(a) && isNumeric(b) && a.Tag != Com && b.Tag != Com {
		qa, _ := a.AsQ()
		qb, _ := b.AsQ()
		return qa.Cmp(qb)
	}
	switch {
	case a.Tag == Str && b.Tag == Str:
		ab, bb := strBytes(a), strBytes(b)
		for i := 0; i < len(ab) && i < len(bb); i++ {
			if ab[i] != bb[i] {
				if ab[i] < bb[i] {
					return -1
				}
				return 1
			}
		}
		switch {
		case len(ab) == len(bb):
			return 0
		case len(ab) < len(bb):
			return -1
		default:
			return 1
		}
	case a.Tag == List && b.Tag == List:
		la, lb := a.Body.(Ref[List]).Get(), b.Body.(Ref[List]).Get()
		return ListCompare(la, lb, Cmp)
	case a.Tag == Octet:
		ao, _ := ReadOctet(a)
		bo, _ := ReadOctet(b)
		switch {
		case ao == bo:
			return 0
		case ao < bo:
			return -1
		default:
			return 1
		}
	}
	return 0
}

// ReadOctet dereferences an Octet-tagged Value to its byte, for Cmp.
func ReadOctet(v Value) (byte, error) {
	o := v.Body.(*OctetRef)
	return o.Read()
}

// CmpCom implements `<=>` for a pair that may be Com: calc returns a
// componentwise indicator (itself a Com) rather than a single ordering
// when either operand carries a nonzero imaginary part.
func CmpCom(a, b Value) Value {
	ca, _ := a.AsC()
	cb, _ := b.AsC()
	re, im := ca.Cmp(cb)
	return NewCom(kernel.NewC(kernel.QFromZ(kernel.NewZ(int64(re))), kernel.QFromZ(kernel.NewZ(int64(im)))))
}

// Accepts implements calc's structural-match predicate used by switch/case
// and association probing: structural equality, or the object's bound
// `test` overload (OpTest) if present.
func Accepts(pattern, candidate Value) bool {
	if pattern.Tag == Obj {
		if v, handled, err := objectDispatch(pattern, OpTest, []Value{candidate}); handled && err == nil {
			return !v.IsNull() && Truthy(v)
		}
	}
	return Equal(pattern, candidate)
}

// Truthy implements calc's boolean coercion: zero/empty/null is false,
// everything else is true.
func Truthy(v Value) bool {
	switch v.Tag {
	case Null:
		return false
	case Int:
		return v.Body.(int64) != 0
	case Num:
		return !v.Body.(kernel.Q).IsZero()
	case Com:
		return !v.Body.(kernel.C).Real.IsZero() || !v.Body.(kernel.C).Imag.IsZero()
	case Str:
		return len(strBytes(v)) != 0
	case List:
		return v.Body.(Ref[List]).Get().Len() != 0
	case Assoc:
		return v.Body.(Ref[Association]).Get().Len() != 0
	case Error:
		return true
	default:
		return true
	}
}
