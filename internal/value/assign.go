package value

import (
	"fmt"

	"github.com/lcn2/calc-sub001/internal/errors"
)

// Assign implements calc's `=` into the Value addressed by dst, honoring
// the subtype protection flags checked in order per §4.2.2: NoAssignTo
// blocks any write to this slot; NoNewValue blocks a write that would
// change equality; NoNewType blocks a write that would change the tag;
// NoError blocks storing an Error. A successful assignment unions the
// destination's protection flags into the stored value (flags survive the
// write that installed them). The error returned is an *errors.CalcError
// carrying the matching E_ASSIGNn code from calc's own table.
func Assign(dst *Value, src Value) error {
	if dst.Has(NoAssignTo) {
		return errors.New(codeFor("E_ASSIGN5"))
	}
	if src.Has(NoAssignFrom) {
		return errors.New(codeFor("E_ASSIGN6"))
	}
	if dst.Has(NoNewValue) && !Equal(*dst, src) {
		return errors.New(codeFor("E_ASSIGN7"))
	}
	if dst.Has(NoNewType) && dst.Tag != src.Tag {
		return errors.New(codeFor("E_ASSIGN8"))
	}
	if dst.Has(NoError) && src.IsError() {
		return errors.New(codeFor("E_ASSIGN9"))
	}
	flags := dst.Subtype
	*dst = src.Copy()
	dst.Subtype |= flags
	return nil
}

// AssignPop stores src into dst and returns the value popped (calc's `=`
// expression value is the newly assigned value, so this is Assign plus a
// read-back for the VM's expression-statement push).
func AssignPop(dst *Value, src Value) (Value, error) {
	if err := Assign(dst, src); err != nil {
		return Value{}, err
	}
	return dst.Copy(), nil
}

// AssignBack implements a compound assignment's read-modify-write: combine
// reads *dst and src through op, then assigns the result back into *dst,
// returning the new value (calc's `+=` family, §4.2.2).
func AssignBack(dst *Value, src Value, op func(a, b Value) Value) (Value, error) {
	result := op(*dst, src)
	if result.IsError() {
		return result, nil
	}
	if err := Assign(dst, result); err != nil {
		return Value{}, err
	}
	return dst.Copy(), nil
}

// Increment implements calc's `++`: Octet wraps mod 256, Int/Num advance
// by the kernel successor, and VPtr pointers advance by one element
// (§4.2.3).
func Increment(dst *Value) error {
	return step(dst, 1, "E_INCV")
}

// Decrement implements calc's `--`.
func Decrement(dst *Value) error {
	return step(dst, -1, "E_DECV")
}

func step(dst *Value, delta int64, errSymbol string) error {
	if dst.Has(NoAssignTo) {
		return errors.New(codeFor("E_ASSIGN5"))
	}
	switch dst.Tag {
	case Octet:
		o := dst.Body.(*OctetRef)
		b, err := o.Read()
		if err != nil {
			return fmt.Errorf("value: %w", err)
		}
		return o.Write(byte((int(b) + int(delta)) & 0xff))
	case Int:
		return Assign(dst, NewInt(dst.Body.(int64)+delta))
	case Num:
		return Assign(dst, Add(*dst, NewInt(delta)))
	case Com:
		return Assign(dst, Add(*dst, NewInt(delta)))
	case VPtr:
		adjusted, err := PointerAdjust(*dst, delta)
		if err != nil {
			return fmt.Errorf("value: %w", err)
		}
		return Assign(dst, adjusted)
	default:
		return errors.New(codeFor(errSymbol))
	}
}
