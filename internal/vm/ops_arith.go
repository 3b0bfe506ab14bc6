package vm

import (
	"github.com/lcn2/calc-sub001/internal/kernel"
	"github.com/lcn2/calc-sub001/internal/value"
)

// unaryKernel applies fn to a's rational/complex form and pushes the
// result, falling back to the bound Object overload and finally to a
// typed Error.
func (vm *VM) unaryKernel(errSym string, op value.Operator, fn func(q kernel.Q) (value.Value, bool)) error {
	a, err := vm.stack.pop()
	if err != nil {
		return err
	}
	if q, ok := a.AsQ(); ok && a.Tag != value.Com {
		if v, ok := fn(q); ok {
			return vm.stack.push(v)
		}
	}
	if a.Tag == value.Obj {
		if v, handled, derr := value.DispatchOperator(a, op, nil); handled {
			if derr != nil {
				return vm.stack.push(value.NewError(vmErrCode(errSym)))
			}
			return vm.stack.push(v)
		}
	}
	return vm.stack.push(value.NewError(vmErrCode(errSym)))
}

func (vm *VM) execINT() error {
	return vm.unaryKernel("E_INT", value.OpInt, func(q kernel.Q) (value.Value, bool) { return narrowQ(q.Int()), true })
}
func (vm *VM) execFRAC() error {
	return vm.unaryKernel("E_FRAC", value.OpFrac, func(q kernel.Q) (value.Value, bool) { return narrowQ(q.Frac()), true })
}
func (vm *VM) execNUMERATOR() error {
	return vm.unaryKernel("E_NUMERATOR", value.OpInt, func(q kernel.Q) (value.Value, bool) { return narrowQ(kernel.QFromZ(q.Num)), true })
}
func (vm *VM) execDENOMINATOR() error {
	return vm.unaryKernel("E_DENOMINATOR", value.OpInt, func(q kernel.Q) (value.Value, bool) { return narrowQ(kernel.QFromZ(q.Den)), true })
}
func (vm *VM) execSQUARE() error {
	return vm.unaryKernel("E_SQUARE", value.OpSquare, func(q kernel.Q) (value.Value, bool) { return narrowQ(q.Mul(q)), true })
}
func (vm *VM) execABS() error {
	return vm.unaryKernel("E_ABS", value.OpAbs, func(q kernel.Q) (value.Value, bool) { return narrowQ(q.Abs()), true })
}
func (vm *VM) execSGN() error {
	return vm.unaryKernel("E_SGN", value.OpSgn, func(q kernel.Q) (value.Value, bool) { return value.NewInt(int64(q.Sign())), true })
}
func (vm *VM) execINVERT() error {
	return vm.unaryKernel("E_INVERT", value.OpInv, func(q kernel.Q) (value.Value, bool) {
		inv, err := q.Inv()
		if err != nil {
			return value.Value{}, false
		}
		return narrowQ(inv), true
	})
}

// execNEGATE, execPLUS, execNOT, execCOMP, execCONTENT, execBACKSLASH need
// their own Com/Str/Octet arms beyond the plain-Q fast path, so they are
// written out rather than routed through unaryKernel.

func (vm *VM) execNEGATE() error {
	a, err := vm.stack.pop()
	if err != nil {
		return err
	}
	return vm.stack.push(value.Neg(a))
}

func (vm *VM) execPLUS() error {
	// Unary `+`: identity on numerics, object dispatch otherwise.
	a, err := vm.stack.pop()
	if err != nil {
		return err
	}
	if a.Tag == value.Int || a.Tag == value.Num || a.Tag == value.Com {
		return vm.stack.push(a)
	}
	if a.Tag == value.Obj {
		if v, handled, derr := value.DispatchOperator(a, value.OpPlus, nil); handled {
			if derr != nil {
				return vm.stack.push(value.NewError(vmErrCode("E_PLUS")))
			}
			return vm.stack.push(v)
		}
	}
	return vm.stack.push(value.NewError(vmErrCode("E_PLUS")))
}

func (vm *VM) execNORM() error {
	a, err := vm.stack.pop()
	if err != nil {
		return err
	}
	if c, ok := a.AsC(); ok {
		return vm.stack.push(narrowQ(c.Norm()))
	}
	return vm.stack.push(value.NewError(vmErrCode("E_NORM")))
}

func (vm *VM) execRE() error {
	a, err := vm.stack.pop()
	if err != nil {
		return err
	}
	if c, ok := a.AsC(); ok {
		return vm.stack.push(narrowQ(c.Real))
	}
	return vm.stack.push(value.NewError(vmErrCode("E_RE")))
}

func (vm *VM) execIM() error {
	a, err := vm.stack.pop()
	if err != nil {
		return err
	}
	if c, ok := a.AsC(); ok {
		return vm.stack.push(narrowQ(c.Imag))
	}
	return vm.stack.push(value.NewError(vmErrCode("E_IM")))
}

func (vm *VM) execCONJUGATE() error {
	a, err := vm.stack.pop()
	if err != nil {
		return err
	}
	if c, ok := a.AsC(); ok {
		return vm.stack.push(value.NewCom(c.Conj()))
	}
	return vm.stack.push(value.NewError(vmErrCode("E_CONJUGATE")))
}

func (vm *VM) execHIGHBIT() error {
	a, err := vm.stack.pop()
	if err != nil {
		return err
	}
	if n, ok := value.AsInt(a); ok {
		return vm.stack.push(value.NewInt(int64(kernel.NewZ(n).HighBit())))
	}
	return vm.stack.push(value.NewError(vmErrCode("E_HIGHBIT")))
}

func (vm *VM) execLOWBIT() error {
	a, err := vm.stack.pop()
	if err != nil {
		return err
	}
	if n, ok := value.AsInt(a); ok {
		return vm.stack.push(value.NewInt(int64(kernel.NewZ(n).LowBit())))
	}
	return vm.stack.push(value.NewError(vmErrCode("E_LOWBIT")))
}

func (vm *VM) execNOT() error {
	a, err := vm.stack.pop()
	if err != nil {
		return err
	}
	return vm.stack.push(value.NewBool(!value.Truthy(a)))
}

func (vm *VM) execCOMP() error {
	a, err := vm.stack.pop()
	if err != nil {
		return err
	}
	switch a.Tag {
	case value.Int, value.Num:
		q, _ := a.AsQ()
		// calc's one's complement on a rational is only defined for
		// integers: ~x = -(x+1).
		comp := q.Neg().Sub(kernel.QOne())
		return vm.stack.push(narrowQ(comp))
	case value.Str:
		return vm.stack.push(value.Value{Tag: value.Str, Body: value.NewRef(value.StrComplement(rawStrBytes(a)))})
	case value.Obj:
		if v, handled, derr := value.DispatchOperator(a, value.OpComp, nil); handled && derr == nil {
			return vm.stack.push(v)
		}
	}
	return vm.stack.push(value.NewError(vmErrCode("E_COMP")))
}

func (vm *VM) execCONTENT() error {
	a, err := vm.stack.pop()
	if err != nil {
		return err
	}
	switch a.Tag {
	case value.Int, value.Num:
		q, _ := a.AsQ()
		return vm.stack.push(value.NewInt(popcountQ(q)))
	case value.Str:
		return vm.stack.push(value.NewInt(value.PopCount(rawStrBytes(a))))
	case value.Obj:
		if v, handled, derr := value.DispatchOperator(a, value.OpContent, nil); handled && derr == nil {
			return vm.stack.push(v)
		}
	}
	return vm.stack.push(value.NewError(vmErrCode("E_CONTENT")))
}

func popcountQ(q kernel.Q) int64 {
	if !q.IsInt() {
		return 0
	}
	n := q.Num
	if n.Sign() < 0 {
		n = n.Neg()
	}
	var count int64
	for i := 0; i < n.BitLen(); i++ {
		count += int64(n.Bit(i))
	}
	return count
}

func (vm *VM) execBACKSLASH() error {
	a, err := vm.stack.pop()
	if err != nil {
		return err
	}
	if a.Tag == value.Obj {
		if v, handled, derr := value.DispatchOperator(a, value.OpBackslash, nil); handled && derr == nil {
			return vm.stack.push(v)
		}
	}
	return vm.stack.push(value.NewError(vmErrCode("E_BACKSLASH")))
}

func rawStrBytes(v value.Value) []byte { return []byte(v.String()) }

// binaryKernel pops b then a, applies op through the shared dispatch
// layer, and pushes the result (every arithmetic binary opcode already
// implements its own non-numeric arms there).
func (vm *VM) binaryKernel(op func(a, b value.Value) value.Value) error {
	b, err := vm.stack.pop()
	if err != nil {
		return err
	}
	a, err := vm.stack.pop()
	if err != nil {
		return err
	}
	return vm.stack.push(op(a, b))
}

func (vm *VM) execADD() error { return vm.binaryKernel(value.Add) }
func (vm *VM) execSUB() error { return vm.binaryKernel(value.Sub) }
func (vm *VM) execMUL() error { return vm.binaryKernel(value.Mul) }
func (vm *VM) execDIV() error { return vm.binaryKernel(value.Div) }

func (vm *VM) execPOWER() error {
	b, err := vm.stack.pop()
	if err != nil {
		return err
	}
	a, err := vm.stack.pop()
	if err != nil {
		return err
	}
	e, ok := value.AsInt(b)
	if !ok {
		return vm.stack.push(value.NewError(vmErrCode("E_POWER")))
	}
	if c, ok := a.AsC(); ok {
		if a.Tag == value.Com {
			r, err := c.Pow(kernel.NewZ(e))
			if err != nil {
				return vm.stack.push(errValueFromKernel(err))
			}
			return vm.stack.push(value.NewCom(r))
		}
		q, _ := a.AsQ()
		r, err := q.Pow(kernel.NewZ(e))
		if err != nil {
			return vm.stack.push(errValueFromKernel(err))
		}
		return vm.stack.push(narrowQ(r))
	}
	if a.Tag == value.Obj {
		if v, handled, derr := value.DispatchOperator(a, value.OpPow, []value.Value{b}); handled {
			if derr != nil {
				return vm.stack.push(value.NewError(vmErrCode("E_POWER")))
			}
			return vm.stack.push(v)
		}
	}
	return vm.stack.push(value.NewError(vmErrCode("E_POWER")))
}

func (vm *VM) bitwiseBinary(errSym string, fn func(x, y kernel.Z) kernel.Z) error {
	b, err := vm.stack.pop()
	if err != nil {
		return err
	}
	a, err := vm.stack.pop()
	if err != nil {
		return err
	}
	na, ok1 := value.AsInt(a)
	nb, ok2 := value.AsInt(b)
	if !ok1 || !ok2 {
		return vm.stack.push(value.NewError(vmErrCode(errSym)))
	}
	r := fn(kernel.NewZ(na), kernel.NewZ(nb))
	n, _ := r.Int64()
	return vm.stack.push(value.NewInt(n))
}

func (vm *VM) execAND() error {
	return vm.bitwiseBinary("E_AND", func(x, y kernel.Z) kernel.Z { return x.And(y) })
}
func (vm *VM) execOR() error {
	return vm.bitwiseBinary("E_OR", func(x, y kernel.Z) kernel.Z { return x.Or(y) })
}
func (vm *VM) execXOR() error {
	return vm.bitwiseBinary("E_XOR", func(x, y kernel.Z) kernel.Z { return x.Xor(y) })
}
func (vm *VM) execLEFTSHIFT() error {
	return vm.bitwiseBinary("E_LEFTSHIFT", func(x, y kernel.Z) kernel.Z { return x.Lsh(uint(mustInt64(y))) })
}
func (vm *VM) execRIGHTSHIFT() error {
	return vm.bitwiseBinary("E_RIGHTSHIFT", func(x, y kernel.Z) kernel.Z { return x.Rsh(uint(mustInt64(y))) })
}

func mustInt64(z kernel.Z) int64 {
	n, _ := z.Int64()
	if n < 0 {
		return 0
	}
	return n
}

func (vm *VM) execSCALE() error {
	b, err := vm.stack.pop()
	if err != nil {
		return err
	}
	a, err := vm.stack.pop()
	if err != nil {
		return err
	}
	n, ok1 := value.AsInt(b)
	q, ok2 := a.AsQ()
	if !ok1 || !ok2 {
		return vm.stack.push(value.NewError(vmErrCode("E_SCALE")))
	}
	return vm.stack.push(narrowQ(q.Scale(int(n))))
}

func (vm *VM) execBIT() error {
	b, err := vm.stack.pop()
	if err != nil {
		return err
	}
	a, err := vm.stack.pop()
	if err != nil {
		return err
	}
	idx, ok1 := value.AsInt(b)
	n, ok2 := value.AsInt(a)
	if !ok1 || !ok2 || idx < 0 {
		return vm.stack.push(value.NewError(vmErrCode("E_BIT")))
	}
	return vm.stack.push(value.NewBool(kernel.NewZ(n).Bit(int(idx)) != 0))
}

func (vm *VM) execHASHOP() error {
	b, err := vm.stack.pop()
	if err != nil {
		return err
	}
	a, err := vm.stack.pop()
	if err != nil {
		return err
	}
	if qa, ok1 := a.AsQ(); ok1 {
		if qb, ok2 := b.AsQ(); ok2 {
			return vm.stack.push(narrowQ(qa.Sub(qb).Abs()))
		}
	}
	if a.Tag == value.Obj || b.Tag == value.Obj {
		if v, handled, derr := value.DispatchOperator(a, value.OpHashop, []value.Value{b}); handled {
			if derr != nil {
				return vm.stack.push(value.NewError(vmErrCode("E_HASHOP")))
			}
			return vm.stack.push(v)
		}
	}
	return vm.stack.push(value.NewError(vmErrCode("E_HASHOP")))
}

func (vm *VM) execSETMINUS() error {
	b, err := vm.stack.pop()
	if err != nil {
		return err
	}
	a, err := vm.stack.pop()
	if err != nil {
		return err
	}
	switch {
	case (a.Tag == value.Int || a.Tag == value.Num) && (b.Tag == value.Int || b.Tag == value.Num):
		qa, _ := a.AsQ()
		qb, _ := b.AsQ()
		if !qa.IsInt() || !qb.IsInt() {
			break
		}
		za := kernel.NewZ(mustQInt(qa))
		zb := kernel.NewZ(mustQInt(qb))
		return vm.stack.push(value.NewInt(mustInt64(za.And(zb.Not()))))
	case a.Tag == value.Str && b.Tag == value.Str:
		return vm.stack.push(value.Value{Tag: value.Str, Body: value.NewRef(value.StrDiff(rawStrBytes(a), rawStrBytes(b)))})
	case a.Tag == value.Obj || b.Tag == value.Obj:
		if v, handled, derr := value.DispatchOperator(a, value.OpSetminus, []value.Value{b}); handled {
			if derr != nil {
				return vm.stack.push(value.NewError(vmErrCode("E_SETMINUS")))
			}
			return vm.stack.push(v)
		}
	}
	return vm.stack.push(value.NewError(vmErrCode("E_SETMINUS")))
}

func mustQInt(q kernel.Q) int64 {
	n, _ := q.Int64()
	return n
}

func (vm *VM) relational(cmp func(a, b value.Value) (bool, bool)) error {
	b, err := vm.stack.pop()
	if err != nil {
		return err
	}
	a, err := vm.stack.pop()
	if err != nil {
		return err
	}
	result, ok := cmp(a, b)
	if !ok {
		return vm.stack.push(value.NewError(vmErrCode("E_REL")))
	}
	return vm.stack.push(value.NewBool(result))
}

func (vm *VM) execEQ() error {
	b, err := vm.stack.pop()
	if err != nil {
		return err
	}
	a, err := vm.stack.pop()
	if err != nil {
		return err
	}
	return vm.stack.push(value.NewBool(value.Accepts(a, b)))
}

func (vm *VM) execNE() error {
	b, err := vm.stack.pop()
	if err != nil {
		return err
	}
	a, err := vm.stack.pop()
	if err != nil {
		return err
	}
	return vm.stack.push(value.NewBool(!value.Equal(a, b)))
}

func (vm *VM) execLT() error {
	return vm.relational(func(a, b value.Value) (bool, bool) { return value.Cmp(a, b) < 0, true })
}
func (vm *VM) execLE() error {
	return vm.relational(func(a, b value.Value) (bool, bool) { return value.Cmp(a, b) <= 0, true })
}
func (vm *VM) execGT() error {
	return vm.relational(func(a, b value.Value) (bool, bool) { return value.Cmp(a, b) > 0, true })
}
func (vm *VM) execGE() error {
	return vm.relational(func(a, b value.Value) (bool, bool) { return value.Cmp(a, b) >= 0, true })
}

func (vm *VM) execCMP() error {
	b, err := vm.stack.pop()
	if err != nil {
		return err
	}
	a, err := vm.stack.pop()
	if err != nil {
		return err
	}
	if a.Tag == value.Com || b.Tag == value.Com {
		return vm.stack.push(value.CmpCom(a, b))
	}
	return vm.stack.push(value.NewInt(int64(value.Cmp(a, b))))
}
