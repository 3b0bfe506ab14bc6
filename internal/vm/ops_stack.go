package vm

import "github.com/lcn2/calc-sub001/internal/value"

func (vm *VM) execDUPLICATE() error {
	top, err := vm.stack.peek(0)
	if err != nil {
		return err
	}
	return vm.stack.push(top.Copy())
}

// execDUPVALUE duplicates the top, dereferencing it first if it is a
// pointer (the "value" variant of DUPLICATE, used where an lvalue's
// current contents rather than its address are wanted twice).
func (vm *VM) execDUPVALUE() error {
	top, err := vm.stack.peek(0)
	if err != nil {
		return err
	}
	v := *top
	switch v.Tag {
	case value.Addr, value.VPtr, value.SPtr, value.NPtr, value.OPtr, value.Octet:
		if deref, derr := value.Deref(v); derr == nil {
			v = deref
		}
	}
	return vm.stack.push(v.Copy())
}

func (vm *VM) execPOP() error {
	_, err := vm.stack.pop()
	return err
}

func (vm *VM) execSWAP() error {
	a, err := vm.stack.peek(0)
	if err != nil {
		return err
	}
	b, err := vm.stack.peek(1)
	if err != nil {
		return err
	}
	*a, *b = *b, *a
	return nil
}

// execGETVALUE dereferences the top if it is a pointer, leaving a plain
// value in its place (used after an *ADDR opcode when only the value,
// not the address, is actually needed).
func (vm *VM) execGETVALUE() error {
	top, err := vm.stack.pop()
	if err != nil {
		return err
	}
	switch top.Tag {
	case value.Addr, value.VPtr, value.SPtr, value.NPtr, value.OPtr, value.Octet:
		v, derr := value.Deref(top)
		if derr != nil {
			return vm.stack.push(value.NewError(vmErrCode("E_DEREF")))
		}
		return vm.stack.push(v)
	default:
		return vm.stack.push(top)
	}
}

// execASSIGN pops src then dst (an Addr), stores src into *dst, and
// pushes the assigned value back (calc's `=` is itself an expression).
func (vm *VM) execASSIGN() error {
	src, err := vm.stack.pop()
	if err != nil {
		return err
	}
	dst, err := vm.stack.pop()
	if err != nil {
		return err
	}
	slot, ok := dst.Body.(*value.Value)
	if dst.Tag != value.Addr || !ok {
		return vm.stack.push(value.NewError(vmErrCode("E_ASSIGN1")))
	}
	result, err := value.AssignPop(slot, src)
	if err != nil {
		return vm.stack.push(errValueFromAssign(err))
	}
	return vm.stack.push(result)
}

// execASSIGNPOP implements the statement-context `=`: assign, but discard
// the resulting value rather than leaving it for an enclosing expression.
func (vm *VM) execASSIGNPOP() error {
	if err := vm.execASSIGN(); err != nil {
		return err
	}
	_, err := vm.stack.pop()
	return err
}

// execAssignBack implements ASSIGNBACK(op): pop src, pop dst (an Addr),
// combine *dst and src through the selected arithmetic op, assign back,
// and push the result (calc's `+=` family, §4.2.2).
func (vm *VM) execAssignBack(op value.BinOp) error {
	src, err := vm.stack.pop()
	if err != nil {
		return err
	}
	dst, err := vm.stack.pop()
	if err != nil {
		return err
	}
	slot, ok := dst.Body.(*value.Value)
	if dst.Tag != value.Addr || !ok {
		return vm.stack.push(value.NewError(vmErrCode("E_ASSIGN1")))
	}
	combine := binOpFunc(op)
	result, err := value.AssignBack(slot, src, combine)
	if err != nil {
		return vm.stack.push(errValueFromAssign(err))
	}
	return vm.stack.push(result)
}

func binOpFunc(op value.BinOp) func(a, b value.Value) value.Value {
	switch op {
	case value.OpBinSub:
		return value.Sub
	case value.OpBinMul:
		return value.Mul
	case value.OpBinDiv:
		return value.Div
	default:
		return value.Add
	}
}

func (vm *VM) execPREINC() error { return vm.incDec(true, value.Increment) }
func (vm *VM) execPREDEC() error { return vm.incDec(true, value.Decrement) }
func (vm *VM) execPOSTINC() error { return vm.incDec(false, value.Increment) }
func (vm *VM) execPOSTDEC() error { return vm.incDec(false, value.Decrement) }

// incDec pops an Addr, applies step to its referent, and pushes either the
// new value (pre-) or the value as it was before stepping (post-).
func (vm *VM) incDec(pre bool, step func(dst *value.Value) error) error {
	top, err := vm.stack.pop()
	if err != nil {
		return err
	}
	slot, ok := top.Body.(*value.Value)
	if top.Tag != value.Addr || !ok {
		return vm.stack.push(value.NewError(vmErrCode("E_ASSIGN1")))
	}
	before := slot.Copy()
	if err := step(slot); err != nil {
		return vm.stack.push(errValueFromAssign(err))
	}
	if pre {
		return vm.stack.push(slot.Copy())
	}
	return vm.stack.push(before)
}
