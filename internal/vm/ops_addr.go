package vm

import (
	"github.com/pkg/errors"

	"github.com/lcn2/calc-sub001/internal/bytecode"
	"github.com/lcn2/calc-sub001/internal/value"
)

// execLocal handles the LOC-class addressing opcodes.
func (vm *VM) execLocal(f *frame, op bytecode.OpCode, idx int) error {
	if idx < 0 || idx >= len(f.locals) {
		return errors.Errorf("vm: local index %d out of range in %s", idx, f.fn.Name)
	}
	switch op {
	case bytecode.LOCALADDR:
		return vm.stack.push(value.NewAddr(&f.locals[idx]))
	case bytecode.LOCALVALUE:
		return vm.stack.push(f.locals[idx].Copy())
	default:
		return errors.Errorf("vm: %s is not a local-addressing opcode", op)
	}
}

// execParam handles the PAR-class addressing opcodes: idx selects among
// the frame's declared (padded) parameters, which live in the frame's
// window of the shared operand stack.
func (vm *VM) execParam(f *frame, op bytecode.OpCode, idx int) error {
	if idx < 0 || idx >= f.fn.ParamCount {
		return errors.Errorf("vm: parameter index %d out of range in %s", idx, f.fn.Name)
	}
	slot := &vm.stack.data[f.base+idx]
	switch op {
	case bytecode.PARAMADDR:
		return vm.stack.push(value.NewAddr(slot))
	case bytecode.PARAMVALUE:
		return vm.stack.push(slot.Copy())
	default:
		return errors.Errorf("vm: %s is not a parameter-addressing opcode", op)
	}
}

// execGlobal handles the GLB-class addressing opcodes. idx is resolved by
// the compiler to a name in the function's string constant table; a
// global reference is just that name's slot in vm.globals.
func (vm *VM) execGlobal(f *frame, op bytecode.OpCode, idx int) error {
	name, err := vm.constantString(f, idx)
	if err != nil {
		return err
	}
	slot := vm.Global(name)
	switch op {
	case bytecode.GLOBALADDR:
		return vm.stack.push(value.NewAddr(slot))
	case bytecode.GLOBALVALUE:
		return vm.stack.push(slot.Copy())
	default:
		return errors.Errorf("vm: %s is not a global-addressing opcode", op)
	}
}

// execArg handles ARGVALUE: the top of stack is a 1-based index into the
// frame's (post-padding) parameters, consumed and replaced by that
// parameter's value (§4.3.3).
func (vm *VM) execArg(f *frame, op bytecode.OpCode) error {
	top, err := vm.stack.pop()
	if err != nil {
		return err
	}
	n, ok := value.AsInt(top)
	if !ok || n < 1 || int(n) > f.fn.ParamCount {
		return vm.stack.push(value.NewError(vmErrCode("E_ARGVALUE")))
	}
	return vm.stack.push(vm.stack.data[f.base+int(n)-1].Copy())
}

func (vm *VM) constantString(f *frame, idx int) (string, error) {
	if idx < 0 || idx >= len(f.fn.Constants) {
		return "", errors.Errorf("vm: constant index %d out of range in %s", idx, f.fn.Name)
	}
	return f.fn.Constants[idx].Str, nil
}
