package vm

import (
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/lcn2/calc-sub001/internal/bytecode"
	"github.com/lcn2/calc-sub001/internal/value"
)

// execJump handles every JMP-class opcode, returning whether the
// already-read target should be taken.
func (vm *VM) execJump(f *frame, op bytecode.OpCode) (bool, error) {
	switch op {
	case bytecode.JUMP:
		return true, nil
	case bytecode.JUMPZ:
		v, err := vm.stack.pop()
		if err != nil {
			return false, err
		}
		return !value.Truthy(v), nil
	case bytecode.JUMPNZ:
		v, err := vm.stack.pop()
		if err != nil {
			return false, err
		}
		return value.Truthy(v), nil
	case bytecode.JUMPNN:
		v, err := vm.stack.pop()
		if err != nil {
			return false, err
		}
		return !v.IsNull(), nil
	case bytecode.CONDORJUMP:
		v, err := vm.stack.peek(0)
		if err != nil {
			return false, err
		}
		if value.Truthy(*v) {
			return true, nil
		}
		_, err = vm.stack.pop()
		return false, err
	case bytecode.CONDANDJUMP:
		v, err := vm.stack.peek(0)
		if err != nil {
			return false, err
		}
		if !value.Truthy(*v) {
			return true, nil
		}
		_, err = vm.stack.pop()
		return false, err
	case bytecode.CASEJUMP:
		v, err := vm.stack.pop()
		if err != nil {
			return false, err
		}
		return value.Truthy(v), nil
	default:
		return false, errors.Errorf("vm: %s is not a jump opcode", op)
	}
}

// execTwo handles the TWO-class opcodes: CALL, USERCALL, DEBUG.
func (vm *VM) execTwo(f *frame, op bytecode.OpCode, a, b bytecode.Word) error {
	switch op {
	case bytecode.CALL:
		return vm.execCall(f, int(a), int(b))
	case bytecode.USERCALL:
		return vm.execUserCall(f, int(a), int(b))
	case bytecode.DEBUG:
		// a, b carry a line/column marker; the abort check already runs
		// once per opcode at the top of dispatch, satisfying §5's
		// "statement boundary" requirement.
		if glog.V(2) {
			glog.Infof("debug marker %d:%d in %s: %s", a, b, f.fn.Name, vm.traceFrame(f))
		}
		return nil
	default:
		return errors.Errorf("vm: %s is not a two-operand opcode", op)
	}
}

func (vm *VM) execCall(f *frame, builtinIdx, argCount int) error {
	if builtinIdx < 0 || builtinIdx >= len(vm.program.Builtins) {
		return errors.Errorf("vm: builtin index %d out of range", builtinIdx)
	}
	name := vm.program.Builtins[builtinIdx]
	fn, ok := vm.builtins[name]
	if !ok {
		return errors.Errorf("vm: unregistered builtin %q", name)
	}
	if vm.stack.top < argCount {
		return errors.New("vm: not enough arguments on stack for CALL")
	}
	args := make([]value.Value, argCount)
	copy(args, vm.stack.data[vm.stack.top-argCount:vm.stack.top])
	vm.stack.top -= argCount
	result, err := fn(vm, args)
	if err != nil {
		return err
	}
	return vm.stack.push(result)
}

func (vm *VM) execUserCall(f *frame, funcIdx, argCount int) error {
	callee := vm.lookupFunctionIndex(funcIdx)
	if callee == nil {
		return errors.Errorf("vm: function index %d out of range", funcIdx)
	}
	result, err := vm.callFunction(callee, argCount)
	if err != nil {
		return err
	}
	return vm.stack.push(result)
}
