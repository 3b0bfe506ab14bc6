package vm

import (
	"github.com/pkg/errors"

	"github.com/lcn2/calc-sub001/internal/bytecode"
	"github.com/lcn2/calc-sub001/internal/kernel"
	"github.com/lcn2/calc-sub001/internal/value"
)

// execOne handles every ONE-class opcode: a single trailing immediate.
func (vm *VM) execOne(f *frame, op bytecode.OpCode, imm bytecode.Word) error {
	switch op {
	case bytecode.NUMBER:
		return vm.pushNumberConstant(f, int(imm))
	case bytecode.IMAGINARY:
		return vm.pushImaginaryConstant(f, int(imm))
	case bytecode.STRING:
		return vm.pushStringConstant(f, int(imm))
	case bytecode.OBJCREATE:
		return vm.execObjCreate(int(imm))
	case bytecode.MATCREATE:
		return vm.execMatCreate(int(imm))
	case bytecode.QUO:
		return vm.execQuoMod(kernel.RoundMode(imm), true)
	case bytecode.MOD:
		return vm.execQuoMod(kernel.RoundMode(imm), false)
	case bytecode.ISOBJTYPE:
		return vm.execIsObjType(int(imm))
	case bytecode.ISTYPE:
		return vm.execIsType(value.Tag(imm))
	case bytecode.ASSIGNBACK:
		return vm.execAssignBack(value.BinOp(imm))
	case bytecode.PRINTSTR:
		return vm.execPrintStr(f, int(imm))
	case bytecode.SETCONFIG:
		return vm.execSetConfig(f, int(imm))
	case bytecode.GETCONFIG:
		return vm.execGetConfig(f, int(imm))
	case bytecode.SHOW:
		return vm.execShow(f, int(imm))
	default:
		return errors.Errorf("vm: %s is not a one-operand opcode", op)
	}
}

func (vm *VM) pushNumberConstant(f *frame, idx int) error {
	if idx < 0 || idx >= len(f.fn.Constants) {
		return errors.Errorf("vm: constant index %d out of range in %s", idx, f.fn.Name)
	}
	q, err := kernel.QFromString(f.fn.Constants[idx].Num)
	if err != nil {
		return err
	}
	if q.IsInt() {
		if n, ok := q.Int64(); ok {
			return vm.stack.push(value.NewInt(n))
		}
	}
	return vm.stack.push(value.NewNum(q))
}

func (vm *VM) pushImaginaryConstant(f *frame, idx int) error {
	if idx < 0 || idx >= len(f.fn.Constants) {
		return errors.Errorf("vm: constant index %d out of range in %s", idx, f.fn.Name)
	}
	c := f.fn.Constants[idx]
	re, err := kernel.QFromString(emptyToZero(c.Num))
	if err != nil {
		return err
	}
	im, err := kernel.QFromString(emptyToZero(c.Imag))
	if err != nil {
		return err
	}
	return vm.stack.push(value.NewCom(kernel.NewC(re, im)))
}

func emptyToZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

func (vm *VM) pushStringConstant(f *frame, idx int) error {
	if idx < 0 || idx >= len(f.fn.Constants) {
		return errors.Errorf("vm: constant index %d out of range in %s", idx, f.fn.Name)
	}
	return vm.stack.push(value.NewStr(f.fn.Constants[idx].Str))
}

func (vm *VM) execObjCreate(schemaIdx int) error {
	if schemaIdx < 0 || schemaIdx >= len(vm.schemas) {
		return errors.Errorf("vm: schema index %d out of range", schemaIdx)
	}
	obj := value.NewObject(vm.schemas[schemaIdx])
	return vm.stack.push(value.Value{Tag: value.Obj, Body: value.NewRef(*obj)})
}

// execMatCreate pops 2*dims integers (min,max per axis, outermost axis
// first) and pushes a freshly allocated, Null-filled matrix (§4.2.4).
func (vm *VM) execMatCreate(dims int) error {
	min := make([]int64, dims)
	max := make([]int64, dims)
	for i := dims - 1; i >= 0; i-- {
		hi, err := vm.popInt()
		if err != nil {
			return err
		}
		lo, err := vm.popInt()
		if err != nil {
			return err
		}
		min[i], max[i] = lo, hi
	}
	m, err := value.NewMatrix(min, max)
	if err != nil {
		return vm.stack.push(value.NewError(vmErrCode("E_MATCREATE")))
	}
	return vm.stack.push(value.Value{Tag: value.Mat, Body: value.NewRef(*m)})
}

func (vm *VM) popInt() (int64, error) {
	v, err := vm.stack.pop()
	if err != nil {
		return 0, err
	}
	n, ok := value.AsInt(v)
	if !ok {
		return 0, errors.New("vm: expected an integer operand")
	}
	return n, nil
}

// execQuoMod implements QUO/MOD: pop b, pop a, compute a.QuoMod(b, rnd),
// pushing the quotient (quo=true) or remainder (quo=false).
func (vm *VM) execQuoMod(rnd kernel.RoundMode, quo bool) error {
	b, err := vm.stack.pop()
	if err != nil {
		return err
	}
	a, err := vm.stack.pop()
	if err != nil {
		return err
	}
	qa, ok1 := a.AsQ()
	qb, ok2 := b.AsQ()
	if !ok1 || !ok2 {
		return vm.stack.push(value.NewError(vmErrCode("E_QUO")))
	}
	qq, rr, err := qa.QuoMod(qb, rnd)
	if err != nil {
		return vm.stack.push(errValueFromKernel(err))
	}
	if quo {
		return vm.stack.push(narrowQ(qq))
	}
	return vm.stack.push(narrowQ(rr))
}

func (vm *VM) execIsObjType(schemaIdx int) error {
	v, err := vm.stack.pop()
	if err != nil {
		return err
	}
	match := false
	if v.Tag == value.Obj && schemaIdx >= 0 && schemaIdx < len(vm.schemas) {
		obj := v.Body.(value.Ref[value.Object]).Get()
		match = obj.Schema == vm.schemas[schemaIdx]
	}
	return vm.stack.push(value.NewBool(match))
}

func (vm *VM) execIsType(tag value.Tag) error {
	v, err := vm.stack.pop()
	if err != nil {
		return err
	}
	return vm.stack.push(value.NewBool(v.Tag == tag))
}

func (vm *VM) execPrintStr(f *frame, idx int) error {
	s, err := vm.constantString(f, idx)
	if err != nil {
		return err
	}
	vm.Stdout.Print(s)
	return nil
}

func (vm *VM) execSetConfig(f *frame, nameIdx int) error {
	name, err := vm.constantString(f, nameIdx)
	if err != nil {
		return err
	}
	v, err := vm.stack.pop()
	if err != nil {
		return err
	}
	if err := value.SetConfig(&vm.config, name, v); err != nil {
		return vm.stack.push(value.NewError(vmErrCode("E_CONFIG")))
	}
	return vm.stack.push(value.NewNull())
}

func (vm *VM) execGetConfig(f *frame, nameIdx int) error {
	name, err := vm.constantString(f, nameIdx)
	if err != nil {
		return err
	}
	v, err := value.GetConfig(&vm.config, name)
	if err != nil {
		return vm.stack.push(value.NewError(vmErrCode("E_CONFIG")))
	}
	return vm.stack.push(v)
}

func (vm *VM) execShow(f *frame, nameIdx int) error {
	name, err := vm.constantString(f, nameIdx)
	if err != nil {
		return err
	}
	v, err := value.GetConfig(&vm.config, name)
	if err != nil {
		vm.Stdout.Print(name + ": <unknown>\n")
		return nil
	}
	vm.Stdout.Print(name + " = " + v.String() + "\n")
	return nil
}
