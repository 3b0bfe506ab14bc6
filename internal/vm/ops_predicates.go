package vm

import (
	"github.com/lcn2/calc-sub001/internal/value"
)

// execPredicate pops a value and pushes the boolean result of test.
func (vm *VM) execPredicate(test func(v value.Value) bool) error {
	v, err := vm.stack.pop()
	if err != nil {
		return err
	}
	return vm.stack.push(value.NewBool(test(v)))
}

func tagIs(t value.Tag) func(value.Value) bool {
	return func(v value.Value) bool { return v.Tag == t }
}

func (vm *VM) execISINT() error  { return vm.execPredicate(tagIs(value.Int)) }
func (vm *VM) execISNUM() error  { return vm.execPredicate(func(v value.Value) bool { return v.Tag == value.Int || v.Tag == value.Num }) }
func (vm *VM) execISREAL() error {
	return vm.execPredicate(func(v value.Value) bool { return v.Tag == value.Int || v.Tag == value.Num })
}
func (vm *VM) execISMAT() error     { return vm.execPredicate(tagIs(value.Mat)) }
func (vm *VM) execISLIST() error    { return vm.execPredicate(tagIs(value.List)) }
func (vm *VM) execISOBJ() error     { return vm.execPredicate(tagIs(value.Obj)) }
func (vm *VM) execISSTR() error     { return vm.execPredicate(tagIs(value.Str)) }
func (vm *VM) execISFILE() error    { return vm.execPredicate(tagIs(value.File)) }
func (vm *VM) execISRAND() error    { return vm.execPredicate(tagIs(value.Rand)) }
func (vm *VM) execISRANDOM() error  { return vm.execPredicate(tagIs(value.Random)) }
func (vm *VM) execISCONFIG() error  { return vm.execPredicate(tagIs(value.Config)) }
func (vm *VM) execISHASH() error    { return vm.execPredicate(tagIs(value.Hash)) }
func (vm *VM) execISASSOC() error   { return vm.execPredicate(tagIs(value.Assoc)) }
func (vm *VM) execISBLK() error     { return vm.execPredicate(func(v value.Value) bool { return v.Tag == value.Block || v.Tag == value.NBlock }) }
func (vm *VM) execISOCTET() error   { return vm.execPredicate(tagIs(value.Octet)) }
func (vm *VM) execISPTR() error {
	return vm.execPredicate(func(v value.Value) bool {
		switch v.Tag {
		case value.Addr, value.VPtr, value.OPtr, value.SPtr, value.NPtr:
			return true
		}
		return false
	})
}
func (vm *VM) execISDEFINED() error { return vm.execPredicate(func(v value.Value) bool { return !v.IsNull() }) }
func (vm *VM) execISSIMPLE() error {
	return vm.execPredicate(func(v value.Value) bool {
		switch v.Tag {
		case value.Null, value.Int, value.Num, value.Com, value.Str:
			return true
		}
		return false
	})
}
func (vm *VM) execISODD() error {
	return vm.execPredicate(func(v value.Value) bool {
		n, ok := value.AsInt(v)
		return ok && n%2 != 0
	})
}
func (vm *VM) execISEVEN() error {
	return vm.execPredicate(func(v value.Value) bool {
		n, ok := value.AsInt(v)
		return ok && n%2 == 0
	})
}
func (vm *VM) execISNULL() error { return vm.execPredicate(func(v value.Value) bool { return v.IsNull() }) }
