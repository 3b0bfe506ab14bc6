package vm

import (
	"github.com/pkg/errors"

	"github.com/lcn2/calc-sub001/internal/value"
)

// storeElemInit writes an already-validated ELEMINIT value into container
// at pos, per §4.2.5. ElemInit has already range-checked List positions
// and truncated Str/Block/NBlock initializers to a byte.
func storeElemInit(container value.Value, pos int, v value.Value) error {
	switch container.Tag {
	case value.List:
		l := container.Body.(value.Ref[value.List]).Get()
		if pos == l.Len() {
			l.PushBack(v)
			return nil
		}
		return l.SetAt(pos, v)
	case value.Mat:
		m := container.Body.(value.Ref[value.Matrix]).Get()
		if pos < 0 || pos >= len(m.Data) {
			return errOutOfRange
		}
		m.Data[pos] = v
		return nil
	case value.Str, value.Block, value.NBlock:
		n, _ := value.AsInt(v)
		backing := backingBytes(container)
		if backing == nil {
			return errOutOfRange
		}
		if pos == len(*backing) {
			*backing = append(*backing, byte(n))
			return nil
		}
		if pos < 0 || pos >= len(*backing) {
			return errOutOfRange
		}
		(*backing)[pos] = byte(n)
		return nil
	default:
		return nil
	}
}

// backingBytes returns the mutable byte slice underlying a Str, Block, or
// NBlock container, matching index.go's indexOctets resolution.
func backingBytes(container value.Value) *[]byte {
	switch container.Tag {
	case value.Str:
		return container.Body.(value.Ref[[]byte]).Get()
	case value.Block:
		return &container.Body.(value.Ref[value.Block]).Get().Data
	case value.NBlock:
		nref := container.Body.(*value.NBlockRef)
		return &nref.Block.Get().Data
	default:
		return nil
	}
}

func (vm *VM) execPRINT() error {
	top, err := vm.stack.pop()
	if err != nil {
		return err
	}
	vm.Stdout.Print(top.String())
	return nil
}

// execPRINTRESULT implements calc's REPL auto-print of a top-level
// expression statement's value, tab-indented per the real calculator.
func (vm *VM) execPRINTRESULT() error {
	top, err := vm.stack.pop()
	if err != nil {
		return err
	}
	vm.Stdout.Print("\t" + top.String() + "\n")
	return nil
}

// execSAVE copies the current top of stack into both the frame's and the
// VM's last-value slot, gated by SAVEVAL's saveGate (§4.3.2's
// "side-state" category: old_value()/OLDVALUE reads this back).
func (vm *VM) execSAVE(f *frame) error {
	top, err := vm.stack.peek(0)
	if err != nil {
		return err
	}
	if vm.saveGate {
		f.lastValue = top.Copy()
		vm.lastValue = top.Copy()
	}
	return nil
}

func (vm *VM) execSAVEVAL() error {
	top, err := vm.stack.pop()
	if err != nil {
		return err
	}
	vm.saveGate = value.Truthy(top)
	return nil
}

func (vm *VM) execSETEPSILON() error {
	top, err := vm.stack.pop()
	if err != nil {
		return err
	}
	q, ok := top.AsQ()
	if !ok {
		return vm.stack.push(value.NewError(vmErrCode("E_CONFIG")))
	}
	vm.config.Epsilon = q
	return vm.stack.push(value.NewNull())
}

func (vm *VM) execTEST() error {
	top, err := vm.stack.pop()
	if err != nil {
		return err
	}
	return vm.stack.push(value.NewBool(value.Truthy(top)))
}

// execLINKS reports the share count of the top value's underlying
// storage, a debug/introspection primitive over the Ref refcounts used
// for copy-on-write containers.
func (vm *VM) execLINKS() error {
	top, err := vm.stack.pop()
	if err != nil {
		return err
	}
	n := int64(1)
	switch top.Tag {
	case value.Mat:
		n = int64(top.Body.(value.Ref[value.Matrix]).RefCount())
	case value.List:
		n = int64(top.Body.(value.Ref[value.List]).RefCount())
	case value.Block:
		n = int64(top.Body.(value.Ref[value.Block]).RefCount())
	}
	return vm.stack.push(value.NewInt(n))
}

var errOutOfRange = errors.New("vm: element position out of range")
