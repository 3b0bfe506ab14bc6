package vm

import (
	"github.com/pkg/errors"

	"github.com/lcn2/calc-sub001/internal/bytecode"
	"github.com/lcn2/calc-sub001/internal/value"
)

// execNul is the dispatch table for every NUL-class opcode: the bulk of
// the inventory, taking no trailing immediates.
func (vm *VM) execNul(f *frame, op bytecode.OpCode) error {
	switch op {
	// Addressing
	case bytecode.OLDVALUE:
		return vm.stack.push(value.NewAddr(&vm.lastValue))
	case bytecode.PTR:
		return vm.execPTR()
	case bytecode.DEREF:
		return vm.execDEREF()
	case bytecode.FIADDR:
		return vm.execFastIndex(true)
	case bytecode.FIVALUE:
		return vm.execFastIndex(false)

	// Constants
	case bytecode.UNDEF:
		return vm.stack.push(value.NewNull())
	case bytecode.ZERO:
		return vm.stack.push(value.NewInt(0))
	case bytecode.ONE:
		return vm.stack.push(value.NewInt(1))
	case bytecode.ELEMINIT:
		return vm.execElemInit()
	case bytecode.INITFILL:
		return vm.execInitFill()

	// Arithmetic
	case bytecode.ADD:
		return vm.execADD()
	case bytecode.SUB:
		return vm.execSUB()
	case bytecode.MUL:
		return vm.execMUL()
	case bytecode.DIV:
		return vm.execDIV()
	case bytecode.POWER:
		return vm.execPOWER()
	case bytecode.NEGATE:
		return vm.execNEGATE()
	case bytecode.INVERT:
		return vm.execINVERT()
	case bytecode.SQUARE:
		return vm.execSQUARE()
	case bytecode.INT:
		return vm.execINT()
	case bytecode.FRAC:
		return vm.execFRAC()
	case bytecode.NUMERATOR:
		return vm.execNUMERATOR()
	case bytecode.DENOMINATOR:
		return vm.execDENOMINATOR()
	case bytecode.SCALE:
		return vm.execSCALE()
	case bytecode.LEFTSHIFT:
		return vm.execLEFTSHIFT()
	case bytecode.RIGHTSHIFT:
		return vm.execRIGHTSHIFT()
	case bytecode.ABS:
		return vm.execABS()
	case bytecode.NORM:
		return vm.execNORM()
	case bytecode.RE:
		return vm.execRE()
	case bytecode.IM:
		return vm.execIM()
	case bytecode.CONJUGATE:
		return vm.execCONJUGATE()
	case bytecode.SGN:
		return vm.execSGN()
	case bytecode.BIT:
		return vm.execBIT()
	case bytecode.HIGHBIT:
		return vm.execHIGHBIT()
	case bytecode.LOWBIT:
		return vm.execLOWBIT()
	case bytecode.PLUS:
		return vm.execPLUS()

	// Logical / bitwise
	case bytecode.AND:
		return vm.execAND()
	case bytecode.OR:
		return vm.execOR()
	case bytecode.XOR:
		return vm.execXOR()
	case bytecode.NOT:
		return vm.execNOT()
	case bytecode.COMP:
		return vm.execCOMP()
	case bytecode.CONTENT:
		return vm.execCONTENT()
	case bytecode.HASHOP:
		return vm.execHASHOP()
	case bytecode.BACKSLASH:
		return vm.execBACKSLASH()
	case bytecode.SETMINUS:
		return vm.execSETMINUS()

	// Relational
	case bytecode.EQ:
		return vm.execEQ()
	case bytecode.NE:
		return vm.execNE()
	case bytecode.LT:
		return vm.execLT()
	case bytecode.LE:
		return vm.execLE()
	case bytecode.GT:
		return vm.execGT()
	case bytecode.GE:
		return vm.execGE()
	case bytecode.CMP:
		return vm.execCMP()

	// Predicates
	case bytecode.ISINT:
		return vm.execISINT()
	case bytecode.ISNUM:
		return vm.execISNUM()
	case bytecode.ISREAL:
		return vm.execISREAL()
	case bytecode.ISMAT:
		return vm.execISMAT()
	case bytecode.ISLIST:
		return vm.execISLIST()
	case bytecode.ISOBJ:
		return vm.execISOBJ()
	case bytecode.ISSTR:
		return vm.execISSTR()
	case bytecode.ISFILE:
		return vm.execISFILE()
	case bytecode.ISRAND:
		return vm.execISRAND()
	case bytecode.ISRANDOM:
		return vm.execISRANDOM()
	case bytecode.ISCONFIG:
		return vm.execISCONFIG()
	case bytecode.ISHASH:
		return vm.execISHASH()
	case bytecode.ISASSOC:
		return vm.execISASSOC()
	case bytecode.ISBLK:
		return vm.execISBLK()
	case bytecode.ISOCTET:
		return vm.execISOCTET()
	case bytecode.ISPTR:
		return vm.execISPTR()
	case bytecode.ISDEFINED:
		return vm.execISDEFINED()
	case bytecode.ISSIMPLE:
		return vm.execISSIMPLE()
	case bytecode.ISODD:
		return vm.execISODD()
	case bytecode.ISEVEN:
		return vm.execISEVEN()
	case bytecode.ISNULL:
		return vm.execISNULL()

	// Stack
	case bytecode.DUPLICATE:
		return vm.execDUPLICATE()
	case bytecode.DUPVALUE:
		return vm.execDUPVALUE()
	case bytecode.POP:
		return vm.execPOP()
	case bytecode.SWAP:
		return vm.execSWAP()
	case bytecode.GETVALUE:
		return vm.execGETVALUE()
	case bytecode.ASSIGN:
		return vm.execASSIGN()
	case bytecode.ASSIGNPOP:
		return vm.execASSIGNPOP()

	// Increment
	case bytecode.PREINC:
		return vm.execPREINC()
	case bytecode.PREDEC:
		return vm.execPREDEC()
	case bytecode.POSTINC:
		return vm.execPOSTINC()
	case bytecode.POSTDEC:
		return vm.execPOSTDEC()

	// I/O
	case bytecode.PRINT:
		return vm.execPRINT()
	case bytecode.PRINTRESULT:
		return vm.execPRINTRESULT()
	case bytecode.PRINTEOL:
		vm.Stdout.Print("\n")
		return nil
	case bytecode.PRINTSPACE:
		vm.Stdout.Print(" ")
		return nil

	// Side state
	case bytecode.SAVE:
		return vm.execSAVE(f)
	case bytecode.SAVEVAL:
		return vm.execSAVEVAL()
	case bytecode.SETEPSILON:
		return vm.execSETEPSILON()
	case bytecode.GETEPSILON:
		return vm.stack.push(value.NewNum(vm.config.Epsilon))
	case bytecode.TEST:
		return vm.execTEST()
	case bytecode.LINKS:
		return vm.execLINKS()
	case bytecode.QUIT:
		return quitSignal{code: 0}
	case bytecode.ABORT:
		return abortSignal{}
	case bytecode.NOP:
		return nil

	default:
		return errors.Errorf("vm: %s is not a no-operand opcode", op)
	}
}

func (vm *VM) execPTR() error {
	top, err := vm.stack.pop()
	if err != nil {
		return err
	}
	if top.Tag != value.Addr {
		return vm.stack.push(value.NewError(vmErrCode("E_BACKSLASH")))
	}
	slot := top.Body.(*value.Value)
	tag := value.VPtr
	switch slot.Tag {
	case value.Str:
		tag = value.SPtr
	case value.Int, value.Num:
		tag = value.NPtr
	}
	return vm.stack.push(value.AddressOf(tag, slot))
}

func (vm *VM) execDEREF() error {
	top, err := vm.stack.pop()
	if err != nil {
		return err
	}
	v, derr := value.Deref(top)
	if derr != nil {
		return vm.stack.push(value.NewError(vmErrCode("E_DEREF")))
	}
	return vm.stack.push(v)
}

// execFastIndex implements FIADDR/FIVALUE: pop one index, pop a
// container, resolve the single-subscript address, and either push that
// address (FIADDR) or its dereferenced value (FIVALUE).
func (vm *VM) execFastIndex(wantAddr bool) error {
	idx, err := vm.stack.pop()
	if err != nil {
		return err
	}
	container, err := vm.stack.pop()
	if err != nil {
		return err
	}
	addr, ierr := value.Index(&container, wantAddr, []value.Value{idx})
	if ierr != nil {
		return vm.stack.push(value.NewError(vmErrCode("E_INDEX")))
	}
	if wantAddr {
		return vm.stack.push(addr)
	}
	v, derr := value.Deref(addr)
	if derr != nil {
		return vm.stack.push(value.NewError(vmErrCode("E_DEREF")))
	}
	return vm.stack.push(v)
}

// execElemInit implements ELEMINIT: pop a value, an integer position, and
// a container, validate+store per §4.2.5, matching initializer literals
// like `mat[3] = {1, 2, 3}`.
func (vm *VM) execElemInit() error {
	v, err := vm.stack.pop()
	if err != nil {
		return err
	}
	posVal, err := vm.stack.pop()
	if err != nil {
		return err
	}
	container, err := vm.stack.pop()
	if err != nil {
		return err
	}
	pos, ok := value.AsInt(posVal)
	if !ok {
		return vm.stack.push(value.NewError(vmErrCode("E_ELEMINIT")))
	}
	validated, verr := value.ElemInit(&container, pos, v)
	if verr != nil {
		return vm.stack.push(value.NewError(vmErrCode("E_ELEMINIT")))
	}
	if serr := storeElemInit(container, int(pos), validated); serr != nil {
		return vm.stack.push(value.NewError(vmErrCode("E_ELEMINIT")))
	}
	return vm.stack.push(value.NewNull())
}

// execInitFill implements INITFILL: pop a fill value and a container,
// overwriting every existing element with a copy of it.
func (vm *VM) execInitFill() error {
	fill, err := vm.stack.pop()
	if err != nil {
		return err
	}
	container, err := vm.stack.pop()
	if err != nil {
		return err
	}
	switch container.Tag {
	case value.Mat:
		m := container.Body.(value.Ref[value.Matrix]).Get()
		for i := range m.Data {
			m.Data[i] = fill.Copy()
		}
	case value.List:
		l := container.Body.(value.Ref[value.List]).Get()
		for i := 0; i < l.Len(); i++ {
			_ = l.SetAt(i, fill.Copy())
		}
	case value.Block:
		n, ok := value.AsInt(fill)
		if !ok {
			return vm.stack.push(value.NewError(vmErrCode("E_INITFILL")))
		}
		b := container.Body.(value.Ref[value.Block]).Get()
		for i := range b.Data {
			b.Data[i] = byte(n)
		}
	default:
		return vm.stack.push(value.NewError(vmErrCode("E_INITFILL")))
	}
	return vm.stack.push(value.NewNull())
}
