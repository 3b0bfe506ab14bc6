package value

import (
	"github.com/lcn2/calc-sub001/internal/errors"
	"github.com/lcn2/calc-sub001/internal/kernel"
)

// BinOp names one binary arithmetic operator for kernelArith, matching the
// VM's ADD/SUB/MUL/DIV opcodes (§4.2).
type BinOp int

const (
	OpBinAdd BinOp = iota
	OpBinSub
	OpBinMul
	OpBinDiv
)

// Add implements `+` across every pair of arms per §4.2's path table:
// the kernel fast path (Int/Num/Com), the container path (Mat, elementwise),
// the string path (concatenation), the object path (schema dispatch), and
// the pointer path (dereference-then-retry). Anything else yields a typed
// Error Value.
func Add(a, b Value) Value {
	if v, ok := kernelArith(a, b, OpBinAdd); ok {
		return v
	}
	switch {
	case a.Tag == Str && b.Tag == Str:
		return Value{Tag: Str, Body: NewRef(StrConcat(strBytes(a), strBytes(b)))}
	case a.Tag == Mat && b.Tag == Mat:
		ma, mb := a.Body.(Ref[Matrix]).Get(), b.Body.(Ref[Matrix]).Get()
		out, err := MatAdd(ma, mb, Add)
		if err != nil {
			return errorValue(codeFor("E_ADD"))
		}
		return Value{Tag: Mat, Body: NewRef(*out)}
	case a.Tag == Obj:
		if v, handled, err := objectDispatch(a, OpAdd, []Value{b}); handled {
			if err != nil {
				return errorValue(codeFor("E_ADD"))
			}
			return v
		}
	case a.Tag == Addr || a.Tag == VPtr:
		deref, err := Deref(a)
		if err != nil {
			return errorValue(codeFor("E_ADD"))
		}
		return Add(deref, b)
	}
	return errorValue(codeFor("E_ADD"))
}

// Sub implements `-`, including string-subtract.
func Sub(a, b Value) Value {
	if v, ok := kernelArith(a, b, OpBinSub); ok {
		return v
	}
	switch {
	case a.Tag == Str && b.Tag == Str:
		return Value{Tag: Str, Body: NewRef(StrSubtract(strBytes(a), strBytes(b)))}
	case a.Tag == Mat && b.Tag == Mat:
		ma, mb := a.Body.(Ref[Matrix]).Get(), b.Body.(Ref[Matrix]).Get()
		out, err := MatAdd(ma, mb, Sub)
		if err != nil {
			return errorValue(codeFor("E_SUB"))
		}
		return Value{Tag: Mat, Body: NewRef(*out)}
	case a.Tag == Obj:
		if v, handled, err := objectDispatch(a, OpSub, []Value{b}); handled {
			if err != nil {
				return errorValue(codeFor("E_SUB"))
			}
			return v
		}
	}
	return errorValue(codeFor("E_SUB"))
}

// Mul implements `*`: kernel scalar multiply, scalar*matrix, matrix
// Hadamard product (matching shapes), rank-2 row-by-column product
// (matching inner dimension), and string replicate-by-count.
func Mul(a, b Value) Value {
	if v, ok := kernelArith(a, b, OpBinMul); ok {
		return v
	}
	switch {
	case a.Tag == Str && isIntLike(b):
		n, _ := asIntParam(b)
		return Value{Tag: Str, Body: NewRef(StrReplicate(strBytes(a), n))}
	case isIntLike(a) && b.Tag == Str:
		n, _ := asIntParam(a)
		return Value{Tag: Str, Body: NewRef(StrReplicate(strBytes(b), n))}
	case isScalar(a) && b.Tag == Mat:
		m := b.Body.(Ref[Matrix]).Get()
		return Value{Tag: Mat, Body: NewRef(*MatScale(a, m, Mul))}
	case a.Tag == Mat && isScalar(b):
		m := a.Body.(Ref[Matrix]).Get()
		return Value{Tag: Mat, Body: NewRef(*MatScale(b, m, Mul))}
	case a.Tag == Mat && b.Tag == Mat:
		ma, mb := a.Body.(Ref[Matrix]).Get(), b.Body.(Ref[Matrix]).Get()
		if ma.SameShape(mb) {
			if out, err := MatHadamard(ma, mb, Mul); err == nil {
				return Value{Tag: Mat, Body: NewRef(*out)}
			}
		}
		out, err := MatMul(ma, mb, Mul, Add, NewInt(0))
		if err != nil {
			return errorValue(codeFor("E_MUL"))
		}
		return Value{Tag: Mat, Body: NewRef(*out)}
	case a.Tag == Obj:
		if v, handled, err := objectDispatch(a, OpMul, []Value{b}); handled {
			if err != nil {
				return errorValue(codeFor("E_MUL"))
			}
			return v
		}
	}
	return errorValue(codeFor("E_MUL"))
}

// Div implements `/`: kernel exact division (promoting to Com as needed)
// and object dispatch. Matrix division by a matrix has no defined meaning.
func Div(a, b Value) Value {
	if v, ok := kernelArith(a, b, OpBinDiv); ok {
		return v
	}
	if a.Tag == Obj {
		if v, handled, err := objectDispatch(a, OpDiv, []Value{b}); handled {
			if err != nil {
				return errorValue(codeFor("E_DIV"))
			}
			return v
		}
	}
	return errorValue(codeFor("E_DIV"))
}

// kernelArith runs op over the Int/Num/Com fast path, promoting each
// operand to the narrowest kernel type that covers both, and collapsing a
// Com result back to Num when its imaginary part vanished (§3.1, §8).
func kernelArith(a, b Value, op BinOp) (Value, bool) {
	if (a.Tag == Com || b.Tag == Com) && isNumeric(a) && isNumeric(b) {
		ca, _ := a.AsC()
		cb, _ := b.AsC()
		switch op {
		case OpBinAdd:
			return NewCom(ca.Add(cb)), true
		case OpBinSub:
			return NewCom(ca.Sub(cb)), true
		case OpBinMul:
			return NewCom(ca.Mul(cb)), true
		case OpBinDiv:
			q, err := ca.Div(cb)
			if err != nil {
				return errorValueFromKernel(err), true
			}
			return NewCom(q), true
		}
	}
	if isNumeric(a) && isNumeric(b) {
		qa, _ := a.AsQ()
		qb, _ := b.AsQ()
		switch op {
		case OpBinAdd:
			return narrow(qa.Add(qb)), true
		case OpBinSub:
			return narrow(qa.Sub(qb)), true
		case OpBinMul:
			return narrow(qa.Mul(qb)), true
		case OpBinDiv:
			q, err := qa.Div(qb)
			if err != nil {
				return errorValueFromKernel(err), true
			}
			return narrow(q), true
		}
	}
	return Value{}, false
}

// narrow collapses an integral Q back to the Int fast path, and otherwise
// wraps it as Num (§3.1's "Int is a fast path for integral Num").
func narrow(q kernel.Q) Value {
	if q.IsInt() {
		if n, ok := q.Int64(); ok {
			return NewInt(n)
		}
	}
	return NewNum(q)
}

func isNumeric(v Value) bool { return v.Tag == Int || v.Tag == Num || v.Tag == Com }
func isScalar(v Value) bool  { return isNumeric(v) }
func isIntLike(v Value) bool {
	if v.Tag == Int {
		return true
	}
	if v.Tag == Num {
		return v.Body.(kernel.Q).IsInt()
	}
	return false
}

// Neg implements unary negation across Int/Num/Com and object dispatch.
func Neg(a Value) Value {
	switch a.Tag {
	case Int:
		return NewInt(-a.Body.(int64))
	case Num:
		return narrow(a.Body.(kernel.Q).Neg())
	case Com:
		return NewCom(a.Body.(kernel.C).Neg())
	case Obj:
		if v, handled, err := objectDispatch(a, OpNeg, nil); handled {
			if err != nil {
				return errorValue(codeFor("E_NEG"))
			}
			return v
		}
	}
	return errorValue(codeFor("E_NEG"))
}

// objectCaller is filled in by the engine at startup with a UserCaller
// capable of invoking the schema's bound functions; nil until then, in
// which case every object operator looks unbound.
var objectCaller UserCaller

// SetUserCaller installs the engine's function-table caller used to
// resolve Object operator overloads.
func SetUserCaller(c UserCaller) { objectCaller = c }

// DispatchOperator is objectDispatch's exported form, used by the VM to
// resolve the unary/bitwise/relational opcodes that fall back to an
// Object's schema-bound overload the same way Add/Sub/Mul/Div do.
func DispatchOperator(a Value, op Operator, args []Value) (Value, bool, error) {
	return objectDispatch(a, op, args)
}

func objectDispatch(a Value, op Operator, args []Value) (Value, bool, error) {
	if objectCaller == nil {
		return Value{}, false, nil
	}
	obj := a.Body.(Ref[Object]).Get()
	return Dispatch(obj, op, args, objectCaller)
}

func errorValue(code int) Value { return NewError(code) }

// codeFor resolves a calc error symbol to its numeric code via the shared
// table in internal/errors, falling back to E__BASE if the symbol is
// somehow missing (it never should be; every name here is transcribed
// from errtbl.c).
func codeFor(symbol string) int {
	if code, ok := errors.Code(symbol); ok {
		return code
	}
	return errors.EBase
}

// errorValueFromKernel maps a kernel.KernelError's symbolic code onto the
// corresponding Error Value.
func errorValueFromKernel(err error) Value {
	if ke, ok := err.(*kernel.KernelError); ok {
		if code, ok := errors.Code(ke.Code); ok {
			return errorValue(code)
		}
	}
	return errorValue(codeFor("E_DIVBYZERO"))
}
