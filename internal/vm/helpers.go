package vm

import (
	calcerrors "github.com/lcn2/calc-sub001/internal/errors"
	"github.com/lcn2/calc-sub001/internal/kernel"
	"github.com/lcn2/calc-sub001/internal/value"
)

// vmErrCode resolves a calc error symbol to its numeric code, falling back
// to E__BASE; used by opcodes that raise a typed error with no underlying
// Go error to extract one from (e.g. a malformed ARGVALUE index).
func vmErrCode(symbol string) int {
	if code, ok := calcerrors.Code(symbol); ok {
		return code
	}
	return calcerrors.EBase
}

// narrowQ collapses an integral Q back to the Int fast path, mirroring
// internal/value's own narrow (unexported there; QUO/MOD build their
// result straight from a kernel.Q rather than going through Add/Sub/...).
func narrowQ(q kernel.Q) value.Value {
	if q.IsInt() {
		if n, ok := q.Int64(); ok {
			return value.NewInt(n)
		}
	}
	return value.NewNum(q)
}

// errValueFromKernel maps a kernel.KernelError's symbolic code onto the
// matching Error Value.
func errValueFromKernel(err error) value.Value {
	if ke, ok := err.(*kernel.KernelError); ok {
		if code, ok := calcerrors.Code(ke.Code); ok {
			return value.NewError(code)
		}
	}
	return value.NewError(vmErrCode("E_DIVBYZERO"))
}

// errValueFromAssign maps one of Assign/AssignBack/Increment/Decrement's
// *calcerrors.CalcError results onto the matching Error Value.
func errValueFromAssign(err error) value.Value {
	if ce, ok := err.(*calcerrors.CalcError); ok {
		return value.NewError(ce.Code)
	}
	return value.NewError(vmErrCode("E_ASSIGN1"))
}
