package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcn2/calc-sub001/internal/bytecode"
)

// twoLocalsAdd builds `main() { a = 1; b = 1; return a + b; }` by hand,
// the way a compiler would lower two local declarations and an addition.
func twoLocalsAdd() *bytecode.Program {
	main := bytecode.NewFunction("main", 0, 2)
	one := main.AddConstant(bytecode.Constant{Num: "1"})

	main.Emit(bytecode.LOCALADDR, 1)
	main.EmitWord(0, 1)
	main.Emit(bytecode.NUMBER, 1)
	main.EmitWord(bytecode.Word(one), 1)
	main.Emit(bytecode.ASSIGNPOP, 1)

	main.Emit(bytecode.LOCALADDR, 2)
	main.EmitWord(1, 2)
	main.Emit(bytecode.NUMBER, 2)
	main.EmitWord(bytecode.Word(one), 2)
	main.Emit(bytecode.ASSIGNPOP, 2)

	main.Emit(bytecode.LOCALVALUE, 3)
	main.EmitWord(0, 3)
	main.Emit(bytecode.LOCALVALUE, 3)
	main.EmitWord(1, 3)
	main.Emit(bytecode.ADD, 3)
	main.Emit(bytecode.RETURN, 3)

	return &bytecode.Program{Functions: []*bytecode.Function{main}}
}

func TestS1TwoLocalsAddition(t *testing.T) {
	engine := New(twoLocalsAdd(), "calc-test", "0")
	got, err := engine.Run("main")
	require.NoError(t, err)
	assert.Equal(t, "2", got.String())
}

// divByZero builds `main() { return 1 / 0; }`.
func divByZero() *bytecode.Program {
	main := bytecode.NewFunction("main", 0, 0)
	one := main.AddConstant(bytecode.Constant{Num: "1"})
	zero := main.AddConstant(bytecode.Constant{Num: "0"})

	main.Emit(bytecode.NUMBER, 1)
	main.EmitWord(bytecode.Word(one), 1)
	main.Emit(bytecode.NUMBER, 1)
	main.EmitWord(bytecode.Word(zero), 1)
	main.Emit(bytecode.DIV, 1)
	main.Emit(bytecode.RETURN, 1)

	return &bytecode.Program{Functions: []*bytecode.Function{main}}
}

func TestS5DivisionByZeroIsErrorValueNotAbort(t *testing.T) {
	engine := New(divByZero(), "calc-test", "0")
	got, err := engine.Run("main")
	require.NoError(t, err)
	assert.True(t, got.IsError())
}

// quitProgram builds `main() { quit; }`; TestQuitUnwindsCleanly checks that
// QUIT unwinds the dispatch loop into an Error-tagged Value rather than
// surfacing as a Go error all the way out of Run.
func quitProgram() *bytecode.Program {
	main := bytecode.NewFunction("main", 0, 0)
	main.Emit(bytecode.QUIT, 1)
	return &bytecode.Program{Functions: []*bytecode.Function{main}}
}

func TestQuitUnwindsCleanly(t *testing.T) {
	engine := New(quitProgram(), "calc-test", "0")
	got, err := engine.Run("main")
	require.NoError(t, err)
	assert.True(t, got.IsError())
}

// factorialProgram builds the two-function equivalent of the calc source
//
//	define fact(n) = { if (n <= 1) return 1; return n * fact(n - 1); }
//	main() { return fact(5); }
//
// the same way cmd/calc/main.go's demo assembles fact/main, but returning
// fact(5) alone so the VM-level result is directly comparable to spec.md
// §8's S2 scenario.
func factorialProgram() *bytecode.Program {
	fact := bytecode.NewFunction("fact", 1, 0)
	one := fact.AddConstant(bytecode.Constant{Num: "1"})

	fact.Emit(bytecode.PARAMVALUE, 1)
	fact.EmitWord(0, 1)
	fact.Emit(bytecode.NUMBER, 1)
	fact.EmitWord(bytecode.Word(one), 1)
	fact.Emit(bytecode.LE, 1)
	jumpzPC := len(fact.Code)
	fact.Emit(bytecode.JUMPZ, 1)
	fact.EmitWord(0, 1) // back-patched below

	fact.Emit(bytecode.NUMBER, 1)
	fact.EmitWord(bytecode.Word(one), 1)
	fact.Emit(bytecode.RETURN, 1)

	baseCasePC := len(fact.Code)
	fact.Patch(jumpzPC+1, bytecode.Word(baseCasePC))

	fact.Emit(bytecode.PARAMVALUE, 2)
	fact.EmitWord(0, 2)
	fact.Emit(bytecode.PARAMVALUE, 2)
	fact.EmitWord(0, 2)
	fact.Emit(bytecode.NUMBER, 2)
	fact.EmitWord(bytecode.Word(one), 2)
	fact.Emit(bytecode.SUB, 2)
	fact.Emit(bytecode.USERCALL, 2)
	fact.EmitWord(0, 2) // function index 0: fact itself
	fact.EmitWord(1, 2) // one actual argument
	fact.Emit(bytecode.MUL, 2)
	fact.Emit(bytecode.RETURN, 2)

	main := bytecode.NewFunction("main", 0, 0)
	five := main.AddConstant(bytecode.Constant{Num: "5"})

	main.Emit(bytecode.NUMBER, 1)
	main.EmitWord(bytecode.Word(five), 1)
	main.Emit(bytecode.USERCALL, 1)
	main.EmitWord(0, 1)
	main.EmitWord(1, 1)
	main.Emit(bytecode.RETURN, 1)

	return &bytecode.Program{Functions: []*bytecode.Function{fact, main}}
}

func TestS2RecursiveFactorialViaUserCall(t *testing.T) {
	engine := New(factorialProgram(), "calc-test", "0")
	got, err := engine.Run("main")
	require.NoError(t, err)
	assert.Equal(t, "120", got.String())
}

// thirdsSumToOne builds `main() { return 1/3 + 2/3; }` through the VM's own
// DIV/ADD opcodes, exercising kernelArith's reduction rather than testing
// kernel.Q directly.
func thirdsSumToOne() *bytecode.Program {
	main := bytecode.NewFunction("main", 0, 0)
	one := main.AddConstant(bytecode.Constant{Num: "1"})
	two := main.AddConstant(bytecode.Constant{Num: "2"})
	three := main.AddConstant(bytecode.Constant{Num: "3"})

	main.Emit(bytecode.NUMBER, 1)
	main.EmitWord(bytecode.Word(one), 1)
	main.Emit(bytecode.NUMBER, 1)
	main.EmitWord(bytecode.Word(three), 1)
	main.Emit(bytecode.DIV, 1)

	main.Emit(bytecode.NUMBER, 2)
	main.EmitWord(bytecode.Word(two), 2)
	main.Emit(bytecode.NUMBER, 2)
	main.EmitWord(bytecode.Word(three), 2)
	main.Emit(bytecode.DIV, 2)

	main.Emit(bytecode.ADD, 2)
	main.Emit(bytecode.RETURN, 2)

	return &bytecode.Program{Functions: []*bytecode.Function{main}}
}

func TestS3ThirdsReduceToOneThroughVM(t *testing.T) {
	engine := New(thirdsSumToOne(), "calc-test", "0")
	got, err := engine.Run("main")
	require.NoError(t, err)
	assert.Equal(t, "1", got.String())
}

// twoToTheHundred builds `main() { return 2^100; }` via the POWER opcode,
// exercising the VM dispatch path rather than kernel.Z.Pow directly.
func twoToTheHundred() *bytecode.Program {
	main := bytecode.NewFunction("main", 0, 0)
	two := main.AddConstant(bytecode.Constant{Num: "2"})
	hundred := main.AddConstant(bytecode.Constant{Num: "100"})

	main.Emit(bytecode.NUMBER, 1)
	main.EmitWord(bytecode.Word(two), 1)
	main.Emit(bytecode.NUMBER, 1)
	main.EmitWord(bytecode.Word(hundred), 1)
	main.Emit(bytecode.POWER, 1)
	main.Emit(bytecode.RETURN, 1)

	return &bytecode.Program{Functions: []*bytecode.Function{main}}
}

func TestS6PowerOpcodeThroughVM(t *testing.T) {
	engine := New(twoToTheHundred(), "calc-test", "0")
	got, err := engine.Run("main")
	require.NoError(t, err)
	assert.Equal(t, "1267650600228229401496703205376", got.String())
}

func TestGlobalsPersistAcrossCalls(t *testing.T) {
	engine := New(&bytecode.Program{Functions: []*bytecode.Function{bytecode.NewFunction("main", 0, 0)}}, "calc-test", "0")
	slot := engine.Global("counter")
	assert.True(t, slot.IsNull())
	again := engine.Global("counter")
	assert.Same(t, slot, again)
}
