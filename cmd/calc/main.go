// cmd/calc/main.go
package main

import (
	"fmt"
	"os"

	"github.com/lcn2/calc-sub001/internal/bytecode"
	"github.com/lcn2/calc-sub001/internal/vm"
)

const VERSION = "2.14.0"

// The lexer, parser, and resource-file loader that turn calc source text
// into a bytecode.Program are external collaborators (§1) and live
// outside this module. This binary only exercises the engine itself: it
// hand-assembles a couple of small functions the way a compiler's code
// generator would, and runs them to demonstrate the dispatch loop,
// arithmetic dispatch, and recursive USERCALL all working end to end.
func main() {
	if len(os.Args) > 1 && (os.Args[1] == "-v" || os.Args[1] == "--version") {
		fmt.Printf("calc (evaluation core demo) %s\n", VERSION)
		return
	}

	program := demoProgram()
	engine := vm.New(program, "calc", VERSION)

	result, err := engine.Run("main")
	if err != nil {
		fmt.Fprintf(os.Stderr, "calc: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(result.String())
}

// demoProgram builds a tiny two-function Program equivalent to the
// calc source:
//
//	define fact(n) = { if (n <= 1) return 1; return n * fact(n - 1); }
//	main() { return fact(5) + 2; }
//
// laid out the way a code generator would: constants interned once,
// forward jumps back-patched via Function.Patch.
func demoProgram() *bytecode.Program {
	fact := bytecode.NewFunction("fact", 1, 0)
	one := fact.AddConstant(bytecode.Constant{Num: "1"})

	// n <= 1
	fact.Emit(bytecode.PARAMVALUE, 1)
	fact.EmitWord(0, 1)
	fact.Emit(bytecode.NUMBER, 1)
	fact.EmitWord(bytecode.Word(one), 1)
	fact.Emit(bytecode.LE, 1)
	jumpzPC := len(fact.Code)
	fact.Emit(bytecode.JUMPZ, 1)
	fact.EmitWord(0, 1) // back-patched below

	// return 1
	fact.Emit(bytecode.NUMBER, 1)
	fact.EmitWord(bytecode.Word(one), 1)
	fact.Emit(bytecode.RETURN, 1)

	baseCasePC := len(fact.Code)
	fact.Patch(jumpzPC+1, bytecode.Word(baseCasePC))

	// return n * fact(n - 1)
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
	two := main.AddConstant(bytecode.Constant{Num: "2"})

	main.Emit(bytecode.NUMBER, 1)
	main.EmitWord(bytecode.Word(five), 1)
	main.Emit(bytecode.USERCALL, 1)
	main.EmitWord(0, 1)
	main.EmitWord(1, 1)
	main.Emit(bytecode.NUMBER, 1)
	main.EmitWord(bytecode.Word(two), 1)
	main.Emit(bytecode.ADD, 1)
	main.Emit(bytecode.RETURN, 1)

	return &bytecode.Program{Functions: []*bytecode.Function{fact, main}}
}
