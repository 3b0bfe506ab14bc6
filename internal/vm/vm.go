// Package vm implements the stack-based bytecode engine: a single-threaded,
// non-preemptive dispatch loop over a fixed-depth operand stack, executing
// compiled functions whose word-oriented encoding is defined in
// internal/bytecode (§4.3). The compiler that produces those functions is
// an external collaborator; this package only runs what it is handed.
package vm

import (
	"fmt"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/lcn2/calc-sub001/internal/bytecode"
	calcerrors "github.com/lcn2/calc-sub001/internal/errors"
	"github.com/lcn2/calc-sub001/internal/value"
)

// DefaultMaxStack is the recommended operand-stack depth from §5.
const DefaultMaxStack = 1000

// DefaultMaxFrames bounds call depth, tracked separately from stack depth.
const DefaultMaxFrames = 1000

// quitSignal and abortSignal unwind the Go call stack out of a running
// dispatch loop on QUIT/ABORT (§4.3.3); they are not user-facing errors.
type quitSignal struct{ code int }

func (quitSignal) Error() string { return "quit" }

type abortSignal struct{}

func (abortSignal) Error() string { return "abort" }

// Builtin is a CALL target: the engine's built-in function table, resolved
// by the compiler to a dense index (§4.3.4). Out of scope for this package
// is *which* builtins exist beyond arithmetic/container primitives already
// reachable through opcodes; VM only provides the calling convention.
type Builtin func(vm *VM, args []value.Value) (value.Value, error)

// frame is one activation record: the compiled function, its program
// counter, its declared parameters (a window into the shared operand
// stack, stable because that stack never reallocates), its locals
// (separately allocated so LOCALADDR addresses stay valid for the
// frame's lifetime), and the original actual-argument count ARGVALUE
// indexes against.
type frame struct {
	fn        *bytecode.Function
	pc        int
	base      int // index into vm.stack.data where this frame's params begin
	argCount  int
	locals    []value.Value
	lastValue value.Value
}

// fixedStack is a fixed-capacity operand stack: addresses taken into it
// (via LOCALADDR et al. into frame windows riding on top of it) stay valid
// for as long as the frame is live, since the backing array never grows.
type fixedStack struct {
	data []value.Value
	top  int
}

func newFixedStack(capacity int) *fixedStack {
	return &fixedStack{data: make([]value.Value, capacity)}
}

func (s *fixedStack) push(v value.Value) error {
	if s.top >= len(s.data) {
		glog.Errorf("vm: operand stack overflow at depth %d", s.top)
		return errors.New("vm: operand stack overflow")
	}
	s.data[s.top] = v
	s.top++
	return nil
}

func (s *fixedStack) pop() (value.Value, error) {
	if s.top == 0 {
		return value.Value{}, errors.New("vm: operand stack underflow")
	}
	s.top--
	v := s.data[s.top]
	s.data[s.top] = value.Value{}
	return v, nil
}

func (s *fixedStack) peek(offsetFromTop int) (*value.Value, error) {
	idx := s.top - 1 - offsetFromTop
	if idx < 0 || idx >= s.top {
		return nil, errors.New("vm: operand stack index out of range")
	}
	return &s.data[idx], nil
}

// VM is the execution engine of §4.3. One VM executes one Program;
// globals, the named-block registry, and the transcendental cache (owned
// by the kernel package) persist across calls the way §5 describes.
type VM struct {
	stack   *fixedStack
	frames  []*frame
	globals map[string]*value.Value
	program *bytecode.Program
	builtins map[string]Builtin

	config    value.Config
	lastValue value.Value
	saveGate  bool

	abortLevel     int
	abortThreshold int

	schemas []*value.Schema
	blocks  *value.NamedBlockRegistry

	Stdout Printer
}

// RegisterSchema installs schema under the index OBJCREATE/ISOBJTYPE
// immediates refer to, mirroring the way functions/builtins are indexed
// by the compiler (§6's object-type declarations are an external
// collaborator; the VM only dispatches against the table it is given).
func (vm *VM) RegisterSchema(schema *value.Schema) int {
	vm.schemas = append(vm.schemas, schema)
	return len(vm.schemas) - 1
}

// Printer is the engine's output sink for PRINT/PRINTSTR/SHOW; the actual
// terminal or buffer is an external collaborator.
type Printer interface {
	Print(s string)
}

// stdoutPrinter writes to the process's standard output.
type stdoutPrinter struct{}

func (stdoutPrinter) Print(s string) { fmt.Print(s) }

// New builds a VM ready to execute program, with calc's documented default
// configuration (§6) and a bounded 1000-cell operand stack (§5).
func New(program *bytecode.Program, progName, version string) *VM {
	return &VM{
		stack:          newFixedStack(DefaultMaxStack),
		globals:        make(map[string]*value.Value),
		program:        program,
		builtins:       make(map[string]Builtin),
		config:         value.DefaultConfig(progName, version),
		lastValue:      value.NewNull(),
		saveGate:       true,
		abortThreshold: 1,
		blocks:         value.NewNamedBlockRegistry(),
		Stdout:         stdoutPrinter{},
	}
}

// RegisterBuiltin installs a named CALL target.
func (vm *VM) RegisterBuiltin(name string, fn Builtin) { vm.builtins[name] = fn }

// Global returns the addressable slot for name, creating it (Null-valued)
// on first reference, matching calc's implicit global declaration.
func (vm *VM) Global(name string) *value.Value {
	slot, ok := vm.globals[name]
	if !ok {
		v := value.NewNull()
		slot = &v
		vm.globals[name] = slot
	}
	return slot
}

// RequestAbort raises the process-wide abort level a cooperating signal
// handler outside the engine would set (§5); the dispatch loop observes it
// at the next opcode or DEBUG boundary.
func (vm *VM) RequestAbort() { vm.abortLevel++ }

// Run executes the named function to completion and returns its result.
func (vm *VM) Run(funcName string) (value.Value, error) {
	fn := vm.lookupFunction(funcName)
	if fn == nil {
		return value.Value{}, errors.Errorf("vm: no such function %q", funcName)
	}
	return vm.callFunction(fn, 0)
}

func (vm *VM) lookupFunction(name string) *bytecode.Function {
	for _, fn := range vm.program.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

func (vm *VM) lookupFunctionIndex(idx int) *bytecode.Function {
	if idx < 0 || idx >= len(vm.program.Functions) {
		return nil
	}
	return vm.program.Functions[idx]
}

// callFunction positions a new frame at the top argCount actual arguments
// already on the stack, pads to the declared parameter count with Null,
// allocates locals initialised to Q(0), and runs the dispatch loop
// (§4.3.3).
func (vm *VM) callFunction(fn *bytecode.Function, argCount int) (value.Value, error) {
	if len(vm.frames) >= DefaultMaxFrames {
		glog.Errorf("vm: call depth exceeded calling %q (limit %d)", fn.Name, DefaultMaxFrames)
		return value.Value{}, errors.New("vm: call depth exceeded")
	}
	base := vm.stack.top - argCount
	if base < 0 {
		return value.Value{}, errors.New("vm: call with fewer arguments on stack than declared")
	}
	for vm.stack.top-base < fn.ParamCount {
		if err := vm.stack.push(value.NewNull()); err != nil {
			return value.Value{}, err
		}
	}
	locals := make([]value.Value, fn.LocalCount)
	for i := range locals {
		locals[i] = value.NewInt(0)
	}
	f := &frame{fn: fn, base: base, argCount: argCount, locals: locals, lastValue: value.NewNull()}
	vm.frames = append(vm.frames, f)
	defer func() { vm.frames = vm.frames[:len(vm.frames)-1] }()

	result, err := vm.dispatch(f)
	if err != nil {
		switch sig := err.(type) {
		case quitSignal:
			vm.stack.top = base
			return value.NewError(sig.code), nil
		case abortSignal:
			vm.stack.top = base
			return value.Value{}, errors.New("vm: aborted")
		default:
			return value.Value{}, err
		}
	}
	return result, nil
}

// dispatch runs f's opcode loop until RETURN, QUIT, or ABORT (§4.3.3).
func (vm *VM) dispatch(f *frame) (value.Value, error) {
	for {
		if vm.abortLevel >= vm.abortThreshold && vm.abortThreshold > 0 {
			return value.Value{}, abortSignal{}
		}
		if f.pc < 0 || f.pc >= len(f.fn.Code) {
			glog.Errorf("vm: program counter %d out of range in %s (len %d)", f.pc, f.fn.Name, len(f.fn.Code))
			return value.Value{}, errors.Errorf("vm: program counter out of range in %s", f.fn.Name)
		}
		op := bytecode.OpCode(f.fn.Code[f.pc])
		start := f.pc
		f.pc++

		switch bytecode.ClassOf(op) {
		case bytecode.ClassONE:
			imm := vm.word(f)
			if err := vm.execOne(f, op, imm); err != nil {
				return vm.handleOpError(f, op, err)
			}
		case bytecode.ClassTWO:
			a := vm.word(f)
			b := vm.word(f)
			if err := vm.execTwo(f, op, a, b); err != nil {
				return vm.handleOpError(f, op, err)
			}
		case bytecode.ClassJMP:
			target := vm.word(f)
			taken, err := vm.execJump(f, op)
			if err != nil {
				return vm.handleOpError(f, op, err)
			}
			if taken {
				f.pc = int(target)
			}
		case bytecode.ClassGLB:
			idx := vm.word(f)
			if err := vm.execGlobal(f, op, int(idx)); err != nil {
				return vm.handleOpError(f, op, err)
			}
		case bytecode.ClassLOC:
			idx := vm.word(f)
			if err := vm.execLocal(f, op, int(idx)); err != nil {
				return vm.handleOpError(f, op, err)
			}
		case bytecode.ClassPAR:
			idx := vm.word(f)
			if err := vm.execParam(f, op, int(idx)); err != nil {
				return vm.handleOpError(f, op, err)
			}
		case bytecode.ClassARG:
			if err := vm.execArg(f, op); err != nil {
				return vm.handleOpError(f, op, err)
			}
		case bytecode.ClassRET:
			return vm.execReturn(f)
		case bytecode.ClassSTI:
			target := vm.word(f)
			f.fn.Patch(start, bytecode.Word(bytecode.JUMP))
			_ = target // the JUMP now reads the same trailing word as its target
		default: // ClassNUL
			if err := vm.execNul(f, op); err != nil {
				return vm.handleOpError(f, op, err)
			}
		}
	}
}

func (vm *VM) word(f *frame) bytecode.Word {
	if f.pc >= len(f.fn.Code) {
		return 0
	}
	w := f.fn.Code[f.pc]
	f.pc++
	return w
}

// handleOpError lets QUIT/ABORT's sentinel errors propagate as control
// flow while every genuine Value-layer failure becomes a pushed Error
// Value, per §4.3.3 ("a Value-layer function returning an Error tag
// produces a negative-typed Value that is pushed just like any other
// result").
func (vm *VM) handleOpError(f *frame, op bytecode.OpCode, err error) (value.Value, error) {
	switch err.(type) {
	case quitSignal, abortSignal:
		return value.Value{}, err
	}
	code := calcerrors.EBase
	if ce, ok := errors.Cause(err).(*calcerrors.CalcError); ok {
		code = ce.Code
	}
	_ = vm.stack.push(value.NewError(code))
	return value.Value{}, nil
}

// execReturn implements RETURN (§4.3.3): dereference a top-of-stack Addr
// by copy, drop locals and all remaining args, and push the return value.
func (vm *VM) execReturn(f *frame) (value.Value, error) {
	var result value.Value
	if vm.stack.top > f.base {
		top, err := vm.stack.pop()
		if err != nil {
			return value.Value{}, err
		}
		if top.Tag == value.Addr || top.Tag == value.VPtr || top.Tag == value.SPtr || top.Tag == value.NPtr {
			deref, err := value.Deref(top)
			if err == nil {
				top = deref
			}
		}
		result = top
	} else {
		result = value.NewNull()
	}
	vm.stack.top = f.base
	return result, nil
}
