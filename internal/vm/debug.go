package vm

import "github.com/kr/pretty"

// traceFrame renders a frame's locals and live operand-stack window for
// DEBUG-opcode tracing (gated behind -v=2, so normal runs never pay for it).
func (vm *VM) traceFrame(f *frame) string {
	window := vm.stack.data[f.base:vm.stack.top]
	return pretty.Sprintf("fn=%s pc=%d locals=%# v stack=%# v", f.fn.Name, f.pc, f.locals, window)
}
