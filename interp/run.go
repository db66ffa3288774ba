package interp

import (
	"github.com/pixapprox/pixapprox/vm"
	"github.com/rs/zerolog/log"
)

// Eval runs the program against the registers in state and returns the
// single value it leaves on the stack. Malformed programs panic.
func Eval(prog *vm.Program, state *State) float32 {
	var stack Stack
	for _, op := range prog.Code {
		Step(&stack, op, state)
	}
	return stack.Result()
}

// TraceFunc observes the stack after the instruction at pc has executed.
type TraceFunc func(pc int, op vm.Op, stack []float32)

// Trace is Eval with a callback after every instruction.
func Trace(prog *vm.Program, state *State, fn TraceFunc) float32 {
	var stack Stack
	log.Trace().Int("len", prog.Len()).Str("state", state.String()).Msg("Trace: starting evaluation")
	for pc, op := range prog.Code {
		Step(&stack, op, state)
		log.Trace().
			Int("pc", pc).
			Str("opcode", op.Code.String()).
			Int("stack_depth", stack.Len()).
			Interface("stack", stack.Values()).
			Msg("Trace: executed instruction")
		if fn != nil {
			fn(pc, op, stack.Values())
		}
	}
	return stack.Result()
}
