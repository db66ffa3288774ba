package interp

import (
	"math"

	"github.com/pixapprox/pixapprox/vm"
)

// tau scales trigonometric operands: cos and sin take fractions of a turn.
const tau = float32(2 * math.Pi)

// Step executes one instruction against the stack.
func Step(stack *Stack, op vm.Op, state *State) {
	switch op.Code {
	case vm.CONST:
		stack.Push(op.Value)
	case vm.VAR:
		if op.Index < 0 || op.Index >= state.N {
			panic(ErrBadVar)
		}
		stack.Push(state.Vars[op.Index])
	case vm.ADD, vm.SUB, vm.MUL, vm.MAX, vm.MIN:
		a := stack.Pop()
		b := stack.Pop()
		stack.Push(ApplyBinary(op.Code, b, a))
	case vm.COS, vm.SIN, vm.ATAN:
		a := stack.Pop()
		stack.Push(ApplyUnary(op.Code, a))
	case vm.DUP:
		a := stack.Pop()
		stack.Push(a)
		stack.Push(a)
	case vm.DROP:
		panic(ErrUnimplemented)
	default:
		panic(ErrUnimplemented)
	}
}

// ApplyBinary computes b OP a, where a is the operand popped first (the one
// written last in postfix order).
func ApplyBinary(code vm.Opcode, b, a float32) float32 {
	switch code {
	case vm.ADD:
		return b + a
	case vm.SUB:
		return b - a
	case vm.MUL:
		return b * a
	case vm.MAX:
		return maxf(b, a)
	case vm.MIN:
		return minf(b, a)
	}
	panic(ErrUnimplemented)
}

func ApplyUnary(code vm.Opcode, a float32) float32 {
	switch code {
	case vm.COS:
		return float32(math.Cos(float64(a * tau)))
	case vm.SIN:
		return float32(math.Sin(float64(a * tau)))
	case vm.ATAN:
		return float32(math.Atan(float64(a)))
	}
	panic(ErrUnimplemented)
}

// maxf and minf prefer the number when one side is NaN.
func maxf(a, b float32) float32 {
	if a != a {
		return b
	}
	if b != b {
		return a
	}
	if a > b {
		return a
	}
	return b
}

func minf(a, b float32) float32 {
	if a != a {
		return b
	}
	if b != b {
		return a
	}
	if a < b {
		return a
	}
	return b
}
