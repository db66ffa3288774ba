package optimize

import (
	"github.com/pixapprox/pixapprox/interp"
	"github.com/pixapprox/pixapprox/vm"
)

// Stats describes the effect of a folding pass.
type Stats struct {
	Before int
	After  int
}

func (s Stats) Removed() int {
	return s.Before - s.After
}

// deque is the output buffer; its back is the top of the simulated stack.
type deque []vm.Op

func (d deque) topIsOneConstant() bool {
	return len(d) >= 1 && d[len(d)-1].Code == vm.CONST
}

func (d deque) topIsTwoConstants() bool {
	return len(d) >= 2 && d[len(d)-1].Code == vm.CONST && d[len(d)-2].Code == vm.CONST
}

func (d *deque) pushBack(op vm.Op) {
	*d = append(*d, op)
}

func (d *deque) popConst() float32 {
	n := len(*d)
	if n == 0 || (*d)[n-1].Code != vm.CONST {
		panic("popConst: Not a const on top")
	}
	x := (*d)[n-1].Value
	*d = (*d)[:n-1]
	return x
}

// Fold collapses every sub-expression whose operands are all constants into
// a single constant. The result evaluates to the same value as p for every
// state. DROP panics with interp.ErrUnimplemented.
func Fold(p *vm.Program) *vm.Program {
	out, _ := FoldWithStats(p)
	return out
}

func FoldWithStats(p *vm.Program) (*vm.Program, Stats) {
	code := make(deque, 0, len(p.Code))
	for _, op := range p.Code {
		switch op.Code {
		case vm.CONST, vm.VAR:
			code.pushBack(op)
		case vm.ADD, vm.SUB, vm.MUL, vm.MAX, vm.MIN:
			if code.topIsTwoConstants() {
				a := code.popConst()
				b := code.popConst()
				code.pushBack(vm.Const(interp.ApplyBinary(op.Code, b, a)))
			} else {
				code.pushBack(op)
			}
		case vm.COS, vm.SIN, vm.ATAN:
			if code.topIsOneConstant() {
				a := code.popConst()
				code.pushBack(vm.Const(interp.ApplyUnary(op.Code, a)))
			} else {
				code.pushBack(op)
			}
		case vm.DUP:
			if code.topIsOneConstant() {
				a := code.popConst()
				code.pushBack(vm.Const(a))
				code.pushBack(vm.Const(a))
			} else {
				code.pushBack(op)
			}
		case vm.DROP:
			panic(interp.ErrUnimplemented)
		default:
			panic(interp.ErrUnimplemented)
		}
	}
	out := &vm.Program{Code: []vm.Op(code)}
	return out, Stats{Before: len(p.Code), After: len(out.Code)}
}
