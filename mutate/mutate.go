package mutate

import (
	"errors"
	"fmt"

	"github.com/pixapprox/pixapprox/vm"
)

// MaxMutationSize is the longest replacement any rewrite rule produces.
const MaxMutationSize = 3

var (
	ErrEmptyProgram = errors.New("cannot mutate an empty program")
	ErrNoVars       = errors.New("variable count must be at least 1")
	ErrUnmutable    = errors.New("instruction cannot be mutated")
)

// Rand is the random source the mutator draws from. *math/rand.Rand
// satisfies it.
type Rand interface {
	// Float32 returns a uniform value in [0, 1).
	Float32() float32
	// Intn returns a uniform value in [0, n).
	Intn(n int) int
}

// Replacement is the instruction sequence spliced in place of the mutated
// instruction. Only the first N entries are meaningful.
type Replacement struct {
	Ops [MaxMutationSize]vm.Op
	N   int
}

func replace(ops ...vm.Op) Replacement {
	var r Replacement
	r.N = copy(r.Ops[:], ops)
	return r
}

func (r Replacement) Slice() []vm.Op {
	return r.Ops[:r.N]
}

// Mutate rewrites one uniformly chosen instruction of p in place.
func Mutate(rng Rand, p *vm.Program, nvars int) {
	if len(p.Code) == 0 {
		panic(ErrEmptyProgram)
	}
	if nvars < 1 {
		panic(ErrNoVars)
	}
	nth := rng.Intn(len(p.Code))
	r := Rewrite(rng, p.Code[nth], nvars)
	p.Code = splice(p.Code, nth, r.Slice())
}

// Rewrite picks the replacement for a single instruction according to its
// class.
func Rewrite(rng Rand, op vm.Op, nvars int) Replacement {
	switch op.Code {
	case vm.CONST, vm.VAR:
		return Operand(rng, op, nvars)
	case vm.ADD, vm.SUB, vm.MUL:
		return BinaryOp(rng)
	case vm.MAX, vm.MIN:
		return ExtremumOp(rng)
	case vm.COS, vm.SIN, vm.ATAN:
		return UnaryOp(rng)
	case vm.DUP:
		return replace(op)
	}
	panic(fmt.Errorf("%w: %s", ErrUnmutable, op.Code))
}

// Operand rewrites a value producer (a constant or a variable reference).
// Every rule still leaves exactly one value on the stack.
func Operand(rng Rand, op vm.Op, nvars int) Replacement {
	choice := rng.Intn(11)
	switch choice {
	case 0:
		return replace(RandomConst(rng))
	case 1:
		return replace(RandomVar(rng, nvars))

	case 2:
		return replace(op, RandomConst(rng), vm.Inst(vm.ADD))
	case 3:
		return replace(RandomConst(rng), op, vm.Inst(vm.ADD))

	case 4:
		return replace(op, RandomConst(rng), vm.Inst(vm.SUB))
	case 5:
		return replace(RandomConst(rng), op, vm.Inst(vm.SUB))

	case 6:
		return replace(op, RandomConst(rng), vm.Inst(vm.MUL))
	case 7:
		return replace(RandomConst(rng), op, vm.Inst(vm.MUL))

	case 8:
		return replace(op, vm.Inst(vm.COS))
	case 9:
		return replace(op, vm.Inst(vm.SIN))
	case 10:
		return replace(op, vm.Inst(vm.ATAN))
	}
	panic(fmt.Sprintf("Operand: choice %d not handled", choice))
}

func BinaryOp(rng Rand) Replacement {
	choice := rng.Intn(3)
	switch choice {
	case 0:
		return replace(vm.Inst(vm.ADD))
	case 1:
		return replace(vm.Inst(vm.SUB))
	case 2:
		return replace(vm.Inst(vm.MUL))
	}
	panic(fmt.Sprintf("BinaryOp: choice %d not handled", choice))
}

// ExtremumOp only swaps between max and min; the mutator never introduces
// them, they come from compiled seed programs.
func ExtremumOp(rng Rand) Replacement {
	if rng.Intn(2) == 0 {
		return replace(vm.Inst(vm.MAX))
	}
	return replace(vm.Inst(vm.MIN))
}

func UnaryOp(rng Rand) Replacement {
	choice := rng.Intn(6)
	switch choice {
	case 0:
		return replace(vm.Inst(vm.COS))
	case 1:
		return replace(vm.Inst(vm.SIN))
	case 2:
		return replace(vm.Inst(vm.ATAN))
	case 3:
		return replace(RandomConst(rng), vm.Inst(vm.ADD))
	case 4:
		return replace(RandomConst(rng), vm.Inst(vm.MUL))
	case 5:
		// Removes the operator, its operand stays as the value.
		return replace()
	}
	panic(fmt.Sprintf("UnaryOp: choice %d not handled", choice))
}

// RandomConst draws a constant uniformly from [-1, 1).
func RandomConst(rng Rand) vm.Op {
	return vm.Const(rng.Float32()*2 - 1)
}

func RandomVar(rng Rand, nvars int) vm.Op {
	return vm.Var(rng.Intn(nvars))
}

// splice replaces code[at] with repl, keeping everything else in order.
func splice(code []vm.Op, at int, repl []vm.Op) []vm.Op {
	switch len(repl) {
	case 0:
		return append(code[:at], code[at+1:]...)
	case 1:
		code[at] = repl[0]
		return code
	}
	grow := len(repl) - 1
	code = append(code, repl[1:]...)
	copy(code[at+1+grow:], code[at+1:len(code)-grow])
	copy(code[at:], repl)
	return code
}
