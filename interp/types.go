package interp

import (
	"errors"
	"fmt"
)

// StackCapacity is the number of slots of the evaluation stack.
const StackCapacity = 64

// MaxVars bounds the register file of a State.
const MaxVars = 8

var (
	ErrStackUnderflow = errors.New("stack underflow")
	ErrStackOverflow  = errors.New("stack overflow")
	ErrBadResult      = errors.New("stack must hold exactly one value at the end of a program")
	ErrUnimplemented  = errors.New("instruction is not implemented")
	ErrBadVar         = errors.New("variable index out of range")
	ErrTooManyVars    = errors.New("too many variables")
)

// Stack is the fixed-size evaluation stack. The zero value is empty and
// ready to use; it never allocates.
type Stack struct {
	slots [StackCapacity]float32
	top   int
}

func (s *Stack) Push(v float32) {
	if s.top >= StackCapacity {
		panic(ErrStackOverflow)
	}
	s.slots[s.top] = v
	s.top++
}

func (s *Stack) Pop() float32 {
	if s.top == 0 {
		panic(ErrStackUnderflow)
	}
	s.top--
	return s.slots[s.top]
}

func (s *Stack) Peek() float32 {
	if s.top == 0 {
		panic(ErrStackUnderflow)
	}
	return s.slots[s.top-1]
}

func (s *Stack) Len() int {
	return s.top
}

// Values returns the live part of the stack, bottom first. The slice aliases
// the stack.
func (s *Stack) Values() []float32 {
	return s.slots[:s.top]
}

func (s *Stack) Reset() {
	s.top = 0
}

// Result pops the single value a well-formed program leaves behind.
func (s *Stack) Result() float32 {
	if s.top != 1 {
		panic(fmt.Errorf("%w: had %d", ErrBadResult, s.top))
	}
	return s.Pop()
}

// State is the register file a program reads its inputs from. Vars beyond
// N are unused.
type State struct {
	Vars [MaxVars]float32
	N    int
}
