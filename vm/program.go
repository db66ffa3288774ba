package vm

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dgryski/go-farm"
	"github.com/shamaton/msgpack/v2"
)

// StackLimit mirrors the evaluation stack capacity of the interpreter.
const StackLimit = 64

var (
	ErrBadVarIndex = errors.New("variable index has no name")
	ErrMalformed   = errors.New("malformed program")
)

// Op is a single instruction. Value is only meaningful for CONST and Index
// only for VAR.
type Op struct {
	Code  Opcode
	Value float32
	Index int
}

func Const(x float32) Op {
	return Op{Code: CONST, Value: x}
}

func Var(i int) Op {
	return Op{Code: VAR, Index: i}
}

func Inst(code Opcode) Op {
	return Op{Code: code}
}

func (o Op) String() string {
	return o.Render(XYNames)
}

// Render writes the postfix token for the instruction.
func (o Op) Render(names VarNamer) string {
	switch o.Code {
	case CONST:
		return strconv.FormatFloat(float64(o.Value), 'f', -1, 32)
	case VAR:
		return names(o.Index)
	}
	return o.Code.Token()
}

// VarNamer maps a register index to its textual name.
type VarNamer func(i int) string

// XYNames is the two-dimensional naming: 0 is x, 1 is y. Any other index
// panics with ErrBadVarIndex.
func XYNames(i int) string {
	switch i {
	case 0:
		return "x"
	case 1:
		return "y"
	}
	panic(fmt.Errorf("%w: %d (only x and y are named)", ErrBadVarIndex, i))
}

// IndexedNames names registers v0, v1, ... and never fails.
func IndexedNames(i int) string {
	return "v" + strconv.Itoa(i)
}

type Program struct {
	Code []Op
}

// NewSeed returns the minimal program every fresh individual starts from.
func NewSeed() *Program {
	return &Program{Code: []Op{Const(1)}}
}

func (p *Program) Len() int {
	return len(p.Code)
}

func (p *Program) Clone() *Program {
	out := &Program{Code: make([]Op, len(p.Code))}
	copy(out.Code, p.Code)
	return out
}

func (p *Program) Equal(other *Program) bool {
	if len(p.Code) != len(other.Code) {
		return false
	}
	for i := range p.Code {
		if p.Code[i] != other.Code[i] {
			return false
		}
	}
	return true
}

// String renders the program in postfix form with x/y variable names.
func (p *Program) String() string {
	return p.Render(XYNames)
}

func (p *Program) Render(names VarNamer) string {
	var b strings.Builder
	for i, op := range p.Code {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(op.Render(names))
	}
	return b.String()
}

func (p *Program) DebugPrint(w io.Writer) {
	for i, op := range p.Code {
		switch op.Code {
		case CONST:
			fmt.Fprintf(w, "  %03d: %s %g\n", i, op.Code, op.Value)
		case VAR:
			fmt.Fprintf(w, "  %03d: %s %d\n", i, op.Code, op.Index)
		default:
			fmt.Fprintf(w, "  %03d: %s\n", i, op.Code)
		}
	}
}

func (p *Program) Serialize(w io.Writer) error {
	return msgpack.MarshalWrite(w, p)
}

func (p *Program) Deserialize(r io.Reader) error {
	return msgpack.UnmarshalRead(r, p)
}

// Encode returns the msgpack encoding used for hashing and storage.
func (p *Program) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := p.Serialize(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Hash fingerprints the encoded program. Structurally equal programs hash
// equally.
func (p *Program) Hash() (uint64, error) {
	data, err := p.Encode()
	if err != nil {
		return 0, err
	}
	return farm.Hash64(data), nil
}

// Validate checks stack discipline statically: no underflow, no overflow,
// exactly one result, variable indices below nvars and no DROP. Programs
// produced by the mutator and the optimizer are valid by construction; this
// is for programs coming from outside.
func (p *Program) Validate(nvars int) error {
	if len(p.Code) == 0 {
		return fmt.Errorf("%w: empty program", ErrMalformed)
	}
	depth := 0
	for i, op := range p.Code {
		if op.Code >= OpcodeMax {
			return fmt.Errorf("%w: unknown opcode %d at %d", ErrMalformed, op.Code, i)
		}
		if op.Code == DROP {
			return fmt.Errorf("%w: drop at %d is not supported", ErrMalformed, i)
		}
		if op.Code == VAR && (op.Index < 0 || op.Index >= nvars) {
			return fmt.Errorf("%w: variable %d at %d out of range [0, %d)", ErrMalformed, op.Index, i, nvars)
		}
		pops, pushes := op.Code.Effect()
		if depth < pops {
			return fmt.Errorf("%w: stack underflow at %d (%s)", ErrMalformed, i, op.Code)
		}
		depth += pushes - pops
		if depth > StackLimit {
			return fmt.Errorf("%w: stack overflow at %d (%s)", ErrMalformed, i, op.Code)
		}
	}
	if depth != 1 {
		return fmt.Errorf("%w: %d values left on the stack", ErrMalformed, depth)
	}
	return nil
}
