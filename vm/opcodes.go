package vm

type Opcode uint32

const (
	// PRE-STACK ... TOS+1 TOS | OP | POST-STACK |
	CONST Opcode = iota //  | push Value | A
	VAR                 //  | push vars[Index] | A

	ADD // A B | C = A + B | C
	SUB // A B | C = A - B | C
	MUL // A B | C = A * B | C
	MAX // A B | C = max(A, B) | C
	MIN // A B | C = min(A, B) | C

	COS  // A | B = cos(A * 2pi) | B
	SIN  // A | B = sin(A * 2pi) | B
	ATAN // A | B = atan(A) | B

	DROP // A B | | A  (reserved, never evaluated)
	DUP  // A | | A A

	OpcodeMax
)

func (o Opcode) String() string {
	switch o {
	case CONST:
		return "CONST"
	case VAR:
		return "VAR"
	case ADD:
		return "ADD"
	case SUB:
		return "SUB"
	case MUL:
		return "MUL"
	case MAX:
		return "MAX"
	case MIN:
		return "MIN"
	case COS:
		return "COS"
	case SIN:
		return "SIN"
	case ATAN:
		return "ATAN"
	case DROP:
		return "DROP"
	case DUP:
		return "DUP"
	}
	panic("Unnamed opcode")
}

// Token is the postfix spelling of an operator. Operands have no fixed token.
func (o Opcode) Token() string {
	switch o {
	case ADD:
		return "+"
	case SUB:
		return "-"
	case MUL:
		return "*"
	case MAX:
		return "max"
	case MIN:
		return "min"
	case COS:
		return "cos"
	case SIN:
		return "sin"
	case ATAN:
		return "atan"
	case DROP:
		return "drop"
	case DUP:
		return "dup"
	}
	panic("Opcode " + o.String() + " has no token")
}

// Effect reports how many values the opcode pops and pushes.
func (o Opcode) Effect() (pops, pushes int) {
	switch o {
	case CONST, VAR:
		return 0, 1
	case ADD, SUB, MUL, MAX, MIN:
		return 2, 1
	case COS, SIN, ATAN:
		return 1, 1
	case DROP:
		return 1, 0
	case DUP:
		return 1, 2
	}
	panic("Unnamed opcode")
}

func (o Opcode) IsOperand() bool {
	return o == CONST || o == VAR
}

func (o Opcode) IsBinary() bool {
	switch o {
	case ADD, SUB, MUL, MAX, MIN:
		return true
	}
	return false
}

func (o Opcode) IsUnary() bool {
	switch o {
	case COS, SIN, ATAN:
		return true
	}
	return false
}
