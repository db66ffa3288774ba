package vm

import (
	"fmt"
	"strconv"
	"strings"
)

var tokenOps = map[string]Opcode{
	"+":    ADD,
	"-":    SUB,
	"*":    MUL,
	"max":  MAX,
	"min":  MIN,
	"cos":  COS,
	"sin":  SIN,
	"atan": ATAN,
	"drop": DROP,
	"dup":  DUP,
}

// ParsePostfix reads the text produced by Program.String or
// Program.Render(IndexedNames) back into a program. It does not check stack
// discipline; call Validate for that.
func ParsePostfix(src string) (*Program, error) {
	fields := strings.Fields(src)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty program", ErrMalformed)
	}
	p := &Program{Code: make([]Op, 0, len(fields))}
	for _, tok := range fields {
		op, err := parseToken(tok)
		if err != nil {
			return nil, err
		}
		p.Code = append(p.Code, op)
	}
	return p, nil
}

func parseToken(tok string) (Op, error) {
	if code, ok := tokenOps[tok]; ok {
		return Inst(code), nil
	}
	switch tok {
	case "x":
		return Var(0), nil
	case "y":
		return Var(1), nil
	}
	if strings.HasPrefix(tok, "v") {
		if i, err := strconv.Atoi(tok[1:]); err == nil && i >= 0 {
			return Var(i), nil
		}
	}
	v, err := strconv.ParseFloat(tok, 32)
	if err != nil {
		return Op{}, fmt.Errorf("%w: unknown token %q", ErrMalformed, tok)
	}
	return Const(float32(v)), nil
}
