package vm

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.starlark.net/syntax"
)

type compileContext struct {
	ops []Op
}

func (cc *compileContext) emit(op Op) {
	cc.ops = append(cc.ops, op)
}

// Compile translates an infix expression such as "x * cos(y) + 0.25" into a
// postfix program. The expression uses Starlark expression syntax; only
// numbers, the registers x, y and vN, the operators + - * and the functions
// cos, sin, atan, max and min are accepted.
func Compile(src string) (*Program, error) {
	return CompileReader("<expr>", strings.NewReader(src))
}

func CompileReader(name string, r io.Reader) (*Program, error) {
	opts := syntax.FileOptions{}
	e, err := opts.ParseExpr(name, r, 0)
	if err != nil {
		return nil, err
	}
	cc := &compileContext{}
	if err := cc.expr(e); err != nil {
		return nil, err
	}
	return &Program{Code: cc.ops}, nil
}

func CompilePath(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return CompileReader(path, f)
}

func (cc *compileContext) expr(e syntax.Expr) error {
	switch v := e.(type) {
	case *syntax.BinaryExpr:
		err := cc.expr(v.X)
		if err != nil {
			return err
		}
		err = cc.expr(v.Y)
		if err != nil {
			return err
		}
		return cc.binOp(v.Op)
	case *syntax.CallExpr:
		return cc.call(v)
	case *syntax.Ident:
		return cc.ident(v.Name)
	case *syntax.Literal:
		x, err := litToFloat(v.Value)
		if err != nil {
			return err
		}
		cc.emit(Const(x))
	case *syntax.ParenExpr:
		return cc.expr(unparen(v))
	case *syntax.UnaryExpr:
		return cc.unary(v)
	default:
		return fmt.Errorf("Unhandled expr type %T", e)
	}
	return nil
}

func (cc *compileContext) binOp(op syntax.Token) error {
	switch op {
	case syntax.PLUS: // +
		cc.emit(Inst(ADD))
	case syntax.MINUS: // -
		cc.emit(Inst(SUB))
	case syntax.STAR: // *
		cc.emit(Inst(MUL))
	default:
		return fmt.Errorf("compileContext: Unhandled binary operation %s", op)
	}
	return nil
}

func (cc *compileContext) unary(e *syntax.UnaryExpr) error {
	switch e.Op {
	case syntax.MINUS:
		if lit, ok := unparen(e.X).(*syntax.Literal); ok {
			x, err := litToFloat(lit.Value)
			if err != nil {
				return err
			}
			cc.emit(Const(-x))
			return nil
		}
		// Unary minus: 0 - x
		cc.emit(Const(0))
		if err := cc.expr(e.X); err != nil {
			return err
		}
		cc.emit(Inst(SUB))
	case syntax.PLUS:
		return cc.expr(e.X)
	default:
		return fmt.Errorf("compileContext: Unhandled unary operation %s", e.Op)
	}
	return nil
}

func (cc *compileContext) ident(name string) error {
	switch name {
	case "x":
		cc.emit(Var(0))
		return nil
	case "y":
		cc.emit(Var(1))
		return nil
	}
	if strings.HasPrefix(name, "v") {
		i, err := strconv.Atoi(name[1:])
		if err == nil && i >= 0 {
			cc.emit(Var(i))
			return nil
		}
	}
	return fmt.Errorf("undefined variable %q", name)
}

var unaryCalls = map[string]Opcode{
	"cos":  COS,
	"sin":  SIN,
	"atan": ATAN,
}

var foldCalls = map[string]Opcode{
	"max": MAX,
	"min": MIN,
}

func (cc *compileContext) call(e *syntax.CallExpr) error {
	fn, ok := e.Fn.(*syntax.Ident)
	if !ok {
		return fmt.Errorf("unsupported call target %T", e.Fn)
	}
	if code, ok := unaryCalls[fn.Name]; ok {
		if len(e.Args) != 1 {
			return fmt.Errorf("%s takes exactly one argument, got %d", fn.Name, len(e.Args))
		}
		if err := cc.expr(e.Args[0]); err != nil {
			return err
		}
		cc.emit(Inst(code))
		return nil
	}
	if code, ok := foldCalls[fn.Name]; ok {
		if len(e.Args) < 2 {
			return fmt.Errorf("%s takes at least two arguments, got %d", fn.Name, len(e.Args))
		}
		for i, a := range e.Args {
			if err := cc.expr(a); err != nil {
				return err
			}
			if i > 0 {
				cc.emit(Inst(code))
			}
		}
		return nil
	}
	return fmt.Errorf("unknown function %q", fn.Name)
}

func unparen(e syntax.Expr) syntax.Expr {
	if p, ok := e.(*syntax.ParenExpr); ok {
		return unparen(p.X)
	}
	return e
}

func litToFloat(l any) (float32, error) {
	switch t := l.(type) {
	case int64:
		return float32(t), nil
	case float64:
		return float32(t), nil
	}
	return 0, fmt.Errorf("litToFloat: Unsupported literal value type %T", l)
}
