package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/pixapprox/pixapprox/interp"
	"github.com/pixapprox/pixapprox/vm"
)

var (
	expr    = flag.String("expr", "", "Infix expression to evaluate")
	file    = flag.String("file", "", "File holding the expression")
	postfix = flag.Bool("postfix", false, "Read the program as postfix tokens")
	xFlag   = flag.Float64("x", 0, "Value of x, in [-1, 1]")
	yFlag   = flag.Float64("y", 0, "Value of y, in [-1, 1]")
)

func main() {
	flag.Parse()
	prog, err := load()
	if err != nil {
		log.Fatalf("couldn't compile: %s", err)
	}
	if err := prog.Validate(2); err != nil {
		log.Fatalf("invalid program: %s", err)
	}
	trace(prog, float32(*xFlag), float32(*yFlag))
}

func load() (*vm.Program, error) {
	switch {
	case *file != "":
		return vm.CompilePath(*file)
	case *expr == "":
		log.Fatal("--expr or --file is required")
	case *postfix:
		return vm.ParsePostfix(*expr)
	}
	return vm.Compile(*expr)
}

func trace(prog *vm.Program, x, y float32) {
	env := interp.NewState(2)
	env.Set(x, y)
	prog.DebugPrint(log.Writer())
	fmt.Printf("Variables: %s\n", env)
	v := interp.Trace(prog, env, func(pc int, op vm.Op, stack []float32) {
		fmt.Println("*******")
		fmt.Printf("Op %03d: %s\n", pc, op)
		fmt.Printf("Stack: %s\n", formatStack(stack))
	})
	fmt.Println("*******")
	fmt.Printf("Result: %g\n", v)
}

func formatStack(stack []float32) string {
	parts := make([]string, len(stack))
	for i, v := range stack {
		parts[i] = fmt.Sprintf("%g", v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
