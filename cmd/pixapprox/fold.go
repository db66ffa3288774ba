package main

import (
	"fmt"
	"strings"

	"github.com/gookit/color"
	"github.com/pixapprox/pixapprox/optimize"
	"github.com/pixapprox/pixapprox/vm"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var postfixFlag bool

var foldCmd = &cobra.Command{
	Use:   "fold EXPR",
	Short: "Fold the constant sub-expressions of a program",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		p, err := parseProgram(strings.Join(args, " "))
		if err != nil {
			log.Fatal().Err(err).Msg("Couldn't parse program")
		}
		folded, stats := optimize.FoldWithStats(p)
		fmt.Printf("%s %s\n", color.Bold.Sprint("before:"), p)
		fmt.Printf("%s %s\n", color.Bold.Sprint("after: "), folded)
		fmt.Println(color.Gray.Sprintf("%d -> %d instructions, %d removed", stats.Before, stats.After, stats.Removed()))
	},
}

func init() {
	foldCmd.Flags().BoolVar(&postfixFlag, "postfix", false, "Read the program as postfix tokens instead of an infix expression")
	renderCmd.Flags().BoolVar(&postfixFlag, "postfix", false, "Read the program as postfix tokens instead of an infix expression")
}

// parseProgram reads src as an infix expression, or as postfix tokens with
// --postfix, and checks it for a two-register machine.
func parseProgram(src string) (*vm.Program, error) {
	var (
		p   *vm.Program
		err error
	)
	if postfixFlag {
		p, err = vm.ParsePostfix(src)
	} else {
		p, err = vm.Compile(src)
	}
	if err != nil {
		return nil, err
	}
	return p, p.Validate(2)
}
