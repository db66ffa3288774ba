package main

import (
	"fmt"

	"github.com/pixapprox/pixapprox"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of pixapprox",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pixapprox version %s\n", pixapprox.Version)
	},
}
