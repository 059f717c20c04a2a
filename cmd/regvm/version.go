package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/timewinder-dev/regvm/vm"
)

const version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of regvm",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "regvm version %s (bytecode v%d)\n", version, vm.CurrentVersion)
	},
}
