package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/gookit/color"
	"github.com/spf13/cobra"
	"github.com/timewinder-dev/regvm/interp"
	"github.com/timewinder-dev/regvm/vm"
)

var (
	registersFlag int
	stateFlag     bool
)

var runCmd = &cobra.Command{
	Use:   "run FILE",
	Short: "Run an encoded program or a .star builder script",
	Args:  cobra.ExactArgs(1),
	RunE:  runCommand,
}

func init() {
	runCmd.Flags().IntVar(&registersFlag, "registers", 0, "Register file size (default from config)")
	runCmd.Flags().BoolVar(&stateFlag, "state", false, "Dump registers and variables when the run ends")
}

func registerCount() int {
	if registersFlag > 0 {
		return registersFlag
	}
	return cfg.VM.Registers
}

func runCommand(cmd *cobra.Command, args []string) error {
	loader, err := newLoader()
	if err != nil {
		return err
	}
	prog, err := loadProgram(loader, args[0])
	if err != nil {
		return err
	}
	in := interp.New(prog, registerCount())
	in.Out = cmd.OutOrStdout()

	err = in.Run()
	if stateFlag || err != nil {
		dumpState(in)
	}
	if err != nil {
		return fmt.Errorf("pc %03d: %w", in.PC, err)
	}
	return nil
}

func dumpState(in *interp.Interpreter) {
	fmt.Fprintln(os.Stderr, color.Cyan.Sprintf("pc %d after %d steps", in.PC, in.Steps))
	for i, r := range in.Registers {
		if r == vm.Null {
			continue
		}
		fmt.Fprintf(os.Stderr, "  r%-3d %s\n", i, vm.Describe(r))
	}
	for _, name := range variableNames(in) {
		fmt.Fprintf(os.Stderr, "  %-4s %s\n", name, vm.Describe(in.Variables[name]))
	}
	fmt.Fprintln(os.Stderr, strings.TrimRight(in.CallStackString(), "\n"))
}

func variableNames(in *interp.Interpreter) []string {
	names := make([]string, 0, len(in.Variables))
	for name := range in.Variables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
