package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/gookit/color"
	"github.com/spf13/cobra"
	"github.com/timewinder-dev/regvm/interp"
	"github.com/timewinder-dev/regvm/vm"
)

var maxStepsFlag int

var traceCmd = &cobra.Command{
	Use:   "trace FILE",
	Short: "Single-step a program, printing machine state before each instruction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		loader, err := newLoader()
		if err != nil {
			return err
		}
		prog, err := loadProgram(loader, args[0])
		if err != nil {
			return err
		}
		in := interp.New(prog, registerCount())
		return trace(cmd.OutOrStdout(), in, maxStepsFlag)
	},
}

func init() {
	traceCmd.Flags().IntVar(&registersFlag, "registers", 0, "Register file size (default from config)")
	traceCmd.Flags().IntVar(&maxStepsFlag, "max-steps", 0, "Stop after this many steps (0 for no limit)")
}

// trace steps in until the program ends. Program output is interleaved with
// the state dumps on w.
func trace(w io.Writer, in *interp.Interpreter, maxSteps int) error {
	in.Out = w
	for {
		if maxSteps > 0 && in.Steps >= maxSteps {
			fmt.Fprintln(w, color.Yellow.Sprintf("Stopped after %d steps", in.Steps))
			return nil
		}
		fmt.Fprintln(w, "*******")
		prettyPrint(w, in)
		res, err := in.Step()
		if err != nil {
			return fmt.Errorf("pc %03d: %w", in.PC, err)
		}
		if res == interp.EndStep {
			fmt.Fprintln(w, color.Green.Sprint("Finished"))
			return nil
		}
	}
}

func prettyPrint(w io.Writer, in *interp.Interpreter) {
	regs := make([]string, len(in.Registers))
	for i, r := range in.Registers {
		regs[i] = vm.Format(r)
	}
	fmt.Fprintf(w, "Registers: [%s]\n", strings.Join(regs, ", "))
	vars := make([]string, 0, len(in.Variables))
	for _, name := range variableNames(in) {
		vars = append(vars, name+": "+vm.Format(in.Variables[name]))
	}
	fmt.Fprintf(w, "Variables: {%s}\n", strings.Join(vars, ", "))
	fmt.Fprintln(w, strings.TrimRight(in.CallStackString(), "\n"))
	inst, err := in.Program.GetInstruction(in.PC)
	if err != nil {
		fmt.Fprintln(w, "End of instructions")
	} else {
		fmt.Fprintf(w, "NextOp: %s %s\n", color.Cyan.Sprintf("%03d", in.PC), inst)
	}
}
