package main

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gookit/color"
	"github.com/spf13/cobra"
)

var disasmCmd = &cobra.Command{
	Use:   "disasm FILE",
	Short: "Print a listing of a program",
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
		var buf bytes.Buffer
		prog.DebugPrint(&buf)
		w := cmd.OutOrStdout()
		for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
			switch {
			case strings.HasPrefix(line, "***"):
				line = color.Cyan.Sprint(line)
			case strings.HasPrefix(line, "  "):
				addr, rest, _ := strings.Cut(strings.TrimPrefix(line, "  "), ":")
				line = "  " + color.Yellow.Sprint(addr) + ":" + rest
			}
			fmt.Fprintln(w, line)
		}
		return nil
	},
}
