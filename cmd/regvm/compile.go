package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/timewinder-dev/regvm/aot"
)

var (
	compileOutput string
	targetFlag    string
)

var compileCmd = &cobra.Command{
	Use:   "compile FILE",
	Short: "Compile a program to NASM assembly",
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
		if cmd.Flags().Changed("target") {
			cfg.AOT.Target = targetFlag
		}
		target, err := cfg.Target()
		if err != nil {
			return err
		}
		src, err := aot.Compile(prog, target)
		if err != nil {
			return err
		}
		if compileOutput == "" {
			fmt.Fprint(cmd.OutOrStdout(), src)
			return nil
		}
		log.Info().Str("file", compileOutput).Str("target", target.String()).Msg("writing assembly")
		return os.WriteFile(compileOutput, []byte(src), 0o644)
	},
}

func init() {
	compileCmd.Flags().StringVarP(&compileOutput, "output", "o", "", "Output .asm file (default stdout)")
	compileCmd.Flags().StringVar(&targetFlag, "target", "win64", "Calling convention: win64 or sysv")
}
