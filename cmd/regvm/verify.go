package main

import (
	"fmt"

	"github.com/gookit/color"
	"github.com/spf13/cobra"
	"github.com/timewinder-dev/regvm/cas"
	"golang.org/x/sync/errgroup"
)

var verifyCmd = &cobra.Command{
	Use:   "verify FILE...",
	Short: "Check programs for out-of-range registers, addresses and operands",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		loader, err := newLoader()
		if err != nil {
			return err
		}
		results := verifyFiles(loader, args, registerCount())

		w := cmd.OutOrStdout()
		failed := 0
		for i, err := range results {
			if err != nil {
				failed++
				fmt.Fprintf(w, "%s %s\n%v\n", color.Red.Sprint("FAIL"), args[i], err)
				continue
			}
			fmt.Fprintf(w, "%s %s\n", color.Green.Sprint("ok"), args[i])
		}
		stats := loader.Stats()
		fmt.Fprintf(w, "%d files, %d failed (cache: %d programs, %d hits)\n", len(args), failed, stats.Size, stats.Hits)
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed verification", failed, len(args))
		}
		return nil
	},
}

func init() {
	verifyCmd.Flags().IntVar(&registersFlag, "registers", 0, "Register file size (default from config)")
}

// verifyFiles loads and verifies every file concurrently. Each slot of the
// result holds that file's error.
func verifyFiles(loader *cas.Loader, paths []string, registers int) []error {
	results := make([]error, len(paths))
	var g errgroup.Group
	g.SetLimit(8)
	for i, path := range paths {
		g.Go(func() error {
			prog, err := loadProgram(loader, path)
			if err == nil {
				err = prog.Verify(registers)
			}
			results[i] = err
			return nil
		})
	}
	_ = g.Wait()
	return results
}
