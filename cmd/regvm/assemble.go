package main

import (
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/timewinder-dev/regvm/asm"
	"github.com/timewinder-dev/regvm/codec"
)

var (
	assembleOutput string
	formatFlag     string
)

var assembleCmd = &cobra.Command{
	Use:   "assemble SCRIPT",
	Short: "Build a program from a .star script and write it encoded",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prog, err := asm.LoadFile(args[0])
		if err != nil {
			return err
		}
		if err := prog.Verify(cfg.VM.Registers); err != nil {
			log.Warn().Err(err).Msg("assembled program does not verify")
		}
		format := cfg.Codec.Format
		if formatFlag != "" {
			format = formatFlag
		}
		f, err := codec.ParseFormat(format)
		if err != nil {
			return err
		}
		data, err := codec.Encode(prog, f)
		if err != nil {
			return err
		}
		out := assembleOutput
		if out == "" {
			out = strings.TrimSuffix(args[0], ".star") + ".bin"
		}
		log.Info().Str("file", out).Str("format", f.String()).Int("bytes", len(data)).Msg("writing program")
		return os.WriteFile(out, data, 0o644)
	},
}

func init() {
	assembleCmd.Flags().StringVarP(&assembleOutput, "output", "o", "", "Output file (default SCRIPT with .bin extension)")
	assembleCmd.Flags().StringVar(&formatFlag, "format", "", "Encoding: msgpack or cbor (default from config)")
}
