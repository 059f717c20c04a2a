package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/timewinder-dev/regvm/config"
)

var (
	logLevel   string
	configPath string

	cfg = config.Default()
)

var rootCmd = &cobra.Command{
	Use:           "regvm",
	Short:         "Register-based bytecode virtual machine",
	Long:          "regvm runs, traces, assembles, disassembles and compiles register VM programs.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

		var err error
		if configPath != "" {
			cfg, err = config.Load(configPath, false)
		} else {
			cfg, err = config.Load(config.DefaultPath, true)
		}
		if err != nil {
			return err
		}

		// --log-level wins over the config file
		if cmd.Flags().Changed("log-level") {
			cfg.Log.Level = logLevel
		}
		level, err := cfg.LogLevel()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid log level '%s', using 'info'\n", cfg.Log.Level)
			level = zerolog.InfoLevel
		}
		zerolog.SetGlobalLevel(level)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Set log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a regvm.toml (default ./"+config.DefaultPath+" if present)")
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(traceCmd)
	rootCmd.AddCommand(assembleCmd)
	rootCmd.AddCommand(disasmCmd)
	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(verifyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		reportError(err)
		os.Exit(1)
	}
}
