package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/skdltmxn/eazresolve/config"
	"github.com/skdltmxn/eazresolve/devirt"
)

var (
	outputFile string
	configFile string
	verbose    bool

	output io.Writer
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "eazresolve",
	Short: "Operand resolver for virtualized .NET methods",
	Long: `eazresolve decodes the operand stream of virtualized .NET methods
and resolves its records back to types, fields, methods and strings.

Streams must already be decrypted. Module metadata is described in a
YAML file listing the module's types, type references, user strings
and the external assemblies it may load.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Default()
		if configFile != "" {
			c, err := config.Load(configFile)
			if err != nil {
				return err
			}
			cfg = c
		}

		l, err := cfg.NewLogger(verbose)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		logger = l
		devirt.SetLogger(logger.Named("devirt"))

		if outputFile != "" {
			f, err := os.Create(outputFile)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			output = f
		} else {
			output = os.Stdout
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if f, ok := output.(*os.File); ok && f != os.Stdout {
			f.Close()
		}
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "write output to file instead of stdout")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "TOML configuration file")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")

	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(descriptorCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(infoCmd)
}
