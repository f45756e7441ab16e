// Package cmd defines the CLI commands for the logoharvest executable.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/brandscope/logoharvest/internal/config"
	"github.com/brandscope/logoharvest/internal/logging"
)

var (
	cfgFile string
	cfg     config.Config
	logger  *zap.Logger
)

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logoharvest",
		Short: "Harvest and deduplicate company logos from a website dataset",
		Long: `logoharvest builds a canonical library of company logos from a noisy
dataset of website records. It normalizes identifiers, fetches each site's
logo under a bounded concurrency cap, rejects perceptual duplicates, and
writes the survivors as PNG files. Downstream commands analyze the finished
library by color, minimalism, and emotion, or render color palettes.`,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cfg, err = config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err = logging.New(cfg.Logging.Development)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file")

	cmd.AddCommand(newHarvestCmd())
	cmd.AddCommand(newAnalyzeCmd())
	cmd.AddCommand(newPaletteCmd())
	return cmd
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}
