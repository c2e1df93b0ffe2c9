// Package main provides the advision command: the HTTP API server plus
// offline tools for scoring, repairing and reporting.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/jonathan/advision/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verbose    bool
	configFile string

	// logger is built before every command runs.
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "advision",
	Short: "AdVision campaign assistant",
	Long: "AdVision generates ad copy, keywords, audiences and design ideas for a product " +
		"campaign, scores copy readability, and assembles campaign reports.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to a YAML or JSON config file")
}

// setup applies the config file under the environment and builds the logger.
func setup(_ *cobra.Command, _ []string) error {
	if configFile != "" {
		cfg, err := config.LoadConfig(configFile)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := cfg.Export(); err != nil {
			return err
		}
		verbose = verbose || cfg.Verbose
	}

	l, err := newLogger(verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	logger = l
	return nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
