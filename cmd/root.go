package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kamusis/orient-cli/internal/config"
	"github.com/kamusis/orient-cli/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:          "orient",
	Short:        "Orient: study-program recommendations for students",
	SilenceUsage: true, // don't print usage on operational errors
	Long: `Orient ranks programs from a local catalog against a student profile
(level, objective, domains, grades, geography, budget) and lays out the
remaining study stages with one shortlist per phase.

Configuration lives in ~/.orient/orient.yaml; run 'orient init' first.`,
	PersistentPreRunE: setupLogger,
}

var flagLogLevel string

// logger is replaced by setupLogger before any command runs.
var logger = zap.NewNop()

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Override log_level (debug, info, warn, error)")
}

// setupLogger builds the process logger from orient.yaml, falling back to
// the defaults when no config exists yet.
func setupLogger(cmd *cobra.Command, _ []string) error {
	level, format := "warn", "console"
	if cfg, err := config.Load(); err == nil {
		if cfg.LogLevel != "" {
			level = cfg.LogLevel
		}
		if cfg.LogFormat != "" {
			format = cfg.LogFormat
		}
	}
	if cmd.Flags().Changed("log-level") {
		level = flagLogLevel
	}
	l, err := logging.New(level, format)
	if err != nil {
		return fmt.Errorf("cannot build logger: %w", err)
	}
	logger = l
	return nil
}

// Execute is called by main.go.
func Execute() {
	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		printErr("", err.Error())
		os.Exit(1)
	}
}
