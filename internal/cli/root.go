// Package cli implements the aegis-text command line tool, which runs the
// similarity engine over local plain-text files without any server
// dependencies.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/RishiKendai/aegis-text/internal/config"
	"github.com/RishiKendai/aegis-text/internal/configs/env"
	"github.com/RishiKendai/aegis-text/internal/logger"
)

var version = "dev"

var (
	logLevel string
	cfg      *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "aegis-text",
	Short: "Detect overlapping text between documents",
	Long: `aegis-text scores every pair of the given plain-text documents for
lexical, vector and line-level overlap and reports the matching passages.

Engine thresholds can be overridden with the same environment variables
the server reads (MATCH_THRESHOLD, LINE_MATCH_THRESHOLD, EXACT_THRESHOLD,
SIMILAR_THRESHOLD, MAX_MATCHES).`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (trace, debug, info, warn, error)")
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	logger.InitWithWriter(logLevel, cmd.ErrOrStderr())

	// a missing .env file is normal for the CLI
	_ = env.LoadEnv()

	loaded, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := loaded.ValidateThresholds(); err != nil {
		return fmt.Errorf("invalid thresholds: %w", err)
	}
	cfg = loaded
	return nil
}

// Execute runs the root command, cancelling in-flight work on SIGINT or SIGTERM.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetOut(os.Stdout)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
