// buildcheck runs a project's verification tasks (lint, typecheck, build,
// test, website smoke check), reports detected errors to the triage service,
// and serves the triage API.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/IshaanBansal2006/p5-sub000/internal/config"
)

// errChecksFailed signals a failed run without extra cobra error output; the
// per-task breakdown has already been printed.
var errChecksFailed = errors.New("checks failed")

var (
	verbose    bool
	configPath string
	root       string

	logger *zap.Logger
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "buildcheck",
	Short: "Build verification task runner and error triage pipeline",
	Long: `buildcheck runs a configurable set of verification tasks against a local
project (lint, typecheck, build, test, and a headless-browser website
check) and submits any detected issues to the triage service, which
deduplicates them into a durable per-repository bug ledger.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; missing files are fine.
		_ = godotenv.Load()

		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg = zap.NewDevelopmentConfig()
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		path := configPath
		if path == "" {
			path = config.DefaultPath(root)
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to buildcheck.yaml")
	rootCmd.PersistentFlags().StringVar(&root, "root", ".", "project root to verify")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(nextCmd)
	rootCmd.AddCommand(bugsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errChecksFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
