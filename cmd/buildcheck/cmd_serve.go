package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/IshaanBansal2006/p5-sub000/internal/ledger"
	"github.com/IshaanBansal2006/p5-sub000/internal/server"
	"github.com/IshaanBansal2006/p5-sub000/internal/triage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the error triage service",
	Long: `Serves the triage API: error submission (POST /api/report-errors),
ledger reads (GET /api/bugs/:owner/:repo), and the next-suggestion
endpoint (GET /api/next/:owner/:repo).

Classification uses Gemini when GEMINI_API_KEY is configured and falls
back to deterministic severity rules otherwise.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	store, err := ledger.Open(cfg.Server.DatabasePath, logger.Named("ledger"))
	if err != nil {
		return err
	}
	defer store.Close()

	var primary triage.Classifier
	if cfg.Gemini.APIKey != "" {
		timeout, err := time.ParseDuration(cfg.Gemini.Timeout)
		if err != nil {
			timeout = 30 * time.Second
		}
		gemini, err := triage.NewGeminiClassifier(cmd.Context(), cfg.Gemini.APIKey, cfg.Gemini.Model, timeout)
		if err != nil {
			logger.Warn("Gemini classifier unavailable, rule-based classification only", zap.Error(err))
		} else {
			primary = gemini
		}
	} else {
		logger.Info("no Gemini API key configured, rule-based classification only")
	}

	service := triage.NewService(store, primary, logger.Named("triage"))
	srv := server.New(cfg.Server.Addr, service, store, logger.Named("server"))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
