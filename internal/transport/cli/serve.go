package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/drugfacts/internal/corpus/watch"
	logpkg "github.com/kailas-cloud/drugfacts/internal/logger"
	chiTransport "github.com/kailas-cloud/drugfacts/internal/transport/chi"
	"github.com/kailas-cloud/drugfacts/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the HTTP API server.

Routes:
  GET  /         landing page
  POST /ask      grounded answer (requires DEEPSEEK_API_KEY)
  GET  /search   retrieval only
  GET  /health   liveness and dependency checks
  GET  /metrics  Prometheus metrics`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, env, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting drugfacts API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Bool("llm_enabled", cfg.LLMEnabled()),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg, logger, true)
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.Corpus.Watch {
		w, err := watch.New(cfg.Corpus.Path, time.Duration(cfg.Corpus.DebounceMS)*time.Millisecond, a.retrieval, logger)
		if err != nil {
			logger.Warn("Corpus watcher disabled", zap.Error(err))
		} else {
			go func() {
				if err := w.Run(ctx); err != nil {
					logger.Error("Corpus watcher stopped", zap.Error(err))
				}
			}()
			logger.Info("Watching corpus for changes", zap.String("path", cfg.Corpus.Path))
		}
	}

	server := chiTransport.NewServer(a.answers, a.retrieval, a.health, cfg.Retrieval.TopK, logger).
		WithUsage(a.usage)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Router(),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}
