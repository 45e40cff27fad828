package bootstrap

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// shutdownWaitTimeout bounds how long graceful shutdown may take before the
// process exits anyway.
const shutdownWaitTimeout = 15 * time.Second

// RunConfig contains dependencies for running the server until shutdown.
type RunConfig struct {
	Context context.Context
	Server  *http.Server
	Logger  *slog.Logger
}

// RunUntilShutdown blocks until SIGINT or SIGTERM (or context cancellation),
// then gracefully stops the HTTP server.
func RunUntilShutdown(cfg RunConfig) error {
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("context canceled, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWaitTimeout)
	defer cancel()

	return ShutdownHTTPServer(ShutdownConfig{
		Context: shutdownCtx,
		Server:  cfg.Server,
		Logger:  logger,
	})
}
