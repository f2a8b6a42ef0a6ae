package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/voxa-app/voxa-api/config"
)

// ServiceOrchestrationConfig contains everything needed to run the service.
type ServiceOrchestrationConfig struct {
	Config      *config.AppConfig
	Services    ServiceContainer
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// RunWithShutdown starts the HTTP server and blocks until SIGINT/SIGTERM or a
// server failure, then shuts down gracefully.
func RunWithShutdown(ctx context.Context, cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil {
		return errors.New("service orchestration config missing AppConfig")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	errCh := make(chan error, 1)
	srv := StartHTTPServer(&HTTPServerConfig{
		Config:      cfg.Config,
		Services:    cfg.Services,
		DB:          cfg.DB,
		RedisClient: cfg.RedisClient,
		Logger:      logger,
	}, errCh)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	var runErr error
	select {
	case <-quit:
		logger.InfoContext(ctx, "shutting down")
	case runErr = <-errCh:
		logger.ErrorContext(ctx, "service error", "error", runErr)
	case <-ctx.Done():
	}

	stopErr := ShutdownHTTPServer(context.WithoutCancel(ctx), srv, logger)
	if closeErr := cfg.Services.Observability.Close(); closeErr != nil {
		logger.ErrorContext(ctx, "close statsd client failed", "error", closeErr)
	}
	return errors.Join(runErr, stopErr)
}
