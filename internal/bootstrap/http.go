package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/voxa-app/voxa-api/config"
	httpx "github.com/voxa-app/voxa-api/internal/http"
	"github.com/voxa-app/voxa-api/internal/observability/metrics"
	"golang.org/x/time/rate"
)

// HTTPServerConfig contains configuration for HTTP server.
type HTTPServerConfig struct {
	Config      *config.AppConfig
	Services    ServiceContainer
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// HTTPServer is a running server plus the resources it owns.
type HTTPServer struct {
	Server  *http.Server
	limiter *httpx.RateLimiter
}

// StartHTTPServer builds the handler chain and starts listening in the background.
// Listener failures are sent to errCh.
func StartHTTPServer(cfg *HTTPServerConfig, errCh chan<- error) *HTTPServer {
	if cfg == nil || cfg.Config == nil {
		return nil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config

	limiter := httpx.NewRateLimiter(httpx.RateLimiterConfig{
		Rate:  rate.Limit(appCfg.HTTP.AuthRateLimit),
		Burst: appCfg.HTTP.AuthRateBurst,
	}, logger)

	services := httpx.RouterServices{
		Sessions:       cfg.Services.Sessions,
		Accounts:       cfg.Services.Accounts,
		Upgrades:       cfg.Services.Upgrades,
		Health:         healthChecks(cfg.DB, cfg.RedisClient),
		Metrics:        cfg.Services.Observability.Collector,
		MetricsHandler: metrics.Handler(cfg.Services.Observability.Registry),
		AuthLimiter:    limiter,
		Cookies: httpx.CookieOptions{
			Domain: appCfg.HTTP.CookieDomain,
			Secure: appCfg.SecureCookies(),
		},
		Checkout: httpx.CheckoutView{
			PublishableKey: appCfg.Payments.PublishableKey,
			Price:          cfg.Services.Payments.Price,
		},
		IsDev:  appCfg.IsDev,
		Logger: logger,
	}

	handler := buildHTTPHandler(logger, services)
	return &HTTPServer{
		Server:  startServer(logger, handler, appCfg.HTTP.Addr, errCh),
		limiter: limiter,
	}
}

// healthChecks probes the profile database and the session store.
func healthChecks(db *sql.DB, rdb redis.UniversalClient) map[string]httpx.HealthCheck {
	checks := make(map[string]httpx.HealthCheck, 2)
	if db != nil {
		checks["postgres"] = db.PingContext
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	return checks
}

// buildHTTPHandler wraps the router. Order: Recover -> Logging -> SecurityHeaders -> Router.
func buildHTTPHandler(logger *slog.Logger, services httpx.RouterServices) http.Handler {
	h := httpx.NewRouter(services)
	h = httpx.SecurityHeaders()(h)
	h = httpx.Logging(logger)(h)
	h = httpx.Recover(logger)(h)
	return h
}

func startServer(logger *slog.Logger, handler http.Handler, addr string, errCh chan<- error) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
			if errCh != nil {
				errCh <- err
			}
		}
	}()

	return server
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(ctx context.Context, srv *HTTPServer, logger *slog.Logger) error {
	if srv == nil || srv.Server == nil {
		return nil
	}
	if logger != nil {
		logger.InfoContext(ctx, "shutting down HTTP server")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	err := srv.Server.Shutdown(shutdownCtx)
	if srv.limiter != nil {
		srv.limiter.Stop()
	}
	if err != nil {
		return err
	}

	if logger != nil {
		logger.InfoContext(ctx, "HTTP server stopped")
	}
	return nil
}
