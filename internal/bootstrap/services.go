package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/voxa-app/voxa-api/config"
	"github.com/voxa-app/voxa-api/internal/adapters/stripe"
	"github.com/voxa-app/voxa-api/internal/data"
	"github.com/voxa-app/voxa-api/internal/domain/billing"
	"github.com/voxa-app/voxa-api/internal/observability/metrics"
	"github.com/voxa-app/voxa-api/internal/observability/statsd"
	"github.com/voxa-app/voxa-api/internal/ports"
	"github.com/voxa-app/voxa-api/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Sessions      *service.SessionService
	Accounts      *service.AccountService
	Upgrades      *service.UpgradeService
	Payments      PaymentsContainer
	Observability ObservabilityContainer
}

// PaymentsContainer groups the payment processor wiring.
type PaymentsContainer struct {
	Gateway ports.PaymentGateway // nil when PAYMENTS_SECRET_KEY is unset
	Price   billing.Price
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	Registry  *prometheus.Registry
	Collector *metrics.Collector
	StatsD    *statsd.Client // nil when StatsD emission is disabled
}

// Recorder returns the account metrics fan-out used by the services.
func (o ObservabilityContainer) Recorder() metrics.Recorder {
	var sink statsd.Sink
	if o.StatsD != nil {
		sink = o.StatsD
	}
	return metrics.Emitter{Sink: sink, Collector: o.Collector}
}

// Close releases observability resources.
func (o ObservabilityContainer) Close() error {
	if o.StatsD == nil {
		return nil
	}
	return o.StatsD.Close()
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// NewServices builds the service container from connected infrastructure.
func NewServices(ctx context.Context, deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps require an AppConfig")
	}
	if deps.DB == nil {
		return ServiceContainer{}, errors.New("service deps require a database")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	observability := buildObservability(logger, cfg.Observability)
	telemetry := service.Telemetry{Logger: logger, Metrics: observability.Recorder()}

	creds, err := BuildCredentialDeps(ctx, AuthConfig{
		Auth:        cfg.Auth,
		IsDev:       cfg.IsDev,
		RedisClient: deps.RedisClient,
		KeyPrefix:   cfg.Redis.KeyPrefix,
		Logger:      logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build credential deps: %w", err)
	}

	payments, err := buildPayments(cfg.Payments, logger)
	if err != nil {
		return ServiceContainer{}, err
	}

	profiles := data.NewProfileRepo(deps.DB)

	return ServiceContainer{
		Sessions: service.NewSessionService(service.SessionServiceOptions{
			Credentials: creds,
			Profiles:    profiles,
			Settings:    service.SessionSettings{Telemetry: telemetry},
		}),
		Accounts: service.NewAccountService(service.AccountServiceOptions{
			Verifier:  creds.Verifier,
			Profiles:  profiles,
			Telemetry: telemetry,
		}),
		Upgrades: service.NewUpgradeService(service.UpgradeServiceOptions{
			Profiles: profiles,
			Checkout: service.CheckoutConfig{
				Gateway: payments.Gateway,
				Price:   payments.Price,
				Verify:  cfg.Payments.VerifyUpgrades,
			},
			Telemetry: telemetry,
		}),
		Payments:      payments,
		Observability: observability,
	}, nil
}

// buildObservability registers the Prometheus collector and, when enabled, dials StatsD.
// A StatsD failure is logged and leaves emission disabled.
func buildObservability(logger *slog.Logger, cfg config.ObservabilityConfig) ObservabilityContainer {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	out := ObservabilityContainer{Registry: reg, Collector: metrics.NewCollector(reg)}

	if !cfg.Metrics.IsEnabled() {
		return out
	}
	client, err := statsd.NewClient(statsd.Config{
		Enabled: true,
		Address: cfg.Metrics.StatsdAddress,
		Prefix:  cfg.Metrics.Prefix,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("failed to initialise statsd client", "error", err)
		return out
	}
	out.StatsD = client
	return out
}

func buildPayments(cfg config.PaymentsConfig, logger *slog.Logger) (PaymentsContainer, error) {
	out := PaymentsContainer{Price: billing.Price{Amount: cfg.PremiumAmount, Currency: cfg.Currency}}
	if !cfg.Enabled() {
		logger.Warn("payments not configured; checkout disabled and upgrades are not verified")
		return out, nil
	}
	client, err := stripe.NewClient(stripe.Config{
		SecretKey:  cfg.SecretKey,
		APIBase:    cfg.APIBase,
		Timeout:    cfg.Timeout,
		RetryLimit: 2,
		Logger:     logger,
	})
	if err != nil {
		return out, fmt.Errorf("create payment gateway: %w", err)
	}
	out.Gateway = client
	return out, nil
}
