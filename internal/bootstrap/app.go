package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/cassiomorais/pixgateway/internal/infrastructure/config"
	"github.com/cassiomorais/pixgateway/internal/infrastructure/observability"
	"github.com/cassiomorais/pixgateway/internal/infrastructure/providers"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// App holds the process-wide infrastructure shared by every request.
type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Metrics  *observability.Metrics
	Client   *http.Client
	Breakers *providers.Breakers

	tracer *sdktrace.TracerProvider
}

func New(serviceName string, metricsNamespace string) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := observability.InitLogger(serviceName, cfg.Observability.LogLevel, os.Stdout)
	log.Logger = logger
	logger.Info().Str("service", serviceName).Msg("Starting")

	app := &App{Config: cfg, Logger: logger}

	if cfg.Observability.EnableTracing {
		tp, err := observability.InitTracer(serviceName, cfg.Observability.JaegerEndpoint)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize tracer, continuing without tracing")
		} else {
			app.tracer = tp
			logger.Info().Msg("Tracing enabled")
		}
	}

	if cfg.Observability.EnableMetrics {
		app.Metrics = observability.NewMetrics(metricsNamespace, nil)
		logger.Info().Msg("Metrics initialized")
	}

	app.Client = providers.NewHTTPClient(cfg.Providers.Timeout)
	app.Breakers = providers.NewBreakers(cfg.Providers.CircuitBreakerThreshold, cfg.Providers.CircuitBreakerTimeout, app.Metrics)

	if !cfg.Gateway.Configured() {
		logger.Warn().Msg("Payment gateway credentials missing, payment routes will answer 500 until configured")
	}

	return app, nil
}

// AssetGateway builds the payment gateway client.
func (a *App) AssetGateway() *providers.AssetGateway {
	return providers.NewAssetGateway(a.Config.Gateway, a.Client, a.Breakers, a.Metrics)
}

// CPFLookup builds the identity lookup client.
func (a *App) CPFLookup() *providers.CPFLookup {
	return providers.NewCPFLookup(a.Config.Identity, a.Client, a.Breakers, a.Metrics)
}

// Close flushes pending spans.
func (a *App) Close(ctx context.Context) {
	if a.tracer != nil {
		observability.Shutdown(ctx, a.tracer)
	}
}
