package controller

import (
	"net/http"

	"github.com/cassiomorais/pixgateway/internal/infrastructure/observability"
	"github.com/cassiomorais/pixgateway/internal/infrastructure/providers"
	customMW "github.com/cassiomorais/pixgateway/internal/middleware"
	"github.com/cassiomorais/pixgateway/internal/service"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Mount points of the client routes. The second keeps existing frontends
// that call the serverless function paths working unchanged.
const (
	APIPrefix    = "/api"
	LegacyPrefix = "/.netlify/functions"
)

type RouterDeps struct {
	PixService      *service.PixService
	IdentityService *service.IdentityService
	Logger          zerolog.Logger
	ServiceName     string

	// Metrics and Gatherer are optional. A nil Gatherer serves the default
	// Prometheus registry.
	Metrics  *observability.Metrics
	Gatherer prometheus.Gatherer

	// Breakers, when set, lets readiness report an open gateway circuit.
	Breakers *providers.Breakers

	// RateLimitPerMinute of 0 disables per-IP rate limiting.
	RateLimitPerMinute int
}

func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(customMW.RequestLogger(deps.Logger))
	r.Use(chimw.Recoverer)
	r.Use(customMW.CORS())
	r.Use(customMW.SecurityHeaders())
	r.Use(customMW.Tracing(deps.ServiceName))
	if deps.Metrics != nil {
		r.Use(customMW.Metrics(deps.Metrics))
	}

	healthH := NewHealthController(deps.PixService, deps.Breakers)
	pixH := NewPixController(deps.PixService)
	identityH := NewIdentityController(deps.IdentityService)

	r.Get("/health", healthH.Health)
	r.Get("/health/live", healthH.Liveness)
	r.Get("/health/ready", healthH.Readiness)

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// One limiter shared by both mounts, so a client cannot double its quota
	// by alternating prefixes.
	var limit func(http.Handler) http.Handler
	if deps.RateLimitPerMinute > 0 {
		limit = customMW.RateLimit(deps.RateLimitPerMinute)
	}

	routes := func(r chi.Router) {
		if limit != nil {
			r.Use(limit)
		}

		// Payments
		r.Post("/pix", pixH.CreatePix)
		r.Get("/check-payment", pixH.CheckPayment)
		r.Post("/check-payment", pixH.CheckPayment)

		// Identity
		r.Get("/consulta", identityH.Consulta)
	}
	r.Route(APIPrefix, routes)
	r.Route(LegacyPrefix, routes)

	return r
}
