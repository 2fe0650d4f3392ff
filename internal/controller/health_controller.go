package controller

import (
	"net/http"

	"github.com/cassiomorais/pixgateway/internal/infrastructure/providers"
	"github.com/sony/gobreaker/v2"
)

// readiness reports whether the service can serve payment routes.
type readiness interface {
	Configured() bool
}

type HealthController struct {
	gateway  readiness
	breakers *providers.Breakers
}

// NewHealthController builds the health handlers. breakers may be nil.
func NewHealthController(gateway readiness, breakers *providers.Breakers) *HealthController {
	return &HealthController{gateway: gateway, breakers: breakers}
}

func (h *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (h *HealthController) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "alive"})
}

// Readiness fails while every payment route would fail: credentials are
// missing, or the gateway breaker is open and rejects calls outright.
func (h *HealthController) Readiness(w http.ResponseWriter, r *http.Request) {
	if !h.gateway.Configured() {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status: "not ready",
			Reason: "payment gateway credentials not configured",
		})
		return
	}

	if h.gatewayCircuitOpen() {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status: "not ready",
			Reason: "payment gateway circuit breaker open",
		})
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{Status: "ready"})
}

func (h *HealthController) gatewayCircuitOpen() bool {
	if h.breakers == nil {
		return false
	}
	cb, err := h.breakers.Get(providers.AssetProviderName)
	if err != nil {
		// No gateway calls have been wired yet.
		return false
	}
	return cb.State() == gobreaker.StateOpen
}
