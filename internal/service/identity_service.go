package service

import (
	"context"

	"github.com/cassiomorais/pixgateway/internal/domain/cpf"
	domainErrors "github.com/cassiomorais/pixgateway/internal/domain/errors"
	"github.com/cassiomorais/pixgateway/internal/domain/fields"
	"github.com/cassiomorais/pixgateway/internal/infrastructure/observability"
	"github.com/cassiomorais/pixgateway/internal/infrastructure/providers"
	"github.com/rs/zerolog"
)

// IdentityService looks up CPF records.
type IdentityService struct {
	provider IdentityProvider
	metrics  *observability.Metrics
	logger   zerolog.Logger
}

// NewIdentityService creates a new IdentityService. metrics may be nil.
func NewIdentityService(provider IdentityProvider, metrics *observability.Metrics, logger zerolog.Logger) *IdentityService {
	return &IdentityService{provider: provider, metrics: metrics, logger: logger}
}

// Lookup normalizes the CPF, queries the provider and extracts the record.
func (s *IdentityService) Lookup(ctx context.Context, req LookupCPFRequest) (*cpf.Record, error) {
	q := lookupQuery{CPF: cpf.Normalize(req.CPF)}
	if err := validate.Struct(q); err != nil {
		s.count("invalid")
		return nil, domainErrors.NewValidationError("cpf", "Informe o CPF")
	}

	resp, err := s.provider.Lookup(ctx, q.CPF)
	if err != nil {
		s.count("error")
		s.logger.Warn().Err(err).Msg("cpf lookup failed")
		return nil, err
	}
	if !resp.OK() {
		s.count("upstream_error")
		s.logger.Warn().Int("status", resp.StatusCode).Msg("cpf lookup rejected")
		return nil, domainErrors.NewUpstreamError(providers.CPFProviderName, resp.StatusCode, resp.Body)
	}

	record := cpf.Extract(ProviderPayload(resp.Body))
	s.count("ok")
	return &record, nil
}

func (s *IdentityService) count(outcome string) {
	if s.metrics != nil {
		s.metrics.IdentityLookups.WithLabelValues(outcome).Inc()
	}
}

// ProviderPayload decodes an identity provider body. Bodies that are not a
// JSON object are wrapped as {"raw": <text>}.
func ProviderPayload(body []byte) map[string]any {
	obj, err := fields.DecodeObject(body)
	if err != nil {
		return map[string]any{"raw": string(body)}
	}
	return obj
}
