package service

import (
	"context"
	"time"

	domainErrors "github.com/cassiomorais/pixgateway/internal/domain/errors"
	"github.com/cassiomorais/pixgateway/internal/domain/fields"
	"github.com/cassiomorais/pixgateway/internal/domain/pix"
	"github.com/cassiomorais/pixgateway/internal/infrastructure/config"
	"github.com/cassiomorais/pixgateway/internal/infrastructure/observability"
	"github.com/cassiomorais/pixgateway/internal/infrastructure/providers"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

var validate = validator.New()

// PixService creates PIX charges and polls their status. It keeps no state
// between requests.
type PixService struct {
	gateway Gateway
	cfg     config.GatewayConfig
	digits  pix.DigitSource
	now     func() time.Time
	metrics *observability.Metrics
	logger  zerolog.Logger
}

type PixOption func(*PixService)

// WithDigits replaces the source of placeholder digits.
func WithDigits(src pix.DigitSource) PixOption {
	return func(s *PixService) { s.digits = src }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) PixOption {
	return func(s *PixService) { s.now = now }
}

func WithPixMetrics(m *observability.Metrics) PixOption {
	return func(s *PixService) { s.metrics = m }
}

func WithPixLogger(l zerolog.Logger) PixOption {
	return func(s *PixService) { s.logger = l }
}

// NewPixService creates a new PixService.
func NewPixService(gateway Gateway, cfg config.GatewayConfig, opts ...PixOption) *PixService {
	s := &PixService{
		gateway: gateway,
		cfg:     cfg,
		digits:  pix.DefaultDigits,
		now:     time.Now,
		logger:  zerolog.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Configured reports whether the gateway credentials are present.
func (s *PixService) Configured() bool {
	return s.cfg.Configured()
}

// CreateCharge canonicalizes a client body into a gateway transaction,
// submits it and normalizes the answer.
func (s *PixService) CreateCharge(ctx context.Context, body map[string]any) (*pix.Charge, error) {
	if !s.cfg.Configured() {
		s.logger.Error().Msg("gateway credentials missing, refusing to create charge")
		return nil, domainErrors.ErrGatewayNotConfigured
	}

	in := pix.ReadChargeInput(body, s.digits)
	in.CompanyID = s.cfg.CompanyID
	in.PostbackURL = s.cfg.PostbackURL
	req := pix.BuildChargeRequest(in, s.now())

	resp, err := s.gateway.CreateTransaction(ctx, req)
	if err != nil {
		s.logger.Warn().Err(err).Msg("create transaction failed")
		return nil, err
	}
	if !resp.OK() {
		s.logger.Warn().Int("status", resp.StatusCode).Str("tracking", in.Tracking).Msg("gateway rejected charge")
		return nil, domainErrors.NewUpstreamError(providers.AssetProviderName, resp.StatusCode, resp.Body)
	}

	charge := pix.NormalizeCharge(s.decode(resp), in.Amount)
	if s.metrics != nil {
		s.metrics.ChargesCreated.Inc()
	}
	s.logger.Info().
		Str("transaction_id", charge.TransactionID).
		Int64("amount_minor", in.Amount.MinorUnits).
		Str("tracking", in.Tracking).
		Msg("pix charge created")

	return &charge, nil
}

// CheckPayment polls the gateway for a transaction and maps its status.
func (s *PixService) CheckPayment(ctx context.Context, req CheckPaymentRequest) (*pix.PaymentStatus, error) {
	if !s.cfg.Configured() {
		s.logger.Error().Msg("gateway credentials missing, refusing to check payment")
		return nil, domainErrors.ErrGatewayNotConfigured
	}
	if err := validate.Struct(req); err != nil {
		return nil, domainErrors.NewValidationError("id", "Informe o id")
	}

	resp, err := s.gateway.GetTransaction(ctx, req.ID)
	if err != nil {
		s.logger.Warn().Err(err).Str("transaction_id", req.ID).Msg("get transaction failed")
		return nil, err
	}
	if !resp.OK() {
		s.logger.Warn().Int("status", resp.StatusCode).Str("transaction_id", req.ID).Msg("gateway rejected status check")
		return nil, domainErrors.NewUpstreamError(providers.AssetProviderName, resp.StatusCode, resp.Body)
	}

	status := pix.NewPaymentStatus(req.ID, s.decode(resp))
	if s.metrics != nil {
		if status.Paid {
			s.metrics.PaymentsChecked.WithLabelValues("true").Inc()
		} else {
			s.metrics.PaymentsChecked.WithLabelValues("false").Inc()
		}
	}
	return &status, nil
}

// decode reads a gateway body, degrading to an empty object when the body
// is not a JSON object.
func (s *PixService) decode(resp *providers.Response) map[string]any {
	raw, err := fields.DecodeObject(resp.Body)
	if err != nil {
		s.logger.Debug().Err(err).Int("bytes", len(resp.Body)).Msg("gateway body is not a JSON object")
		return map[string]any{}
	}
	return raw
}
