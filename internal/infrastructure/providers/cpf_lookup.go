package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/cassiomorais/pixgateway/internal/infrastructure/config"
	"github.com/cassiomorais/pixgateway/internal/infrastructure/observability"
)

// CPFProviderName identifies the identity lookup in breakers and metrics.
const CPFProviderName = "cpf_lookup"

// CPFLookup queries the CPF module of the identity lookup API.
type CPFLookup struct {
	caller
	baseURL string
	token   string
}

func NewCPFLookup(cfg config.IdentityConfig, client *http.Client, breakers *Breakers, metrics *observability.Metrics) *CPFLookup {
	token := cfg.Token
	if token == "" {
		token = config.DefaultIdentityToken
	}
	return &CPFLookup{
		caller: caller{
			name:    CPFProviderName,
			client:  client,
			breaker: breakers.Register(CPFProviderName),
			metrics: metrics,
		},
		baseURL: cfg.BaseURL,
		token:   token,
	}
}

// Lookup fetches the record for an already normalized CPF.
func (l *CPFLookup) Lookup(ctx context.Context, cpf string) (*Response, error) {
	u, err := url.Parse(l.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	q := u.Query()
	q.Set("token", l.token)
	q.Set("modulo", "cpf")
	q.Set("consulta", cpf)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	return l.do(ctx, "lookup", req)
}
