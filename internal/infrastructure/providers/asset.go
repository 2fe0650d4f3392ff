package providers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/cassiomorais/pixgateway/internal/infrastructure/config"
	"github.com/cassiomorais/pixgateway/internal/infrastructure/observability"
)

// AssetProviderName identifies the payment gateway in breakers and metrics.
const AssetProviderName = "asset"

// AssetGateway calls the Asset Pagamentos transactions API.
type AssetGateway struct {
	caller
	baseURL   string
	secretKey string
	companyID string
}

// NewAssetGateway creates a gateway client. Credentials are sent as HTTP
// Basic auth with the secret key as user and the company id as password.
func NewAssetGateway(cfg config.GatewayConfig, client *http.Client, breakers *Breakers, metrics *observability.Metrics) *AssetGateway {
	return &AssetGateway{
		caller: caller{
			name:    AssetProviderName,
			client:  client,
			breaker: breakers.Register(AssetProviderName),
			metrics: metrics,
		},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		secretKey: cfg.SecretKey,
		companyID: cfg.CompanyID,
	}
}

// CreateTransaction posts payload as JSON.
func (g *AssetGateway) CreateTransaction(ctx context.Context, payload any) (*Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode transaction: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", g.authorization())

	return g.do(ctx, "create_transaction", req)
}

// GetTransaction fetches a transaction by its gateway id.
func (g *AssetGateway) GetTransaction(ctx context.Context, id string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", g.authorization())

	return g.do(ctx, "get_transaction", req)
}

func (g *AssetGateway) authorization() string {
	creds := g.secretKey + ":" + g.companyID
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(creds))
}
