package testutil

import (
	"time"

	"github.com/cassiomorais/pixgateway/internal/infrastructure/config"
	"github.com/cassiomorais/pixgateway/internal/infrastructure/providers"
)

// FixedNow is the clock used by tests that stamp charges.
var FixedNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

// GatewayConfig returns gateway settings with both credentials set.
func GatewayConfig() config.GatewayConfig {
	return config.GatewayConfig{
		BaseURL:   config.DefaultGatewayURL,
		SecretKey: "sk_test",
		CompanyID: "company-test",
	}
}

// JSONResponse builds a provider response with the given status and body.
func JSONResponse(status int, body string) *providers.Response {
	return &providers.Response{StatusCode: status, Body: []byte(body)}
}

// FixedDigits always yields the same digit, so every placeholder is
// predictable: suffix "777777" for FixedDigits(7).
type FixedDigits int

func (d FixedDigits) IntN(n int) int { return int(d) % n }
