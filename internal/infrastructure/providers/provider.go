package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	domainErrors "github.com/cassiomorais/pixgateway/internal/domain/errors"
	"github.com/cassiomorais/pixgateway/internal/infrastructure/observability"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Response is a provider answer as received: status code and body bytes.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// NewHTTPClient returns the client shared by all providers. Outbound spans
// are recorded through otelhttp. A zero timeout means no client-side limit.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// caller performs one round trip through a provider's circuit breaker.
type caller struct {
	name    string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[*Response]
	metrics *observability.Metrics
}

func (c *caller) do(ctx context.Context, operation string, req *http.Request) (*Response, error) {
	req.Header.Set("X-Request-Id", requestID(ctx))

	start := time.Now()
	resp, err := c.breaker.Execute(func() (*Response, error) {
		httpResp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer httpResp.Body.Close()

		body, err := io.ReadAll(httpResp.Body)
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		return &Response{StatusCode: httpResp.StatusCode, Body: body}, nil
	})
	c.observe(operation, start, resp, err)

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return nil, fmt.Errorf("%s %s: %w", c.name, operation, domainErrors.ErrProviderUnavailable)
	case err != nil:
		return nil, fmt.Errorf("%s %s: %w: %w", c.name, operation, domainErrors.ErrProviderRequest, err)
	}
	return resp, nil
}

func (c *caller) observe(operation string, start time.Time, resp *Response, err error) {
	if c.metrics == nil {
		return
	}
	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
	case !resp.OK():
		outcome = "upstream_error"
	}
	c.metrics.ProviderRequestsTotal.WithLabelValues(c.name, operation, outcome).Inc()
	c.metrics.ProviderRequestDuration.WithLabelValues(c.name, operation).Observe(time.Since(start).Seconds())
}

func requestID(ctx context.Context) string {
	if id := chimw.GetReqID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}
