package providers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cassiomorais/pixgateway/internal/infrastructure/observability"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"
)

// Breakers creates and caches one circuit breaker per provider.
type Breakers struct {
	mu        sync.Mutex
	breakers  map[string]*gobreaker.CircuitBreaker[*Response]
	threshold uint32
	timeout   time.Duration
	metrics   *observability.Metrics
}

// NewBreakers creates a registry whose breakers open once at least threshold
// calls were seen in the interval and 60% of them failed. metrics may be nil.
func NewBreakers(threshold uint32, timeout time.Duration, metrics *observability.Metrics) *Breakers {
	if threshold == 0 {
		threshold = 10
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Breakers{
		breakers:  make(map[string]*gobreaker.CircuitBreaker[*Response]),
		threshold: threshold,
		timeout:   timeout,
		metrics:   metrics,
	}
}

// Register returns the breaker for name, creating it on first use.
func (b *Breakers) Register(name string) *gobreaker.CircuitBreaker[*Response] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if cb, ok := b.breakers[name]; ok {
		return cb
	}

	threshold := b.threshold
	cb := gobreaker.NewCircuitBreaker[*Response](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     b.timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= threshold && failureRatio >= 0.6
		},
		// Upstream statuses come back as responses, so only transport
		// failures reach here. A caller hanging up is not the provider's fault.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
			if b.metrics != nil {
				b.metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			}
		},
	})
	b.breakers[name] = cb
	return cb
}

// Get returns a registered breaker.
func (b *Breakers) Get(name string) (*gobreaker.CircuitBreaker[*Response], error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	cb, ok := b.breakers[name]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q: no breaker registered", name)
	}
	return cb, nil
}
