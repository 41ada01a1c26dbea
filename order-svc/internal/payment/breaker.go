package payment

import (
	"context"
	"errors"
	"time"

	"kebab-orders/pkg/domain"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

type Provider interface {
	CreatePaymentIntent(ctx context.Context, amount int64, currency string) (string, error)
}

type BreakerSettings struct {
	MaxFailures uint32
	OpenTimeout time.Duration
}

var DefaultBreakerSettings = BreakerSettings{
	MaxFailures: 5,
	OpenTimeout: 30 * time.Second,
}

// BreakingProvider stops calling the wrapped provider after MaxFailures
// consecutive failures and lets one probe through after OpenTimeout.
type BreakingProvider struct {
	next    Provider
	breaker *gobreaker.CircuitBreaker[string]
}

func NewBreakingProvider(next Provider, settings BreakerSettings, logger *zap.Logger) *BreakingProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	breaker := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "payment-provider",
		MaxRequests: 1,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return &BreakingProvider{next: next, breaker: breaker}
}

func (p *BreakingProvider) CreatePaymentIntent(ctx context.Context, amount int64, currency string) (string, error) {
	secret, err := p.breaker.Execute(func() (string, error) {
		return p.next.CreatePaymentIntent(ctx, amount, currency)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", &domain.ProviderError{Err: err}
	}
	return secret, err
}
