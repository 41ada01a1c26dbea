package service

import (
	"context"
	"errors"

	"kebab-orders/pkg/domain"
	"kebab-orders/pkg/lifecycle"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentIntentRequest asks for a client secret. Amount is in minor units.
// When OrderID is set the amount is checked against the stored order.
type PaymentIntentRequest struct {
	Amount  int64  `json:"amount"`
	OrderID string `json:"orderId,omitempty"`
}

type PaymentService struct {
	provider     PaymentProvider
	repository   OrderRepository
	currency     string
	amountPolicy AmountPolicy
	logger       *zap.Logger
}

func NewPaymentService(provider PaymentProvider, repository OrderRepository, currency string, amountPolicy AmountPolicy, logger *zap.Logger) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		provider:     provider,
		repository:   repository,
		currency:     currency,
		amountPolicy: amountPolicy,
		logger:       logger,
	}
}

func (s *PaymentService) CreatePaymentIntent(ctx context.Context, req PaymentIntentRequest) (string, error) {
	if req.Amount <= 0 {
		return "", domain.NewValidationError("amount must be a positive number of cents")
	}

	amount := req.Amount
	if req.OrderID != "" && s.repository != nil {
		order, err := s.repository.GetOrder(ctx, req.OrderID)
		if err != nil {
			return "", err
		}
		expected := OrderAmount(order)
		if expected != amount {
			if s.amountPolicy != PolicyCorrect {
				return "", domain.NewValidationError("amount %d does not match order total %d", amount, expected)
			}
			s.logger.Warn("correcting payment amount",
				zap.String("order_id", order.ID),
				zap.Int64("given", amount),
				zap.Int64("computed", expected))
			amount = expected
		}
	}

	secret, err := s.provider.CreatePaymentIntent(ctx, amount, s.currency)
	if err != nil {
		s.logger.Error("payment intent failed", zap.Int64("amount", amount), zap.Error(err))
		var providerErr *domain.ProviderError
		if errors.As(err, &providerErr) {
			return "", err
		}
		return "", &domain.ProviderError{Err: err}
	}

	return secret, nil
}

// OrderAmount is the order total recomputed from its items, in cents.
func OrderAmount(order *domain.Order) int64 {
	total := decimal.RequireFromString(lifecycle.ComputeTotal(order.Items))
	return total.Shift(2).IntPart()
}
