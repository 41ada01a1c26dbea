package views

import (
	"context"

	"kebab-orders/pkg/domain"

	"github.com/shopspring/decimal"
)

type PaymentAPI interface {
	Get(ctx context.Context, id string) (*domain.Order, error)
	PaymentIntent(ctx context.Context, amount int64, orderID string) (string, error)
}

type PaymentView struct {
	Order        *domain.Order
	Amount       int64
	ClientSecret string
}

// PaymentPage prepares the card payment of a stored order.
type PaymentPage struct {
	api PaymentAPI
}

func NewPaymentPage(api PaymentAPI) *PaymentPage {
	return &PaymentPage{api: api}
}

func (p *PaymentPage) Load(ctx context.Context, orderID string) (*PaymentView, error) {
	if orderID == "" {
		return nil, domain.NewValidationError("orderId is required")
	}

	order, err := p.api.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	amount, err := AmountCents(order.Total)
	if err != nil {
		return nil, err
	}

	secret, err := p.api.PaymentIntent(ctx, amount, order.ID)
	if err != nil {
		return nil, err
	}

	return &PaymentView{Order: order, Amount: amount, ClientSecret: secret}, nil
}

// AmountCents converts a two-decimal total into minor units.
func AmountCents(total string) (int64, error) {
	value, err := decimal.NewFromString(total)
	if err != nil {
		return 0, domain.NewValidationError("invalid total %q", total)
	}
	cents := value.Shift(2).Round(0)
	if !cents.IsPositive() {
		return 0, domain.NewValidationError("total must be positive, got %s", total)
	}
	return cents.IntPart(), nil
}

