package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	"kebab-orders/pkg/domain"
)

type DeliveryCheckout interface {
	CheckoutDelivery(ctx context.Context, order *domain.Order) (*domain.Order, string, error)
}

// DeliveryForm is the customer-facing cart for delivery orders.
type DeliveryForm struct {
	Cart

	api DeliveryCheckout
	now func() time.Time

	CustomerName  string
	CustomerPhone string
	PaymentMethod domain.PaymentMethod
	Notation      string
}

func NewDeliveryForm(api DeliveryCheckout, now func() time.Time) *DeliveryForm {
	if now == nil {
		now = time.Now
	}
	return &DeliveryForm{api: api, now: now}
}

func (f *DeliveryForm) validate() error {
	var missing []string
	if f.Empty() {
		missing = append(missing, "items")
	}
	if strings.TrimSpace(f.CustomerName) == "" {
		missing = append(missing, "customerName")
	}
	if strings.TrimSpace(f.CustomerPhone) == "" {
		missing = append(missing, "customerPhone")
	}
	if !f.PaymentMethod.Valid() {
		missing = append(missing, "paymentMethod")
	}
	if len(missing) > 0 {
		return domain.NewValidationError("missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// Submit sends the cart as a delivery order and returns the page to go to
// next. The cart is cleared only after the server accepts the order.
func (f *DeliveryForm) Submit(ctx context.Context) (*domain.Order, string, error) {
	if err := f.validate(); err != nil {
		return nil, "", err
	}

	now := f.now().UTC()
	order := &domain.Order{
		ID:            fmt.Sprintf("ORD-%d", now.UnixMilli()),
		Items:         f.Lines(),
		Total:         f.Total(),
		Status:        domain.StatusPending,
		Timestamp:     now,
		Notation:      f.Notation,
		CustomerName:  strings.TrimSpace(f.CustomerName),
		CustomerPhone: strings.TrimSpace(f.CustomerPhone),
		PaymentMethod: f.PaymentMethod,
		IsDelivery:    true,
	}

	created, redirect, err := f.api.CheckoutDelivery(ctx, order)
	if err != nil {
		return nil, "", err
	}

	f.Reset()
	return created, redirect, nil
}
