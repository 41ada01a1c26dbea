package service

import (
	"context"

	"kebab-orders/pkg/domain"
)

type OrderServiceInterface interface {
	List(ctx context.Context, filters map[string]string) ([]domain.Order, error)
	Get(ctx context.Context, id string) (*domain.Order, error)
	Create(ctx context.Context, order *domain.Order) error
	UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Order, error)
	Delete(ctx context.Context, id string) (*domain.Order, error)
	Board(ctx context.Context, rng BoardRange) (*Board, error)
	CheckoutDelivery(ctx context.Context, order *domain.Order) (string, error)
	PaymentQRCode(ctx context.Context, id string) ([]byte, error)
}

type PaymentServiceInterface interface {
	CreatePaymentIntent(ctx context.Context, req PaymentIntentRequest) (string, error)
}

// OrderRepository is the order document store. Filters hold exact-match
// values keyed by the order's JSON field names.
type OrderRepository interface {
	FindOrders(ctx context.Context, filters map[string]any) ([]domain.Order, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	InsertOrder(ctx context.Context, order *domain.Order) error
	UpdateOrderStatus(ctx context.Context, id string, status domain.Status) (*domain.Order, error)
	DeleteOrder(ctx context.Context, id string) (*domain.Order, error)
}

// OrderMarker guards against the same order id being submitted twice.
type OrderMarker interface {
	Reserve(ctx context.Context, id string) (bool, error)
	Release(ctx context.Context, id string) error
}

type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event domain.OrderEvent) error
}

type PaymentProvider interface {
	CreatePaymentIntent(ctx context.Context, amount int64, currency string) (string, error)
}

var (
	_ OrderServiceInterface   = (*OrderService)(nil)
	_ PaymentServiceInterface = (*PaymentService)(nil)
)
