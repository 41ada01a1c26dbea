package tests

import (
	"errors"
	"time"

	"kebab-orders/pkg/domain"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time {
	return fixedNow
}

func kebabOrder(id string) *domain.Order {
	return &domain.Order{
		ID: id,
		Items: []domain.Item{
			{ID: "k1", Name: "Kebab de Pollo", Quantity: 2, Price: decimal.RequireFromString("5.50")},
			{ID: "b1", Name: "Bebida", Quantity: 1, Price: decimal.RequireFromString("1.50")},
		},
	}
}

func storedOrder(id string, status domain.Status) *domain.Order {
	order := kebabOrder(id)
	order.Total = "12.50"
	order.Status = status
	order.Timestamp = fixedNow.Add(-10 * time.Minute)
	return order
}

func zapNop() *zap.Logger {
	return zap.NewNop()
}

var assertErr = errors.New("connection reset by peer")
