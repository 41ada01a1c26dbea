package tests

import (
	"time"

	"kebab-orders/pkg/domain"
)

var fixedNow = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func orderEvent(eventType domain.EventType, status domain.Status, total string) domain.OrderEvent {
	return domain.OrderEvent{
		Type:      eventType,
		OrderID:   "ORD-1",
		Status:    status,
		Total:     total,
		Timestamp: fixedNow,
	}
}
