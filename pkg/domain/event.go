package domain

import "time"

// OrdersTopic is the Kafka topic carrying OrderEvent messages.
const OrdersTopic = "orders"

type EventType string

const (
	EventOrderCreated  EventType = "order_created"
	EventStatusChanged EventType = "status_changed"
	EventOrderDeleted  EventType = "order_deleted"
)

// OrderEvent is published on every successful write to the order store.
type OrderEvent struct {
	Type      EventType `json:"type"`
	OrderID   string    `json:"orderId"`
	Status    Status    `json:"status"`
	Total     string    `json:"total"`
	Timestamp time.Time `json:"timestamp"`
}

func NewOrderEvent(eventType EventType, order Order, at time.Time) OrderEvent {
	return OrderEvent{
		Type:      eventType,
		OrderID:   order.ID,
		Status:    order.Status,
		Total:     order.Total,
		Timestamp: at.UTC(),
	}
}
