package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusDelivered Status = "delivered"
)

// Valid reports whether s is one of the stored lifecycle statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPreparing, StatusReady, StatusDelivered:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCard PaymentMethod = "card"
	PaymentCash PaymentMethod = "cash"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCard || m == PaymentCash
}

type Item struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// Order is the only persisted entity. Delivery orders additionally carry
// the customer contact details and the chosen payment method.
type Order struct {
	ID            string        `json:"id"`
	Items         []Item        `json:"items"`
	Total         string        `json:"total"`
	Status        Status        `json:"status"`
	Timestamp     time.Time     `json:"timestamp"`
	Notation      string        `json:"notation,omitempty"`
	CustomerName  string        `json:"customerName,omitempty"`
	CustomerPhone string        `json:"customerPhone,omitempty"`
	PaymentMethod PaymentMethod `json:"paymentMethod,omitempty"`
	IsDelivery    bool          `json:"isDelivery"`
}
