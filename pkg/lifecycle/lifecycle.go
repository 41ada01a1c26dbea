// Package lifecycle holds the pure rules over an order's status and
// timestamp: display buckets, allowed transitions, totals and elapsed time.
package lifecycle

import (
	"math"
	"time"

	"kebab-orders/pkg/domain"

	"github.com/shopspring/decimal"
)

type Bucket string

const (
	BucketKitchenActive    Bucket = "kitchen-active"
	BucketReadyForDelivery Bucket = "ready-for-delivery"
	BucketArchived         Bucket = "archived"
)

// Classify maps an order to its display bucket. Orders with an unknown
// status belong to no bucket and ok is false.
func Classify(order domain.Order) (Bucket, bool) {
	return ClassifyStatus(order.Status)
}

func ClassifyStatus(status domain.Status) (Bucket, bool) {
	switch status {
	case domain.StatusPending, domain.StatusPreparing:
		return BucketKitchenActive, true
	case domain.StatusReady:
		return BucketReadyForDelivery, true
	case domain.StatusDelivered:
		return BucketArchived, true
	}
	return "", false
}

type Buckets struct {
	KitchenActive    []domain.Order `json:"kitchenActive"`
	ReadyForDelivery []domain.Order `json:"readyForDelivery"`
	Archived         []domain.Order `json:"archived"`
}

// Partition splits orders into the three buckets keeping their relative order.
func Partition(orders []domain.Order) Buckets {
	buckets := Buckets{
		KitchenActive:    []domain.Order{},
		ReadyForDelivery: []domain.Order{},
		Archived:         []domain.Order{},
	}
	for _, order := range orders {
		bucket, ok := Classify(order)
		if !ok {
			continue
		}
		switch bucket {
		case BucketKitchenActive:
			buckets.KitchenActive = append(buckets.KitchenActive, order)
		case BucketReadyForDelivery:
			buckets.ReadyForDelivery = append(buckets.ReadyForDelivery, order)
		case BucketArchived:
			buckets.Archived = append(buckets.Archived, order)
		}
	}
	return buckets
}

// Policy decides which forward moves are accepted. AllowSkipPreparing keeps
// the kitchen fast path that marks a pending order ready straight away.
type Policy struct {
	AllowSkipPreparing bool
}

var DefaultPolicy = Policy{AllowSkipPreparing: true}

func (p Policy) AllowedNext(current domain.Status) []domain.Status {
	switch current {
	case domain.StatusPending:
		if p.AllowSkipPreparing {
			return []domain.Status{domain.StatusPreparing, domain.StatusReady}
		}
		return []domain.Status{domain.StatusPreparing}
	case domain.StatusPreparing:
		return []domain.Status{domain.StatusReady}
	case domain.StatusReady:
		return []domain.Status{domain.StatusDelivered}
	}
	return []domain.Status{}
}

func (p Policy) CanTransition(from, to domain.Status) bool {
	for _, next := range p.AllowedNext(from) {
		if next == to {
			return true
		}
	}
	return false
}

// AllowedNextStatuses returns the transitions accepted by DefaultPolicy.
func AllowedNextStatuses(current domain.Status) []domain.Status {
	return DefaultPolicy.AllowedNext(current)
}

// ElapsedMinutes is the whole number of minutes between timestamp and now,
// with halves rounded up.
func ElapsedMinutes(timestamp, now time.Time) int {
	ms := float64(now.Sub(timestamp).Milliseconds())
	return int(math.Floor(ms/60000 + 0.5))
}

// ComputeTotal sums price*quantity over items using exact decimal
// arithmetic and formats the result with two decimal places.
func ComputeTotal(items []domain.Item) string {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return sum.StringFixed(2)
}
