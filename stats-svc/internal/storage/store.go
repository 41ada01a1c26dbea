package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"kebab-orders/pkg/domain"
	statsdomain "kebab-orders/stats-svc/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const (
	DateLayout = "2006-01-02"
	DefaultTTL = 35 * 24 * time.Hour

	fieldCreated      = "created"
	fieldPreparing    = "preparing"
	fieldReady        = "ready"
	fieldDelivered    = "delivered"
	fieldCancelled    = "cancelled"
	fieldRevenueCents = "revenue_cents"
)

// Store keeps one Redis hash of counters per day.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func DailyKey(day time.Time) string {
	return "stats:daily:" + day.UTC().Format(DateLayout)
}

// RecordEvent bumps the counters of the event's day. Unknown events are ignored.
func (s *Store) RecordEvent(ctx context.Context, event domain.OrderEvent) error {
	field := counterField(event)
	if field == "" {
		return nil
	}

	var revenueCents int64
	if field == fieldDelivered && event.Total != "" {
		total, err := decimal.NewFromString(event.Total)
		if err != nil {
			return fmt.Errorf("order %s: bad total %q: %w", event.OrderID, event.Total, err)
		}
		revenueCents = total.Shift(2).IntPart()
	}

	key := DailyKey(event.Timestamp)
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, key, field, 1)
		if revenueCents != 0 {
			pipe.HIncrBy(ctx, key, fieldRevenueCents, revenueCents)
		}
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	return err
}

func counterField(event domain.OrderEvent) string {
	switch event.Type {
	case domain.EventOrderCreated:
		return fieldCreated
	case domain.EventStatusChanged:
		switch event.Status {
		case domain.StatusPreparing:
			return fieldPreparing
		case domain.StatusReady:
			return fieldReady
		case domain.StatusDelivered:
			return fieldDelivered
		}
	case domain.EventOrderDeleted:
		// removing an archived order is housekeeping, not a cancellation
		if event.Status != domain.StatusDelivered {
			return fieldCancelled
		}
	}
	return ""
}

func (s *Store) DailyStats(ctx context.Context, day time.Time) (*statsdomain.DailyStats, error) {
	values, err := s.rdb.HGetAll(ctx, DailyKey(day)).Result()
	if err != nil {
		return nil, err
	}

	stats := &statsdomain.DailyStats{
		Date:      day.UTC().Format(DateLayout),
		Created:   parseCounter(values[fieldCreated]),
		Preparing: parseCounter(values[fieldPreparing]),
		Ready:     parseCounter(values[fieldReady]),
		Delivered: parseCounter(values[fieldDelivered]),
		Cancelled: parseCounter(values[fieldCancelled]),
		Revenue:   decimal.New(parseCounter(values[fieldRevenueCents]), -2).StringFixed(2),
	}
	return stats, nil
}

func parseCounter(value string) int64 {
	n, _ := strconv.ParseInt(value, 10, 64)
	return n
}
