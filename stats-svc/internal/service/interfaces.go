package service

import (
	"context"
	"time"

	"kebab-orders/pkg/domain"
	statsdomain "kebab-orders/stats-svc/internal/domain"
	"kebab-orders/stats-svc/internal/storage"

	"github.com/segmentio/kafka-go"
)

type StoreInterface interface {
	RecordEvent(ctx context.Context, event domain.OrderEvent) error
	DailyStats(ctx context.Context, day time.Time) (*statsdomain.DailyStats, error)
}

type StatsServiceInterface interface {
	Daily(ctx context.Context, date string) (*statsdomain.DailyStats, error)
}

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

var (
	_ StoreInterface        = (*storage.Store)(nil)
	_ StatsServiceInterface = (*StatsService)(nil)
)
