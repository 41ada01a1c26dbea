package service

import (
	"context"
	"time"

	"kebab-orders/pkg/domain"
	statsdomain "kebab-orders/stats-svc/internal/domain"
	"kebab-orders/stats-svc/internal/storage"
)

type StatsService struct {
	store StoreInterface
	now   func() time.Time
}

func NewStatsService(store StoreInterface, now func() time.Time) *StatsService {
	if now == nil {
		now = time.Now
	}
	return &StatsService{store: store, now: now}
}

// Daily returns the counters for date (YYYY-MM-DD), today in UTC when empty.
func (s *StatsService) Daily(ctx context.Context, date string) (*statsdomain.DailyStats, error) {
	day := s.now().UTC()
	if date != "" {
		parsed, err := time.Parse(storage.DateLayout, date)
		if err != nil {
			return nil, domain.NewValidationError("date must look like 2006-01-02")
		}
		day = parsed
	}
	return s.store.DailyStats(ctx, day)
}
