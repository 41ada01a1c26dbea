package lifecycle

import (
	"time"

	"kebab-orders/pkg/domain"
)

const (
	PresetToday     = "today"
	PresetYesterday = "yesterday"
	PresetThisWeek  = "this-week"
	PresetThisMonth = "this-month"
)

// FilterByDate returns the archived orders whose timestamp lies in
// [start, end]. A nil bound leaves that side open.
func FilterByDate(orders []domain.Order, start, end *time.Time) []domain.Order {
	filtered := []domain.Order{}
	for _, order := range orders {
		if bucket, ok := Classify(order); !ok || bucket != BucketArchived {
			continue
		}
		if start != nil && order.Timestamp.Before(*start) {
			continue
		}
		if end != nil && order.Timestamp.After(*end) {
			continue
		}
		filtered = append(filtered, order)
	}
	return filtered
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func endOf(start time.Time, years, months, days int) time.Time {
	return start.AddDate(years, months, days).Add(-time.Nanosecond)
}

func Today(now time.Time) (time.Time, time.Time) {
	start := startOfDay(now)
	return start, endOf(start, 0, 0, 1)
}

func Yesterday(now time.Time) (time.Time, time.Time) {
	start := startOfDay(now).AddDate(0, 0, -1)
	return start, endOf(start, 0, 0, 1)
}

// ThisWeek spans Sunday 00:00 to Saturday 23:59:59.999999999 UTC.
func ThisWeek(now time.Time) (time.Time, time.Time) {
	day := startOfDay(now)
	start := day.AddDate(0, 0, -int(day.Weekday()))
	return start, endOf(start, 0, 0, 7)
}

func ThisMonth(now time.Time) (time.Time, time.Time) {
	day := startOfDay(now)
	start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, endOf(start, 0, 1, 0)
}

// PresetRange resolves a named range relative to now.
func PresetRange(name string, now time.Time) (time.Time, time.Time, bool) {
	switch name {
	case PresetToday:
		start, end := Today(now)
		return start, end, true
	case PresetYesterday:
		start, end := Yesterday(now)
		return start, end, true
	case PresetThisWeek:
		start, end := ThisWeek(now)
		return start, end, true
	case PresetThisMonth:
		start, end := ThisMonth(now)
		return start, end, true
	}
	return time.Time{}, time.Time{}, false
}
