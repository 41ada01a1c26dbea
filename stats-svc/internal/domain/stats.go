package domain

// DailyStats counts order lifecycle events for one UTC day.
type DailyStats struct {
	Date      string `json:"date"`
	Created   int64  `json:"created"`
	Preparing int64  `json:"preparing"`
	Ready     int64  `json:"ready"`
	Delivered int64  `json:"delivered"`
	Cancelled int64  `json:"cancelled"`
	Revenue   string `json:"revenue"`
}
