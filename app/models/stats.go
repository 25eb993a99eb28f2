package models

// DailyStats represents a single day's count for admin charts
type DailyStats struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}
