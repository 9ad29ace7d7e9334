package model

import "time"

// DateLayout is the calendar-date format used as the daily-uniqueness key.
const DateLayout = "2006-01-02"

// ScanEvent is one accepted cup return. Append-only: rows are never updated
// or deleted. At most one row may exist per (UserID, Date) pair.
type ScanEvent struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	UserID    string    `json:"userId" gorm:"index:idx_scans_user_date;size:64"`
	Date      string    `json:"date" gorm:"index:idx_scans_user_date;size:10"`
	Code      string    `json:"code" gorm:"size:100"`
	CreatedAt time.Time `json:"createdAt"`
}

// CalendarDate derives the daily-uniqueness key from an instant, in the
// server's local timezone.
func CalendarDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Stats is the global aggregate view shown on the landing page.
type Stats struct {
	TotalCups  int `json:"totalCups"`
	TodayCups  int `json:"todayCups"`
	TotalUsers int `json:"totalUsers"`
	TotalCO2   int `json:"totalCO2"`
}

// UserStats is the per-user aggregate view shown on the dashboard.
type UserStats struct {
	TotalCups int `json:"totalCups"`
	TodayCups int `json:"todayCups"`
	TotalCO2  int `json:"totalCO2"`
}
