// Package stats derives display-ready aggregate numbers from ledger reads.
// Pure functions of (events, clock); no storage access.
package stats

import (
	"time"

	"CupBack/model"
)

// Project computes the global aggregate view from the full ledger.
func Project(scans []model.ScanEvent, userCount int, now time.Time, gramsPerCup int) model.Stats {
	today := model.CalendarDate(now)
	todayCups := 0
	for _, scan := range scans {
		if scan.Date == today {
			todayCups++
		}
	}
	return model.Stats{
		TotalCups:  len(scans),
		TodayCups:  todayCups,
		TotalUsers: userCount,
		TotalCO2:   len(scans) * gramsPerCup,
	}
}

// ProjectUser computes the per-user aggregate view from the user's events.
func ProjectUser(scans []model.ScanEvent, now time.Time, gramsPerCup int) model.UserStats {
	today := model.CalendarDate(now)
	todayCups := 0
	for _, scan := range scans {
		if scan.Date == today {
			todayCups++
		}
	}
	return model.UserStats{
		TotalCups: len(scans),
		TodayCups: todayCups,
		TotalCO2:  len(scans) * gramsPerCup,
	}
}
