package planner

import (
	"time"

	"meal-planner/internal/plancache"
)

// WeekStartOf returns the Monday of the week containing t, formatted as a
// week start.
func WeekStartOf(t time.Time) string {
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset).Format(plancache.WeekStartLayout)
}

// NextMonday returns the first Monday strictly after t's date, formatted as
// a week start.
func NextMonday(t time.Time) string {
	days := (8 - int(t.Weekday())) % 7
	if days == 0 {
		days = 7
	}
	return t.AddDate(0, 0, days).Format(plancache.WeekStartLayout)
}
