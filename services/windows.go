package services

import (
	"time"

	"turo-scraper/models"
)

// ISO weekdays, Monday = 1 .. Sunday = 7.
const (
	isoFriday = 5
	isoSunday = 7
)

// dayOfWeek returns the date of the given ISO weekday within date's week.
func dayOfWeek(weekday int, date time.Time) time.Time {
	return date.AddDate(0, 0, weekday-isoWeekday(date))
}

func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7
	}
	return wd
}

// UpcomingWeekends returns n Friday–Sunday windows starting from today's
// week. If this week's Friday has already passed, every window shifts forward
// one week so the first window is never in the past. n == 0 yields an empty
// slice.
func UpcomingWeekends(n int, today time.Time) []models.Window {
	if n <= 0 {
		return nil
	}
	today = truncateToDate(today)

	base := today
	if dayOfWeek(isoFriday, today).Before(today) {
		base = today.AddDate(0, 0, 7)
	}

	windows := make([]models.Window, 0, n)
	for w := 0; w < n; w++ {
		anchor := base.AddDate(0, 0, 7*w)
		windows = append(windows, models.Window{
			Start: dayOfWeek(isoFriday, anchor),
			End:   dayOfWeek(isoSunday, anchor),
		})
	}
	return windows
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
