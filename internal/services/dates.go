package services

import (
	"time"

	"rentledger/internal/models"
)

// dateOnly truncates a timestamp to midnight in its own location. All due
// date arithmetic runs on these normalized values so days-late counts are
// whole days regardless of what time of day a sweep runs.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// lastDayOfMonth returns the number of days in t's month.
func lastDayOfMonth(t time.Time) int {
	firstOfNext := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, 1, 0)
	return firstOfNext.AddDate(0, 0, -1).Day()
}

// dueDateFor places a rent due day in t's month, clamped to the month's
// last day, so a due day of 31 lands on Feb 28 in a non-leap year.
func dueDateFor(t time.Time, dueDay int) time.Time {
	last := lastDayOfMonth(t)
	if dueDay > last {
		dueDay = last
	}
	return time.Date(t.Year(), t.Month(), dueDay, 0, 0, 0, 0, t.Location())
}

// monthBounds returns the first and last calendar day of t's month.
func monthBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	end := start.AddDate(0, 1, -1)
	return start, end
}

// daysBetween returns whole calendar days from a to b, floored, never
// negative. Delegates to models.DaysLate so the count survives daylight
// saving transitions.
func daysBetween(a, b time.Time) int {
	return models.DaysLate(a, b)
}
