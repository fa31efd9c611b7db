package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDueDateForClampsShortMonths(t *testing.T) {
	tests := []struct {
		name   string
		today  time.Time
		dueDay int
		want   time.Time
	}{
		{
			name:   "day fits in month",
			today:  time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			dueDay: 15,
			want:   time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "day 31 clamps to Feb 28 in a non-leap year",
			today:  time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC),
			dueDay: 31,
			want:   time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "day 31 clamps to Feb 29 in a leap year",
			today:  time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC),
			dueDay: 31,
			want:   time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "day 31 clamps to 30 in April",
			today:  time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
			dueDay: 31,
			want:   time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dueDateFor(tt.today, tt.dueDay))
		})
	}
}

func TestDaysBetweenWholeDays(t *testing.T) {
	due := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	// Time of day never changes the count.
	assert.Equal(t, 14, daysBetween(due, time.Date(2025, 1, 15, 23, 59, 0, 0, time.UTC)))
	assert.Equal(t, 15, daysBetween(due, time.Date(2025, 1, 16, 0, 1, 0, 0, time.UTC)))
	assert.Equal(t, 0, daysBetween(due, due))

	// Never negative.
	assert.Equal(t, 0, daysBetween(due, time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC)))
}

func TestDaysBetweenAcrossSpringForward(t *testing.T) {
	// Ontario springs forward on March 9, 2025, so the elapsed time
	// between the local midnights of March 1 and March 16 is an hour
	// short of fifteen full days. The count is calendar days, not hours.
	toronto, err := time.LoadLocation("America/Toronto")
	require.NoError(t, err)

	due := time.Date(2025, 3, 1, 0, 0, 0, 0, toronto)
	assert.Equal(t, 15, daysBetween(due, time.Date(2025, 3, 16, 9, 0, 0, 0, toronto)))
	assert.Equal(t, 14, daysBetween(due, time.Date(2025, 3, 15, 23, 0, 0, 0, toronto)))

	// Fall back adds an hour; the count must not round up either.
	fallDue := time.Date(2025, 10, 25, 0, 0, 0, 0, toronto)
	assert.Equal(t, 14, daysBetween(fallDue, time.Date(2025, 11, 8, 1, 0, 0, 0, toronto)))
}

func TestLastDayOfMonth(t *testing.T) {
	assert.Equal(t, 28, lastDayOfMonth(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 29, lastDayOfMonth(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 30, lastDayOfMonth(time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 31, lastDayOfMonth(time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)))
}

func TestMonthBounds(t *testing.T) {
	start, end := monthBounds(time.Date(2025, 2, 14, 12, 30, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), end)
}
