package models

import (
	"time"

	"github.com/google/uuid"
)

// Ontario notice thresholds in whole days late.
const (
	N4EligibleDays = 14
	L1EligibleDays = 15
)

// DaysLate counts whole calendar days from the due date to today, floored
// at zero. Both instants are compared by calendar day alone, so a daylight
// saving transition inside the span never shortens the count: an Ontario
// obligation due March 1 is fifteen days late on March 16 even though the
// elapsed time between the two local midnights is an hour short.
func DaysLate(dueDate, today time.Time) int {
	due := time.Date(dueDate.Year(), dueDate.Month(), dueDate.Day(), 0, 0, 0, 0, time.UTC)
	now := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	days := int(now.Sub(due).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// NoticeEligibility is one late obligation's standing against the legal
// notice thresholds. It is derived on each sweep, never stored.
type NoticeEligibility struct {
	PaymentID       uuid.UUID `json:"payment_id"`
	TenantID        uuid.UUID `json:"tenant_id"`
	TenantName      string    `json:"tenant_name"`
	UnitID          uuid.UUID `json:"unit_id"`
	UnitLabel       string    `json:"unit_label"`
	PropertyAddress string    `json:"property_address"`
	Amount          float64   `json:"amount"`
	DueDate         time.Time `json:"due_date"`
	DaysLate        int       `json:"days_late"`
	N4Eligible      bool      `json:"n4_eligible"`
	L1Eligible      bool      `json:"l1_eligible"`
}
