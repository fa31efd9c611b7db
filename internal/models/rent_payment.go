package models

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusLate    PaymentStatus = "late"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// RentPayment is one billing period's rent obligation for a tenant/unit.
// PeriodMonth is the first day of the obligation's calendar month and
// backs the one-obligation-per-month uniqueness constraint.
type RentPayment struct {
	ID             uuid.UUID     `json:"id" db:"id"`
	TenantID       uuid.UUID     `json:"tenant_id" db:"tenant_id"`
	UnitID         uuid.UUID     `json:"unit_id" db:"unit_id"`
	Amount         float64       `json:"amount" db:"amount"`
	DueDate        time.Time     `json:"due_date" db:"due_date"`
	PeriodMonth    time.Time     `json:"period_month" db:"period_month"`
	Status         PaymentStatus `json:"status" db:"status"`
	PaymentDate    *time.Time    `json:"payment_date" db:"payment_date"`
	PaymentMethod  *string       `json:"payment_method" db:"payment_method"`
	PaymentLink    *string       `json:"payment_link" db:"payment_link"`
	LastNotifiedAt *time.Time    `json:"last_notified_at" db:"last_notified_at"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at" db:"updated_at"`
}

// Settled reports whether payment recording has already moved this
// obligation out of the automatic pending/late lifecycle.
func (p *RentPayment) Settled() bool {
	return p.Status == PaymentStatusPaid || p.Status == PaymentStatusPartial
}
