package repositories

import (
	"context"
	"errors"
	"time"

	"rentledger/internal/common"
	"rentledger/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// RentPaymentRepository is the payment store. A unique constraint on
// (tenant_id, unit_id, period_month) keeps obligations to one per
// tenant/unit/calendar-month regardless of how often the generator runs.
type RentPaymentRepository interface {
	// Insert creates the obligation. Returns false when a row for the same
	// tenant/unit/month already exists (the insert is a no-op).
	Insert(ctx context.Context, payment *models.RentPayment) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.RentPayment, error)
	FindForPeriod(ctx context.Context, tenantID, unitID uuid.UUID, periodStart, periodEnd time.Time) (*models.RentPayment, error)
	ListByStatus(ctx context.Context, status models.PaymentStatus) ([]*models.RentPayment, error)
	ListPendingDueBefore(ctx context.Context, cutoff time.Time) ([]*models.RentPayment, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.RentPayment, error)
	ListOutstanding(ctx context.Context) ([]*models.RentPayment, error)
	// MarkLate flips a pending obligation to late. The status guard in the
	// WHERE clause keeps the transition monotonic: late, paid, and partial
	// rows are never touched. Returns false when no row changed.
	MarkLate(ctx context.Context, id uuid.UUID) (bool, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.PaymentStatus, paymentDate *time.Time) error
	// RecordPayment applies an external payment to an open obligation.
	RecordPayment(ctx context.Context, id uuid.UUID, status models.PaymentStatus, method string, paymentDate time.Time) error
	SetNotifiedAt(ctx context.Context, id uuid.UUID, at time.Time) error
}

type rentPaymentRepo struct {
	db Database
}

func NewRentPaymentRepo(db Database) RentPaymentRepository {
	return &rentPaymentRepo{db: db}
}

const paymentColumns = `id, tenant_id, unit_id, amount, due_date, period_month, status, payment_date, payment_method, payment_link, last_notified_at, created_at, updated_at`

func scanPayment(row pgx.Row) (*models.RentPayment, error) {
	p := &models.RentPayment{}
	err := row.Scan(&p.ID, &p.TenantID, &p.UnitID, &p.Amount, &p.DueDate, &p.PeriodMonth, &p.Status, &p.PaymentDate, &p.PaymentMethod, &p.PaymentLink, &p.LastNotifiedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *rentPaymentRepo) Insert(ctx context.Context, payment *models.RentPayment) (bool, error) {
	query := `
		INSERT INTO rent_payments (id, tenant_id, unit_id, amount, due_date, period_month, status, payment_date, payment_method, payment_link, last_notified_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		ON CONFLICT (tenant_id, unit_id, period_month) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query, payment.ID, payment.TenantID, payment.UnitID, payment.Amount, payment.DueDate, payment.PeriodMonth, payment.Status, payment.PaymentDate, payment.PaymentMethod, payment.PaymentLink, payment.LastNotifiedAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *rentPaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.RentPayment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM rent_payments
		WHERE id = $1
	`
	return scanPayment(r.db.QueryRow(ctx, query, id))
}

func (r *rentPaymentRepo) FindForPeriod(ctx context.Context, tenantID, unitID uuid.UUID, periodStart, periodEnd time.Time) (*models.RentPayment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM rent_payments
		WHERE tenant_id = $1 AND unit_id = $2 AND due_date >= $3 AND due_date <= $4
	`
	return scanPayment(r.db.QueryRow(ctx, query, tenantID, unitID, periodStart, periodEnd))
}

func (r *rentPaymentRepo) ListByStatus(ctx context.Context, status models.PaymentStatus) ([]*models.RentPayment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM rent_payments
		WHERE status = $1
		ORDER BY due_date ASC
	`
	rows, err := r.db.Query(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPayments(rows)
}

func (r *rentPaymentRepo) ListPendingDueBefore(ctx context.Context, cutoff time.Time) ([]*models.RentPayment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM rent_payments
		WHERE status = 'pending' AND due_date < $1
		ORDER BY due_date ASC
	`
	rows, err := r.db.Query(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPayments(rows)
}

func (r *rentPaymentRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.RentPayment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM rent_payments
		WHERE tenant_id = $1
		ORDER BY due_date DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPayments(rows)
}

func (r *rentPaymentRepo) ListOutstanding(ctx context.Context) ([]*models.RentPayment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM rent_payments
		WHERE status IN ('pending', 'late', 'partial')
		ORDER BY due_date ASC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPayments(rows)
}

func (r *rentPaymentRepo) MarkLate(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE rent_payments
		SET status = 'late', updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *rentPaymentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.PaymentStatus, paymentDate *time.Time) error {
	query := `
		UPDATE rent_payments
		SET status = $1, payment_date = $2, updated_at = NOW()
		WHERE id = $3
	`
	tag, err := r.db.Exec(ctx, query, status, paymentDate, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *rentPaymentRepo) RecordPayment(ctx context.Context, id uuid.UUID, status models.PaymentStatus, method string, paymentDate time.Time) error {
	query := `
		UPDATE rent_payments
		SET status = $1, payment_method = $2, payment_date = $3, updated_at = NOW()
		WHERE id = $4 AND status IN ('pending', 'late', 'partial')
	`
	tag, err := r.db.Exec(ctx, query, status, method, paymentDate, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *rentPaymentRepo) SetNotifiedAt(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE rent_payments
		SET last_notified_at = $1, updated_at = NOW()
		WHERE id = $2
	`
	_, err := r.db.Exec(ctx, query, at, id)
	return err
}

func collectPayments(rows pgx.Rows) ([]*models.RentPayment, error) {
	var payments []*models.RentPayment
	for rows.Next() {
		p := &models.RentPayment{}
		if err := rows.Scan(&p.ID, &p.TenantID, &p.UnitID, &p.Amount, &p.DueDate, &p.PeriodMonth, &p.Status, &p.PaymentDate, &p.PaymentMethod, &p.PaymentLink, &p.LastNotifiedAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
