package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"rentledger/internal/common"
	"rentledger/internal/models"
	"rentledger/internal/repositories"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// PaymentService is the read/record surface over the payment store. The
// sweeps never touch paid or partial rows, so recording here is the only
// way an obligation settles.
type PaymentService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.RentPayment, error)
	ListByStatus(ctx context.Context, status models.PaymentStatus) ([]*models.RentPayment, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.RentPayment, error)
	RecordPayment(ctx context.Context, id uuid.UUID, status models.PaymentStatus, method string, paymentDate *time.Time) (*models.RentPayment, error)
}

type paymentService struct {
	paymentRepo repositories.RentPaymentRepository
	auditRepo   repositories.AuditLogsRepository
	clock       clockwork.Clock
}

func NewPaymentService(paymentRepo repositories.RentPaymentRepository, auditRepo repositories.AuditLogsRepository, clock clockwork.Clock) PaymentService {
	return &paymentService{
		paymentRepo: paymentRepo,
		auditRepo:   auditRepo,
		clock:       clock,
	}
}

func (s *paymentService) GetByID(ctx context.Context, id uuid.UUID) (*models.RentPayment, error) {
	return s.paymentRepo.GetByID(ctx, id)
}

func (s *paymentService) ListByStatus(ctx context.Context, status models.PaymentStatus) ([]*models.RentPayment, error) {
	return s.paymentRepo.ListByStatus(ctx, status)
}

func (s *paymentService) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.RentPayment, error) {
	return s.paymentRepo.ListByTenant(ctx, tenantID, limit, offset)
}

func (s *paymentService) RecordPayment(ctx context.Context, id uuid.UUID, status models.PaymentStatus, method string, paymentDate *time.Time) (*models.RentPayment, error) {
	if status != models.PaymentStatusPaid && status != models.PaymentStatusPartial {
		return nil, fmt.Errorf("%w: recorded status must be paid or partial", common.ErrValidation)
	}
	if method == "" {
		return nil, fmt.Errorf("%w: payment method is required", common.ErrValidation)
	}

	when := s.clock.Now()
	if paymentDate != nil {
		when = *paymentDate
	}

	if err := s.paymentRepo.RecordPayment(ctx, id, status, method, when); err != nil {
		return nil, err
	}

	payment, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := fmt.Sprintf("payment %s recorded as %s via %s", id, status, method)
	entry := &models.AuditLog{
		ID:        uuid.New(),
		TenantID:  payment.TenantID,
		Action:    models.AuditActionPaymentRecorded,
		NewUnitID: &payment.UnitID,
		Detail:    &detail,
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		log.Printf("Failed to write audit log for payment %s: %v", id, err)
	}
	return payment, nil
}
