package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"rentledger/internal/models"
	"rentledger/internal/repositories"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

type ArrearsItem struct {
	PaymentID    uuid.UUID `json:"payment_id"`
	TenantID     uuid.UUID `json:"tenant_id"`
	DaysLate     int       `json:"days_late"`
	MarkedLate   bool      `json:"marked_late"`
	N4Eligible   bool      `json:"n4_eligible"`
	L1Eligible   bool      `json:"l1_eligible"`
	NotifyStatus string    `json:"notify_status"`
	Error        string    `json:"error,omitempty"`
}

type ArrearsSweepResult struct {
	MarkedLate int           `json:"marked_late"`
	Reminded   int           `json:"reminded"`
	Failed     int           `json:"failed"`
	Items      []ArrearsItem `json:"items"`
}

// ArrearsService advances obligations through the pending-to-late
// transition and derives Ontario N4/L1 notice eligibility from days late.
// The transition is one-way: paid and partial are set only by payment
// recording and a late row never returns to pending.
type ArrearsService interface {
	// SweepOverdue marks pending obligations past their due date as late.
	SweepOverdue(ctx context.Context) (int, error)
	// EligibilityReport derives the legal-notice standing of every late
	// obligation. Eligibility is computed on each call, never stored.
	EligibilityReport(ctx context.Context) ([]models.NoticeEligibility, error)
	// RunDailySweep is SweepOverdue followed by reminder dispatch and
	// eligibility evaluation, continue-on-error per obligation.
	RunDailySweep(ctx context.Context) (*ArrearsSweepResult, error)
}

type arrearsService struct {
	paymentRepo  repositories.RentPaymentRepository
	tenantRepo   repositories.TenantRepository
	unitRepo     repositories.UnitRepository
	propertyRepo repositories.PropertyRepository
	whatsAppSvc  WhatsAppService
	clock        clockwork.Clock
}

func NewArrearsService(
	paymentRepo repositories.RentPaymentRepository,
	tenantRepo repositories.TenantRepository,
	unitRepo repositories.UnitRepository,
	propertyRepo repositories.PropertyRepository,
	whatsAppSvc WhatsAppService,
	clock clockwork.Clock,
) ArrearsService {
	return &arrearsService{
		paymentRepo:  paymentRepo,
		tenantRepo:   tenantRepo,
		unitRepo:     unitRepo,
		propertyRepo: propertyRepo,
		whatsAppSvc:  whatsAppSvc,
		clock:        clock,
	}
}

func (s *arrearsService) SweepOverdue(ctx context.Context) (int, error) {
	today := dateOnly(s.clock.Now())

	overdue, err := s.paymentRepo.ListPendingDueBefore(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("failed to list overdue obligations: %w", err)
	}

	marked := 0
	for _, payment := range overdue {
		changed, err := s.paymentRepo.MarkLate(ctx, payment.ID)
		if err != nil {
			log.Printf("Failed to mark payment %s late: %v", payment.ID, err)
			continue
		}
		if changed {
			marked++
		}
	}
	log.Printf("Overdue sweep: %d of %d obligations marked late", marked, len(overdue))
	return marked, nil
}

func (s *arrearsService) EligibilityReport(ctx context.Context) ([]models.NoticeEligibility, error) {
	today := dateOnly(s.clock.Now())

	latePayments, err := s.paymentRepo.ListByStatus(ctx, models.PaymentStatusLate)
	if err != nil {
		return nil, fmt.Errorf("failed to list late obligations: %w", err)
	}

	var report []models.NoticeEligibility
	for _, payment := range latePayments {
		entry, err := s.eligibilityFor(ctx, payment, today)
		if err != nil {
			log.Printf("Skipping payment %s in eligibility report: %v", payment.ID, err)
			continue
		}
		report = append(report, *entry)
	}
	return report, nil
}

func (s *arrearsService) eligibilityFor(ctx context.Context, payment *models.RentPayment, today time.Time) (*models.NoticeEligibility, error) {
	tenant, err := s.tenantRepo.GetByID(ctx, payment.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant: %w", err)
	}
	unit, err := s.unitRepo.GetByID(ctx, payment.UnitID)
	if err != nil {
		return nil, fmt.Errorf("failed to load unit: %w", err)
	}
	property, err := s.propertyRepo.GetByID(ctx, unit.PropertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load property: %w", err)
	}

	daysLate := daysBetween(payment.DueDate, today)
	return &models.NoticeEligibility{
		PaymentID:       payment.ID,
		TenantID:        tenant.ID,
		TenantName:      tenant.FullName(),
		UnitID:          unit.ID,
		UnitLabel:       unit.Label,
		PropertyAddress: property.Address,
		Amount:          payment.Amount,
		DueDate:         payment.DueDate,
		DaysLate:        daysLate,
		N4Eligible:      daysLate >= models.N4EligibleDays,
		L1Eligible:      daysLate >= models.L1EligibleDays,
	}, nil
}

func (s *arrearsService) RunDailySweep(ctx context.Context) (*ArrearsSweepResult, error) {
	result := &ArrearsSweepResult{}

	marked, err := s.SweepOverdue(ctx)
	if err != nil {
		return nil, err
	}
	result.MarkedLate = marked

	today := dateOnly(s.clock.Now())
	latePayments, err := s.paymentRepo.ListByStatus(ctx, models.PaymentStatusLate)
	if err != nil {
		return nil, fmt.Errorf("failed to list late obligations: %w", err)
	}

	for _, payment := range latePayments {
		item := ArrearsItem{
			PaymentID:    payment.ID,
			TenantID:     payment.TenantID,
			DaysLate:     daysBetween(payment.DueDate, today),
			NotifyStatus: NotifySkipped,
		}
		item.N4Eligible = item.DaysLate >= models.N4EligibleDays
		item.L1Eligible = item.DaysLate >= models.L1EligibleDays

		// Below the notice thresholds the tenant gets a reminder instead,
		// at most once per calendar day across overlapping sweeps.
		if item.DaysLate < models.N4EligibleDays && !s.notifiedToday(payment, today) {
			if err := s.remind(ctx, payment); err != nil {
				log.Printf("Late reminder failed for payment %s: %v", payment.ID, err)
				item.NotifyStatus = NotifyFailed
				item.Error = err.Error()
				result.Failed++
			} else {
				item.NotifyStatus = NotifySent
				result.Reminded++
			}
		}
		result.Items = append(result.Items, item)
	}

	log.Printf("Arrears sweep: %d marked late, %d reminded, %d failed, %d late total",
		result.MarkedLate, result.Reminded, result.Failed, len(result.Items))
	return result, nil
}

func (s *arrearsService) notifiedToday(payment *models.RentPayment, today time.Time) bool {
	return payment.LastNotifiedAt != nil && dateOnly(*payment.LastNotifiedAt).Equal(today)
}

func (s *arrearsService) remind(ctx context.Context, payment *models.RentPayment) error {
	tenant, err := s.tenantRepo.GetByID(ctx, payment.TenantID)
	if err != nil {
		return fmt.Errorf("failed to load tenant: %w", err)
	}
	unit, err := s.unitRepo.GetByID(ctx, payment.UnitID)
	if err != nil {
		return fmt.Errorf("failed to load unit: %w", err)
	}
	property, err := s.propertyRepo.GetByID(ctx, unit.PropertyID)
	if err != nil {
		return fmt.Errorf("failed to load property: %w", err)
	}

	if _, err := s.whatsAppSvc.SendRentNotice(ctx, tenant, payment, unit, property.Address, NoticeKindLateReminder); err != nil {
		return err
	}
	if err := s.paymentRepo.SetNotifiedAt(ctx, payment.ID, s.clock.Now()); err != nil {
		log.Printf("Failed to record reminder time for payment %s: %v", payment.ID, err)
	}
	return nil
}
