package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"rentledger/internal/common"
	"rentledger/internal/models"
	"rentledger/internal/repositories"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Per-item outcome of a billing sweep.
const (
	SweepItemCreated = "created"
	SweepItemSkipped = "skipped"
	SweepItemFailed  = "failed"

	NotifySent    = "sent"
	NotifyFailed  = "failed"
	NotifySkipped = "skipped"
)

type SweepItem struct {
	TenantID     uuid.UUID  `json:"tenant_id"`
	UnitID       uuid.UUID  `json:"unit_id"`
	PaymentID    *uuid.UUID `json:"payment_id,omitempty"`
	Status       string     `json:"status"`
	NotifyStatus string     `json:"notify_status"`
	DeliveryID   *string    `json:"delivery_id,omitempty"`
	DaysLate     int        `json:"days_late"`
	Error        string     `json:"error,omitempty"`
}

type SweepResult struct {
	Day     int         `json:"day"`
	Created int         `json:"created"`
	Skipped int         `json:"skipped"`
	Failed  int         `json:"failed"`
	Items   []SweepItem `json:"items"`
}

func (r *SweepResult) add(item SweepItem) {
	switch item.Status {
	case SweepItemCreated:
		r.Created++
	case SweepItemSkipped:
		r.Skipped++
	default:
		r.Failed++
	}
	r.Items = append(r.Items, item)
}

// BillingService is the billing period generator: once a day it turns
// every primary binding whose due day has arrived into that month's rent
// obligation, exactly once per tenant/unit/month however often it runs.
type BillingService interface {
	// GenerateDueRents bills bindings whose due day matches the current day.
	// dayOverride (1-31) replaces the clock's day-of-month for replay.
	GenerateDueRents(ctx context.Context, dayOverride *int) (*SweepResult, error)
	// CatchUpMissedRents creates late obligations for bindings whose due day
	// already passed this month without one (late onboarding, downtime).
	CatchUpMissedRents(ctx context.Context) (*SweepResult, error)
	RunDailySweep(ctx context.Context) (*SweepResult, error)
}

type billingService struct {
	bindingRepo  repositories.BindingRepository
	paymentRepo  repositories.RentPaymentRepository
	tenantRepo   repositories.TenantRepository
	unitRepo     repositories.UnitRepository
	propertyRepo repositories.PropertyRepository
	linkSvc      PaymentLinkService
	whatsAppSvc  WhatsAppService
	clock        clockwork.Clock
}

func NewBillingService(
	bindingRepo repositories.BindingRepository,
	paymentRepo repositories.RentPaymentRepository,
	tenantRepo repositories.TenantRepository,
	unitRepo repositories.UnitRepository,
	propertyRepo repositories.PropertyRepository,
	linkSvc PaymentLinkService,
	whatsAppSvc WhatsAppService,
	clock clockwork.Clock,
) BillingService {
	return &billingService{
		bindingRepo:  bindingRepo,
		paymentRepo:  paymentRepo,
		tenantRepo:   tenantRepo,
		unitRepo:     unitRepo,
		propertyRepo: propertyRepo,
		linkSvc:      linkSvc,
		whatsAppSvc:  whatsAppSvc,
		clock:        clock,
	}
}

func (s *billingService) GenerateDueRents(ctx context.Context, dayOverride *int) (*SweepResult, error) {
	today := dateOnly(s.clock.Now())
	day := today.Day()
	if dayOverride != nil {
		if *dayOverride < 1 || *dayOverride > 31 {
			return nil, fmt.Errorf("%w: day override must be between 1 and 31", common.ErrValidation)
		}
		day = *dayOverride
	}

	lastDay := lastDayOfMonth(today)
	// On the closing day of a short month, due days past the month's end
	// bill today: a due day of 31 must not skip February.
	includeBeyond := day == lastDay

	bindings, err := s.bindingRepo.ListPrimaryDueOn(ctx, day, includeBeyond)
	if err != nil {
		return nil, fmt.Errorf("failed to list bindings due on day %d: %w", day, err)
	}

	result := &SweepResult{Day: day}
	for _, binding := range bindings {
		result.add(s.generateForBinding(ctx, binding, today, NoticeKindRentDue))
	}
	log.Printf("Rent generation for day %d: %d created, %d skipped, %d failed", day, result.Created, result.Skipped, result.Failed)
	return result, nil
}

func (s *billingService) CatchUpMissedRents(ctx context.Context) (*SweepResult, error) {
	today := dateOnly(s.clock.Now())

	bindings, err := s.bindingRepo.ListPrimary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list primary bindings: %w", err)
	}

	result := &SweepResult{Day: today.Day()}
	for _, binding := range bindings {
		if binding.RentDueDay == nil {
			continue
		}
		dueDate := dueDateFor(today, *binding.RentDueDay)
		if !dueDate.Before(today) {
			continue
		}
		result.add(s.generateForBinding(ctx, binding, today, NoticeKindLateReminder))
	}
	log.Printf("Rent catch-up: %d created, %d skipped, %d failed", result.Created, result.Skipped, result.Failed)
	return result, nil
}

func (s *billingService) RunDailySweep(ctx context.Context) (*SweepResult, error) {
	result, err := s.GenerateDueRents(ctx, nil)
	if err != nil {
		return nil, err
	}
	catchUp, err := s.CatchUpMissedRents(ctx)
	if err != nil {
		return result, err
	}
	result.Created += catchUp.Created
	result.Skipped += catchUp.Skipped
	result.Failed += catchUp.Failed
	result.Items = append(result.Items, catchUp.Items...)
	return result, nil
}

// generateForBinding creates one binding's obligation for the current
// month. Idempotent: an existing row for the tenant/unit/month makes this
// a no-op, both via the pre-insert check and the store's unique key.
func (s *billingService) generateForBinding(ctx context.Context, binding *models.Binding, today time.Time, kind NoticeKind) SweepItem {
	item := SweepItem{TenantID: binding.TenantID, UnitID: binding.UnitID, NotifyStatus: NotifySkipped}

	if !binding.HasRentTerms() {
		item.Status = SweepItemFailed
		item.Error = "primary binding is missing rent amount or due day"
		log.Printf("Skipping tenant %s: %s", binding.TenantID, item.Error)
		return item
	}

	dueDate := dueDateFor(today, *binding.RentDueDay)
	periodStart, periodEnd := monthBounds(today)

	existing, err := s.paymentRepo.FindForPeriod(ctx, binding.TenantID, binding.UnitID, periodStart, periodEnd)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		item.Status = SweepItemFailed
		item.Error = fmt.Sprintf("failed to check existing obligation: %v", err)
		return item
	}
	if existing != nil {
		item.Status = SweepItemSkipped
		item.PaymentID = &existing.ID
		return item
	}

	tenant, err := s.tenantRepo.GetByID(ctx, binding.TenantID)
	if err != nil {
		item.Status = SweepItemFailed
		item.Error = fmt.Sprintf("failed to load tenant: %v", err)
		return item
	}

	status := models.PaymentStatusPending
	if dueDate.Before(today) {
		status = models.PaymentStatusLate
		item.DaysLate = daysBetween(dueDate, today)
	}

	payment := &models.RentPayment{
		ID:          uuid.New(),
		TenantID:    binding.TenantID,
		UnitID:      binding.UnitID,
		Amount:      *binding.RentAmount,
		DueDate:     dueDate,
		PeriodMonth: periodStart,
		Status:      status,
	}

	// Payment link failure is not a reason to withhold the obligation.
	if tenant.Email != nil {
		memo := fmt.Sprintf("Rent for %s", dueDate.Format("January 2006"))
		link, err := s.linkSvc.GenerateLink(ctx, *tenant.Email, tenant.FullName(), payment.Amount, memo)
		if err != nil {
			log.Printf("Payment link generation failed for tenant %s: %v", tenant.ID, err)
		} else {
			payment.PaymentLink = &link
		}
	}

	inserted, err := s.paymentRepo.Insert(ctx, payment)
	if err != nil {
		item.Status = SweepItemFailed
		item.Error = fmt.Sprintf("failed to insert obligation: %v", err)
		return item
	}
	if !inserted {
		// Lost a race with an overlapping sweep; the other row wins.
		item.Status = SweepItemSkipped
		return item
	}
	item.Status = SweepItemCreated
	item.PaymentID = &payment.ID

	deliveryID, err := s.notify(ctx, tenant, payment, kind)
	if err != nil {
		log.Printf("Notification failed for tenant %s payment %s: %v", tenant.ID, payment.ID, err)
		item.NotifyStatus = NotifyFailed
		return item
	}
	item.NotifyStatus = NotifySent
	item.DeliveryID = &deliveryID
	return item
}

func (s *billingService) notify(ctx context.Context, tenant *models.Tenant, payment *models.RentPayment, kind NoticeKind) (string, error) {
	unit, err := s.unitRepo.GetByID(ctx, payment.UnitID)
	if err != nil {
		return "", fmt.Errorf("failed to load unit: %w", err)
	}
	property, err := s.propertyRepo.GetByID(ctx, unit.PropertyID)
	if err != nil {
		return "", fmt.Errorf("failed to load property: %w", err)
	}

	deliveryID, err := s.whatsAppSvc.SendRentNotice(ctx, tenant, payment, unit, property.Address, kind)
	if err != nil {
		return "", err
	}
	if err := s.paymentRepo.SetNotifiedAt(ctx, payment.ID, s.clock.Now()); err != nil {
		log.Printf("Failed to record notification time for payment %s: %v", payment.ID, err)
	}
	return deliveryID, nil
}
