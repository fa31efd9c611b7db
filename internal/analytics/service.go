package analytics

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"rentledger/internal/caching"
	"rentledger/internal/models"
	"rentledger/internal/repositories"

	"github.com/jonboulle/clockwork"
)

const (
	arrearsSummaryKey = "rentledger:analytics:arrears"
	arrearsSummaryTTL = 15 * time.Minute
)

// ArrearsSummary is the portfolio-level collections snapshot shown on the
// back-office dashboard.
type ArrearsSummary struct {
	TotalOutstanding float64   `json:"total_outstanding"`
	PendingCount     int       `json:"pending_count"`
	LateCount        int       `json:"late_count"`
	PartialCount     int       `json:"partial_count"`
	N4EligibleCount  int       `json:"n4_eligible_count"`
	L1EligibleCount  int       `json:"l1_eligible_count"`
	LastUpdated      time.Time `json:"last_updated"`
}

type AnalyticsService struct {
	paymentRepo repositories.RentPaymentRepository
	cacheSvc    caching.CacheService
	clock       clockwork.Clock
}

func NewAnalyticsService(paymentRepo repositories.RentPaymentRepository, cacheSvc caching.CacheService, clock clockwork.Clock) *AnalyticsService {
	return &AnalyticsService{
		paymentRepo: paymentRepo,
		cacheSvc:    cacheSvc,
		clock:       clock,
	}
}

// ArrearsSummary computes the portfolio snapshot, serving a cached copy
// when one is fresh.
func (a *AnalyticsService) ArrearsSummary(ctx context.Context) (*ArrearsSummary, error) {
	if cached, err := a.cacheSvc.GetString(ctx, arrearsSummaryKey); err == nil && cached != "" {
		var summary ArrearsSummary
		if err := json.Unmarshal([]byte(cached), &summary); err == nil {
			return &summary, nil
		}
	}

	outstanding, err := a.paymentRepo.ListOutstanding(ctx)
	if err != nil {
		return nil, err
	}

	today := a.clock.Now()
	summary := &ArrearsSummary{LastUpdated: today}
	for _, payment := range outstanding {
		summary.TotalOutstanding += payment.Amount
		switch payment.Status {
		case models.PaymentStatusPending:
			summary.PendingCount++
		case models.PaymentStatusPartial:
			summary.PartialCount++
		case models.PaymentStatusLate:
			summary.LateCount++
			daysLate := models.DaysLate(payment.DueDate, today)
			if daysLate >= models.N4EligibleDays {
				summary.N4EligibleCount++
			}
			if daysLate >= models.L1EligibleDays {
				summary.L1EligibleCount++
			}
		}
	}

	if data, err := json.Marshal(summary); err == nil {
		if err := a.cacheSvc.SetString(ctx, arrearsSummaryKey, string(data), arrearsSummaryTTL); err != nil {
			log.Printf("Failed to cache arrears summary: %v", err)
		}
	}
	return summary, nil
}

// InvalidateArrearsSummary drops the cached snapshot; sweeps call this
// after changing payment statuses.
func (a *AnalyticsService) InvalidateArrearsSummary(ctx context.Context) error {
	return a.cacheSvc.Delete(ctx, arrearsSummaryKey)
}
