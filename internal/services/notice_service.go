package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"rentledger/internal/models"

	"github.com/jonboulle/clockwork"
)

const noticeBucket = "legal-notices"

// NoticeService serves the legal-forms consumer: it filters the arrears
// eligibility report down to the N4 and L1 candidate lists and archives a
// dated snapshot in object storage for the paralegal workflow.
type NoticeService interface {
	ListN4Eligible(ctx context.Context) ([]models.NoticeEligibility, error)
	ListL1Eligible(ctx context.Context) ([]models.NoticeEligibility, error)
	// ExportReport stores today's full eligibility report and returns a
	// presigned URL for it.
	ExportReport(ctx context.Context) (string, error)
}

type noticeService struct {
	arrearsSvc ArrearsService
	minioSvc   MinioService
	clock      clockwork.Clock
}

func NewNoticeService(arrearsSvc ArrearsService, minioSvc MinioService, clock clockwork.Clock) NoticeService {
	return &noticeService{
		arrearsSvc: arrearsSvc,
		minioSvc:   minioSvc,
		clock:      clock,
	}
}

func (s *noticeService) ListN4Eligible(ctx context.Context) ([]models.NoticeEligibility, error) {
	return s.filter(ctx, func(e models.NoticeEligibility) bool { return e.N4Eligible })
}

func (s *noticeService) ListL1Eligible(ctx context.Context) ([]models.NoticeEligibility, error) {
	return s.filter(ctx, func(e models.NoticeEligibility) bool { return e.L1Eligible })
}

func (s *noticeService) filter(ctx context.Context, keep func(models.NoticeEligibility) bool) ([]models.NoticeEligibility, error) {
	report, err := s.arrearsSvc.EligibilityReport(ctx)
	if err != nil {
		return nil, err
	}
	var out []models.NoticeEligibility
	for _, entry := range report {
		if keep(entry) {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (s *noticeService) ExportReport(ctx context.Context) (string, error) {
	report, err := s.arrearsSvc.EligibilityReport(ctx)
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal eligibility report: %w", err)
	}

	if err := s.minioSvc.EnsureBucketExists(ctx, noticeBucket); err != nil {
		return "", fmt.Errorf("failed to ensure notice bucket: %w", err)
	}

	objectName := fmt.Sprintf("eligibility/%s.json", s.clock.Now().Format("2006-01-02"))
	if err := s.minioSvc.UploadReport(ctx, noticeBucket, objectName, bytes.NewReader(data), int64(len(data))); err != nil {
		return "", fmt.Errorf("failed to upload eligibility report: %w", err)
	}
	log.Printf("Exported eligibility report %s with %d entries", objectName, len(report))

	return s.minioSvc.GetPresignedURL(noticeBucket, objectName, 24*time.Hour)
}
