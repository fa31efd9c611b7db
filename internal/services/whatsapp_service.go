package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"rentledger/internal/models"
)

// NoticeKind selects the message template sent to the tenant.
type NoticeKind string

const (
	NoticeKindRentDue      NoticeKind = "rent_due"
	NoticeKindLateReminder NoticeKind = "late_reminder"
)

// WhatsAppService is the outbound notification dispatcher. Delivery
// failures never block obligation processing; callers log the error and
// record a failed per-item result.
type WhatsAppService interface {
	SendRentNotice(ctx context.Context, tenant *models.Tenant, payment *models.RentPayment, unit *models.Unit, propertyAddress string, kind NoticeKind) (string, error)
}

type whatsAppService struct {
	apiToken string
	phoneID  string
	baseURL  string
	http     *http.Client
}

func NewWhatsAppService(apiToken, phoneID, baseURL string) WhatsAppService {
	return &whatsAppService{
		apiToken: apiToken,
		phoneID:  phoneID,
		baseURL:  baseURL,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

type whatsAppMessage struct {
	MessagingProduct string `json:"messaging_product"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		Body string `json:"body"`
	} `json:"text"`
}

type whatsAppResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

func (s *whatsAppService) SendRentNotice(ctx context.Context, tenant *models.Tenant, payment *models.RentPayment, unit *models.Unit, propertyAddress string, kind NoticeKind) (string, error) {
	if tenant.Phone == nil || *tenant.Phone == "" {
		return "", fmt.Errorf("tenant %s has no phone number", tenant.ID)
	}

	msg := whatsAppMessage{
		MessagingProduct: "whatsapp",
		To:               *tenant.Phone,
		Type:             "text",
	}
	msg.Text.Body = s.renderBody(tenant, payment, unit, propertyAddress, kind)

	payload, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal WhatsApp message: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", s.baseURL, s.phoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create WhatsApp request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiToken)

	resp, err := s.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("WhatsApp request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("WhatsApp API returned %d: %s", resp.StatusCode, string(body))
	}

	var waResp whatsAppResponse
	if err := json.NewDecoder(resp.Body).Decode(&waResp); err != nil {
		return "", fmt.Errorf("failed to decode WhatsApp response: %w", err)
	}
	if len(waResp.Messages) == 0 {
		return "", fmt.Errorf("WhatsApp API returned no message id")
	}
	return waResp.Messages[0].ID, nil
}

func (s *whatsAppService) renderBody(tenant *models.Tenant, payment *models.RentPayment, unit *models.Unit, propertyAddress string, kind NoticeKind) string {
	due := payment.DueDate.Format("January 2, 2006")
	link := ""
	if payment.PaymentLink != nil {
		link = "\nPay online: " + *payment.PaymentLink
	}

	switch kind {
	case NoticeKindLateReminder:
		return fmt.Sprintf("Hi %s, your rent of $%.2f for unit %s at %s was due on %s and is still outstanding. Please arrange payment as soon as possible.%s",
			tenant.FullName(), payment.Amount, unit.Label, propertyAddress, due, link)
	default:
		return fmt.Sprintf("Hi %s, your rent of $%.2f for unit %s at %s is due on %s.%s",
			tenant.FullName(), payment.Amount, unit.Label, propertyAddress, due, link)
	}
}
