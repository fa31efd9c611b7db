package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// PaymentLinkService fronts the hosted payment-link provider. The token it
// returns is opaque: the back office stores it on the obligation and embeds
// it in notices, nothing more. Link failures are recoverable; obligations
// are created without a link and pick one up on a later sweep.
type PaymentLinkService interface {
	GenerateLink(ctx context.Context, email, name string, amount float64, memo string) (string, error)
}

type paymentLinkService struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

type createLinkRequest struct {
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Description string  `json:"description"`
	Customer    struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"customer"`
}

type createLinkResponse struct {
	ID       string `json:"id"`
	ShortURL string `json:"short_url"`
	Status   string `json:"status"`
}

func NewPaymentLinkService(apiKey, baseURL string) PaymentLinkService {
	return &paymentLinkService{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *paymentLinkService) GenerateLink(ctx context.Context, email, name string, amount float64, memo string) (string, error) {
	reqBody := createLinkRequest{
		Amount:      amount,
		Currency:    "CAD",
		Description: memo,
	}
	reqBody.Customer.Name = name
	reqBody.Customer.Email = email

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payment link request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/payment_links", bytes.NewBuffer(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create payment link request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("payment link request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("payment link provider returned %d: %s", resp.StatusCode, string(body))
	}

	var linkResp createLinkResponse
	if err := json.NewDecoder(resp.Body).Decode(&linkResp); err != nil {
		return "", fmt.Errorf("failed to decode payment link response: %w", err)
	}
	if linkResp.ShortURL == "" {
		return "", fmt.Errorf("payment link provider returned empty link (status %q)", linkResp.Status)
	}
	return linkResp.ShortURL, nil
}
