package handlers

import (
	"errors"
	"log"
	"net/http"

	"rentledger/internal/analytics"
	"rentledger/internal/common"
	"rentledger/internal/services"

	"github.com/labstack/echo/v4"
)

// JobHandlers exposes the daily sweeps to the external scheduler. The
// rent-generation trigger accepts an optional day-of-month override for
// replaying a missed run.
type JobHandlers struct {
	billingSvc   services.BillingService
	arrearsSvc   services.ArrearsService
	analyticsSvc *analytics.AnalyticsService
}

func NewJobHandlers(billingSvc services.BillingService, arrearsSvc services.ArrearsService, analyticsSvc *analytics.AnalyticsService) *JobHandlers {
	return &JobHandlers{
		billingSvc:   billingSvc,
		arrearsSvc:   arrearsSvc,
		analyticsSvc: analyticsSvc,
	}
}

type rentGenerationRequest struct {
	Day *int `json:"day"`
}

// rentGenerationResponse carries the merged sweep result. CatchUpError is
// set when the catch-up half failed, meaning the result covers the
// generation half only.
type rentGenerationResponse struct {
	*services.SweepResult
	CatchUpError string `json:"catch_up_error,omitempty"`
}

func (h *JobHandlers) TriggerRentGeneration(c echo.Context) error {
	var req rentGenerationRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request body")
	}

	result, err := h.billingSvc.GenerateDueRents(c.Request().Context(), req.Day)
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			return common.SendClientError(c, err.Error())
		}
		return common.SendServerError(c, "Rent generation failed")
	}

	resp := rentGenerationResponse{SweepResult: result}
	catchUp, err := h.billingSvc.CatchUpMissedRents(c.Request().Context())
	if err != nil {
		log.Printf("Rent catch-up failed after generation: %v", err)
		resp.CatchUpError = err.Error()
	} else {
		result.Created += catchUp.Created
		result.Skipped += catchUp.Skipped
		result.Failed += catchUp.Failed
		result.Items = append(result.Items, catchUp.Items...)
	}

	if err := h.analyticsSvc.InvalidateArrearsSummary(c.Request().Context()); err != nil {
		log.Printf("Failed to invalidate arrears summary cache: %v", err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *JobHandlers) TriggerArrearsSweep(c echo.Context) error {
	result, err := h.arrearsSvc.RunDailySweep(c.Request().Context())
	if err != nil {
		return common.SendServerError(c, "Arrears sweep failed")
	}

	if err := h.analyticsSvc.InvalidateArrearsSummary(c.Request().Context()); err != nil {
		log.Printf("Failed to invalidate arrears summary cache: %v", err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *JobHandlers) GetArrearsSummary(c echo.Context) error {
	summary, err := h.analyticsSvc.ArrearsSummary(c.Request().Context())
	if err != nil {
		return common.SendServerError(c, "Failed to compute arrears summary")
	}
	return c.JSON(http.StatusOK, summary)
}
