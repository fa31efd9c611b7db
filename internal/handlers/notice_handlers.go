package handlers

import (
	"net/http"

	"rentledger/internal/common"
	"rentledger/internal/services"

	"github.com/labstack/echo/v4"
)

// NoticeHandlers serves the legal-forms workflow: N4 and L1 candidate
// lists plus dated report exports to object storage.
type NoticeHandlers struct {
	noticeSvc services.NoticeService
}

func NewNoticeHandlers(noticeSvc services.NoticeService) *NoticeHandlers {
	return &NoticeHandlers{noticeSvc: noticeSvc}
}

func (h *NoticeHandlers) ListN4Eligible(c echo.Context) error {
	entries, err := h.noticeSvc.ListN4Eligible(c.Request().Context())
	if err != nil {
		return common.SendServerError(c, "Failed to compute N4 eligibility")
	}
	return c.JSON(http.StatusOK, entries)
}

func (h *NoticeHandlers) ListL1Eligible(c echo.Context) error {
	entries, err := h.noticeSvc.ListL1Eligible(c.Request().Context())
	if err != nil {
		return common.SendServerError(c, "Failed to compute L1 eligibility")
	}
	return c.JSON(http.StatusOK, entries)
}

func (h *NoticeHandlers) ExportReport(c echo.Context) error {
	url, err := h.noticeSvc.ExportReport(c.Request().Context())
	if err != nil {
		return common.SendServerError(c, "Failed to export eligibility report")
	}
	return c.JSON(http.StatusOK, map[string]string{"report_url": url})
}
