package handlers

import (
	"net/http"
	"time"

	"edumart/internal/common"
	"edumart/internal/reports"
	"edumart/internal/services"

	"github.com/labstack/echo/v4"
)

// StatsHandlers serves the reporting surface: per-user usage, global rollups
// and the monthly CSV export.
type StatsHandlers struct {
	statsService  services.StatsService
	reportService reports.ReportService
}

// NewStatsHandlers creates a new stats handlers instance
func NewStatsHandlers(statsService services.StatsService, reportService reports.ReportService) *StatsHandlers {
	return &StatsHandlers{
		statsService:  statsService,
		reportService: reportService,
	}
}

// GetOwnUsageStats handles GET /stats/usage/me
func (h *StatsHandlers) GetOwnUsageStats(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	stats, err := h.statsService.GetUsageStats(ctx, userID)
	if err != nil {
		return common.SendError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"stats":   stats,
	})
}

// GetUserUsageStats handles GET /admin/stats/usage/:id
func (h *StatsHandlers) GetUserUsageStats(c echo.Context) error {
	userID, err := common.ValidateUUID(c.Param("id"), "user id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	stats, err := h.statsService.GetUsageStats(c.Request().Context(), userID)
	if err != nil {
		return common.SendError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"stats":   stats,
	})
}

// GetGlobalStats handles GET /admin/stats/subscriptions
func (h *StatsHandlers) GetGlobalStats(c echo.Context) error {
	stats, err := h.statsService.GetGlobalStats(c.Request().Context())
	if err != nil {
		return common.SendError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"stats":   stats,
	})
}

// GetPlanStats handles GET /admin/stats/plans
func (h *StatsHandlers) GetPlanStats(c echo.Context) error {
	stats, err := h.statsService.GetPlanStats(c.Request().Context())
	if err != nil {
		return common.SendError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"plans":   stats,
	})
}

// GenerateUsageReport handles POST /admin/reports/usage. Uploads the CSV and
// returns a short-lived download link.
func (h *StatsHandlers) GenerateUsageReport(c echo.Context) error {
	ctx := c.Request().Context()

	objectName, err := h.reportService.GenerateUsageReport(ctx, time.Now())
	if err != nil {
		return common.SendError(c, err)
	}

	url, err := h.reportService.GetReportURL(objectName, 24*time.Hour)
	if err != nil {
		return common.SendError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"object":  objectName,
		"url":     url,
	})
}
