package handlers

import (
	"net/http"
	"time"

	"edumart/internal/common"
	"edumart/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// SubscriptionHandlers handles HTTP requests for subscription lifecycle
type SubscriptionHandlers struct {
	subscriptionService services.SubscriptionService
}

// NewSubscriptionHandlers creates a new subscription handlers instance
func NewSubscriptionHandlers(subscriptionService services.SubscriptionService) *SubscriptionHandlers {
	return &SubscriptionHandlers{subscriptionService: subscriptionService}
}

func (h *SubscriptionHandlers) userIDParam(c echo.Context) (uuid.UUID, error) {
	return common.ValidateUUID(c.Param("id"), "user id")
}

// GetOwnSubscription handles GET /subscriptions/me
func (h *SubscriptionHandlers) GetOwnSubscription(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	view, err := h.subscriptionService.Resolve(ctx, userID)
	if err != nil {
		return common.SendError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":      true,
		"subscription": view,
	})
}

// ContinueOwnSubscription handles POST /subscriptions/me/continue
func (h *SubscriptionHandlers) ContinueOwnSubscription(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req struct {
		EndDate time.Time `json:"end_date"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.EndDate.IsZero() {
		return echo.NewHTTPError(http.StatusBadRequest, "end_date is required")
	}

	if err := h.subscriptionService.Continue(ctx, userID, req.EndDate); err != nil {
		return common.SendError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Subscription continued successfully",
	})
}

// AssignSubscription handles POST /admin/users/:id/subscription
func (h *SubscriptionHandlers) AssignSubscription(c echo.Context) error {
	userID, err := h.userIDParam(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req struct {
		PlanID uuid.UUID `json:"plan_id"`
		Notes  *string   `json:"notes"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.PlanID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "plan_id is required")
	}

	if err := h.subscriptionService.Assign(c.Request().Context(), userID, req.PlanID, req.Notes); err != nil {
		return common.SendError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Subscription assigned successfully",
	})
}

// ExtendSubscription handles PUT /admin/users/:id/subscription/extend
func (h *SubscriptionHandlers) ExtendSubscription(c echo.Context) error {
	userID, err := h.userIDParam(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req struct {
		EndDate time.Time `json:"end_date"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.EndDate.IsZero() {
		return echo.NewHTTPError(http.StatusBadRequest, "end_date is required")
	}

	if err := h.subscriptionService.Extend(c.Request().Context(), userID, req.EndDate); err != nil {
		return common.SendError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Subscription extended successfully",
	})
}

// ChangeSubscriptionPlan handles PUT /admin/users/:id/subscription/plan
func (h *SubscriptionHandlers) ChangeSubscriptionPlan(c echo.Context) error {
	userID, err := h.userIDParam(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req struct {
		PlanID uuid.UUID `json:"plan_id"`
		Notes  *string   `json:"notes"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.PlanID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "plan_id is required")
	}

	if err := h.subscriptionService.ChangePlan(c.Request().Context(), userID, req.PlanID, req.Notes); err != nil {
		return common.SendError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Subscription plan changed successfully",
	})
}

// SuspendSubscription handles PUT /admin/users/:id/subscription/suspend
func (h *SubscriptionHandlers) SuspendSubscription(c echo.Context) error {
	userID, err := h.userIDParam(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.subscriptionService.Suspend(c.Request().Context(), userID); err != nil {
		return common.SendError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Subscription suspended successfully",
	})
}

// ReactivateSubscription handles PUT /admin/users/:id/subscription/reactivate
func (h *SubscriptionHandlers) ReactivateSubscription(c echo.Context) error {
	userID, err := h.userIDParam(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.subscriptionService.Reactivate(c.Request().Context(), userID); err != nil {
		return common.SendError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Subscription reactivated successfully",
	})
}

// CancelSubscription handles DELETE /admin/users/:id/subscription
func (h *SubscriptionHandlers) CancelSubscription(c echo.Context) error {
	userID, err := h.userIDParam(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.subscriptionService.Cancel(c.Request().Context(), userID); err != nil {
		return common.SendError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Subscription cancelled successfully",
	})
}

// ResetBrowseCount handles POST /admin/users/:id/subscription/reset-browse
func (h *SubscriptionHandlers) ResetBrowseCount(c echo.Context) error {
	userID, err := h.userIDParam(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.subscriptionService.ResetBrowseCount(c.Request().Context(), userID); err != nil {
		return common.SendError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Browse count reset successfully",
	})
}
