package handlers

import (
	"net/http"
	"strconv"

	"edumart/internal/common"
	"edumart/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ChangeRequestHandlers handles HTTP requests for the plan-change workflow
type ChangeRequestHandlers struct {
	changeRequestService services.ChangeRequestService
}

// NewChangeRequestHandlers creates a new change request handlers instance
func NewChangeRequestHandlers(changeRequestService services.ChangeRequestService) *ChangeRequestHandlers {
	return &ChangeRequestHandlers{changeRequestService: changeRequestService}
}

func paginationParams(c echo.Context) (int, int) {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	return common.ValidatePaginationParams(limit, offset)
}

// CreateChangeRequest handles POST /change-requests
func (h *ChangeRequestHandlers) CreateChangeRequest(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req struct {
		PlanID      uuid.UUID `json:"plan_id"`
		RequestType string    `json:"request_type"`
		Notes       *string   `json:"notes"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.PlanID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "plan_id is required")
	}

	request, err := h.changeRequestService.Create(ctx, userID, req.PlanID, req.RequestType, req.Notes)
	if err != nil {
		return common.SendError(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Change request submitted",
		"request": request,
	})
}

// ListOwnChangeRequests handles GET /change-requests/me
func (h *ChangeRequestHandlers) ListOwnChangeRequests(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset := paginationParams(c)
	requests, err := h.changeRequestService.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return common.SendError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":  true,
		"requests": requests,
	})
}

// ListChangeRequests handles GET /admin/change-requests
func (h *ChangeRequestHandlers) ListChangeRequests(c echo.Context) error {
	var userID *uuid.UUID
	if raw := c.QueryParam("user_id"); raw != "" {
		id, err := common.ValidateUUID(raw, "user_id")
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		userID = &id
	}

	limit, offset := paginationParams(c)
	requests, err := h.changeRequestService.List(c.Request().Context(), c.QueryParam("status"), userID, limit, offset)
	if err != nil {
		return common.SendError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":  true,
		"requests": requests,
	})
}

// GetChangeRequest handles GET /admin/change-requests/:id
func (h *ChangeRequestHandlers) GetChangeRequest(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "request id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	request, err := h.changeRequestService.GetByID(c.Request().Context(), id)
	if err != nil {
		return common.SendError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"request": request,
	})
}

// ApproveChangeRequest handles PUT /admin/change-requests/:id/approve
func (h *ChangeRequestHandlers) ApproveChangeRequest(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "request id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req struct {
		AdminNotes *string `json:"admin_notes"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.changeRequestService.Approve(c.Request().Context(), id, req.AdminNotes); err != nil {
		return common.SendError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Change request approved",
	})
}

// RejectChangeRequest handles PUT /admin/change-requests/:id/reject
func (h *ChangeRequestHandlers) RejectChangeRequest(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "request id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req struct {
		AdminNotes *string `json:"admin_notes"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.changeRequestService.Reject(c.Request().Context(), id, req.AdminNotes); err != nil {
		return common.SendError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Change request rejected",
	})
}
