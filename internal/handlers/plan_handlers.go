package handlers

import (
	"net/http"

	"edumart/internal/common"
	"edumart/internal/models"
	"edumart/internal/services"

	"github.com/labstack/echo/v4"
)

// PlanHandlers handles HTTP requests for the plan catalog
type PlanHandlers struct {
	planService services.PlanService
}

// NewPlanHandlers creates a new plan handlers instance
func NewPlanHandlers(planService services.PlanService) *PlanHandlers {
	return &PlanHandlers{planService: planService}
}

type planRequest struct {
	Name         string              `json:"name"`
	DisplayName  string              `json:"display_name"`
	Persona      string              `json:"persona"`
	Price        float64             `json:"price"`
	Currency     string              `json:"currency"`
	DurationDays int                 `json:"duration_days"`
	Features     models.PlanFeatures `json:"features"`
}

func (r *planRequest) toModel() *models.Plan {
	return &models.Plan{
		Name:         r.Name,
		DisplayName:  r.DisplayName,
		Persona:      r.Persona,
		Price:        r.Price,
		Currency:     r.Currency,
		DurationDays: r.DurationDays,
		Features:     r.Features,
	}
}

// ListPlans handles GET /plans
func (h *PlanHandlers) ListPlans(c echo.Context) error {
	plans, err := h.planService.ListActive(c.Request().Context(), c.QueryParam("persona"))
	if err != nil {
		return common.SendError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"plans":   plans,
	})
}

// GetPlan handles GET /plans/:id
func (h *PlanHandlers) GetPlan(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "plan id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	plan, err := h.planService.GetByID(c.Request().Context(), id)
	if err != nil {
		return common.SendError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"plan":    plan,
	})
}

// CreatePlan handles POST /admin/plans
func (h *PlanHandlers) CreatePlan(c echo.Context) error {
	var req planRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	plan, err := h.planService.Create(c.Request().Context(), req.toModel())
	if err != nil {
		return common.SendError(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Plan created successfully",
		"plan":    plan,
	})
}

// UpdatePlan handles PUT /admin/plans/:id
func (h *PlanHandlers) UpdatePlan(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "plan id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req planRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	plan, err := h.planService.Update(c.Request().Context(), id, req.toModel())
	if err != nil {
		return common.SendError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Plan updated successfully",
		"plan":    plan,
	})
}

// TogglePlanActive handles PUT /admin/plans/:id/toggle
func (h *PlanHandlers) TogglePlanActive(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "plan id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	plan, err := h.planService.ToggleActive(c.Request().Context(), id)
	if err != nil {
		return common.SendError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Plan availability updated",
		"plan":    plan,
	})
}
