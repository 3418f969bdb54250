package handlers

import (
	"log"
	"net/http"
	"time"

	"edumart/internal/caching"
	"edumart/internal/common"
	"edumart/internal/entitlement"
	"edumart/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	browseCheckRateLimit  = 60
	browseCheckRateWindow = time.Minute
)

// EntitlementHandlers exposes the quota checks and counter mutations other
// marketplace services call before and after gated actions.
type EntitlementHandlers struct {
	entitlementService services.EntitlementService
	usageService       services.UsageService
	cacheService       caching.CacheService
}

// NewEntitlementHandlers creates a new entitlement handlers instance
func NewEntitlementHandlers(
	entitlementService services.EntitlementService,
	usageService services.UsageService,
	cacheService caching.CacheService,
) *EntitlementHandlers {
	return &EntitlementHandlers{
		entitlementService: entitlementService,
		usageService:       usageService,
		cacheService:       cacheService,
	}
}

// CheckBrowse handles GET /entitlements/browse
func (h *EntitlementHandlers) CheckBrowse(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limited, err := h.cacheService.IsRateLimited(ctx, "browse:"+userID.String(), browseCheckRateLimit, browseCheckRateWindow)
	if err != nil {
		// Rate limiting is advisory; the quota check itself still runs.
		log.Printf("WARN: rate limit check failed for user %s: %v", userID, err)
	} else if limited {
		return echo.NewHTTPError(http.StatusTooManyRequests, "Too many browse checks, slow down")
	}

	result, err := h.entitlementService.CheckBrowseLimit(ctx, userID)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// CheckListing handles GET /entitlements/listings
func (h *EntitlementHandlers) CheckListing(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	result, err := h.entitlementService.CheckListingLimit(ctx, userID)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// CheckJobPost handles GET /entitlements/job-posts
func (h *EntitlementHandlers) CheckJobPost(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	result, err := h.entitlementService.CheckJobPostLimit(ctx, userID)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *EntitlementHandlers) counterParam(c echo.Context) (entitlement.Counter, bool) {
	switch c.Param("counter") {
	case "browse":
		return entitlement.CounterBrowse, true
	case "listings":
		return entitlement.CounterListings, true
	case "job-posts":
		return entitlement.CounterJobPosts, true
	}
	return "", false
}

// IncrementUsage handles POST /entitlements/usage/:counter/increment
func (h *EntitlementHandlers) IncrementUsage(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	counter, ok := h.counterParam(c)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "Unknown counter")
	}

	result, err := h.usageService.Increment(ctx, userID, counter)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// DecrementUsage handles POST /entitlements/usage/:counter/decrement. Used
// when a listing or job post is deleted so the quota slot frees up.
func (h *EntitlementHandlers) DecrementUsage(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	counter, ok := h.counterParam(c)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "Unknown counter")
	}

	result, err := h.usageService.Decrement(ctx, userID, counter)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// CheckVisibility handles GET /entitlements/visibility. The viewer is taken
// from the token when present; the endpoint also serves anonymous traffic.
func (h *EntitlementHandlers) CheckVisibility(c echo.Context) error {
	ctx := c.Request().Context()

	createdAt, err := time.Parse(time.RFC3339, c.QueryParam("created_at"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "created_at must be RFC3339")
	}
	ownerID, err := common.ValidateUUID(c.QueryParam("owner_id"), "owner_id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var viewerID *uuid.UUID
	if id, ok := common.GetUserIDFromContext(ctx); ok {
		viewerID = &id
	}

	visibility, err := h.entitlementService.CheckListingVisibility(ctx, createdAt, ownerID, viewerID)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":    true,
		"visibility": visibility,
	})
}

// CheckNotifications handles GET /entitlements/notifications
func (h *EntitlementHandlers) CheckNotifications(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	allowed, err := h.entitlementService.CheckNotificationPermission(ctx, userID)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"allowed": allowed,
	})
}
