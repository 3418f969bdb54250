package middleware

import (
	"net/http"

	"edumart/internal/common"
	"edumart/internal/models"

	"github.com/labstack/echo/v4"
)

// RequireRole gates a route to the given roles. Quota decisions happen in
// the entitlement engine; this only checks coarse role membership.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			if _, ok := common.GetUserIDFromContext(ctx); !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
			}

			role, ok := common.GetRoleFromContext(ctx)
			if !ok || !allowed[role] {
				return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
			}

			return next(c)
		}
	}
}

// RequireAdmin gates a route to administrators.
func RequireAdmin() echo.MiddlewareFunc {
	return RequireRole(models.RoleAdmin)
}
