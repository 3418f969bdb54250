package middleware

import (
	"context"
	"net/http"

	"edumart/internal/common"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// JWTCustomClaims carries the identity the entitlement layer needs: who is
// calling and with which persona role. Token issuance lives in an external
// collaborator.
type JWTCustomClaims struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
	jwt.RegisteredClaims
}

func jwtConfig(jwtSecret string) echojwt.Config {
	return echojwt.Config{
		SigningKey: []byte(jwtSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(JWTCustomClaims)
		},
		SuccessHandler: func(c echo.Context) {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return
			}
			claims, ok := token.Claims.(*JWTCustomClaims)
			if !ok {
				return
			}

			userID := claims.UserID
			if userID == uuid.Nil {
				// Fall back to the subject claim for tokens minted by the
				// legacy issuer.
				if sub, err := claims.GetSubject(); err == nil && sub != "" {
					if parsed, err := uuid.Parse(sub); err == nil {
						userID = parsed
					}
				}
			}
			if userID == uuid.Nil {
				return
			}

			ctx := context.WithValue(c.Request().Context(), common.UserIDKey, userID)
			ctx = context.WithValue(ctx, common.RoleKey, claims.Role)
			c.SetRequest(c.Request().WithContext(ctx))
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		},
	}
}

// JWTMiddleware validates the bearer token and stores user id and role in the
// request context.
func JWTMiddleware(jwtSecret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(jwtConfig(jwtSecret))
}

// OptionalJWTMiddleware resolves the caller identity when a bearer token is
// present but lets anonymous requests through. Used on endpoints that serve
// both audiences, such as the listing visibility check.
func OptionalJWTMiddleware(jwtSecret string) echo.MiddlewareFunc {
	config := jwtConfig(jwtSecret)
	config.Skipper = func(c echo.Context) bool {
		return c.Request().Header.Get("Authorization") == ""
	}
	return echojwt.WithConfig(config)
}
