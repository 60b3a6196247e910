package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http" // HTTP status codes for responses
	"strings"  // string utilities for prefix checking and trimming

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/iliyamo/event-ticket-booking/internal/utils"
)

// Context keys set by JWTAuth.
const (
	ctxAccountID = "account_id"
	ctxRole      = "role"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// issued by the identity service and injects the account id and role
// claims into the request context.  Handlers read them through
// AccountID and Role.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// A valid header should start with "Bearer " followed by
			// the JWT.
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			c.Set(ctxAccountID, claims.AccountID)
			c.Set(ctxRole, claims.Role)
			return next(c)
		}
	}
}
