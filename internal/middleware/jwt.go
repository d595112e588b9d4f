package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/stih/tank-insights/internal/utils"
)

// Context keys set by JWTAuth.
const (
	CtxAdmin = "admin"
	CtxRole  = "role"
)

// JWTAuth returns an Echo middleware that validates a Bearer admin token and
// injects the username and role claims into the request context.  The
// secret must match the one used when issuing tokens.  Handlers behind it
// read the account via c.Get(CtxAdmin).
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

			claims, err := utils.ParseAdminToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			c.Set(CtxAdmin, claims.Username)
			c.Set(CtxRole, claims.Role)
			return next(c)
		}
	}
}
