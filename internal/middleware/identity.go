package middleware

// identity.go holds helpers shared across middleware files.

import "github.com/labstack/echo/v4"

// callerID returns the admin username stored by JWTAuth, or "anon" for
// unauthenticated requests.
func callerID(c echo.Context) string {
	if s, ok := c.Get(CtxAdmin).(string); ok && s != "" {
		return s
	}
	return "anon"
}

// isAuthenticated reports whether the request carries credentials.  Such
// responses are never served from or written to the shared cache.
func isAuthenticated(c echo.Context) bool {
	return c.Request().Header.Get(echo.HeaderAuthorization) != "" || c.Get(CtxAdmin) != nil
}
