package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/stih/tank-insights/internal/config"
)

// OpsHandler serves the operational endpoints.
type OpsHandler struct {
	Cfg config.Config
}

// Health is used by load balancers and monitoring to check the service is up.
func (h *OpsHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":      "OK",
		"environment": h.Cfg.Env,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Config exposes the non-secret runtime settings.
func (h *OpsHandler) Config(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"environment": h.Cfg.Env,
		"port":        h.Cfg.Port,
		"logLevel":    h.Cfg.Log.Level,
	})
}

// NotFound answers unknown /api paths with JSON.
func NotFound(c echo.Context) error {
	return c.JSON(http.StatusNotFound, echo.Map{"error": "API endpoint not found"})
}

// ErrorHandler keeps echo's own errors (404/405 from the router, bind
// failures) in the same JSON shape as the handlers'.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := "internal error"
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if s, ok := he.Message.(string); ok {
			msg = s
		} else {
			msg = http.StatusText(code)
		}
	}
	if code == http.StatusNotFound && strings.HasPrefix(c.Request().URL.Path, "/api") {
		msg = "API endpoint not found"
	}
	_ = c.JSON(code, echo.Map{"error": msg})
}
