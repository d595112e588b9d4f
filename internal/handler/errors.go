package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/stih/tank-insights/internal/analytics"
	"github.com/stih/tank-insights/internal/backup"
	"github.com/stih/tank-insights/internal/datasync"
	"github.com/stih/tank-insights/internal/repository"
	"github.com/stih/tank-insights/internal/service"
	"github.com/stih/tank-insights/internal/store"
)

// respondError maps domain errors to status codes.  Unknown errors are
// logged and reported as 500 without their detail.
func respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, store.ErrDataUnavailable):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "data unavailable"})
	case errors.Is(err, analytics.ErrInvalidCriteria):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, backup.ErrInvalidFilename):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid filename"})
	case errors.Is(err, datasync.ErrSyncInProgress):
		return c.JSON(http.StatusConflict, echo.Map{"error": "Sync already in progress"})
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrAdminNotConfigured):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid credentials"})
	case errors.Is(err, repository.ErrSyncRunNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "sync run not found"})
	}
	zap.L().Error("request failed",
		zap.String("path", c.Request().URL.Path),
		zap.Error(err),
	)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

func notFound(c echo.Context, msg string) error {
	return c.JSON(http.StatusNotFound, echo.Map{"error": msg})
}
