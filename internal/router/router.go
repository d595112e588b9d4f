package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/stih/tank-insights/internal/handler"
	"github.com/stih/tank-insights/internal/middleware"
	"github.com/stih/tank-insights/internal/utils"
)

// RegisterRoutes registers the operational endpoints, which sit outside
// /api and bypass the cache and the rate limiter.
func RegisterRoutes(e *echo.Echo, ops *handler.OpsHandler) {
	e.GET("/health", ops.Health)
	e.GET("/config", ops.Config)
}

// RegisterPublic registers the read-only browse and analytics endpoints
// under /api.  mw (typically the rate limiter and the response cache, in
// that order) applies to every route of the group.  Unknown /api paths fall
// through the group's catch-all to a JSON 404.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, mw ...echo.MiddlewareFunc) {
	g := e.Group("/api", mw...)

	g.GET("/pitches", p.ListPitches)
	g.GET("/pitches/:id", p.GetPitch)

	g.GET("/seasons", p.ListSeasons)
	g.GET("/seasons/:id", p.GetSeason)
	g.GET("/seasons/:id/report", p.SeasonReport)

	// :id is a numeric id or an investor name
	g.GET("/sharks", p.ListSharks)
	g.GET("/sharks/:id", p.GetShark)
	g.GET("/sharks/:id/profile", p.SharkProfile)

	g.GET("/industries", p.ListIndustries)
	g.GET("/analytics", p.Analytics)
}

// RegisterAdmin registers the admin endpoints.  Login is open but sits
// behind its own, stricter limiter; everything else requires an admin
// token.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string, loginLimit, limit echo.MiddlewareFunc) {
	e.POST("/api/admin/login", a.Login, loginLimit)

	g := e.Group("/api/admin", limit, middleware.JWTAuth(jwtSecret), middleware.RequireRole(utils.RoleAdmin))
	g.POST("/reload", a.Reload)
	g.GET("/status", a.Status)
	g.GET("/history", a.History)
	g.GET("/history/:id", a.HistoryRun)
	g.GET("/data-quality", a.DataQuality)
	g.GET("/backup-files", a.BackupFiles)
	g.GET("/backup-data/:filename", a.BackupData)
	g.GET("/raw-csv-files", a.RawCSVFiles)
	g.GET("/raw-csv-data/:filename", a.RawCSVData)
}

// New builds the Echo instance with the shared error handler and request
// logging installed.
func New() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler
	e.Use(middleware.RequestLogger())
	return e
}
