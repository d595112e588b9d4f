package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/stih/tank-insights/internal/analytics"
	"github.com/stih/tank-insights/internal/backup"
	"github.com/stih/tank-insights/internal/config"
	"github.com/stih/tank-insights/internal/datasync"
	"github.com/stih/tank-insights/internal/middleware"
	"github.com/stih/tank-insights/internal/repository"
	"github.com/stih/tank-insights/internal/service"
	"github.com/stih/tank-insights/internal/store"
	"github.com/stih/tank-insights/internal/utils"
)

// AdminHandler bundles dependencies for the admin endpoints.  Runs is nil
// when no sync history database is configured.
type AdminHandler struct {
	Cfg     config.Config
	Admins  *service.AdminStore
	Syncer  *datasync.Syncer
	Runs    *repository.SyncRunRepo
	Backups *backup.Manager
	Store   *store.Store
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login checks the admin credentials and issues a signed token.
func (h *AdminHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Username and password are required"})
	}

	acc, err := h.Admins.Authenticate(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrAdminNotConfigured) {
			zap.L().Warn("admin login attempted without admin settings", zap.String("path", h.Admins.Path()))
		}
		return respondError(c, err)
	}
	tok, err := utils.NewAdminToken(h.Cfg.JWTSecret, acc.Username, h.Cfg.AdminTokenTTL)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"token":     tok.Token,
		"expiresAt": tok.Exp,
		"username":  acc.Username,
		"message":   "Login successful",
	})
}

// Reload runs a data sync.  The run is detached from the request context
// so a client disconnect does not kill the fetch script halfway.
func (h *AdminHandler) Reload(c echo.Context) error {
	ctx := context.WithoutCancel(c.Request().Context())
	res, err := h.Syncer.Run(ctx)
	if err != nil {
		if errors.Is(err, datasync.ErrSyncInProgress) {
			return respondError(c, err)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Sync failed", "error": err.Error()})
	}
	zap.L().Info("data reloaded", zap.String("admin", adminName(c)), zap.String("run_id", res.RunID))
	return c.JSON(http.StatusOK, echo.Map{
		"message":         res.Message,
		"runId":           res.RunID,
		"lastSyncAt":      res.SyncedAt,
		"recordsImported": res.Counts,
		"backups":         res.Backups,
		"cachePurged":     res.Purged,
	})
}

func adminName(c echo.Context) string {
	s, _ := c.Get(middleware.CtxAdmin).(string)
	return s
}

// Status returns the last sync log and a live provider check.
func (h *AdminHandler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Syncer.Status(c.Request().Context()))
}

// History lists recent sync runs (?limit, default 20).
func (h *AdminHandler) History(c echo.Context) error {
	if h.Runs == nil {
		return c.JSON(http.StatusOK, echo.Map{"enabled": false, "runs": []any{}})
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	runs, err := h.Runs.ListRecent(c.Request().Context(), limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"enabled": true, "runs": runs})
}

// HistoryRun returns one sync run by id.
func (h *AdminHandler) HistoryRun(c echo.Context) error {
	if h.Runs == nil {
		return notFound(c, "sync history is disabled")
	}
	run, err := h.Runs.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, run)
}

// DataQuality audits the loaded pitches.
func (h *AdminHandler) DataQuality(c echo.Context) error {
	pitches, err := h.Store.Pitches()
	if err != nil {
		return respondError(c, err)
	}
	seasons, err := h.Store.Seasons()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, analytics.Audit(pitches, seasons))
}

func (h *AdminHandler) BackupFiles(c echo.Context) error {
	files, err := h.Backups.ListBackups()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"files":   files,
		"message": fmt.Sprintf("Found %d backup files", len(files)),
	})
}

func (h *AdminHandler) BackupData(c echo.Context) error {
	data, err := h.Backups.ReadBackup(c.Param("filename"))
	if errors.Is(err, backup.ErrNotFound) {
		return notFound(c, "Backup file not found")
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, data)
}

func (h *AdminHandler) RawCSVFiles(c echo.Context) error {
	files, err := h.Backups.ListRawCSV()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"files":   files,
		"message": fmt.Sprintf("Found %d raw data files", len(files)),
	})
}

func (h *AdminHandler) RawCSVData(c echo.Context) error {
	data, err := h.Backups.ReadRawCSV(c.Param("filename"))
	if errors.Is(err, backup.ErrNotFound) {
		return notFound(c, "Raw CSV file not found")
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"filename":  data.Filename,
		"timestamp": data.Timestamp,
		"totalRows": data.TotalRows,
		"columns":   data.Columns,
		"data":      data.Data,
		"message":   fmt.Sprintf("Loaded %d rows from %s", data.TotalRows, data.Filename),
	})
}
