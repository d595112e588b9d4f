package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/stih/tank-insights/internal/backup"
	"github.com/stih/tank-insights/internal/config"
	"github.com/stih/tank-insights/internal/database"
	"github.com/stih/tank-insights/internal/datasync"
	"github.com/stih/tank-insights/internal/repository"
	"github.com/stih/tank-insights/internal/service"
	"github.com/stih/tank-insights/internal/utils"
)

const testSecret = "test-secret"

type stubRefresher struct{ err error }

func (s stubRefresher) Refresh(context.Context) (datasync.RefreshResult, error) {
	if s.err != nil {
		return datasync.RefreshResult{}, s.err
	}
	return datasync.RefreshResult{Message: "Data synchronized successfully from Kaggle"}, nil
}

func (s stubRefresher) Check(context.Context) datasync.ProviderStatus {
	return datasync.ProviderStatus{Status: datasync.ProviderOffline, Message: "Kaggle API is not accessible or credentials missing"}
}

func newAdminHandler(t *testing.T, refreshErr error) *AdminHandler {
	t.Helper()
	st := newStore(t)
	dir := st.Dir()

	admins := service.NewAdminStore(filepath.Join(t.TempDir(), "admin-settings.json"))
	_, err := admins.Save("admin", "secret1", bcrypt.MinCost)
	require.NoError(t, err)

	db, err := database.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	runs := repository.NewSyncRunRepo(db)
	require.NoError(t, runs.EnsureSchema(context.Background()))

	bk := backup.New(dir, filepath.Join(dir, "backups"), filepath.Join(dir, "raw"))
	syncer := datasync.NewSyncer(stubRefresher{err: refreshErr}, st, datasync.Options{Backups: bk, Runs: runs})

	return &AdminHandler{
		Cfg:     config.Config{JWTSecret: testSecret, AdminTokenTTL: time.Hour},
		Admins:  admins,
		Syncer:  syncer,
		Runs:    runs,
		Backups: bk,
		Store:   st,
	}
}

func postJSON(t *testing.T, h echo.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	return rec
}

func TestLogin(t *testing.T) {
	h := newAdminHandler(t, nil)

	rec := postJSON(t, h.Login, `{"username":"admin","password":"secret1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "Login successful", body["message"])
	assert.Equal(t, "admin", body["username"])
	claims, err := utils.ParseAdminToken(testSecret, body["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, utils.RoleAdmin, claims.Role)

	rec = postJSON(t, h.Login, `{"username":"admin","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", decode[map[string]string](t, rec)["error"])

	rec = postJSON(t, h.Login, `{"username":"admin"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin_NotConfigured(t *testing.T) {
	h := newAdminHandler(t, nil)
	h.Admins = service.NewAdminStore(filepath.Join(t.TempDir(), "missing.json"))
	rec := postJSON(t, h.Login, `{"username":"admin","password":"secret1"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestReload_SuccessThenHistory(t *testing.T) {
	h := newAdminHandler(t, nil)

	rec := serve(t, http.MethodPost, "/api/admin/reload", "/api/admin/reload", h.Reload)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "Data synchronized successfully from Kaggle", body["message"])
	counts := body["recordsImported"].(map[string]any)
	assert.EqualValues(t, 3, counts["pitches"])
	assert.Len(t, body["backups"], 4)

	rec = serve(t, http.MethodGet, "/api/admin/history", "/api/admin/history", h.History)
	require.Equal(t, http.StatusOK, rec.Code)
	hist := decode[map[string]any](t, rec)
	assert.Equal(t, true, hist["enabled"])
	runs := hist["runs"].([]any)
	require.Len(t, runs, 1)
	run := runs[0].(map[string]any)
	assert.Equal(t, "success", run["status"])

	rec = serve(t, http.MethodGet, "/api/admin/history/:id", "/api/admin/history/"+run["id"].(string), h.HistoryRun)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = serve(t, http.MethodGet, "/api/admin/history/:id", "/api/admin/history/missing", h.HistoryRun)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(t, http.MethodGet, "/api/admin/backup-files", "/api/admin/backup-files", h.BackupFiles)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Found 4 backup files", decode[map[string]any](t, rec)["message"])
}

func TestReload_Failure(t *testing.T) {
	h := newAdminHandler(t, errors.New("Python script failed: Unknown error"))

	rec := serve(t, http.MethodPost, "/api/admin/reload", "/api/admin/reload", h.Reload)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, map[string]string{"message": "Sync failed", "error": "Python script failed: Unknown error"}, decode[map[string]string](t, rec))

	rec = serve(t, http.MethodGet, "/api/admin/status", "/api/admin/status", h.Status)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	log := body["syncLog"].(map[string]any)
	assert.Equal(t, "error", log["status"])
	assert.Equal(t, "offline", body["kaggleStatus"].(map[string]any)["status"])
}

func TestHistory_Disabled(t *testing.T) {
	h := newAdminHandler(t, nil)
	h.Runs = nil
	rec := serve(t, http.MethodGet, "/api/admin/history", "/api/admin/history", h.History)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode[map[string]any](t, rec)["enabled"])
}

func TestDataQuality(t *testing.T) {
	h := newAdminHandler(t, nil)
	rec := serve(t, http.MethodGet, "/api/admin/data-quality", "/api/admin/data-quality", h.DataQuality)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 3, decode[map[string]any](t, rec)["checked"])
}

func TestBackupData(t *testing.T) {
	h := newAdminHandler(t, nil)
	dir := filepath.Join(h.Store.Dir(), "backups")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pitches_170225093005.json"), []byte(`[{"id":"a"},{"id":"b"}]`), 0o644))

	rec := serve(t, http.MethodGet, "/api/admin/backup-data/:filename", "/api/admin/backup-data/pitches_170225093005.json", h.BackupData)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.EqualValues(t, 2, body["count"])
	assert.Equal(t, "17-02-2025 09:30", body["timestamp"])

	rec = serve(t, http.MethodGet, "/api/admin/backup-data/:filename", "/api/admin/backup-data/nope.json", h.BackupData)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Backup file not found", decode[map[string]string](t, rec)["error"])

	rec = serve(t, http.MethodGet, "/api/admin/backup-data/:filename", "/api/admin/backup-data/..%5Csecret.json", h.BackupData)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRawCSV(t *testing.T) {
	h := newAdminHandler(t, nil)
	dir := filepath.Join(h.Store.Dir(), "raw")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "kaggle_raw_latest.csv"), []byte("Startup Name,Season Number\nBluePine,1\nSkippi,1\n"), 0o644))

	rec := serve(t, http.MethodGet, "/api/admin/raw-csv-files", "/api/admin/raw-csv-files", h.RawCSVFiles)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Found 1 raw data files", decode[map[string]any](t, rec)["message"])

	rec = serve(t, http.MethodGet, "/api/admin/raw-csv-data/:filename", "/api/admin/raw-csv-data/kaggle_raw_latest.csv", h.RawCSVData)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.EqualValues(t, 2, body["totalRows"])
	assert.Equal(t, []any{"Startup Name", "Season Number"}, body["columns"])
	assert.Equal(t, "Loaded 2 rows from kaggle_raw_latest.csv", body["message"])

	rec = serve(t, http.MethodGet, "/api/admin/raw-csv-data/:filename", "/api/admin/raw-csv-data/kaggle_raw_0101250000.csv", h.RawCSVData)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Raw CSV file not found", decode[map[string]string](t, rec)["error"])
}
