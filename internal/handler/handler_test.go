package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stih/tank-insights/internal/config"
	"github.com/stih/tank-insights/internal/model"
	"github.com/stih/tank-insights/internal/store"
)

const pitchesJSON = `[
  {"id":"bluepine","name":"BluePine Foods","season":1,"ep":1,"pitch":1,"industry":"Food","type":"Frozen momos",
   "funded":true,"dealType":"equity","askAmt":50,"askEq":5,"dealAmt":75,"dealEq":16,"sharks":["Aman","Namita"]},
  {"id":"skippi","name":"Skippi Ice Pops","season":1,"ep":4,"pitch":9,"industry":"Food","type":"Ice pops",
   "funded":true,"dealType":"equity","askAmt":45,"askEq":5,"dealAmt":100,"dealEq":15,"sharks":["Aman,Ashneer"]},
  {"id":"heeko","name":"Heeko","season":2,"ep":3,"pitch":120,"industry":"Technology","type":"AR glasses",
   "funded":false,"askAmt":80,"askEq":2,"sharks":["Peyush"]}
]`

func newStore(t *testing.T) *store.Store {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		store.PitchesFile:    pitchesJSON,
		store.SeasonsFile:    `[{"id":1,"number":1,"name":"Season 1","year":"2021-22"},{"id":2,"number":2,"name":"Season 2","year":"2023"}]`,
		store.SharksFile:     `[{"id":1,"name":"Aman","fullName":"Aman Gupta"},{"id":2,"name":"Namita","fullName":"Namita Thapar"}]`,
		store.IndustriesFile: `[{"name":"Food","total":2,"funded":2}]`,
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return store.New(dir)
}

// serve routes one request through a bare echo with the shared error
// handler.
func serve(t *testing.T, method, route, target string, h echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	e.Add(method, route, h)
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestListPitches_FilterAndSort(t *testing.T) {
	h := NewPublicHandler(newStore(t))

	rec := serve(t, http.MethodGet, "/api/pitches", "/api/pitches?season=1&sort=dealAmt&order=desc", h.ListPitches)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[[]map[string]any](t, rec)
	require.Len(t, got, 2)
	assert.Equal(t, "skippi", got[0]["id"])
	assert.Equal(t, "bluepine", got[1]["id"])

	rec = serve(t, http.MethodGet, "/api/pitches", "/api/pitches?search=ASHNEER", h.ListPitches)
	got = decode[[]map[string]any](t, rec)
	require.Len(t, got, 1)
	assert.Equal(t, []any{"Aman", "Ashneer"}, got[0]["sharks"])

	rec = serve(t, http.MethodGet, "/api/pitches", "/api/pitches?status=NO_DEAL", h.ListPitches)
	got = decode[[]map[string]any](t, rec)
	require.Len(t, got, 1)
	assert.Equal(t, "heeko", got[0]["id"])
}

func TestListPitches_InvalidCriteria(t *testing.T) {
	h := NewPublicHandler(newStore(t))
	for _, q := range []string{"season=abc", "season=0", "sort=name", "sort=ep&order=sideways"} {
		rec := serve(t, http.MethodGet, "/api/pitches", "/api/pitches?"+q, h.ListPitches)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestListPitches_DataUnavailable(t *testing.T) {
	h := NewPublicHandler(store.New(t.TempDir()))
	rec := serve(t, http.MethodGet, "/api/pitches", "/api/pitches", h.ListPitches)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "data unavailable", decode[map[string]string](t, rec)["error"])
}

func TestGetPitch(t *testing.T) {
	h := NewPublicHandler(newStore(t))

	rec := serve(t, http.MethodGet, "/api/pitches/:id", "/api/pitches/heeko", h.GetPitch)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Heeko", decode[map[string]any](t, rec)["name"])

	rec = serve(t, http.MethodGet, "/api/pitches/:id", "/api/pitches/9", h.GetPitch)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "skippi", decode[map[string]any](t, rec)["id"])

	rec = serve(t, http.MethodGet, "/api/pitches/:id", "/api/pitches/nope", h.GetPitch)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Pitch not found", decode[map[string]string](t, rec)["error"])
}

func TestSeasons(t *testing.T) {
	h := NewPublicHandler(newStore(t))

	rec := serve(t, http.MethodGet, "/api/seasons", "/api/seasons", h.ListSeasons)
	assert.Len(t, decode[[]map[string]any](t, rec), 2)

	rec = serve(t, http.MethodGet, "/api/seasons/:id", "/api/seasons/2", h.GetSeason)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2023", decode[map[string]any](t, rec)["year"])

	rec = serve(t, http.MethodGet, "/api/seasons/:id", "/api/seasons/9", h.GetSeason)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSeasonByNumberOrID(t *testing.T) {
	seasons := []model.Season{{ID: 7, Number: 3}, {ID: 3, Number: 4}}

	s, ok := seasonByNumberOrID(seasons, 3)
	require.True(t, ok)
	assert.Equal(t, 7, s.ID, "number wins over id")

	s, ok = seasonByNumberOrID(seasons, 7)
	require.True(t, ok)
	assert.Equal(t, 3, s.Number)

	_, ok = seasonByNumberOrID(seasons, 9)
	assert.False(t, ok)
}

func TestSeasonReport(t *testing.T) {
	h := NewPublicHandler(newStore(t))

	rec := serve(t, http.MethodGet, "/api/seasons/:id/report", "/api/seasons/2/report", h.SeasonReport)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	summary := body["summary"].(map[string]any)
	assert.EqualValues(t, 1, summary["total"])
	assert.NotNil(t, body["delta"])

	rec = serve(t, http.MethodGet, "/api/seasons/:id/report", "/api/seasons/x/report", h.SeasonReport)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, http.MethodGet, "/api/seasons/:id/report", "/api/seasons/7/report", h.SeasonReport)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSharks(t *testing.T) {
	h := NewPublicHandler(newStore(t))

	rec := serve(t, http.MethodGet, "/api/sharks/:id", "/api/sharks/2", h.GetShark)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Namita", decode[map[string]any](t, rec)["name"])

	rec = serve(t, http.MethodGet, "/api/sharks/:id", "/api/sharks/aman%20gupta", h.GetShark)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Aman", decode[map[string]any](t, rec)["name"])

	rec = serve(t, http.MethodGet, "/api/sharks/:id", "/api/sharks/99", h.GetShark)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSharkProfile(t *testing.T) {
	h := NewPublicHandler(newStore(t))

	rec := serve(t, http.MethodGet, "/api/sharks/:id/profile", "/api/sharks/1/profile", h.SharkProfile)
	require.Equal(t, http.StatusOK, rec.Code)
	prof := decode[map[string]any](t, rec)
	assert.Equal(t, "Aman", prof["name"])
	assert.EqualValues(t, 2, prof["deals"])

	// names that only appear in pitch records still resolve
	rec = serve(t, http.MethodGet, "/api/sharks/:id/profile", "/api/sharks/Ashneer/profile", h.SharkProfile)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[map[string]any](t, rec)["deals"])

	rec = serve(t, http.MethodGet, "/api/sharks/:id/profile", "/api/sharks/Nobody/profile", h.SharkProfile)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnalytics(t *testing.T) {
	h := NewPublicHandler(newStore(t))

	rec := serve(t, http.MethodGet, "/api/analytics", "/api/analytics", h.Analytics)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	summary := body["summary"].(map[string]any)
	assert.EqualValues(t, 3, summary["total"])
	assert.EqualValues(t, 2, summary["fundedCount"])
	assert.EqualValues(t, 67, summary["dealRate"])
	assert.Nil(t, body["delta"])

	rec = serve(t, http.MethodGet, "/api/analytics", "/api/analytics?season=2", h.Analytics)
	body = decode[map[string]any](t, rec)
	require.NotNil(t, body["delta"])
	delta := body["delta"].(map[string]any)
	total := delta["total"].(map[string]any)
	assert.EqualValues(t, -1, total["delta"])
	assert.EqualValues(t, 50, total["percent"])
}

func TestListIndustries(t *testing.T) {
	h := NewPublicHandler(newStore(t))
	rec := serve(t, http.MethodGet, "/api/industries", "/api/industries", h.ListIndustries)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)
}

func TestOpsHandler(t *testing.T) {
	h := &OpsHandler{Cfg: config.Config{Env: "test", Port: "3000", Log: config.LogConfig{Level: "info"}}}

	rec := serve(t, http.MethodGet, "/health", "/health", h.Health)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "OK", body["status"])
	assert.Equal(t, "test", body["environment"])

	rec = serve(t, http.MethodGet, "/config", "/config", h.Config)
	assert.Equal(t, map[string]any{"environment": "test", "port": "3000", "logLevel": "info"}, decode[map[string]any](t, rec))
}

func TestErrorHandler_UnknownAPIRoute(t *testing.T) {
	rec := serve(t, http.MethodGet, "/health", "/api/unknown", func(c echo.Context) error { return nil })
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "API endpoint not found"))
}
