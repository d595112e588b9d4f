// Package handler exposes the HTTP handlers of the API.  Public handlers
// read from the record store and run the analytics over it; admin handlers
// drive data sync and give access to backups.
package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/text/cases"

	"github.com/stih/tank-insights/internal/analytics"
	"github.com/stih/tank-insights/internal/model"
	"github.com/stih/tank-insights/internal/store"
)

// PublicHandler serves the read-only browse and analytics endpoints.
type PublicHandler struct {
	Store *store.Store
}

func NewPublicHandler(st *store.Store) *PublicHandler {
	return &PublicHandler{Store: st}
}

func criteriaFrom(c echo.Context) (analytics.Criteria, error) {
	q := make(map[string]string, 4)
	for _, k := range []string{"season", "industry", "status", "search"} {
		q[k] = c.QueryParam(k)
	}
	return analytics.ParseCriteria(q)
}

// ListPitches returns the pitches matching the season, industry, status
// and search query parameters, optionally ordered by sort/order.
func (h *PublicHandler) ListPitches(c echo.Context) error {
	crit, err := criteriaFrom(c)
	if err != nil {
		return respondError(c, err)
	}
	key, dir, err := analytics.ParseSort(c.QueryParam("sort"), c.QueryParam("order"))
	if err != nil {
		return respondError(c, err)
	}
	pitches, err := h.Store.Pitches()
	if err != nil {
		return respondError(c, err)
	}
	out := analytics.Filter(pitches, crit)
	if key != analytics.SortNone {
		out = analytics.Sort(out, key, dir)
	}
	return c.JSON(http.StatusOK, out)
}

// GetPitch looks a pitch up by slug or pitch number.
func (h *PublicHandler) GetPitch(c echo.Context) error {
	pitches, err := h.Store.Pitches()
	if err != nil {
		return respondError(c, err)
	}
	p, ok := analytics.FindPitch(pitches, c.Param("id"))
	if !ok {
		return notFound(c, "Pitch not found")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *PublicHandler) ListSeasons(c echo.Context) error {
	seasons, err := h.Store.Seasons()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, seasons)
}

// GetSeason matches :id against the season number first, then the id.
func (h *PublicHandler) GetSeason(c echo.Context) error {
	n, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return notFound(c, "Season not found")
	}
	seasons, err := h.Store.Seasons()
	if err != nil {
		return respondError(c, err)
	}
	if s, ok := seasonByNumberOrID(seasons, n); ok {
		return c.JSON(http.StatusOK, s)
	}
	return notFound(c, "Season not found")
}

// seasonByNumberOrID falls back to the season id when no season has number n.
func seasonByNumberOrID(seasons []model.Season, n int) (model.Season, bool) {
	if s, ok := analytics.FindSeason(seasons, n); ok {
		return s, true
	}
	for _, s := range seasons {
		if s.ID == n {
			return s, true
		}
	}
	return model.Season{}, false
}

// SeasonReport summarises one season and compares it with the one before.
func (h *PublicHandler) SeasonReport(c echo.Context) error {
	n, err := strconv.Atoi(c.Param("id"))
	if err != nil || n <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "season must be a positive integer"})
	}
	pitches, err := h.Store.Pitches()
	if err != nil {
		return respondError(c, err)
	}
	seasons, err := h.Store.Seasons()
	if err != nil {
		return respondError(c, err)
	}
	rep, ok := analytics.BuildSeasonReport(pitches, seasons, n)
	if !ok {
		return notFound(c, "Season not found")
	}
	return c.JSON(http.StatusOK, rep)
}

func (h *PublicHandler) ListSharks(c echo.Context) error {
	investors, err := h.Store.Investors()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, investors)
}

// GetShark accepts a numeric id or a name (case-insensitive).
func (h *PublicHandler) GetShark(c echo.Context) error {
	investors, err := h.Store.Investors()
	if err != nil {
		return respondError(c, err)
	}
	inv, ok := findInvestor(investors, c.Param("id"))
	if !ok {
		return notFound(c, "Shark not found")
	}
	return c.JSON(http.StatusOK, inv)
}

func findInvestor(investors []model.Investor, key string) (model.Investor, bool) {
	if id, err := strconv.Atoi(key); err == nil {
		for _, inv := range investors {
			if inv.ID == id {
				return inv, true
			}
		}
		return model.Investor{}, false
	}
	fold := cases.Fold()
	want := fold.String(strings.TrimSpace(key))
	for _, inv := range investors {
		if fold.String(inv.Name) == want || fold.String(inv.FullName) == want {
			return inv, true
		}
	}
	return model.Investor{}, false
}

// SharkProfile derives an investor's deal profile from the pitches.  :id is
// resolved through sharks.json when possible; otherwise it is taken as the
// name used in pitch records.
func (h *PublicHandler) SharkProfile(c echo.Context) error {
	key := c.Param("id")
	name := key
	if investors, err := h.Store.Investors(); err == nil {
		if inv, ok := findInvestor(investors, key); ok {
			name = inv.Name
		}
	}
	pitches, err := h.Store.Pitches()
	if err != nil {
		return respondError(c, err)
	}
	prof, ok := analytics.InvestorProfile(pitches, name)
	if !ok {
		return notFound(c, "Shark not found")
	}
	return c.JSON(http.StatusOK, prof)
}

func (h *PublicHandler) ListIndustries(c echo.Context) error {
	industries, err := h.Store.Industries()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, industries)
}

// Analytics returns the summary, deal types and rollups for the pitches
// matching the query, with a delta against the previous season when a
// single season is selected.
func (h *PublicHandler) Analytics(c echo.Context) error {
	crit, err := criteriaFrom(c)
	if err != nil {
		return respondError(c, err)
	}
	pitches, err := h.Store.Pitches()
	if err != nil {
		return respondError(c, err)
	}
	seasons, err := h.Store.Seasons()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, analytics.BuildOverview(pitches, seasons, crit))
}
