package analytics

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"

	"github.com/stih/tank-insights/internal/model"
)

// Status selects pitches by outcome.
type Status string

const (
	StatusAll      Status = "all"
	StatusFunded   Status = "funded"
	StatusUnfunded Status = "unfunded"
)

// Criteria narrows a pitch collection.  Zero-valued fields impose no
// constraint; all set fields must match.
type Criteria struct {
	Season   int    `json:"season,omitempty"`
	Industry string `json:"industry,omitempty"`
	Status   Status `json:"status,omitempty"`
	Search   string `json:"search,omitempty"`
}

// IsZero reports whether c matches every pitch.
func (c Criteria) IsZero() bool {
	return c.Season == 0 && c.Industry == "" && (c.Status == "" || c.Status == StatusAll) && c.Search == ""
}

// ParseCriteria builds Criteria from request key/value pairs (season,
// industry, status, search).  Empty values and "all" mean no constraint.  An
// unrecognised status also means no constraint; a season that is not a
// positive integer is rejected.
func ParseCriteria(q map[string]string) (Criteria, error) {
	var c Criteria

	if raw := strings.TrimSpace(q["season"]); raw != "" && !isAll(raw) {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return Criteria{}, eris.Wrapf(ErrInvalidCriteria, "season %q", raw)
		}
		c.Season = n
	}

	if raw := strings.TrimSpace(q["industry"]); raw != "" && !isAll(raw) {
		c.Industry = raw
	}

	switch strings.TrimSpace(q["status"]) {
	case "funded", "DEAL", "deal":
		c.Status = StatusFunded
	case "unfunded", "NO_DEAL", "nodeal", "no_deal":
		c.Status = StatusUnfunded
	default:
		c.Status = StatusAll
	}

	c.Search = strings.TrimSpace(q["search"])
	return c, nil
}

func isAll(s string) bool { return strings.EqualFold(s, "all") }

// Filter returns the pitches matching c in their original order.  The result
// is always a new slice, even when c is empty.
func Filter(pitches []model.Pitch, c Criteria) []model.Pitch {
	m := newMatcher(c)
	out := make([]model.Pitch, 0, len(pitches))
	for _, p := range pitches {
		if m.match(p) {
			out = append(out, p)
		}
	}
	return out
}

type matcher struct {
	c     Criteria
	fold  cases.Caser
	query string
}

func newMatcher(c Criteria) *matcher {
	m := &matcher{c: c, fold: cases.Fold()}
	if c.Search != "" {
		m.query = m.fold.String(c.Search)
	}
	return m
}

func (m *matcher) match(p model.Pitch) bool {
	if m.c.Season != 0 && p.Season != m.c.Season {
		return false
	}
	if m.c.Industry != "" && p.Industry != m.c.Industry {
		return false
	}
	switch m.c.Status {
	case StatusFunded:
		if !p.IsFunded() {
			return false
		}
	case StatusUnfunded:
		if p.IsFunded() {
			return false
		}
	}
	if m.query != "" && !m.searchHit(p) {
		return false
	}
	return true
}

// searchHit matches the query against name, type, industry, city, state and
// investor names.
func (m *matcher) searchHit(p model.Pitch) bool {
	fields := []string{p.Name, p.Type, p.Industry, p.City, p.State}
	fields = append(fields, p.Sharks...)
	for _, f := range fields {
		if f != "" && strings.Contains(m.fold.String(f), m.query) {
			return true
		}
	}
	return false
}
