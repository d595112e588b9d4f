package analytics

import "github.com/stih/tank-insights/internal/model"

// Overview is the analytics payload for a filtered collection.
type Overview struct {
	Criteria   Criteria      `json:"criteria"`
	Summary    Summary       `json:"summary"`
	Industries []Group       `json:"industries"`
	Investors  []Group       `json:"investors"`
	Seasons    []SeasonGroup `json:"seasons"`
	// Delta compares against the previous season and is only set when the
	// criteria select a single season after the first.
	Delta *Delta `json:"delta,omitempty"`
}

// BuildOverview filters pitches by c and aggregates the result.
func BuildOverview(pitches []model.Pitch, seasons []model.Season, c Criteria) Overview {
	sub := Filter(pitches, c)
	o := Overview{
		Criteria:   c,
		Summary:    Summarize(sub),
		Industries: ByIndustry(sub),
		Investors:  ByInvestor(sub),
		Seasons:    BySeason(sub, seasons),
	}
	if c.Season > 1 {
		prev := c
		prev.Season = c.Season - 1
		d := Compare(o.Summary, Summarize(Filter(pitches, prev)))
		o.Delta = &d
	}
	return o
}

// SeasonReport summarises one season and compares it with the previous
// season when that season exists.
type SeasonReport struct {
	Season     model.Season `json:"season"`
	Orphaned   bool         `json:"orphaned,omitempty"`
	Summary    Summary      `json:"summary"`
	Previous   *Summary     `json:"previous,omitempty"`
	Delta      *Delta       `json:"delta,omitempty"`
	Industries []Group      `json:"industries"`
	Investors  []Group      `json:"investors"`
}

// BuildSeasonReport reports on season n.  The boolean is false when n is
// neither in seasons nor referenced by any pitch.
func BuildSeasonReport(pitches []model.Pitch, seasons []model.Season, n int) (SeasonReport, bool) {
	if n <= 0 {
		return SeasonReport{}, false
	}
	cur := Filter(pitches, Criteria{Season: n})
	meta, known := FindSeason(seasons, n)
	if !known && len(cur) == 0 {
		return SeasonReport{}, false
	}
	if !known {
		meta = model.Season{Number: n}
	}

	r := SeasonReport{
		Season:     meta,
		Orphaned:   !known,
		Summary:    Summarize(cur),
		Industries: ByIndustry(cur),
		Investors:  ByInvestor(cur),
	}

	if n <= 1 {
		return r, true
	}
	prev := Filter(pitches, Criteria{Season: n - 1})
	if _, ok := FindSeason(seasons, n-1); ok || len(prev) > 0 {
		ps := Summarize(prev)
		d := Compare(r.Summary, ps)
		r.Previous = &ps
		r.Delta = &d
	}
	return r, true
}

// FindSeason returns the season whose Number is n.
func FindSeason(seasons []model.Season, n int) (model.Season, bool) {
	for _, s := range seasons {
		if s.Number == n {
			return s, true
		}
	}
	return model.Season{}, false
}
