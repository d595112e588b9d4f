package analytics

import (
	"slices"
	"strconv"

	"github.com/stih/tank-insights/internal/model"
)

// topIndustryLimit caps the industries listed in a profile.
const topIndustryLimit = 5

// SeasonActivity is an investor's deal activity in one season.  Invested is
// the investor's own share in crores.
type SeasonActivity struct {
	Season   int     `json:"season"`
	Deals    int     `json:"deals"`
	Invested float64 `json:"invested"`
}

// Profile describes one investor's participation, derived from the pitch
// collection.
type Profile struct {
	Name          string           `json:"name"`
	Appearances   int              `json:"appearances"`
	Deals         int              `json:"deals"`
	Invested      float64          `json:"invested"`
	AverageEquity float64          `json:"averageEquity"`
	TopIndustries []Group          `json:"topIndustries"`
	Seasons       []SeasonActivity `json:"seasons"`
	DealTypes     DealTypes        `json:"dealTypes"`
	DealIDs       []string         `json:"dealIds"`
}

// InvestorProfile builds the profile of the investor called name.  The name
// is matched exactly.  The boolean is false when no pitch mentions the
// investor.
func InvestorProfile(pitches []model.Pitch, name string) (Profile, bool) {
	prof := Profile{Name: name, TopIndustries: []Group{}, Seasons: []SeasonActivity{}, DealIDs: []string{}}

	var deals []model.Pitch
	var equity float64
	var equityN int
	var lakhs float64
	perSeason := make(map[int]*SeasonActivity)

	for _, p := range pitches {
		if !p.HasInvestor(name) {
			continue
		}
		prof.Appearances++
		if !p.IsFunded() {
			continue
		}
		deals = append(deals, p)
		prof.Deals++
		prof.DealTypes.add(p.DealType)
		prof.DealIDs = append(prof.DealIDs, p.ID)

		share := investorShare(p, name)
		lakhs += share
		if inv, ok := p.SharkBreakdown[name]; ok && inv.Eq > 0 {
			equity += inv.Eq
			equityN++
		}

		sa, ok := perSeason[p.Season]
		if !ok {
			sa = &SeasonActivity{Season: p.Season}
			perSeason[p.Season] = sa
		}
		sa.Deals++
		sa.Invested += share
	}
	if prof.Appearances == 0 {
		return Profile{}, false
	}

	prof.Invested = toCrores(lakhs)
	if equityN > 0 {
		prof.AverageEquity = round(equity/float64(equityN), 2)
	}

	top := ByIndustry(deals)
	if len(top) > topIndustryLimit {
		top = top[:topIndustryLimit]
	}
	prof.TopIndustries = top

	for _, sa := range perSeason {
		prof.Seasons = append(prof.Seasons, SeasonActivity{
			Season:   sa.Season,
			Deals:    sa.Deals,
			Invested: toCrores(sa.Invested),
		})
	}
	slices.SortFunc(prof.Seasons, func(a, b SeasonActivity) int { return a.Season - b.Season })
	return prof, true
}

// FindPitch looks a pitch up by id, falling back to its pitch number.
func FindPitch(pitches []model.Pitch, id string) (model.Pitch, bool) {
	for _, p := range pitches {
		if p.ID == id {
			return p, true
		}
	}
	for _, p := range pitches {
		if p.Pitch != nil && strconv.Itoa(*p.Pitch) == id {
			return p, true
		}
	}
	return model.Pitch{}, false
}
