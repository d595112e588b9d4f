package analytics

import (
	"slices"
	"strconv"

	"github.com/stih/tank-insights/internal/model"
)

// OtherIndustry groups pitches that carry neither an industry nor a type.
const OtherIndustry = "Other"

// Group is the rollup of the pitches sharing one key.  Invested is in
// crores.
type Group struct {
	Key         string  `json:"key"`
	Count       int     `json:"count"`
	FundedCount int     `json:"fundedCount"`
	DealRate    int     `json:"dealRate"`
	Invested    float64 `json:"invested"`
	// Contributed is the investor's own share from the deal breakdown, in
	// crores.  Only set by ByInvestor.
	Contributed float64 `json:"contributed,omitempty"`
}

type groupAcc struct {
	key         string
	count       int
	funded      int
	lakhs       float64
	contributed float64
}

// grouper accumulates groups in first-encounter order.
type grouper struct {
	index map[string]int
	accs  []*groupAcc
}

func newGrouper() *grouper { return &grouper{index: make(map[string]int)} }

func (g *grouper) get(key string) *groupAcc {
	if i, ok := g.index[key]; ok {
		return g.accs[i]
	}
	a := &groupAcc{key: key}
	g.index[key] = len(g.accs)
	g.accs = append(g.accs, a)
	return a
}

func (a *groupAcc) add(p model.Pitch) {
	a.count++
	if p.IsFunded() {
		a.funded++
		a.lakhs += dealAmount(p)
	}
}

// groups returns the rollups by descending count; equal counts keep their
// first-encounter order.
func (g *grouper) groups() []Group {
	out := make([]Group, 0, len(g.accs))
	for _, a := range g.accs {
		out = append(out, Group{
			Key:         a.key,
			Count:       a.count,
			FundedCount: a.funded,
			DealRate:    dealRate(a.funded, a.count),
			Invested:    toCrores(a.lakhs),
			Contributed: toCrores(a.contributed),
		})
	}
	slices.SortStableFunc(out, func(x, y Group) int { return y.Count - x.Count })
	return out
}

// IndustryKey is the grouping label of a pitch: its industry, else its
// type, else OtherIndustry.
func IndustryKey(p model.Pitch) string {
	switch {
	case p.Industry != "":
		return p.Industry
	case p.Type != "":
		return p.Type
	}
	return OtherIndustry
}

// ByIndustry rolls pitches up by IndustryKey.
func ByIndustry(pitches []model.Pitch) []Group {
	g := newGrouper()
	for _, p := range pitches {
		g.get(IndustryKey(p)).add(p)
	}
	return g.groups()
}

// ByInvestor rolls pitches up by investor name.  A pitch counts once for
// every investor attached to it, so Invested is the full deal amount of each
// deal the investor joined.  Names are matched exactly; aliases stay
// separate groups.
func ByInvestor(pitches []model.Pitch) []Group {
	g := newGrouper()
	for _, p := range pitches {
		for _, name := range p.Sharks {
			a := g.get(name)
			a.add(p)
			a.contributed += investorShare(p, name)
		}
	}
	return g.groups()
}

// investorShare returns name's own contribution to a funded pitch in lakhs:
// the breakdown entry when present, otherwise an even split of the deal.
func investorShare(p model.Pitch, name string) float64 {
	if !p.IsFunded() {
		return 0
	}
	if inv, ok := p.SharkBreakdown[name]; ok {
		return inv.Amt
	}
	if len(p.SharkBreakdown) > 0 || len(p.Sharks) == 0 {
		return 0
	}
	return dealAmount(p) / float64(len(p.Sharks))
}

// SeasonGroup is the rollup of one season.  Orphaned is set when the season
// number has no entry in the season collection.
type SeasonGroup struct {
	Season   int    `json:"season"`
	Name     string `json:"name,omitempty"`
	Year     string `json:"year,omitempty"`
	Orphaned bool   `json:"orphaned,omitempty"`
	Group
}

// BySeason rolls pitches up by season number in ascending order.  Seasons
// listed in seasons but without pitches appear with zero counts.
func BySeason(pitches []model.Pitch, seasons []model.Season) []SeasonGroup {
	meta := make(map[int]model.Season, len(seasons))
	for _, s := range seasons {
		meta[s.Number] = s
	}

	byNum := make(map[int]*groupAcc)
	for _, s := range seasons {
		byNum[s.Number] = &groupAcc{}
	}
	for _, p := range pitches {
		a, ok := byNum[p.Season]
		if !ok {
			a = &groupAcc{}
			byNum[p.Season] = a
		}
		a.add(p)
	}

	nums := make([]int, 0, len(byNum))
	for n := range byNum {
		nums = append(nums, n)
	}
	slices.Sort(nums)

	out := make([]SeasonGroup, 0, len(nums))
	for _, n := range nums {
		a := byNum[n]
		s, known := meta[n]
		out = append(out, SeasonGroup{
			Season:   n,
			Name:     s.Name,
			Year:     s.Year,
			Orphaned: !known,
			Group: Group{
				Key:         "S" + strconv.Itoa(n),
				Count:       a.count,
				FundedCount: a.funded,
				DealRate:    dealRate(a.funded, a.count),
				Invested:    toCrores(a.lakhs),
			},
		})
	}
	return out
}
