package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stih/tank-insights/internal/model"
)

func TestInvestorProfile(t *testing.T) {
	ps := samplePitches()
	ps = append(ps, unfunded("pitched", 3, sharks("Aman")))

	prof, ok := InvestorProfile(ps, "Aman")
	require.True(t, ok)

	assert.Equal(t, "Aman", prof.Name)
	assert.Equal(t, 4, prof.Appearances)
	assert.Equal(t, 3, prof.Deals)
	assert.Equal(t, []string{"bluepine", "meatyd", "nuutjob"}, prof.DealIDs)
	assert.InDelta(t, 0.88, prof.Invested, 1e-9)
	assert.Equal(t, DealTypes{Equity: 1, Royalty: 1, Unspecified: 1}, prof.DealTypes)

	require.NotEmpty(t, prof.TopIndustries)
	assert.Equal(t, "Food", prof.TopIndustries[0].Key)
	assert.Equal(t, 2, prof.TopIndustries[0].Count)

	require.Len(t, prof.Seasons, 3)
	assert.Equal(t, SeasonActivity{Season: 1, Deals: 1, Invested: 0.38}, prof.Seasons[0])
	assert.Equal(t, SeasonActivity{Season: 2, Deals: 1, Invested: 0.3}, prof.Seasons[1])
	assert.Equal(t, SeasonActivity{Season: 3, Deals: 1, Invested: 0.2}, prof.Seasons[2])
}

func TestInvestorProfile_AverageEquityFromBreakdown(t *testing.T) {
	a := funded("a", 1, 100, sharks("Vineeta", "Aman"))
	a.SharkBreakdown = map[string]model.Investment{"Vineeta": {Amt: 50, Eq: 4}, "Aman": {Amt: 50, Eq: 4}}
	b := funded("b", 1, 60, sharks("Vineeta"))
	b.SharkBreakdown = map[string]model.Investment{"Vineeta": {Amt: 60, Eq: 2}}

	prof, ok := InvestorProfile([]model.Pitch{a, b}, "Vineeta")
	require.True(t, ok)
	assert.InDelta(t, 3.0, prof.AverageEquity, 1e-9)
	assert.InDelta(t, 1.1, prof.Invested, 1e-9)
}

func TestInvestorProfile_ExactNameOnly(t *testing.T) {
	ps := []model.Pitch{funded("a", 1, 10, sharks("Ashneer Grover"))}

	_, ok := InvestorProfile(ps, "Ashneer")
	assert.False(t, ok)

	prof, ok := InvestorProfile(ps, "Ashneer Grover")
	require.True(t, ok)
	assert.Equal(t, 1, prof.Deals)
}

func TestFindPitch(t *testing.T) {
	ps := []model.Pitch{
		{ID: "bluepine", Pitch: intp(1)},
		{ID: "booz", Pitch: intp(2)},
		{ID: "2", Pitch: intp(3)},
	}

	p, ok := FindPitch(ps, "booz")
	require.True(t, ok)
	assert.Equal(t, "booz", p.ID)

	p, ok = FindPitch(ps, "2")
	require.True(t, ok)
	assert.Equal(t, "2", p.ID, "id match wins over pitch number")

	p, ok = FindPitch(ps, "1")
	require.True(t, ok)
	assert.Equal(t, "bluepine", p.ID)

	_, ok = FindPitch(ps, "missing")
	assert.False(t, ok)
}
