package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stih/tank-insights/internal/model"
)

var sampleSeasons = []model.Season{
	{ID: 1, Number: 1, Name: "Season 1", Year: "2021-22"},
	{ID: 2, Number: 2, Name: "Season 2", Year: "2023"},
	{ID: 3, Number: 3, Name: "Season 3", Year: "2024"},
}

func TestBuildOverview_AllPitches(t *testing.T) {
	o := BuildOverview(samplePitches(), sampleSeasons, Criteria{})
	assert.Equal(t, Summarize(samplePitches()), o.Summary)
	assert.Len(t, o.Seasons, 3)
	assert.Equal(t, "Food", o.Industries[0].Key)
	assert.Equal(t, "Aman", o.Investors[0].Key)
	assert.Nil(t, o.Delta)
}

func TestBuildOverview_SingleSeasonHasDelta(t *testing.T) {
	o := BuildOverview(samplePitches(), sampleSeasons, Criteria{Season: 2})
	assert.Equal(t, 3, o.Summary.Total)
	require.NotNil(t, o.Delta)
	assert.InDelta(t, 1.0, o.Delta.Total.Delta, 1e-9)
	assert.Equal(t, 50, *o.Delta.Total.Percent)

	first := BuildOverview(samplePitches(), sampleSeasons, Criteria{Season: 1})
	assert.Nil(t, first.Delta)
}

func TestBuildSeasonReport(t *testing.T) {
	r, ok := BuildSeasonReport(samplePitches(), sampleSeasons, 3)
	require.True(t, ok)
	assert.Equal(t, "Season 3", r.Season.Name)
	assert.False(t, r.Orphaned)
	assert.Equal(t, 1, r.Summary.Total)
	require.NotNil(t, r.Previous)
	assert.Equal(t, 3, r.Previous.Total)
	require.NotNil(t, r.Delta)
	assert.InDelta(t, -2.0, r.Delta.Total.Delta, 1e-9)
}

func TestBuildSeasonReport_FirstSeasonHasNoBaseline(t *testing.T) {
	r, ok := BuildSeasonReport(samplePitches(), sampleSeasons, 1)
	require.True(t, ok)
	assert.Nil(t, r.Previous)
	assert.Nil(t, r.Delta)
}

func TestBuildSeasonReport_PreviousSeasonWithoutPitches(t *testing.T) {
	seasons := append([]model.Season{}, sampleSeasons...)
	seasons = append(seasons, model.Season{Number: 4}, model.Season{Number: 5})
	ps := append(samplePitches(), funded("s5", 5, 20))

	r, ok := BuildSeasonReport(ps, seasons, 5)
	require.True(t, ok)
	require.NotNil(t, r.Delta)
	assert.Nil(t, r.Delta.Total.Percent, "previous season had no pitches")
}

func TestBuildSeasonReport_Unknown(t *testing.T) {
	_, ok := BuildSeasonReport(samplePitches(), sampleSeasons, 9)
	assert.False(t, ok)

	_, ok = BuildSeasonReport(samplePitches(), sampleSeasons, 0)
	assert.False(t, ok)

	r, ok := BuildSeasonReport(append(samplePitches(), unfunded("x", 9)), sampleSeasons, 9)
	require.True(t, ok)
	assert.True(t, r.Orphaned)
	assert.Equal(t, 9, r.Season.Number)
}

func TestFindSeason(t *testing.T) {
	seasons := []model.Season{{ID: 10, Number: 1}, {ID: 1, Number: 2}}

	s, ok := FindSeason(seasons, 1)
	require.True(t, ok)
	assert.Equal(t, 10, s.ID)

	_, ok = FindSeason(seasons, 3)
	assert.False(t, ok)
}
