package model

// Season represents one season of the show as stored in seasons.json.  The
// rollup fields are precomputed by the rebuild script; the analytics package
// can recompute them from the pitch collection.
//
// Fields:
//  ID, Number       – identifiers; Number is the foreign key used by pitches.
//  Year             – broadcast year label (e.g. "2021-22").
//  TotalPitches     – number of pitches aired in the season.
//  DealsClosedCount – number of accepted deals.
//  DealRate         – integer percentage of pitches funded.
//  InvestedCr       – capital committed, in crores.
//  Episodes         – highest episode number seen.
type Season struct {
	ID               int     `json:"id"`
	Number           int     `json:"number"`
	Name             string  `json:"name"`
	Year             string  `json:"year"`
	StartDate        string  `json:"startDate,omitempty"`
	EndDate          string  `json:"endDate,omitempty"`
	TotalPitches     int     `json:"totalPitches"`
	DealsClosedCount int     `json:"dealsClosedCount"`
	DealRate         int     `json:"dealRate"`
	InvestedCr       float64 `json:"investedCr"`
	Episodes         int     `json:"episodes"`
}
