package analytics

import "math"

// Change compares one metric across two periods.  Percent is the rounded
// absolute change relative to Previous; it is nil when Previous is not
// positive, meaning there is no baseline.
type Change struct {
	Current  float64 `json:"current"`
	Previous float64 `json:"previous"`
	Delta    float64 `json:"delta"`
	Percent  *int    `json:"percent,omitempty"`
}

// Up reports whether the metric grew.
func (c Change) Up() bool { return c.Delta > 0 }

// Delta is the period-over-period comparison of two summaries, normally of
// consecutive seasons.
type Delta struct {
	Total         Change `json:"total"`
	FundedCount   Change `json:"fundedCount"`
	DealRate      Change `json:"dealRate"`
	TotalInvested Change `json:"totalInvested"`
}

// Compare returns the change from previous to current.
func Compare(current, previous Summary) Delta {
	return Delta{
		Total:         change(float64(current.Total), float64(previous.Total)),
		FundedCount:   change(float64(current.FundedCount), float64(previous.FundedCount)),
		DealRate:      change(float64(current.DealRate), float64(previous.DealRate)),
		TotalInvested: change(current.TotalInvested, previous.TotalInvested),
	}
}

func change(cur, prev float64) Change {
	c := Change{Current: cur, Previous: prev, Delta: round(cur-prev, 2)}
	if prev > 0 {
		pct := int(math.Round(math.Abs(cur-prev) / prev * 100))
		c.Percent = &pct
	}
	return c
}
