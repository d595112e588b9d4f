package store

import (
	"math"
	"strings"

	"github.com/stih/tank-insights/internal/model"
)

// SplitInvestorNames expands comma-joined entries into discrete names,
// trims them, drops empties and keeps the first occurrence of duplicates.
// Applying it twice yields the same result as applying it once.
func SplitInvestorNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, entry := range names {
		for _, part := range strings.Split(entry, ",") {
			n := strings.TrimSpace(part)
			if n == "" {
				continue
			}
			if _, dup := seen[n]; dup {
				continue
			}
			seen[n] = struct{}{}
			out = append(out, n)
		}
	}
	return out
}

// NormalizePitches returns normalised copies of every pitch.  The input
// slice is not modified.
func NormalizePitches(in []model.Pitch) []model.Pitch {
	out := make([]model.Pitch, len(in))
	for i, p := range in {
		out[i] = NormalizePitch(p)
	}
	return out
}

// NormalizePitch cleans one record at the load boundary:
//   - investor names are split and trimmed;
//   - an unfunded pitch carries no deal fields;
//   - ask/deal valuations and the valuation delta are derived when absent.
//
// The function is idempotent.
func NormalizePitch(p model.Pitch) model.Pitch {
	p.Sharks = model.Investors(SplitInvestorNames(p.Sharks))

	if !p.IsFunded() {
		p.Deal = ""
		p.DealType = ""
		p.DealAmt = nil
		p.DealEq = nil
		p.DealVal = nil
		p.FinalVal = nil
		p.DeltaVal = nil
		p.TotalDebt = nil
		p.DebtInterest = nil
		p.RoyaltyPct = nil
	} else {
		p.DealType = strings.ToLower(strings.TrimSpace(p.DealType))
	}

	if p.AskVal == nil {
		p.AskVal = impliedValuation(p.AskAmt, p.AskEq)
	}
	if p.IsFunded() && p.DealVal == nil {
		p.DealVal = impliedValuation(p.DealAmt, p.DealEq)
	}
	if p.IsFunded() && p.DeltaVal == nil && p.AskVal != nil && p.DealVal != nil && *p.AskVal > 0 {
		d := round((*p.DealVal-*p.AskVal) / *p.AskVal * 100, 1)
		p.DeltaVal = &d
	}
	return p
}

// impliedValuation converts an amount in lakhs for an equity percentage into
// a valuation in crores: amount / equity × 100 lakhs = amount / equity crores.
func impliedValuation(amt, eq *float64) *float64 {
	if amt == nil || eq == nil || *amt <= 0 || *eq <= 0 {
		return nil
	}
	v := round(*amt / *eq, 2)
	return &v
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
