package analytics

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/stih/tank-insights/internal/model"
)

// Issue kinds reported by Audit.
const (
	IssueBreakdownExceedsEquity = "breakdown_exceeds_equity"
	IssueMissingDealFields      = "missing_deal_fields"
	IssueUnspecifiedDealType    = "unspecified_deal_type"
	IssueOrphanedSeason         = "orphaned_season"
	IssueDuplicateID            = "duplicate_id"
	IssueInvestorAlias          = "investor_alias"
)

// equityTolerance absorbs rounding in source equity percentages.
const equityTolerance = 0.01

// Issue is one data-quality finding.
type Issue struct {
	Kind    string `json:"kind"`
	PitchID string `json:"pitchId,omitempty"`
	Detail  string `json:"detail"`
}

// Report lists data-quality findings.  Nothing is corrected; findings are
// for an operator to act on.
type Report struct {
	Checked int            `json:"checked"`
	Counts  map[string]int `json:"counts"`
	Issues  []Issue        `json:"issues"`
}

func (r *Report) add(kind, pitchID, detail string) {
	r.Counts[kind]++
	r.Issues = append(r.Issues, Issue{Kind: kind, PitchID: pitchID, Detail: detail})
}

// Audit checks pitches against the data invariants: breakdown equity within
// the deal equity, complete deal fields on funded pitches, a known deal type,
// seasons present in the season collection, unique ids.  It also lists
// investor names that look like aliases of each other.
func Audit(pitches []model.Pitch, seasons []model.Season) Report {
	r := Report{Checked: len(pitches), Counts: map[string]int{}, Issues: []Issue{}}

	known := make(map[int]bool, len(seasons))
	for _, s := range seasons {
		known[s.Number] = true
	}
	orphans := make(map[int]int)
	var orphanOrder []int
	seen := make(map[string]int)

	for _, p := range pitches {
		seen[p.ID]++
		if seen[p.ID] == 2 {
			r.add(IssueDuplicateID, p.ID, "id appears more than once")
		}

		if !known[p.Season] {
			if orphans[p.Season] == 0 {
				orphanOrder = append(orphanOrder, p.Season)
			}
			orphans[p.Season]++
		}

		if !p.IsFunded() {
			continue
		}
		if p.DealAmt == nil || p.DealEq == nil || *p.DealAmt < 0 || *p.DealEq < 0 {
			r.add(IssueMissingDealFields, p.ID, "funded pitch without a valid deal amount and equity")
		}
		switch p.DealType {
		case model.DealEquity, model.DealMixed, model.DealRoyalty:
		default:
			r.add(IssueUnspecifiedDealType, p.ID, fmt.Sprintf("deal type %q", p.DealType))
		}
		if p.DealEq != nil && len(p.SharkBreakdown) > 0 {
			var sum float64
			for _, inv := range p.SharkBreakdown {
				sum += inv.Eq
			}
			if sum > *p.DealEq+equityTolerance {
				r.add(IssueBreakdownExceedsEquity, p.ID,
					fmt.Sprintf("breakdown equity %.2f%% exceeds deal equity %.2f%%", sum, *p.DealEq))
			}
		}
	}

	for _, n := range orphanOrder {
		r.add(IssueOrphanedSeason, "", fmt.Sprintf("season %d has %d pitches but no season entry", n, orphans[n]))
	}
	for _, pair := range investorAliases(pitches) {
		r.add(IssueInvestorAlias, "", fmt.Sprintf("%q and %q may be the same investor", pair[0], pair[1]))
	}
	return r
}

// investorAliases returns pairs of distinct investor names that are equal
// after case and whitespace folding, or where one name's words are a leading
// subset of the other's ("Ashneer" and "Ashneer Grover").  Pairs come in
// first-encounter order.
func investorAliases(pitches []model.Pitch) [][2]string {
	var names []string
	seen := make(map[string]bool)
	for _, p := range pitches {
		for _, n := range p.Sharks {
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}

	fold := cases.Fold()
	words := make([][]string, len(names))
	for i, n := range names {
		words[i] = strings.Fields(fold.String(n))
	}

	var out [][2]string
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			if leadingWords(words[i], words[j]) || leadingWords(words[j], words[i]) {
				out = append(out, [2]string{names[i], names[j]})
			}
		}
	}
	return out
}

// leadingWords reports whether short is a non-empty prefix of long.
func leadingWords(short, long []string) bool {
	if len(short) == 0 || len(short) > len(long) {
		return false
	}
	for i := range short {
		if short[i] != long[i] {
			return false
		}
	}
	return true
}
