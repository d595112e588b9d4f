package analytics

import (
	"cmp"
	"slices"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/stih/tank-insights/internal/model"
)

// SortKey names a numeric projection of a pitch.
type SortKey string

const (
	SortNone    SortKey = ""
	SortEpisode SortKey = "ep"      // season*1000 + episode; missing without an episode
	SortAsk     SortKey = "ask"     // ask valuation
	SortDeal    SortKey = "deal"    // deal valuation
	SortAskAmt  SortKey = "askAmt"  // requested amount
	SortDealAmt SortKey = "dealAmt" // agreed amount
)

// Direction is the sort order.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

var sortKeys = map[SortKey]func(model.Pitch) (float64, bool){
	SortEpisode: func(p model.Pitch) (float64, bool) {
		if p.Ep == nil {
			return 0, false
		}
		return float64(p.Season*1000 + *p.Ep), true
	},
	SortAsk:     func(p model.Pitch) (float64, bool) { return deref(p.AskVal) },
	SortDeal:    func(p model.Pitch) (float64, bool) { return deref(p.DealVal) },
	SortAskAmt:  func(p model.Pitch) (float64, bool) { return deref(p.AskAmt) },
	SortDealAmt: func(p model.Pitch) (float64, bool) { return deref(p.DealAmt) },
}

func deref(v *float64) (float64, bool) {
	if v == nil {
		return 0, false
	}
	return *v, true
}

// ParseSort validates a sort key and order from request parameters.  An
// empty key means no sorting; an empty order means ascending.
func ParseSort(key, order string) (SortKey, Direction, error) {
	k := SortKey(strings.TrimSpace(key))
	if k != SortNone {
		if _, ok := sortKeys[k]; !ok {
			return SortNone, Asc, eris.Wrapf(ErrInvalidCriteria, "sort key %q", key)
		}
	}
	switch strings.ToLower(strings.TrimSpace(order)) {
	case "", "asc":
		return k, Asc, nil
	case "desc":
		return k, Desc, nil
	}
	return SortNone, Asc, eris.Wrapf(ErrInvalidCriteria, "sort order %q", order)
}

// Sort returns a copy of pitches ordered by key.  Pitches without a value
// for key sort lowest: first ascending, last descending.  The sort is
// stable in both directions.  An unknown or empty key returns an unsorted
// copy.
func Sort(pitches []model.Pitch, key SortKey, dir Direction) []model.Pitch {
	out := slices.Clone(pitches)
	if out == nil {
		out = []model.Pitch{}
	}
	value, ok := sortKeys[key]
	if !ok {
		return out
	}
	slices.SortStableFunc(out, func(a, b model.Pitch) int {
		av, aok := value(a)
		bv, bok := value(b)
		c := compareMissingLow(av, aok, bv, bok)
		if dir == Desc {
			return -c
		}
		return c
	})
	return out
}

func compareMissingLow(av float64, aok bool, bv float64, bok bool) int {
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return -1
	case !bok:
		return 1
	}
	return cmp.Compare(av, bv)
}
