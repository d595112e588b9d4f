package analytics

import (
	"math"

	"github.com/stih/tank-insights/internal/model"
)

// LakhsPerCrore converts deal amounts (lakhs) into crores.
const LakhsPerCrore = 100

// DealTypes counts funded pitches per deal type.  Funded pitches whose type
// is missing or unknown are counted as Unspecified.
type DealTypes struct {
	Equity      int `json:"equity"`
	Mixed       int `json:"mixed"`
	Royalty     int `json:"royalty"`
	Unspecified int `json:"unspecified"`
}

func (d *DealTypes) add(dealType string) {
	switch dealType {
	case model.DealEquity:
		d.Equity++
	case model.DealMixed:
		d.Mixed++
	case model.DealRoyalty:
		d.Royalty++
	default:
		d.Unspecified++
	}
}

// Summary holds the headline statistics of a pitch collection.
//
// TotalInvested is in crores with two decimals kept.  AverageDeal and
// LargestDeal stay in lakhs.
type Summary struct {
	Total         int       `json:"total"`
	FundedCount   int       `json:"fundedCount"`
	DealRate      int       `json:"dealRate"`
	TotalInvested float64   `json:"totalInvested"`
	AverageDeal   float64   `json:"averageDeal"`
	LargestDeal   float64   `json:"largestDeal"`
	DealTypes     DealTypes `json:"dealTypes"`
}

// Summarize computes the Summary of pitches.  An empty collection yields the
// zero Summary.
func Summarize(pitches []model.Pitch) Summary {
	var s Summary
	var investedLakhs float64
	s.Total = len(pitches)
	for _, p := range pitches {
		if !p.IsFunded() {
			continue
		}
		s.FundedCount++
		s.DealTypes.add(p.DealType)
		amt := dealAmount(p)
		investedLakhs += amt
		if amt > s.LargestDeal {
			s.LargestDeal = amt
		}
	}
	s.DealRate = dealRate(s.FundedCount, s.Total)
	s.TotalInvested = toCrores(investedLakhs)
	if s.FundedCount > 0 {
		s.AverageDeal = round(investedLakhs/float64(s.FundedCount), 2)
	}
	return s
}

// dealAmount is the deal amount in lakhs, zero when absent or negative.
func dealAmount(p model.Pitch) float64 {
	if !p.IsFunded() || p.DealAmt == nil || *p.DealAmt < 0 {
		return 0
	}
	return *p.DealAmt
}

func dealRate(funded, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(funded) / float64(total) * 100))
}

func toCrores(lakhs float64) float64 {
	return round(lakhs/LakhsPerCrore, 2)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
