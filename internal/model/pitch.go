package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Deal types recognised by the aggregation layer.  Any other value on a
// funded pitch is reported as unspecified.
const (
	DealEquity  = "equity"
	DealMixed   = "mixed"
	DealRoyalty = "royalty"
)

// Pitch represents one company's appearance before the investor panel as
// stored in pitches.json.  Monetary amounts are in lakhs, valuations in
// crores.  Optional numeric fields are pointers so that an absent value can
// be told apart from zero.
//
// Fields:
//  ID             – stable slug identifier.
//  Season, Ep     – season number and episode within the season.
//  Pitch          – running pitch number, used as a lookup fallback.
//  Industry, Type – free-text category and business description.
//  Funded         – whether a deal was accepted.
//  DealType       – equity, mixed (debt+equity) or royalty.
//  AskAmt/AskEq   – requested amount and equity percentage.
//  AskVal         – implied ask valuation.
//  DealAmt/DealEq – agreed amount and equity percentage (funded only).
//  Sharks         – investors associated with the pitch.
//  SharkBreakdown – per-investor share of a multi-investor deal.
type Pitch struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Season    int    `json:"season"`
	Ep        *int   `json:"ep"`
	Pitch     *int   `json:"pitch"`
	Industry  string `json:"industry"`
	Type      string `json:"type"`
	Summary   string `json:"summary,omitempty"`
	City      string `json:"city,omitempty"`
	State     string `json:"state,omitempty"`
	Website   string `json:"website,omitempty"`
	StartedIn string `json:"startedIn,omitempty"`

	Funded        FlexBool `json:"funded"`
	ReceivedOffer FlexBool `json:"receivedOffer"`
	HasConditions FlexBool `json:"hasConditions"`
	DealType      string   `json:"dealType,omitempty"`

	Ask    string   `json:"ask,omitempty"`
	AskAmt *float64 `json:"askAmt"`
	AskEq  *float64 `json:"askEq"`
	AskVal *float64 `json:"askVal"`

	Deal         string   `json:"deal,omitempty"`
	DealAmt      *float64 `json:"dealAmt"`
	DealEq       *float64 `json:"dealEq"`
	DealVal      *float64 `json:"dealVal"`
	FinalVal     *float64 `json:"finalVal"`
	DeltaVal     *float64 `json:"deltaVal"`
	TotalDebt    *float64 `json:"totalDebt"`
	DebtInterest *float64 `json:"debtInterest"`
	RoyaltyPct   *float64 `json:"royaltyPct"`

	Sharks         Investors             `json:"sharks"`
	NumSharks      int                   `json:"numSharks"`
	SharkBreakdown map[string]Investment `json:"sharkBreakdown,omitempty"`

	Revenue *float64 `json:"revenue"`
	Margin  *float64 `json:"margin"`
	EBITDA  *float64 `json:"ebitda"`
}

// Investment is one investor's share of a deal.
type Investment struct {
	Amt  float64  `json:"amt"`
	Eq   float64  `json:"eq"`
	Debt *float64 `json:"debt,omitempty"`
}

// IsFunded reports the normalised funded flag.
func (p Pitch) IsFunded() bool { return bool(p.Funded) }

// HasInvestor reports whether name appears in the pitch's investor list.
func (p Pitch) HasInvestor(name string) bool {
	for _, s := range p.Sharks {
		if s == name {
			return true
		}
	}
	return false
}

// FlexBool decodes the loosely typed status flags found in the source data:
// JSON booleans, their string spellings and 0/1 numbers.  Anything else,
// including null, decodes to false.
type FlexBool bool

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*b = false
		return nil
	}
	switch data[0] {
	case 't', 'f':
		var v bool
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*b = FlexBool(v)
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*b = FlexBool(parseTruthy(s))
	default:
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			*b = false
			return nil
		}
		*b = f != 0
	}
	return nil
}

func parseTruthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "1", "deal", "funded":
		return true
	}
	return false
}

// Investors is the ordered list of investor names attached to a pitch.  The
// decoder accepts an array (non-string entries are skipped) or a single bare
// string.  Splitting of comma-joined names happens in the store's
// normalisation step, not here.
type Investors []string

func (inv *Investors) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*inv = Investors{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*inv = Investors{s}
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Investors, 0, len(raw))
	for _, r := range raw {
		var s *string
		if err := json.Unmarshal(r, &s); err != nil || s == nil {
			continue
		}
		out = append(out, *s)
	}
	*inv = out
	return nil
}
