package model

// Industry is a precomputed rollup row from industries.json.  Names are free
// text; new labels may appear after any refresh.
type Industry struct {
	Name       string  `json:"name"`
	Total      int     `json:"total"`
	Funded     int     `json:"funded"`
	DealRate   int     `json:"dealRate"`
	InvestedCr float64 `json:"investedCr"`
}
