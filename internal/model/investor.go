package model

// Investor is a panel member ("shark") as stored in sharks.json.  Deal
// participation is not stored here; it is derived by scanning pitches.
type Investor struct {
	ID            int      `json:"id"`
	Name          string   `json:"name"`
	FullName      string   `json:"fullName"`
	Title         string   `json:"title"`
	Emoji         string   `json:"emoji,omitempty"`
	Color         string   `json:"color,omitempty"`
	Deals         int      `json:"deals"`
	InvestedCr    float64  `json:"investedCr"`
	TopIndustries []string `json:"topIndustries"`
	Seasons       []int    `json:"seasons"`
}
