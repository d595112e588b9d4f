package analytics

import "github.com/stih/tank-insights/internal/model"

func f64(v float64) *float64 { return &v }
func intp(v int) *int        { return &v }

func funded(id string, season int, amt float64, opts ...func(*model.Pitch)) model.Pitch {
	p := model.Pitch{ID: id, Name: id, Season: season, Funded: true, DealAmt: f64(amt), DealEq: f64(10), DealType: model.DealEquity}
	for _, o := range opts {
		o(&p)
	}
	return p
}

func unfunded(id string, season int, opts ...func(*model.Pitch)) model.Pitch {
	p := model.Pitch{ID: id, Name: id, Season: season}
	for _, o := range opts {
		o(&p)
	}
	return p
}

func industry(s string) func(*model.Pitch)   { return func(p *model.Pitch) { p.Industry = s } }
func dealType(s string) func(*model.Pitch)   { return func(p *model.Pitch) { p.DealType = s } }
func sharks(n ...string) func(*model.Pitch)  { return func(p *model.Pitch) { p.Sharks = n } }
func ep(n int) func(*model.Pitch)            { return func(p *model.Pitch) { p.Ep = intp(n) } }
func askVal(v float64) func(*model.Pitch)    { return func(p *model.Pitch) { p.AskVal = f64(v) } }
func city(s string) func(*model.Pitch)       { return func(p *model.Pitch) { p.City = s } }

// samplePitches spans three seasons with mixed outcomes.
func samplePitches() []model.Pitch {
	return []model.Pitch{
		funded("bluepine", 1, 75, industry("Food"), sharks("Aman", "Namita"), ep(1), askVal(4)),
		unfunded("skippi", 1, industry("Food"), ep(2), city("Mumbai")),
		funded("revamp", 2, 150, industry("Tech"), sharks("Peyush"), ep(1), dealType(model.DealMixed)),
		unfunded("heeko", 2, industry("Fashion"), ep(3)),
		funded("meatyd", 2, 30, industry("Food"), sharks("Aman"), ep(2), dealType("")),
		funded("nuutjob", 3, 40, industry("Health"), sharks("Anupam", "Aman"), ep(5), dealType(model.DealRoyalty)),
	}
}
