package reference

import "errors"

var ErrNoDeflators = errors.New("gdp_deflators table is empty")

type Country struct {
	Code      string `json:"country_code"`
	Name      string `json:"country_name"`
	Subregion string `json:"subregion"`
}

// Rate is one (country, year) observation of any of the three
// indicator tables.
type Rate struct {
	CountryCode string  `json:"country_code"`
	Year        int     `json:"year"`
	Value       float64 `json:"value"`
}

// RefSet is an in-memory snapshot of the reference tables, keyed for
// row-wise lookups during staging.
type RefSet struct {
	FX        map[string]map[int]float64
	PPP       map[string]map[int]float64
	Deflators map[string]map[int]float64
	Countries map[string]Country
}

func NewRefSet() *RefSet {
	return &RefSet{
		FX:        make(map[string]map[int]float64),
		PPP:       make(map[string]map[int]float64),
		Deflators: make(map[string]map[int]float64),
		Countries: make(map[string]Country),
	}
}

func lookup(m map[string]map[int]float64, country string, year int) (float64, bool) {
	years, ok := m[country]
	if !ok {
		return 0, false
	}
	v, ok := years[year]
	return v, ok
}

func put(m map[string]map[int]float64, country string, year int, value float64) {
	if m[country] == nil {
		m[country] = make(map[int]float64)
	}
	m[country][year] = value
}

// FXRate returns the USD-per-local-currency rate for a country and year.
func (r *RefSet) FXRate(country string, year int) (float64, bool) {
	return lookup(r.FX, country, year)
}

func (r *RefSet) PPPRate(country string, year int) (float64, bool) {
	return lookup(r.PPP, country, year)
}

func (r *RefSet) Deflator(country string, year int) (float64, bool) {
	return lookup(r.Deflators, country, year)
}

func (r *RefSet) Country(code string) (Country, bool) {
	c, ok := r.Countries[code]
	return c, ok
}

func (r *RefSet) SetFX(country string, year int, value float64)       { put(r.FX, country, year, value) }
func (r *RefSet) SetPPP(country string, year int, value float64)      { put(r.PPP, country, year, value) }
func (r *RefSet) SetDeflator(country string, year int, value float64) { put(r.Deflators, country, year, value) }
