package rcf

import "errors"

var (
	ErrNotStaged    = errors.New("asset class has not been staged yet")
	ErrUnknownField = errors.New("field is not a ratio column of this asset class")
	ErrNoData       = errors.New("no values to build a curve from")
	ErrBadIntervals = errors.New("num_intervals must be at least 1")
)

// Curve is the reference-class forecast for one ratio field: the
// empirical distribution of past outcomes, reduced to quantile points.
type Curve struct {
	AssetClass string  `json:"asset_class"`
	Field      string  `json:"field"`
	Count      int     `json:"count"`
	Mean       float64 `json:"mean"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`

	Points []Point `json:"points"`
}

// Point is one quantile of the curve. Percentile runs 0..100.
type Point struct {
	Percentile float64 `json:"percentile"`
	Value      float64 `json:"value"`
}
