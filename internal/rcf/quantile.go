package rcf

import "math"

// quantile reads the p-th quantile (p in 0..1) off a sorted sample,
// interpolating linearly between neighboring order statistics.
func quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}

	h := p * float64(len(sorted)-1)
	lo := int(math.Floor(h))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}

	frac := h - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// buildCurve reduces a sorted sample to numIntervals+1 evenly spaced
// quantile points.
func buildCurve(sorted []float64, numIntervals int) []Point {
	points := make([]Point, 0, numIntervals+1)
	for i := 0; i <= numIntervals; i++ {
		p := float64(i) / float64(numIntervals)
		points = append(points, Point{
			Percentile: 100 * p,
			Value:      quantile(sorted, p),
		})
	}
	return points
}
