package align

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// madEpsilon floors a zero MAD so perfectly uniform deltas don't divide
// or threshold by zero.
const madEpsilon = 1e-6

// outlierMADFactor marks anchors deviating from the median by more than
// this many MADs as outliers.
const outlierMADFactor = 2.5

// DriftStats aggregates global and robust drift statistics over anchors.
// The robust span (4·MAD) is preferred over the raw span because raw span
// is sensitive to a single bad anchor.
type DriftStats struct {
	AnchorCount int

	Mean float64
	Min  float64
	Max  float64
	Span float64

	Median     float64
	MAD        float64
	RobustSpan float64

	Clean    []Anchor
	Outliers []Anchor
}

// AnalyzeDrift computes drift statistics and separates anchors into a
// clean set and outliers using the 2.5·MAD rule.
func AnalyzeDrift(anchors []Anchor) DriftStats {
	if len(anchors) == 0 {
		return DriftStats{}
	}

	deltas := make([]float64, len(anchors))
	for i, anchor := range anchors {
		deltas[i] = anchor.Delta
	}

	stats := DriftStats{
		AnchorCount: len(anchors),
		Mean:        stat.Mean(deltas, nil),
		Min:         deltas[0],
		Max:         deltas[0],
	}
	for _, d := range deltas {
		if d < stats.Min {
			stats.Min = d
		}
		if d > stats.Max {
			stats.Max = d
		}
	}
	stats.Span = stats.Max - stats.Min

	stats.Median = median(deltas)
	stats.MAD = madAbout(deltas, stats.Median)
	if stats.MAD == 0 {
		stats.MAD = madEpsilon
	}
	stats.RobustSpan = 4 * stats.MAD

	threshold := outlierMADFactor * stats.MAD
	for _, anchor := range anchors {
		if math.Abs(anchor.Delta-stats.Median) <= threshold {
			stats.Clean = append(stats.Clean, anchor)
		} else {
			stats.Outliers = append(stats.Outliers, anchor)
		}
	}
	return stats
}

// FitDrift fits delta ≈ slope·t + intercept over the anchors by least
// squares and reports the fit quality. ok is false for fewer than two
// anchors or a zero-variance time axis, the degenerate cases where the
// normal equations have no answer.
func FitDrift(anchors []Anchor) (slope, intercept, r2 float64, ok bool) {
	if len(anchors) < 2 {
		return 0, 0, 0, false
	}
	times := make([]float64, len(anchors))
	deltas := make([]float64, len(anchors))
	for i, anchor := range anchors {
		times[i] = anchor.RefT
		deltas[i] = anchor.Delta
	}

	tVar := stat.Variance(times, nil)
	if tVar == 0 || math.IsNaN(tVar) {
		return 0, 0, 0, false
	}

	intercept, slope = stat.LinearRegression(times, deltas, nil, false)
	if math.IsNaN(intercept) || math.IsNaN(slope) {
		return 0, 0, 0, false
	}

	r2 = stat.RSquared(times, deltas, nil, intercept, slope)
	if math.IsNaN(r2) {
		// Zero-variance deltas: the fit is exact but R² is undefined.
		r2 = 1
	}
	return slope, intercept, r2, true
}

// median returns the middle value, averaging the two central values for
// even-length input.
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return 0.5 * (sorted[mid-1] + sorted[mid])
}

// madAbout returns the median absolute deviation of values around center.
func madAbout(values []float64, center float64) float64 {
	if len(values) == 0 {
		return 0
	}
	deviations := make([]float64, len(values))
	for i, v := range values {
		deviations[i] = math.Abs(v - center)
	}
	return median(deviations)
}
