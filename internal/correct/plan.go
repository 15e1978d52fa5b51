package correct

import (
	"errors"
	"math"

	"syncorbit/internal/align"
)

// ErrCorrection marks a correction that could not be applied safely, for
// example too few anchors for the selected method. Callers fall back to
// whisper_required instead of emitting a corrupted file.
var ErrCorrection = errors.New("correction not applicable")

// Method identifies a correction strategy. The literal value is recorded
// in result metadata for audit.
type Method string

const (
	MethodGlobalOffset    Method = "global_offset"
	MethodStretchOffset   Method = "stretch_offset"
	MethodPiecewise       Method = "piecewise"
	MethodWhisperRequired Method = "whisper_required"
)

// Planner selection thresholds.
const (
	// globalSpanMax is the robust drift span below which a single offset
	// corrects the whole track.
	globalSpanMax = 0.7
	// stretchMinCoverage is the minimum reference-time coverage for a
	// trustworthy linear fit.
	stretchMinCoverage = 600.0
	// stretchMinR2 and stretchMaxSlope gate the stretch method on a
	// strong but physically plausible linear trend.
	stretchMinR2    = 0.85
	stretchMaxSlope = 0.002
)

// Options holds correction safety limits.
type Options struct {
	// MinAnchors is the clean anchor count below which no automatic
	// correction is attempted.
	MinAnchors int
	// MaxCueShiftSeconds bounds how far a correction may move any cue
	// beyond the measured drift before the verdict downgrades it.
	MaxCueShiftSeconds float64
}

// DefaultOptions returns the production safety limits.
func DefaultOptions() Options {
	return Options{
		MinAnchors:         20,
		MaxCueShiftSeconds: 1.0,
	}
}

// Plan is the selected correction strategy plus its parameters.
type Plan struct {
	Method Method
	// Shift applies to every cue for MethodGlobalOffset.
	Shift float64
	// Stretch and StretchShift define new = old·Stretch + StretchShift
	// for MethodStretchOffset.
	Stretch      float64
	StretchShift float64
	// Segments drive MethodPiecewise.
	Segments []align.Segment
}

// ChoosePlan selects the correction method for an analysis, evaluated in
// order: too few anchors → whisper_required; tiny robust span → global
// offset; detected drift segments → piecewise; long coverage with a
// strong linear trend → stretch; otherwise whisper_required.
func ChoosePlan(analysis *align.Analysis, opts Options) Plan {
	anchors := analysis.CleanAnchorList()
	if analysis.AnchorCount < opts.MinAnchors || len(anchors) == 0 {
		return Plan{Method: MethodWhisperRequired}
	}

	if analysis.RobustDriftSpanSec < globalSpanMax {
		return Plan{Method: MethodGlobalOffset, Shift: -globalShift(analysis)}
	}

	if len(analysis.Segments) >= 2 {
		return Plan{Method: MethodPiecewise, Segments: analysis.Segments}
	}

	coverage := anchors[len(anchors)-1].RefT - anchors[0].RefT
	if coverage >= stretchMinCoverage {
		slope, intercept, r2, ok := align.FitDrift(anchors)
		if ok && r2 > stretchMinR2 && math.Abs(slope) < stretchMaxSlope {
			// delta(t) ≈ slope·t + intercept; corrected T' = T − delta(T)
			// ≈ T·(1−slope) − intercept. First-order approximation of the
			// affine inverse; measurably biased for larger slopes.
			return Plan{
				Method:       MethodStretchOffset,
				Stretch:      1 - slope,
				StretchShift: -intercept,
			}
		}
	}

	return Plan{Method: MethodWhisperRequired}
}

// globalShift returns the offset a global correction removes: the robust
// median, falling back to the mean and then to the median of the anchor
// deltas for legacy documents that lack the summary fields.
func globalShift(analysis *align.Analysis) float64 {
	if analysis.MedianOffsetSec != 0 {
		return analysis.MedianOffsetSec
	}
	if analysis.AvgOffsetSec != 0 {
		return analysis.AvgOffsetSec
	}
	anchors := analysis.CleanAnchorList()
	deltas := make([]float64, len(anchors))
	for i, anchor := range anchors {
		deltas[i] = anchor.Delta
	}
	return medianOf(deltas)
}

func medianOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j] < sorted[j-1]; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return 0.5 * (sorted[mid-1] + sorted[mid])
}
