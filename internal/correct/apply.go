package correct

import (
	"fmt"
	"math"

	"syncorbit/internal/align"
	"syncorbit/internal/srt"
)

// Meta records what a correction actually did, for result output and for
// the verdict's shift limit.
type Meta struct {
	Method      Method  `json:"method"`
	ShiftSec    float64 `json:"shift_sec,omitempty"`
	Stretch     float64 `json:"stretch,omitempty"`
	Intercept   float64 `json:"intercept,omitempty"`
	Segments    int     `json:"segments,omitempty"`
	MaxShiftSec float64 `json:"max_shift_sec"`
}

// Apply executes a correction plan over the target cues and returns the
// corrected cues with metadata. Input cues are not modified. Start times
// clamp at zero; a cue whose end would precede its start collapses to a
// zero-duration cue instead.
func Apply(plan Plan, cues []srt.Cue) ([]srt.Cue, Meta, error) {
	if len(cues) == 0 {
		return nil, Meta{}, fmt.Errorf("%w: no cues to correct", ErrCorrection)
	}

	meta := Meta{Method: plan.Method}
	var out []srt.Cue

	switch plan.Method {
	case MethodGlobalOffset:
		meta.ShiftSec = plan.Shift
		out = shiftCues(cues, func(srt.Cue) float64 { return plan.Shift }, &meta)
	case MethodStretchOffset:
		meta.Stretch = plan.Stretch
		meta.Intercept = plan.StretchShift
		out = remapCues(cues, func(t float64) float64 {
			return t*plan.Stretch + plan.StretchShift
		}, &meta)
	case MethodPiecewise:
		if len(plan.Segments) < 2 {
			return nil, Meta{}, fmt.Errorf("%w: piecewise needs at least two segments", ErrCorrection)
		}
		meta.Segments = len(plan.Segments)
		out = shiftCues(cues, func(cue srt.Cue) float64 {
			mid := 0.5 * (cue.Start + cue.End)
			return -segmentFor(plan.Segments, mid).MedianDelta
		}, &meta)
	default:
		return nil, Meta{}, fmt.Errorf("%w: method %q is not applicable", ErrCorrection, plan.Method)
	}

	return out, meta, nil
}

// shiftCues moves each cue by a per-cue offset, keeping duration intact
// except where the zero clamp truncates it.
func shiftCues(cues []srt.Cue, shift func(srt.Cue) float64, meta *Meta) []srt.Cue {
	out := make([]srt.Cue, len(cues))
	for i, cue := range cues {
		s := shift(cue)
		out[i] = clampCue(cue, cue.Start+s, cue.End+s)
		meta.MaxShiftSec = math.Max(meta.MaxShiftSec, math.Abs(out[i].Start-cue.Start))
	}
	return out
}

// remapCues applies an arbitrary time map to both endpoints.
func remapCues(cues []srt.Cue, remap func(float64) float64, meta *Meta) []srt.Cue {
	out := make([]srt.Cue, len(cues))
	for i, cue := range cues {
		out[i] = clampCue(cue, remap(cue.Start), remap(cue.End))
		meta.MaxShiftSec = math.Max(meta.MaxShiftSec, math.Abs(out[i].Start-cue.Start))
	}
	return out
}

func clampCue(cue srt.Cue, start, end float64) srt.Cue {
	if start < 0 {
		start = 0
	}
	if end < start {
		end = start
	}
	cue.Start = start
	cue.End = end
	return cue
}

// segmentFor picks the segment whose time range contains mid, preferring
// the narrowest when ranges overlap. A cue outside every range maps to
// the segment with the nearest center.
func segmentFor(segments []align.Segment, mid float64) align.Segment {
	best := -1
	bestWidth := math.Inf(1)
	for i, seg := range segments {
		if mid < seg.TStart || mid > seg.TEnd {
			continue
		}
		width := seg.TEnd - seg.TStart
		if width < bestWidth {
			best = i
			bestWidth = width
		}
	}
	if best >= 0 {
		return segments[best]
	}
	bestDist := math.Inf(1)
	for i, seg := range segments {
		center := 0.5 * (seg.TStart + seg.TEnd)
		if d := math.Abs(mid - center); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return segments[best]
}
