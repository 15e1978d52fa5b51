package correct

import (
	"context"
	"math"

	"syncorbit/internal/align"
	"syncorbit/internal/srt"
)

// VerdictKind grades a correction.
type VerdictKind string

const (
	VerdictAccept VerdictKind = "accept"
	VerdictReview VerdictKind = "review"
	VerdictReject VerdictKind = "reject"
)

// Verdict thresholds. The improvement ratio compares the robust drift
// span after correction to the span before; when the span before is
// effectively zero but a large constant offset was removed, the offset
// ratio is graded instead.
const (
	acceptMaxRatio     = 0.5
	acceptMaxAfterSpan = 0.6
	reviewMaxRatio     = 0.8

	// Spans and offsets below these are treated as already zero.
	spanEpsilon   = 1e-3
	offsetEpsilon = 1e-3

	// minAnchorRetention downgrades a verdict when the corrected file
	// aligns with noticeably fewer anchors than the original.
	minAnchorRetention = 0.8
)

// Reasons carries the figures behind a verdict.
type Reasons struct {
	SpanBefore    float64 `json:"span_before"`
	SpanAfter     float64 `json:"span_after"`
	OffsetBefore  float64 `json:"offset_before"`
	OffsetAfter   float64 `json:"offset_after"`
	AnchorsBefore int     `json:"anchors_before"`
	AnchorsAfter  int     `json:"anchors_after"`
	MaxShiftSec   float64 `json:"max_shift_sec"`
}

// Verdict is the outcome of grading a correction.
type Verdict struct {
	Verdict          VerdictKind `json:"verdict"`
	ImprovementRatio float64     `json:"improvement_ratio"`
	RatioDefined     bool        `json:"ratio_defined"`
	Reasons          Reasons     `json:"reasons"`
}

// Evaluate re-analyzes the corrected cues against the reference and
// grades the correction. The same analyzer configuration that produced
// the before-analysis must be used so the figures are comparable.
//
// Downgrade rules apply after the ratio grade and only ever move the
// verdict toward reject: losing more than 20% of the anchors costs one
// step, as does moving any cue further than the measured drift plus the
// configured shift limit justifies.
func Evaluate(ctx context.Context, analyzer *align.Analyzer, refCues, correctedCues []srt.Cue, before *align.Analysis, meta Meta, opts Options) (Verdict, *align.Analysis, error) {
	after, err := analyzer.Analyze(ctx, refCues, correctedCues)
	if err != nil {
		return Verdict{}, nil, err
	}

	reasons := Reasons{
		SpanBefore:    before.RobustDriftSpanSec,
		SpanAfter:     after.RobustDriftSpanSec,
		OffsetBefore:  before.MedianOffsetSec,
		OffsetAfter:   after.MedianOffsetSec,
		AnchorsBefore: before.AnchorCount,
		AnchorsAfter:  after.AnchorCount,
		MaxShiftSec:   meta.MaxShiftSec,
	}

	verdict := Verdict{Reasons: reasons}
	switch {
	case reasons.SpanBefore > spanEpsilon:
		verdict.ImprovementRatio = reasons.SpanAfter / reasons.SpanBefore
		verdict.RatioDefined = true
	case math.Abs(reasons.OffsetBefore) > offsetEpsilon:
		verdict.ImprovementRatio = math.Abs(reasons.OffsetAfter) / math.Abs(reasons.OffsetBefore)
		verdict.RatioDefined = true
	default:
		// Nothing measurable was wrong before, so the correction cannot
		// have improved anything.
		verdict.Verdict = VerdictReject
		return verdict, after, nil
	}

	switch {
	case verdict.ImprovementRatio <= acceptMaxRatio && reasons.SpanAfter <= acceptMaxAfterSpan:
		verdict.Verdict = VerdictAccept
	case verdict.ImprovementRatio <= reviewMaxRatio:
		verdict.Verdict = VerdictReview
	default:
		verdict.Verdict = VerdictReject
	}

	if float64(reasons.AnchorsAfter) < minAnchorRetention*float64(reasons.AnchorsBefore) {
		verdict.Verdict = downgrade(verdict.Verdict)
	}
	if meta.MaxShiftSec > shiftLimit(before, opts) {
		verdict.Verdict = downgrade(verdict.Verdict)
	}

	return verdict, after, nil
}

// shiftLimit is how far a cue may legitimately move: the measured offset
// plus span, but never below the configured floor. A constant 2.3s
// offset justifies a 2.3s shift; shifting beyond the evidence by more
// than the floor does not.
func shiftLimit(before *align.Analysis, opts Options) float64 {
	return math.Max(opts.MaxCueShiftSeconds, math.Abs(before.MedianOffsetSec)+before.RobustDriftSpanSec)
}

func downgrade(v VerdictKind) VerdictKind {
	switch v {
	case VerdictAccept:
		return VerdictReview
	default:
		return VerdictReject
	}
}
