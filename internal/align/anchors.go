package align

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"gonum.org/v1/gonum/stat"

	"syncorbit/internal/srt"
	"syncorbit/internal/textutil"
)

// Anchor is a trusted timing correspondence between a reference cue and a
// target cue. Delta is the target start minus the reference start.
type Anchor struct {
	RefIndex int
	TgtIndex int
	RefT     float64
	TgtT     float64
	Delta    float64
	Score    float64
	LenRatio float64
	DurRatio float64
}

// Residual-threshold bounds for the regression cleanup.
const (
	residMADFactor  = 3.0
	residMin        = 0.8
	residMax        = 1.8
	minCleanAnchors = 10
)

// ExtractAnchors filters aligned pairs into raw anchors. A pair survives
// only when both texts are long enough, neither is a lone token or filler
// word, the text-length and duration ratios stay bounded, and the
// similarity score clears the floor. At most one anchor is kept per
// target cue (best score wins), which absorbs merged or split captions
// upstream. The result is sorted by reference time.
func ExtractAnchors(refCues, tgtCues []srt.Cue, pairs []AlignedPair, opts Options) []Anchor {
	fillers := opts.fillerSet()

	bestByTarget := make(map[int]Anchor)
	for _, pair := range pairs {
		ref := refCues[pair.RefIndex]
		tgt := tgtCues[pair.TgtIndex]

		refText := strings.TrimSpace(ref.Text)
		tgtText := strings.TrimSpace(tgt.Text)

		refLen := utf8.RuneCountInString(refText)
		tgtLen := utf8.RuneCountInString(tgtText)
		if refLen < opts.MinChars || tgtLen < opts.MinChars {
			continue
		}

		if isFillerOrSingleToken(refText, fillers) || isFillerOrSingleToken(tgtText, fillers) {
			continue
		}

		lenRatio := ratio(float64(refLen), float64(tgtLen))
		if lenRatio > opts.MaxLenRatio {
			continue
		}

		refDur := math.Max(0.001, ref.Duration())
		tgtDur := math.Max(0.001, tgt.Duration())
		durRatio := ratio(refDur, tgtDur)
		if durRatio > opts.MaxDurRatio {
			continue
		}

		if pair.Score < opts.MinSimilarity {
			continue
		}

		anchor := Anchor{
			RefIndex: ref.Index,
			TgtIndex: tgt.Index,
			RefT:     ref.Start,
			TgtT:     tgt.Start,
			Delta:    tgt.Start - ref.Start,
			Score:    pair.Score,
			LenRatio: lenRatio,
			DurRatio: durRatio,
		}
		if existing, ok := bestByTarget[anchor.TgtIndex]; !ok || anchor.Score > existing.Score {
			bestByTarget[anchor.TgtIndex] = anchor
		}
	}

	anchors := make([]Anchor, 0, len(bestByTarget))
	for _, anchor := range bestByTarget {
		anchors = append(anchors, anchor)
	}
	sort.Slice(anchors, func(i, j int) bool { return anchors[i].RefT < anchors[j].RefT })
	return anchors
}

func isFillerOrSingleToken(text string, fillers map[string]struct{}) bool {
	if _, ok := fillers[textutil.Normalize(text)]; ok {
		return true
	}
	return len(textutil.Tokenize(text)) <= 1
}

func ratio(a, b float64) float64 {
	if a > b {
		a, b = b, a
	}
	if a <= 0 {
		a = 1
	}
	return b / a
}

// CleanAnchors drops anchors whose delta deviates from a least-squares
// linear drift fit by more than clamp(3·MAD, 0.8s, 1.8s) of residual.
// The drop is aborted (all anchors retained) when fewer than
// max(10, n/10) would survive, so pathological inputs never collapse the
// anchor set to nothing.
func CleanAnchors(anchors []Anchor) []Anchor {
	n := len(anchors)
	if n < minCleanAnchors {
		return anchors
	}

	times := make([]float64, n)
	deltas := make([]float64, n)
	for i, anchor := range anchors {
		times[i] = anchor.RefT
		deltas[i] = anchor.Delta
	}

	// Center time for numeric stability before fitting.
	t0 := stat.Mean(times, nil)
	centered := make([]float64, n)
	for i, t := range times {
		centered[i] = t - t0
	}

	intercept, slope := stat.LinearRegression(centered, deltas, nil, false)
	if math.IsNaN(intercept) || math.IsNaN(slope) {
		return anchors
	}

	residuals := make([]float64, n)
	absResiduals := make([]float64, n)
	for i := range deltas {
		residuals[i] = deltas[i] - (slope*centered[i] + intercept)
		absResiduals[i] = math.Abs(residuals[i])
	}

	mad := median(absResiduals)
	if mad == 0 {
		mad = 0.001
	}
	threshold := math.Min(residMax, math.Max(residMin, residMADFactor*mad))

	cleaned := make([]Anchor, 0, n)
	for i, anchor := range anchors {
		if math.Abs(residuals[i]) <= threshold {
			cleaned = append(cleaned, anchor)
		}
	}

	if len(cleaned) < max(minCleanAnchors, n/10) {
		return anchors
	}
	return cleaned
}
