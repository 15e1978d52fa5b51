package align

import (
	"context"
	"log/slog"

	"syncorbit/internal/logging"
	"syncorbit/internal/srt"
)

// Analyzer runs the full drift analysis pipeline for one cue pair.
// It is stateless between runs and safe to share across batch workers as
// long as the provider is.
type Analyzer struct {
	provider Provider
	opts     Options
	logger   *slog.Logger
}

// NewAnalyzer constructs an analyzer around the given similarity provider.
func NewAnalyzer(provider Provider, opts Options, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		provider: provider,
		opts:     opts,
		logger:   logging.OrNop(logger),
	}
}

// Options returns the analyzer's tunables.
func (a *Analyzer) Options() Options {
	return a.opts
}

// Analyze aligns the target cues against the reference cues and returns
// the analysis document: anchors, drift statistics, segments, and the
// quality decision. The decision is based on the robust statistics; raw
// figures are retained in the document for inspection.
//
// Empty input returns ErrEmptyInput; a provider failure without the
// lexical fallback returns ErrProvider. Both are pair-local conditions.
func (a *Analyzer) Analyze(ctx context.Context, refCues, tgtCues []srt.Cue) (*Analysis, error) {
	if len(refCues) == 0 || len(tgtCues) == 0 {
		return nil, Wrap(ErrEmptyInput, "analyze", nil)
	}

	matrix, err := BuildSimilarityMatrix(ctx, a.provider, refCues, tgtCues, a.opts, a.logger)
	if err != nil {
		return nil, err
	}

	pairs := Align(matrix, a.opts.GapPenalty)
	raw := ExtractAnchors(refCues, tgtCues, pairs, a.opts)
	anchors := CleanAnchors(raw)

	stats := AnalyzeDrift(anchors)
	// Segmentation sees the full cleaned set: the robust outlier pass
	// quarantines exactly the anchors a minority drift regime is made of.
	segments := Segmentize(anchors, a.opts.MinSegmentAnchors)
	decision := Classify(len(stats.Clean), stats.Median, stats.RobustSpan)

	a.logger.Debug("pair analyzed",
		"ref_cues", len(refCues),
		"tgt_cues", len(tgtCues),
		"aligned_pairs", len(pairs),
		"raw_anchors", len(raw),
		"clean_anchors", len(stats.Clean),
		"median_offset", stats.Median,
		"robust_span", stats.RobustSpan,
		"segments", len(segments),
		"decision", string(decision),
	)

	return &Analysis{
		SchemaVersion:      SchemaVersion,
		RefCount:           len(refCues),
		TargetCount:        len(tgtCues),
		AnchorCount:        len(stats.Clean),
		RawAnchorCount:     len(raw),
		AvgOffsetSec:       stats.Mean,
		MedianOffsetSec:    stats.Median,
		MADOffsetSec:       stats.MAD,
		MinOffsetSec:       stats.Min,
		MaxOffsetSec:       stats.Max,
		DriftSpanSec:       stats.Span,
		RobustDriftSpanSec: stats.RobustSpan,
		Anchors:            anchorPoints(stats.Clean),
		Outliers:           anchorPoints(stats.Outliers),
		Segments:           segments,
		DriftCurve:         downsampleCurve(anchors),
		Decision:           decision,
	}, nil
}
