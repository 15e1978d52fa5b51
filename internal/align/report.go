package align

import (
	"encoding/json"
	"fmt"
	"os"

	"syncorbit/internal/fileutil"
)

// SchemaVersion identifies the analysis document layout. Documents with a
// newer version are rejected rather than half-read.
const SchemaVersion = 1

// maxCurvePoints caps the down-sampled drift curve kept for display.
const maxCurvePoints = 40

// AnchorPoint is the serialized form of an Anchor.
type AnchorPoint struct {
	RefIndex int     `json:"ref_index"`
	TgtIndex int     `json:"tgt_index"`
	RefT     float64 `json:"ref_t"`
	TgtT     float64 `json:"tgt_t"`
	Delta    float64 `json:"delta"`
	Score    float64 `json:"score"`
	LenRatio float64 `json:"len_ratio,omitempty"`
	DurRatio float64 `json:"dur_ratio,omitempty"`
}

// UnmarshalJSON accepts the historical alias keys (offset for delta,
// t_ref for ref_t, target_t for tgt_t) as a backward-compatibility shim.
// The canonical names always win when both are present.
func (p *AnchorPoint) UnmarshalJSON(data []byte) error {
	var raw struct {
		RefIndex int      `json:"ref_index"`
		TgtIndex int      `json:"tgt_index"`
		RefT     *float64 `json:"ref_t"`
		TRef     *float64 `json:"t_ref"`
		TgtT     *float64 `json:"tgt_t"`
		TargetT  *float64 `json:"target_t"`
		Delta    *float64 `json:"delta"`
		Offset   *float64 `json:"offset"`
		Score    float64  `json:"score"`
		LenRatio float64  `json:"len_ratio"`
		DurRatio float64  `json:"dur_ratio"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.RefIndex = raw.RefIndex
	p.TgtIndex = raw.TgtIndex
	p.RefT = firstValue(raw.RefT, raw.TRef)
	p.TgtT = firstValue(raw.TgtT, raw.TargetT)
	p.Delta = firstValue(raw.Delta, raw.Offset)
	p.Score = raw.Score
	p.LenRatio = raw.LenRatio
	p.DurRatio = raw.DurRatio
	return nil
}

func firstValue(values ...*float64) float64 {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return 0
}

// CurvePoint is one display sample of the drift curve.
type CurvePoint struct {
	RefT  float64 `json:"ref_t"`
	Delta float64 `json:"delta"`
}

// Analysis is the canonical per-pair analysis document. One is produced
// per alignment run and fully overwritten by the next run.
type Analysis struct {
	SchemaVersion int    `json:"schema_version"`
	RefPath       string `json:"ref_path,omitempty"`
	TargetPath    string `json:"target_path,omitempty"`
	RefCount      int    `json:"ref_count"`
	TargetCount   int    `json:"target_count"`

	// AnchorCount counts the robust clean set; RawAnchorCount counts all
	// anchors that survived filtering before outlier marking.
	AnchorCount    int `json:"anchor_count"`
	RawAnchorCount int `json:"raw_anchor_count"`

	AvgOffsetSec       float64 `json:"avg_offset_sec"`
	MedianOffsetSec    float64 `json:"median_offset_sec"`
	MADOffsetSec       float64 `json:"mad_offset_sec"`
	MinOffsetSec       float64 `json:"min_offset_sec"`
	MaxOffsetSec       float64 `json:"max_offset_sec"`
	DriftSpanSec       float64 `json:"drift_span_sec"`
	RobustDriftSpanSec float64 `json:"robust_drift_span_sec"`

	Anchors    []AnchorPoint `json:"anchors"`
	Outliers   []AnchorPoint `json:"outliers,omitempty"`
	Segments   []Segment     `json:"segments,omitempty"`
	DriftCurve []CurvePoint  `json:"drift_curve"`

	Decision Decision `json:"decision"`
}

// CleanAnchorList converts the clean anchor points back to Anchors for
// correction planning.
func (a *Analysis) CleanAnchorList() []Anchor {
	anchors := make([]Anchor, len(a.Anchors))
	for i, p := range a.Anchors {
		anchors[i] = Anchor{
			RefIndex: p.RefIndex,
			TgtIndex: p.TgtIndex,
			RefT:     p.RefT,
			TgtT:     p.TgtT,
			Delta:    p.Delta,
			Score:    p.Score,
			LenRatio: p.LenRatio,
			DurRatio: p.DurRatio,
		}
	}
	return anchors
}

// SaveAnalysis writes the document atomically so a cancelled run never
// leaves a truncated artifact.
func SaveAnalysis(path string, analysis *Analysis) error {
	data, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write analysis: %w", err)
	}
	return nil
}

// LoadAnalysis reads an analysis document. Documents without a schema
// version are treated as legacy and decoded through the alias shim;
// versions newer than SchemaVersion are rejected.
func LoadAnalysis(path string) (*Analysis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read analysis: %w", err)
	}
	var analysis Analysis
	if err := json.Unmarshal(data, &analysis); err != nil {
		return nil, fmt.Errorf("parse analysis: %w", err)
	}
	if analysis.SchemaVersion > SchemaVersion {
		return nil, fmt.Errorf("analysis schema version %d is newer than supported %d", analysis.SchemaVersion, SchemaVersion)
	}
	return &analysis, nil
}

func anchorPoints(anchors []Anchor) []AnchorPoint {
	points := make([]AnchorPoint, len(anchors))
	for i, anchor := range anchors {
		points[i] = AnchorPoint{
			RefIndex: anchor.RefIndex,
			TgtIndex: anchor.TgtIndex,
			RefT:     anchor.RefT,
			TgtT:     anchor.TgtT,
			Delta:    anchor.Delta,
			Score:    anchor.Score,
			LenRatio: anchor.LenRatio,
			DurRatio: anchor.DurRatio,
		}
	}
	return points
}

// downsampleCurve keeps at most maxCurvePoints evenly strided samples.
func downsampleCurve(anchors []Anchor) []CurvePoint {
	if len(anchors) == 0 {
		return nil
	}
	step := len(anchors) / maxCurvePoints
	if step < 1 {
		step = 1
	}
	var curve []CurvePoint
	for i := 0; i < len(anchors); i += step {
		curve = append(curve, CurvePoint{RefT: anchors[i].RefT, Delta: anchors[i].Delta})
	}
	return curve
}
