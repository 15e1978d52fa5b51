package correct

import (
	"errors"
	"math"
	"testing"

	"syncorbit/internal/align"
	"syncorbit/internal/srt"
)

func sampleCues() []srt.Cue {
	return []srt.Cue{
		{Index: 1, Start: 10, End: 12, Text: "first line of dialogue"},
		{Index: 2, Start: 20, End: 22, Text: "second line of dialogue"},
		{Index: 3, Start: 30, End: 32, Text: "third line of dialogue"},
	}
}

func TestApplyGlobalOffset(t *testing.T) {
	plan := Plan{Method: MethodGlobalOffset, Shift: -2.3}

	out, meta, err := Apply(plan, sampleCues())
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if math.Abs(out[0].Start-7.7) > 1e-9 || math.Abs(out[0].End-9.7) > 1e-9 {
		t.Fatalf("first cue = [%v,%v], want [7.7,9.7]", out[0].Start, out[0].End)
	}
	if meta.Method != MethodGlobalOffset || math.Abs(meta.MaxShiftSec-2.3) > 1e-9 {
		t.Fatalf("meta = %+v, want global with max shift 2.3", meta)
	}
}

func TestApplyGlobalClampsAtZero(t *testing.T) {
	cues := []srt.Cue{{Index: 1, Start: 1, End: 3, Text: "early line of dialogue"}}
	plan := Plan{Method: MethodGlobalOffset, Shift: -2.5}

	out, _, err := Apply(plan, cues)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if out[0].Start != 0 {
		t.Fatalf("start = %v, want clamp to 0", out[0].Start)
	}
	if math.Abs(out[0].End-0.5) > 1e-9 {
		t.Fatalf("end = %v, want 0.5", out[0].End)
	}
}

func TestApplyGlobalCollapsesInvertedCue(t *testing.T) {
	cues := []srt.Cue{{Index: 1, Start: 0.5, End: 1.0, Text: "very early dialogue line"}}
	plan := Plan{Method: MethodGlobalOffset, Shift: -2.0}

	out, _, err := Apply(plan, cues)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if out[0].Start != 0 || out[0].End != 0 {
		t.Fatalf("cue = [%v,%v], want collapsed [0,0]", out[0].Start, out[0].End)
	}
}

func TestApplyStretch(t *testing.T) {
	cues := []srt.Cue{{Index: 1, Start: 1000, End: 1002, Text: "late line of dialogue"}}
	plan := Plan{Method: MethodStretchOffset, Stretch: 0.999, StretchShift: -0.5}

	out, meta, err := Apply(plan, cues)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if math.Abs(out[0].Start-998.5) > 1e-9 {
		t.Fatalf("start = %v, want 998.5", out[0].Start)
	}
	if math.Abs(out[0].End-1001.498) > 1e-9 {
		t.Fatalf("end = %v, want 1001.498", out[0].End)
	}
	if math.Abs(meta.MaxShiftSec-1.5) > 1e-9 {
		t.Fatalf("max shift = %v, want 1.5", meta.MaxShiftSec)
	}
}

func TestApplyPiecewise(t *testing.T) {
	segments := []align.Segment{
		{TStart: 0, TEnd: 100, MedianDelta: 0, Count: 12},
		{TStart: 110, TEnd: 200, MedianDelta: 3, Count: 8},
	}
	cues := []srt.Cue{
		{Index: 1, Start: 49, End: 51, Text: "line in the first regime"},
		{Index: 2, Start: 149, End: 151, Text: "line in the second regime"},
		{Index: 3, Start: 299, End: 301, Text: "line past every segment"},
	}
	plan := Plan{Method: MethodPiecewise, Segments: segments}

	out, meta, err := Apply(plan, cues)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if out[0].Start != 49 {
		t.Errorf("first regime cue moved to %v, want 49", out[0].Start)
	}
	if out[1].Start != 146 {
		t.Errorf("second regime cue moved to %v, want 146", out[1].Start)
	}
	// Midpoint 300 is outside both windows; the second segment's center
	// is nearer, so its shift applies.
	if out[2].Start != 296 {
		t.Errorf("trailing cue moved to %v, want 296", out[2].Start)
	}
	if meta.Segments != 2 || meta.MaxShiftSec != 3 {
		t.Errorf("meta = %+v, want 2 segments and max shift 3", meta)
	}
}

func TestApplyPiecewiseNarrowestSegmentWins(t *testing.T) {
	segments := []align.Segment{
		{TStart: 0, TEnd: 200, MedianDelta: 1, Count: 20},
		{TStart: 90, TEnd: 110, MedianDelta: 2, Count: 5},
	}
	cues := []srt.Cue{{Index: 1, Start: 99, End: 101, Text: "line inside both segments"}}

	out, _, err := Apply(Plan{Method: MethodPiecewise, Segments: segments}, cues)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if out[0].Start != 97 {
		t.Fatalf("start = %v, want 97 from the narrower segment", out[0].Start)
	}
}

func TestApplyPiecewiseRequiresTwoSegments(t *testing.T) {
	plan := Plan{Method: MethodPiecewise, Segments: []align.Segment{{TStart: 0, TEnd: 100}}}
	if _, _, err := Apply(plan, sampleCues()); !errors.Is(err, ErrCorrection) {
		t.Fatalf("expected ErrCorrection, got %v", err)
	}
}

func TestApplyRejectsEmptyAndWhisper(t *testing.T) {
	if _, _, err := Apply(Plan{Method: MethodGlobalOffset}, nil); !errors.Is(err, ErrCorrection) {
		t.Fatalf("expected ErrCorrection for empty cues, got %v", err)
	}
	if _, _, err := Apply(Plan{Method: MethodWhisperRequired}, sampleCues()); !errors.Is(err, ErrCorrection) {
		t.Fatalf("expected ErrCorrection for whisper plan, got %v", err)
	}
}
