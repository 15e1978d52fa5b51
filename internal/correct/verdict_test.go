package correct

import (
	"context"
	"math"
	"testing"

	"syncorbit/internal/align"
	"syncorbit/internal/testsupport"
)

func newTestAnalyzer() *align.Analyzer {
	return align.NewAnalyzer(testsupport.TextMatchProvider{}, align.DefaultOptions(), nil)
}

// Full loop: analyze a constant 2.3s offset, plan, apply, and grade.
func TestCorrectionLoopConstantOffset(t *testing.T) {
	ctx := context.Background()
	analyzer := newTestAnalyzer()
	refs := testsupport.DialogueCues(30, 10, 2)
	tgts := testsupport.Shift(refs, 2.3)

	before, err := analyzer.Analyze(ctx, refs, tgts)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	plan := ChoosePlan(before, DefaultOptions())
	if plan.Method != MethodGlobalOffset {
		t.Fatalf("method = %s, want %s", plan.Method, MethodGlobalOffset)
	}
	if math.Abs(plan.Shift-(-2.3)) > 1e-6 {
		t.Fatalf("shift = %v, want -2.3", plan.Shift)
	}

	corrected, meta, err := Apply(plan, tgts)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	verdict, after, err := Evaluate(ctx, analyzer, refs, corrected, before, meta, DefaultOptions())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if after.Decision != align.DecisionSynced {
		t.Errorf("decision after = %s, want %s", after.Decision, align.DecisionSynced)
	}
	if math.Abs(after.MedianOffsetSec) > 1e-6 {
		t.Errorf("median offset after = %v, want 0", after.MedianOffsetSec)
	}
	if verdict.Verdict != VerdictAccept {
		t.Errorf("verdict = %s, want %s (%+v)", verdict.Verdict, VerdictAccept, verdict.Reasons)
	}
	if !verdict.RatioDefined {
		t.Error("improvement ratio should be defined via the offset basis")
	}
}

// Full loop for linear drift over 900s: target = ref·1.001 + 1.0.
func TestCorrectionLoopLinearDrift(t *testing.T) {
	ctx := context.Background()
	analyzer := newTestAnalyzer()
	refs := testsupport.DialogueCues(31, 30, 2)
	tgts := testsupport.Stretch(refs, 1.001, 1.0)

	before, err := analyzer.Analyze(ctx, refs, tgts)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	plan := ChoosePlan(before, DefaultOptions())
	if plan.Method != MethodStretchOffset {
		t.Fatalf("method = %s, want %s", plan.Method, MethodStretchOffset)
	}
	if math.Abs(plan.Stretch-0.999) > 1e-4 {
		t.Errorf("stretch = %v, want ~0.999", plan.Stretch)
	}
	if math.Abs(plan.StretchShift-(-1.0)) > 0.05 {
		t.Errorf("stretch shift = %v, want ~-1.0", plan.StretchShift)
	}

	corrected, meta, err := Apply(plan, tgts)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	verdict, after, err := Evaluate(ctx, analyzer, refs, corrected, before, meta, DefaultOptions())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if math.Abs(after.MedianOffsetSec) > 0.05 {
		t.Errorf("median offset after = %v, want ~0", after.MedianOffsetSec)
	}
	if verdict.Verdict == VerdictReject {
		t.Errorf("verdict = %s, want accept or review (%+v)", verdict.Verdict, verdict.Reasons)
	}
}

func TestEvaluateDowngradeOnAnchorLoss(t *testing.T) {
	ctx := context.Background()
	analyzer := newTestAnalyzer()
	refs := testsupport.DialogueCues(30, 10, 2)
	corrected := testsupport.Shift(refs, 0.1)

	// The corrected track aligns with 30 anchors, under 80% of the
	// claimed 40 before.
	before := &align.Analysis{
		AnchorCount:        40,
		MedianOffsetSec:    2.0,
		RobustDriftSpanSec: 2.0,
	}

	verdict, _, err := Evaluate(ctx, analyzer, refs, corrected, before, Meta{}, DefaultOptions())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if verdict.Verdict != VerdictReview {
		t.Fatalf("verdict = %s, want %s after anchor-loss downgrade", verdict.Verdict, VerdictReview)
	}
}

func TestEvaluateDowngradeOnExcessiveShift(t *testing.T) {
	ctx := context.Background()
	analyzer := newTestAnalyzer()
	refs := testsupport.DialogueCues(30, 10, 2)
	corrected := testsupport.Shift(refs, 0.05)

	before := &align.Analysis{
		AnchorCount:        30,
		MedianOffsetSec:    0,
		RobustDriftSpanSec: 2.0,
	}
	meta := Meta{MaxShiftSec: 5.0}

	verdict, _, err := Evaluate(ctx, analyzer, refs, corrected, before, meta, DefaultOptions())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if verdict.Verdict != VerdictReview {
		t.Fatalf("verdict = %s, want %s after shift downgrade", verdict.Verdict, VerdictReview)
	}
}

func TestEvaluateRejectWhenNothingToImprove(t *testing.T) {
	ctx := context.Background()
	analyzer := newTestAnalyzer()
	refs := testsupport.DialogueCues(30, 10, 2)

	before := &align.Analysis{AnchorCount: 30}

	verdict, _, err := Evaluate(ctx, analyzer, refs, refs, before, Meta{}, DefaultOptions())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if verdict.Verdict != VerdictReject || verdict.RatioDefined {
		t.Fatalf("verdict = %+v, want reject with undefined ratio", verdict)
	}
}

func TestEvaluateRejectWorseAfter(t *testing.T) {
	ctx := context.Background()
	analyzer := newTestAnalyzer()
	refs := testsupport.DialogueCues(30, 10, 2)

	// Alternate shifts leave a large residual spread after "correction".
	corrected := testsupport.Shift(refs, 0)
	for i := range corrected {
		if i%2 == 1 {
			corrected[i].Start += 2
			corrected[i].End += 2
		}
	}

	before := &align.Analysis{
		AnchorCount:        30,
		MedianOffsetSec:    1.0,
		RobustDriftSpanSec: 1.0,
	}

	verdict, _, err := Evaluate(ctx, analyzer, refs, corrected, before, Meta{}, DefaultOptions())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if verdict.Verdict != VerdictReject {
		t.Fatalf("verdict = %s, want %s when spread grows", verdict.Verdict, VerdictReject)
	}
}
