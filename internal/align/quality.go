package align

import "math"

// Decision grades how trustworthy the measured alignment is.
type Decision string

const (
	// DecisionSynced means the tracks agree within tight bounds.
	DecisionSynced Decision = "synced"
	// DecisionNeedsAdjustment means drift is measurable but correctable.
	DecisionNeedsAdjustment Decision = "needs_adjustment"
	// DecisionWhisperRequired means the alignment is unreliable and a
	// transcription-based reference should be produced instead.
	DecisionWhisperRequired Decision = "whisper_required"
)

// Classification boundaries, evaluated by priority.
const (
	minReliableAnchors = 10
	maxReliableSpan    = 3.5
	maxReliableOffset  = 4.0

	syncedMinAnchors = 20
	syncedMaxSpan    = 2.0
	syncedMaxOffset  = 1.0
)

// Classify grades alignment quality from the clean anchor count, the
// robust offset, and the robust drift span. All boundaries are inclusive
// on the passing side.
func Classify(anchorCount int, offset, driftSpan float64) Decision {
	if anchorCount < minReliableAnchors {
		return DecisionWhisperRequired
	}
	if driftSpan > maxReliableSpan {
		return DecisionWhisperRequired
	}
	if math.Abs(offset) > maxReliableOffset {
		return DecisionWhisperRequired
	}
	if anchorCount >= syncedMinAnchors && driftSpan <= syncedMaxSpan && math.Abs(offset) <= syncedMaxOffset {
		return DecisionSynced
	}
	return DecisionNeedsAdjustment
}
