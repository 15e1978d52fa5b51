// Package correct plans, applies, and grades timing corrections.
//
// The planner picks the least invasive correction strategy the anchor
// evidence supports: a single global offset, a linear stretch, or
// piecewise per-segment shifts. When no strategy is safe the result is
// whisper_required rather than a risky guess. After applying, the
// verdict evaluator re-runs the analysis pipeline in-process on the
// corrected output and grades the correction accept/review/reject.
package correct
