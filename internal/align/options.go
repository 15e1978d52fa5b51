package align

import "strings"

// Options holds the alignment and anchor-filter tunables.
type Options struct {
	// GapPenalty is the cost of skipping a cue during alignment.
	GapPenalty float64
	// MinSimilarity is the score floor for anchor candidates.
	MinSimilarity float64
	// MinChars is the minimum text length for an anchor candidate.
	MinChars int
	// MaxLenRatio bounds the longer/shorter text length ratio.
	MaxLenRatio float64
	// MaxDurRatio bounds the longer/shorter cue duration ratio.
	MaxDurRatio float64
	// FillerWords extends the built-in filler vocabulary.
	FillerWords []string
	// MinSegmentAnchors is the minimum anchor count per drift segment.
	MinSegmentAnchors int
	// LexicalFallback permits lexical-only scoring when the provider
	// fails. The degradation is logged; off by default.
	LexicalFallback bool
}

// DefaultOptions returns the tuned production defaults.
func DefaultOptions() Options {
	return Options{
		GapPenalty:        0.15,
		MinSimilarity:     0.40,
		MinChars:          10,
		MaxLenRatio:       1.5,
		MaxDurRatio:       1.5,
		MinSegmentAnchors: 5,
	}
}

// Single-word interjections that match across any two subtitle tracks and
// corrupt timing when trusted as anchors.
var builtinFillers = []string{
	"yes", "yeah", "yep", "no", "ok", "okay",
	"oh", "ah", "mm", "hmm", "hey", "hi", "bye",
}

func (o Options) fillerSet() map[string]struct{} {
	set := make(map[string]struct{}, len(builtinFillers)+len(o.FillerWords))
	for _, w := range builtinFillers {
		set[w] = struct{}{}
	}
	for _, w := range o.FillerWords {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			set[w] = struct{}{}
		}
	}
	return set
}
