package align

import "math"

// jumpFloor is the smallest delta jump that can open a new segment even
// when the anchor set is extremely uniform.
const jumpFloor = 0.15

// Segment is a contiguous reference-time window whose anchor deltas are
// statistically homogeneous. Segments never overlap and are ordered by
// TStart.
type Segment struct {
	TStart      float64 `json:"t_start"`
	TEnd        float64 `json:"t_end"`
	MedianDelta float64 `json:"median_delta"`
	MAD         float64 `json:"mad"`
	Count       int     `json:"count"`
}

// Segmentize detects piecewise-constant drift regions. Anchors must be
// sorted by reference time. A new segment opens when the delta jump
// between consecutive anchors exceeds max(0.15, 2·MAD) of the global
// delta spread and the open segment already holds minAnchors; the final
// segment closes only if it too meets the minimum.
//
// Fewer than 2 resulting segments means segmentation is inapplicable and
// nil is returned.
func Segmentize(anchors []Anchor, minAnchors int) []Segment {
	if len(anchors) < 2*minAnchors {
		return nil
	}

	deltas := make([]float64, len(anchors))
	for i, anchor := range anchors {
		deltas[i] = anchor.Delta
	}
	globalMAD := madAbout(deltas, median(deltas))
	threshold := math.Max(jumpFloor, 2*globalMAD)

	var segments []Segment
	groupStart := 0
	for i := 1; i < len(anchors); i++ {
		jump := math.Abs(anchors[i].Delta - anchors[i-1].Delta)
		if jump > threshold && i-groupStart >= minAnchors {
			segments = append(segments, segmentFrom(anchors[groupStart:i]))
			groupStart = i
		}
	}
	if len(anchors)-groupStart >= minAnchors {
		segments = append(segments, segmentFrom(anchors[groupStart:]))
	}

	if len(segments) < 2 {
		return nil
	}
	return segments
}

func segmentFrom(group []Anchor) Segment {
	deltas := make([]float64, len(group))
	for i, anchor := range group {
		deltas[i] = anchor.Delta
	}
	med := median(deltas)
	return Segment{
		TStart:      group[0].RefT,
		TEnd:        group[len(group)-1].RefT,
		MedianDelta: med,
		MAD:         madAbout(deltas, med),
		Count:       len(group),
	}
}
