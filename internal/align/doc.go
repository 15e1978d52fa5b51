// Package align estimates timing drift between two subtitle cue tracks.
//
// The pipeline builds a hybrid semantic+lexical similarity matrix, runs a
// global sequence alignment over it, filters the aligned pairs into
// trusted timing anchors, and derives global, robust, and piecewise drift
// statistics. The result is a single Analysis document that downstream
// correction planning consumes. Every step is deterministic: identical
// cues and similarity scores always produce identical output.
package align
