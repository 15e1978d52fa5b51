// Package srt reads and writes SubRip subtitle files.
//
// Parsing is tolerant: malformed blocks are skipped, presentation markup
// is stripped, and multi-line cue text is joined with spaces. Cue indices
// are reassigned positionally so alignment never trusts the declared
// numbering.
package srt
