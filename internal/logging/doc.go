// Package logging builds the process-wide slog logger.
//
// Two output formats are supported: a compact console format for
// interactive use and JSON for machine consumption. Batch workers attach
// a "pair" attribute so interleaved worker output stays attributable.
package logging
