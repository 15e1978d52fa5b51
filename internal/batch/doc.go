// Package batch orchestrates library-wide analysis runs.
//
// A run scans the media library for reference/target subtitle pairs,
// analyzes each pair on a bounded worker pool, and records the outcome
// in a SQLite ledger plus a freshly rebuilt CSV export. Pairs are
// independent: one failure never stops the run, and cancellation is
// safe between pairs because every artifact is written atomically.
package batch
