package batch

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strconv"

	"syncorbit/internal/config"
	"syncorbit/internal/fileutil"
)

var csvHeader = []string{
	"title",
	"state",
	"anchor_count",
	"avg_offset",
	"drift_span",
	"decision",
	"best_reference",
	"reference_path",
	"has_whisper",
	"target_mtime",
	"last_analyzed",
	"ignored",
}

// ExportCSVPath is where the library summary lands, relative to the data
// directory.
func ExportCSVPath(cfg *config.Config) string {
	return filepath.Join(cfg.Paths.DataDir, "syncorbit_library_export.csv")
}

// ExportCSV rebuilds the library summary from the ledger. The file is
// regenerated whole each run rather than appended, so stale rows never
// linger.
func ExportCSV(cfg *config.Config, records []Record) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, rec := range records {
		row := []string{
			rec.Title,
			rec.State,
			strconv.Itoa(rec.AnchorCount),
			strconv.FormatFloat(rec.AvgOffset, 'f', 3, 64),
			strconv.FormatFloat(rec.DriftSpan, 'f', 3, 64),
			rec.Decision,
			rec.BestReference,
			rec.ReferencePath,
			strconv.FormatBool(rec.HasWhisper),
			strconv.FormatInt(rec.TargetMTime, 10),
			strconv.FormatInt(rec.LastAnalyzed, 10),
			strconv.FormatBool(rec.Ignored),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write csv row for %q: %w", rec.Title, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	if err := fileutil.WriteFileAtomic(ExportCSVPath(cfg), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write csv export: %w", err)
	}
	return nil
}
