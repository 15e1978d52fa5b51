package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"syncorbit/internal/config"
	"syncorbit/internal/fileutil"
)

// Progress is the live status of a batch run, written atomically so a
// concurrent reader never sees a torn document.
type Progress struct {
	RunID        string `json:"run_id"`
	CurrentTitle string `json:"current_title"`
	Index        int    `json:"index"`
	Total        int    `json:"total"`
	UpdatedAt    string `json:"updated_at"`
}

func progressPath(cfg *config.Config) string {
	return filepath.Join(cfg.Paths.DataDir, "batch_progress.json")
}

// ReadProgress loads the last written progress document. A missing file
// is returned as-is so callers can distinguish "never ran" from a parse
// failure.
func ReadProgress(cfg *config.Config) (*Progress, error) {
	data, err := os.ReadFile(progressPath(cfg))
	if err != nil {
		return nil, err
	}
	var p Progress
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse progress: %w", err)
	}
	return &p, nil
}

func writeProgress(cfg *config.Config, p Progress) error {
	p.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}
	if err := fileutil.WriteFileAtomic(progressPath(cfg), data, 0o644); err != nil {
		return fmt.Errorf("write progress: %w", err)
	}
	return nil
}
