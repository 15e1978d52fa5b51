package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	var err error
	if c.Paths.DataDir, err = expandPath(strings.TrimSpace(c.Paths.DataDir)); err != nil {
		return err
	}
	if trimmed := strings.TrimSpace(c.Paths.MediaDir); trimmed != "" {
		if c.Paths.MediaDir, err = expandPath(trimmed); err != nil {
			return err
		}
	} else {
		c.Paths.MediaDir = ""
	}

	c.Provider.BaseURL = strings.TrimSpace(c.Provider.BaseURL)
	c.Logging.Level = strings.TrimSpace(c.Logging.Level)
	c.Logging.Format = strings.TrimSpace(c.Logging.Format)

	c.Batch.ReferenceSuffixes = normalizeSuffixes(c.Batch.ReferenceSuffixes)
	c.Batch.TargetSuffixes = normalizeSuffixes(c.Batch.TargetSuffixes)
	return nil
}

func normalizeSuffixes(values []string) []string {
	out := make([]string, 0, len(values))
	seen := map[string]struct{}{}
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(v, ".")))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Validate checks configuration invariants that would otherwise surface as
// confusing runtime failures deep in the pipeline.
func (c *Config) Validate() error {
	if c.Paths.DataDir == "" {
		return fmt.Errorf("config: paths.data_dir is required")
	}
	if c.Provider.BaseURL == "" && !c.Provider.AllowLexicalFallback {
		return fmt.Errorf("config: provider.base_url is required unless provider.allow_lexical_fallback is enabled")
	}
	if c.Provider.TimeoutSeconds < 0 {
		return fmt.Errorf("config: provider.timeout_seconds must not be negative")
	}
	if c.Align.GapPenalty < 0 {
		return fmt.Errorf("config: align.gap_penalty must not be negative")
	}
	if c.Align.MinSimilarity < 0 || c.Align.MinSimilarity > 1 {
		return fmt.Errorf("config: align.min_similarity must be within [0,1]")
	}
	if c.Align.MaxLenRatio < 1 {
		return fmt.Errorf("config: align.max_len_ratio must be at least 1")
	}
	if c.Align.MaxDurRatio < 1 {
		return fmt.Errorf("config: align.max_dur_ratio must be at least 1")
	}
	if c.Align.MinSegmentAnchors < 2 {
		return fmt.Errorf("config: align.min_segment_anchors must be at least 2")
	}
	if c.Correct.MinAnchors < 1 {
		return fmt.Errorf("config: correct.min_anchors must be at least 1")
	}
	if c.Correct.MaxCueShiftSeconds <= 0 {
		return fmt.Errorf("config: correct.max_cue_shift_seconds must be positive")
	}
	if c.Batch.Workers < 1 {
		return fmt.Errorf("config: batch.workers must be at least 1")
	}
	if len(c.Batch.TargetSuffixes) == 0 {
		return fmt.Errorf("config: batch.target_suffixes must not be empty")
	}
	return nil
}
