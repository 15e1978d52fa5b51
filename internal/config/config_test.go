package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if cfg.Align.GapPenalty != 0.15 {
		t.Errorf("gap_penalty default = %v, want 0.15", cfg.Align.GapPenalty)
	}
	if cfg.Correct.MinAnchors != 20 {
		t.Errorf("min_anchors default = %d, want 20", cfg.Correct.MinAnchors)
	}
	if cfg.Batch.Workers != 2 {
		t.Errorf("workers default = %d, want 2", cfg.Batch.Workers)
	}
}

func TestLoadOverridesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
data_dir = "` + dir + `/data"

[provider]
base_url = " http://provider:9000 "

[align]
gap_penalty = 0.2

[batch]
reference_suffixes = [".EN", "en", "eng"]
target_suffixes = ["fi"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolved=%q exists=%v", resolved, exists)
	}
	if cfg.Align.GapPenalty != 0.2 {
		t.Errorf("gap_penalty = %v, want 0.2", cfg.Align.GapPenalty)
	}
	if cfg.Provider.BaseURL != "http://provider:9000" {
		t.Errorf("base_url not trimmed: %q", cfg.Provider.BaseURL)
	}
	if got := cfg.Batch.ReferenceSuffixes; len(got) != 2 || got[0] != "en" || got[1] != "eng" {
		t.Errorf("reference suffixes not deduplicated/lowercased: %v", got)
	}
	if !strings.HasSuffix(cfg.Paths.DataDir, "/data") {
		t.Errorf("data_dir not expanded: %q", cfg.Paths.DataDir)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative gap penalty", func(c *Config) { c.Align.GapPenalty = -1 }},
		{"similarity above one", func(c *Config) { c.Align.MinSimilarity = 1.5 }},
		{"len ratio below one", func(c *Config) { c.Align.MaxLenRatio = 0.5 }},
		{"zero workers", func(c *Config) { c.Batch.Workers = 0 }},
		{"no target suffixes", func(c *Config) { c.Batch.TargetSuffixes = nil }},
		{"tiny segments", func(c *Config) { c.Align.MinSegmentAnchors = 1 }},
		{"no provider no fallback", func(c *Config) {
			c.Provider.BaseURL = ""
			c.Provider.AllowLexicalFallback = false
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			if err := cfg.normalize(); err != nil {
				t.Fatalf("normalize: %v", err)
			}
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}

func TestValidateAllowsLexicalOnly(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	cfg.Provider.BaseURL = ""
	cfg.Provider.AllowLexicalFallback = true
	if err := cfg.Validate(); err != nil {
		t.Errorf("lexical-only config rejected: %v", err)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[provider]") {
		t.Errorf("sample missing provider section")
	}
}
