package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	// DataDir holds analysis artifacts, the results database, the CSV
	// export, and the batch progress file.
	DataDir string `toml:"data_dir"`
	// MediaDir is the library root scanned by the batch command.
	MediaDir string `toml:"media_dir"`
}

// Provider contains settings for the semantic similarity service.
type Provider struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	// AllowLexicalFallback permits alignment to continue with lexical-only
	// scoring when the provider is unreachable. The fallback is logged.
	AllowLexicalFallback bool `toml:"allow_lexical_fallback"`
}

// Align contains alignment and anchor-filter tunables.
type Align struct {
	GapPenalty    float64 `toml:"gap_penalty"`
	MinSimilarity float64 `toml:"min_similarity"`
	MinChars      int     `toml:"min_chars"`
	MaxLenRatio   float64 `toml:"max_len_ratio"`
	MaxDurRatio   float64 `toml:"max_dur_ratio"`
	// FillerWords extends the built-in filler/interjection vocabulary.
	FillerWords       []string `toml:"filler_words"`
	MinSegmentAnchors int      `toml:"min_segment_anchors"`
}

// Correct contains correction safety limits.
type Correct struct {
	MinAnchors         int     `toml:"min_anchors"`
	MaxCueShiftSeconds float64 `toml:"max_cue_shift_seconds"`
}

// Batch contains library scanning configuration.
type Batch struct {
	Workers int `toml:"workers"`
	// ReferenceSuffixes mark subtitle stems usable as trusted references,
	// e.g. "en", "eng". The newest matching file wins.
	ReferenceSuffixes []string `toml:"reference_suffixes"`
	// TargetSuffixes mark the possibly-mistimed subtitles to analyze.
	TargetSuffixes []string `toml:"target_suffixes"`
}

// Logging contains log output configuration.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config encapsulates all configuration values for SyncOrbit.
type Config struct {
	Paths    Paths    `toml:"paths"`
	Provider Provider `toml:"provider"`
	Align    Align    `toml:"align"`
	Correct  Correct  `toml:"correct"`
	Batch    Batch    `toml:"batch"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/syncorbit/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("syncorbit.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the data directory tree used by batch runs.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Paths.DataDir,
		filepath.Join(c.Paths.DataDir, "analysis"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// AnalysisDir returns the root directory for per-title analysis documents.
func (c *Config) AnalysisDir() string {
	return filepath.Join(c.Paths.DataDir, "analysis")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
