package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"syncorbit/internal/align"
	"syncorbit/internal/config"
	"syncorbit/internal/correct"
	"syncorbit/internal/logging"
	"syncorbit/internal/services/embedder"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// newLogger builds the command logger on stderr so stdout stays clean
// for results and tables.
func (c *commandContext) newLogger(cfg *config.Config) (*slog.Logger, error) {
	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Writer: os.Stderr,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}

// newAnalyzer wires the similarity provider and alignment tunables from
// configuration.
func (c *commandContext) newAnalyzer(cfg *config.Config, logger *slog.Logger) *align.Analyzer {
	provider := embedder.NewClient(embedder.Config{
		BaseURL:        cfg.Provider.BaseURL,
		TimeoutSeconds: cfg.Provider.TimeoutSeconds,
	})
	return align.NewAnalyzer(provider, alignOptions(cfg), logger)
}

func alignOptions(cfg *config.Config) align.Options {
	opts := align.DefaultOptions()
	opts.GapPenalty = cfg.Align.GapPenalty
	opts.MinSimilarity = cfg.Align.MinSimilarity
	opts.MinChars = cfg.Align.MinChars
	opts.MaxLenRatio = cfg.Align.MaxLenRatio
	opts.MaxDurRatio = cfg.Align.MaxDurRatio
	opts.FillerWords = cfg.Align.FillerWords
	opts.MinSegmentAnchors = cfg.Align.MinSegmentAnchors
	opts.LexicalFallback = cfg.Provider.AllowLexicalFallback
	return opts
}

func correctOptions(cfg *config.Config) correct.Options {
	return correct.Options{
		MinAnchors:         cfg.Correct.MinAnchors,
		MaxCueShiftSeconds: cfg.Correct.MaxCueShiftSeconds,
	}
}
