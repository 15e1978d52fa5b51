package config

// Default returns the baseline configuration before any file overrides.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:  "~/.local/share/syncorbit",
			MediaDir: "",
		},
		Provider: Provider{
			BaseURL:              "http://127.0.0.1:8192",
			TimeoutSeconds:       120,
			AllowLexicalFallback: false,
		},
		Align: Align{
			GapPenalty:        0.15,
			MinSimilarity:     0.40,
			MinChars:          10,
			MaxLenRatio:       1.5,
			MaxDurRatio:       1.5,
			MinSegmentAnchors: 5,
		},
		Correct: Correct{
			MinAnchors:         20,
			MaxCueShiftSeconds: 1.0,
		},
		Batch: Batch{
			Workers:           2,
			ReferenceSuffixes: []string{"en", "eng"},
			TargetSuffixes:    []string{"fi", "fin"},
		},
		Logging: Logging{
			Level:  "info",
			Format: "console",
		},
	}
}
