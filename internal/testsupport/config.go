package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"syncorbit/internal/config"
)

// NewConfig produces a config seeded with unique temp directories per
// test, on top of the production defaults.
func NewConfig(t testing.TB) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.MediaDir = filepath.Join(base, "media")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	if err := os.MkdirAll(cfg.Paths.MediaDir, 0o755); err != nil {
		t.Fatalf("create media dir: %v", err)
	}
	return &cfg
}
