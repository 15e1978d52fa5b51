package batch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"syncorbit/internal/config"
	"syncorbit/internal/testsupport"
)

func writeSubtitle(t *testing.T, path string) {
	t.Helper()
	cues := testsupport.DialogueCues(3, 10, 2)
	testsupport.WriteSRT(t, filepath.Dir(path), filepath.Base(path), cues)
}

func titleDir(t *testing.T, cfg *config.Config, title string) string {
	t.Helper()
	dir := filepath.Join(cfg.Paths.MediaDir, title)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	return dir
}

func TestScanPairsBySuffix(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := titleDir(t, cfg, "Example (2020)")
	writeSubtitle(t, filepath.Join(dir, "Example.en.srt"))
	writeSubtitle(t, filepath.Join(dir, "Example.fi.srt"))

	scan, err := Scan(cfg)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(scan.Pairs) != 1 {
		t.Fatalf("pairs = %+v, want one", scan.Pairs)
	}
	pair := scan.Pairs[0]
	if pair.Title != "Example (2020)" || pair.RefKind != RefShipped {
		t.Fatalf("pair = %+v", pair)
	}
	if filepath.Base(pair.RefPath) != "Example.en.srt" || filepath.Base(pair.TargetPath) != "Example.fi.srt" {
		t.Fatalf("wrong files picked: %+v", pair)
	}
}

func TestScanPrefersNewestReference(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := titleDir(t, cfg, "Example")
	writeSubtitle(t, filepath.Join(dir, "Example.en.srt"))
	writeSubtitle(t, filepath.Join(dir, "Example.fi.srt"))

	whisper := filepath.Join(cfg.Paths.DataDir, "ref", "Example", "ref.srt")
	writeSubtitle(t, whisper)

	// Make the transcribed reference clearly newer than the shipped one.
	newer := time.Now().Add(time.Hour)
	if err := os.Chtimes(whisper, newer, newer); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	scan, err := Scan(cfg)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(scan.Pairs) != 1 {
		t.Fatalf("pairs = %+v, want one", scan.Pairs)
	}
	pair := scan.Pairs[0]
	if pair.RefKind != RefWhisper || !pair.HasWhisper {
		t.Fatalf("pair = %+v, want whisper reference", pair)
	}
}

func TestScanReportsMissing(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	noRef := titleDir(t, cfg, "No Reference")
	writeSubtitle(t, filepath.Join(noRef, "movie.fi.srt"))

	noTarget := titleDir(t, cfg, "No Target")
	writeSubtitle(t, filepath.Join(noTarget, "movie.en.srt"))

	scan, err := Scan(cfg)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(scan.Pairs) != 0 {
		t.Fatalf("pairs = %+v, want none", scan.Pairs)
	}
	if len(scan.MissingRef) != 1 || scan.MissingRef[0] != "No Reference" {
		t.Fatalf("missing refs = %v", scan.MissingRef)
	}
	if len(scan.MissingTarget) != 1 || scan.MissingTarget[0] != "No Target" {
		t.Fatalf("missing targets = %v", scan.MissingTarget)
	}
	if len(scan.Present) != 2 {
		t.Fatalf("present = %v, want both titles", scan.Present)
	}
}

func TestScanHonorsIgnoreList(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := titleDir(t, cfg, "Ignored Movie")
	writeSubtitle(t, filepath.Join(dir, "movie.en.srt"))
	writeSubtitle(t, filepath.Join(dir, "movie.fi.srt"))

	ignorePath := filepath.Join(cfg.Paths.DataDir, "ignore_list.json")
	if err := os.WriteFile(ignorePath, []byte(`["Ignored Movie"]`), 0o644); err != nil {
		t.Fatalf("write ignore list: %v", err)
	}

	scan, err := Scan(cfg)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(scan.Pairs) != 0 {
		t.Fatalf("pairs = %+v, want none for ignored title", scan.Pairs)
	}
	if len(scan.Ignored) != 1 || scan.Ignored[0] != "Ignored Movie" {
		t.Fatalf("ignored = %v", scan.Ignored)
	}
}
