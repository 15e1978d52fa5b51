package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"syncorbit/internal/srt"
)

// DialogueCues builds n cues with distinct multi-word dialogue lines,
// spaced step seconds apart with the given duration. The texts pass the
// anchor filters (long enough, multiple tokens) and differ between cues
// so a TextMatchProvider only matches a cue against its own counterpart.
func DialogueCues(n int, step, duration float64) []srt.Cue {
	cues := make([]srt.Cue, n)
	for i := range cues {
		start := float64(i) * step
		cues[i] = srt.Cue{
			Index: i + 1,
			Start: start,
			End:   start + duration,
			Text:  fmt.Sprintf("scene marker n%d dialogue token n%d", i, i*7+3),
		}
	}
	return cues
}

// Shift returns a copy of cues with every timestamp moved by offset.
// Unlike a correction, timestamps are not clamped at zero.
func Shift(cues []srt.Cue, offset float64) []srt.Cue {
	out := append([]srt.Cue(nil), cues...)
	for i := range out {
		out[i].Start += offset
		out[i].End += offset
	}
	return out
}

// Stretch returns a copy of cues remapped through t' = t·scale + offset.
func Stretch(cues []srt.Cue, scale, offset float64) []srt.Cue {
	out := append([]srt.Cue(nil), cues...)
	for i := range out {
		out[i].Start = out[i].Start*scale + offset
		out[i].End = out[i].End*scale + offset
	}
	return out
}

// WriteSRT renders cues to an .srt file under dir and returns its path.
func WriteSRT(t testing.TB, dir, name string, cues []srt.Cue) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := srt.WriteFile(path, cues); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
