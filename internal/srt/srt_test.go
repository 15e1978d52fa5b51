package srt

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	content := `1
00:00:01,000 --> 00:00:03,500
<i>Hello there.</i>

2
00:00:05,250 --> 00:00:07,000
Second line
continues here

3
00:00:09,000 --> 00:00:08,000
Backwards timing.
`
	cues, err := Parse(strings.NewReader(content))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(cues) != 3 {
		t.Fatalf("expected 3 cues, got %d", len(cues))
	}

	if cues[0].Text != "Hello there." {
		t.Errorf("markup not stripped: %q", cues[0].Text)
	}
	if math.Abs(cues[0].Start-1.0) > 1e-9 || math.Abs(cues[0].End-3.5) > 1e-9 {
		t.Errorf("cue 0 timing = %v..%v", cues[0].Start, cues[0].End)
	}
	if cues[1].Text != "Second line continues here" {
		t.Errorf("multi-line text not joined: %q", cues[1].Text)
	}
	if cues[0].Index != 0 || cues[1].Index != 1 {
		t.Errorf("indices not positional: %d, %d", cues[0].Index, cues[1].Index)
	}
	// End before start clamps to start.
	if cues[2].End != cues[2].Start {
		t.Errorf("backwards cue not clamped: %v..%v", cues[2].Start, cues[2].End)
	}
}

func TestParseSkipsMalformedBlocks(t *testing.T) {
	content := `garbage block
without timing

1
00:00:01,000 --> 00:00:02,000
Valid.

2
not a --> timecode
Broken.
`
	cues, err := Parse(strings.NewReader(content))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(cues) != 1 || cues[0].Text != "Valid." {
		t.Fatalf("expected exactly the valid cue, got %+v", cues)
	}
}

func TestParseEmptyInput(t *testing.T) {
	cues, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(cues) != 0 {
		t.Errorf("expected no cues, got %d", len(cues))
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"00:05:46,345", 346.345, true},
		{"01:00:00,000", 3600, true},
		{"00:00:00.500", 0.5, true},
		{"nonsense", 0, false},
	}
	for _, tt := range tests {
		got, err := ParseTimestamp(tt.input)
		if tt.ok != (err == nil) {
			t.Errorf("ParseTimestamp(%q) err = %v", tt.input, err)
			continue
		}
		if tt.ok && math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		input float64
		want  string
	}{
		{346.345, "00:05:46,345"},
		{0, "00:00:00,000"},
		{-3.2, "00:00:00,000"},
		{3661.5, "01:01:01,500"},
	}
	for _, tt := range tests {
		if got := FormatTimestamp(tt.input); got != tt.want {
			t.Errorf("FormatTimestamp(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestWriteRoundTrip(t *testing.T) {
	cues := []Cue{
		{Index: 0, Start: 1.0, End: 2.5, Text: "First."},
		{Index: 1, Start: 4.0, End: 6.0, Text: "Second."},
	}
	path := filepath.Join(t.TempDir(), "out.srt")
	if err := WriteFile(path, cues); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.HasPrefix(string(data), "1\n00:00:01,000 --> 00:00:02,500\nFirst.\n") {
		t.Errorf("unexpected output:\n%s", data)
	}

	parsed, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(parsed) != 2 {
		t.Fatalf("round trip lost cues: %d", len(parsed))
	}
	if parsed[1].Text != "Second." || math.Abs(parsed[1].Start-4.0) > 1e-9 {
		t.Errorf("round trip cue = %+v", parsed[1])
	}
}

func TestWriteClampsNegativeTimes(t *testing.T) {
	var sb strings.Builder
	if err := Write(&sb, []Cue{{Start: -1.5, End: 0.5, Text: "Early."}}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(sb.String(), "00:00:00,000 --> 00:00:00,500") {
		t.Errorf("negative start not clamped:\n%s", sb.String())
	}
}
