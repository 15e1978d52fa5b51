package srt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Cue is a single timed text entry. Start and End are seconds from the
// beginning of the track; End is never before Start. Cues are immutable
// once parsed.
type Cue struct {
	Index int
	Start float64
	End   float64
	Text  string
}

// Duration returns the cue's display duration in seconds.
func (c Cue) Duration() float64 {
	return c.End - c.Start
}

var (
	timecodeRe = regexp.MustCompile(`(\d+):(\d+):(\d+)[,.](\d+)`)
	markupRe   = regexp.MustCompile(`<[^>]*>|\{[^}]*\}`)
)

// ParseFile reads an SRT file and returns its cues in start-time order.
func ParseFile(path string) ([]Cue, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open srt: %w", err)
	}
	defer file.Close()
	cues, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cues, nil
}

// Parse reads SRT content and returns its cues. Cue indices are assigned
// sequentially from zero; the file's own numbering is ignored.
func Parse(r io.Reader) ([]Cue, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var cues []Cue
	var block []string
	flush := func() {
		if cue, ok := cueFromBlock(block, len(cues)); ok {
			cues = append(cues, cue)
		}
		block = block[:0]
	}

	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			line = strings.TrimPrefix(line, "\ufeff")
			first = false
		}
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		block = append(block, strings.TrimSpace(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read srt: %w", err)
	}
	flush()

	return cues, nil
}

// cueFromBlock interprets one blank-line-separated block. The timing line
// may appear first or after an index line; remaining lines are cue text.
func cueFromBlock(block []string, nextIndex int) (Cue, bool) {
	if len(block) < 2 {
		return Cue{}, false
	}

	timingLine := -1
	for i, line := range block {
		if strings.Contains(line, "-->") {
			timingLine = i
			break
		}
	}
	if timingLine < 0 || timingLine > 1 {
		return Cue{}, false
	}

	parts := strings.SplitN(block[timingLine], "-->", 2)
	if len(parts) != 2 {
		return Cue{}, false
	}
	start, err := ParseTimestamp(parts[0])
	if err != nil {
		return Cue{}, false
	}
	end, err := ParseTimestamp(parts[1])
	if err != nil {
		return Cue{}, false
	}
	if end < start {
		end = start
	}

	var textParts []string
	for _, line := range block[timingLine+1:] {
		clean := strings.TrimSpace(markupRe.ReplaceAllString(line, ""))
		if clean != "" {
			textParts = append(textParts, clean)
		}
	}
	if len(textParts) == 0 {
		return Cue{}, false
	}

	return Cue{
		Index: nextIndex,
		Start: start,
		End:   end,
		Text:  strings.Join(textParts, " "),
	}, true
}

// ParseTimestamp converts an "HH:MM:SS,mmm" timecode to seconds. A period
// separator for milliseconds is tolerated.
func ParseTimestamp(value string) (float64, error) {
	m := timecodeRe.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return 0, fmt.Errorf("invalid timestamp %q", strings.TrimSpace(value))
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	seconds, _ := strconv.Atoi(m[3])
	millis, _ := strconv.Atoi(m[4])
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000, nil
}

// FormatTimestamp renders seconds as an "HH:MM:SS,mmm" timecode.
// Negative values clamp to zero.
func FormatTimestamp(t float64) string {
	if t < 0 {
		t = 0
	}
	totalMillis := int64(t*1000 + 0.5)
	millis := totalMillis % 1000
	totalSeconds := totalMillis / 1000
	seconds := totalSeconds % 60
	minutes := (totalSeconds / 60) % 60
	hours := totalSeconds / 3600
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}

// Write renders cues as SRT, renumbering from 1.
func Write(w io.Writer, cues []Cue) error {
	var sb strings.Builder
	for i, cue := range cues {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(strconv.Itoa(i + 1))
		sb.WriteString("\n")
		sb.WriteString(FormatTimestamp(cue.Start))
		sb.WriteString(" --> ")
		sb.WriteString(FormatTimestamp(cue.End))
		sb.WriteString("\n")
		sb.WriteString(cue.Text)
		sb.WriteString("\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteFile writes cues to path as SRT.
func WriteFile(path string, cues []Cue) error {
	var sb strings.Builder
	if err := Write(&sb, cues); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write srt: %w", err)
	}
	return nil
}
