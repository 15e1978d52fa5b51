package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"syncorbit/internal/config"
)

// Reference kinds, ordered by provenance quality. The scanner still
// picks by recency; the kind is recorded for display.
const (
	RefWhisper = "whisper"
	RefResync  = "ffsync"
	RefShipped = "en"
)

// Pair is one title's chosen reference/target subtitle pair.
type Pair struct {
	Title       string
	RefPath     string
	RefKind     string
	RefMTime    int64
	TargetPath  string
	TargetMTime int64
	HasWhisper  bool
}

// ScanResult is the full library inventory for one run.
type ScanResult struct {
	Pairs   []Pair
	Ignored []string
	// MissingTarget lists titles with a reference but no target subtitle.
	MissingTarget []string
	// MissingRef lists titles with no usable reference.
	MissingRef []string
	// Present holds every title directory seen, for ledger pruning.
	Present map[string]struct{}
}

// Scan inventories the media library. Each immediate subdirectory of the
// media root is one title; within it the newest reference candidate wins
// (a transcribed reference, a resynced reference, or a shipped
// reference-language subtitle) and the first target-language subtitle is
// the target.
func Scan(cfg *config.Config) (*ScanResult, error) {
	entries, err := os.ReadDir(cfg.Paths.MediaDir)
	if err != nil {
		return nil, fmt.Errorf("read media dir: %w", err)
	}

	ignored, err := loadIgnoreList(filepath.Join(cfg.Paths.DataDir, "ignore_list.json"))
	if err != nil {
		return nil, err
	}

	result := &ScanResult{Present: make(map[string]struct{})}
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		title := entry.Name()
		result.Present[title] = struct{}{}

		if _, skip := ignored[title]; skip {
			result.Ignored = append(result.Ignored, title)
			continue
		}

		titleDir := filepath.Join(cfg.Paths.MediaDir, title)
		ref, kind, refMTime, hasWhisper := pickReference(cfg, titleDir, title)
		if ref == "" {
			result.MissingRef = append(result.MissingRef, title)
			continue
		}

		target, targetMTime := pickTarget(titleDir, cfg.Batch.TargetSuffixes)
		if target == "" {
			result.MissingTarget = append(result.MissingTarget, title)
			continue
		}

		result.Pairs = append(result.Pairs, Pair{
			Title:       title,
			RefPath:     ref,
			RefKind:     kind,
			RefMTime:    refMTime,
			TargetPath:  target,
			TargetMTime: targetMTime,
			HasWhisper:  hasWhisper,
		})
	}

	sort.Slice(result.Pairs, func(i, j int) bool { return result.Pairs[i].Title < result.Pairs[j].Title })
	return result, nil
}

type refCandidate struct {
	path  string
	kind  string
	mtime int64
}

// pickReference gathers every reference candidate for a title and keeps
// the newest by modification time.
func pickReference(cfg *config.Config, titleDir, title string) (path, kind string, mtime int64, hasWhisper bool) {
	var candidates []refCandidate

	whisperRef := filepath.Join(cfg.Paths.DataDir, "ref", title, "ref.srt")
	if info, err := os.Stat(whisperRef); err == nil {
		hasWhisper = true
		candidates = append(candidates, refCandidate{whisperRef, RefWhisper, info.ModTime().Unix()})
	}

	resyncDir := filepath.Join(cfg.Paths.DataDir, "resync", title)
	if entries, err := os.ReadDir(resyncDir); err == nil {
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".synced.srt") {
				continue
			}
			p := filepath.Join(resyncDir, entry.Name())
			if info, err := os.Stat(p); err == nil {
				candidates = append(candidates, refCandidate{p, RefResync, info.ModTime().Unix()})
			}
		}
	}

	if p, ts := firstSuffixMatch(titleDir, cfg.Batch.ReferenceSuffixes); p != "" {
		candidates = append(candidates, refCandidate{p, RefShipped, ts})
	}

	best := refCandidate{}
	for _, c := range candidates {
		if c.mtime > best.mtime || best.path == "" {
			best = c
		}
	}
	return best.path, best.kind, best.mtime, hasWhisper
}

func pickTarget(titleDir string, suffixes []string) (string, int64) {
	return firstSuffixMatch(titleDir, suffixes)
}

// firstSuffixMatch returns the first .srt file in dir whose stem ends in
// one of the language suffixes (case-insensitive), with its mtime.
func firstSuffixMatch(dir string, suffixes []string) (string, int64) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", 0
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		if !strings.HasSuffix(strings.ToLower(name), ".srt") {
			continue
		}
		stem := strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name)))
		for _, suffix := range suffixes {
			if strings.HasSuffix(stem, "."+strings.ToLower(suffix)) || stem == strings.ToLower(suffix) {
				p := filepath.Join(dir, name)
				var ts int64
				if info, err := os.Stat(p); err == nil {
					ts = info.ModTime().Unix()
				}
				return p, ts
			}
		}
	}
	return "", 0
}

// loadIgnoreList reads the optional ignore file, a JSON array of title
// names. A missing file means nothing is ignored.
func loadIgnoreList(path string) (map[string]struct{}, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ignore list: %w", err)
	}
	var titles []string
	if err := json.Unmarshal(data, &titles); err != nil {
		return nil, fmt.Errorf("parse ignore list: %w", err)
	}
	set := make(map[string]struct{}, len(titles))
	for _, title := range titles {
		set[title] = struct{}{}
	}
	return set, nil
}
