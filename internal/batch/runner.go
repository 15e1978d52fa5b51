package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"syncorbit/internal/align"
	"syncorbit/internal/config"
	"syncorbit/internal/logging"
	"syncorbit/internal/srt"
)

// AnalysisFileName is the per-title analysis artifact name.
const AnalysisFileName = "analysis.syncinfo"

// Runner executes a full library scan-and-analyze pass.
type Runner struct {
	cfg      *config.Config
	analyzer *align.Analyzer
	store    *Store
	logger   *slog.Logger
}

// NewRunner wires a batch runner. The analyzer is shared across workers,
// so its provider must be safe for concurrent use.
func NewRunner(cfg *config.Config, analyzer *align.Analyzer, store *Store, logger *slog.Logger) *Runner {
	return &Runner{
		cfg:      cfg,
		analyzer: analyzer,
		store:    store,
		logger:   logging.OrNop(logger),
	}
}

// RunSummary aggregates the outcome of one batch run.
type RunSummary struct {
	RunID    string `json:"run_id"`
	Total    int    `json:"total"`
	Analyzed int    `json:"analyzed"`
	Reused   int    `json:"reused"`
	Failed   int    `json:"failed"`
	Ignored  int    `json:"ignored"`
	Missing  int    `json:"missing"`
	Pruned   int    `json:"pruned"`
}

type pairResult struct {
	pair   Pair
	record Record
	reused bool
	err    error
}

// Run scans the library and analyzes every pair on a bounded worker
// pool. Ledger writes and progress updates happen on the collector side
// only, so concurrent workers never interleave records. A second
// concurrent run is refused via a lock file; cancellation takes effect
// between pairs.
func (r *Runner) Run(ctx context.Context) (*RunSummary, error) {
	lock := flock.New(filepath.Join(r.cfg.Paths.DataDir, "batch.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire batch lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("another batch run is already active")
	}
	defer func() { _ = lock.Unlock() }()

	summary := &RunSummary{RunID: uuid.NewString()}
	r.logger.Info("batch run starting", "run_id", summary.RunID, "media_dir", r.cfg.Paths.MediaDir)

	scan, err := Scan(r.cfg)
	if err != nil {
		return nil, err
	}
	summary.Total = len(scan.Pairs)
	summary.Ignored = len(scan.Ignored)
	summary.Missing = len(scan.MissingRef) + len(scan.MissingTarget)

	pruned, err := r.store.Prune(ctx, scan.Present)
	if err != nil {
		return nil, err
	}
	summary.Pruned = pruned

	if err := r.recordNonPairs(ctx, scan); err != nil {
		return nil, err
	}

	if err := writeProgress(r.cfg, Progress{RunID: summary.RunID, CurrentTitle: "starting", Total: summary.Total}); err != nil {
		r.logger.Warn("progress write failed", "error", err)
	}

	workers := r.cfg.Batch.Workers
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan Pair)
	results := make(chan pairResult)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for pair := range jobs {
				record, reused, err := r.processPair(ctx, pair)
				results <- pairResult{pair: pair, record: record, reused: reused, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, pair := range scan.Pairs {
			select {
			case jobs <- pair:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	// Single collector: the ledger and progress file have exactly one
	// writer for the whole run.
	done := 0
	for result := range results {
		done++
		switch {
		case result.err != nil:
			summary.Failed++
			r.logger.Error("pair failed",
				"title", result.pair.Title,
				"error", result.err,
			)
		case result.reused:
			summary.Reused++
		default:
			summary.Analyzed++
			r.logger.Info("pair analyzed",
				"title", result.pair.Title,
				"decision", result.record.Decision,
				"anchors", result.record.AnchorCount,
			)
		}

		if err := r.store.Upsert(ctx, result.record); err != nil {
			return summary, err
		}
		if err := writeProgress(r.cfg, Progress{
			RunID:        summary.RunID,
			CurrentTitle: result.pair.Title,
			Index:        done,
			Total:        summary.Total,
		}); err != nil {
			r.logger.Warn("progress write failed", "error", err)
		}
	}

	if err := ctx.Err(); err != nil {
		return summary, err
	}

	records, err := r.store.List(ctx)
	if err != nil {
		return summary, err
	}
	if err := ExportCSV(r.cfg, records); err != nil {
		return summary, err
	}
	if err := writeProgress(r.cfg, Progress{RunID: summary.RunID, CurrentTitle: "done", Index: done, Total: summary.Total}); err != nil {
		r.logger.Warn("progress write failed", "error", err)
	}

	r.logger.Info("batch run finished",
		"run_id", summary.RunID,
		"analyzed", summary.Analyzed,
		"reused", summary.Reused,
		"failed", summary.Failed,
		"pruned", summary.Pruned,
	)
	return summary, nil
}

// recordNonPairs writes ledger rows for titles that produce no
// analyzable pair, so the export still accounts for them.
func (r *Runner) recordNonPairs(ctx context.Context, scan *ScanResult) error {
	now := time.Now().Unix()
	for _, title := range scan.Ignored {
		if err := r.store.Upsert(ctx, Record{Title: title, State: StateIgnored, Ignored: true, LastAnalyzed: now}); err != nil {
			return err
		}
	}
	for _, title := range scan.MissingRef {
		if err := r.store.Upsert(ctx, Record{Title: title, State: StateMissingSubtitles, LastAnalyzed: now}); err != nil {
			return err
		}
	}
	for _, title := range scan.MissingTarget {
		if err := r.store.Upsert(ctx, Record{Title: title, State: StateMissingSubtitles, LastAnalyzed: now}); err != nil {
			return err
		}
	}
	return nil
}

// AnalysisPath returns the artifact location for a title.
func AnalysisPath(cfg *config.Config, title string) string {
	return filepath.Join(cfg.AnalysisDir(), title, AnalysisFileName)
}

// processPair loads a fresh-enough analysis artifact or re-analyzes the
// pair, then shapes the ledger record. Artifact writes are atomic, so a
// cancelled pair leaves either the old document or the new one.
func (r *Runner) processPair(ctx context.Context, pair Pair) (Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return errorRecord(pair), false, err
	}

	analysisPath := AnalysisPath(r.cfg, pair.Title)
	if analysis, ok := r.reusableAnalysis(analysisPath, pair); ok {
		return recordFrom(pair, analysis), true, nil
	}

	refCues, err := srt.ParseFile(pair.RefPath)
	if err != nil {
		return errorRecord(pair), false, fmt.Errorf("parse reference: %w", err)
	}
	tgtCues, err := srt.ParseFile(pair.TargetPath)
	if err != nil {
		return errorRecord(pair), false, fmt.Errorf("parse target: %w", err)
	}

	analysis, err := r.analyzer.Analyze(ctx, refCues, tgtCues)
	if err != nil {
		return errorRecord(pair), false, err
	}
	analysis.RefPath = pair.RefPath
	analysis.TargetPath = pair.TargetPath

	if err := os.MkdirAll(filepath.Dir(analysisPath), 0o755); err != nil {
		return errorRecord(pair), false, fmt.Errorf("ensure analysis dir: %w", err)
	}
	if err := align.SaveAnalysis(analysisPath, analysis); err != nil {
		return errorRecord(pair), false, err
	}

	return recordFrom(pair, analysis), false, nil
}

// reusableAnalysis loads the existing artifact when it is newer than
// both inputs. Unreadable artifacts trigger a re-analysis instead of
// failing the pair.
func (r *Runner) reusableAnalysis(path string, pair Pair) (*align.Analysis, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, false
	}
	artifactMTime := info.ModTime().Unix()
	if pair.RefMTime > artifactMTime || pair.TargetMTime > artifactMTime {
		return nil, false
	}
	analysis, err := align.LoadAnalysis(path)
	if err != nil {
		r.logger.Warn("stale analysis unreadable, re-analyzing",
			"title", pair.Title,
			"error", err,
		)
		return nil, false
	}
	return analysis, true
}

func recordFrom(pair Pair, analysis *align.Analysis) Record {
	return Record{
		Title:         pair.Title,
		State:         StateOK,
		AnchorCount:   analysis.AnchorCount,
		AvgOffset:     analysis.MedianOffsetSec,
		DriftSpan:     analysis.RobustDriftSpanSec,
		Decision:      string(analysis.Decision),
		BestReference: pair.RefKind,
		ReferencePath: pair.RefPath,
		HasWhisper:    pair.HasWhisper,
		TargetMTime:   pair.TargetMTime,
		LastAnalyzed:  time.Now().Unix(),
	}
}

func errorRecord(pair Pair) Record {
	return Record{
		Title:         pair.Title,
		State:         StateError,
		BestReference: pair.RefKind,
		ReferencePath: pair.RefPath,
		TargetMTime:   pair.TargetMTime,
		HasWhisper:    pair.HasWhisper,
		LastAnalyzed:  time.Now().Unix(),
	}
}
