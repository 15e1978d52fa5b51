package batch

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"syncorbit/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// ledgerSchemaVersion is bumped on any schema change. The ledger is a
// rebuildable cache of the analysis artifacts, so a mismatch just means
// delete and rescan.
const ledgerSchemaVersion = 1

// ErrSchemaMismatch indicates the ledger was written by a different
// schema version.
var ErrSchemaMismatch = errors.New("ledger schema version mismatch")

// Record is one title's row in the results ledger.
type Record struct {
	Title         string  `json:"title"`
	State         string  `json:"state"`
	AnchorCount   int     `json:"anchor_count"`
	AvgOffset     float64 `json:"avg_offset"`
	DriftSpan     float64 `json:"drift_span"`
	Decision      string  `json:"decision"`
	BestReference string  `json:"best_reference"`
	ReferencePath string  `json:"reference_path"`
	HasWhisper    bool    `json:"has_whisper"`
	TargetMTime   int64   `json:"target_mtime"`
	LastAnalyzed  int64   `json:"last_analyzed"`
	Ignored       bool    `json:"ignored"`
}

// Title states beyond a normal analysis outcome.
const (
	StateOK               = "ok"
	StateIgnored          = "ignored"
	StateMissingSubtitles = "missing_subtitles"
	StateError            = "error"
)

// Store is the SQLite-backed results ledger.
type Store struct {
	db   *sql.DB
	path string
}

// OpenStore connects to the ledger database under the data directory,
// creating it and its schema on first use.
func OpenStore(cfg *config.Config) (*Store, error) {
	if err := os.MkdirAll(cfg.Paths.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure data dir: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.DataDir, "syncorbit.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open ledger db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != ledgerSchemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s and rescan)",
			ErrSchemaMismatch, version, ledgerSchemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", ledgerSchemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// Upsert inserts or replaces a title's row.
func (s *Store) Upsert(ctx context.Context, rec Record) error {
	if rec.State == "" {
		rec.State = StateOK
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO titles (
            title, state, anchor_count, avg_offset, drift_span, decision,
            best_reference, reference_path, has_whisper,
            target_mtime, last_analyzed, ignored
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(title) DO UPDATE SET
            state=excluded.state,
            anchor_count=excluded.anchor_count,
            avg_offset=excluded.avg_offset,
            drift_span=excluded.drift_span,
            decision=excluded.decision,
            best_reference=excluded.best_reference,
            reference_path=excluded.reference_path,
            has_whisper=excluded.has_whisper,
            target_mtime=excluded.target_mtime,
            last_analyzed=excluded.last_analyzed,
            ignored=excluded.ignored`,
		rec.Title,
		rec.State,
		rec.AnchorCount,
		rec.AvgOffset,
		rec.DriftSpan,
		rec.Decision,
		rec.BestReference,
		rec.ReferencePath,
		boolToInt(rec.HasWhisper),
		rec.TargetMTime,
		rec.LastAnalyzed,
		boolToInt(rec.Ignored),
	)
	if err != nil {
		return fmt.Errorf("upsert title %q: %w", rec.Title, err)
	}
	return nil
}

// Get fetches one title's row.
func (s *Store) Get(ctx context.Context, title string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT title, state, anchor_count, avg_offset, drift_span, decision,
                best_reference, reference_path, has_whisper,
                target_mtime, last_analyzed, ignored
         FROM titles WHERE title = ?`, title)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("title %q not found", title)
	}
	if err != nil {
		return nil, fmt.Errorf("get title %q: %w", title, err)
	}
	return rec, nil
}

// List returns every row ordered by title.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT title, state, anchor_count, avg_offset, drift_span, decision,
                best_reference, reference_path, has_whisper,
                target_mtime, last_analyzed, ignored
         FROM titles ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("list titles: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan title row: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate titles: %w", err)
	}
	return records, nil
}

// Prune deletes rows for titles no longer present in the library.
func (s *Store) Prune(ctx context.Context, present map[string]struct{}) (int, error) {
	records, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, rec := range records {
		if _, ok := present[rec.Title]; ok {
			continue
		}
		if _, err := s.db.ExecContext(ctx, "DELETE FROM titles WHERE title = ?", rec.Title); err != nil {
			return removed, fmt.Errorf("delete title %q: %w", rec.Title, err)
		}
		removed++
	}
	return removed, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var (
		rec          Record
		anchorCount  sql.NullInt64
		avgOffset    sql.NullFloat64
		driftSpan    sql.NullFloat64
		decision     sql.NullString
		bestRef      sql.NullString
		refPath      sql.NullString
		hasWhisper   int
		targetMTime  sql.NullInt64
		lastAnalyzed sql.NullInt64
		ignored      int
	)
	if err := row.Scan(
		&rec.Title, &rec.State, &anchorCount, &avgOffset, &driftSpan, &decision,
		&bestRef, &refPath, &hasWhisper, &targetMTime, &lastAnalyzed, &ignored,
	); err != nil {
		return nil, err
	}
	rec.AnchorCount = int(anchorCount.Int64)
	rec.AvgOffset = avgOffset.Float64
	rec.DriftSpan = driftSpan.Float64
	rec.Decision = decision.String
	rec.BestReference = bestRef.String
	rec.ReferencePath = refPath.String
	rec.HasWhisper = hasWhisper != 0
	rec.TargetMTime = targetMTime.Int64
	rec.LastAnalyzed = lastAnalyzed.Int64
	rec.Ignored = ignored != 0
	return &rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
