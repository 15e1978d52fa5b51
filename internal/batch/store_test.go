package batch

import (
	"context"
	"testing"

	"syncorbit/internal/testsupport"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStore(testsupport.NewConfig(t))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreUpsertAndGet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	rec := Record{
		Title:         "Example Movie (2020)",
		AnchorCount:   42,
		AvgOffset:     2.3,
		DriftSpan:     0.1,
		Decision:      "needs_adjustment",
		BestReference: RefShipped,
		ReferencePath: "/media/example/example.en.srt",
		HasWhisper:    true,
		TargetMTime:   1700000000,
		LastAnalyzed:  1700000100,
	}
	if err := store.Upsert(ctx, rec); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := store.Get(ctx, rec.Title)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.AnchorCount != 42 || got.AvgOffset != 2.3 || got.Decision != "needs_adjustment" {
		t.Fatalf("row mismatch: %+v", got)
	}
	if got.State != StateOK {
		t.Fatalf("state = %q, want default %q", got.State, StateOK)
	}
	if !got.HasWhisper {
		t.Fatal("has_whisper lost in round trip")
	}

	// Second upsert replaces, not duplicates.
	rec.Decision = "synced"
	if err := store.Upsert(ctx, rec); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	records, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 || records[0].Decision != "synced" {
		t.Fatalf("expected one updated row, got %+v", records)
	}
}

func TestStorePruneRemovesMissingTitles(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, title := range []string{"keep", "drop one", "drop two"} {
		if err := store.Upsert(ctx, Record{Title: title}); err != nil {
			t.Fatalf("upsert %q: %v", title, err)
		}
	}

	removed, err := store.Prune(ctx, map[string]struct{}{"keep": {}})
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if removed != 2 {
		t.Fatalf("removed = %d, want 2", removed)
	}
	records, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 || records[0].Title != "keep" {
		t.Fatalf("surviving rows = %+v, want only keep", records)
	}
}

func TestStoreListOrdered(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, title := range []string{"zeta", "alpha", "mid"} {
		if err := store.Upsert(ctx, Record{Title: title}); err != nil {
			t.Fatalf("upsert %q: %v", title, err)
		}
	}
	records, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 3 || records[0].Title != "alpha" || records[2].Title != "zeta" {
		t.Fatalf("unexpected order: %+v", records)
	}
}
