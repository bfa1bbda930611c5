package history

import (
	"context"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "db", "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	first := Entry{
		VideoID: "aaa", URL: "https://youtu.be/aaa", Language: "en",
		Segments: 3, SignItems: 12, Words: 20, DurationSeconds: 9.5,
		StagesFromCache: []string{"download", "transcribe"}, Emotion: true,
		Model: "base", RequestID: "req-1", CreatedAt: base,
	}
	if _, err := store.Record(ctx, first); err != nil {
		t.Fatalf("Record: %v", err)
	}
	failed := Entry{VideoID: "bbb", URL: "u", Status: StatusFailed, ErrorMessage: "boom", CreatedAt: base.Add(time.Minute)}
	if _, err := store.Record(ctx, failed); err != nil {
		t.Fatalf("Record: %v", err)
	}

	recent, err := store.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 || recent[0].VideoID != "bbb" || !recent[0].Failed() {
		t.Fatalf("unexpected order %+v", recent)
	}
	got := recent[1]
	if got.Status != StatusCompleted || !got.Emotion || got.Language != "en" || got.Model != "base" {
		t.Fatalf("unexpected entry %+v", got)
	}
	if !slices.Equal(got.StagesFromCache, []string{"download", "transcribe"}) {
		t.Fatalf("unexpected stages %v", got.StagesFromCache)
	}
	if !got.CreatedAt.Equal(base) {
		t.Fatalf("unexpected created_at %v", got.CreatedAt)
	}

	limited, err := store.Recent(ctx, 1)
	if err != nil || len(limited) != 1 {
		t.Fatalf("expected one row, got %d %v", len(limited), err)
	}
}

func TestForVideoCountAndClear(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	for _, id := range []string{"x", "y", "x"} {
		if _, err := store.Record(ctx, Entry{VideoID: id, URL: "u"}); err != nil {
			t.Fatal(err)
		}
	}
	rows, err := store.ForVideo(ctx, "x")
	if err != nil || len(rows) != 2 {
		t.Fatalf("ForVideo = %d rows, %v", len(rows), err)
	}
	if rows[0].StagesFromCache != nil {
		t.Fatalf("expected no stages, got %v", rows[0].StagesFromCache)
	}
	if n, err := store.Count(ctx); err != nil || n != 3 {
		t.Fatalf("Count = %d, %v", n, err)
	}
	removed, err := store.Clear(ctx)
	if err != nil || removed != 3 {
		t.Fatalf("Clear = %d, %v", removed, err)
	}
	if n, _ := store.Count(ctx); n != 0 {
		t.Fatalf("expected empty table, got %d", n)
	}
}

func TestReopenKeepsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Record(context.Background(), Entry{VideoID: "v", URL: "u"}); err != nil {
		t.Fatal(err)
	}
	_ = store.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if n, err := reopened.Count(context.Background()); err != nil || n != 1 {
		t.Fatalf("Count after reopen = %d, %v", n, err)
	}
}

func TestRecordRequiresVideoID(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.Record(context.Background(), Entry{}); err == nil {
		t.Fatal("expected error")
	}
}
