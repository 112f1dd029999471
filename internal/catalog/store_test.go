package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "state", "catalog.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	clock := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	store.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return store
}

func TestRecordSourceUpserts(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.RecordSource(ctx, Source{Hash: "abc", Title: "Old", Type: "playlist", URL: "https://x", RunID: "run-1"}); err != nil {
		t.Fatalf("RecordSource: %v", err)
	}
	if err := store.RecordSource(ctx, Source{Hash: "abc", Title: "New", Type: "playlist", RunID: "run-2"}); err != nil {
		t.Fatalf("RecordSource: %v", err)
	}

	sources, err := store.Sources(ctx)
	if err != nil {
		t.Fatalf("Sources: %v", err)
	}
	if len(sources) != 1 {
		t.Fatalf("expected 1 source, got %d", len(sources))
	}
	got := sources[0]
	if got.Title != "New" || got.RunID != "run-2" || got.URL != "https://x" {
		t.Fatalf("unexpected source %#v", got)
	}
	if !got.UpdatedAt.After(got.CreatedAt) {
		t.Fatalf("expected updated_at after created_at: %v %v", got.CreatedAt, got.UpdatedAt)
	}
}

func TestRecordSourceRequiresHash(t *testing.T) {
	if err := openTestStore(t).RecordSource(context.Background(), Source{Title: "x"}); err == nil {
		t.Fatal("expected error without hash")
	}
}

func TestTranscriptsOrderedByPosition(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	if err := store.RecordSource(ctx, Source{Hash: "pl", Title: "Playlist", Type: "playlist", RunID: "r"}); err != nil {
		t.Fatal(err)
	}
	for _, tr := range []Transcript{
		{RunID: "r", SourceHash: "pl", VideoID: "b", Order: 2, Title: "B", Status: TranscriptFailed, Error: "no captions"},
		{RunID: "r", SourceHash: "pl", VideoID: "a", Order: 1, Title: "A", Path: "/tmp/1.txt", Chars: 42},
	} {
		if err := store.RecordTranscript(ctx, tr); err != nil {
			t.Fatalf("RecordTranscript: %v", err)
		}
	}

	got, err := store.Transcripts(ctx, "pl")
	if err != nil {
		t.Fatalf("Transcripts: %v", err)
	}
	if len(got) != 2 || got[0].VideoID != "a" || got[1].VideoID != "b" {
		t.Fatalf("unexpected order %#v", got)
	}
	if got[0].Status != TranscriptDownloaded || got[0].Chars != 42 {
		t.Fatalf("unexpected first transcript %#v", got[0])
	}
	if got[1].Status != TranscriptFailed || got[1].Error != "no captions" {
		t.Fatalf("unexpected second transcript %#v", got[1])
	}
}

func TestTranscriptRequiresKnownSource(t *testing.T) {
	err := openTestStore(t).RecordTranscript(context.Background(), Transcript{RunID: "r", SourceHash: "missing", VideoID: "v", Title: "t"})
	if err == nil {
		t.Fatal("expected foreign key violation")
	}
}

func TestRecentMergesDownloadsAndArtifacts(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	if err := store.RecordSource(ctx, Source{Hash: "pl", Title: "Course", Type: "playlist", RunID: "r1"}); err != nil {
		t.Fatal(err)
	}
	for _, status := range []TranscriptStatus{TranscriptDownloaded, TranscriptDownloaded, TranscriptFailed} {
		if err := store.RecordTranscript(ctx, Transcript{RunID: "r1", SourceHash: "pl", VideoID: "v", Title: "t", Status: status, Chars: 7}); err != nil {
			t.Fatal(err)
		}
	}
	if err := store.RecordArtifact(ctx, Artifact{RunID: "r2", Kind: ArtifactManuscript, Path: "/m/combined.txt", Detail: "3 files", Bytes: 10}); err != nil {
		t.Fatal(err)
	}
	if err := store.RecordArtifact(ctx, Artifact{RunID: "r3", Kind: ArtifactQuiz, Path: "/q/combined_5q_Medium.txt"}); err != nil {
		t.Fatal(err)
	}

	events, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %#v", events)
	}
	if events[0].Kind != "quiz" || events[1].Kind != "manuscript" || events[2].Kind != "download" {
		t.Fatalf("unexpected order %#v", events)
	}
	if events[2].Title != "Course" || events[2].Detail != "2 saved, 1 failed" || events[2].Bytes != 21 {
		t.Fatalf("unexpected download summary %#v", events[2])
	}
	if events[1].Bytes != 10 {
		t.Fatalf("unexpected manuscript size %d", events[1].Bytes)
	}

	limited, err := store.Recent(ctx, 1)
	if err != nil || len(limited) != 1 {
		t.Fatalf("Recent limit: %v %d", err, len(limited))
	}
}

func TestRecordArtifactRequiresPath(t *testing.T) {
	if err := openTestStore(t).RecordArtifact(context.Background(), Artifact{Kind: ArtifactQuiz}); err == nil {
		t.Fatal("expected error without path")
	}
}

func TestOpenReusesExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	first, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := first.RecordSource(context.Background(), Source{Hash: "h", Title: "T", Type: "video", RunID: "r"}); err != nil {
		t.Fatal(err)
	}
	_ = first.Close()

	second, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()
	sources, err := second.Sources(context.Background())
	if err != nil || len(sources) != 1 {
		t.Fatalf("expected persisted source, got %v %v", sources, err)
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	store, err := Open(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.db.Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatal(err)
	}
	_ = store.Close()

	if _, err := Open(context.Background(), path); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestOpenUpgradesOlderCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	store, err := Open(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	for _, stmt := range []string{
		"DROP INDEX idx_transcripts_run",
		"DROP INDEX idx_artifacts_created",
		"PRAGMA user_version = 1",
	} {
		if _, err := store.db.Exec(stmt); err != nil {
			t.Fatalf("%s: %v", stmt, err)
		}
	}
	_ = store.Close()

	store, err = Open(context.Background(), path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()

	var version, indexes int
	if err := store.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatal(err)
	}
	if version != len(migrations) {
		t.Fatalf("expected version %d, got %d", len(migrations), version)
	}
	err = store.db.QueryRow(
		"SELECT COUNT(1) FROM sqlite_master WHERE type = 'index' AND name IN ('idx_transcripts_run', 'idx_artifacts_created')",
	).Scan(&indexes)
	if err != nil || indexes != 2 {
		t.Fatalf("expected both indexes restored, got %d (%v)", indexes, err)
	}
}

func TestNewRunIDUnique(t *testing.T) {
	if NewRunID() == NewRunID() {
		t.Fatal("expected unique run ids")
	}
}
