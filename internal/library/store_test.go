package library

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"
)

func TestRecordSourcePreservesExistingKeys(t *testing.T) {
	root := t.TempDir()
	existing := `{
  "aaaaaaaaaa": {
    "title": "Older Playlist",
    "type": "playlist"
  }
}
`
	if err := os.WriteFile(filepath.Join(root, SourceMappingFile), []byte(existing), 0o644); err != nil {
		t.Fatalf("seed mapping: %v", err)
	}

	store := New(root, nil)
	if err := store.RecordSource(context.Background(), "bbbbbbbbbb", SourceEntry{Title: "Café & Crème", Type: SourceVideo}); err != nil {
		t.Fatalf("RecordSource: %v", err)
	}

	mapping, err := store.LoadSources()
	if err != nil {
		t.Fatalf("LoadSources: %v", err)
	}
	if got := mapping.Keys(); len(got) != 2 || got[0] != "aaaaaaaaaa" || got[1] != "bbbbbbbbbb" {
		t.Fatalf("unexpected keys %v", got)
	}
	older, ok := mapping.Get("aaaaaaaaaa")
	if !ok || older.Title != "Older Playlist" || older.Type != SourcePlaylist {
		t.Fatalf("existing entry lost: %#v", older)
	}

	raw, err := os.ReadFile(filepath.Join(root, SourceMappingFile))
	if err != nil {
		t.Fatalf("read mapping: %v", err)
	}
	if !strings.Contains(string(raw), `"title": "Café & Crème"`) {
		t.Fatalf("expected literal non-ASCII title, got:\n%s", raw)
	}
}

func TestRecordSourceReplacesSameKeyInPlace(t *testing.T) {
	store := New(t.TempDir(), nil)
	ctx := context.Background()
	for _, entry := range []struct {
		hash  string
		title string
	}{{"one", "First"}, {"two", "Second"}, {"one", "First again"}} {
		if err := store.RecordSource(ctx, entry.hash, SourceEntry{Title: entry.title, Type: SourceVideo}); err != nil {
			t.Fatalf("RecordSource: %v", err)
		}
	}
	mapping, err := store.LoadSources()
	if err != nil {
		t.Fatalf("LoadSources: %v", err)
	}
	if keys := mapping.Keys(); len(keys) != 2 || keys[0] != "one" {
		t.Fatalf("unexpected keys %v", keys)
	}
	if entry, _ := mapping.Get("one"); entry.Title != "First again" {
		t.Fatalf("expected replaced title, got %q", entry.Title)
	}
}

func TestLoadSourcesMissingFile(t *testing.T) {
	mapping, err := New(filepath.Join(t.TempDir(), "absent"), nil).LoadSources()
	if err != nil {
		t.Fatalf("LoadSources: %v", err)
	}
	if mapping.Len() != 0 {
		t.Fatalf("expected empty mapping, got %d", mapping.Len())
	}
}

func TestSaveVideosNumericKeyOrder(t *testing.T) {
	store := New(t.TempDir(), nil)
	videos := VideoMap{}
	for order := 1; order <= 11; order++ {
		videos[order] = VideoEntry{ID: "id" + OrderedFileName(order), Title: "t"}
	}
	if err := store.SaveVideos(context.Background(), "hash", videos); err != nil {
		t.Fatalf("SaveVideos: %v", err)
	}
	raw, err := os.ReadFile(filepath.Join(store.FolderPath("hash"), VideoMappingFile))
	if err != nil {
		t.Fatalf("read video mapping: %v", err)
	}
	text := string(raw)
	if strings.Index(text, `"2"`) > strings.Index(text, `"10"`) {
		t.Fatalf("expected numeric key order, got:\n%s", text)
	}

	loaded, err := store.LoadVideos("hash")
	if err != nil {
		t.Fatalf("LoadVideos: %v", err)
	}
	if len(loaded) != 11 || loaded[11].ID != "id11.txt" {
		t.Fatalf("unexpected round trip %#v", loaded)
	}
}

func TestLoadVideosRejectsNonNumericKey(t *testing.T) {
	store := New(t.TempDir(), nil)
	dir := store.FolderPath("hash")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, VideoMappingFile), []byte(`{"x":{"id":"a","title":"b"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := store.LoadVideos("hash"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestWriteTranscript(t *testing.T) {
	store := New(t.TempDir(), nil)
	path, err := store.WriteTranscript("abc", VideoFileName("dQw4w9WgXcQ"), "line one\nline two")
	if err != nil {
		t.Fatalf("WriteTranscript: %v", err)
	}
	if filepath.Base(path) != "dQw4w9WgXcQ.txt" {
		t.Fatalf("unexpected path %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "line one\nline two" {
		t.Fatalf("unexpected content %q (%v)", data, err)
	}
}

func TestRecordSourceTimesOutWhenLocked(t *testing.T) {
	root := t.TempDir()
	holder := flock.New(filepath.Join(root, lockFileName))
	if err := holder.Lock(); err != nil {
		t.Fatalf("hold lock: %v", err)
	}
	t.Cleanup(func() { _ = holder.Unlock() })

	store := New(root, nil, WithLockTimeout(100*time.Millisecond))
	err := store.RecordSource(context.Background(), "hash", SourceEntry{Title: "x", Type: SourceVideo})
	if !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}
