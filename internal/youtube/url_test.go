package youtube

import (
	"errors"
	"testing"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch with extra params", "https://www.youtube.com/watch?feature=share&v=abc123&t=42", "abc123"},
		{"short link", "https://youtu.be/xyz789", "xyz789"},
		{"short link with query", "https://youtu.be/xyz789?t=10", "xyz789"},
		{"shorts", "https://www.youtube.com/shorts/short01", "short01"},
		{"embed", "https://www.youtube.com/embed/emb01?autoplay=1", "emb01"},
		{"live", "https://www.youtube.com/live/live01", "live01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractVideoID(tt.url)
			if err != nil {
				t.Fatalf("ExtractVideoID(%q) error: %v", tt.url, err)
			}
			if got != tt.want {
				t.Fatalf("ExtractVideoID(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestExtractVideoIDFailures(t *testing.T) {
	for _, raw := range []string{"", "https://www.youtube.com/", "https://example.com/about", "https://youtu.be/", "not a url at all"} {
		if _, err := ExtractVideoID(raw); !errors.Is(err, ErrNoVideoID) {
			t.Fatalf("ExtractVideoID(%q) error = %v, want ErrNoVideoID", raw, err)
		}
	}
}

func TestIsPlaylistURL(t *testing.T) {
	if !IsPlaylistURL("https://www.youtube.com/playlist?list=PL123") {
		t.Fatal("expected playlist URL")
	}
	if !IsPlaylistURL("https://www.youtube.com/watch?v=abc&list=PL123") {
		t.Fatal("watch URL with list parameter should be a playlist")
	}
	if IsPlaylistURL("https://www.youtube.com/watch?v=abc") {
		t.Fatal("plain watch URL is not a playlist")
	}
}

func TestExtractPlaylistID(t *testing.T) {
	id, err := ExtractPlaylistID("https://www.youtube.com/watch?v=abc&list=PL123")
	if err != nil || id != "PL123" {
		t.Fatalf("ExtractPlaylistID = %q, %v", id, err)
	}
	if _, err := ExtractPlaylistID("https://www.youtube.com/playlist?list="); !errors.Is(err, ErrNoPlaylistID) {
		t.Fatalf("expected ErrNoPlaylistID, got %v", err)
	}
}
