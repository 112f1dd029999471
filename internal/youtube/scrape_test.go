package youtube

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPageScraperPrefersOpenGraphTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/watch" || r.URL.Query().Get("v") != "abc" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`<html><head>
<title>Fallback Title - YouTube</title>
<meta property="og:title" content="Open &amp; Graph Title">
</head><body></body></html>`))
	}))
	defer srv.Close()

	title, err := NewPageScraper(srv.URL, srv.Client()).VideoTitle(context.Background(), "abc")
	if err != nil {
		t.Fatalf("VideoTitle: %v", err)
	}
	if title != "Open & Graph Title" {
		t.Fatalf("title = %q", title)
	}
}

func TestPageScraperEscapesVideoID(t *testing.T) {
	var gotID, gotExtra string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = r.URL.Query().Get("v")
		gotExtra = r.URL.Query().Get("list")
		_, _ = w.Write([]byte(`<html><head><title>Escaped - YouTube</title></head></html>`))
	}))
	defer srv.Close()

	if _, err := NewPageScraper(srv.URL, srv.Client()).VideoTitle(context.Background(), "a b&list=x"); err != nil {
		t.Fatalf("VideoTitle: %v", err)
	}
	if gotID != "a b&list=x" || gotExtra != "" {
		t.Fatalf("video id not escaped: v=%q list=%q", gotID, gotExtra)
	}
}

func TestPageScraperFallsBackToDocumentTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title>Lecture 3 - YouTube</title></head></html>`))
	}))
	defer srv.Close()

	title, err := NewPageScraper(srv.URL, srv.Client()).VideoTitle(context.Background(), "abc")
	if err != nil {
		t.Fatalf("VideoTitle: %v", err)
	}
	if title != "Lecture 3" {
		t.Fatalf("title = %q", title)
	}
}

func TestPageScraperNoTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title>YouTube</title></head></html>`))
	}))
	defer srv.Close()

	_, err := NewPageScraper(srv.URL, srv.Client()).VideoTitle(context.Background(), "abc")
	if !errors.Is(err, ErrNoTitle) {
		t.Fatalf("expected ErrNoTitle, got %v", err)
	}
}

func TestPageScraperHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	if _, err := NewPageScraper(srv.URL, srv.Client()).VideoTitle(context.Background(), "abc"); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}
