package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func replyWith(content string) map[string]any {
	return map[string]any{
		"choices": []any{map[string]any{"finish_reason": "stop", "message": map[string]any{"content": content}}},
	}
}

func jsonServer(t *testing.T, payload map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

type sleepRecorder struct {
	slept []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.slept = append(s.slept, d)
	return ctx.Err()
}

func TestHealthCheckAcceptsAnyReply(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(replyWith("OK"))
	}))
	defer srv.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: srv.URL, Model: "demo-model"})
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
	if got.Model != "demo-model" || got.MaxTokens != 5 || len(got.Messages) != 1 {
		t.Fatalf("unexpected health request %#v", got)
	}
}

func TestHealthCheckRejectedKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"no auth"}}`))
	}))
	defer srv.Close()

	client := NewClient(Config{APIKey: "bad", BaseURL: srv.URL, Model: "demo"})
	err := client.HealthCheck(context.Background())
	if code, ok := HTTPStatus(err); !ok || code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
	if !strings.Contains(err.Error(), "no auth") {
		t.Fatalf("expected body snippet in %q", err)
	}
}

func TestHealthCheckRequiresKey(t *testing.T) {
	if err := NewClient(Config{}).HealthCheck(context.Background()); err == nil {
		t.Fatal("expected error without api key")
	}
}

func TestCompleteSendsSamplingAndHeaders(t *testing.T) {
	var (
		got     map[string]any
		headers http.Header
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(replyWith("  Q1. What is Go?\n"))
	}))
	defer srv.Close()

	client := NewClient(Config{
		APIKey:  "test",
		BaseURL: srv.URL,
		Model:   "demo-model",
		Referer: "https://example.com/subman",
		Title:   "subman",
	})
	text, err := client.Complete(context.Background(), "", "write a quiz", Sampling{Temperature: 0.7, TopP: 0.9, MaxTokens: 1000})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if text != "Q1. What is Go?" {
		t.Fatalf("unexpected text %q", text)
	}
	if got["top_p"] != 0.9 || got["max_tokens"] != float64(1000) || got["temperature"] != 0.7 {
		t.Fatalf("unexpected sampling fields %#v", got)
	}
	if messages, _ := got["messages"].([]any); len(messages) != 1 {
		t.Fatalf("expected only the user message, got %#v", got["messages"])
	}
	if headers.Get("Authorization") != "Bearer test" {
		t.Fatalf("unexpected authorization %q", headers.Get("Authorization"))
	}
	if headers.Get("HTTP-Referer") != "https://example.com/subman" || headers.Get("X-Title") != "subman" {
		t.Fatalf("missing attribution headers: %v", headers)
	}
}

func TestCompleteOmitsZeroSampling(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(replyWith("ok"))
	}))
	defer srv.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: srv.URL})
	if _, err := client.Complete(context.Background(), "be brief", "hi", Sampling{}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if _, ok := got["top_p"]; ok {
		t.Fatalf("top_p should be omitted: %#v", got)
	}
	if _, ok := got["max_tokens"]; ok {
		t.Fatalf("max_tokens should be omitted: %#v", got)
	}
	if messages, _ := got["messages"].([]any); len(messages) != 2 {
		t.Fatalf("expected system and user messages, got %#v", got["messages"])
	}
}

func TestCompleteReplyShapes(t *testing.T) {
	tests := []struct {
		name    string
		choices []any
		want    string
	}{
		{
			name:    "delta",
			choices: []any{map[string]any{"delta": map[string]any{"content": "from delta"}}},
			want:    "from delta",
		},
		{
			name:    "legacy text",
			choices: []any{map[string]any{"finish_reason": "stop", "text": "legacy text"}},
			want:    "legacy text",
		},
		{
			name: "second choice",
			choices: []any{
				map[string]any{"message": map[string]any{"content": " "}},
				map[string]any{"message": map[string]any{"content": "second"}},
			},
			want: "second",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := jsonServer(t, map[string]any{"choices": tt.choices})
			client := NewClient(Config{APIKey: "test", BaseURL: srv.URL})
			text, err := client.Complete(context.Background(), "", "user", Sampling{})
			if err != nil || text != tt.want {
				t.Fatalf("Complete = %q, %v", text, err)
			}
		})
	}
}

func TestCompleteEmptyReplyReportsFinishReason(t *testing.T) {
	srv := jsonServer(t, map[string]any{
		"choices": []any{map[string]any{
			"finish_reason": "content_filter",
			"message":       map[string]any{"content": "", "refusal": "cannot help"},
		}},
	})
	rec := &sleepRecorder{}
	client := NewClient(Config{APIKey: "test", BaseURL: srv.URL}, WithSleeper(rec.sleep), WithRetryMaxAttempts(2))

	_, err := client.Complete(context.Background(), "", "user", Sampling{})
	var empty *emptyReplyError
	if !errors.As(err, &empty) {
		t.Fatalf("expected emptyReplyError, got %v", err)
	}
	if empty.FinishReason != "content_filter" || empty.Refusal != "cannot help" {
		t.Fatalf("unexpected details %#v", empty)
	}
	if len(rec.slept) != 1 {
		t.Fatalf("expected one retry pause, got %v", rec.slept)
	}
}

func TestCompleteAPIErrorBody(t *testing.T) {
	srv := jsonServer(t, map[string]any{"error": map[string]any{"message": "model not found"}})
	client := NewClient(Config{APIKey: "test", BaseURL: srv.URL})
	_, err := client.Complete(context.Background(), "", "user", Sampling{})
	if err == nil || !strings.Contains(err.Error(), "model not found") {
		t.Fatalf("expected api error, got %v", err)
	}
}

func TestCompleteRequiresKeyAndPrompt(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:1"})
	if _, err := client.Complete(context.Background(), "", "user", Sampling{}); err == nil {
		t.Fatal("expected error without api key")
	}
	client = NewClient(Config{APIKey: "k", BaseURL: "http://127.0.0.1:1"})
	if _, err := client.Complete(context.Background(), "", "   ", Sampling{}); err == nil {
		t.Fatal("expected error for blank prompt")
	}
}

func TestCompleteRetriesOn429WithRetryAfter(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "4")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(replyWith("Q1. retried"))
	}))
	defer srv.Close()

	rec := &sleepRecorder{}
	client := NewClient(Config{APIKey: "test", BaseURL: srv.URL}, WithSleeper(rec.sleep))
	text, err := client.Complete(context.Background(), "", "user", Sampling{})
	if err != nil || text != "Q1. retried" {
		t.Fatalf("Complete = %q, %v", text, err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
	if len(rec.slept) != 1 || rec.slept[0] != 4*time.Second {
		t.Fatalf("expected a single 4s pause, got %v", rec.slept)
	}
}

func TestCompleteGivesUpAfterMaxAttempts(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	rec := &sleepRecorder{}
	client := NewClient(Config{APIKey: "test", BaseURL: srv.URL},
		WithSleeper(rec.sleep),
		WithRetryMaxAttempts(3),
		WithRetryBackoff(time.Second, 10*time.Second),
	)
	_, err := client.Complete(context.Background(), "", "user", Sampling{})
	if code, ok := HTTPStatus(err); !ok || code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
	if len(rec.slept) != 2 || rec.slept[0] != time.Second || rec.slept[1] != 2*time.Second {
		t.Fatalf("unexpected backoff %v", rec.slept)
	}
}

func TestCompleteDoesNotRetryClientErrors(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: srv.URL})
	_, err := client.Complete(context.Background(), "", "user", Sampling{})
	if code, ok := HTTPStatus(err); !ok || code != http.StatusForbidden {
		t.Fatalf("HTTPStatus = %d, %v (err %v)", code, ok, err)
	}
	if calls != 1 {
		t.Fatalf("expected a single call, got %d", calls)
	}
}

func TestCompleteStopsWhenContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	client := NewClient(Config{APIKey: "test", BaseURL: srv.URL}, WithSleeper(func(context.Context, time.Duration) error {
		cancel()
		return context.Canceled
	}))
	if _, err := client.Complete(ctx, "", "user", Sampling{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBackoffDoublesUpToCap(t *testing.T) {
	p := retryPolicy{attempts: 10, base: time.Second, max: 5 * time.Second}
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 5 * time.Second, 5 * time.Second}
	for i, w := range want {
		if got := p.backoff(i + 1); got != w {
			t.Fatalf("backoff(%d) = %v, want %v", i+1, got, w)
		}
	}
}

func TestParseRetryAfter(t *testing.T) {
	if d, ok := parseRetryAfter("12"); !ok || d != 12*time.Second {
		t.Fatalf("seconds form = %v, %v", d, ok)
	}
	future := time.Now().Add(time.Minute).UTC().Format(http.TimeFormat)
	if d, ok := parseRetryAfter(future); !ok || d <= 0 {
		t.Fatalf("date form = %v, %v", d, ok)
	}
	for _, value := range []string{"", "-3", "soon"} {
		if _, ok := parseRetryAfter(value); ok {
			t.Fatalf("expected %q to be rejected", value)
		}
	}
}

func TestSleepContext(t *testing.T) {
	if err := SleepContext(context.Background(), 0); err != nil {
		t.Fatalf("zero wait: %v", err)
	}
	if err := SleepContext(context.Background(), time.Millisecond); err != nil {
		t.Fatalf("short wait: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := SleepContext(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
