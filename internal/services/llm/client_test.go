package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func completion(content string) map[string]any {
	return map[string]any{
		"choices": []any{
			map[string]any{"message": map[string]any{"content": content}},
		},
	}
}

func TestCompleteJSONSendsRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test" {
			t.Errorf("unexpected authorization %q", got)
		}
		if got := r.Header.Get("X-Title"); got != "voice2sign" {
			t.Errorf("unexpected title header %q", got)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "demo-model" || len(req.Messages) != 2 || req.ResponseFormat["type"] != "json_object" {
			t.Errorf("unexpected request %+v", req)
		}
		_ = json.NewEncoder(w).Encode(completion(`{"ok":true}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: " test ", BaseURL: server.URL, Model: "demo-model", Title: "voice2sign"})
	content, err := client.CompleteJSON(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("CompleteJSON: %v", err)
	}
	if content != `{"ok":true}` {
		t.Fatalf("unexpected content %q", content)
	}
}

func TestCompleteJSONValidatesInput(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:0"})
	if _, err := client.CompleteJSON(context.Background(), "", "u"); err == nil {
		t.Fatal("expected error for empty system prompt")
	}
	if _, err := client.CompleteJSON(context.Background(), "s", "u"); err == nil || !strings.Contains(err.Error(), "api key") {
		t.Fatalf("expected api key error, got %v", err)
	}
}

func TestCompleteJSONRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(completion(`{"label":"joy"}`))
	}))
	defer server.Close()

	var slept []time.Duration
	client := NewClient(Config{APIKey: "k", BaseURL: server.URL},
		WithSleeper(func(d time.Duration) { slept = append(slept, d) }))
	content, err := client.CompleteJSON(context.Background(), "s", "u")
	if err != nil {
		t.Fatalf("CompleteJSON: %v", err)
	}
	if content != `{"label":"joy"}` || calls.Load() != 3 {
		t.Fatalf("unexpected content %q after %d calls", content, calls.Load())
	}
	if len(slept) != 2 || slept[0] != time.Second || slept[1] != 2*time.Second {
		t.Fatalf("unexpected backoff %v", slept)
	}
}

func TestCompleteJSONDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL}, WithSleeper(func(time.Duration) {}))
	_, err := client.CompleteJSON(context.Background(), "s", "u")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected status error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single attempt, got %d", calls.Load())
	}
}

func TestCompleteJSONEmptyContentExhaustsRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(completion("   "))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL},
		WithRetry(2, time.Millisecond, time.Millisecond), WithSleeper(func(time.Duration) {}))
	_, err := client.CompleteJSON(context.Background(), "s", "u")
	if !errors.Is(err, ErrEmptyContent) || !strings.Contains(err.Error(), "after 2 attempts") {
		t.Fatalf("expected empty content error, got %v", err)
	}
}

func TestBackoffCaps(t *testing.T) {
	client := NewClient(Config{})
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 10 * time.Second, 10 * time.Second}
	for i, expected := range want {
		if got := client.backoff(i + 1); got != expected {
			t.Fatalf("backoff(%d) = %s, want %s", i+1, got, expected)
		}
	}
}

func TestParseRetryAfter(t *testing.T) {
	if got := parseRetryAfter("3"); got != 3*time.Second {
		t.Fatalf("unexpected delay %s", got)
	}
	if got := parseRetryAfter("soon"); got != 0 {
		t.Fatalf("expected zero for garbage, got %s", got)
	}
}

func TestDecodeJSON(t *testing.T) {
	tests := []string{
		`{"label":"fear"}`,
		"```json\n{\"label\":\"fear\"}\n```",
		"Here you go: {\"label\":\"fear\"} hope that helps",
	}
	for _, input := range tests {
		var out struct {
			Label string `json:"label"`
		}
		if err := DecodeJSON(input, &out); err != nil || out.Label != "fear" {
			t.Fatalf("DecodeJSON(%q) = %+v, %v", input, out, err)
		}
	}
	var out map[string]any
	if err := DecodeJSON("not json", &out); err == nil {
		t.Fatal("expected error for non-json payload")
	}
	if err := DecodeJSON(" ", &out); err == nil {
		t.Fatal("expected error for empty payload")
	}
}
