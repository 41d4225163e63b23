package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func completionBody(content string) string {
	payload := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}, "finish_reason": "stop"},
		},
	}
	encoded, _ := json.Marshal(payload)
	return string(encoded)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient(
		Config{APIKey: "test-key", BaseURL: server.URL, Model: "test-model"},
		WithRetryMaxAttempts(3),
		WithRetryBackoff(time.Millisecond, 5*time.Millisecond),
		WithSleeper(func(time.Duration) {}),
	)
	return client, server
}

func TestCompleteTextReturnsContent(t *testing.T) {
	var gotAuth string
	var gotPayload chatCompletionRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotPayload)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody("frame one?text?NO_NODE?NO_NODE")))
	})

	content, err := client.CompleteText(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("CompleteText: %v", err)
	}
	if content != "frame one?text?NO_NODE?NO_NODE" {
		t.Fatalf("content = %q", content)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("auth header = %q", gotAuth)
	}
	if gotPayload.ResponseFormat != nil {
		t.Fatal("text completion should not constrain the response format")
	}
}

func TestCompleteJSONSetsResponseFormat(t *testing.T) {
	var gotPayload chatCompletionRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotPayload)
		_, _ = w.Write([]byte(completionBody(`{"ok":true}`)))
	})

	if _, err := client.CompleteJSON(context.Background(), "system", "user"); err != nil {
		t.Fatalf("CompleteJSON: %v", err)
	}
	if gotPayload.ResponseFormat["type"] != "json_object" {
		t.Fatalf("response format = %v", gotPayload.ResponseFormat)
	}
	if gotPayload.Temperature != 0 {
		t.Fatalf("temperature = %v, want 0", gotPayload.Temperature)
	}
}

func TestRetriesOnServerError(t *testing.T) {
	var calls int
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(completionBody("ok")))
	})

	content, err := client.CompleteText(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("CompleteText: %v", err)
	}
	if content != "ok" || calls != 3 {
		t.Fatalf("content = %q after %d calls", content, calls)
	}
}

func TestDoesNotRetryClientError(t *testing.T) {
	var calls int
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	})

	if _, err := client.CompleteText(context.Background(), "system", "user"); err == nil {
		t.Fatal("401 should fail without retry")
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestCompleteTextRequiresKey(t *testing.T) {
	client := NewClient(Config{Model: "m"})
	if _, err := client.CompleteText(context.Background(), "system", "user"); err == nil {
		t.Fatal("missing api key should fail")
	}
}

func TestHealthCheck(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(completionBody(`{"ok":true}`)))
	})
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
}

func TestDecodeLLMJSON(t *testing.T) {
	var target struct {
		Title string `json:"title"`
	}
	if err := DecodeLLMJSON(`{"title":"plain"}`, &target); err != nil || target.Title != "plain" {
		t.Fatalf("plain decode: %v (%+v)", err, target)
	}

	fenced := "```json\n{\"title\":\"fenced\"}\n```"
	if err := DecodeLLMJSON(fenced, &target); err != nil || target.Title != "fenced" {
		t.Fatalf("fenced decode: %v (%+v)", err, target)
	}

	prose := "Here you go:\n{\"title\":\"wrapped\"}\nHope that helps!"
	if err := DecodeLLMJSON(prose, &target); err != nil || target.Title != "wrapped" {
		t.Fatalf("prose decode: %v (%+v)", err, target)
	}

	if err := DecodeLLMJSON("no json here", &target); err == nil {
		t.Fatal("non-JSON payload should fail")
	}
	if !strings.Contains(DecodeLLMJSON("", &target).Error(), "empty") {
		t.Fatal("empty payload should mention emptiness")
	}
}
