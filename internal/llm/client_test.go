package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zrn-ns/curacast/internal/config"
	"github.com/zrn-ns/curacast/internal/logging"
	"github.com/zrn-ns/curacast/internal/services"
)

func newTestClient(url string) *Client {
	return NewClient(config.LLM{
		APIKey:         "test-key",
		BaseURL:        url,
		Model:          "gpt-test",
		TimeoutSeconds: 5,
	}, logging.NewNop())
}

func TestChatReturnsAssistantReply(t *testing.T) {
	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "  hello there  "}},
			},
		})
	}))
	defer srv.Close()

	reply, err := newTestClient(srv.URL).Chat(context.Background(), "be brief", "say hi")
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if reply != "hello there" {
		t.Fatalf("reply = %q", reply)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("auth header = %q", gotAuth)
	}
	if gotPath != "/chat/completions" {
		t.Fatalf("path = %q", gotPath)
	}
}

func TestChatMarksRateLimitTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Chat(context.Background(), "s", "u")
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
}

func TestChatMarksClientErrorFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad model", http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Chat(context.Background(), "s", "u")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestChatRejectsEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Chat(context.Background(), "s", "u")
	if err == nil {
		t.Fatal("expected error for empty choices")
	}
}
