package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
)

func TestClassify(t *testing.T) {
	var gotSystem string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if len(req.Messages) > 0 {
			gotSystem = req.Messages[0].Content
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-4o-mini",
			"choices": [{
				"index": 0,
				"finish_reason": "stop",
				"message": {"role": "assistant", "content": "{\"tag\":\"loneliness_general\",\"confidence\":0.74}"}
			}]
		}`))
	}))
	defer srv.Close()

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	client := NewWithClient(openai.NewClientWithConfig(cfg), "", []string{"loneliness_general", "stress_general"})

	got, err := client.Classify(context.Background(), "aku merasa sendirian")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Tag != "loneliness_general" || got.Confidence != 0.74 {
		t.Errorf("unexpected prediction %+v", got)
	}
	if !strings.Contains(gotSystem, "- loneliness_general") {
		t.Errorf("system prompt does not list tags: %q", gotSystem)
	}
}

func TestClassify_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
	}))
	defer srv.Close()

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	client := NewWithClient(openai.NewClientWithConfig(cfg), "gpt-4o-mini", nil)

	if _, err := client.Classify(context.Background(), "halo"); err == nil {
		t.Fatal("expected error")
	}
}
