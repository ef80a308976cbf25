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

func TestClient_Chat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}

		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.Model != "test-model" {
			t.Errorf("model = %q", req.Model)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
			t.Errorf("messages = %+v", req.Messages)
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "generated answer"}},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "test-model", 10*time.Second)
	answer, err := client.GenerateAnswer(context.Background(), "be helpful", "question?")
	if err != nil {
		t.Fatalf("GenerateAnswer() error = %v", err)
	}
	if answer != "generated answer" {
		t.Errorf("GenerateAnswer() = %q", answer)
	}
}

func TestClient_ChatNestedContentNormalized(t *testing.T) {
	// Some providers return content as a structured object rather than a
	// string; the client must still produce a flat string.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":{"type":"text","text":"nested answer"}}}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "k", "m", 10*time.Second)
	answer, err := client.GenerateAnswer(context.Background(), "s", "u")
	if err != nil {
		t.Fatalf("GenerateAnswer() error = %v", err)
	}
	if !strings.Contains(answer, "nested answer") {
		t.Errorf("GenerateAnswer() = %q, want raw JSON text of nested content", answer)
	}
}

func TestClient_ChatBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, "k", "m", 10*time.Second)
	_, err := client.GenerateAnswer(context.Background(), "s", "u")
	if err == nil {
		t.Fatal("GenerateAnswer() error = nil, want bad status")
	}
	if !strings.Contains(err.Error(), "503") {
		t.Errorf("error = %v, want status code included", err)
	}
}

func TestClient_ChatNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "k", "m", 10*time.Second)
	if _, err := client.GenerateAnswer(context.Background(), "s", "u"); err == nil {
		t.Fatal("GenerateAnswer() error = nil, want no-choices failure")
	}
}
