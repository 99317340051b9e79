package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func chatServer(t *testing.T, status int, content string, check func(r *http.Request)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		if status != http.StatusOK {
			w.WriteHeader(status)
			w.Write([]byte(`{"error":"upstream"}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"model": "test-model",
			"choices": []map[string]any{
				{"message": map[string]string{"content": content}, "finish_reason": "stop"},
			},
			"usage": map[string]int{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
		})
	}))
}

func TestChatSuccess(t *testing.T) {
	srv := chatServer(t, http.StatusOK, "hello", func(r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("auth header = %q", got)
		}
	})
	defer srv.Close()

	p := NewOpenAICompat(Config{BaseURL: srv.URL, Model: "m", APIKey: "test-key"})
	resp, err := p.Chat(context.Background(), ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Content != "hello" {
		t.Errorf("content = %q", resp.Content)
	}
	if resp.TotalTokens != 15 {
		t.Errorf("total tokens = %d", resp.TotalTokens)
	}
}

func TestChatServerError(t *testing.T) {
	srv := chatServer(t, http.StatusInternalServerError, "", nil)
	defer srv.Close()

	p := NewOpenAICompat(Config{BaseURL: srv.URL, Model: "m"})
	_, err := p.Chat(context.Background(), ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	if err == nil {
		t.Fatal("expected error")
	}

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("error %T is not a TransportError", err)
	}
	if te.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d", te.StatusCode)
	}
}

func TestChatNetworkError(t *testing.T) {
	// Nothing listens here.
	p := NewOpenAICompat(Config{BaseURL: "http://127.0.0.1:1", Model: "m"})
	_, err := p.Chat(context.Background(), ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("error %T is not a TransportError", err)
	}
	if te.StatusCode != 0 {
		t.Errorf("status = %d, want 0 for network failure", te.StatusCode)
	}
}

func TestChatJSONMode(t *testing.T) {
	srv := chatServer(t, http.StatusOK, "{}", func(r *http.Request) {
		var body struct {
			ResponseFormat *struct {
				Type string `json:"type"`
			} `json:"response_format"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if body.ResponseFormat == nil || body.ResponseFormat.Type != "json_object" {
			t.Error("response_format not forwarded")
		}
	})
	defer srv.Close()

	p := NewOpenAICompat(Config{BaseURL: srv.URL, Model: "m"})
	if _, err := p.Chat(context.Background(), ChatRequest{
		Messages:       []Message{{Role: "user", Content: "hi"}},
		ResponseFormat: "json_object",
	}); err != nil {
		t.Fatal(err)
	}
}

func TestNewProvider(t *testing.T) {
	for _, name := range []string{"ollama", "lmstudio", "openrouter", "openai", "groq", "xai", "gemini", "custom"} {
		if _, err := NewProvider(Config{Provider: name, Model: "m"}); err != nil {
			t.Errorf("NewProvider(%s): %v", name, err)
		}
	}
	if _, err := NewProvider(Config{Provider: "unknown"}); err == nil {
		t.Error("unknown provider should error")
	}
	if _, err := NewProvider(Config{}); err == nil {
		t.Error("empty provider should error")
	}
}
