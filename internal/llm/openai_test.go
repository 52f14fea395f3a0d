package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestChatClient_Complete(t *testing.T) {
	t.Parallel()

	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
		MaxTokens   int     `json:"max_tokens"`
		Temperature float32 `json:"temperature"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"generated text"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c := NewChatClient(ChatConfig{APIKey: "test-key", BaseURL: srv.URL + "/v1/", Model: "claude-3-5-sonnet-20241022"})
	text, err := c.Complete(context.Background(), Request{System: "sys", Prompt: "user", MaxTokens: 2500, Temperature: 0.5})
	if err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if text != "generated text" {
		t.Errorf("Complete() = %q", text)
	}

	if got.Model != "claude-3-5-sonnet-20241022" || got.MaxTokens != 2500 || got.Temperature != 0.5 {
		t.Errorf("request = %+v", got)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "user" {
		t.Errorf("messages = %+v", got.Messages)
	}
}

func TestChatClient_APIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit_error"}}`))
	}))
	defer srv.Close()

	c := NewChatClient(ChatConfig{APIKey: "k", BaseURL: srv.URL, Model: "gpt-4"})
	if _, err := c.Complete(context.Background(), Request{Prompt: "x"}); err == nil {
		t.Fatal("expected error")
	}
}
