package openaiLLM

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/akolanti/PDFChat/internal/appErrors"
	"github.com/akolanti/PDFChat/internal/config"
	"github.com/akolanti/PDFChat/internal/domain/chatModel"
	"github.com/akolanti/PDFChat/internal/rag/llm"
	"github.com/openai/openai-go/option"
)

type capturedRequest struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func TestGenerate_SendsHistoryAndReturnsAnswer(t *testing.T) {
	var got capturedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"c1","object":"chat.completion","model":"gpt-4","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"The total is 42."}}],"usage":{"total_tokens":12}}`)
	}))
	defer server.Close()

	provider, err := NewOpenAIClient(config.OpenAIConfig{APIKey: "test", BaseURL: server.URL + "/"}, "gpt-4", 0, option.WithMaxRetries(0))
	if err != nil {
		t.Fatal(err)
	}

	answer, err := provider.Generate(context.Background(), llm.Prompt{
		System:  "be helpful",
		History: []chatModel.Turn{{Question: "hi", Answer: "hello"}},
		User:    "Question: total?",
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if answer != "The total is 42." {
		t.Errorf("answer = %q", answer)
	}

	wantRoles := []string{"system", "user", "assistant", "user"}
	if len(got.Messages) != len(wantRoles) {
		t.Fatalf("expected %d messages, got %d", len(wantRoles), len(got.Messages))
	}
	for i, role := range wantRoles {
		if got.Messages[i].Role != role {
			t.Errorf("message %d role = %s, want %s", i, got.Messages[i].Role, role)
		}
	}
	if got.Model != "gpt-4" || got.Temperature != 0 {
		t.Errorf("model/temperature = %s/%v", got.Model, got.Temperature)
	}
}

func TestGenerate_ProviderErrorIsTyped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":{"message":"overloaded","type":"server_error","code":"x","param":""}}`)
	}))
	defer server.Close()

	provider, _ := NewOpenAIClient(config.OpenAIConfig{APIKey: "test", BaseURL: server.URL + "/"}, "gpt-4", 0, option.WithMaxRetries(0))
	_, err := provider.Generate(context.Background(), llm.Prompt{User: "q"})
	if appErrors.KindOf(err) != appErrors.KindUpstream {
		t.Errorf("expected upstream error, got %v", err)
	}
}
