package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/scribelab/chronicler/internal/cache"
	"github.com/scribelab/chronicler/internal/model"
)

func testSchema() jsonschema.Definition {
	return jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"answer": {Type: jsonschema.String},
		},
		Required: []string{"answer"},
	}
}

func successResponse(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		ID:     "chatcmpl-123",
		Object: "chat.completion",
		Model:  "gpt-4o-mini",
		Choices: []openai.ChatCompletionChoice{
			{
				Index:        0,
				Message:      openai.ChatCompletionMessage{Role: "assistant", Content: content},
				FinishReason: "stop",
			},
		},
		Usage: openai.Usage{PromptTokens: 50, CompletionTokens: 20, TotalTokens: 70},
	}
}

func testConfig(baseURL string) model.ProviderConfig {
	return model.ProviderConfig{
		Model:      "gpt-4o-mini",
		APIKey:     "test-key",
		BaseURL:    baseURL,
		Timeout:    5 * time.Second,
		MaxRetries: 2,
		BackoffMin: time.Millisecond,
		BackoffMax: 5 * time.Millisecond,
	}
}

func TestGateway_Complete_Success(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.URL.Path != "/chat/completions" {
			t.Errorf("expected path /chat/completions, got %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(successResponse(`{"answer": "42"}`))
	}))
	defer server.Close()

	gw, err := New(testConfig(server.URL), nil, nil)
	if err != nil {
		t.Fatalf("failed to create gateway: %v", err)
	}

	raw, stats, err := gw.Complete(context.Background(), Request{
		System:     "be terse",
		Prompt:     "what is the answer",
		SchemaName: "answer",
		Schema:     testSchema(),
		MaxRetries: -1,
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if string(raw) != `{"answer": "42"}` {
		t.Errorf("unexpected content: %s", raw)
	}
	if stats.TotalTokens != 70 {
		t.Errorf("expected 70 total tokens, got %d", stats.TotalTokens)
	}
	if stats.CacheHit {
		t.Error("first call should not be a cache hit")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("expected 1 provider call, got %d", calls)
	}
}

func TestGateway_Complete_CacheHit(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_ = json.NewEncoder(w).Encode(successResponse(`{"answer": "cached"}`))
	}))
	defer server.Close()

	gw, err := New(testConfig(server.URL), cache.NewMemoryCache(0, 0), nil)
	if err != nil {
		t.Fatalf("failed to create gateway: %v", err)
	}

	req := Request{
		System:     "s",
		Prompt:     "p",
		SchemaName: "answer",
		Schema:     testSchema(),
		MaxRetries: -1,
	}

	if _, _, err := gw.Complete(context.Background(), req); err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	raw, stats, err := gw.Complete(context.Background(), req)
	if err != nil {
		t.Fatalf("second call failed: %v", err)
	}
	if !stats.CacheHit {
		t.Error("second identical call should be a cache hit")
	}
	if string(raw) != `{"answer": "cached"}` {
		t.Errorf("unexpected cached content: %s", raw)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("expected exactly 1 provider call, got %d", calls)
	}
}

func TestGateway_Complete_DifferentPromptMissesCache(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_ = json.NewEncoder(w).Encode(successResponse(`{"answer": "x"}`))
	}))
	defer server.Close()

	gw, _ := New(testConfig(server.URL), cache.NewMemoryCache(0, 0), nil)

	base := Request{System: "s", Prompt: "p1", SchemaName: "answer", Schema: testSchema(), MaxRetries: -1}
	_, _, _ = gw.Complete(context.Background(), base)

	other := base
	other.Prompt = "p2"
	_, stats, err := gw.Complete(context.Background(), other)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if stats.CacheHit {
		t.Error("different prompt should not hit the cache")
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("expected 2 provider calls, got %d", calls)
	}
}

func TestGateway_Complete_RetriesTransientFailure(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error": {"message": "server melted", "type": "server_error"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(successResponse(`{"answer": "recovered"}`))
	}))
	defer server.Close()

	gw, _ := New(testConfig(server.URL), nil, nil)

	raw, stats, err := gw.Complete(context.Background(), Request{
		System: "s", Prompt: "p", SchemaName: "answer", Schema: testSchema(), MaxRetries: -1,
	})
	if err != nil {
		t.Fatalf("Complete failed after retry: %v", err)
	}
	if string(raw) != `{"answer": "recovered"}` {
		t.Errorf("unexpected content: %s", raw)
	}
	if stats.Attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", stats.Attempts)
	}
}

func TestGateway_Complete_NoRetryOnAuthFailure(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "bad key", "type": "invalid_request_error"}}`))
	}))
	defer server.Close()

	gw, _ := New(testConfig(server.URL), nil, nil)

	_, _, err := gw.Complete(context.Background(), Request{
		System: "s", Prompt: "p", SchemaName: "answer", Schema: testSchema(), MaxRetries: -1,
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var nt *NonTransientError
	if !errors.As(err, &nt) {
		t.Fatalf("expected NonTransientError, got %T: %v", err, err)
	}
	if nt.Kind != "auth" {
		t.Errorf("expected auth kind, got %s", nt.Kind)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("auth failure must not be retried, got %d calls", calls)
	}
}

func TestGateway_Complete_RetriesExhausted(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "rate limit exceeded", "type": "rate_limit_error"}}`))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.MaxRetries = 1
	gw, _ := New(cfg, nil, nil)

	_, _, err := gw.Complete(context.Background(), Request{
		System: "s", Prompt: "p", SchemaName: "answer", Schema: testSchema(), MaxRetries: -1,
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var exhausted *RetriesExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected RetriesExhaustedError, got %T: %v", err, err)
	}
	if exhausted.Attempts != 2 {
		t.Errorf("expected 2 attempts (initial + 1 retry), got %d", exhausted.Attempts)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("expected 2 provider calls, got %d", calls)
	}
}

func TestGateway_Complete_StripsMarkdownFences(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(successResponse("```json\n{\"answer\": \"fenced\"}\n```"))
	}))
	defer server.Close()

	gw, _ := New(testConfig(server.URL), nil, nil)

	raw, _, err := gw.Complete(context.Background(), Request{
		System: "s", Prompt: "p", SchemaName: "answer", Schema: testSchema(), MaxRetries: -1,
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if string(raw) != `{"answer": "fenced"}` {
		t.Errorf("fences not stripped: %s", raw)
	}
}

func TestGateway_New_RequiresCredentials(t *testing.T) {
	if _, err := New(model.ProviderConfig{Model: "gpt-4o-mini"}, nil, nil); err == nil {
		t.Error("expected error with neither API key nor base URL")
	}
}

func TestStripFences(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: `{"a":1}`, want: `{"a":1}`},
		{in: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{in: "```\n{\"a\":1}\n```", want: `{"a":1}`},
		{in: "  \n```json\n{\"a\":1}\n```", want: `{"a":1}`},
	}
	for _, tc := range cases {
		if got := stripFences(tc.in); got != tc.want {
			t.Errorf("stripFences(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
