package audit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/scribelab/chronicler/internal/gateway"
	"github.com/scribelab/chronicler/internal/model"
)

// chatRequest is the slice of the wire request the tests care about; the
// SDK's own request type cannot be unmarshaled because its schema field is
// an interface.
type chatRequest struct {
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func (r chatRequest) prompt() string {
	if len(r.Messages) == 0 {
		return ""
	}
	return r.Messages[len(r.Messages)-1].Content
}

func respondWith(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		ID:     "chatcmpl-123",
		Object: "chat.completion",
		Model:  "gpt-4o-mini",
		Choices: []openai.ChatCompletionChoice{
			{
				Message:      openai.ChatCompletionMessage{Role: "assistant", Content: content},
				FinishReason: "stop",
			},
		},
	}
}

func newTestGateway(t *testing.T, baseURL string) *gateway.Gateway {
	t.Helper()
	gw, err := gateway.New(model.ProviderConfig{
		Model:      "gpt-4o-mini",
		APIKey:     "test-key",
		BaseURL:    baseURL,
		Timeout:    5 * time.Second,
		MaxRetries: 0,
		BackoffMin: time.Millisecond,
	}, nil, nil)
	if err != nil {
		t.Fatalf("failed to create gateway: %v", err)
	}
	return gw
}

func TestAuditor_Extract_Success(t *testing.T) {
	var lastPrompt atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		lastPrompt.Store(req.prompt())

		_ = json.NewEncoder(w).Encode(respondWith(`{
			"event_title": "Machine Learning Workshop",
			"date": "2024-01-25",
			"speaker_name": "Dr. Sharma",
			"attendance_count": 85,
			"venue": null
		}`))
	}))
	defer server.Close()

	auditor := New(newTestGateway(t, server.URL), 0, nil)

	facts, err := auditor.Extract(context.Background(),
		"Machine Learning Workshop on 25 January 2024, speaker Dr. Sharma, 85 students attended.", "")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if v, _ := facts.EventTitle.Value(); v != "Machine Learning Workshop" {
		t.Errorf("unexpected title: %q", v)
	}
	if v, _ := facts.Date.Value(); v != "2024-01-25" {
		t.Errorf("unexpected date: %q", v)
	}
	if v, _ := facts.AttendanceCount.Value(); v != 85 {
		t.Errorf("unexpected attendance: %d", v)
	}
	if !facts.Venue.Missing() {
		t.Error("venue was never stated and should be absent")
	}

	prompt, _ := lastPrompt.Load().(string)
	if !strings.Contains(prompt, userInputStart) || !strings.Contains(prompt, userInputEnd) {
		t.Error("notes should be fenced by input delimiters")
	}
	if strings.Contains(prompt, transcriptStart) {
		t.Error("no transcript was supplied, its delimiter should be absent")
	}
}

func TestAuditor_Extract_IncludesTranscript(t *testing.T) {
	var lastPrompt atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		lastPrompt.Store(req.prompt())
		_ = json.NewEncoder(w).Encode(respondWith(`{"event_title": "Seminar"}`))
	}))
	defer server.Close()

	auditor := New(newTestGateway(t, server.URL), 0, nil)
	if _, err := auditor.Extract(context.Background(), "notes", "the speaker said hello"); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	prompt, _ := lastPrompt.Load().(string)
	if !strings.Contains(prompt, transcriptStart) || !strings.Contains(prompt, "the speaker said hello") {
		t.Error("transcript should be fenced into the prompt")
	}
}

func TestAuditor_Extract_CorrectsOnce(t *testing.T) {
	var calls int32
	var secondPrompt atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		var req chatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)

		if n == 1 {
			_ = json.NewEncoder(w).Encode(respondWith(`{"date": "definitely January", "attendance_count": -5}`))
			return
		}
		secondPrompt.Store(req.prompt())
		_ = json.NewEncoder(w).Encode(respondWith(`{"date": "2024-01-25", "attendance_count": 85}`))
	}))
	defer server.Close()

	auditor := New(newTestGateway(t, server.URL), 0, nil)

	facts, err := auditor.Extract(context.Background(), "notes", "")
	if err != nil {
		t.Fatalf("Extract failed after correction: %v", err)
	}
	if v, _ := facts.Date.Value(); v != "2024-01-25" {
		t.Errorf("unexpected date after correction: %q", v)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("expected 2 provider calls, got %d", calls)
	}

	prompt, _ := secondPrompt.Load().(string)
	if !strings.Contains(prompt, "Validation errors") {
		t.Error("correction prompt should carry the validation errors")
	}
	if !strings.Contains(prompt, "definitely January") {
		t.Error("correction prompt should carry the previous answer")
	}
}

func TestAuditor_Extract_CorrectionBoundIsOne(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_ = json.NewEncoder(w).Encode(respondWith(`{"date": "still not a date"}`))
	}))
	defer server.Close()

	auditor := New(newTestGateway(t, server.URL), 0, nil)

	_, err := auditor.Extract(context.Background(), "notes", "")
	if err == nil {
		t.Fatal("expected error when correction also fails")
	}
	if !strings.Contains(err.Error(), "correction attempt exhausted") {
		t.Errorf("unexpected error: %v", err)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("expected exactly 2 provider calls (initial + one correction), got %d", calls)
	}
}

func TestAuditor_Extract_ProviderFailurePropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "bad key", "type": "invalid_request_error"}}`))
	}))
	defer server.Close()

	auditor := New(newTestGateway(t, server.URL), 0, nil)
	if _, err := auditor.Extract(context.Background(), "notes", ""); err == nil {
		t.Fatal("expected provider error to propagate")
	}
}
