// Package gateway is the single road to the generative model provider.
// Every stage issues structured-output completions through it and gets
// uniform retry, caching, throttling and telemetry behavior in return.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"golang.org/x/time/rate"

	"github.com/scribelab/chronicler/internal/cache"
	"github.com/scribelab/chronicler/internal/model"
)

// Request describes one structured completion.
type Request struct {
	// System carries the stage's instruction set; Prompt carries the
	// delimited untrusted input and task body.
	System string
	Prompt string

	// SchemaName labels the expected structured shape for the provider.
	SchemaName string
	Schema     jsonschema.Definition

	// Temperature in [0,1]. Extraction and verification run at 0.
	Temperature float32

	// MaxRetries bounds retry attempts for transient failures. Negative
	// means use the configured default.
	MaxRetries int
}

// CallStats carries per-call telemetry.
type CallStats struct {
	Model            string
	Duration         time.Duration
	Attempts         int
	CacheHit         bool
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Gateway issues structured-output completions against one provider.
// Safe for concurrent use across sessions; the cache is the only shared
// mutable state and tolerates concurrent population.
type Gateway struct {
	client  *openai.Client
	cfg     model.ProviderConfig
	cache   cache.Cache
	limiter *rate.Limiter
	log     *slog.Logger
}

// New creates a gateway from explicit configuration. A nil cache disables
// caching; a nil logger discards telemetry.
func New(cfg model.ProviderConfig, c cache.Cache, logger *slog.Logger) (*Gateway, error) {
	if cfg.APIKey == "" && cfg.BaseURL == "" {
		return nil, fmt.Errorf("provider API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}

	return &Gateway{
		client:  openai.NewClientWithConfig(clientConfig),
		cfg:     cfg,
		cache:   c,
		limiter: rate.NewLimiter(limit, burst),
		log:     logger,
	}, nil
}

// Complete issues a structured completion and returns the raw structured
// value. Identical requests within the process lifetime are served from the
// cache without a provider call. Transient failures are retried with
// exponential backoff; non-transient failures propagate immediately.
func (g *Gateway) Complete(ctx context.Context, req Request) (json.RawMessage, CallStats, error) {
	stats := CallStats{Model: g.cfg.Model}
	start := time.Now()

	key := g.fingerprint(req)
	if g.cache != nil {
		if val, found := g.cache.Get(key); found {
			stats.CacheHit = true
			stats.Duration = time.Since(start)
			g.log.Debug("completion served from cache", "schema", req.SchemaName)
			return json.RawMessage(val), stats, nil
		}
	}

	schema, err := sanitizeSchema(req.Schema)
	if err != nil {
		return nil, stats, err
	}

	maxRetries := req.MaxRetries
	if maxRetries < 0 {
		maxRetries = g.cfg.MaxRetries
	}

	var content string
	var usage openai.Usage
	var lastErr error
	backoff := g.cfg.BackoffMin
	if backoff <= 0 {
		backoff = time.Second
	}

	for attempt := 0; ; attempt++ {
		stats.Attempts = attempt + 1

		if err := g.limiter.Wait(ctx); err != nil {
			return nil, stats, err
		}

		content, usage, lastErr = g.call(ctx, req, schema)
		if lastErr == nil {
			break
		}

		classified := classify(lastErr)
		var transient *TransientError
		if !errors.As(classified, &transient) {
			stats.Duration = time.Since(start)
			g.logCall(req, stats, classified)
			return nil, stats, classified
		}
		lastErr = classified

		if attempt >= maxRetries {
			stats.Duration = time.Since(start)
			exhausted := &RetriesExhaustedError{Attempts: attempt + 1, Last: classified}
			g.logCall(req, stats, exhausted)
			return nil, stats, exhausted
		}

		g.log.Warn("transient provider failure, backing off",
			"schema", req.SchemaName,
			"attempt", attempt+1,
			"backoff", backoff,
			"error", classified)

		select {
		case <-ctx.Done():
			return nil, stats, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if g.cfg.BackoffMax > 0 && backoff > g.cfg.BackoffMax {
			backoff = g.cfg.BackoffMax
		}
	}

	raw := json.RawMessage(stripFences(content))
	if g.cache != nil {
		_ = g.cache.Set(key, []byte(raw), 0)
	}

	stats.PromptTokens = usage.PromptTokens
	stats.CompletionTokens = usage.CompletionTokens
	stats.TotalTokens = usage.TotalTokens
	stats.Duration = time.Since(start)
	g.logCall(req, stats, nil)
	return raw, stats, nil
}

// call performs a single provider round trip with the per-call timeout.
func (g *Gateway) call(ctx context.Context, req Request, schema rawSchema) (string, openai.Usage, error) {
	timeout := g.cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	chatReq := openai.ChatCompletionRequest{
		Model: g.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		Temperature: req.Temperature,
		MaxTokens:   g.cfg.MaxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   req.SchemaName,
				Schema: schema,
				Strict: false,
			},
		},
	}

	resp, err := g.client.CreateChatCompletion(callCtx, chatReq)
	if err != nil {
		return "", openai.Usage{}, err
	}
	if len(resp.Choices) == 0 {
		return "", resp.Usage, fmt.Errorf("provider returned no choices")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", resp.Usage, fmt.Errorf("provider returned empty content")
	}
	return content, resp.Usage, nil
}

// fingerprint digests the semantically relevant request inputs.
func (g *Gateway) fingerprint(req Request) string {
	schemaJSON, _ := json.Marshal(req.Schema)
	return cache.Key(
		g.cfg.Model,
		req.System,
		req.Prompt,
		req.SchemaName,
		string(schemaJSON),
		strconv.FormatFloat(float64(req.Temperature), 'f', -1, 32),
	)
}

func (g *Gateway) logCall(req Request, stats CallStats, err error) {
	attrs := []any{
		"schema", req.SchemaName,
		"model", stats.Model,
		"duration", stats.Duration,
		"attempts", stats.Attempts,
		"tokens", stats.TotalTokens,
	}
	if err != nil {
		g.log.Error("completion failed", append(attrs, "error", err)...)
		return
	}
	g.log.Info("completion", attrs...)
}

// stripFences removes a surrounding markdown code fence if the provider
// wrapped its JSON in one.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
