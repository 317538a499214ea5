package model

import "time"

// Config is the explicit configuration for one pipeline instance. It is
// passed into constructors rather than read from ambient state, so tests can
// inject fake providers.
type Config struct {
	Provider  ProviderConfig  `json:"provider" yaml:"provider"`
	Cache     CacheConfig     `json:"cache" yaml:"cache"`
	Stages    StageConfig     `json:"stages" yaml:"stages"`
	Templates TemplatesConfig `json:"templates" yaml:"templates"`
	Output    OutputConfig    `json:"output" yaml:"output"`
}

// ProviderConfig configures the model gateway's connection to the
// generative model provider.
type ProviderConfig struct {
	Model      string        `json:"model" yaml:"model"`
	APIKey     string        `json:"-" yaml:"-"`
	BaseURL    string        `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Timeout    time.Duration `json:"timeout" yaml:"timeout"`         // per call
	MaxRetries int           `json:"max_retries" yaml:"max_retries"` // transient failures only
	BackoffMin time.Duration `json:"backoff_min" yaml:"backoff_min"`
	BackoffMax time.Duration `json:"backoff_max" yaml:"backoff_max"`
	// Requests per second against the provider, shared by all stages.
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit"`
	RateBurst int     `json:"rate_burst" yaml:"rate_burst"`
	MaxTokens int     `json:"max_tokens" yaml:"max_tokens"`
}

// CacheConfig configures the gateway's request cache.
type CacheConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	// TTL of zero keeps entries for the process lifetime (session scope).
	TTL time.Duration `json:"ttl" yaml:"ttl"`
}

// StageConfig holds per-stage sampling temperatures and acceptance gates.
type StageConfig struct {
	ExtractTemperature   float32 `json:"extract_temperature" yaml:"extract_temperature"`
	NarrativeTemperature float32 `json:"narrative_temperature" yaml:"narrative_temperature"`
	CriticTemperature    float32 `json:"critic_temperature" yaml:"critic_temperature"`
	// MinConfidence below which the CLI warns about the verdict.
	MinConfidence int `json:"min_confidence" yaml:"min_confidence"`
}

// TemplatesConfig locates user-authored template definitions.
type TemplatesConfig struct {
	Dir string `json:"dir" yaml:"dir"`
}

// OutputConfig controls rendering behavior.
type OutputConfig struct {
	Verbose       bool `json:"verbose" yaml:"verbose"`
	IncludeFooter bool `json:"include_footer" yaml:"include_footer"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderConfig{
			Model:      "gpt-4o-mini",
			Timeout:    30 * time.Second,
			MaxRetries: 3,
			BackoffMin: 2 * time.Second,
			BackoffMax: 10 * time.Second,
			RateLimit:  2,
			RateBurst:  5,
			MaxTokens:  1500,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     0, // session lifetime
		},
		Stages: StageConfig{
			ExtractTemperature:   0,
			NarrativeTemperature: 0.3,
			CriticTemperature:    0,
			MinConfidence:        90,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
	}
}
