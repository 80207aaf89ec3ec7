package provider

import (
	"context"
	"time"
)

// Response is a provider's answer to one prompt. CachedTokens is the
// subset of TokensIn the provider served from its own prompt cache and
// bills at the discounted rate.
type Response struct {
	Text         string
	TokensIn     int
	TokensOut    int
	CachedTokens int
}

// Provider is a single translation backend. Implementations must be safe
// for sequential reuse across requests.
type Provider interface {
	// Call sends one prompt with a system context and returns the raw
	// model output with token accounting.
	Call(ctx context.Context, systemContext, userPrompt string) (*Response, error)

	// Name returns the provider's pricing identifier, e.g. "grok-4.1-fast".
	Name() string

	// Available reports whether the provider is configured to be called.
	Available() error
}

// Config holds credentials and model selection for all backends. A
// provider with an empty key is left out of the cascade.
type Config struct {
	GrokKey     string
	GrokModel   string
	GrokBaseURL string

	GeminiKey   string
	GeminiModel string

	ClaudeKey     string
	ClaudeModel   string
	ClaudeBaseURL string

	// Timeout applies per provider call.
	Timeout time.Duration
}

// DefaultConfig returns the standard model selection, cheapest first:
// grok, then gemini, then claude.
func DefaultConfig() *Config {
	return &Config{
		GrokModel:   "grok-4.1-fast",
		GrokBaseURL: "https://api.x.ai/v1",
		GeminiModel: "gemini-3-flash",
		ClaudeModel: "claude-sonnet-4-5",
		Timeout:     120 * time.Second,
	}
}
