package provider

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sony/gobreaker"
)

// CascadeError is returned when every provider in the cascade failed.
// It wraps the last provider's error.
type CascadeError struct {
	Attempts []string
	Last     error
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("all providers failed (tried %v): %v", e.Attempts, e.Last)
}

func (e *CascadeError) Unwrap() error { return e.Last }

// MultiResult is the outcome of one multi-target cascade call.
type MultiResult struct {
	// Translations maps each requested target language to its translation.
	// A language the provider left out maps to the empty string.
	Translations map[string]string
	// Provider is the pricing identifier of the backend that answered.
	Provider string
	// Response carries the raw text and token accounting.
	Response *Response
}

// Cascade tries providers in a fixed priority order and returns the first
// success. Each provider sits behind its own circuit breaker; an open
// breaker counts as an ordinary failure and the next provider is tried.
type Cascade struct {
	providers []Provider
	breakers  []*gobreaker.CircuitBreaker
}

// NewCascade builds the cascade from the configured backends, cheapest
// first: grok, gemini, claude. Backends without a key are left out. At
// least one backend must be configured.
func NewCascade(ctx context.Context, cfg *Config) (*Cascade, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	var providers []Provider
	if cfg.GrokKey != "" {
		providers = append(providers, NewGrok(cfg.GrokKey, cfg.GrokModel, cfg.GrokBaseURL))
	}
	if cfg.GeminiKey != "" {
		gemini, err := NewGemini(ctx, cfg.GeminiKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		providers = append(providers, gemini)
	}
	if cfg.ClaudeKey != "" {
		providers = append(providers, NewClaude(cfg.ClaudeKey, cfg.ClaudeModel, cfg.ClaudeBaseURL, cfg.Timeout))
	}

	if len(providers) == 0 {
		return nil, fmt.Errorf("no translation providers configured (set XAI_API_KEY, GEMINI_API_KEY or ANTHROPIC_API_KEY)")
	}
	return NewCascadeFrom(providers...), nil
}

// NewCascadeFrom builds a cascade over an explicit provider list, in the
// order given.
func NewCascadeFrom(providers ...Provider) *Cascade {
	c := &Cascade{providers: providers}
	for _, p := range providers {
		c.breakers = append(c.breakers, newBreaker(p.Name()))
	}
	return c
}

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
}

// Names returns the provider identifiers in cascade order.
func (c *Cascade) Names() []string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return names
}

// Translate sends one multi-target prompt down the cascade. The same
// prompt is given to every provider until one succeeds; a provider is
// never retried against itself. If all fail, the returned error wraps the
// last provider's failure.
func (c *Cascade) Translate(ctx context.Context, systemContext, prompt string, targets []string) (*MultiResult, error) {
	var attempts []string
	var lastErr error

	for i, p := range c.providers {
		attempts = append(attempts, p.Name())

		if err := p.Available(); err != nil {
			lastErr = err
			continue
		}

		result, err := c.breakers[i].Execute(func() (interface{}, error) {
			return p.Call(ctx, systemContext, prompt)
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: provider %s failed: %v\n", p.Name(), err)
			lastErr = err
			continue
		}

		resp := result.(*Response)
		return &MultiResult{
			Translations: ParseMultiTarget(resp.Text, targets),
			Provider:     p.Name(),
			Response:     resp,
		}, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no providers in cascade")
	}
	return nil, &CascadeError{Attempts: attempts, Last: lastErr}
}
