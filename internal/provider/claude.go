package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	anthropicBaseURL = "https://api.anthropic.com"
	anthropicVersion = "2023-06-01"
)

// ClaudeProvider talks to the Anthropic messages API. It is the most
// expensive backend and the last resort of the cascade.
type ClaudeProvider struct {
	http    *resty.Client
	apiKey  string
	model   string
	baseURL string
}

// NewClaude creates a claude provider. baseURL is overridable for tests.
func NewClaude(apiKey, model, baseURL string, timeout time.Duration) *ClaudeProvider {
	if baseURL == "" {
		baseURL = anthropicBaseURL
	}
	return &ClaudeProvider{
		http:    resty.New().SetTimeout(timeout),
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

type claudeRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
	System      string          `json:"system,omitempty"`
	Messages    []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens          int `json:"input_tokens"`
		OutputTokens         int `json:"output_tokens"`
		CacheReadInputTokens int `json:"cache_read_input_tokens"`
	} `json:"usage"`
}

// Call sends one messages request and returns the model output with token
// accounting. Anthropic reports cache reads separately from input tokens,
// so both are folded into the uniform Response shape.
func (p *ClaudeProvider) Call(ctx context.Context, systemContext, userPrompt string) (*Response, error) {
	body := claudeRequest{
		Model:       p.model,
		MaxTokens:   4096,
		Temperature: 0.1,
		System:      systemContext,
		Messages:    []claudeMessage{{Role: "user", Content: userPrompt}},
	}

	var out claudeResponse
	resp, err := p.http.R().
		SetContext(ctx).
		SetHeader("x-api-key", p.apiKey).
		SetHeader("anthropic-version", anthropicVersion).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&out).
		Post(p.baseURL + "/v1/messages")
	if err != nil {
		return nil, fmt.Errorf("claude API error: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("claude API error: %s; body: %s", resp.Status(), resp.String())
	}
	if len(out.Content) == 0 {
		return nil, fmt.Errorf("claude returned no content")
	}

	return &Response{
		Text:         strings.TrimSpace(out.Content[0].Text),
		TokensIn:     out.Usage.InputTokens + out.Usage.CacheReadInputTokens,
		TokensOut:    out.Usage.OutputTokens,
		CachedTokens: out.Usage.CacheReadInputTokens,
	}, nil
}

// Name returns the pricing identifier.
func (p *ClaudeProvider) Name() string { return p.model }

// Available checks that an API key is configured.
func (p *ClaudeProvider) Available() error {
	if p.apiKey == "" {
		return fmt.Errorf("claude API key not configured")
	}
	return nil
}
