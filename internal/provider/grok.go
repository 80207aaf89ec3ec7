package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// GrokProvider talks to the x.ai API, which is OpenAI-compatible. It is
// the cheapest backend and therefore first in the cascade.
type GrokProvider struct {
	client *openai.Client
	apiKey string
	model  string
}

// NewGrok creates a grok provider. baseURL is overridable for tests.
func NewGrok(apiKey, model, baseURL string) *GrokProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &GrokProvider{
		client: openai.NewClientWithConfig(cfg),
		apiKey: apiKey,
		model:  model,
	}
}

// Call sends one chat completion and returns the model output with token
// accounting, including the provider-reported cached prompt tokens.
func (p *GrokProvider) Call(ctx context.Context, systemContext, userPrompt string) (*Response, error) {
	req := openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: 0.1,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemContext},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("grok API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("grok returned no choices")
	}

	cached := 0
	if resp.Usage.PromptTokensDetails != nil {
		cached = resp.Usage.PromptTokensDetails.CachedTokens
	}

	return &Response{
		Text:         strings.TrimSpace(resp.Choices[0].Message.Content),
		TokensIn:     resp.Usage.PromptTokens,
		TokensOut:    resp.Usage.CompletionTokens,
		CachedTokens: cached,
	}, nil
}

// Name returns the pricing identifier.
func (p *GrokProvider) Name() string { return p.model }

// Available checks that an API key is configured.
func (p *GrokProvider) Available() error {
	if p.apiKey == "" {
		return fmt.Errorf("grok API key not configured")
	}
	return nil
}
