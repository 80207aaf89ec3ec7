package provider

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiProvider talks to the Gemini API. It is the first backup when
// grok fails.
type GeminiProvider struct {
	client *genai.Client
	apiKey string
	model  string
}

// NewGemini creates a gemini provider.
func NewGemini(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiProvider{client: client, apiKey: apiKey, model: model}, nil
}

// Call generates one completion. Gemini reports cached prompt tokens in
// its usage metadata when implicit context caching kicks in.
func (p *GeminiProvider) Call(ctx context.Context, systemContext, userPrompt string) (*Response, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.1),
	}
	if systemContext != "" {
		cfg.SystemInstruction = genai.NewContentFromText(systemContext, genai.RoleUser)
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(userPrompt), cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini API error: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, fmt.Errorf("gemini returned no text")
	}

	out := &Response{Text: text}
	if um := resp.UsageMetadata; um != nil {
		out.TokensIn = int(um.PromptTokenCount)
		out.TokensOut = int(um.CandidatesTokenCount)
		out.CachedTokens = int(um.CachedContentTokenCount)
	}
	return out, nil
}

// Name returns the pricing identifier.
func (p *GeminiProvider) Name() string { return p.model }

// Available checks that an API key is configured.
func (p *GeminiProvider) Available() error {
	if p.apiKey == "" {
		return fmt.Errorf("gemini API key not configured")
	}
	return nil
}
