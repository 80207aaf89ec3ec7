package provider

import (
	"context"
	"errors"
	"testing"
)

// fakeProvider scripts success or failure for cascade tests.
type fakeProvider struct {
	name     string
	response *Response
	err      error
	notReady error
	calls    int
}

func (f *fakeProvider) Call(ctx context.Context, system, prompt string) (*Response, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

func (f *fakeProvider) Name() string     { return f.name }
func (f *fakeProvider) Available() error { return f.notReady }

func TestCascade_FirstProviderWins(t *testing.T) {
	first := &fakeProvider{name: "grok-4.1-fast", response: &Response{Text: "src\thello", TokensIn: 10, TokensOut: 5}}
	second := &fakeProvider{name: "gemini-3-flash", response: &Response{Text: "src\tbonjour"}}
	c := NewCascadeFrom(first, second)

	result, err := c.Translate(context.Background(), "system", "prompt", []string{"en"})
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if result.Provider != "grok-4.1-fast" {
		t.Errorf("Expected first provider, got %s", result.Provider)
	}
	if result.Translations["en"] != "hello" {
		t.Errorf("Got %q", result.Translations["en"])
	}
	if second.calls != 0 {
		t.Error("Second provider should not have been called")
	}
}

func TestCascade_FailoverToThird(t *testing.T) {
	first := &fakeProvider{name: "grok-4.1-fast", err: errors.New("rate limited")}
	second := &fakeProvider{name: "gemini-3-flash", err: errors.New("timeout")}
	third := &fakeProvider{name: "claude-sonnet-4-5", response: &Response{Text: "src\tdone", TokensIn: 7, TokensOut: 3}}
	c := NewCascadeFrom(first, second, third)

	result, err := c.Translate(context.Background(), "s", "p", []string{"en"})
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if result.Provider != "claude-sonnet-4-5" {
		t.Errorf("Expected third provider, got %s", result.Provider)
	}
	if result.Response.TokensIn != 7 || result.Response.TokensOut != 3 {
		t.Errorf("Usage should reflect only the successful provider: %+v", result.Response)
	}
	if first.calls != 1 || second.calls != 1 {
		t.Error("Each failing provider must be tried exactly once per request")
	}
}

func TestCascade_AllFail(t *testing.T) {
	lastErr := errors.New("quota exhausted")
	c := NewCascadeFrom(
		&fakeProvider{name: "a", err: errors.New("down")},
		&fakeProvider{name: "b", err: lastErr},
	)

	_, err := c.Translate(context.Background(), "s", "p", []string{"en"})
	if err == nil {
		t.Fatal("Expected error when all providers fail")
	}

	var cerr *CascadeError
	if !errors.As(err, &cerr) {
		t.Fatalf("Expected CascadeError, got %T", err)
	}
	if !errors.Is(err, lastErr) {
		t.Error("CascadeError should wrap the last provider's error")
	}
	if len(cerr.Attempts) != 2 {
		t.Errorf("Expected 2 attempts, got %v", cerr.Attempts)
	}
}

func TestCascade_UnavailableProviderSkipped(t *testing.T) {
	unavailable := &fakeProvider{name: "a", notReady: errors.New("no key")}
	working := &fakeProvider{name: "b", response: &Response{Text: "src\tok"}}
	c := NewCascadeFrom(unavailable, working)

	result, err := c.Translate(context.Background(), "s", "p", []string{"en"})
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if result.Provider != "b" {
		t.Errorf("Expected provider b, got %s", result.Provider)
	}
	if unavailable.calls != 0 {
		t.Error("Unavailable provider must not be called")
	}
}

func TestCascade_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	failing := &fakeProvider{name: "a", err: errors.New("boom")}
	backup := &fakeProvider{name: "b", response: &Response{Text: "src\tok"}}
	c := NewCascadeFrom(failing, backup)

	// Three failures trip the breaker.
	for i := 0; i < 3; i++ {
		if _, err := c.Translate(context.Background(), "s", "p", []string{"en"}); err != nil {
			t.Fatalf("Backup should have answered: %v", err)
		}
	}
	if failing.calls != 3 {
		t.Fatalf("Expected 3 calls before the breaker opens, got %d", failing.calls)
	}

	// With the breaker open the failing provider is skipped entirely.
	if _, err := c.Translate(context.Background(), "s", "p", []string{"en"}); err != nil {
		t.Fatalf("Backup should still answer: %v", err)
	}
	if failing.calls != 3 {
		t.Errorf("Open breaker should skip the provider, but it was called %d times", failing.calls)
	}
}

func TestCascade_Names(t *testing.T) {
	c := NewCascadeFrom(
		&fakeProvider{name: "grok-4.1-fast"},
		&fakeProvider{name: "gemini-3-flash"},
	)
	names := c.Names()
	if len(names) != 2 || names[0] != "grok-4.1-fast" || names[1] != "gemini-3-flash" {
		t.Errorf("Got %v", names)
	}
}

func TestNewCascade_NoKeys(t *testing.T) {
	_, err := NewCascade(context.Background(), &Config{})
	if err == nil {
		t.Error("Expected error with no configured providers")
	}
}
