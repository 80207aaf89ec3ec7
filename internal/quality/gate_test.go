package quality

import (
	"context"
	"errors"
	"math"
	"testing"
)

type fakeTranslator struct {
	result string
	err    error
	calls  int
}

func (f *fakeTranslator) TranslateOne(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.result, nil
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "the air cylinder is ready", "the air cylinder is ready", 1.0},
		{"one extra word", "the air cylinder is ready", "the air cylinder is ready now", 5.0 / 6.0},
		{"disjoint", "alpha beta", "gamma delta", 0},
		{"both empty", "", "", 0},
		{"one empty", "words here", "", 0},
		{"case insensitive", "The Air Cylinder", "the air cylinder", 1.0},
		{"duplicates collapse", "ready ready ready", "ready", 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestAssess_HighConfidence(t *testing.T) {
	ft := &fakeTranslator{result: "the air cylinder is ready"}
	gate := NewGate(ft)

	a := gate.Assess(context.Background(), "the air cylinder is ready", "エアシリンダは準備完了です", "en", "ja")

	if a.Confidence != ConfidenceHigh {
		t.Errorf("Expected high confidence, got %s", a.Confidence)
	}
	if a.FlagForReview {
		t.Error("High confidence must not be flagged")
	}
	if a.Priority != PriorityNone {
		t.Errorf("Expected no priority, got %s", a.Priority)
	}
	if ft.calls != 1 {
		t.Errorf("Expected exactly one reverse call, got %d", ft.calls)
	}
}

func TestAssess_MediumConfidenceIsFlagged(t *testing.T) {
	// 5/6 ≈ 0.833: medium/low boundary band, flagged at low priority.
	ft := &fakeTranslator{result: "the air cylinder is ready now"}
	gate := NewGate(ft)

	a := gate.Assess(context.Background(), "the air cylinder is ready", "translation", "en", "ja")

	if math.Abs(a.Similarity-5.0/6.0) > 1e-9 {
		t.Errorf("Expected similarity 5/6, got %v", a.Similarity)
	}
	if a.Confidence != ConfidenceLow {
		t.Errorf("Expected low confidence below 0.85, got %s", a.Confidence)
	}
	if !a.FlagForReview {
		t.Error("Below the review threshold must be flagged")
	}
	if a.Priority != PriorityLow {
		t.Errorf("Expected low priority in the 0.80-0.85 band, got %s", a.Priority)
	}
}

func TestAssess_PriorityBands(t *testing.T) {
	// Source has 4 tokens; the back-translation controls the similarity.
	tests := []struct {
		name       string
		back       string
		similarity float64
		priority   Priority
	}{
		{"identical", "a b c d", 1.0, PriorityNone},
		{"similarity 0.75 in medium band", "a b c", 0.75, PriorityMedium},
		{"similarity 0.60 in high band", "a b c x", 0.60, PriorityHigh},
		{"disjoint", "x y z w", 0.0, PriorityHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := NewGate(&fakeTranslator{result: tt.back})
			a := gate.Assess(context.Background(), "a b c d", "t", "en", "ja")
			if math.Abs(a.Similarity-tt.similarity) > 1e-9 {
				t.Fatalf("Expected similarity %v, got %v", tt.similarity, a.Similarity)
			}
			if a.Priority != tt.priority {
				t.Errorf("Expected priority %s, got %s", tt.priority, a.Priority)
			}
		})
	}
}

func TestAssess_ReverseFailure(t *testing.T) {
	ft := &fakeTranslator{err: errors.New("all providers failed")}
	gate := NewGate(ft)

	a := gate.Assess(context.Background(), "source", "translation", "en", "ja")

	if a.Confidence != ConfidenceError {
		t.Errorf("Expected error confidence, got %s", a.Confidence)
	}
	if a.Similarity != 0 {
		t.Errorf("Expected similarity 0, got %v", a.Similarity)
	}
	if !a.FlagForReview {
		t.Error("Failed assessment must be flagged")
	}
	if a.Err == nil {
		t.Error("Underlying error should be carried on the assessment")
	}
}

func TestAssess_ReverseLanguageOrder(t *testing.T) {
	var gotSource, gotTarget string
	gate := NewGate(translatorFunc(func(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
		gotSource, gotTarget = sourceLang, targetLang
		return "back", nil
	}))

	gate.Assess(context.Background(), "src", "übersetzung", "ja", "de")

	if gotSource != "de" || gotTarget != "ja" {
		t.Errorf("Reverse call should go target→source, got %s→%s", gotSource, gotTarget)
	}
}

type translatorFunc func(ctx context.Context, text, sourceLang, targetLang string) (string, error)

func (f translatorFunc) TranslateOne(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	return f(ctx, text, sourceLang, targetLang)
}
