package quality

import (
	"context"
	"fmt"
	"strings"
)

// Translator produces a single-language translation. The orchestrator
// satisfies this; the gate never requests quality assessment on its own
// reverse call, which keeps the recursion bounded to one level.
type Translator interface {
	TranslateOne(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// Confidence is the discrete reliability tier derived from similarity.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
	// ConfidenceError marks an assessment whose reverse translation failed.
	ConfidenceError Confidence = "error"
)

// Priority ranks flagged translations for review.
type Priority string

const (
	PriorityNone   Priority = "none"
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Confidence and review thresholds on the similarity score.
const (
	HighConfidenceThreshold   = 0.90
	MediumConfidenceThreshold = 0.85
	// ReviewThreshold doubles as the medium/low confidence boundary.
	ReviewThreshold = 0.85
)

// Assessment is the result of one quality check. It is computed on
// demand and never persisted.
type Assessment struct {
	BackTranslation   string
	Similarity        float64
	Confidence        Confidence
	FlagForReview     bool
	Priority          Priority
	Reason            string
	RecommendedAction string
	Err               error
}

// Gate runs the back-translation quality pipeline.
type Gate struct {
	translator Translator
}

// NewGate creates a quality gate over the given reverse translator.
func NewGate(t Translator) *Gate {
	return &Gate{translator: t}
}

// Assess back-translates the translation into the source language,
// scores token-set overlap against the original, and classifies the
// result. A failed reverse call yields a synthetic error assessment
// instead of propagating the failure.
func (g *Gate) Assess(ctx context.Context, sourceText, translation, sourceLang, targetLang string) Assessment {
	back, err := g.translator.TranslateOne(ctx, translation, targetLang, sourceLang)
	if err != nil {
		return Assessment{
			Similarity:        0,
			Confidence:        ConfidenceError,
			FlagForReview:     true,
			Priority:          PriorityHigh,
			Reason:            fmt.Sprintf("back-translation failed: %v", err),
			RecommendedAction: "Retry the assessment or review manually",
			Err:               err,
		}
	}

	similarity := Similarity(sourceText, back)
	a := Assessment{
		BackTranslation: back,
		Similarity:      similarity,
		Confidence:      classify(similarity),
	}
	a.FlagForReview, a.Priority, a.Reason, a.RecommendedAction = flag(similarity)
	return a
}

// Similarity computes the Jaccard index over whitespace-delimited,
// lowercased token sets. An empty union scores 0.
func Similarity(text1, text2 string) float64 {
	set1 := tokenSet(text1)
	set2 := tokenSet(text2)

	union := len(set2)
	intersection := 0
	for tok := range set1 {
		if _, ok := set2[tok]; ok {
			intersection++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		set[tok] = struct{}{}
	}
	return set
}

func classify(similarity float64) Confidence {
	switch {
	case similarity >= HighConfidenceThreshold:
		return ConfidenceHigh
	case similarity >= MediumConfidenceThreshold:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

func flag(similarity float64) (flagged bool, priority Priority, reason, action string) {
	if similarity >= ReviewThreshold {
		return false, PriorityNone,
			fmt.Sprintf("Similarity within acceptable range (%.2f)", similarity),
			"No review needed: translation has high confidence"
	}

	switch {
	case similarity < 0.70:
		return true, PriorityHigh,
			fmt.Sprintf("Very low similarity (%.2f): significant semantic drift detected", similarity),
			"Immediate review required: manual review and retranslation recommended"
	case similarity < 0.80:
		return true, PriorityMedium,
			fmt.Sprintf("Low similarity (%.2f): potential semantic issues", similarity),
			"Review recommended: check for accuracy and completeness"
	default:
		return true, PriorityLow,
			fmt.Sprintf("Below threshold similarity (%.2f): minor variations detected", similarity),
			"Optional review: translation likely acceptable but verify key terms"
	}
}
