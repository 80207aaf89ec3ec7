package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"codeberg.org/tkimura/transflow/internal/budget"
	"codeberg.org/tkimura/transflow/internal/memory"
	"codeberg.org/tkimura/transflow/internal/provider"
	"codeberg.org/tkimura/transflow/internal/quality"
	"codeberg.org/tkimura/transflow/internal/tagcodec"
)

// ErrNoTargets is returned when the target list is empty after dropping
// the source language.
var ErrNoTargets = errors.New("no valid target languages specified")

// MemoryModel is the model identifier reported when every target was
// served from the translation memory.
const MemoryModel = "translation-memory"

// Caller is the slice of the provider cascade the orchestrator needs.
type Caller interface {
	Translate(ctx context.Context, systemContext, prompt string, targets []string) (*provider.MultiResult, error)
	Names() []string
}

// Assessor runs the post-hoc quality gate for one language.
type Assessor interface {
	Assess(ctx context.Context, sourceText, translation, sourceLang, targetLang string) quality.Assessment
}

// WarningKind classifies non-fatal conditions attached to a result.
type WarningKind string

const (
	// WarnStructure marks a tag count/kind/order mismatch in a translation.
	WarnStructure WarningKind = "structural_integrity"
	// WarnPlaceholderLeak marks an unresolved placeholder after unmasking.
	WarnPlaceholderLeak WarningKind = "placeholder_leak"
)

// Warning is a reported, non-fatal condition on one target language.
type Warning struct {
	Lang    string
	Kind    WarningKind
	Message string
}

// Request describes one logical translation: a source text fanned out to
// several target languages.
type Request struct {
	Text        string
	SourceLang  string
	TargetLangs []string
	// PreserveTags masks inline markup before translation and restores
	// it afterwards.
	PreserveTags bool
	// PriorityLang, when present in the targets, is moved to column one.
	// Purely a display-order convenience.
	PriorityLang string
	// Assess runs the back-translation quality gate per target.
	Assess bool
}

// Result is the aggregated outcome of one request. Warnings are carried
// on the result, never returned as errors.
type Result struct {
	Source       string
	SourceLang   string
	TargetLangs  []string
	Translations map[string]string
	CachedLangs  []string
	Model        string
	CostJPY      float64
	TokensIn     int
	TokensOut    int
	CachedTokens int
	Warnings     []Warning
	Assessments  map[string]quality.Assessment
}

// FromCache reports whether lang was served by the translation memory.
func (r *Result) FromCache(lang string) bool {
	for _, l := range r.CachedLangs {
		if l == lang {
			return true
		}
	}
	return false
}

// HeaderLine renders the language-name header row of the bilingual
// tab-delimited output.
func (r *Result) HeaderLine() string {
	names := []string{LangName(r.SourceLang)}
	for _, lang := range r.TargetLangs {
		names = append(names, LangName(lang))
	}
	return strings.Join(names, "\t")
}

// TabLine renders the data row: source column followed by each
// translation in target order.
func (r *Result) TabLine() string {
	fields := []string{r.Source}
	for _, lang := range r.TargetLangs {
		fields = append(fields, r.Translations[lang])
	}
	return strings.Join(fields, "\t")
}

// Service is the translate entry point. It owns no global state: cache
// and ledger are constructed once and passed in.
type Service struct {
	cascade     Caller
	cache       *memory.Cache
	ledger      *budget.Ledger
	system      string
	estimateJPY float64
	gate        Assessor
}

// New wires the orchestrator. The quality gate reverse-translates
// through the service itself.
func New(cascade Caller, cache *memory.Cache, ledger *budget.Ledger, glossaryBlock string) *Service {
	s := &Service{
		cascade:     cascade,
		cache:       cache,
		ledger:      ledger,
		system:      buildSystemContext(glossaryBlock),
		estimateJPY: budget.DefaultCallEstimateJPY,
	}
	s.gate = quality.NewGate(s)
	return s
}

// Translate runs one multi-target translation. Cached targets are free;
// the remaining targets share a single provider call. When the cascade
// fails entirely, translations already resolved from cache are still
// returned alongside the error.
func (s *Service) Translate(ctx context.Context, req Request) (*Result, error) {
	targets := normalizeTargets(req.SourceLang, req.TargetLangs)
	if len(targets) == 0 {
		return nil, ErrNoTargets
	}
	targets = reorder(targets, req.PriorityLang)

	workText := req.Text
	var seg *tagcodec.MaskedSegment
	if req.PreserveTags {
		seg = tagcodec.Mask(req.Text)
		workText = seg.Masked
	}

	result := &Result{
		Source:       req.Text,
		SourceLang:   req.SourceLang,
		TargetLangs:  targets,
		Translations: make(map[string]string),
	}

	// The memory is checked per target: siblings of a hit may still need
	// a provider call.
	var remaining []string
	for _, lang := range targets {
		if e, ok := s.cache.Get(workText, lang); ok {
			result.Translations[lang] = e.Translation
			result.CachedLangs = append(result.CachedLangs, lang)
		} else {
			remaining = append(remaining, lang)
		}
	}

	if len(remaining) == 0 {
		result.Model = MemoryModel
		s.finalize(ctx, req, seg, result)
		return result, nil
	}

	if !s.ledger.CanAfford(s.estimateJPY) {
		return nil, fmt.Errorf("spent ¥%.0f of ¥%.0f ceiling: %w",
			s.ledger.TotalCost(), s.ledger.Ceiling(), budget.ErrExceeded)
	}

	prompt := buildPrompt(workText, req.SourceLang, remaining)
	multi, err := s.cascade.Translate(ctx, s.system, prompt, remaining)
	if err != nil {
		if len(result.CachedLangs) > 0 {
			// Partial success beats all-or-nothing failure.
			result.Model = MemoryModel
			s.finalize(ctx, req, seg, result)
			return result, err
		}
		return nil, err
	}

	for lang, translation := range multi.Translations {
		result.Translations[lang] = translation
		// A blank column means the provider dropped the language; caching
		// it would pin the gap forever.
		if translation != "" {
			s.cache.Put(workText, lang, translation, multi.Provider)
		}
	}
	result.Model = multi.Provider
	result.TokensIn = multi.Response.TokensIn
	result.TokensOut = multi.Response.TokensOut
	result.CachedTokens = multi.Response.CachedTokens
	result.CostJPY = s.ledger.Record(multi.Provider, budget.Usage{
		InputTokens:  multi.Response.TokensIn,
		OutputTokens: multi.Response.TokensOut,
		CachedTokens: multi.Response.CachedTokens,
	})

	s.finalize(ctx, req, seg, result)
	return result, nil
}

// TranslateOne is the single-target convenience used by the quality gate
// for back-translation. It never requests further assessment, which
// keeps the recursion to one level.
func (s *Service) TranslateOne(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	res, err := s.Translate(ctx, Request{
		Text:         text,
		SourceLang:   sourceLang,
		TargetLangs:  []string{targetLang},
		PreserveTags: true,
	})
	if err != nil {
		return "", err
	}
	return res.Translations[targetLang], nil
}

// finalize unmasks every translation, validates tag structure, and runs
// the optional quality gate. All conditions found here are warnings on
// the result; no translation is discarded.
func (s *Service) finalize(ctx context.Context, req Request, seg *tagcodec.MaskedSegment, result *Result) {
	for _, lang := range result.TargetLangs {
		translation, ok := result.Translations[lang]
		if !ok {
			continue
		}

		if seg != nil && seg.TagCount() > 0 {
			restored, leaked := tagcodec.Unmask(translation, seg)
			translation = restored
			result.Translations[lang] = restored

			for _, leak := range leaked {
				result.Warnings = append(result.Warnings, Warning{
					Lang: lang, Kind: WarnPlaceholderLeak,
					Message: fmt.Sprintf("unresolved placeholder %s in %s translation", leak, lang),
				})
			}
			if err := tagcodec.ValidateStructure(req.Text, restored); err != nil {
				result.Warnings = append(result.Warnings, Warning{
					Lang: lang, Kind: WarnStructure, Message: err.Error(),
				})
			}
		}

		if req.Assess && s.gate != nil {
			if result.Assessments == nil {
				result.Assessments = make(map[string]quality.Assessment)
			}
			result.Assessments[lang] = s.gate.Assess(ctx, req.Text, translation, req.SourceLang, lang)
		}
	}
}

// Stats is a point-in-time summary of spending and cache efficiency.
type Stats struct {
	TotalCostJPY float64
	RemainingJPY float64
	UsedPercent  float64
	ByProvider   map[string]float64
	Calls        map[string]int
	CacheEntries int
	CacheHits    int
	CacheMisses  int
	HitRate      float64
}

// Stats reports the current ledger and memory counters.
func (s *Service) Stats() Stats {
	cs := s.cache.Stats()
	return Stats{
		TotalCostJPY: s.ledger.TotalCost(),
		RemainingJPY: s.ledger.Remaining(),
		UsedPercent:  s.ledger.UsedPercent(),
		ByProvider:   s.ledger.ByProvider(),
		Calls:        s.ledger.Calls(),
		CacheEntries: cs.Entries,
		CacheHits:    cs.Hits,
		CacheMisses:  cs.Misses,
		HitRate:      s.cache.HitRate(),
	}
}

func normalizeTargets(sourceLang string, targets []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, t := range targets {
		t = strings.TrimSpace(strings.ToLower(t))
		if t == "" || t == sourceLang || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func reorder(targets []string, priority string) []string {
	if priority == "" {
		return targets
	}
	for i, t := range targets {
		if t == priority && i > 0 {
			reordered := append([]string{t}, targets[:i]...)
			return append(reordered, targets[i+1:]...)
		}
	}
	return targets
}
