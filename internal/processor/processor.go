package processor

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"codeberg.org/tkimura/transflow/internal"
	"codeberg.org/tkimura/transflow/internal/budget"
	"codeberg.org/tkimura/transflow/internal/cli"
	"codeberg.org/tkimura/transflow/internal/glossary"
	"codeberg.org/tkimura/transflow/internal/memory"
	"codeberg.org/tkimura/transflow/internal/orchestrator"
	"codeberg.org/tkimura/transflow/internal/provider"
	"codeberg.org/tkimura/transflow/internal/quality"
)

// Processor handles the main translation workflow
type Processor struct {
	flags *cli.Flags
	svc   *orchestrator.Service
	cache *memory.Cache
}

// NewProcessor wires the full pipeline from command-line flags: provider
// cascade, persistent memory, budget ledger, and glossary.
func NewProcessor(ctx context.Context, flags *cli.Flags) (*Processor, error) {
	cfg := provider.DefaultConfig()
	cfg.GrokKey = cli.GetGrokKey()
	cfg.GeminiKey = cli.GetGeminiKey()
	cfg.ClaudeKey = cli.GetClaudeKey()
	if flags.GrokModel != "" {
		cfg.GrokModel = flags.GrokModel
	}
	if flags.GeminiModel != "" {
		cfg.GeminiModel = flags.GeminiModel
	}
	if flags.ClaudeModel != "" {
		cfg.ClaudeModel = flags.ClaudeModel
	}

	// Statistics need the memory and ledger only, so a missing API key
	// must not block --stats.
	var caller orchestrator.Caller
	cascade, err := provider.NewCascade(ctx, cfg)
	if err != nil {
		if !flags.ShowStats {
			return nil, err
		}
	} else {
		caller = cascade
	}

	cache, err := openMemory(flags.MemoryPath, flags.MemoryMax)
	if err != nil {
		return nil, err
	}

	gloss, err := glossary.Load(flags.GlossaryFile)
	if err != nil {
		cache.Close()
		return nil, fmt.Errorf("failed to load glossary: %w", err)
	}

	ledger := budget.NewLedger(nil, budget.DefaultUSDToJPY, flags.BudgetJPY)
	svc := orchestrator.New(caller, cache, ledger, gloss.SystemContext())

	return &Processor{flags: flags, svc: svc, cache: cache}, nil
}

// NewProcessorWithService is the test seam: it skips provider and store
// construction entirely.
func NewProcessorWithService(flags *cli.Flags, svc *orchestrator.Service, cache *memory.Cache) *Processor {
	return &Processor{flags: flags, svc: svc, cache: cache}
}

func openMemory(path string, maxEntries int) (*memory.Cache, error) {
	if path == "" {
		return memory.New(nil, maxEntries)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create memory directory: %w", err)
	}
	store, err := memory.OpenSQLite(path)
	if err != nil {
		// A broken store must not block translation.
		fmt.Fprintf(os.Stderr, "Warning: translation memory unavailable, continuing in-memory only: %v\n", err)
		return memory.New(nil, maxEntries)
	}
	cache, err := memory.New(store, maxEntries)
	if err != nil {
		store.Close()
		fmt.Fprintf(os.Stderr, "Warning: translation memory unavailable, continuing in-memory only: %v\n", err)
		return memory.New(nil, maxEntries)
	}
	return cache, nil
}

// Close releases the translation memory store.
func (p *Processor) Close() error {
	if p.cache == nil {
		return nil
	}
	return p.cache.Close()
}

func (p *Processor) request(text string) orchestrator.Request {
	req := orchestrator.Request{
		Text:         text,
		SourceLang:   p.flags.SourceLang,
		TargetLangs:  p.flags.TargetLangs,
		PreserveTags: p.flags.PreserveTags,
		Assess:       p.flags.Assess,
	}
	if p.flags.EnglishFirst {
		req.PriorityLang = "en"
	}
	return req
}

// ProcessText translates a single segment and prints the result per
// target language.
func (p *Processor) ProcessText(ctx context.Context, text string) error {
	fmt.Printf("\nTranslating: %s\n", text)

	res, err := p.svc.Translate(ctx, p.request(text))
	if err != nil {
		if res == nil {
			return err
		}
		// Cached partials survived the failure.
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	p.printResult(res)
	return nil
}

// ProcessFile translates a text file segment-by-line and writes one
// bilingual tab-delimited file per target language.
func (p *Processor) ProcessFile(ctx context.Context, path string) error {
	segments, err := readSegments(path)
	if err != nil {
		return err
	}
	if len(segments) == 0 {
		return fmt.Errorf("no segments found in %s", path)
	}

	// Create output directory (including parent directories)
	if err := os.MkdirAll(p.flags.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var results []*orchestrator.Result
	errorCount := 0
	reviewCount := 0
	for i, segment := range segments {
		fmt.Printf("\nProcessing %d/%d: %s\n", i+1, len(segments), snippet(segment, 60))

		res, err := p.svc.Translate(ctx, p.request(segment))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error translating segment %d: %v\n", i+1, err)
			errorCount++
			if res == nil {
				continue
			}
		}
		p.printResult(res)
		if lowConfidence(res) {
			reviewCount++
		}
		results = append(results, res)
	}

	if len(results) > 0 {
		if err := p.writeBilingualFiles(path, results); err != nil {
			return err
		}
	}

	// Print summary
	stats := p.svc.Stats()
	fmt.Printf("\n=== Translation Summary ===\n")
	fmt.Printf("Segments: %d\n", len(segments))
	fmt.Printf("Translated: %d\n", len(results))
	if errorCount > 0 {
		fmt.Printf("Errors: %d\n", errorCount)
	}
	if reviewCount > 0 {
		fmt.Printf("Flagged for review: %d\n", reviewCount)
	}
	fmt.Printf("Session cost: ¥%.2f\n", stats.TotalCostJPY)
	fmt.Printf("Cache hit rate: %.1f%%\n", stats.HitRate)
	fmt.Printf("===========================\n")

	return nil
}

// writeBilingualFiles writes one tab-delimited source/translation file
// per target language next to the other outputs.
func (p *Processor) writeBilingualFiles(inputPath string, results []*orchestrator.Result) error {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))

	for _, lang := range results[0].TargetLangs {
		name := fmt.Sprintf("%s_%s.txt", internal.SanitizeFilename(base),
			internal.SanitizeFilename(orchestrator.LangName(lang)))
		outPath := filepath.Join(p.flags.OutputDir, name)

		var b strings.Builder
		fmt.Fprintf(&b, "%s\t%s\n", orchestrator.LangName(results[0].SourceLang), orchestrator.LangName(lang))
		for _, res := range results {
			translation, ok := res.Translations[lang]
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "%s\t%s\n", res.Source, translation)
		}

		if err := os.WriteFile(outPath, []byte(b.String()), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", outPath, err)
		}
		fmt.Printf("Wrote %s\n", outPath)
	}
	return nil
}

func (p *Processor) printResult(res *orchestrator.Result) {
	for _, lang := range res.TargetLangs {
		translation, ok := res.Translations[lang]
		if !ok {
			continue
		}
		marker := ""
		if res.FromCache(lang) {
			marker = " (cached)"
		}
		fmt.Printf("  %s: %s%s\n", orchestrator.LangName(lang), translation, marker)
	}

	for _, w := range res.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s [%s]: %s\n", w.Kind, w.Lang, w.Message)
	}

	for _, lang := range res.TargetLangs {
		a, ok := res.Assessments[lang]
		if !ok {
			continue
		}
		if a.FlagForReview {
			fmt.Printf("  Review %s (%s, similarity %.2f, priority %s): %s\n",
				orchestrator.LangName(lang), a.Confidence, a.Similarity, a.Priority, a.RecommendedAction)
		} else {
			fmt.Printf("  Quality %s: %s (similarity %.2f)\n",
				orchestrator.LangName(lang), a.Confidence, a.Similarity)
		}
	}

	if res.CostJPY > 0 {
		fmt.Printf("  Model: %s, cost ¥%.2f\n", res.Model, res.CostJPY)
	} else if res.Model == orchestrator.MemoryModel {
		fmt.Printf("  Served entirely from translation memory\n")
	}
}

// ShowStats prints the spending and cache summary.
func (p *Processor) ShowStats() {
	stats := p.svc.Stats()

	fmt.Printf("=== Budget ===\n")
	fmt.Printf("Spent: ¥%.2f of ¥%.2f (%.1f%%)\n", stats.TotalCostJPY,
		stats.TotalCostJPY+stats.RemainingJPY, stats.UsedPercent)
	fmt.Printf("Remaining: ¥%.2f\n", stats.RemainingJPY)

	providers := make([]string, 0, len(stats.ByProvider))
	for name := range stats.ByProvider {
		providers = append(providers, name)
	}
	sort.Strings(providers)
	for _, name := range providers {
		fmt.Printf("  %s: ¥%.2f over %d calls\n", name, stats.ByProvider[name], stats.Calls[name])
	}

	fmt.Printf("\n=== Translation memory ===\n")
	fmt.Printf("Entries: %d\n", stats.CacheEntries)
	fmt.Printf("Hits: %d, misses: %d (%.1f%% hit rate)\n", stats.CacheHits, stats.CacheMisses, stats.HitRate)
}

func readSegments(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	var segments []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		segments = append(segments, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	return segments, nil
}

func snippet(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}

// lowConfidence reports whether any assessment in the result sits below
// the review threshold.
func lowConfidence(res *orchestrator.Result) bool {
	for _, a := range res.Assessments {
		if a.FlagForReview || a.Confidence == quality.ConfidenceError {
			return true
		}
	}
	return false
}
