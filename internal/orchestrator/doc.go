// Package orchestrator composes the tag codec, translation memory,
// budget ledger and provider cascade into the translate entry point:
// one source text fanned out to many target languages in a single
// provider call, with caching, cost control and structural validation.
package orchestrator
