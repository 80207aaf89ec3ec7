// Package processor drives the translation workflow: it wires the
// provider cascade, translation memory, budget ledger, and glossary into
// an orchestrator, then runs single-segment or file-based translations
// and writes per-language bilingual output files.
package processor
