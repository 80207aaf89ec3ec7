// Package memory implements the translation memory: a content-addressed
// cache of previously produced translations keyed by source text and
// target language. A hit makes a repeated translation free. Entries can
// be persisted to a SQLite database so the memory survives restarts.
package memory
