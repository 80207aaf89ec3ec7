// Package tagcodec detects inline markup in source text and replaces it
// with opaque placeholders before translation, so that formatting tags
// survive the round trip through a language model untouched. It also
// validates that tag count, kind, and order are preserved between a
// source text and its translation.
package tagcodec
