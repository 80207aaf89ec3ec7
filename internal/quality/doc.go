// Package quality estimates translation reliability after the fact by
// back-translating the output to the source language, scoring lexical
// overlap with the original, and flagging low-confidence results for
// human review.
package quality
