// Package budget prices model API usage and enforces a hard spending
// ceiling. Each provider carries three unit prices per million tokens
// (input, cached input, output); costs are converted to Japanese yen at
// a fixed exchange rate. Affordability is checked before a call is
// dispatched; the ceiling is a hard stop, never a routing hint.
package budget
