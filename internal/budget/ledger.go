package budget

import (
	"errors"
	"sync"
)

// ErrExceeded is returned when dispatching a call would breach the ceiling.
var ErrExceeded = errors.New("budget limit reached")

// Price holds a provider's unit prices in USD per million tokens.
// Providers with prompt caching charge CachedInput, a fraction of Input,
// for tokens served from their own cache.
type Price struct {
	Input       float64
	CachedInput float64
	Output      float64
}

// Defaults, matching the current provider price sheets.
const (
	// DefaultUSDToJPY converts ledger costs into the display currency.
	DefaultUSDToJPY = 152.0
	// DefaultCeilingJPY is the spending ceiling when none is configured.
	DefaultCeilingJPY = 30000.0
	// DefaultCallEstimateJPY is the conservative flat per-call estimate
	// used by the affordability check before real usage is known.
	DefaultCallEstimateJPY = 100.0
)

// DefaultPrices returns the built-in price table, cheapest provider first.
func DefaultPrices() map[string]Price {
	return map[string]Price{
		"grok-4.1-fast":     {Input: 0.20, CachedInput: 0.02, Output: 0.50},
		"gemini-3-flash":    {Input: 0.50, CachedInput: 0.125, Output: 3.00},
		"claude-sonnet-4-5": {Input: 3.00, CachedInput: 0.30, Output: 15.00},
	}
}

// Usage is one provider call's measured token counts. CachedTokens is the
// provider-reported subset of InputTokens served from its prompt cache.
type Usage struct {
	InputTokens  int
	OutputTokens int
	CachedTokens int
}

// Ledger tracks spending against the ceiling. The running total only ever
// grows. Safe for concurrent use; cost recording is atomic per call.
type Ledger struct {
	mu       sync.Mutex
	prices   map[string]Price
	rate     float64
	ceiling  float64
	totalUSD float64
	byProv   map[string]float64 // JPY subtotals
	calls    map[string]int
}

// NewLedger creates a ledger with the given price table, USD→JPY rate and
// ceiling in JPY.
func NewLedger(prices map[string]Price, usdToJPY, ceilingJPY float64) *Ledger {
	if prices == nil {
		prices = DefaultPrices()
	}
	return &Ledger{
		prices:  prices,
		rate:    usdToJPY,
		ceiling: ceilingJPY,
		byProv:  make(map[string]float64),
		calls:   make(map[string]int),
	}
}

// CanAfford reports whether spending estimateJPY more would stay within
// the ceiling.
func (l *Ledger) CanAfford(estimateJPY float64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totalUSD*l.rate+estimateJPY <= l.ceiling
}

// Cost prices a usage for a provider without recording it, in JPY.
// An unknown provider prices at zero.
func (l *Ledger) Cost(providerID string, u Usage) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.costLocked(providerID, u)
}

func (l *Ledger) costLocked(providerID string, u Usage) float64 {
	p, ok := l.prices[providerID]
	if !ok {
		return 0
	}
	uncached := u.InputTokens - u.CachedTokens
	if uncached < 0 {
		uncached = 0
	}
	usd := float64(u.CachedTokens)/1e6*p.CachedInput +
		float64(uncached)/1e6*p.Input +
		float64(u.OutputTokens)/1e6*p.Output
	return usd * l.rate
}

// Record applies the actual measured cost of a completed call and returns
// it in JPY. A call already in flight is never blocked retroactively, so
// the total may overshoot the ceiling by at most one call's real cost.
func (l *Ledger) Record(providerID string, u Usage) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	costJPY := l.costLocked(providerID, u)
	l.totalUSD += costJPY / l.rate
	l.byProv[providerID] += costJPY
	l.calls[providerID]++
	return costJPY
}

// TotalCost returns the running total in JPY.
func (l *Ledger) TotalCost() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totalUSD * l.rate
}

// Remaining returns how much of the ceiling is left, in JPY.
func (l *Ledger) Remaining() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ceiling - l.totalUSD*l.rate
}

// Ceiling returns the configured ceiling in JPY.
func (l *Ledger) Ceiling() float64 { return l.ceiling }

// UsedPercent returns how much of the ceiling has been spent.
func (l *Ledger) UsedPercent() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ceiling == 0 {
		return 0
	}
	return l.totalUSD * l.rate / l.ceiling * 100
}

// ByProvider returns a copy of the per-provider JPY subtotals.
func (l *Ledger) ByProvider() map[string]float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]float64, len(l.byProv))
	for k, v := range l.byProv {
		out[k] = v
	}
	return out
}

// Calls returns a copy of the per-provider call counts.
func (l *Ledger) Calls() map[string]int {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]int, len(l.calls))
	for k, v := range l.calls {
		out[k] = v
	}
	return out
}
