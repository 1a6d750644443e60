package interfaces

import "context"

// PriceOracle maps a symbol to its last traded price. Implementations must
// bound each lookup (timeout, rate limit) rather than block valuation.
type PriceOracle interface {
	// Lookup returns the last price for symbol. ok is false when the oracle
	// has no price (stale, unknown symbol, transport failure) — callers
	// degrade to last-known average cost, they do not fail.
	Lookup(ctx context.Context, symbol string) (price float64, ok bool)
}
