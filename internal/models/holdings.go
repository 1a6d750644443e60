package models

import "time"

// Wallet is a user's virtual cash balance. Owned by the order-execution side;
// the earnings engine only reads it during valuation.
type Wallet struct {
	UserID     string    `json:"user_id" badgerhold:"key"`
	Cash       float64   `json:"cash"`
	ModifiedAt time.Time `json:"modified_at"`
}

// Holding is one open position in a user's simulated portfolio.
type Holding struct {
	ID         string    `json:"id" badgerhold:"key"` // userID + "\x00" + symbol
	UserID     string    `json:"user_id" badgerhold:"index"`
	Symbol     string    `json:"symbol"`
	Quantity   float64   `json:"quantity"`
	AvgCost    float64   `json:"avg_cost"` // per-unit average buy price
	ModifiedAt time.Time `json:"modified_at"`
}

// MarketValue prices the holding at the given per-unit price.
func (h *Holding) MarketValue(price float64) float64 {
	return h.Quantity * price
}
