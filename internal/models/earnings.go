// Package models defines the data structures for Paperhouse.
package models

import "time"

// UserAggregate is the per-user rolled-up profit record. The earnings cache
// exclusively owns the in-memory copy for the lifetime of the process; the
// durable store owns the authoritative copy across restarts.
//
// Invariants (whenever LastDayKey matches the current IST day key):
//
//	DayProfit   == CurrentPortfolioValue - DayBaselineValue
//	MonthProfit == CurrentPortfolioValue - MonthBaselineValue
//	LifetimeProfit == CurrentPortfolioValue - InitialEndowment (always)
type UserAggregate struct {
	UserID string `json:"user_id" badgerhold:"key"`

	DayProfit      float64 `json:"day_profit"`
	MonthProfit    float64 `json:"month_profit"`
	LifetimeProfit float64 `json:"lifetime_profit"`

	// Boundary clock checkpoints marking the last period this aggregate was
	// rolled for ("2006-01-02" / "2006-01" in IST).
	LastDayKey   string `json:"last_day_key"`
	LastMonthKey string `json:"last_month_key"`

	// Portfolio value snapshots taken at the start of the current day/month.
	DayBaselineValue   float64 `json:"day_baseline_value"`
	MonthBaselineValue float64 `json:"month_baseline_value"`

	// InitialEndowment is the constant lifetime baseline (starting wallet).
	InitialEndowment float64 `json:"initial_endowment"`

	CurrentPortfolioValue  float64 `json:"current_portfolio_value"`
	PreviousPortfolioValue float64 `json:"previous_portfolio_value"`

	// DayTradeCount counts transactions recorded in the current day; reset on
	// day rollover and carried into the day's snapshot.
	DayTradeCount int `json:"day_trade_count"`

	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

// Clone returns a deep copy. Aggregates contain no reference fields, so a
// value copy suffices; the method keeps call sites explicit about intent.
func (a *UserAggregate) Clone() *UserAggregate {
	c := *a
	return &c
}

// DailySnapshot is the immutable once-per-(user, day) record appended to the
// charting time series. It is upserted during flushes within its day and
// never mutated after the day rolls over.
type DailySnapshot struct {
	ID             string    `json:"id" badgerhold:"key"` // userID + "\x00" + dayKey
	UserID         string    `json:"user_id" badgerhold:"index"`
	DayKey         string    `json:"day_key"`
	PortfolioValue float64   `json:"portfolio_value"`
	ProfitDelta    float64   `json:"profit_delta"`
	TradeCount     int       `json:"trade_count"`
	CreatedAt      time.Time `json:"created_at"`
	ModifiedAt     time.Time `json:"modified_at"`
}

// LeaderboardPeriod selects which profit figure a leaderboard is ranked by.
type LeaderboardPeriod string

const (
	PeriodDay     LeaderboardPeriod = "day"
	PeriodMonth   LeaderboardPeriod = "month"
	PeriodOverall LeaderboardPeriod = "overall"
)

// Valid reports whether the period is one of day, month, or overall.
func (p LeaderboardPeriod) Valid() bool {
	return p == PeriodDay || p == PeriodMonth || p == PeriodOverall
}

// ProfitFor returns the aggregate's profit figure for this period.
func (p LeaderboardPeriod) ProfitFor(a *UserAggregate) float64 {
	switch p {
	case PeriodDay:
		return a.DayProfit
	case PeriodMonth:
		return a.MonthProfit
	default:
		return a.LifetimeProfit
	}
}

// LeaderboardEntry is a derived, non-persisted ranking row.
type LeaderboardEntry struct {
	UserID      string  `json:"user_id"`
	DisplayName string  `json:"display_name"`
	Rank        int     `json:"rank"`
	Profit      float64 `json:"profit"`
}

// LeaderboardUpdate is the payload pushed to live leaderboard subscribers.
type LeaderboardUpdate struct {
	Period    LeaderboardPeriod   `json:"period"`
	Entries   []*LeaderboardEntry `json:"entries"`
	Timestamp time.Time           `json:"timestamp"`
}

// Valuation is the result of a portfolio valuation run.
type Valuation struct {
	UserID string  `json:"user_id"`
	Total  float64 `json:"total"`

	// Degraded is set when one or more holdings were priced at average cost
	// because the oracle had no live price. Observable, not an error.
	Degraded       bool     `json:"degraded,omitempty"`
	MissingSymbols []string `json:"missing_symbols,omitempty"`
}

// Earnings is the user-facing earnings summary served from the cache.
type Earnings struct {
	UserID                string  `json:"user_id"`
	DayProfit             float64 `json:"day_profit"`
	MonthProfit           float64 `json:"month_profit"`
	LifetimeProfit        float64 `json:"lifetime_profit"`
	CurrentPortfolioValue float64 `json:"current_portfolio_value"`
}
