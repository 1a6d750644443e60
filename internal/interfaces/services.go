package interfaces

import (
	"context"

	"github.com/asheeshm/paperhouse/internal/models"
)

// ValuationService computes a user's current total portfolio value.
type ValuationService interface {
	// Value returns cash + Σ quantity × price over the user's holdings.
	// Holdings without a live oracle price contribute quantity × avgCost and
	// flag the valuation as degraded. Returns models.ErrUserNotFound for an
	// unknown user; never fails on missing price data.
	Value(ctx context.Context, userID string) (*models.Valuation, error)
}

// EarningsService is the write-back earnings cache plus reset reconciler.
type EarningsService interface {
	// Provision creates a fresh aggregate baselined at endowment so day-1
	// profit reads zero. Idempotent for an already-provisioned user.
	Provision(ctx context.Context, userID string, endowment float64) (*models.UserAggregate, error)

	// Get returns the cached aggregate, lazily loading from the durable
	// store. A known account with no persisted aggregate gets a fresh one
	// baselined at its recorded endowment. models.ErrUserNotFound for
	// unknown users; models.ErrTemporarilyUnavailable when a cold-start
	// miss coincides with a store outage.
	Get(ctx context.Context, userID string) (*models.UserAggregate, error)

	// ApplyValuation reconciles period boundaries and applies the new value
	// atomically for the user, marking the entry dirty for the next flush.
	ApplyValuation(ctx context.Context, userID string, newValue float64) (*models.UserAggregate, error)

	// RecordTransaction runs a fresh valuation and applies it, counting one
	// trade toward the day's snapshot. Called after every buy/sell.
	RecordTransaction(ctx context.Context, userID string) (*models.UserAggregate, error)

	// FlushAll writes every dirty aggregate and its daily snapshot to the
	// durable store. Entries that fail to persist stay dirty and are retried
	// on the next cycle.
	FlushAll(ctx context.Context) error

	// Snapshot returns a point-in-time copy of all cached aggregates.
	Snapshot() []*models.UserAggregate
}

// LeaderboardService ranks the aggregate set for a period.
type LeaderboardService interface {
	// Rank sorts descending by the period's profit (ties broken by userID
	// ascending), assigns ranks, and applies smart truncation around
	// requestingUserID. requestingUserID may be empty.
	Rank(ctx context.Context, period models.LeaderboardPeriod, requestingUserID string) ([]*models.LeaderboardEntry, error)
}
