// Package interfaces defines service and storage contracts for Paperhouse.
package interfaces

import (
	"context"

	"github.com/asheeshm/paperhouse/internal/models"
)

// StorageManager coordinates all storage areas.
type StorageManager interface {
	InternalStore() InternalStore
	EarningsStore() EarningsStore
	HoldingsStore() HoldingsStore

	// Lifecycle
	Close() error
}

// InternalStore manages user accounts and system-level KV.
type InternalStore interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
	SaveUser(ctx context.Context, user *models.User) error
	ListUsers(ctx context.Context) ([]*models.User, error)

	GetSystemKV(ctx context.Context, key string) (string, error)
	SetSystemKV(ctx context.Context, key, value string) error

	Close() error
}

// EarningsStore is the durable side of the write-back earnings cache:
// authoritative across restarts, eventually consistent during operation.
type EarningsStore interface {
	// LoadAggregate returns models.ErrAggregateNotFound when the user has no
	// persisted aggregate.
	LoadAggregate(ctx context.Context, userID string) (*models.UserAggregate, error)
	SaveAggregate(ctx context.Context, agg *models.UserAggregate) error

	// ListAggregates returns every persisted aggregate (cache warm on startup).
	ListAggregates(ctx context.Context) ([]*models.UserAggregate, error)

	// UpsertSnapshot creates or updates the (user, day) snapshot. Snapshots
	// for past days are never touched by the engine.
	UpsertSnapshot(ctx context.Context, snap *models.DailySnapshot) error

	// ListSnapshots returns a user's snapshots with day keys in [from, to],
	// oldest first. Empty bounds are open.
	ListSnapshots(ctx context.Context, userID, from, to string) ([]*models.DailySnapshot, error)

	Close() error
}

// HoldingsStore is the order-execution collaborator's view of wallets and
// positions. The earnings engine only reads it during valuation.
type HoldingsStore interface {
	GetWallet(ctx context.Context, userID string) (*models.Wallet, error)
	SaveWallet(ctx context.Context, wallet *models.Wallet) error

	GetHoldings(ctx context.Context, userID string) ([]*models.Holding, error)
	SaveHolding(ctx context.Context, holding *models.Holding) error

	Close() error
}
