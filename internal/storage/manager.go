// Package storage provides the top-level StorageManager that coordinates
// the 3 storage areas: internaldb, earningsdb, and holdingsdb.
package storage

import (
	"fmt"

	"github.com/asheeshm/paperhouse/internal/common"
	"github.com/asheeshm/paperhouse/internal/interfaces"
	"github.com/asheeshm/paperhouse/internal/storage/earningsdb"
	"github.com/asheeshm/paperhouse/internal/storage/holdingsdb"
	"github.com/asheeshm/paperhouse/internal/storage/internaldb"
)

// Manager implements interfaces.StorageManager using 3 storage areas.
type Manager struct {
	internal *internaldb.Store
	earnings *earningsdb.Store
	holdings *holdingsdb.Store
	logger   *common.Logger
}

// NewManager creates a new StorageManager with the 3 storage areas.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	internalStore, err := internaldb.NewStore(logger, config.Storage.Internal.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create internal store: %w", err)
	}

	earningsStore, err := earningsdb.NewStore(logger, config.Storage.Earnings.Path)
	if err != nil {
		internalStore.Close()
		return nil, fmt.Errorf("failed to create earnings store: %w", err)
	}

	holdingsStore, err := holdingsdb.NewStore(logger, config.Storage.Holdings.Path)
	if err != nil {
		internalStore.Close()
		earningsStore.Close()
		return nil, fmt.Errorf("failed to create holdings store: %w", err)
	}

	logger.Info().
		Str("internal", config.Storage.Internal.Path).
		Str("earnings", config.Storage.Earnings.Path).
		Str("holdings", config.Storage.Holdings.Path).
		Msg("Storage manager initialized (3 areas)")

	return &Manager{
		internal: internalStore,
		earnings: earningsStore,
		holdings: holdingsStore,
		logger:   logger,
	}, nil
}

func (m *Manager) InternalStore() interfaces.InternalStore {
	return m.internal
}

func (m *Manager) EarningsStore() interfaces.EarningsStore {
	return m.earnings
}

func (m *Manager) HoldingsStore() interfaces.HoldingsStore {
	return m.holdings
}

func (m *Manager) Close() error {
	var firstErr error
	if err := m.internal.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := m.earnings.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := m.holdings.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Compile-time check
var _ interfaces.StorageManager = (*Manager)(nil)
