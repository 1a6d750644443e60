package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asheeshm/paperhouse/internal/common"
	"github.com/asheeshm/paperhouse/internal/services/earnings"
	"github.com/asheeshm/paperhouse/internal/services/leaderboard"
	"github.com/asheeshm/paperhouse/internal/services/valuation"
	"github.com/asheeshm/paperhouse/internal/storage"
)

// noPriceOracle answers every lookup with no price.
type noPriceOracle struct{}

func (noPriceOracle) Lookup(_ context.Context, _ string) (float64, bool) { return 0, false }

func newTestStack(t *testing.T) (*earnings.Service, *leaderboard.Service, *leaderboard.WSHub, *storage.Manager) {
	t.Helper()

	config := common.NewDefaultConfig()
	config.Storage.Internal.Path = t.TempDir()
	config.Storage.Earnings.Path = t.TempDir()
	config.Storage.Holdings.Path = t.TempDir()

	logger := common.NewSilentLogger()
	manager, err := storage.NewManager(logger, config)
	require.NoError(t, err)
	t.Cleanup(func() { manager.Close() })

	valuationService := valuation.NewService(manager.HoldingsStore(), noPriceOracle{}, logger)
	earningsService := earnings.NewService(manager.EarningsStore(), valuationService, manager.InternalStore(), logger)
	leaderboardService := leaderboard.NewService(earningsService, manager.InternalStore(), logger)
	hub := leaderboard.NewWSHub(logger)
	go hub.Run()
	t.Cleanup(hub.Stop)

	return earningsService, leaderboardService, hub, manager
}

func TestFlushCycle_PersistsDirtyAggregates(t *testing.T) {
	earningsService, leaderboardService, hub, manager := newTestStack(t)
	ctx := context.Background()

	_, err := earningsService.Provision(ctx, "u1", 100000)
	require.NoError(t, err)
	_, err = earningsService.ApplyValuation(ctx, "u1", 102000)
	require.NoError(t, err)

	flushCycle(ctx, earningsService, leaderboardService, hub, common.NewSilentLogger())

	persisted, err := manager.EarningsStore().LoadAggregate(ctx, "u1")
	require.NoError(t, err)
	assert.InDelta(t, 102000.0, persisted.CurrentPortfolioValue, 1e-9)

	snaps, err := manager.EarningsStore().ListSnapshots(ctx, "u1", "", "")
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.InDelta(t, 2000.0, snaps[0].ProfitDelta, 1e-9)
}

func TestFlushCycle_SurvivesRestart(t *testing.T) {
	earningsService, leaderboardService, hub, manager := newTestStack(t)
	ctx := context.Background()

	_, err := earningsService.Provision(ctx, "u1", 100000)
	require.NoError(t, err)
	_, err = earningsService.ApplyValuation(ctx, "u1", 105000)
	require.NoError(t, err)
	flushCycle(ctx, earningsService, leaderboardService, hub, common.NewSilentLogger())

	// A second service instance against the same store stands in for a
	// process restart.
	logger := common.NewSilentLogger()
	reborn := earnings.NewService(manager.EarningsStore(), valuation.NewService(manager.HoldingsStore(), noPriceOracle{}, logger), manager.InternalStore(), logger)
	require.NoError(t, reborn.WarmCache(ctx))

	agg, err := reborn.Get(ctx, "u1")
	require.NoError(t, err)
	assert.InDelta(t, 105000.0, agg.CurrentPortfolioValue, 1e-9)
	assert.InDelta(t, 5000.0, agg.LifetimeProfit, 1e-9)
}
