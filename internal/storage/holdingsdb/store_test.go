package holdingsdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asheeshm/paperhouse/internal/common"
	"github.com/asheeshm/paperhouse/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(common.NewSilentLogger(), t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestWalletRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveWallet(ctx, &models.Wallet{UserID: "u1", Cash: 90000}))

	wallet, err := store.GetWallet(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 90000.0, wallet.Cash)
	assert.False(t, wallet.ModifiedAt.IsZero())
}

func TestGetWallet_UnknownUser(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetWallet(context.Background(), "ghost")
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestHoldings_SaveAndList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveHolding(ctx, &models.Holding{
		UserID: "u1", Symbol: "RELIANCE", Quantity: 4, AvgCost: 2800,
	}))
	require.NoError(t, store.SaveHolding(ctx, &models.Holding{
		UserID: "u1", Symbol: "TCS", Quantity: 2, AvgCost: 3600,
	}))
	require.NoError(t, store.SaveHolding(ctx, &models.Holding{
		UserID: "u2", Symbol: "INFY", Quantity: 10, AvgCost: 1500,
	}))

	holdings, err := store.GetHoldings(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, holdings, 2)
	for _, h := range holdings {
		assert.Equal(t, "u1", h.UserID)
	}
}

func TestHoldings_UpsertSameSymbol(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveHolding(ctx, &models.Holding{
		UserID: "u1", Symbol: "TCS", Quantity: 2, AvgCost: 3600,
	}))
	require.NoError(t, store.SaveHolding(ctx, &models.Holding{
		UserID: "u1", Symbol: "TCS", Quantity: 5, AvgCost: 3650,
	}))

	holdings, err := store.GetHoldings(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.Equal(t, 5.0, holdings[0].Quantity)
	assert.Equal(t, 3650.0, holdings[0].AvgCost)
}

func TestHoldings_ClosedPositionsExcluded(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveHolding(ctx, &models.Holding{
		UserID: "u1", Symbol: "TCS", Quantity: 0, AvgCost: 3600,
	}))

	holdings, err := store.GetHoldings(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, holdings)
}

func TestSaveHolding_RequiresKeys(t *testing.T) {
	store := newTestStore(t)
	err := store.SaveHolding(context.Background(), &models.Holding{UserID: "u1"})
	assert.Error(t, err)
}
