package internaldb

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

func TestUserRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveUser(ctx, &models.User{
		UserID: "u1", DisplayName: "Asha", Endowment: 100000,
	}))

	user, err := store.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Asha", user.DisplayName)
	assert.Equal(t, 100000.0, user.Endowment)
	assert.False(t, user.CreatedAt.IsZero())
}

func TestGetUser_NotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetUser(context.Background(), "ghost")
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestSaveUser_EmptyIDRejected(t *testing.T) {
	store := newTestStore(t)
	err := store.SaveUser(context.Background(), &models.User{DisplayName: "nobody"})
	assert.Error(t, err)
}

func TestSaveUser_UpdatePreservesCreatedAt(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveUser(ctx, &models.User{UserID: "u1", DisplayName: "Asha"}))
	first, err := store.GetUser(ctx, "u1")
	require.NoError(t, err)

	require.NoError(t, store.SaveUser(ctx, &models.User{UserID: "u1", DisplayName: "Asha B"}))
	second, err := store.GetUser(ctx, "u1")
	require.NoError(t, err)

	assert.Equal(t, "Asha B", second.DisplayName)
	assert.Equal(t, first.CreatedAt.Unix(), second.CreatedAt.Unix())
}

func TestListUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.SaveUser(ctx, &models.User{UserID: id}))
	}
	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 3)
}

func TestSystemKV(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	val, err := store.GetSystemKV(ctx, "schema_version")
	require.NoError(t, err)
	assert.Empty(t, val)

	require.NoError(t, store.SetSystemKV(ctx, "schema_version", "3"))
	val, err = store.GetSystemKV(ctx, "schema_version")
	require.NoError(t, err)
	assert.Equal(t, "3", val)
}
