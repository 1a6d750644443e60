package leaderboard

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asheeshm/paperhouse/internal/common"
	"github.com/asheeshm/paperhouse/internal/models"
)

// mockEarnings serves a fixed aggregate population for ranking tests.
type mockEarnings struct {
	aggs []*models.UserAggregate
}

func (m *mockEarnings) Provision(_ context.Context, _ string, _ float64) (*models.UserAggregate, error) {
	return nil, nil
}
func (m *mockEarnings) Get(_ context.Context, _ string) (*models.UserAggregate, error) {
	return nil, nil
}
func (m *mockEarnings) ApplyValuation(_ context.Context, _ string, _ float64) (*models.UserAggregate, error) {
	return nil, nil
}
func (m *mockEarnings) RecordTransaction(_ context.Context, _ string) (*models.UserAggregate, error) {
	return nil, nil
}
func (m *mockEarnings) FlushAll(_ context.Context) error { return nil }
func (m *mockEarnings) Snapshot() []*models.UserAggregate {
	return m.aggs
}

// mockUsers resolves display names for a subset of users.
type mockUsers struct {
	names map[string]string
}

func (m *mockUsers) GetUser(_ context.Context, userID string) (*models.User, error) {
	name, ok := m.names[userID]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	return &models.User{UserID: userID, DisplayName: name}, nil
}

func (m *mockUsers) SaveUser(_ context.Context, _ *models.User) error    { return nil }
func (m *mockUsers) ListUsers(_ context.Context) ([]*models.User, error) { return nil, nil }
func (m *mockUsers) GetSystemKV(_ context.Context, _ string) (string, error) {
	return "", nil
}
func (m *mockUsers) SetSystemKV(_ context.Context, _, _ string) error { return nil }
func (m *mockUsers) Close() error                                     { return nil }

// population builds n aggregates with day profit descending by index:
// user-00 has the highest profit, user-(n-1) the lowest.
func population(n int) []*models.UserAggregate {
	aggs := make([]*models.UserAggregate, 0, n)
	for i := 0; i < n; i++ {
		aggs = append(aggs, &models.UserAggregate{
			UserID:         fmt.Sprintf("user-%02d", i),
			DayProfit:      float64(1000 - i*10),
			MonthProfit:    float64(i * 5),
			LifetimeProfit: float64(i),
		})
	}
	return aggs
}

func newTestService(aggs []*models.UserAggregate, names map[string]string) *Service {
	return NewService(&mockEarnings{aggs: aggs}, &mockUsers{names: names}, common.NewSilentLogger())
}

func TestRank_OrderAndIndices(t *testing.T) {
	svc := newTestService(population(5), nil)

	entries, err := svc.Rank(context.Background(), models.PeriodDay, "")
	require.NoError(t, err)
	require.Len(t, entries, 5)

	for i, e := range entries {
		assert.Equal(t, i+1, e.Rank)
		if i > 0 {
			assert.GreaterOrEqual(t, entries[i-1].Profit, e.Profit)
		}
	}
	assert.Equal(t, "user-00", entries[0].UserID)
}

func TestRank_TiesBrokenByUserID(t *testing.T) {
	aggs := []*models.UserAggregate{
		{UserID: "zed", DayProfit: 100},
		{UserID: "amy", DayProfit: 100},
		{UserID: "bob", DayProfit: 100},
	}
	svc := newTestService(aggs, nil)

	entries, err := svc.Rank(context.Background(), models.PeriodDay, "")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "amy", entries[0].UserID)
	assert.Equal(t, "bob", entries[1].UserID)
	assert.Equal(t, "zed", entries[2].UserID)
}

func TestRank_PeriodSelectsProfitFigure(t *testing.T) {
	aggs := []*models.UserAggregate{
		{UserID: "a", DayProfit: 1, MonthProfit: 100, LifetimeProfit: 5},
		{UserID: "b", DayProfit: 2, MonthProfit: 50, LifetimeProfit: 10},
	}
	svc := newTestService(aggs, nil)
	ctx := context.Background()

	day, err := svc.Rank(ctx, models.PeriodDay, "")
	require.NoError(t, err)
	assert.Equal(t, "b", day[0].UserID)

	month, err := svc.Rank(ctx, models.PeriodMonth, "")
	require.NoError(t, err)
	assert.Equal(t, "a", month[0].UserID)

	overall, err := svc.Rank(ctx, models.PeriodOverall, "")
	require.NoError(t, err)
	assert.Equal(t, "b", overall[0].UserID)
}

func TestRank_InvalidPeriod(t *testing.T) {
	svc := newTestService(population(3), nil)
	_, err := svc.Rank(context.Background(), "weekly", "")
	assert.Error(t, err)
}

func TestRank_SmallPopulationReturnsAll(t *testing.T) {
	svc := newTestService(population(7), nil)

	entries, err := svc.Rank(context.Background(), models.PeriodDay, "user-06")
	require.NoError(t, err)
	assert.Len(t, entries, 7)
}

func TestRank_TruncatesToTop20(t *testing.T) {
	svc := newTestService(population(30), nil)

	entries, err := svc.Rank(context.Background(), models.PeriodDay, "")
	require.NoError(t, err)
	require.Len(t, entries, 20)
	assert.Equal(t, 20, entries[19].Rank)
}

func TestRank_RequesterInsideTop20(t *testing.T) {
	svc := newTestService(population(30), nil)

	entries, err := svc.Rank(context.Background(), models.PeriodDay, "user-05")
	require.NoError(t, err)
	require.Len(t, entries, 20)
	assert.Equal(t, "user-05", entries[5].UserID)
	assert.Equal(t, 20, entries[19].Rank)
}

func TestRank_RequesterOutsideTop20Appended(t *testing.T) {
	svc := newTestService(population(30), nil)

	entries, err := svc.Rank(context.Background(), models.PeriodDay, "user-25")
	require.NoError(t, err)
	require.Len(t, entries, 20)

	// Top 19 intact, requester last with their true rank.
	assert.Equal(t, 19, entries[18].Rank)
	last := entries[19]
	assert.Equal(t, "user-25", last.UserID)
	assert.Equal(t, 26, last.Rank)
}

func TestRank_UnknownRequesterPlainTop20(t *testing.T) {
	svc := newTestService(population(30), nil)

	entries, err := svc.Rank(context.Background(), models.PeriodDay, "nobody")
	require.NoError(t, err)
	require.Len(t, entries, 20)
	assert.Equal(t, "user-19", entries[19].UserID)
}

func TestRank_DisplayNamesResolvedWithFallback(t *testing.T) {
	svc := newTestService(population(2), map[string]string{"user-00": "Asha"})

	entries, err := svc.Rank(context.Background(), models.PeriodDay, "")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Asha", entries[0].DisplayName)
	assert.Equal(t, "user-01", entries[1].DisplayName)
}

func TestRank_EmptyPopulation(t *testing.T) {
	svc := newTestService(nil, nil)
	entries, err := svc.Rank(context.Background(), models.PeriodDay, "")
	require.NoError(t, err)
	assert.Empty(t, entries)
}
