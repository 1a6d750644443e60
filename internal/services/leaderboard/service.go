// Package leaderboard ranks the cached earnings aggregates. Rankings are
// derived on demand and never persisted.
package leaderboard

import (
	"context"
	"fmt"
	"sort"

	"github.com/asheeshm/paperhouse/internal/common"
	"github.com/asheeshm/paperhouse/internal/interfaces"
	"github.com/asheeshm/paperhouse/internal/models"
)

// topN is the number of rows a leaderboard page carries.
const topN = 20

// Service implements interfaces.LeaderboardService.
type Service struct {
	earnings interfaces.EarningsService
	users    interfaces.InternalStore
	logger   *common.Logger
}

// NewService creates a new leaderboard service.
func NewService(earnings interfaces.EarningsService, users interfaces.InternalStore, logger *common.Logger) *Service {
	return &Service{
		earnings: earnings,
		users:    users,
		logger:   logger,
	}
}

// Rank sorts all cached aggregates descending by the period's profit (ties
// broken by user ID ascending so the order is total), assigns ranks, and
// truncates around requestingUserID:
//   - fewer than topN entries: everyone is returned;
//   - requester inside the top topN, unknown, or empty: plain top topN;
//   - requester ranked below topN: top topN-1 plus the requester's own row
//     appended with its true rank.
func (s *Service) Rank(ctx context.Context, period models.LeaderboardPeriod, requestingUserID string) ([]*models.LeaderboardEntry, error) {
	if !period.Valid() {
		return nil, fmt.Errorf("invalid leaderboard period '%s'", period)
	}

	aggs := s.earnings.Snapshot()
	entries := make([]*models.LeaderboardEntry, 0, len(aggs))
	for _, agg := range aggs {
		entries = append(entries, &models.LeaderboardEntry{
			UserID: agg.UserID,
			Profit: period.ProfitFor(agg),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Profit != entries[j].Profit {
			return entries[i].Profit > entries[j].Profit
		}
		return entries[i].UserID < entries[j].UserID
	})
	for i, e := range entries {
		e.Rank = i + 1
	}

	result := truncate(entries, requestingUserID)
	s.resolveNames(ctx, result)

	s.logger.Debug().
		Str("period", string(period)).
		Int("population", len(entries)).
		Int("returned", len(result)).
		Msg("Leaderboard ranked")
	return result, nil
}

func truncate(entries []*models.LeaderboardEntry, requestingUserID string) []*models.LeaderboardEntry {
	if len(entries) <= topN {
		return entries
	}
	if requestingUserID == "" {
		return entries[:topN]
	}
	for _, e := range entries[:topN] {
		if e.UserID == requestingUserID {
			return entries[:topN]
		}
	}
	for _, e := range entries[topN:] {
		if e.UserID == requestingUserID {
			return append(entries[:topN-1:topN-1], e)
		}
	}
	// Requester unknown to the ranking.
	return entries[:topN]
}

// resolveNames fills display names from the user store, falling back to the
// user ID when the account record is missing or the store errors.
func (s *Service) resolveNames(ctx context.Context, entries []*models.LeaderboardEntry) {
	for _, e := range entries {
		user, err := s.users.GetUser(ctx, e.UserID)
		if err != nil {
			e.DisplayName = e.UserID
			continue
		}
		e.DisplayName = user.Name()
	}
}

// Compile-time check
var _ interfaces.LeaderboardService = (*Service)(nil)
