package app

import (
	"context"
	"time"

	"github.com/asheeshm/paperhouse/internal/common"
	"github.com/asheeshm/paperhouse/internal/interfaces"
	"github.com/asheeshm/paperhouse/internal/models"
	"github.com/asheeshm/paperhouse/internal/services/leaderboard"
)

// runFlusher persists dirty earnings aggregates on a fixed interval and
// pushes the refreshed day leaderboard to live subscribers after each cycle.
// Flush failures are logged and retried on the next tick; they never reach
// request-path callers.
func runFlusher(ctx context.Context, earningsService interfaces.EarningsService, leaderboardService interfaces.LeaderboardService, hub *leaderboard.WSHub, logger *common.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info().Dur("interval", interval).Msg("Earnings flusher: started")

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Earnings flusher: stopped")
			return
		case <-ticker.C:
			flushCycle(ctx, earningsService, leaderboardService, hub, logger)
		}
	}
}

func flushCycle(ctx context.Context, earningsService interfaces.EarningsService, leaderboardService interfaces.LeaderboardService, hub *leaderboard.WSHub, logger *common.Logger) {
	start := time.Now()

	if err := earningsService.FlushAll(ctx); err != nil {
		logger.Warn().Err(err).Msg("Earnings flusher: cycle incomplete")
	}

	if hub.ClientCount() > 0 {
		entries, err := leaderboardService.Rank(ctx, models.PeriodDay, "")
		if err != nil {
			logger.Warn().Err(err).Msg("Earnings flusher: leaderboard broadcast skipped")
		} else {
			hub.Broadcast(models.LeaderboardUpdate{
				Period:    models.PeriodDay,
				Entries:   entries,
				Timestamp: time.Now(),
			})
		}
	}

	logger.Debug().Dur("elapsed", time.Since(start)).Msg("Earnings flusher: cycle complete")
}
