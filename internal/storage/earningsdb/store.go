// Package earningsdb implements EarningsStore using BadgerHold. It holds the
// authoritative copy of user aggregates across restarts and the daily
// snapshot time series used for charting.
package earningsdb

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/asheeshm/paperhouse/internal/common"
	"github.com/asheeshm/paperhouse/internal/models"
)

// snapSep is the composite key separator for DailySnapshot records. A null
// byte cannot appear in a user id or a day key, so composite keys are
// collision free.
const snapSep = "\x00"

// Store implements interfaces.EarningsStore using BadgerHold.
type Store struct {
	db     *badgerhold.Store
	logger *common.Logger
}

// NewStore creates a new EarningsStore backed by BadgerHold.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create earnings db path %s: %w", path, err)
	}
	opts := badgerhold.DefaultOptions
	opts.Dir = path
	opts.ValueDir = path
	opts.Logger = nil
	db, err := badgerhold.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open earnings db at %s: %w", path, err)
	}
	logger.Info().Str("path", path).Msg("EarningsDB opened")
	return &Store{db: db, logger: logger}, nil
}

// --- Aggregates ---

func (s *Store) LoadAggregate(_ context.Context, userID string) (*models.UserAggregate, error) {
	var agg models.UserAggregate
	if err := s.db.Get(userID, &agg); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, models.ErrAggregateNotFound
		}
		return nil, fmt.Errorf("failed to load aggregate for '%s': %w", userID, err)
	}
	return &agg, nil
}

func (s *Store) SaveAggregate(_ context.Context, agg *models.UserAggregate) error {
	now := time.Now()
	var existing models.UserAggregate
	if err := s.db.Get(agg.UserID, &existing); err == nil {
		agg.CreatedAt = existing.CreatedAt
	} else if agg.CreatedAt.IsZero() {
		agg.CreatedAt = now
	}
	agg.ModifiedAt = now

	if err := s.db.Upsert(agg.UserID, agg); err != nil {
		return fmt.Errorf("failed to save aggregate for '%s': %w", agg.UserID, err)
	}
	s.logger.Debug().Str("user_id", agg.UserID).Float64("lifetime", agg.LifetimeProfit).Msg("Aggregate saved")
	return nil
}

func (s *Store) ListAggregates(_ context.Context) ([]*models.UserAggregate, error) {
	var aggs []models.UserAggregate
	if err := s.db.Find(&aggs, nil); err != nil {
		return nil, fmt.Errorf("failed to list aggregates: %w", err)
	}
	result := make([]*models.UserAggregate, len(aggs))
	for i := range aggs {
		result[i] = &aggs[i]
	}
	return result, nil
}

// --- Daily snapshots ---

func (s *Store) UpsertSnapshot(_ context.Context, snap *models.DailySnapshot) error {
	if snap.UserID == "" || snap.DayKey == "" {
		return fmt.Errorf("snapshot requires user id and day key")
	}
	snap.ID = snap.UserID + snapSep + snap.DayKey

	now := time.Now()
	var existing models.DailySnapshot
	if err := s.db.Get(snap.ID, &existing); err == nil {
		snap.CreatedAt = existing.CreatedAt
	} else if snap.CreatedAt.IsZero() {
		snap.CreatedAt = now
	}
	snap.ModifiedAt = now

	if err := s.db.Upsert(snap.ID, snap); err != nil {
		return fmt.Errorf("failed to upsert snapshot '%s' for '%s': %w", snap.DayKey, snap.UserID, err)
	}
	return nil
}

func (s *Store) ListSnapshots(_ context.Context, userID, from, to string) ([]*models.DailySnapshot, error) {
	var snaps []models.DailySnapshot
	if err := s.db.Find(&snaps, badgerhold.Where("UserID").Eq(userID).Index("UserID")); err != nil {
		return nil, fmt.Errorf("failed to list snapshots for '%s': %w", userID, err)
	}

	result := make([]*models.DailySnapshot, 0, len(snaps))
	for i := range snaps {
		if from != "" && snaps[i].DayKey < from {
			continue
		}
		if to != "" && snaps[i].DayKey > to {
			continue
		}
		result = append(result, &snaps[i])
	}

	// Day keys sort chronologically as strings.
	sort.Slice(result, func(i, j int) bool { return result[i].DayKey < result[j].DayKey })
	return result, nil
}

// Close shuts down the BadgerHold database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
