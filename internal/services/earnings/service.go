// Package earnings implements the write-back earnings cache and the period
// reset reconciler. The in-memory cache is authoritative while the process
// runs; the durable store catches up on flush cycles and takes over across
// restarts.
package earnings

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/asheeshm/paperhouse/internal/common"
	"github.com/asheeshm/paperhouse/internal/interfaces"
	"github.com/asheeshm/paperhouse/internal/models"
)

// cacheEntry pairs an aggregate with its own mutex so reconciliation is
// serialized per user without blocking the rest of the cache.
type cacheEntry struct {
	mu    sync.Mutex
	agg   *models.UserAggregate
	dirty bool
}

// Service implements interfaces.EarningsService.
type Service struct {
	store     interfaces.EarningsStore
	valuation interfaces.ValuationService
	users     interfaces.InternalStore
	logger    *common.Logger

	mu      sync.RWMutex
	entries map[string]*cacheEntry

	now func() time.Time
}

// Option configures the earnings service.
type Option func(*Service)

// WithClock overrides the time source. Tests use this to cross period
// boundaries without sleeping.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new earnings service.
func NewService(store interfaces.EarningsStore, valuation interfaces.ValuationService, users interfaces.InternalStore, logger *common.Logger, opts ...Option) *Service {
	s := &Service{
		store:     store,
		valuation: valuation,
		users:     users,
		logger:    logger,
		entries:   make(map[string]*cacheEntry),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WarmCache loads every persisted aggregate into the cache. Called once at
// startup so the first requests after a restart are cache hits.
func (s *Service) WarmCache(ctx context.Context) error {
	aggs, err := s.store.ListAggregates(ctx)
	if err != nil {
		return fmt.Errorf("failed to warm earnings cache: %w", err)
	}

	s.mu.Lock()
	for _, agg := range aggs {
		if _, exists := s.entries[agg.UserID]; !exists {
			s.entries[agg.UserID] = &cacheEntry{agg: agg}
		}
	}
	s.mu.Unlock()

	s.logger.Info().Int("aggregates", len(aggs)).Msg("Earnings cache warmed")
	return nil
}

// Provision creates a fresh aggregate baselined at the endowment so day-1
// profit reads zero. Idempotent: an already-provisioned user gets their
// existing aggregate back unchanged.
func (s *Service) Provision(ctx context.Context, userID string, endowment float64) (*models.UserAggregate, error) {
	s.mu.RLock()
	entry, exists := s.entries[userID]
	s.mu.RUnlock()

	if exists {
		entry.mu.Lock()
		defer entry.mu.Unlock()
		return entry.agg.Clone(), nil
	}

	agg, err := s.store.LoadAggregate(ctx, userID)
	if err == nil {
		entry = s.insert(agg, false)
		entry.mu.Lock()
		defer entry.mu.Unlock()
		return entry.agg.Clone(), nil
	}
	if !errors.Is(err, models.ErrAggregateNotFound) {
		return nil, fmt.Errorf("%w: earnings store unreachable for '%s': %v", models.ErrTemporarilyUnavailable, userID, err)
	}

	entry = s.insert(s.newAggregate(userID, endowment), true)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	// Best-effort eager persist; on failure the entry stays dirty and the
	// next flush cycle retries.
	if err := s.store.SaveAggregate(ctx, entry.agg.Clone()); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("Provisioned aggregate not yet persisted")
	} else {
		entry.dirty = false
	}

	s.logger.Info().
		Str("user_id", userID).
		Float64("endowment", entry.agg.InitialEndowment).
		Str("day_key", entry.agg.LastDayKey).
		Msg("User provisioned")
	return entry.agg.Clone(), nil
}

// newAggregate builds a fresh aggregate whose baselines all equal the
// endowment, so every period starts at zero profit.
func (s *Service) newAggregate(userID string, endowment float64) *models.UserAggregate {
	now := s.now()
	return &models.UserAggregate{
		UserID:                 userID,
		LastDayKey:             DayKey(now),
		LastMonthKey:           MonthKey(now),
		DayBaselineValue:       endowment,
		MonthBaselineValue:     endowment,
		InitialEndowment:       endowment,
		CurrentPortfolioValue:  endowment,
		PreviousPortfolioValue: endowment,
		CreatedAt:              now,
		ModifiedAt:             now,
	}
}

// insert caches agg unless another writer won the race; the first writer's
// entry survives either way.
func (s *Service) insert(agg *models.UserAggregate, dirty bool) *cacheEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, exists := s.entries[agg.UserID]; exists {
		return existing
	}
	entry := &cacheEntry{agg: agg, dirty: dirty}
	s.entries[agg.UserID] = entry
	return entry
}

// Get returns the user's aggregate, reconciling period boundaries so a read
// across midnight never reports the previous day's profit as today's.
func (s *Service) Get(ctx context.Context, userID string) (*models.UserAggregate, error) {
	entry, err := s.getEntry(ctx, userID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if s.reconcile(entry.agg, s.now()) {
		entry.dirty = true
	}
	return entry.agg.Clone(), nil
}

// ApplyValuation reconciles boundaries and applies the new portfolio value
// atomically for the user, marking the entry dirty for the next flush.
func (s *Service) ApplyValuation(ctx context.Context, userID string, newValue float64) (*models.UserAggregate, error) {
	return s.apply(ctx, userID, newValue, false)
}

// RecordTransaction runs a fresh valuation and applies it, counting one trade
// toward the day's snapshot.
func (s *Service) RecordTransaction(ctx context.Context, userID string) (*models.UserAggregate, error) {
	val, err := s.valuation.Value(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, userID, val.Total, true)
}

func (s *Service) apply(ctx context.Context, userID string, newValue float64, countTrade bool) (*models.UserAggregate, error) {
	entry, err := s.getEntry(ctx, userID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := s.now()
	agg := entry.agg
	s.reconcile(agg, now)

	agg.PreviousPortfolioValue = agg.CurrentPortfolioValue
	agg.CurrentPortfolioValue = newValue
	agg.DayProfit = newValue - agg.DayBaselineValue
	agg.MonthProfit = newValue - agg.MonthBaselineValue
	agg.LifetimeProfit = newValue - agg.InitialEndowment
	if countTrade {
		agg.DayTradeCount++
	}
	agg.ModifiedAt = now
	entry.dirty = true

	s.logger.Debug().
		Str("user_id", userID).
		Float64("value", newValue).
		Float64("day_profit", agg.DayProfit).
		Msg("Valuation applied")
	return agg.Clone(), nil
}

// reconcile rolls the aggregate forward across any day/month boundaries
// between its checkpoints and now. Keys sort lexicographically, so a key at
// or below the checkpoint (a skewed clock) never rolls anything back.
func (s *Service) reconcile(agg *models.UserAggregate, now time.Time) bool {
	changed := false

	if monthKey := MonthKey(now); monthKey > agg.LastMonthKey {
		agg.MonthBaselineValue = agg.CurrentPortfolioValue
		agg.MonthProfit = 0
		agg.LastMonthKey = monthKey
		changed = true
		s.logger.Info().
			Str("user_id", agg.UserID).
			Str("month_key", monthKey).
			Float64("baseline", agg.MonthBaselineValue).
			Msg("Month rolled over")
	}

	if dayKey := DayKey(now); dayKey > agg.LastDayKey {
		agg.DayBaselineValue = agg.CurrentPortfolioValue
		agg.DayProfit = 0
		agg.DayTradeCount = 0
		agg.LastDayKey = dayKey
		changed = true
		s.logger.Info().
			Str("user_id", agg.UserID).
			Str("day_key", dayKey).
			Float64("baseline", agg.DayBaselineValue).
			Msg("Day rolled over")
	}

	return changed
}

// getEntry returns the cache entry for userID, lazily loading from the
// durable store on a miss. A known user with no persisted aggregate gets a
// fresh one baselined at their recorded endowment (first-trade creation).
func (s *Service) getEntry(ctx context.Context, userID string) (*cacheEntry, error) {
	s.mu.RLock()
	entry, exists := s.entries[userID]
	s.mu.RUnlock()
	if exists {
		return entry, nil
	}

	agg, err := s.store.LoadAggregate(ctx, userID)
	if err == nil {
		return s.insert(agg, false), nil
	}
	if !errors.Is(err, models.ErrAggregateNotFound) {
		// Cold-start miss during a store outage: the caller can retry once
		// the store recovers or the cache is repopulated.
		return nil, fmt.Errorf("%w: earnings store unreachable for '%s': %v", models.ErrTemporarilyUnavailable, userID, err)
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: user store unreachable for '%s': %v", models.ErrTemporarilyUnavailable, userID, err)
	}

	s.logger.Info().Str("user_id", userID).Float64("endowment", user.Endowment).Msg("Aggregate created on first use")
	return s.insert(s.newAggregate(userID, user.Endowment), true), nil
}

// FlushAll writes every dirty aggregate and its daily snapshot to the durable
// store. A persistence failure re-marks the entry dirty so the next cycle
// retries it.
func (s *Service) FlushAll(ctx context.Context) error {
	s.mu.RLock()
	pending := make([]*cacheEntry, 0, len(s.entries))
	for _, entry := range s.entries {
		pending = append(pending, entry)
	}
	s.mu.RUnlock()

	var flushed, failed int
	for _, entry := range pending {
		entry.mu.Lock()
		if !entry.dirty {
			entry.mu.Unlock()
			continue
		}
		aggCopy := entry.agg.Clone()
		entry.dirty = false
		entry.mu.Unlock()

		if err := s.persist(ctx, aggCopy); err != nil {
			entry.mu.Lock()
			entry.dirty = true
			entry.mu.Unlock()
			failed++
			s.logger.Warn().Err(err).Str("user_id", aggCopy.UserID).Msg("Flush failed; will retry next cycle")
			continue
		}
		flushed++
	}

	if flushed > 0 || failed > 0 {
		s.logger.Info().Int("flushed", flushed).Int("failed", failed).Msg("Earnings flush cycle complete")
	}
	if failed > 0 {
		return fmt.Errorf("flush incomplete: %d aggregate(s) failed to persist", failed)
	}
	return nil
}

func (s *Service) persist(ctx context.Context, agg *models.UserAggregate) error {
	if err := s.store.SaveAggregate(ctx, agg); err != nil {
		return err
	}
	snap := &models.DailySnapshot{
		UserID:         agg.UserID,
		DayKey:         agg.LastDayKey,
		PortfolioValue: agg.CurrentPortfolioValue,
		ProfitDelta:    agg.DayProfit,
		TradeCount:     agg.DayTradeCount,
	}
	return s.store.UpsertSnapshot(ctx, snap)
}

// Snapshot returns a point-in-time copy of all cached aggregates, sorted by
// user ID for deterministic iteration.
func (s *Service) Snapshot() []*models.UserAggregate {
	s.mu.RLock()
	pending := make([]*cacheEntry, 0, len(s.entries))
	for _, entry := range s.entries {
		pending = append(pending, entry)
	}
	s.mu.RUnlock()

	result := make([]*models.UserAggregate, 0, len(pending))
	for _, entry := range pending {
		entry.mu.Lock()
		result = append(result, entry.agg.Clone())
		entry.mu.Unlock()
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserID < result[j].UserID })
	return result
}

// Compile-time check
var _ interfaces.EarningsService = (*Service)(nil)
