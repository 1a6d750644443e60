// Package holdingsdb implements HoldingsStore using BadgerHold. In the full
// application this area is owned by the order-execution side; the earnings
// engine reads it during valuation and the test harness writes it.
package holdingsdb

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/asheeshm/paperhouse/internal/common"
	"github.com/asheeshm/paperhouse/internal/models"
)

// holdingSep is the composite key separator for Holding records.
const holdingSep = "\x00"

// Store implements interfaces.HoldingsStore using BadgerHold.
type Store struct {
	db     *badgerhold.Store
	logger *common.Logger
}

// NewStore creates a new HoldingsStore backed by BadgerHold.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create holdings db path %s: %w", path, err)
	}
	opts := badgerhold.DefaultOptions
	opts.Dir = path
	opts.ValueDir = path
	opts.Logger = nil
	db, err := badgerhold.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open holdings db at %s: %w", path, err)
	}
	logger.Info().Str("path", path).Msg("HoldingsDB opened")
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) GetWallet(_ context.Context, userID string) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := s.db.Get(userID, &wallet); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get wallet for '%s': %w", userID, err)
	}
	return &wallet, nil
}

func (s *Store) SaveWallet(_ context.Context, wallet *models.Wallet) error {
	wallet.ModifiedAt = time.Now()
	if err := s.db.Upsert(wallet.UserID, wallet); err != nil {
		return fmt.Errorf("failed to save wallet for '%s': %w", wallet.UserID, err)
	}
	return nil
}

func (s *Store) GetHoldings(_ context.Context, userID string) ([]*models.Holding, error) {
	var holdings []models.Holding
	if err := s.db.Find(&holdings, badgerhold.Where("UserID").Eq(userID).Index("UserID")); err != nil {
		return nil, fmt.Errorf("failed to list holdings for '%s': %w", userID, err)
	}
	result := make([]*models.Holding, 0, len(holdings))
	for i := range holdings {
		if holdings[i].Quantity > 0 {
			result = append(result, &holdings[i])
		}
	}
	return result, nil
}

func (s *Store) SaveHolding(_ context.Context, holding *models.Holding) error {
	if holding.UserID == "" || holding.Symbol == "" {
		return fmt.Errorf("holding requires user id and symbol")
	}
	holding.ID = holding.UserID + holdingSep + holding.Symbol
	holding.ModifiedAt = time.Now()
	if err := s.db.Upsert(holding.ID, holding); err != nil {
		return fmt.Errorf("failed to save holding '%s' for '%s': %w", holding.Symbol, holding.UserID, err)
	}
	return nil
}

// Close shuts down the BadgerHold database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
