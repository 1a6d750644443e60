// Package valuation prices a user's simulated portfolio: wallet cash plus the
// market value of every open position.
package valuation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/asheeshm/paperhouse/internal/common"
	"github.com/asheeshm/paperhouse/internal/interfaces"
	"github.com/asheeshm/paperhouse/internal/models"
)

// lookupTimeout bounds each oracle lookup so one slow symbol cannot stall a
// whole valuation run.
const lookupTimeout = 3 * time.Second

// Service implements interfaces.ValuationService.
type Service struct {
	holdings interfaces.HoldingsStore
	oracle   interfaces.PriceOracle
	logger   *common.Logger
}

// NewService creates a new valuation service.
func NewService(holdings interfaces.HoldingsStore, oracle interfaces.PriceOracle, logger *common.Logger) *Service {
	return &Service{
		holdings: holdings,
		oracle:   oracle,
		logger:   logger,
	}
}

// Value computes cash + Σ quantity × price over the user's holdings. A holding
// the oracle cannot price contributes quantity × avgCost and marks the result
// degraded; missing prices are never an error.
func (s *Service) Value(ctx context.Context, userID string) (*models.Valuation, error) {
	wallet, err := s.holdings.GetWallet(ctx, userID)
	if err != nil {
		return nil, err
	}

	positions, err := s.holdings.GetHoldings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings for '%s': %w", userID, err)
	}

	result := &models.Valuation{
		UserID: userID,
		Total:  wallet.Cash,
	}

	for _, h := range positions {
		price, ok := s.lookup(ctx, h.Symbol)
		if !ok {
			result.Degraded = true
			result.MissingSymbols = append(result.MissingSymbols, h.Symbol)
			result.Total += h.MarketValue(h.AvgCost)
			continue
		}
		result.Total += h.MarketValue(price)
	}
	sort.Strings(result.MissingSymbols)

	if result.Degraded {
		s.logger.Warn().
			Str("user_id", userID).
			Strs("missing_symbols", result.MissingSymbols).
			Msg("Valuation degraded to average cost for unpriced symbols")
	}
	s.logger.Debug().
		Str("user_id", userID).
		Float64("total", result.Total).
		Int("positions", len(positions)).
		Msg("Portfolio valued")

	return result, nil
}

func (s *Service) lookup(ctx context.Context, symbol string) (float64, bool) {
	lctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()
	return s.oracle.Lookup(lctx, symbol)
}

// Compile-time check
var _ interfaces.ValuationService = (*Service)(nil)
