package app

import (
	"context"
	"fmt"

	"github.com/example/shopfloor/internal/ports/primary"
	"github.com/example/shopfloor/internal/ports/secondary"
)

// StockServiceImpl implements the StockService interface.
type StockServiceImpl struct {
	ledgerRepo secondary.StockLedgerRepository
}

// NewStockService creates a new StockService with injected dependencies.
func NewStockService(ledgerRepo secondary.StockLedgerRepository) *StockServiceImpl {
	return &StockServiceImpl{ledgerRepo: ledgerRepo}
}

// ListMovements lists ledger entries, newest first.
func (s *StockServiceImpl) ListMovements(ctx context.Context, filters primary.StockFilters) ([]*primary.StockMovement, error) {
	records, err := s.ledgerRepo.List(ctx, secondary.StockFilters{
		ProductID: filters.ProductID,
		Reference: filters.Reference,
		Limit:     filters.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list stock movements: %w", err)
	}

	movements := make([]*primary.StockMovement, len(records))
	for i, r := range records {
		movements[i] = &primary.StockMovement{
			ID:             r.ID,
			ProductID:      r.ProductID,
			QuantityChange: r.QuantityChange,
			Type:           r.Type,
			Reference:      r.Reference,
			Notes:          r.Notes,
			CreatedAt:      r.CreatedAt,
		}
	}
	return movements, nil
}

// Ensure StockServiceImpl implements the interface
var _ primary.StockService = (*StockServiceImpl)(nil)
