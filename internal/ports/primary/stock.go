package primary

import "context"

// StockService defines the primary port for the stock ledger.
type StockService interface {
	// ListMovements lists ledger entries, newest first.
	ListMovements(ctx context.Context, filters StockFilters) ([]*StockMovement, error)
}

// StockMovement is a stock ledger entry at the port boundary.
type StockMovement struct {
	ID             string
	ProductID      string
	QuantityChange float64
	Type           string
	Reference      string
	Notes          string
	CreatedAt      string
}

// StockFilters contains filter options for querying the ledger.
type StockFilters struct {
	ProductID string
	Reference string
	Limit     int
}
