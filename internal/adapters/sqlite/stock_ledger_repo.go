package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/shopfloor/internal/ports/secondary"
)

// StockLedgerRepository implements secondary.StockLedgerRepository with SQLite.
type StockLedgerRepository struct {
	db *sql.DB
}

// NewStockLedgerRepository creates a new SQLite stock ledger repository.
func NewStockLedgerRepository(db *sql.DB) *StockLedgerRepository {
	return &StockLedgerRepository{db: db}
}

// List retrieves movements matching the given filters, newest first.
func (r *StockLedgerRepository) List(ctx context.Context, filters secondary.StockFilters) ([]*secondary.StockMovementRecord, error) {
	query := "SELECT id, product_id, quantity_change, type, reference, notes, created_at FROM stock_movements WHERE 1=1"
	args := []any{}

	if filters.ProductID != "" {
		query += " AND product_id = ?"
		args = append(args, filters.ProductID)
	}
	if filters.Reference != "" {
		query += " AND reference = ?"
		args = append(args, filters.Reference)
	}

	query += " ORDER BY created_at DESC, rowid DESC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock movements: %w", err)
	}
	defer rows.Close()

	var movements []*secondary.StockMovementRecord
	for rows.Next() {
		var (
			reference sql.NullString
			notes     sql.NullString
			createdAt time.Time
		)
		m := &secondary.StockMovementRecord{}
		if err := rows.Scan(&m.ID, &m.ProductID, &m.QuantityChange, &m.Type, &reference, &notes, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan stock movement: %w", err)
		}
		m.Reference = reference.String
		m.Notes = notes.String
		m.CreatedAt = formatTime(createdAt)
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

// Ensure StockLedgerRepository implements the interface
var _ secondary.StockLedgerRepository = (*StockLedgerRepository)(nil)
