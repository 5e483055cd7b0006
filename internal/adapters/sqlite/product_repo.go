// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/shopfloor/internal/apperr"
	"github.com/example/shopfloor/internal/core/inventory"
	"github.com/example/shopfloor/internal/ports/secondary"
)

// ProductRepository implements secondary.ProductRepository with SQLite.
type ProductRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new SQLite product repository.
func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

const productSelectCols = "id, name, sku, type, unit_of_measure, current_stock, created_at, updated_at"

func scanProduct(scanner rowScanner) (*secondary.ProductRecord, error) {
	var createdAt, updatedAt time.Time

	record := &secondary.ProductRecord{}
	err := scanner.Scan(&record.ID, &record.Name, &record.SKU, &record.Type, &record.UnitOfMeasure,
		&record.CurrentStock, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	record.CreatedAt = formatTime(createdAt)
	record.UpdatedAt = formatTime(updatedAt)
	return record, nil
}

// Create persists a new product. A positive CurrentStock is booked as an
// opening ADJUSTMENT in the stock ledger.
func (r *ProductRepository) Create(ctx context.Context, product *secondary.ProductRecord) error {
	uom := product.UnitOfMeasure
	if uom == "" {
		uom = "pcs"
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO products (id, name, sku, type, unit_of_measure, current_stock) VALUES (?, ?, ?, ?, ?, ?)",
		product.ID, product.Name, product.SKU, product.Type, uom, product.CurrentStock,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: products.sku") {
			return apperr.Validation("product with SKU %s already exists", product.SKU)
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	if product.CurrentStock > 0 {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO stock_movements (id, product_id, quantity_change, type, notes) VALUES (?, ?, ?, ?, ?)",
			uuid.NewString(), product.ID, product.CurrentStock, string(inventory.MovementAdjustment), "Opening stock",
		)
		if err != nil {
			return fmt.Errorf("failed to book opening stock: %w", err)
		}
	}

	return tx.Commit()
}

// GetByID retrieves a product by its ID.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*secondary.ProductRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+productSelectCols+" FROM products WHERE id = ?", id)

	record, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("product", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return record, nil
}

// List retrieves products matching the given filters.
func (r *ProductRepository) List(ctx context.Context, filters secondary.ProductFilters) ([]*secondary.ProductRecord, error) {
	query := "SELECT " + productSelectCols + " FROM products WHERE 1=1"
	args := []any{}

	if filters.Type != "" {
		query += " AND type = ?"
		args = append(args, filters.Type)
	}

	query += " ORDER BY id"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []*secondary.ProductRecord
	for rows.Next() {
		record, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, record)
	}
	return products, rows.Err()
}

// GetNextID returns the next available product ID.
func (r *ProductRepository) GetNextID(ctx context.Context) (string, error) {
	return nextSequentialID(ctx, r.db, "products", "PROD-", 3)
}

// StockLevels returns the current stock of the given products.
func (r *ProductRepository) StockLevels(ctx context.Context, productIDs []string) (map[string]float64, error) {
	levels := make(map[string]float64, len(productIDs))
	if len(productIDs) == 0 {
		return levels, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(productIDs)), ", ")
	args := make([]any, len(productIDs))
	for i, id := range productIDs {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT id, current_stock FROM products WHERE id IN ("+placeholders+")",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read stock levels: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var stock float64
		if err := rows.Scan(&id, &stock); err != nil {
			return nil, fmt.Errorf("failed to scan stock level: %w", err)
		}
		levels[id] = stock
	}
	return levels, rows.Err()
}

// Ensure ProductRepository implements the interface
var _ secondary.ProductRepository = (*ProductRepository)(nil)
