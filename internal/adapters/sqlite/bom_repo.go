package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/shopfloor/internal/apperr"
	"github.com/example/shopfloor/internal/ports/secondary"
)

// BOMRepository implements secondary.BOMRepository with SQLite.
type BOMRepository struct {
	db *sql.DB
}

// NewBOMRepository creates a new SQLite bill of materials repository.
func NewBOMRepository(db *sql.DB) *BOMRepository {
	return &BOMRepository{db: db}
}

const bomSelectCols = "id, product_id, name, version, active, created_at"

func scanBOM(scanner rowScanner) (*secondary.BOMRecord, error) {
	var createdAt time.Time

	record := &secondary.BOMRecord{}
	if err := scanner.Scan(&record.ID, &record.ProductID, &record.Name, &record.Version, &record.Active, &createdAt); err != nil {
		return nil, err
	}
	record.CreatedAt = formatTime(createdAt)
	return record, nil
}

// Create persists a new bill of materials header.
func (r *BOMRepository) Create(ctx context.Context, bom *secondary.BOMRecord) error {
	version := bom.Version
	if version == "" {
		version = "1.0"
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO boms (id, product_id, name, version, active) VALUES (?, ?, ?, ?, ?)",
		bom.ID, bom.ProductID, bom.Name, version, bom.Active,
	)
	if err != nil {
		return fmt.Errorf("failed to create bom: %w", err)
	}
	return nil
}

// GetByID retrieves a bill of materials with its lines.
func (r *BOMRepository) GetByID(ctx context.Context, id string) (*secondary.BOMRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+bomSelectCols+" FROM boms WHERE id = ?", id)

	record, err := scanBOM(row)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("bom", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bom: %w", err)
	}

	if err := r.loadLines(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// GetActiveForProduct returns the most recent active bill of materials of a product.
func (r *BOMRepository) GetActiveForProduct(ctx context.Context, productID string) (*secondary.BOMRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+bomSelectCols+" FROM boms WHERE product_id = ? AND active = 1 ORDER BY created_at DESC, id DESC LIMIT 1",
		productID,
	)

	record, err := scanBOM(row)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("active bom for product", productID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bom: %w", err)
	}

	if err := r.loadLines(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// List retrieves headers, optionally for one product.
func (r *BOMRepository) List(ctx context.Context, productID string) ([]*secondary.BOMRecord, error) {
	query := "SELECT " + bomSelectCols + " FROM boms WHERE 1=1"
	args := []any{}
	if productID != "" {
		query += " AND product_id = ?"
		args = append(args, productID)
	}
	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list boms: %w", err)
	}
	defer rows.Close()

	var boms []*secondary.BOMRecord
	for rows.Next() {
		record, err := scanBOM(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bom: %w", err)
		}
		boms = append(boms, record)
	}
	return boms, rows.Err()
}

// AddComponent appends a component line.
func (r *BOMRepository) AddComponent(ctx context.Context, c *secondary.BOMComponentRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO bom_components (bom_id, product_id, quantity_per_unit) VALUES (?, ?, ?)",
		c.BOMID, c.ProductID, c.QuantityPerUnit,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return apperr.Validation("product %s is already a component of %s", c.ProductID, c.BOMID)
		}
		return fmt.Errorf("failed to add bom component: %w", err)
	}
	return nil
}

// AddOperation appends a routing step.
func (r *BOMRepository) AddOperation(ctx context.Context, op *secondary.BOMOperationRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO bom_operations (bom_id, sequence, name, work_center_id, duration_minutes, setup_minutes) VALUES (?, ?, ?, ?, ?, ?)",
		op.BOMID, op.Sequence, op.Name, op.WorkCenterID, op.DurationMinutes, op.SetupMinutes,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return apperr.Validation("%s already has an operation with sequence %d", op.BOMID, op.Sequence)
		}
		return fmt.Errorf("failed to add bom operation: %w", err)
	}
	return nil
}

// GetNextID returns the next available BOM ID.
func (r *BOMRepository) GetNextID(ctx context.Context) (string, error) {
	return nextSequentialID(ctx, r.db, "boms", "BOM-", 3)
}

func (r *BOMRepository) loadLines(ctx context.Context, bom *secondary.BOMRecord) error {
	rows, err := r.db.QueryContext(ctx,
		"SELECT bom_id, product_id, quantity_per_unit FROM bom_components WHERE bom_id = ? ORDER BY product_id",
		bom.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to load bom components: %w", err)
	}
	for rows.Next() {
		c := &secondary.BOMComponentRecord{}
		if err := rows.Scan(&c.BOMID, &c.ProductID, &c.QuantityPerUnit); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan bom component: %w", err)
		}
		bom.Components = append(bom.Components, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.db.QueryContext(ctx,
		"SELECT bom_id, sequence, name, work_center_id, duration_minutes, setup_minutes FROM bom_operations WHERE bom_id = ? ORDER BY sequence",
		bom.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to load bom operations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		op := &secondary.BOMOperationRecord{}
		if err := rows.Scan(&op.BOMID, &op.Sequence, &op.Name, &op.WorkCenterID, &op.DurationMinutes, &op.SetupMinutes); err != nil {
			return fmt.Errorf("failed to scan bom operation: %w", err)
		}
		bom.Operations = append(bom.Operations, op)
	}
	return rows.Err()
}

// Ensure BOMRepository implements the interface
var _ secondary.BOMRepository = (*BOMRepository)(nil)
