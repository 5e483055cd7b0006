package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/shopfloor/internal/apperr"
	"github.com/example/shopfloor/internal/core/inventory"
	"github.com/example/shopfloor/internal/ports/secondary"
)

// ManufacturingOrderRepository implements secondary.ManufacturingOrderRepository with SQLite.
type ManufacturingOrderRepository struct {
	db *sql.DB
}

// NewManufacturingOrderRepository creates a new SQLite manufacturing order repository.
func NewManufacturingOrderRepository(db *sql.DB) *ManufacturingOrderRepository {
	return &ManufacturingOrderRepository{db: db}
}

const orderSelectCols = "id, product_id, bom_id, quantity, quantity_produced, status, priority, scheduled_start, actual_start, completed_at, notes, created_at, updated_at"

// scanOrder scans an order row into a ManufacturingOrderRecord.
func scanOrder(scanner rowScanner) (*secondary.ManufacturingOrderRecord, error) {
	var (
		scheduledStart sql.NullString
		notes          sql.NullString
		actualStart    sql.NullTime
		completedAt    sql.NullTime
		createdAt      time.Time
		updatedAt      time.Time
	)

	record := &secondary.ManufacturingOrderRecord{}
	err := scanner.Scan(
		&record.ID, &record.ProductID, &record.BOMID, &record.Quantity, &record.QuantityProduced,
		&record.Status, &record.Priority, &scheduledStart, &actualStart, &completedAt, &notes, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.ScheduledStart = scheduledStart.String
	record.Notes = notes.String
	record.ActualStart = formatNullTime(actualStart)
	record.CompletedAt = formatNullTime(completedAt)
	record.CreatedAt = formatTime(createdAt)
	record.UpdatedAt = formatTime(updatedAt)

	return record, nil
}

// Create persists a new order.
func (r *ManufacturingOrderRepository) Create(ctx context.Context, order *secondary.ManufacturingOrderRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO manufacturing_orders (id, product_id, bom_id, quantity, status, priority, scheduled_start, notes) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		order.ID, order.ProductID, order.BOMID, order.Quantity, order.Status, order.Priority,
		nullString(order.ScheduledStart), nullString(order.Notes),
	)
	if err != nil {
		return fmt.Errorf("failed to create manufacturing order: %w", err)
	}
	return nil
}

// GetByID retrieves an order with its requirements and work orders.
func (r *ManufacturingOrderRepository) GetByID(ctx context.Context, id string) (*secondary.ManufacturingOrderRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+orderSelectCols+" FROM manufacturing_orders WHERE id = ?", id)

	record, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("manufacturing order", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get manufacturing order: %w", err)
	}

	record.Requirements, err = listRequirements(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	record.WorkOrders, err = listWorkOrders(ctx, r.db, secondary.WorkOrderFilters{OrderID: id})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// List retrieves order headers matching the given filters.
func (r *ManufacturingOrderRepository) List(ctx context.Context, filters secondary.OrderFilters) ([]*secondary.ManufacturingOrderRecord, error) {
	query := "SELECT " + orderSelectCols + " FROM manufacturing_orders WHERE 1=1"
	args := []any{}

	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}
	if filters.ProductID != "" {
		query += " AND product_id = ?"
		args = append(args, filters.ProductID)
	}

	query += " ORDER BY created_at DESC, id DESC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list manufacturing orders: %w", err)
	}
	defer rows.Close()

	var orders []*secondary.ManufacturingOrderRecord
	for rows.Next() {
		record, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan manufacturing order: %w", err)
		}
		orders = append(orders, record)
	}
	return orders, rows.Err()
}

// UpdateStatus sets the status. A non-empty actualStart is only stamped once;
// a non-empty completedAt is always written.
func (r *ManufacturingOrderRepository) UpdateStatus(ctx context.Context, id, status, actualStart, completedAt string) error {
	started, err := nullTime(actualStart)
	if err != nil {
		return err
	}
	completed, err := nullTime(completedAt)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE manufacturing_orders SET status = ?, actual_start = COALESCE(actual_start, ?),
			completed_at = COALESCE(?, completed_at), updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		status, started, completed, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update manufacturing order status: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return apperr.NotFound("manufacturing order", id)
	}
	return nil
}

// Confirm moves a DRAFT order to CONFIRMED and stores its work orders and
// requirements in one transaction.
func (r *ManufacturingOrderRepository) Confirm(ctx context.Context, id string, workOrders []*secondary.WorkOrderRecord, requirements []*secondary.ComponentRequirementRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		"UPDATE manufacturing_orders SET status = 'CONFIRMED', updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = 'DRAFT'",
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to confirm manufacturing order: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return r.statusConflict(ctx, tx, id, "confirm", "DRAFT")
	}

	for _, wo := range workOrders {
		if err := insertWorkOrder(ctx, tx, wo); err != nil {
			return err
		}
	}

	// Re-confirming after a cancel is impossible, so requirements are written once.
	for _, req := range requirements {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO component_requirements (order_id, product_id, quantity_per_unit, quantity_required)
			VALUES (?, ?, ?, ?)`,
			id, req.ProductID, req.QuantityPerUnit, req.QuantityRequired,
		)
		if err != nil {
			return fmt.Errorf("failed to store requirement for %s: %w", req.ProductID, err)
		}
	}

	return tx.Commit()
}

// Complete books the stock movements and marks the order COMPLETED in one transaction.
func (r *ManufacturingOrderRepository) Complete(ctx context.Context, c *secondary.OrderCompletionRecord) error {
	completedAt, err := nullTime(c.CompletedAt)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE manufacturing_orders SET status = 'COMPLETED', quantity_produced = ?, completed_at = ?,
			notes = CASE WHEN ? = '' THEN notes WHEN notes IS NULL OR notes = '' THEN ? ELSE notes || char(10) || ? END,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = 'IN_PROGRESS'`,
		c.QuantityProduced, completedAt, c.Notes, c.Notes, c.Notes, c.OrderID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete manufacturing order: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return r.statusConflict(ctx, tx, c.OrderID, "complete", "IN_PROGRESS")
	}

	for _, m := range c.Movements {
		if err := applyMovement(ctx, tx, m); err != nil {
			return err
		}
		if m.Type == string(inventory.MovementConsumption) {
			_, err := tx.ExecContext(ctx,
				"UPDATE component_requirements SET quantity_consumed = quantity_consumed + ? WHERE order_id = ? AND product_id = ?",
				-m.QuantityChange, c.OrderID, m.ProductID,
			)
			if err != nil {
				return fmt.Errorf("failed to record consumption of %s: %w", m.ProductID, err)
			}
		}
	}

	return tx.Commit()
}

// Cancel cancels the order and writes its canceled work orders in one transaction.
func (r *ManufacturingOrderRepository) Cancel(ctx context.Context, c *secondary.OrderCancellationRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE manufacturing_orders SET status = 'CANCELED',
			notes = CASE WHEN ? = '' THEN notes WHEN notes IS NULL OR notes = '' THEN ? ELSE notes || char(10) || ? END,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status NOT IN ('COMPLETED', 'CANCELED')`,
		c.Notes, c.Notes, c.Notes, c.OrderID,
	)
	if err != nil {
		return fmt.Errorf("failed to cancel manufacturing order: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return r.statusConflict(ctx, tx, c.OrderID, "cancel", "open")
	}

	for _, t := range c.WorkOrders {
		n, err := updateWorkOrderExecution(ctx, tx, t.WorkOrder, t.From)
		if err != nil {
			return fmt.Errorf("failed to cancel work order %s: %w", t.WorkOrder.ID, err)
		}
		if n == 0 {
			return workOrderConflict(ctx, tx, t.WorkOrder.ID, t.From, t.WorkOrder.Status)
		}
	}

	return tx.Commit()
}

// GetNextID returns the next available order ID.
func (r *ManufacturingOrderRepository) GetNextID(ctx context.Context) (string, error) {
	return nextSequentialID(ctx, r.db, "manufacturing_orders", "MO-", 3)
}

// statusConflict explains why a guarded UPDATE matched no row.
func (r *ManufacturingOrderRepository) statusConflict(ctx context.Context, q querier, id, action, want string) error {
	var status string
	err := q.QueryRowContext(ctx, "SELECT status FROM manufacturing_orders WHERE id = ?", id).Scan(&status)
	if err == sql.ErrNoRows {
		return apperr.NotFound("manufacturing order", id)
	}
	if err != nil {
		return fmt.Errorf("failed to read manufacturing order status: %w", err)
	}
	return apperr.InvalidTransition("cannot %s manufacturing order %s: must be %s (current status: %s)", action, id, want, status)
}

func listRequirements(ctx context.Context, q querier, orderID string) ([]*secondary.ComponentRequirementRecord, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT order_id, product_id, quantity_per_unit, quantity_required, quantity_consumed
		FROM component_requirements WHERE order_id = ? ORDER BY product_id`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list component requirements: %w", err)
	}
	defer rows.Close()

	var reqs []*secondary.ComponentRequirementRecord
	for rows.Next() {
		req := &secondary.ComponentRequirementRecord{}
		if err := rows.Scan(&req.OrderID, &req.ProductID, &req.QuantityPerUnit, &req.QuantityRequired, &req.QuantityConsumed); err != nil {
			return nil, fmt.Errorf("failed to scan component requirement: %w", err)
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

// applyMovement adjusts product stock and appends the ledger entry. Stock may
// never go negative.
func applyMovement(ctx context.Context, q querier, m *secondary.StockMovementRecord) error {
	result, err := q.ExecContext(ctx,
		"UPDATE products SET current_stock = current_stock + ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND current_stock + ? >= 0",
		m.QuantityChange, m.ProductID, m.QuantityChange,
	)
	if err != nil {
		return fmt.Errorf("failed to update stock of %s: %w", m.ProductID, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		var have float64
		err := q.QueryRowContext(ctx, "SELECT current_stock FROM products WHERE id = ?", m.ProductID).Scan(&have)
		if err == sql.ErrNoRows {
			return apperr.NotFound("product", m.ProductID)
		}
		if err != nil {
			return fmt.Errorf("failed to read stock of %s: %w", m.ProductID, err)
		}
		return apperr.Validation("insufficient stock for %s: need %g, have %g", m.ProductID, -m.QuantityChange, have)
	}

	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	_, err = q.ExecContext(ctx,
		"INSERT INTO stock_movements (id, product_id, quantity_change, type, reference, notes) VALUES (?, ?, ?, ?, ?, ?)",
		m.ID, m.ProductID, m.QuantityChange, m.Type, nullString(m.Reference), nullString(m.Notes),
	)
	if err != nil {
		return fmt.Errorf("failed to book stock movement: %w", err)
	}
	return nil
}

// Ensure ManufacturingOrderRepository implements the interface
var _ secondary.ManufacturingOrderRepository = (*ManufacturingOrderRepository)(nil)
