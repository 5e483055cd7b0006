package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/shopfloor/internal/apperr"
	"github.com/example/shopfloor/internal/ports/secondary"
)

// WorkOrderRepository implements secondary.WorkOrderRepository with SQLite.
type WorkOrderRepository struct {
	db *sql.DB
}

// NewWorkOrderRepository creates a new SQLite work order repository.
func NewWorkOrderRepository(db *sql.DB) *WorkOrderRepository {
	return &WorkOrderRepository{db: db}
}

const workOrderSelectCols = "id, order_id, number, sequence, name, work_center_id, status, operator_id, estimated_duration_minutes, actual_duration_minutes, total_pause_minutes, actual_start, pause_start, completed_at, notes, created_at, updated_at"

// scanWorkOrder scans a work order row into a WorkOrderRecord.
func scanWorkOrder(scanner rowScanner) (*secondary.WorkOrderRecord, error) {
	var (
		workCenterID sql.NullString
		operatorID   sql.NullString
		notes        sql.NullString
		actualStart  sql.NullTime
		pauseStart   sql.NullTime
		completedAt  sql.NullTime
		createdAt    time.Time
		updatedAt    time.Time
	)

	record := &secondary.WorkOrderRecord{}
	err := scanner.Scan(
		&record.ID, &record.OrderID, &record.Number, &record.Sequence, &record.Name, &workCenterID,
		&record.Status, &operatorID, &record.EstimatedDurationMinutes, &record.ActualDurationMinutes,
		&record.TotalPauseMinutes, &actualStart, &pauseStart, &completedAt, &notes, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.WorkCenterID = workCenterID.String
	record.OperatorID = operatorID.String
	record.Notes = notes.String
	record.ActualStart = formatNullTime(actualStart)
	record.PauseStart = formatNullTime(pauseStart)
	record.CompletedAt = formatNullTime(completedAt)
	record.CreatedAt = formatTime(createdAt)
	record.UpdatedAt = formatTime(updatedAt)

	return record, nil
}

// GetByID retrieves a work order by its ID.
func (r *WorkOrderRepository) GetByID(ctx context.Context, id string) (*secondary.WorkOrderRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+workOrderSelectCols+" FROM work_orders WHERE id = ?", id)

	record, err := scanWorkOrder(row)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("work order", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get work order: %w", err)
	}
	return record, nil
}

// List retrieves work orders matching the given filters.
func (r *WorkOrderRepository) List(ctx context.Context, filters secondary.WorkOrderFilters) ([]*secondary.WorkOrderRecord, error) {
	return listWorkOrders(ctx, r.db, filters)
}

func listWorkOrders(ctx context.Context, q querier, filters secondary.WorkOrderFilters) ([]*secondary.WorkOrderRecord, error) {
	query := "SELECT " + workOrderSelectCols + " FROM work_orders WHERE 1=1"
	args := []any{}

	if filters.OrderID != "" {
		query += " AND order_id = ?"
		args = append(args, filters.OrderID)
	}
	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}
	if filters.WorkCenterID != "" {
		query += " AND work_center_id = ?"
		args = append(args, filters.WorkCenterID)
	}
	if filters.OperatorID != "" {
		query += " AND operator_id = ?"
		args = append(args, filters.OperatorID)
	}

	query += " ORDER BY order_id, sequence"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list work orders: %w", err)
	}
	defer rows.Close()

	var workOrders []*secondary.WorkOrderRecord
	for rows.Next() {
		record, err := scanWorkOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan work order: %w", err)
		}
		workOrders = append(workOrders, record)
	}
	return workOrders, rows.Err()
}

// UpdateExecution writes the execution fields and notes of a work order,
// provided its stored status still equals from.
func (r *WorkOrderRepository) UpdateExecution(ctx context.Context, wo *secondary.WorkOrderRecord, from string) error {
	n, err := updateWorkOrderExecution(ctx, r.db, wo, from)
	if err != nil {
		return fmt.Errorf("failed to update work order: %w", err)
	}
	if n == 0 {
		return workOrderConflict(ctx, r.db, wo.ID, from, wo.Status)
	}
	return nil
}

// GetNextID returns the next available work order ID.
func (r *WorkOrderRepository) GetNextID(ctx context.Context) (string, error) {
	return nextSequentialID(ctx, r.db, "work_orders", "WO-", 3)
}

func insertWorkOrder(ctx context.Context, q querier, wo *secondary.WorkOrderRecord) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO work_orders (id, order_id, number, sequence, name, work_center_id, status, estimated_duration_minutes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		wo.ID, wo.OrderID, wo.Number, wo.Sequence, wo.Name, nullString(wo.WorkCenterID), wo.Status, wo.EstimatedDurationMinutes,
	)
	if err != nil {
		return fmt.Errorf("failed to create work order %s: %w", wo.Number, err)
	}
	return nil
}

// Ensure WorkOrderRepository implements the interface
var _ secondary.WorkOrderRepository = (*WorkOrderRepository)(nil)

// updateWorkOrderExecution reports how many rows matched id and from.
func updateWorkOrderExecution(ctx context.Context, q querier, wo *secondary.WorkOrderRecord, from string) (int64, error) {
	actualStart, err := nullTime(wo.ActualStart)
	if err != nil {
		return 0, err
	}
	pauseStart, err := nullTime(wo.PauseStart)
	if err != nil {
		return 0, err
	}
	completedAt, err := nullTime(wo.CompletedAt)
	if err != nil {
		return 0, err
	}

	result, err := q.ExecContext(ctx,
		`UPDATE work_orders SET status = ?, operator_id = ?, actual_duration_minutes = ?, total_pause_minutes = ?,
			actual_start = ?, pause_start = ?, completed_at = ?, notes = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ?`,
		wo.Status, nullString(wo.OperatorID), wo.ActualDurationMinutes, wo.TotalPauseMinutes,
		actualStart, pauseStart, completedAt, nullString(wo.Notes), wo.ID, from,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// workOrderConflict explains why a guarded work order UPDATE matched no row.
func workOrderConflict(ctx context.Context, q querier, id, from, to string) error {
	var status string
	err := q.QueryRowContext(ctx, "SELECT status FROM work_orders WHERE id = ?", id).Scan(&status)
	if err == sql.ErrNoRows {
		return apperr.NotFound("work order", id)
	}
	if err != nil {
		return fmt.Errorf("failed to read work order status: %w", err)
	}
	return apperr.InvalidTransition("cannot move work order %s from %s to %s (current status: %s)", id, from, to, status)
}
