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

// WorkCenterRepository implements secondary.WorkCenterRepository with SQLite.
type WorkCenterRepository struct {
	db *sql.DB
}

// NewWorkCenterRepository creates a new SQLite work center repository.
func NewWorkCenterRepository(db *sql.DB) *WorkCenterRepository {
	return &WorkCenterRepository{db: db}
}

const workCenterSelectCols = "id, name, code, cost_per_hour, active, created_at"

func scanWorkCenter(scanner rowScanner) (*secondary.WorkCenterRecord, error) {
	var createdAt time.Time

	record := &secondary.WorkCenterRecord{}
	if err := scanner.Scan(&record.ID, &record.Name, &record.Code, &record.CostPerHour, &record.Active, &createdAt); err != nil {
		return nil, err
	}
	record.CreatedAt = formatTime(createdAt)
	return record, nil
}

// Create persists a new work center.
func (r *WorkCenterRepository) Create(ctx context.Context, wc *secondary.WorkCenterRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO work_centers (id, name, code, cost_per_hour, active) VALUES (?, ?, ?, ?, ?)",
		wc.ID, wc.Name, wc.Code, wc.CostPerHour, wc.Active,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: work_centers.code") {
			return apperr.Validation("work center with code %s already exists", wc.Code)
		}
		return fmt.Errorf("failed to create work center: %w", err)
	}
	return nil
}

// GetByID retrieves a work center by its ID.
func (r *WorkCenterRepository) GetByID(ctx context.Context, id string) (*secondary.WorkCenterRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+workCenterSelectCols+" FROM work_centers WHERE id = ?", id)

	record, err := scanWorkCenter(row)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("work center", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get work center: %w", err)
	}
	return record, nil
}

// List retrieves all work centers.
func (r *WorkCenterRepository) List(ctx context.Context) ([]*secondary.WorkCenterRecord, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+workCenterSelectCols+" FROM work_centers ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list work centers: %w", err)
	}
	defer rows.Close()

	var centers []*secondary.WorkCenterRecord
	for rows.Next() {
		record, err := scanWorkCenter(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan work center: %w", err)
		}
		centers = append(centers, record)
	}
	return centers, rows.Err()
}

// GetNextID returns the next available work center ID.
func (r *WorkCenterRepository) GetNextID(ctx context.Context) (string, error) {
	return nextSequentialID(ctx, r.db, "work_centers", "WC-", 3)
}

// Ensure WorkCenterRepository implements the interface
var _ secondary.WorkCenterRepository = (*WorkCenterRepository)(nil)
