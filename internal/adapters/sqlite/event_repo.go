package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/shopfloor/internal/apperr"
	"github.com/example/shopfloor/internal/ports/secondary"
)

// EventRepository implements secondary.EventRepository with SQLite.
type EventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a new SQLite event repository.
func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

const eventSelectCols = "id, timestamp, actor_id, entity_type, entity_id, action, from_status, to_status"

func scanEvent(scanner rowScanner) (*secondary.OrderEventRecord, error) {
	var (
		actorID    sql.NullString
		fromStatus sql.NullString
		toStatus   sql.NullString
		timestamp  time.Time
	)

	record := &secondary.OrderEventRecord{}
	err := scanner.Scan(&record.ID, &timestamp, &actorID, &record.EntityType, &record.EntityID,
		&record.Action, &fromStatus, &toStatus)
	if err != nil {
		return nil, err
	}
	record.Timestamp = formatTime(timestamp)
	record.ActorID = actorID.String
	record.FromStatus = fromStatus.String
	record.ToStatus = toStatus.String
	return record, nil
}

// Create persists a new event.
func (r *EventRepository) Create(ctx context.Context, event *secondary.OrderEventRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO order_events (id, actor_id, entity_type, entity_id, action, from_status, to_status) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		nullString(event.ActorID),
		event.EntityType,
		event.EntityID,
		event.Action,
		nullString(event.FromStatus),
		nullString(event.ToStatus),
	)
	if err != nil {
		return fmt.Errorf("failed to create order event: %w", err)
	}
	return nil
}

// GetByID retrieves an event by its ID.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*secondary.OrderEventRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+eventSelectCols+" FROM order_events WHERE id = ?", id)

	record, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("event", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order event: %w", err)
	}
	return record, nil
}

// List retrieves events matching the given filters, newest first.
func (r *EventRepository) List(ctx context.Context, filters secondary.EventFilters) ([]*secondary.OrderEventRecord, error) {
	query := "SELECT " + eventSelectCols + " FROM order_events WHERE 1=1"
	args := []any{}

	if filters.EntityType != "" {
		query += " AND entity_type = ?"
		args = append(args, filters.EntityType)
	}
	if filters.EntityID != "" {
		query += " AND entity_id = ?"
		args = append(args, filters.EntityID)
	}
	if filters.ActorID != "" {
		query += " AND actor_id = ?"
		args = append(args, filters.ActorID)
	}
	if filters.Action != "" {
		query += " AND action = ?"
		args = append(args, filters.Action)
	}

	query += " ORDER BY timestamp DESC, id DESC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list order events: %w", err)
	}
	defer rows.Close()

	var events []*secondary.OrderEventRecord
	for rows.Next() {
		record, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order event: %w", err)
		}
		events = append(events, record)
	}
	return events, rows.Err()
}

// GetNextID returns the next available event ID.
func (r *EventRepository) GetNextID(ctx context.Context) (string, error) {
	return nextSequentialID(ctx, r.db, "order_events", "EVT-", 4)
}

// PruneOlderThan deletes events older than the given number of days.
func (r *EventRepository) PruneOlderThan(ctx context.Context, days int) (int, error) {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM order_events WHERE timestamp < datetime('now', ?)",
		fmt.Sprintf("-%d days", days),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune order events: %w", err)
	}

	count, _ := result.RowsAffected()
	return int(count), nil
}

// Ensure EventRepository implements the interface
var _ secondary.EventRepository = (*EventRepository)(nil)
