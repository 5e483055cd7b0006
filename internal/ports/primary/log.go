package primary

import "context"

// EventLogService defines the primary port for the order event journal.
type EventLogService interface {
	// ListEvents retrieves events matching the given filters.
	ListEvents(ctx context.Context, filters EventFilters) ([]*OrderEvent, error)

	// GetEvent retrieves a single event by ID.
	GetEvent(ctx context.Context, id string) (*OrderEvent, error)

	// PruneEvents deletes events older than the specified number of days.
	PruneEvents(ctx context.Context, olderThanDays int) (int, error)
}

// OrderEvent represents a journal entry at the port boundary.
type OrderEvent struct {
	ID         string
	Timestamp  string
	ActorID    string
	EntityType string // 'manufacturing_order', 'work_order'
	EntityID   string
	Action     string // 'create', 'confirm', 'start', 'pause', 'resume', 'complete', 'cancel'
	FromStatus string
	ToStatus   string
}

// EventFilters contains filter options for querying events.
type EventFilters struct {
	EntityType string
	EntityID   string
	ActorID    string
	Action     string
	Limit      int
}
