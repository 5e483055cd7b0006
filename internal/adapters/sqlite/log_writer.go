package sqlite

import (
	"context"

	"github.com/example/shopfloor/internal/ctxutil"
	"github.com/example/shopfloor/internal/ports/secondary"
)

// EventWriterAdapter implements secondary.EventWriter using EventRepository.
type EventWriterAdapter struct {
	eventRepo secondary.EventRepository
}

// NewEventWriterAdapter creates a new EventWriterAdapter.
func NewEventWriterAdapter(eventRepo secondary.EventRepository) *EventWriterAdapter {
	return &EventWriterAdapter{eventRepo: eventRepo}
}

// LogCreate records that an entity was created.
func (w *EventWriterAdapter) LogCreate(ctx context.Context, entityType, entityID string) error {
	return w.write(ctx, entityType, entityID, "create", "", "")
}

// LogTransition records a status change caused by action.
func (w *EventWriterAdapter) LogTransition(ctx context.Context, entityType, entityID, action, fromStatus, toStatus string) error {
	return w.write(ctx, entityType, entityID, action, fromStatus, toStatus)
}

func (w *EventWriterAdapter) write(ctx context.Context, entityType, entityID, action, fromStatus, toStatus string) error {
	id, err := w.eventRepo.GetNextID(ctx)
	if err != nil {
		return err
	}

	return w.eventRepo.Create(ctx, &secondary.OrderEventRecord{
		ID:         id,
		ActorID:    ctxutil.ActorFromContext(ctx),
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		FromStatus: fromStatus,
		ToStatus:   toStatus,
	})
}

// Ensure EventWriterAdapter implements the interface
var _ secondary.EventWriter = (*EventWriterAdapter)(nil)
