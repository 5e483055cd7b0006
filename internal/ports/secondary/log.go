package secondary

import "context"

// EventWriter defines the interface for journaling order state changes.
// Implementations extract the actor from context.
type EventWriter interface {
	// LogCreate records that an entity was created.
	LogCreate(ctx context.Context, entityType, entityID string) error

	// LogTransition records a status change caused by action.
	LogTransition(ctx context.Context, entityType, entityID, action, fromStatus, toStatus string) error
}

// Entity types used in the journal.
const (
	EntityManufacturingOrder = "manufacturing_order"
	EntityWorkOrder          = "work_order"
	EntityProduct            = "product"
	EntityWorkCenter         = "work_center"
	EntityBOM                = "bom"
)
