package primary

import (
	"context"
	"time"

	"github.com/example/shopfloor/internal/core/manufacturing"
	"github.com/example/shopfloor/internal/core/workorder"
)

// ExecutionService defines the primary port for the shop floor client.
// It drives work orders through the order gateway and keeps a read-through
// copy of each manufacturing order it has loaded.
type ExecutionService interface {
	// LoadOrder fetches a manufacturing order and replaces the cached copy.
	LoadOrder(ctx context.Context, orderID string) (*ManufacturingOrder, error)

	// LoadOrderForWorkOrder resolves the parent of a work order and loads it.
	LoadOrderForWorkOrder(ctx context.Context, workOrderID string) (*ManufacturingOrder, error)

	// CachedOrder returns the last loaded copy of an order.
	CachedOrder(orderID string) (*ManufacturingOrder, bool)

	// StartWorkOrder starts a work order. A PAUSED work order is resumed.
	StartWorkOrder(ctx context.Context, req StartWorkOrderRequest) (*ExecutionResult, error)

	// PauseWorkOrder pauses a work order.
	PauseWorkOrder(ctx context.Context, req WorkOrderActionRequest) (*ExecutionResult, error)

	// ResumeWorkOrder resumes a paused work order.
	ResumeWorkOrder(ctx context.Context, req WorkOrderActionRequest) (*ExecutionResult, error)

	// CompleteWorkOrder completes a work order and applies the parent cascade.
	CompleteWorkOrder(ctx context.Context, req CompleteWorkOrderRequest) (*ExecutionResult, error)

	// CompleteManufacturingOrder completes a parent order by hand.
	CompleteManufacturingOrder(ctx context.Context, req CompleteOrderRequest) (*ExecutionResult, error)

	// InFlight reports whether an action on the work order is outstanding.
	InFlight(workOrderID string) bool

	// Elapsed computes the live duration of a cached work order. No I/O.
	Elapsed(workOrderID string, now time.Time) (workorder.Display, error)
}

// ExecutionResult is the client state after an action.
type ExecutionResult struct {
	Order     *ManufacturingOrder
	WorkOrder *WorkOrder
	Cascade   manufacturing.CascadeAction
	Receipt   *CompleteOrderResponse
}
