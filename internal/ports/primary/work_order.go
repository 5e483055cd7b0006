package primary

import "context"

// WorkOrderService defines the primary port for authoritative work order
// transitions on the order backend.
type WorkOrderService interface {
	// GetWorkOrder retrieves a work order by ID.
	GetWorkOrder(ctx context.Context, workOrderID string) (*WorkOrder, error)

	// ListWorkOrders lists work orders with optional filters.
	ListWorkOrders(ctx context.Context, filters WorkOrderFilters) ([]*WorkOrder, error)

	// StartWorkOrder starts a PENDING work order, or resumes a PAUSED one.
	StartWorkOrder(ctx context.Context, req StartWorkOrderRequest) (*WorkOrderActionResult, error)

	// PauseWorkOrder pauses an IN_PROGRESS work order.
	PauseWorkOrder(ctx context.Context, req WorkOrderActionRequest) (*WorkOrderActionResult, error)

	// ResumeWorkOrder resumes a PAUSED work order.
	ResumeWorkOrder(ctx context.Context, req WorkOrderActionRequest) (*WorkOrderActionResult, error)

	// CompleteWorkOrder completes an IN_PROGRESS or PAUSED work order.
	CompleteWorkOrder(ctx context.Context, req CompleteWorkOrderRequest) (*WorkOrderActionResult, error)
}

// StartWorkOrderRequest contains parameters for starting a work order.
type StartWorkOrderRequest struct {
	WorkOrderID string
	OperatorID  string
	Notes       string
}

// WorkOrderActionRequest contains parameters for pause and resume.
type WorkOrderActionRequest struct {
	WorkOrderID string
	Notes       string
}

// CompleteWorkOrderRequest contains parameters for completing a work order.
// A positive ActualDurationMinutes overrides the computed duration.
type CompleteWorkOrderRequest struct {
	WorkOrderID           string
	Notes                 string
	ActualDurationMinutes int
}

// WorkOrderActionResult is the state after a work order transition.
type WorkOrderActionResult struct {
	WorkOrder *WorkOrder
	Order     *ManufacturingOrder
}

// WorkOrderFilters contains filter options for querying work orders.
type WorkOrderFilters struct {
	OrderID      string
	Status       string
	WorkCenterID string
	OperatorID   string
	Limit        int
}
