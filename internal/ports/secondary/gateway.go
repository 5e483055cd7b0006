package secondary

import "context"

// OrderGateway is the order-management service the shop floor client drives.
// Every mutation returns the authoritative parent order with all its work orders.
type OrderGateway interface {
	StartWorkOrder(ctx context.Context, workOrderID string, opts StartOptions) (*ManufacturingOrderRecord, error)
	PauseWorkOrder(ctx context.Context, workOrderID string, opts NoteOptions) (*ManufacturingOrderRecord, error)
	ResumeWorkOrder(ctx context.Context, workOrderID string, opts NoteOptions) (*ManufacturingOrderRecord, error)
	CompleteWorkOrder(ctx context.Context, workOrderID string, opts CompleteOptions) (*ManufacturingOrderRecord, error)

	// GetManufacturingOrder fetches an order with its work orders.
	GetManufacturingOrder(ctx context.Context, orderID string) (*ManufacturingOrderRecord, error)

	// GetWorkOrder fetches a single work order.
	GetWorkOrder(ctx context.Context, workOrderID string) (*WorkOrderRecord, error)

	// CompleteManufacturingOrder completes an order and triggers its inventory effects.
	CompleteManufacturingOrder(ctx context.Context, orderID string, opts NoteOptions) (*CompletionReceipt, error)
}

// StartOptions are the optional inputs of a start.
type StartOptions struct {
	OperatorID string
	Notes      string
}

// NoteOptions carry an optional operator note.
type NoteOptions struct {
	Notes string
}

// CompleteOptions are the optional inputs of a work order completion.
type CompleteOptions struct {
	Notes                 string
	ActualDurationMinutes int
}

// CompletionReceipt is the result of completing a manufacturing order.
type CompletionReceipt struct {
	Message            string
	ConsumedComponents []ConsumedComponentRecord
	ProducedQuantity   int
	Order              *ManufacturingOrderRecord
}

// ConsumedComponentRecord is a component drawn from stock.
type ConsumedComponentRecord struct {
	ProductID string
	Quantity  float64
}
