// Package primary defines the primary ports (driving adapters) for the application.
// These are the interfaces through which the outside world drives the application.
package primary

import (
	"context"
	"time"

	"github.com/example/shopfloor/internal/core/manufacturing"
	"github.com/example/shopfloor/internal/core/workorder"
)

// ManufacturingService defines the primary port for manufacturing order operations
// on the order backend.
type ManufacturingService interface {
	// CreateOrder creates a DRAFT manufacturing order.
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*ManufacturingOrder, error)

	// GetOrder retrieves an order with its work orders.
	GetOrder(ctx context.Context, orderID string) (*ManufacturingOrder, error)

	// ListOrders lists orders with optional filters. Work orders are not loaded.
	ListOrders(ctx context.Context, filters OrderFilters) ([]*ManufacturingOrder, error)

	// ConfirmOrder confirms a DRAFT order and generates its work orders.
	ConfirmOrder(ctx context.Context, req ConfirmOrderRequest) (*ManufacturingOrder, error)

	// CompleteOrder completes an IN_PROGRESS order and books its stock movements.
	CompleteOrder(ctx context.Context, req CompleteOrderRequest) (*CompleteOrderResponse, error)

	// CancelOrder cancels an order and its open work orders.
	CancelOrder(ctx context.Context, req CancelOrderRequest) (*ManufacturingOrder, error)
}

// CreateOrderRequest contains parameters for creating a manufacturing order.
// BOMID defaults to the product's most recent active bill of materials.
type CreateOrderRequest struct {
	ProductID      string
	BOMID          string
	Quantity       int
	Priority       string
	ScheduledStart string
	Notes          string
}

// ConfirmOrderRequest contains parameters for confirming an order.
type ConfirmOrderRequest struct {
	OrderID string
	Force   bool
}

// CompleteOrderRequest contains parameters for completing an order.
type CompleteOrderRequest struct {
	OrderID string
	Notes   string
}

// CompleteOrderResponse contains the result of completing an order.
type CompleteOrderResponse struct {
	Order              *ManufacturingOrder
	ConsumedComponents []ConsumedComponent
	ProducedQuantity   int
}

// ConsumedComponent is a component drawn from stock by an order completion.
type ConsumedComponent struct {
	ProductID string
	Quantity  float64
}

// CancelOrderRequest contains parameters for canceling an order.
type CancelOrderRequest struct {
	OrderID string
	Reason  string
}

// OrderFilters contains filter options for querying orders.
type OrderFilters struct {
	Status    string
	ProductID string
	Limit     int
}

// ManufacturingOrder represents a manufacturing order at the port boundary.
type ManufacturingOrder struct {
	ID               string
	ProductID        string
	BOMID            string
	Quantity         int
	QuantityProduced int
	Status           manufacturing.Status
	Priority         manufacturing.Priority
	ScheduledStart   string
	ActualStart      *time.Time
	CompletedAt      *time.Time
	Notes            string
	Requirements     []ComponentRequirement
	WorkOrders       []*WorkOrder
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Children returns the work orders as cascade inputs.
func (o *ManufacturingOrder) Children() []manufacturing.ChildRef {
	refs := make([]manufacturing.ChildRef, len(o.WorkOrders))
	for i, wo := range o.WorkOrders {
		refs[i] = manufacturing.ChildRef{ID: wo.ID, Status: wo.Status}
	}
	return refs
}

// Progress is the completed share of work orders as a percentage.
func (o *ManufacturingOrder) Progress() float64 {
	return manufacturing.Progress(o.Children())
}

// WorkOrder finds a child by id.
func (o *ManufacturingOrder) WorkOrder(id string) (*WorkOrder, bool) {
	for _, wo := range o.WorkOrders {
		if wo.ID == id {
			return wo, true
		}
	}
	return nil, false
}

// ComponentRequirement is the quantity of a component an order consumes.
type ComponentRequirement struct {
	ProductID        string
	QuantityPerUnit  float64
	QuantityRequired float64
	QuantityConsumed float64
}

// WorkOrder represents a work order at the port boundary.
type WorkOrder struct {
	ID                       string
	OrderID                  string
	Number                   string
	Sequence                 int
	Name                     string
	WorkCenterID             string
	Status                   workorder.Status
	OperatorID               string
	EstimatedDurationMinutes int
	ActualDurationMinutes    int
	TotalPauseMinutes        int
	ActualStart              *time.Time
	PauseStart               *time.Time
	CompletedAt              *time.Time
	Notes                    string
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

// Snapshot returns the execution fields of the work order.
func (w *WorkOrder) Snapshot() workorder.Snapshot {
	return workorder.Snapshot{
		Status:                w.Status,
		ActualStart:           w.ActualStart,
		PauseStart:            w.PauseStart,
		CompletedAt:           w.CompletedAt,
		TotalPauseMinutes:     w.TotalPauseMinutes,
		ActualDurationMinutes: w.ActualDurationMinutes,
		OperatorID:            w.OperatorID,
	}
}

// ApplySnapshot copies execution fields back onto the work order.
func (w *WorkOrder) ApplySnapshot(s workorder.Snapshot) {
	w.Status = s.Status
	w.ActualStart = s.ActualStart
	w.PauseStart = s.PauseStart
	w.CompletedAt = s.CompletedAt
	w.TotalPauseMinutes = s.TotalPauseMinutes
	w.ActualDurationMinutes = s.ActualDurationMinutes
	w.OperatorID = s.OperatorID
}
