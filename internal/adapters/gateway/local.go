// Package gateway contains adapters that implement secondary.OrderGateway
// by wrapping the reference order backend services in process.
package gateway

import (
	"context"
	"time"

	"github.com/example/shopfloor/internal/ports/primary"
	"github.com/example/shopfloor/internal/ports/secondary"
)

// LocalAdapter drives the reference backend services directly, without a network hop.
type LocalAdapter struct {
	workOrders    primary.WorkOrderService
	manufacturing primary.ManufacturingService
}

// NewLocal creates a new LocalAdapter.
func NewLocal(workOrders primary.WorkOrderService, manufacturing primary.ManufacturingService) *LocalAdapter {
	return &LocalAdapter{
		workOrders:    workOrders,
		manufacturing: manufacturing,
	}
}

// StartWorkOrder starts a work order and returns its parent.
func (a *LocalAdapter) StartWorkOrder(ctx context.Context, workOrderID string, opts secondary.StartOptions) (*secondary.ManufacturingOrderRecord, error) {
	res, err := a.workOrders.StartWorkOrder(ctx, primary.StartWorkOrderRequest{
		WorkOrderID: workOrderID,
		OperatorID:  opts.OperatorID,
		Notes:       opts.Notes,
	})
	if err != nil {
		return nil, err
	}
	return toOrderRecord(res.Order), nil
}

// PauseWorkOrder pauses a work order and returns its parent.
func (a *LocalAdapter) PauseWorkOrder(ctx context.Context, workOrderID string, opts secondary.NoteOptions) (*secondary.ManufacturingOrderRecord, error) {
	res, err := a.workOrders.PauseWorkOrder(ctx, primary.WorkOrderActionRequest{WorkOrderID: workOrderID, Notes: opts.Notes})
	if err != nil {
		return nil, err
	}
	return toOrderRecord(res.Order), nil
}

// ResumeWorkOrder resumes a work order and returns its parent.
func (a *LocalAdapter) ResumeWorkOrder(ctx context.Context, workOrderID string, opts secondary.NoteOptions) (*secondary.ManufacturingOrderRecord, error) {
	res, err := a.workOrders.ResumeWorkOrder(ctx, primary.WorkOrderActionRequest{WorkOrderID: workOrderID, Notes: opts.Notes})
	if err != nil {
		return nil, err
	}
	return toOrderRecord(res.Order), nil
}

// CompleteWorkOrder completes a work order and returns its parent.
func (a *LocalAdapter) CompleteWorkOrder(ctx context.Context, workOrderID string, opts secondary.CompleteOptions) (*secondary.ManufacturingOrderRecord, error) {
	res, err := a.workOrders.CompleteWorkOrder(ctx, primary.CompleteWorkOrderRequest{
		WorkOrderID:           workOrderID,
		Notes:                 opts.Notes,
		ActualDurationMinutes: opts.ActualDurationMinutes,
	})
	if err != nil {
		return nil, err
	}
	return toOrderRecord(res.Order), nil
}

// GetManufacturingOrder fetches an order with its work orders.
func (a *LocalAdapter) GetManufacturingOrder(ctx context.Context, orderID string) (*secondary.ManufacturingOrderRecord, error) {
	order, err := a.manufacturing.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return toOrderRecord(order), nil
}

// GetWorkOrder fetches a single work order.
func (a *LocalAdapter) GetWorkOrder(ctx context.Context, workOrderID string) (*secondary.WorkOrderRecord, error) {
	wo, err := a.workOrders.GetWorkOrder(ctx, workOrderID)
	if err != nil {
		return nil, err
	}
	return toWorkOrderRecord(wo), nil
}

// CompleteManufacturingOrder completes an order and books its stock movements.
func (a *LocalAdapter) CompleteManufacturingOrder(ctx context.Context, orderID string, opts secondary.NoteOptions) (*secondary.CompletionReceipt, error) {
	resp, err := a.manufacturing.CompleteOrder(ctx, primary.CompleteOrderRequest{OrderID: orderID, Notes: opts.Notes})
	if err != nil {
		return nil, err
	}

	receipt := &secondary.CompletionReceipt{
		Message:          "Manufacturing order " + orderID + " completed",
		ProducedQuantity: resp.ProducedQuantity,
		Order:            toOrderRecord(resp.Order),
	}
	for _, c := range resp.ConsumedComponents {
		receipt.ConsumedComponents = append(receipt.ConsumedComponents, secondary.ConsumedComponentRecord{
			ProductID: c.ProductID,
			Quantity:  c.Quantity,
		})
	}
	return receipt, nil
}

// Helper methods

func toOrderRecord(o *primary.ManufacturingOrder) *secondary.ManufacturingOrderRecord {
	if o == nil {
		return nil
	}
	r := &secondary.ManufacturingOrderRecord{
		ID:               o.ID,
		ProductID:        o.ProductID,
		BOMID:            o.BOMID,
		Quantity:         o.Quantity,
		QuantityProduced: o.QuantityProduced,
		Status:           string(o.Status),
		Priority:         string(o.Priority),
		ScheduledStart:   o.ScheduledStart,
		ActualStart:      formatTime(o.ActualStart),
		CompletedAt:      formatTime(o.CompletedAt),
		Notes:            o.Notes,
		CreatedAt:        formatTimeValue(o.CreatedAt),
		UpdatedAt:        formatTimeValue(o.UpdatedAt),
	}
	for _, req := range o.Requirements {
		r.Requirements = append(r.Requirements, &secondary.ComponentRequirementRecord{
			OrderID:          o.ID,
			ProductID:        req.ProductID,
			QuantityPerUnit:  req.QuantityPerUnit,
			QuantityRequired: req.QuantityRequired,
			QuantityConsumed: req.QuantityConsumed,
		})
	}
	for _, wo := range o.WorkOrders {
		r.WorkOrders = append(r.WorkOrders, toWorkOrderRecord(wo))
	}
	return r
}

func toWorkOrderRecord(w *primary.WorkOrder) *secondary.WorkOrderRecord {
	return &secondary.WorkOrderRecord{
		ID:                       w.ID,
		OrderID:                  w.OrderID,
		Number:                   w.Number,
		Sequence:                 w.Sequence,
		Name:                     w.Name,
		WorkCenterID:             w.WorkCenterID,
		Status:                   string(w.Status),
		OperatorID:               w.OperatorID,
		EstimatedDurationMinutes: w.EstimatedDurationMinutes,
		ActualDurationMinutes:    w.ActualDurationMinutes,
		TotalPauseMinutes:        w.TotalPauseMinutes,
		ActualStart:              formatTime(w.ActualStart),
		PauseStart:               formatTime(w.PauseStart),
		CompletedAt:              formatTime(w.CompletedAt),
		Notes:                    w.Notes,
		CreatedAt:                formatTimeValue(w.CreatedAt),
		UpdatedAt:                formatTimeValue(w.UpdatedAt),
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatTimeValue(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// Ensure LocalAdapter implements the interface
var _ secondary.OrderGateway = (*LocalAdapter)(nil)
