package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/example/shopfloor/internal/clock"
	"github.com/example/shopfloor/internal/core/manufacturing"
	"github.com/example/shopfloor/internal/core/workorder"
	"github.com/example/shopfloor/internal/ports/primary"
)

// ExecutionAdapter translates shop floor commands to ExecutionService calls.
// Works against either gateway.
type ExecutionAdapter struct {
	service primary.ExecutionService
	clock   clock.Clock
	out     io.Writer
}

// NewExecutionAdapter creates a new ExecutionAdapter.
func NewExecutionAdapter(service primary.ExecutionService, clk clock.Clock, out io.Writer) *ExecutionAdapter {
	return &ExecutionAdapter{
		service: service,
		clock:   clk,
		out:     out,
	}
}

// Show displays an order with the live duration of each work order.
func (a *ExecutionAdapter) Show(ctx context.Context, orderID string) (*primary.ManufacturingOrder, error) {
	order, err := a.service.LoadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	a.printOrder(order)
	return order, nil
}

// ShowWorkOrder displays the parent order of a work order.
func (a *ExecutionAdapter) ShowWorkOrder(ctx context.Context, workOrderID string) (*primary.ManufacturingOrder, error) {
	order, err := a.service.LoadOrderForWorkOrder(ctx, workOrderID)
	if err != nil {
		return nil, err
	}
	a.printOrder(order)
	return order, nil
}

// Start starts (or resumes) a work order.
func (a *ExecutionAdapter) Start(ctx context.Context, workOrderID, operatorID, notes string) error {
	res, err := a.service.StartWorkOrder(ctx, primary.StartWorkOrderRequest{
		WorkOrderID: workOrderID,
		OperatorID:  operatorID,
		Notes:       notes,
	})
	if err != nil {
		return err
	}
	a.printAction("started", res)
	return nil
}

// Pause pauses a work order.
func (a *ExecutionAdapter) Pause(ctx context.Context, workOrderID, notes string) error {
	res, err := a.service.PauseWorkOrder(ctx, primary.WorkOrderActionRequest{WorkOrderID: workOrderID, Notes: notes})
	if err != nil {
		return err
	}
	a.printAction("paused", res)
	return nil
}

// Resume resumes a work order.
func (a *ExecutionAdapter) Resume(ctx context.Context, workOrderID, notes string) error {
	res, err := a.service.ResumeWorkOrder(ctx, primary.WorkOrderActionRequest{WorkOrderID: workOrderID, Notes: notes})
	if err != nil {
		return err
	}
	a.printAction("resumed", res)
	return nil
}

// Complete completes a work order and reports the parent cascade. When the
// parent completion fails the work order stays completed; the failure is
// printed after the work order line and returned.
func (a *ExecutionAdapter) Complete(ctx context.Context, workOrderID, notes string, minutes int) error {
	res, err := a.service.CompleteWorkOrder(ctx, primary.CompleteWorkOrderRequest{
		WorkOrderID:           workOrderID,
		Notes:                 notes,
		ActualDurationMinutes: minutes,
	})
	if res != nil {
		a.printAction("completed", res)
		switch res.Cascade {
		case manufacturing.CascadeInterimInProgress:
			fmt.Fprintf(a.out, "  %s shown as IN_PROGRESS\n", res.Order.ID)
		case manufacturing.CascadeCompleteOrder:
			if res.Receipt != nil {
				a.printReceipt(res.Receipt)
			}
		}
	}
	if err != nil {
		if res != nil {
			return fmt.Errorf("work order completed but manufacturing order %s was not: %w", res.Order.ID, err)
		}
		return err
	}
	return nil
}

// CompleteOrder completes a manufacturing order by hand.
func (a *ExecutionAdapter) CompleteOrder(ctx context.Context, orderID, notes string) error {
	res, err := a.service.CompleteManufacturingOrder(ctx, primary.CompleteOrderRequest{OrderID: orderID, Notes: notes})
	if err != nil {
		return err
	}
	a.printReceipt(res.Receipt)
	return nil
}

// Helper methods

func (a *ExecutionAdapter) printAction(verb string, res *primary.ExecutionResult) {
	fmt.Fprintf(a.out, "✓ Work order %s %s (%s, %s %s)\n",
		res.WorkOrder.ID, verb, a.elapsed(res.WorkOrder), res.Order.ID, res.Order.Status)
}

func (a *ExecutionAdapter) printReceipt(receipt *primary.CompleteOrderResponse) {
	fmt.Fprintf(a.out, "✓ Manufacturing order %s completed: produced %d × %s\n",
		receipt.Order.ID, receipt.ProducedQuantity, receipt.Order.ProductID)
	for _, c := range receipt.ConsumedComponents {
		fmt.Fprintf(a.out, "  consumed %g × %s\n", c.Quantity, c.ProductID)
	}
}

func (a *ExecutionAdapter) printOrder(order *primary.ManufacturingOrder) {
	fmt.Fprintf(a.out, "\nManufacturing order: %s\n", order.ID)
	fmt.Fprintf(a.out, "Product:  %s × %d (BOM %s)\n", order.ProductID, order.Quantity, order.BOMID)
	fmt.Fprintf(a.out, "Status:   %s\n", order.Status)
	fmt.Fprintf(a.out, "Priority: %s\n", order.Priority)
	fmt.Fprintf(a.out, "Progress: %.0f%%\n", order.Progress())
	if order.Notes != "" {
		fmt.Fprintf(a.out, "Notes:    %s\n", order.Notes)
	}

	if len(order.WorkOrders) > 0 {
		fmt.Fprintf(a.out, "\n%-10s %-3s %-20s %-12s %-10s %s\n", "WO", "SEQ", "NAME", "STATUS", "OPERATOR", "ELAPSED")
		fmt.Fprintln(a.out, "────────────────────────────────────────────────────────────────")
		for _, wo := range order.WorkOrders {
			fmt.Fprintf(a.out, "%-10s %-3d %-20s %-12s %-10s %s\n",
				wo.ID, wo.Sequence, wo.Name, wo.Status, wo.OperatorID, a.elapsed(wo))
		}
	}
	fmt.Fprintln(a.out)
}

func (a *ExecutionAdapter) elapsed(wo *primary.WorkOrder) string {
	return workorder.Elapsed(wo.Snapshot(), a.clock.Now()).String()
}
