// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle argument parsing, output formatting,
// but delegate business logic to services.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/example/shopfloor/internal/ports/primary"
)

// OrderAdapter is a thin adapter that translates CLI operations to ManufacturingService calls.
// It depends only on the ManufacturingService interface, enabling easy testing with mocks.
type OrderAdapter struct {
	service primary.ManufacturingService
	out     io.Writer
}

// NewOrderAdapter creates a new OrderAdapter with the given service.
func NewOrderAdapter(service primary.ManufacturingService, out io.Writer) *OrderAdapter {
	return &OrderAdapter{
		service: service,
		out:     out,
	}
}

// Create creates a new DRAFT manufacturing order.
func (a *OrderAdapter) Create(ctx context.Context, req primary.CreateOrderRequest) error {
	order, err := a.service.CreateOrder(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Created manufacturing order %s: %d × %s (BOM %s)\n", order.ID, order.Quantity, order.ProductID, order.BOMID)
	return nil
}

// List lists manufacturing orders with optional filters.
func (a *OrderAdapter) List(ctx context.Context, filters primary.OrderFilters) error {
	orders, err := a.service.ListOrders(ctx, filters)
	if err != nil {
		return fmt.Errorf("failed to list manufacturing orders: %w", err)
	}

	if len(orders) == 0 {
		fmt.Fprintln(a.out, "No manufacturing orders found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-10s %-12s %-10s %5s %-8s %s\n", "ID", "STATUS", "PRODUCT", "QTY", "PRIORITY", "SCHEDULED")
	fmt.Fprintln(a.out, "────────────────────────────────────────────────────────────────")
	for _, o := range orders {
		fmt.Fprintf(a.out, "%-10s %-12s %-10s %5d %-8s %s\n", o.ID, o.Status, o.ProductID, o.Quantity, o.Priority, o.ScheduledStart)
	}
	fmt.Fprintln(a.out)

	return nil
}

// Confirm confirms a DRAFT order and lists the generated work orders.
func (a *OrderAdapter) Confirm(ctx context.Context, orderID string, force bool) error {
	order, err := a.service.ConfirmOrder(ctx, primary.ConfirmOrderRequest{OrderID: orderID, Force: force})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Manufacturing order %s confirmed with %d work orders\n", order.ID, len(order.WorkOrders))
	for _, wo := range order.WorkOrders {
		fmt.Fprintf(a.out, "  %s %-20s %-8s est. %d min\n", wo.ID, wo.Name, wo.WorkCenterID, wo.EstimatedDurationMinutes)
	}
	return nil
}

// Cancel cancels an order and its open work orders.
func (a *OrderAdapter) Cancel(ctx context.Context, orderID, reason string) error {
	order, err := a.service.CancelOrder(ctx, primary.CancelOrderRequest{OrderID: orderID, Reason: reason})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Manufacturing order %s canceled\n", order.ID)
	return nil
}
