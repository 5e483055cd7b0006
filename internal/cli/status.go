package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/shopfloor/internal/core/manufacturing"
	"github.com/example/shopfloor/internal/core/workorder"
	"github.com/example/shopfloor/internal/ports/primary"
	"github.com/example/shopfloor/internal/wire"
)

// statusBadge colors an order or work order status.
func statusBadge(status string) string {
	return statusColor(status).Sprint(status)
}

func statusColor(status string) *color.Color {
	switch status {
	case string(manufacturing.StatusDraft), string(workorder.StatusPending):
		return color.New(color.FgHiBlack)
	case string(manufacturing.StatusConfirmed):
		return color.New(color.FgHiBlue)
	case string(workorder.StatusInProgress):
		return color.New(color.FgHiGreen)
	case string(workorder.StatusPaused):
		return color.New(color.FgYellow)
	case string(workorder.StatusCompleted):
		return color.New(color.FgCyan)
	case string(workorder.StatusCanceled):
		return color.New(color.FgRed)
	default:
		return color.New(color.FgWhite)
	}
}

// priorityBadge colors an order priority.
func priorityBadge(p manufacturing.Priority) string {
	switch p {
	case manufacturing.PriorityHigh:
		return color.New(color.FgRed, color.Bold).Sprint(p)
	case manufacturing.PriorityLow:
		return color.New(color.FgHiBlack).Sprint(p)
	default:
		return string(p)
	}
}

// StatusCmd returns the status command
func StatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show open manufacturing orders and running work orders",
		Long: `Display the shop floor at a glance:
- Active backend and operator
- Manufacturing orders that are not yet completed or canceled
- Work orders currently IN_PROGRESS or PAUSED`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()
			cfg := wire.Config()

			fmt.Printf("Backend:  %s", cfg.Backend)
			if cfg.APIURL != "" {
				fmt.Printf(" (%s)", cfg.APIURL)
			}
			fmt.Println()
			operator := GetActorID()
			if operator == "" {
				operator = "(not set)"
			}
			fmt.Printf("Operator: %s\n\n", operator)

			b, err := wire.LocalBackend()
			if err != nil {
				return err
			}

			orders, err := b.Manufacturing.ListOrders(ctx, primary.OrderFilters{})
			if err != nil {
				return fmt.Errorf("failed to list manufacturing orders: %w", err)
			}
			open := 0
			for _, o := range orders {
				if o.Status.IsTerminal() {
					continue
				}
				if open == 0 {
					fmt.Println("Open manufacturing orders:")
				}
				open++
				fmt.Printf("  %-10s %s %s × %d  %s\n", o.ID, statusBadge(string(o.Status)), o.ProductID, o.Quantity, priorityBadge(o.Priority))
			}
			if open == 0 {
				fmt.Println("No open manufacturing orders")
			}
			fmt.Println()

			var running []*primary.WorkOrder
			for _, status := range []workorder.Status{workorder.StatusInProgress, workorder.StatusPaused} {
				wos, err := b.WorkOrders.ListWorkOrders(ctx, primary.WorkOrderFilters{Status: string(status)})
				if err != nil {
					return fmt.Errorf("failed to list work orders: %w", err)
				}
				running = append(running, wos...)
			}
			if len(running) == 0 {
				fmt.Println("No work orders running")
				return nil
			}
			fmt.Println("Running work orders:")
			for _, wo := range running {
				fmt.Printf("  %-10s %-10s %s %-20s %s\n", wo.ID, wo.OrderID, statusBadge(string(wo.Status)), wo.Name, wo.OperatorID)
			}
			return nil
		},
	}
}
