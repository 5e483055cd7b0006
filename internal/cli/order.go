package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/shopfloor/internal/ports/primary"
	"github.com/example/shopfloor/internal/wire"
)

// OrderCmd returns the mo command with all subcommands attached.
func OrderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "mo",
		Aliases: []string{"order"},
		Short:   "Manage manufacturing orders",
		Long:    "Create, confirm, complete and cancel manufacturing orders",
	}

	createCmd := &cobra.Command{
		Use:   "create [product-id]",
		Short: "Create a DRAFT manufacturing order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateEntityID(args[0], "product"); err != nil {
				return err
			}
			qty, _ := cmd.Flags().GetInt("quantity")
			bom, _ := cmd.Flags().GetString("bom")
			priority, _ := cmd.Flags().GetString("priority")
			scheduled, _ := cmd.Flags().GetString("scheduled")
			notes, _ := cmd.Flags().GetString("notes")

			adapter, err := wire.OrderAdapter()
			if err != nil {
				return err
			}
			return adapter.Create(NewContext(), primary.CreateOrderRequest{
				ProductID:      args[0],
				BOMID:          bom,
				Quantity:       qty,
				Priority:       strings.ToUpper(priority),
				ScheduledStart: scheduled,
				Notes:          notes,
			})
		},
	}
	createCmd.Flags().IntP("quantity", "q", 1, "Quantity to produce")
	createCmd.Flags().String("bom", "", "BOM ID (default: the product's latest active BOM)")
	createCmd.Flags().StringP("priority", "p", "MEDIUM", "LOW, MEDIUM or HIGH")
	createCmd.Flags().String("scheduled", "", "Scheduled start (RFC 3339)")
	createCmd.Flags().String("notes", "", "Notes")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List manufacturing orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, _ := cmd.Flags().GetString("status")
			product, _ := cmd.Flags().GetString("product")
			limit, _ := cmd.Flags().GetInt("limit")

			adapter, err := wire.OrderAdapter()
			if err != nil {
				return err
			}
			return adapter.List(NewContext(), primary.OrderFilters{
				Status:    strings.ToUpper(status),
				ProductID: product,
				Limit:     limit,
			})
		},
	}
	listCmd.Flags().StringP("status", "s", "", "Filter by status")
	listCmd.Flags().String("product", "", "Filter by product ID")
	listCmd.Flags().IntP("limit", "n", 0, "Maximum orders to show")

	showCmd := &cobra.Command{
		Use:   "show [mo-id]",
		Short: "Show an order with its work orders and worked time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateEntityID(args[0], "manufacturing order"); err != nil {
				return err
			}
			adapter, err := wire.ExecutionAdapter()
			if err != nil {
				return err
			}
			_, err = adapter.Show(NewContext(), args[0])
			return err
		},
	}

	confirmCmd := &cobra.Command{
		Use:   "confirm [mo-id]",
		Short: "Confirm a DRAFT order and generate its work orders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateEntityID(args[0], "manufacturing order"); err != nil {
				return err
			}
			force, _ := cmd.Flags().GetBool("force")

			adapter, err := wire.OrderAdapter()
			if err != nil {
				return err
			}
			return adapter.Confirm(NewContext(), args[0], force)
		},
	}
	confirmCmd.Flags().Bool("force", false, "Confirm despite insufficient component stock")

	completeCmd := &cobra.Command{
		Use:   "complete [mo-id]",
		Short: "Complete an order whose work orders are all done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateEntityID(args[0], "manufacturing order"); err != nil {
				return err
			}
			notes, _ := cmd.Flags().GetString("notes")

			adapter, err := wire.ExecutionAdapter()
			if err != nil {
				return err
			}
			return adapter.CompleteOrder(NewContext(), args[0], notes)
		},
	}
	completeCmd.Flags().String("notes", "", "Completion notes")

	cancelCmd := &cobra.Command{
		Use:   "cancel [mo-id]",
		Short: "Cancel an order and its open work orders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateEntityID(args[0], "manufacturing order"); err != nil {
				return err
			}
			reason, _ := cmd.Flags().GetString("reason")

			adapter, err := wire.OrderAdapter()
			if err != nil {
				return err
			}
			return adapter.Cancel(NewContext(), args[0], reason)
		},
	}
	cancelCmd.Flags().String("reason", "", "Cancellation reason")

	cmd.AddCommand(createCmd, listCmd, showCmd, confirmCmd, completeCmd, cancelCmd)
	return cmd
}
