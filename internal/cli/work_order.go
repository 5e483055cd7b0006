package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/example/shopfloor/internal/adapters/tui"
	"github.com/example/shopfloor/internal/clock"
	"github.com/example/shopfloor/internal/core/workorder"
	"github.com/example/shopfloor/internal/ports/primary"
	"github.com/example/shopfloor/internal/wire"
)

// WorkOrderCmd returns the wo command with all subcommands attached.
func WorkOrderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "wo",
		Aliases: []string{"work-order"},
		Short:   "Execute work orders",
		Long:    "Start, pause, resume and complete work orders on the shop floor",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List work orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			mo, _ := cmd.Flags().GetString("mo")
			status, _ := cmd.Flags().GetString("status")
			wc, _ := cmd.Flags().GetString("workcenter")
			operator, _ := cmd.Flags().GetString("by")

			b, err := wire.LocalBackend()
			if err != nil {
				return err
			}
			wos, err := b.WorkOrders.ListWorkOrders(NewContext(), primary.WorkOrderFilters{
				OrderID:      mo,
				Status:       strings.ToUpper(status),
				WorkCenterID: wc,
				OperatorID:   operator,
			})
			if err != nil {
				return fmt.Errorf("failed to list work orders: %w", err)
			}
			if len(wos) == 0 {
				fmt.Println("No work orders found")
				return nil
			}

			now := clock.Real{}.Now()
			fmt.Printf("\n%-10s %-10s %-3s %-20s %-12s %-10s %8s %s\n", "ID", "MO", "SEQ", "NAME", "STATUS", "OPERATOR", "EST", "ELAPSED")
			fmt.Println("────────────────────────────────────────────────────────────────────────────────")
			for _, wo := range wos {
				// Pad before coloring so escape codes do not break alignment.
				status := statusColor(string(wo.Status)).Sprint(fmt.Sprintf("%-12s", wo.Status))
				fmt.Printf("%-10s %-10s %-3d %-20s %s %-10s %8s %s\n",
					wo.ID, wo.OrderID, wo.Sequence, wo.Name, status, wo.OperatorID,
					workorder.FormatMinutes(wo.EstimatedDurationMinutes),
					workorder.Elapsed(wo.Snapshot(), now))
			}
			fmt.Println()
			return nil
		},
	}
	listCmd.Flags().String("mo", "", "Filter by manufacturing order")
	listCmd.Flags().StringP("status", "s", "", "Filter by status")
	listCmd.Flags().String("workcenter", "", "Filter by work center")
	listCmd.Flags().String("by", "", "Filter by operator")

	showCmd := &cobra.Command{
		Use:   "show [wo-id]",
		Short: "Show a work order within its manufacturing order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateEntityID(args[0], "work order"); err != nil {
				return err
			}
			adapter, err := wire.ExecutionAdapter()
			if err != nil {
				return err
			}
			_, err = adapter.ShowWorkOrder(NewContext(), args[0])
			return err
		},
	}

	startCmd := &cobra.Command{
		Use:   "start [wo-id]",
		Short: "Start a work order (resumes a paused one)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateEntityID(args[0], "work order"); err != nil {
				return err
			}
			notes, _ := cmd.Flags().GetString("notes")

			adapter, err := wire.ExecutionAdapter()
			if err != nil {
				return err
			}
			return adapter.Start(NewContext(), args[0], GetActorID(), notes)
		},
	}
	startCmd.Flags().String("notes", "", "Notes")

	pauseCmd := &cobra.Command{
		Use:   "pause [wo-id]",
		Short: "Pause a running work order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateEntityID(args[0], "work order"); err != nil {
				return err
			}
			notes, _ := cmd.Flags().GetString("notes")

			adapter, err := wire.ExecutionAdapter()
			if err != nil {
				return err
			}
			return adapter.Pause(NewContext(), args[0], notes)
		},
	}
	pauseCmd.Flags().String("notes", "", "Reason for the pause")

	resumeCmd := &cobra.Command{
		Use:   "resume [wo-id]",
		Short: "Resume a paused work order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateEntityID(args[0], "work order"); err != nil {
				return err
			}
			notes, _ := cmd.Flags().GetString("notes")

			adapter, err := wire.ExecutionAdapter()
			if err != nil {
				return err
			}
			return adapter.Resume(NewContext(), args[0], notes)
		},
	}
	resumeCmd.Flags().String("notes", "", "Notes")

	completeCmd := &cobra.Command{
		Use:   "complete [wo-id]",
		Short: "Complete a work order",
		Long: `Complete a running or paused work order. When it is the last open work
order of an IN_PROGRESS manufacturing order, the order is completed as well.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateEntityID(args[0], "work order"); err != nil {
				return err
			}
			notes, _ := cmd.Flags().GetString("notes")
			minutes, _ := cmd.Flags().GetInt("minutes")
			if minutes < 0 {
				return fmt.Errorf("--minutes must not be negative")
			}

			adapter, err := wire.ExecutionAdapter()
			if err != nil {
				return err
			}
			return adapter.Complete(NewContext(), args[0], notes, minutes)
		},
	}
	completeCmd.Flags().String("notes", "", "Completion notes")
	completeCmd.Flags().Int("minutes", 0, "Actual duration in minutes (default: computed)")

	watchCmd := &cobra.Command{
		Use:   "watch [mo-id]",
		Short: "Live view of a manufacturing order's work orders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateEntityID(args[0], "manufacturing order"); err != nil {
				return err
			}
			exec, err := wire.ExecutionService()
			if err != nil {
				return err
			}
			watcher, err := wire.DurationWatcher()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(NewContext(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, gctx := errgroup.WithContext(ctx)
			viewCtx, viewDone := context.WithCancel(gctx)
			g.Go(func() error {
				wire.Ticker().Run(viewCtx)
				return nil
			})
			g.Go(func() error {
				defer viewDone()
				return tui.Run(viewCtx, exec, watcher, args[0])
			})
			return g.Wait()
		},
	}

	cmd.AddCommand(listCmd, showCmd, startCmd, pauseCmd, resumeCmd, completeCmd, watchCmd)
	return cmd
}
