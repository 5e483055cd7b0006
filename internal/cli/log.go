package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/shopfloor/internal/ports/primary"
	"github.com/example/shopfloor/internal/wire"
)

// LogCmd returns the log command with all subcommands attached.
func LogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "View the order event journal",
		Long:  "View and prune the journal of order and work order state changes",
	}

	tailCmd := &cobra.Command{
		Use:     "tail",
		Aliases: []string{"list"},
		Short:   "Show recent events",
		Long:    "Show recent journal entries (default 50)",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			actorID, _ := cmd.Flags().GetString("actor")
			entityType, _ := cmd.Flags().GetString("type")
			action, _ := cmd.Flags().GetString("action")
			follow, _ := cmd.Flags().GetBool("follow")

			if limit <= 0 {
				limit = 50
			}

			b, err := wire.LocalBackend()
			if err != nil {
				return err
			}

			filters := primary.EventFilters{
				ActorID:    actorID,
				EntityType: entityType,
				Action:     action,
				Limit:      limit,
			}

			ctx, stop := signal.NotifyContext(NewContext(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			events, err := b.Events.ListEvents(ctx, filters)
			if err != nil {
				return fmt.Errorf("failed to fetch events: %w", err)
			}
			printEvents(events)

			if !follow {
				return nil
			}

			var last string
			if len(events) > 0 {
				last = events[0].Timestamp
			}

			tk := time.NewTicker(time.Second)
			defer tk.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-tk.C:
				}

				fresh, err := b.Events.ListEvents(ctx, filters)
				if err != nil {
					fmt.Printf("Error fetching events: %v\n", err)
					continue
				}
				// Newest first; print oldest unseen first.
				for i := len(fresh) - 1; i >= 0; i-- {
					if e := fresh[i]; last == "" || e.Timestamp > last {
						printEvent(e)
						last = e.Timestamp
					}
				}
			}
		},
	}
	tailCmd.Flags().IntP("limit", "n", 50, "Number of entries to show")
	tailCmd.Flags().String("actor", "", "Filter by actor ID")
	tailCmd.Flags().String("type", "", "Filter by entity type (manufacturing_order, work_order)")
	tailCmd.Flags().String("action", "", "Filter by action")
	tailCmd.Flags().BoolP("follow", "f", false, "Follow mode: poll for new entries")

	showCmd := &cobra.Command{
		Use:   "show [entity-id]",
		Short: "Show the history of one order",
		Long:  "Show journal entries for a manufacturing order or work order (e.g., MO-001, WO-003)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actorID, _ := cmd.Flags().GetString("actor")
			limit, _ := cmd.Flags().GetInt("limit")

			filters := primary.EventFilters{
				ActorID: actorID,
				Limit:   limit,
			}
			if len(args) > 0 {
				filters.EntityID = args[0]
			}

			b, err := wire.LocalBackend()
			if err != nil {
				return err
			}
			events, err := b.Events.ListEvents(NewContext(), filters)
			if err != nil {
				return fmt.Errorf("failed to fetch events: %w", err)
			}

			if len(events) == 0 {
				fmt.Println("No events found.")
				return nil
			}

			printEvents(events)
			return nil
		},
	}
	showCmd.Flags().String("actor", "", "Filter by actor ID")
	showCmd.Flags().IntP("limit", "n", 100, "Maximum entries to show")

	pruneCmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old journal entries",
		Long:  "Delete journal entries older than the given number of days (default 90)",
		RunE: func(cmd *cobra.Command, args []string) error {
			days, _ := cmd.Flags().GetInt("days")

			b, err := wire.LocalBackend()
			if err != nil {
				return err
			}
			count, err := b.Events.PruneEvents(NewContext(), days)
			if err != nil {
				return fmt.Errorf("failed to prune events: %w", err)
			}

			if count == 0 {
				fmt.Printf("No events older than %d days found.\n", days)
			} else {
				fmt.Printf("Pruned %d events older than %d days.\n", count, days)
			}
			return nil
		},
	}
	pruneCmd.Flags().Int("days", 90, "Delete entries older than N days")

	cmd.AddCommand(tailCmd, showCmd, pruneCmd)
	return cmd
}

func printEvents(events []*primary.OrderEvent) {
	if len(events) == 0 {
		fmt.Println("No events found.")
		return
	}

	fmt.Printf("Found %d events:\n\n", len(events))

	// Oldest first.
	for i := len(events) - 1; i >= 0; i-- {
		printEvent(events[i])
	}
}

// Format: timestamp | actor | action | entity_type/entity_id | from -> to
func printEvent(e *primary.OrderEvent) {
	actor := e.ActorID
	if actor == "" {
		actor = "-"
	}

	fmt.Printf("%s | %-12s | %s %-8s | %s/%s",
		formatTimestamp(e.Timestamp),
		actor,
		actionIcon(e.Action),
		e.Action,
		e.EntityType,
		e.EntityID,
	)
	if e.FromStatus != "" || e.ToStatus != "" {
		from := e.FromStatus
		if from == "" {
			from = "-"
		}
		fmt.Printf(" | %s -> %s", from, statusBadge(e.ToStatus))
	}
	fmt.Println()
}

func actionIcon(action string) string {
	switch action {
	case "create":
		return "+"
	case "start", "resume":
		return "▶"
	case "pause":
		return "⏸"
	case "complete":
		return "✓"
	case "cancel":
		return "✗"
	default:
		return "~"
	}
}

func formatTimestamp(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
