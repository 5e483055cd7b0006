package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/shopfloor/internal/ports/primary"
	"github.com/example/shopfloor/internal/wire"
)

// StockCmd returns the stock command with all subcommands attached.
func StockCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stock",
		Short: "Inspect inventory movements",
	}

	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Show stock ledger entries, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			product, _ := cmd.Flags().GetString("product")
			reference, _ := cmd.Flags().GetString("reference")
			limit, _ := cmd.Flags().GetInt("limit")

			b, err := wire.LocalBackend()
			if err != nil {
				return err
			}
			movements, err := b.Stock.ListMovements(NewContext(), primary.StockFilters{
				ProductID: product,
				Reference: reference,
				Limit:     limit,
			})
			if err != nil {
				return err
			}
			if len(movements) == 0 {
				fmt.Println("No stock movements found")
				return nil
			}

			fmt.Printf("\n%-20s %-10s %10s %-12s %-10s %s\n", "WHEN", "PRODUCT", "CHANGE", "TYPE", "REFERENCE", "NOTES")
			fmt.Println("──────────────────────────────────────────────────────────────────────────")
			for _, m := range movements {
				fmt.Printf("%-20s %-10s %+10.3f %-12s %-10s %s\n",
					formatTimestamp(m.CreatedAt), m.ProductID, m.QuantityChange, m.Type, m.Reference, m.Notes)
			}
			fmt.Println()
			return nil
		},
	}
	ledgerCmd.Flags().String("product", "", "Filter by product ID")
	ledgerCmd.Flags().String("reference", "", "Filter by reference (e.g., MO-001)")
	ledgerCmd.Flags().IntP("limit", "n", 50, "Maximum entries to show")

	cmd.AddCommand(ledgerCmd)
	return cmd
}
