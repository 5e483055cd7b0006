package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/shopfloor/internal/version"
)

// RootCmd returns the shopfloor root command with all subcommands attached.
func RootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "shopfloor",
		Short:   "Shop floor execution for manufacturing orders",
		Version: version.String(),
		Long: `shopfloor drives work orders through their lifecycle (start, pause,
resume, complete), tracks worked time, and completes the parent manufacturing
order when its last work order is done.

It talks to the built-in SQLite order backend, or to a remote order service
over REST (backend: remote in .shopfloor/config.yaml).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return Bootstrap(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			Shutdown()
		},
	}

	rootCmd.PersistentFlags().String("operator", "", "Operator ID (overrides operator_id)")
	rootCmd.PersistentFlags().String("db", "", "Database path for the local backend (overrides db_path)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Debug logging")

	rootCmd.AddCommand(InitCmd())
	rootCmd.AddCommand(SeedCmd())
	rootCmd.AddCommand(ServeCmd())
	rootCmd.AddCommand(VersionCmd())
	rootCmd.AddCommand(StatusCmd())

	// Catalog
	rootCmd.AddCommand(ProductCmd())
	rootCmd.AddCommand(WorkCenterCmd())
	rootCmd.AddCommand(BOMCmd())

	// Execution
	rootCmd.AddCommand(OrderCmd())
	rootCmd.AddCommand(WorkOrderCmd())

	// Ledgers
	rootCmd.AddCommand(StockCmd())
	rootCmd.AddCommand(LogCmd())

	return rootCmd
}

// VersionCmd returns the version command.
func VersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(version.String())
		},
	}
}
