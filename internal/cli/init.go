package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/shopfloor/internal/config"
	"github.com/example/shopfloor/internal/db"
	"github.com/example/shopfloor/internal/wire"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	var (
		backend string
		apiURL  string
		force   bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write .shopfloor/config.yaml and initialize the database",
		Long: `Write .shopfloor/config.yaml in the current directory and, for the local
backend, create the SQLite database with the required schema.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}

			path := config.Path(cwd)
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			cfg := *wire.Config()
			if backend != "" {
				cfg.Backend = backend
			}
			if apiURL != "" {
				cfg.APIURL = apiURL
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := config.SaveConfig(cwd, &cfg); err != nil {
				return err
			}
			fmt.Printf("✓ Wrote %s (backend: %s)\n", path, cfg.Backend)

			if cfg.Backend == config.BackendLocal {
				dbPath := cfg.DBPath
				if dbPath == "" {
					if dbPath, err = db.DefaultPath(); err != nil {
						return err
					}
				}
				if _, err := wire.LocalBackend(); err != nil {
					return err
				}
				fmt.Printf("✓ Database initialized at %s\n", dbPath)
			}

			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  shopfloor seed")
			fmt.Println("  shopfloor mo confirm MO-001")
			fmt.Println("  shopfloor wo watch MO-001")
			return nil
		},
	}

	cmd.Flags().StringVar(&backend, "backend", "", "Backend: local or remote")
	cmd.Flags().StringVar(&apiURL, "api-url", "", "Order service URL for the remote backend")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config")
	return cmd
}

// SeedCmd returns the seed command
func SeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demo factory into the local database",
		Long: `Load demo products, work centers, a bill of materials with a three-step
routing, and a DRAFT manufacturing order MO-001.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := wire.LocalBackend()
			if err != nil {
				return err
			}
			if err := db.SeedFixtures(b.DB); err != nil {
				return fmt.Errorf("failed to seed database: %w", err)
			}
			fmt.Println("✓ Seeded demo factory (MO-001 ready to confirm)")
			return nil
		},
	}
}
