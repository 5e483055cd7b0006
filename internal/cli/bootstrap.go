// Package cli provides CLI commands for the shopfloor application.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/shopfloor/internal/config"
	"github.com/example/shopfloor/internal/ctxutil"
	"github.com/example/shopfloor/internal/logging"
	"github.com/example/shopfloor/internal/wire"
)

// globalActorID stores the operator for the current CLI invocation.
// Set once at startup by Bootstrap.
var globalActorID string

// GetActorID returns the stored operator ID from CLI startup.
func GetActorID() string {
	return globalActorID
}

// NewContext creates a context.Background() with the current operator embedded.
// CLI commands should use this instead of context.Background() directly.
func NewContext() context.Context {
	ctx := context.Background()
	if globalActorID != "" {
		return ctxutil.WithActorID(ctx, globalActorID)
	}
	return ctx
}

// Bootstrap loads the configuration from the working directory, applies the
// global flags and configures the service wiring. It runs in the root
// command's PersistentPreRunE.
func Bootstrap(cmd *cobra.Command) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	cfg, err := config.LoadConfig(cwd)
	if err != nil {
		return err
	}

	if op, _ := cmd.Flags().GetString("operator"); op != "" {
		cfg.OperatorID = op
	}
	if cfg.OperatorID == "" {
		cfg.OperatorID = os.Getenv("USER")
	}
	if dbPath, _ := cmd.Flags().GetString("db"); dbPath != "" {
		cfg.DBPath = dbPath
	}
	verbose, _ := cmd.Flags().GetBool("verbose")

	logger, err := logging.New(cfg.LogLevel, verbose)
	if err != nil {
		return err
	}

	globalActorID = cfg.OperatorID
	wire.Configure(cfg, logger)
	return nil
}

// Shutdown flushes the logger and closes the database.
func Shutdown() {
	_ = wire.Logger().Sync()
	_ = wire.Close()
}
