package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/example/shopfloor/internal/adapters/httpapi"
	"github.com/example/shopfloor/internal/wire"
)

const shutdownTimeout = 10 * time.Second

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the local order backend over REST",
		Long: `Serve the SQLite order backend over REST so that shop floor clients
configured with backend: remote can drive it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = wire.Config().ListenAddr
			}

			b, err := wire.LocalBackend()
			if err != nil {
				return err
			}
			logger := wire.Logger()

			srv := &http.Server{
				Addr:              addr,
				Handler:           httpapi.NewServer(b.Manufacturing, b.WorkOrders, b.Stock, logger).Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				logger.Info("listening", zap.String("addr", addr))
				fmt.Printf("Serving order backend on %s (Ctrl+C to stop)\n", addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server failed: %w", err)
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				logger.Info("shutting down")
				return srv.Shutdown(shutdownCtx)
			})

			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides listen_addr)")
	return cmd
}
