// Package wire provides dependency injection for the shopfloor application.
// It creates singleton services with lazy initialization from the loaded
// configuration.
package wire

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"

	cliadapter "github.com/example/shopfloor/internal/adapters/cli"
	"github.com/example/shopfloor/internal/adapters/gateway"
	"github.com/example/shopfloor/internal/adapters/httpapi"
	"github.com/example/shopfloor/internal/adapters/sqlite"
	"github.com/example/shopfloor/internal/app"
	"github.com/example/shopfloor/internal/clock"
	"github.com/example/shopfloor/internal/config"
	"github.com/example/shopfloor/internal/db"
	"github.com/example/shopfloor/internal/ports/primary"
	"github.com/example/shopfloor/internal/ports/secondary"
)

// Backend is the reference order backend over one SQLite database.
type Backend struct {
	DB            *sql.DB
	Catalog       primary.CatalogService
	Manufacturing primary.ManufacturingService
	WorkOrders    primary.WorkOrderService
	Stock         primary.StockService
	Events        primary.EventLogService
}

// NewBackend builds the backend services over database.
func NewBackend(database *sql.DB, clk clock.Clock, logger *zap.Logger) *Backend {
	// Create repository adapters (secondary ports) - sqlite adapters with injected DB
	productRepo := sqlite.NewProductRepository(database)
	workCenterRepo := sqlite.NewWorkCenterRepository(database)
	bomRepo := sqlite.NewBOMRepository(database)
	orderRepo := sqlite.NewManufacturingOrderRepository(database)
	workOrderRepo := sqlite.NewWorkOrderRepository(database)
	eventRepo := sqlite.NewEventRepository(database)
	events := sqlite.NewEventWriterAdapter(eventRepo)

	return &Backend{
		DB:            database,
		Catalog:       app.NewCatalogService(productRepo, workCenterRepo, bomRepo, events, logger),
		Manufacturing: app.NewManufacturingService(orderRepo, workOrderRepo, bomRepo, productRepo, events, clk, logger),
		WorkOrders:    app.NewWorkOrderService(workOrderRepo, orderRepo, events, clk, logger),
		Stock:         app.NewStockService(sqlite.NewStockLedgerRepository(database)),
		Events:        app.NewEventLogService(eventRepo),
	}
}

// NewGateway builds the order gateway selected by cfg. The local backend is
// only opened when cfg asks for it.
func NewGateway(cfg *config.Config, local func() (*Backend, error), logger *zap.Logger) (secondary.OrderGateway, error) {
	switch cfg.Backend {
	case config.BackendRemote:
		return httpapi.NewClient(cfg.APIURL,
			httpapi.WithToken(cfg.APIToken),
			httpapi.WithOperatorID(cfg.OperatorID),
			httpapi.WithTimeout(cfg.RequestTimeout),
			httpapi.WithLogger(logger),
		), nil
	case config.BackendLocal, "":
		b, err := local()
		if err != nil {
			return nil, err
		}
		return gateway.NewLocal(b.WorkOrders, b.Manufacturing), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

var (
	settings = config.Default()
	logger   = zap.NewNop()

	backendOnce sync.Once
	backend     *Backend
	backendErr  error

	executionOnce    sync.Once
	executionService *app.ExecutionServiceImpl
	executionErr     error

	ticker *clock.Ticker
)

// Configure sets the configuration and logger used by the lazy singletons.
// It must be called before any service is requested.
func Configure(cfg *config.Config, l *zap.Logger) {
	if cfg != nil {
		settings = cfg
	}
	if l != nil {
		logger = l
	}
}

// Config returns the active configuration.
func Config() *config.Config {
	return settings
}

// Logger returns the application logger.
func Logger() *zap.Logger {
	return logger
}

// LocalBackend returns the singleton SQLite backend.
func LocalBackend() (*Backend, error) {
	backendOnce.Do(func() {
		database, err := db.Open(settings.DBPath)
		if err != nil {
			backendErr = fmt.Errorf("failed to initialize database: %w", err)
			return
		}
		backend = NewBackend(database, clock.Real{}, logger)
	})
	return backend, backendErr
}

// ExecutionService returns the singleton shop floor client.
func ExecutionService() (*app.ExecutionServiceImpl, error) {
	executionOnce.Do(func() {
		gw, err := NewGateway(settings, LocalBackend, logger)
		if err != nil {
			executionErr = err
			return
		}
		executionService = app.NewExecutionService(gw, settings.OperatorID, logger)
	})
	return executionService, executionErr
}

// DurationWatcher returns a watcher over the execution service, fed by the
// shared display ticker. The caller drives it with Ticker().Run.
func DurationWatcher() (*app.DurationWatcher, error) {
	exec, err := ExecutionService()
	if err != nil {
		return nil, err
	}
	return app.NewDurationWatcher(exec, Ticker()), nil
}

// Ticker returns the shared one-second display ticker.
func Ticker() *clock.Ticker {
	if ticker == nil {
		ticker = clock.NewTicker(clock.Real{}, clock.DisplayInterval)
	}
	return ticker
}

// Close releases the database, if one was opened.
func Close() error {
	if backend != nil {
		return backend.DB.Close()
	}
	return nil
}

// OrderAdapter returns a new OrderAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func OrderAdapter() (*cliadapter.OrderAdapter, error) {
	return OrderAdapterWithOutput(os.Stdout)
}

// OrderAdapterWithOutput returns a new OrderAdapter writing to the given output.
func OrderAdapterWithOutput(out io.Writer) (*cliadapter.OrderAdapter, error) {
	b, err := LocalBackend()
	if err != nil {
		return nil, err
	}
	return cliadapter.NewOrderAdapter(b.Manufacturing, out), nil
}

// ExecutionAdapter returns a new ExecutionAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func ExecutionAdapter() (*cliadapter.ExecutionAdapter, error) {
	return ExecutionAdapterWithOutput(os.Stdout)
}

// ExecutionAdapterWithOutput returns a new ExecutionAdapter writing to the given output.
func ExecutionAdapterWithOutput(out io.Writer) (*cliadapter.ExecutionAdapter, error) {
	exec, err := ExecutionService()
	if err != nil {
		return nil, err
	}
	return cliadapter.NewExecutionAdapter(exec, clock.Real{}, out), nil
}
