// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import "context"

// ProductRepository defines the secondary port for product persistence.
type ProductRepository interface {
	// Create persists a new product.
	Create(ctx context.Context, product *ProductRecord) error

	// GetByID retrieves a product by its ID.
	GetByID(ctx context.Context, id string) (*ProductRecord, error)

	// List retrieves products matching the given filters.
	List(ctx context.Context, filters ProductFilters) ([]*ProductRecord, error)

	// GetNextID returns the next available product ID.
	GetNextID(ctx context.Context) (string, error)

	// StockLevels returns the current stock of the given products.
	// Unknown products are omitted.
	StockLevels(ctx context.Context, productIDs []string) (map[string]float64, error)
}

// ProductRecord represents a product as stored in persistence.
type ProductRecord struct {
	ID            string
	Name          string
	SKU           string
	Type          string
	UnitOfMeasure string
	CurrentStock  float64
	CreatedAt     string
	UpdatedAt     string
}

// ProductFilters contains filter options for querying products.
type ProductFilters struct {
	Type  string
	Limit int
}

// WorkCenterRepository defines the secondary port for work center persistence.
type WorkCenterRepository interface {
	Create(ctx context.Context, wc *WorkCenterRecord) error
	GetByID(ctx context.Context, id string) (*WorkCenterRecord, error)
	List(ctx context.Context) ([]*WorkCenterRecord, error)
	GetNextID(ctx context.Context) (string, error)
}

// WorkCenterRecord represents a work center as stored in persistence.
type WorkCenterRecord struct {
	ID          string
	Name        string
	Code        string
	CostPerHour float64
	Active      bool
	CreatedAt   string
}

// BOMRepository defines the secondary port for bill of materials persistence.
type BOMRepository interface {
	// Create persists a new bill of materials header.
	Create(ctx context.Context, bom *BOMRecord) error

	// GetByID retrieves a bill of materials with its components and operations.
	GetByID(ctx context.Context, id string) (*BOMRecord, error)

	// List retrieves headers, optionally for one product.
	List(ctx context.Context, productID string) ([]*BOMRecord, error)

	// GetActiveForProduct returns the most recent active bill of materials of a product.
	GetActiveForProduct(ctx context.Context, productID string) (*BOMRecord, error)

	// AddComponent appends a component line.
	AddComponent(ctx context.Context, component *BOMComponentRecord) error

	// AddOperation appends a routing step.
	AddOperation(ctx context.Context, operation *BOMOperationRecord) error

	// GetNextID returns the next available BOM ID.
	GetNextID(ctx context.Context) (string, error)
}

// BOMRecord represents a bill of materials as stored in persistence.
type BOMRecord struct {
	ID         string
	ProductID  string
	Name       string
	Version    string
	Active     bool
	CreatedAt  string
	Components []*BOMComponentRecord
	Operations []*BOMOperationRecord
}

// BOMComponentRecord is a component line as stored in persistence.
type BOMComponentRecord struct {
	BOMID           string
	ProductID       string
	QuantityPerUnit float64
}

// BOMOperationRecord is a routing step as stored in persistence.
type BOMOperationRecord struct {
	BOMID           string
	Sequence        int
	Name            string
	WorkCenterID    string
	DurationMinutes int
	SetupMinutes    int
}

// ManufacturingOrderRepository defines the secondary port for manufacturing order persistence.
type ManufacturingOrderRepository interface {
	// Create persists a new order.
	Create(ctx context.Context, order *ManufacturingOrderRecord) error

	// GetByID retrieves an order with its requirements and work orders.
	GetByID(ctx context.Context, id string) (*ManufacturingOrderRecord, error)

	// List retrieves order headers matching the given filters.
	List(ctx context.Context, filters OrderFilters) ([]*ManufacturingOrderRecord, error)

	// UpdateStatus sets the status. Non-empty timestamps are stamped as well.
	UpdateStatus(ctx context.Context, id, status, actualStart, completedAt string) error

	// Confirm atomically moves the order to CONFIRMED and stores its work orders
	// and component requirements.
	Confirm(ctx context.Context, id string, workOrders []*WorkOrderRecord, requirements []*ComponentRequirementRecord) error

	// Complete atomically books the movements, updates product stock and marks the
	// order COMPLETED. It fails without side effects if any stock would go negative.
	Complete(ctx context.Context, completion *OrderCompletionRecord) error

	// Cancel atomically cancels the order and writes the canceled work orders.
	// It fails without side effects if any work order left its expected status.
	Cancel(ctx context.Context, cancellation *OrderCancellationRecord) error

	// GetNextID returns the next available order ID.
	GetNextID(ctx context.Context) (string, error)
}

// ManufacturingOrderRecord represents a manufacturing order as stored in persistence
// and as returned by the order gateway.
type ManufacturingOrderRecord struct {
	ID               string
	ProductID        string
	BOMID            string
	Quantity         int
	QuantityProduced int
	Status           string
	Priority         string
	ScheduledStart   string
	ActualStart      string
	CompletedAt      string
	Notes            string
	CreatedAt        string
	UpdatedAt        string
	Requirements     []*ComponentRequirementRecord
	WorkOrders       []*WorkOrderRecord
}

// ComponentRequirementRecord is a per-order component requirement.
type ComponentRequirementRecord struct {
	OrderID          string
	ProductID        string
	QuantityPerUnit  float64
	QuantityRequired float64
	QuantityConsumed float64
}

// OrderCompletionRecord carries everything written when an order completes.
type OrderCompletionRecord struct {
	OrderID          string
	QuantityProduced int
	CompletedAt      string
	Notes            string
	Movements        []*StockMovementRecord
}

// OrderCancellationRecord carries everything written when an order is canceled.
type OrderCancellationRecord struct {
	OrderID    string
	Notes      string
	WorkOrders []*WorkOrderTransitionRecord
}

// WorkOrderTransitionRecord is the next state of a work order together with
// the status it must still hold when written.
type WorkOrderTransitionRecord struct {
	WorkOrder *WorkOrderRecord
	From      string
}

// OrderFilters contains filter options for querying orders.
type OrderFilters struct {
	Status    string
	ProductID string
	Limit     int
}

// WorkOrderRepository defines the secondary port for work order persistence.
type WorkOrderRepository interface {
	// GetByID retrieves a work order by its ID.
	GetByID(ctx context.Context, id string) (*WorkOrderRecord, error)

	// List retrieves work orders matching the given filters, by order and sequence.
	List(ctx context.Context, filters WorkOrderFilters) ([]*WorkOrderRecord, error)

	// UpdateExecution writes the execution fields and notes of a work order
	// whose stored status is still from. A work order that moved on in the
	// meantime yields an invalid transition error.
	UpdateExecution(ctx context.Context, wo *WorkOrderRecord, from string) error

	// GetNextID returns the next available work order ID.
	GetNextID(ctx context.Context) (string, error)
}

// WorkOrderRecord represents a work order as stored in persistence and as
// returned by the order gateway.
type WorkOrderRecord struct {
	ID                       string
	OrderID                  string
	Number                   string
	Sequence                 int
	Name                     string
	WorkCenterID             string
	Status                   string
	OperatorID               string
	EstimatedDurationMinutes int
	ActualDurationMinutes    int
	TotalPauseMinutes        int
	ActualStart              string
	PauseStart               string
	CompletedAt              string
	Notes                    string
	CreatedAt                string
	UpdatedAt                string
}

// WorkOrderFilters contains filter options for querying work orders.
type WorkOrderFilters struct {
	OrderID      string
	Status       string
	WorkCenterID string
	OperatorID   string
	Limit        int
}

// StockLedgerRepository defines the secondary port for the stock ledger.
type StockLedgerRepository interface {
	// List retrieves movements matching the given filters, newest first.
	List(ctx context.Context, filters StockFilters) ([]*StockMovementRecord, error)
}

// StockMovementRecord is a stock ledger entry as stored in persistence.
type StockMovementRecord struct {
	ID             string
	ProductID      string
	QuantityChange float64
	Type           string
	Reference      string
	Notes          string
	CreatedAt      string
}

// StockFilters contains filter options for querying the ledger.
type StockFilters struct {
	ProductID string
	Reference string
	Limit     int
}

// EventRepository defines the secondary port for the order event journal.
type EventRepository interface {
	// Create persists a new event.
	Create(ctx context.Context, event *OrderEventRecord) error

	// GetByID retrieves an event by its ID.
	GetByID(ctx context.Context, id string) (*OrderEventRecord, error)

	// List retrieves events matching the given filters, newest first.
	List(ctx context.Context, filters EventFilters) ([]*OrderEventRecord, error)

	// GetNextID returns the next available event ID.
	GetNextID(ctx context.Context) (string, error)

	// PruneOlderThan deletes events older than the given number of days.
	// Returns the number of deleted entries.
	PruneOlderThan(ctx context.Context, days int) (int, error)
}

// OrderEventRecord represents a journal entry as stored in persistence.
type OrderEventRecord struct {
	ID         string
	Timestamp  string
	ActorID    string
	EntityType string
	EntityID   string
	Action     string
	FromStatus string
	ToStatus   string
}

// EventFilters contains filter options for querying events.
type EventFilters struct {
	EntityType string
	EntityID   string
	ActorID    string
	Action     string
	Limit      int
}
