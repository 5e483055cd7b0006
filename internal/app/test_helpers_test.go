package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/example/shopfloor/internal/apperr"
	"github.com/example/shopfloor/internal/core/manufacturing"
	"github.com/example/shopfloor/internal/core/workorder"
	"github.com/example/shopfloor/internal/ports/secondary"
)

var testNow = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

// ============================================================================
// Order gateway
// ============================================================================

// mockGateway is an in-memory order backend. It applies the same transition
// rules as the real backend and counts every call.
type mockGateway struct {
	mu     sync.Mutex
	orders map[string]*secondary.ManufacturingOrderRecord
	now    func() time.Time
	calls  map[string]int

	startErr         error
	completeErr      error
	completeOrderErr error
	getOrderErr      error

	// startGate, when set, blocks StartWorkOrder until closed.
	startGate chan struct{}
	// startEntered is signalled once StartWorkOrder is running.
	startEntered chan struct{}
}

func newMockGateway() *mockGateway {
	return &mockGateway{
		orders: make(map[string]*secondary.ManufacturingOrderRecord),
		now:    func() time.Time { return testNow },
		calls:  make(map[string]int),
	}
}

// addOrder registers an order with one PENDING work order per estimate.
func (m *mockGateway) addOrder(id, status string, estimates ...int) *secondary.ManufacturingOrderRecord {
	order := &secondary.ManufacturingOrderRecord{
		ID: id, ProductID: "PROD-001", BOMID: "BOM-001", Quantity: 1, Status: status, Priority: "MEDIUM",
	}
	for i, est := range estimates {
		order.WorkOrders = append(order.WorkOrders, &secondary.WorkOrderRecord{
			ID:                       fmt.Sprintf("WO-%s-%d", id, i+1),
			OrderID:                  id,
			Number:                   manufacturing.WorkOrderNumber(id, i+1),
			Sequence:                 i + 1,
			Name:                     fmt.Sprintf("Step %d", i+1),
			Status:                   "PENDING",
			EstimatedDurationMinutes: est,
		})
	}
	m.orders[id] = order
	return order
}

func (m *mockGateway) setWorkOrderStatus(woID, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, wo := m.find(woID)
	wo.Status = status
	if status != "PENDING" && wo.ActualStart == "" {
		wo.ActualStart = testNow.Format(time.RFC3339)
	}
	if status == "PAUSED" {
		wo.PauseStart = testNow.Add(5 * time.Minute).Format(time.RFC3339)
	}
}

func (m *mockGateway) callCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

func (m *mockGateway) totalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		n += c
	}
	return n
}

func (m *mockGateway) find(woID string) (*secondary.ManufacturingOrderRecord, *secondary.WorkOrderRecord) {
	for _, o := range m.orders {
		for _, wo := range o.WorkOrders {
			if wo.ID == woID {
				return o, wo
			}
		}
	}
	return nil, nil
}

func (m *mockGateway) transition(woID string, apply func(workorder.Snapshot) (workorder.Snapshot, error)) (*secondary.ManufacturingOrderRecord, error) {
	order, wo := m.find(woID)
	if wo == nil {
		return nil, apperr.NotFound("work order", woID)
	}
	snap, err := snapshotFromRecord(wo)
	if err != nil {
		return nil, err
	}
	next, err := apply(snap)
	if err != nil {
		return nil, err
	}
	*wo = *applySnapshotToRecord(wo, next)
	return cloneOrder(order), nil
}

func (m *mockGateway) StartWorkOrder(ctx context.Context, woID string, opts secondary.StartOptions) (*secondary.ManufacturingOrderRecord, error) {
	m.mu.Lock()
	m.calls["StartWorkOrder"]++
	gate, entered := m.startGate, m.startEntered
	m.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if gate != nil {
		<-gate
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.startErr != nil {
		return nil, m.startErr
	}
	out, err := m.transition(woID, func(s workorder.Snapshot) (workorder.Snapshot, error) {
		return workorder.ApplyStart(woID, s, opts.OperatorID, m.now())
	})
	if err != nil {
		return nil, err
	}
	order, _ := m.find(woID)
	if order.Status == "CONFIRMED" {
		order.Status = "IN_PROGRESS"
		out.Status = "IN_PROGRESS"
	}
	return out, nil
}

func (m *mockGateway) PauseWorkOrder(ctx context.Context, woID string, opts secondary.NoteOptions) (*secondary.ManufacturingOrderRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["PauseWorkOrder"]++
	return m.transition(woID, func(s workorder.Snapshot) (workorder.Snapshot, error) {
		return workorder.ApplyPause(woID, s, m.now())
	})
}

func (m *mockGateway) ResumeWorkOrder(ctx context.Context, woID string, opts secondary.NoteOptions) (*secondary.ManufacturingOrderRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["ResumeWorkOrder"]++
	return m.transition(woID, func(s workorder.Snapshot) (workorder.Snapshot, error) {
		return workorder.ApplyResume(woID, s, m.now())
	})
}

func (m *mockGateway) CompleteWorkOrder(ctx context.Context, woID string, opts secondary.CompleteOptions) (*secondary.ManufacturingOrderRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["CompleteWorkOrder"]++
	if m.completeErr != nil {
		return nil, m.completeErr
	}
	return m.transition(woID, func(s workorder.Snapshot) (workorder.Snapshot, error) {
		return workorder.ApplyComplete(woID, s, opts.ActualDurationMinutes, m.now())
	})
}

func (m *mockGateway) GetManufacturingOrder(ctx context.Context, orderID string) (*secondary.ManufacturingOrderRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["GetManufacturingOrder"]++
	if m.getOrderErr != nil {
		return nil, m.getOrderErr
	}
	order, ok := m.orders[orderID]
	if !ok {
		return nil, apperr.NotFound("manufacturing order", orderID)
	}
	return cloneOrder(order), nil
}

func (m *mockGateway) GetWorkOrder(ctx context.Context, woID string) (*secondary.WorkOrderRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["GetWorkOrder"]++
	_, wo := m.find(woID)
	if wo == nil {
		return nil, apperr.NotFound("work order", woID)
	}
	c := *wo
	return &c, nil
}

func (m *mockGateway) CompleteManufacturingOrder(ctx context.Context, orderID string, opts secondary.NoteOptions) (*secondary.CompletionReceipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["CompleteManufacturingOrder"]++
	if m.completeOrderErr != nil {
		return nil, m.completeOrderErr
	}
	order, ok := m.orders[orderID]
	if !ok {
		return nil, apperr.NotFound("manufacturing order", orderID)
	}
	if order.Status != "IN_PROGRESS" {
		return nil, apperr.InvalidTransition("cannot complete manufacturing order %s: must be IN_PROGRESS (current status: %s)", orderID, order.Status)
	}
	order.Status = "COMPLETED"
	order.QuantityProduced = order.Quantity
	return &secondary.CompletionReceipt{
		Message:            fmt.Sprintf("Manufacturing order %s completed", orderID),
		ConsumedComponents: []secondary.ConsumedComponentRecord{{ProductID: "PROD-002", Quantity: 4}},
		ProducedQuantity:   order.Quantity,
		Order:              cloneOrder(order),
	}, nil
}

func cloneOrder(o *secondary.ManufacturingOrderRecord) *secondary.ManufacturingOrderRecord {
	c := *o
	c.WorkOrders = make([]*secondary.WorkOrderRecord, len(o.WorkOrders))
	for i, wo := range o.WorkOrders {
		w := *wo
		c.WorkOrders[i] = &w
	}
	return &c
}

var _ secondary.OrderGateway = (*mockGateway)(nil)

// ============================================================================
// Repositories
// ============================================================================

// mockOrderRepository implements secondary.ManufacturingOrderRepository for testing.
type mockOrderRepository struct {
	orders        map[string]*secondary.ManufacturingOrderRecord
	workOrders    *mockWorkOrderRepository
	completions   []*secondary.OrderCompletionRecord
	cancellations []*secondary.OrderCancellationRecord
	completeErr   error
	createErr     error
}

func newMockOrderRepository(workOrders *mockWorkOrderRepository) *mockOrderRepository {
	return &mockOrderRepository{
		orders:     make(map[string]*secondary.ManufacturingOrderRecord),
		workOrders: workOrders,
	}
}

func (m *mockOrderRepository) Create(ctx context.Context, order *secondary.ManufacturingOrderRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.orders[order.ID] = order
	return nil
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id string) (*secondary.ManufacturingOrderRecord, error) {
	order, ok := m.orders[id]
	if !ok {
		return nil, apperr.NotFound("manufacturing order", id)
	}
	c := *order
	c.WorkOrders, _ = m.workOrders.List(ctx, secondary.WorkOrderFilters{OrderID: id})
	return &c, nil
}

func (m *mockOrderRepository) List(ctx context.Context, filters secondary.OrderFilters) ([]*secondary.ManufacturingOrderRecord, error) {
	var result []*secondary.ManufacturingOrderRecord
	for _, o := range m.orders {
		if filters.Status != "" && o.Status != filters.Status {
			continue
		}
		result = append(result, o)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, id, status, actualStart, completedAt string) error {
	order, ok := m.orders[id]
	if !ok {
		return apperr.NotFound("manufacturing order", id)
	}
	order.Status = status
	if order.ActualStart == "" {
		order.ActualStart = actualStart
	}
	if completedAt != "" {
		order.CompletedAt = completedAt
	}
	return nil
}

func (m *mockOrderRepository) Confirm(ctx context.Context, id string, workOrders []*secondary.WorkOrderRecord, requirements []*secondary.ComponentRequirementRecord) error {
	order, ok := m.orders[id]
	if !ok {
		return apperr.NotFound("manufacturing order", id)
	}
	if order.Status != "DRAFT" {
		return apperr.InvalidTransition("cannot confirm %s", id)
	}
	order.Status = "CONFIRMED"
	order.Requirements = requirements
	for _, wo := range workOrders {
		m.workOrders.workOrders[wo.ID] = wo
	}
	return nil
}

func (m *mockOrderRepository) Complete(ctx context.Context, c *secondary.OrderCompletionRecord) error {
	if m.completeErr != nil {
		return m.completeErr
	}
	order := m.orders[c.OrderID]
	order.Status = "COMPLETED"
	order.QuantityProduced = c.QuantityProduced
	order.CompletedAt = c.CompletedAt
	m.completions = append(m.completions, c)
	return nil
}

func (m *mockOrderRepository) Cancel(ctx context.Context, c *secondary.OrderCancellationRecord) error {
	order, ok := m.orders[c.OrderID]
	if !ok {
		return apperr.NotFound("manufacturing order", c.OrderID)
	}
	for _, t := range c.WorkOrders {
		if stored := m.workOrders.workOrders[t.WorkOrder.ID]; stored == nil || stored.Status != t.From {
			return apperr.InvalidTransition("work order %s moved on", t.WorkOrder.ID)
		}
	}
	order.Status = "CANCELED"
	for _, t := range c.WorkOrders {
		wo := *t.WorkOrder
		m.workOrders.workOrders[wo.ID] = &wo
	}
	m.cancellations = append(m.cancellations, c)
	return nil
}

func (m *mockOrderRepository) GetNextID(ctx context.Context) (string, error) {
	return manufacturing.GenerateOrderID(len(m.orders)), nil
}

// mockWorkOrderRepository implements secondary.WorkOrderRepository for testing.
type mockWorkOrderRepository struct {
	workOrders map[string]*secondary.WorkOrderRecord
	updateErr  error
}

func newMockWorkOrderRepository() *mockWorkOrderRepository {
	return &mockWorkOrderRepository{workOrders: make(map[string]*secondary.WorkOrderRecord)}
}

func (m *mockWorkOrderRepository) GetByID(ctx context.Context, id string) (*secondary.WorkOrderRecord, error) {
	wo, ok := m.workOrders[id]
	if !ok {
		return nil, apperr.NotFound("work order", id)
	}
	c := *wo
	return &c, nil
}

func (m *mockWorkOrderRepository) List(ctx context.Context, filters secondary.WorkOrderFilters) ([]*secondary.WorkOrderRecord, error) {
	var result []*secondary.WorkOrderRecord
	for _, wo := range m.workOrders {
		if filters.OrderID != "" && wo.OrderID != filters.OrderID {
			continue
		}
		if filters.Status != "" && wo.Status != filters.Status {
			continue
		}
		c := *wo
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Sequence < result[j].Sequence })
	return result, nil
}

func (m *mockWorkOrderRepository) UpdateExecution(ctx context.Context, wo *secondary.WorkOrderRecord, from string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	stored, ok := m.workOrders[wo.ID]
	if !ok {
		return apperr.NotFound("work order", wo.ID)
	}
	if stored.Status != from {
		return apperr.InvalidTransition("cannot move work order %s from %s (current status: %s)", wo.ID, from, stored.Status)
	}
	c := *wo
	m.workOrders[wo.ID] = &c
	return nil
}

func (m *mockWorkOrderRepository) GetNextID(ctx context.Context) (string, error) {
	return manufacturing.GenerateWorkOrderID(len(m.workOrders)), nil
}

// mockBOMRepository implements secondary.BOMRepository for testing.
type mockBOMRepository struct {
	boms map[string]*secondary.BOMRecord
}

func newMockBOMRepository() *mockBOMRepository {
	return &mockBOMRepository{boms: make(map[string]*secondary.BOMRecord)}
}

func (m *mockBOMRepository) Create(ctx context.Context, bom *secondary.BOMRecord) error {
	m.boms[bom.ID] = bom
	return nil
}

func (m *mockBOMRepository) GetByID(ctx context.Context, id string) (*secondary.BOMRecord, error) {
	bom, ok := m.boms[id]
	if !ok {
		return nil, apperr.NotFound("bom", id)
	}
	return bom, nil
}

func (m *mockBOMRepository) List(ctx context.Context, productID string) ([]*secondary.BOMRecord, error) {
	var result []*secondary.BOMRecord
	for _, b := range m.boms {
		if productID == "" || b.ProductID == productID {
			result = append(result, b)
		}
	}
	return result, nil
}

func (m *mockBOMRepository) GetActiveForProduct(ctx context.Context, productID string) (*secondary.BOMRecord, error) {
	for _, b := range m.boms {
		if b.ProductID == productID && b.Active {
			return b, nil
		}
	}
	return nil, apperr.NotFound("active bom for product", productID)
}

func (m *mockBOMRepository) AddComponent(ctx context.Context, c *secondary.BOMComponentRecord) error {
	bom := m.boms[c.BOMID]
	for _, existing := range bom.Components {
		if existing.ProductID == c.ProductID {
			return apperr.Validation("product %s is already a component of %s", c.ProductID, c.BOMID)
		}
	}
	bom.Components = append(bom.Components, c)
	return nil
}

func (m *mockBOMRepository) AddOperation(ctx context.Context, op *secondary.BOMOperationRecord) error {
	bom := m.boms[op.BOMID]
	bom.Operations = append(bom.Operations, op)
	return nil
}

func (m *mockBOMRepository) GetNextID(ctx context.Context) (string, error) {
	return fmt.Sprintf("BOM-%03d", len(m.boms)+1), nil
}

// mockProductRepository implements secondary.ProductRepository for testing.
type mockProductRepository struct {
	products map[string]*secondary.ProductRecord
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{products: make(map[string]*secondary.ProductRecord)}
}

func (m *mockProductRepository) add(id, kind string, stock float64) {
	m.products[id] = &secondary.ProductRecord{ID: id, Name: id, SKU: "SKU-" + id, Type: kind, UnitOfMeasure: "pcs", CurrentStock: stock}
}

func (m *mockProductRepository) Create(ctx context.Context, p *secondary.ProductRecord) error {
	for _, existing := range m.products {
		if existing.SKU == p.SKU {
			return apperr.Validation("product with SKU %s already exists", p.SKU)
		}
	}
	m.products[p.ID] = p
	return nil
}

func (m *mockProductRepository) GetByID(ctx context.Context, id string) (*secondary.ProductRecord, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, apperr.NotFound("product", id)
	}
	return p, nil
}

func (m *mockProductRepository) List(ctx context.Context, filters secondary.ProductFilters) ([]*secondary.ProductRecord, error) {
	var result []*secondary.ProductRecord
	for _, p := range m.products {
		if filters.Type == "" || p.Type == filters.Type {
			result = append(result, p)
		}
	}
	return result, nil
}

func (m *mockProductRepository) GetNextID(ctx context.Context) (string, error) {
	return fmt.Sprintf("PROD-%03d", len(m.products)+1), nil
}

func (m *mockProductRepository) StockLevels(ctx context.Context, ids []string) (map[string]float64, error) {
	out := make(map[string]float64)
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			out[id] = p.CurrentStock
		}
	}
	return out, nil
}

// mockEventWriter records journal entries.
type mockEventWriter struct {
	entries []string
}

func (m *mockEventWriter) LogCreate(ctx context.Context, entityType, entityID string) error {
	m.entries = append(m.entries, "create "+entityID)
	return nil
}

func (m *mockEventWriter) LogTransition(ctx context.Context, entityType, entityID, action, from, to string) error {
	m.entries = append(m.entries, fmt.Sprintf("%s %s %s->%s", action, entityID, from, to))
	return nil
}
