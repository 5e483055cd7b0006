package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/shopfloor/internal/apperr"
	"github.com/example/shopfloor/internal/clock"
	"github.com/example/shopfloor/internal/core/inventory"
	"github.com/example/shopfloor/internal/core/manufacturing"
	"github.com/example/shopfloor/internal/core/workorder"
	"github.com/example/shopfloor/internal/ports/primary"
	"github.com/example/shopfloor/internal/ports/secondary"
)

// ManufacturingServiceImpl implements the ManufacturingService interface.
type ManufacturingServiceImpl struct {
	orderRepo     secondary.ManufacturingOrderRepository
	workOrderRepo secondary.WorkOrderRepository
	bomRepo       secondary.BOMRepository
	productRepo   secondary.ProductRepository
	journal       journal
	clock         clock.Clock
	logger        *zap.Logger
}

// NewManufacturingService creates a new ManufacturingService with injected dependencies.
func NewManufacturingService(
	orderRepo secondary.ManufacturingOrderRepository,
	workOrderRepo secondary.WorkOrderRepository,
	bomRepo secondary.BOMRepository,
	productRepo secondary.ProductRepository,
	eventWriter secondary.EventWriter,
	clk clock.Clock,
	logger *zap.Logger,
) *ManufacturingServiceImpl {
	if clk == nil {
		clk = clock.Real{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ManufacturingServiceImpl{
		orderRepo:     orderRepo,
		workOrderRepo: workOrderRepo,
		bomRepo:       bomRepo,
		productRepo:   productRepo,
		journal:       journal{writer: eventWriter, logger: logger},
		clock:         clk,
		logger:        logger,
	}
}

// CreateOrder creates a DRAFT manufacturing order.
func (s *ManufacturingServiceImpl) CreateOrder(ctx context.Context, req primary.CreateOrderRequest) (*primary.ManufacturingOrder, error) {
	if req.Quantity <= 0 {
		return nil, apperr.Validation("quantity must be positive (got %d)", req.Quantity)
	}
	priority, err := manufacturing.ParsePriority(req.Priority)
	if err != nil {
		return nil, apperr.Validation("%v", err)
	}

	product, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if product.Type != primary.ProductTypeFinishedGood {
		return nil, apperr.Validation("product %s is not a finished good", product.ID)
	}

	var bom *secondary.BOMRecord
	if req.BOMID == "" {
		bom, err = s.bomRepo.GetActiveForProduct(ctx, product.ID)
	} else {
		bom, err = s.bomRepo.GetByID(ctx, req.BOMID)
	}
	if err != nil {
		return nil, err
	}
	if bom.ProductID != product.ID {
		return nil, apperr.Validation("bill of materials %s does not belong to product %s", bom.ID, product.ID)
	}

	nextID, err := s.orderRepo.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate order ID: %w", err)
	}

	record := &secondary.ManufacturingOrderRecord{
		ID:             nextID,
		ProductID:      product.ID,
		BOMID:          bom.ID,
		Quantity:       req.Quantity,
		Status:         string(manufacturing.StatusDraft),
		Priority:       string(priority),
		ScheduledStart: req.ScheduledStart,
		Notes:          req.Notes,
	}
	if err := s.orderRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create manufacturing order: %w", err)
	}
	s.journal.created(ctx, secondary.EntityManufacturingOrder, nextID)
	s.logger.Info("manufacturing order created", zap.String("order", nextID), zap.String("product", product.ID), zap.Int("quantity", req.Quantity))

	return s.GetOrder(ctx, nextID)
}

// GetOrder retrieves an order with its work orders.
func (s *ManufacturingServiceImpl) GetOrder(ctx context.Context, orderID string) (*primary.ManufacturingOrder, error) {
	record, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return recordToOrder(record)
}

// ListOrders lists orders with optional filters.
func (s *ManufacturingServiceImpl) ListOrders(ctx context.Context, filters primary.OrderFilters) ([]*primary.ManufacturingOrder, error) {
	records, err := s.orderRepo.List(ctx, secondary.OrderFilters{
		Status:    filters.Status,
		ProductID: filters.ProductID,
		Limit:     filters.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list manufacturing orders: %w", err)
	}

	orders := make([]*primary.ManufacturingOrder, 0, len(records))
	for _, r := range records {
		order, err := recordToOrder(r)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// ConfirmOrder confirms a DRAFT order: one PENDING work order per BOM operation
// and the component requirements for the order quantity.
func (s *ManufacturingServiceImpl) ConfirmOrder(ctx context.Context, req primary.ConfirmOrderRequest) (*primary.ManufacturingOrder, error) {
	order, err := s.orderRepo.GetByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	status, err := manufacturing.ParseStatus(order.Status)
	if err != nil {
		return nil, err
	}
	bom, err := s.bomRepo.GetByID(ctx, order.BOMID)
	if err != nil {
		return nil, err
	}

	input := manufacturing.ConfirmPlanInput{OrderID: order.ID, Quantity: order.Quantity}
	productIDs := make([]string, 0, len(bom.Components))
	for _, c := range bom.Components {
		input.Components = append(input.Components, manufacturing.Component{ProductID: c.ProductID, QuantityPerUnit: c.QuantityPerUnit})
		productIDs = append(productIDs, c.ProductID)
	}
	for _, op := range bom.Operations {
		input.Operations = append(input.Operations, manufacturing.Operation{
			Sequence:        op.Sequence,
			Name:            op.Name,
			WorkCenterID:    op.WorkCenterID,
			DurationMinutes: op.DurationMinutes,
			SetupMinutes:    op.SetupMinutes,
		})
	}

	stock, err := s.productRepo.StockLevels(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to read stock levels: %w", err)
	}
	reqs := manufacturing.Requirements(input.Components, order.Quantity)

	guard := manufacturing.CanConfirm(manufacturing.ConfirmContext{
		OrderID:        order.ID,
		Status:         status,
		OperationCount: len(input.Operations),
		Shortages:      inventory.FindShortages(reqs, stock),
		Force:          req.Force,
	})
	if err := guard.Error(); err != nil {
		return nil, err
	}

	plan := manufacturing.GenerateConfirmPlan(input)

	nextID, err := s.workOrderRepo.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate work order ID: %w", err)
	}
	base := manufacturing.ParseWorkOrderNumber(nextID) - 1
	if base < 0 {
		return nil, fmt.Errorf("unexpected work order ID %q", nextID)
	}

	workOrders := make([]*secondary.WorkOrderRecord, 0, len(plan.WorkOrders))
	for i, p := range plan.WorkOrders {
		workOrders = append(workOrders, &secondary.WorkOrderRecord{
			ID:                       manufacturing.GenerateWorkOrderID(base + i),
			OrderID:                  order.ID,
			Number:                   p.Number,
			Sequence:                 p.Sequence,
			Name:                     p.Name,
			WorkCenterID:             p.WorkCenterID,
			Status:                   string(p.Status),
			EstimatedDurationMinutes: p.EstimatedMinutes,
		})
	}
	requirements := make([]*secondary.ComponentRequirementRecord, 0, len(plan.Requirements))
	for _, r := range plan.Requirements {
		requirements = append(requirements, &secondary.ComponentRequirementRecord{
			OrderID:          order.ID,
			ProductID:        r.ProductID,
			QuantityPerUnit:  r.PerUnit,
			QuantityRequired: r.Total,
		})
	}

	if err := s.orderRepo.Confirm(ctx, order.ID, workOrders, requirements); err != nil {
		return nil, err
	}
	s.journal.transition(ctx, secondary.EntityManufacturingOrder, order.ID, "confirm", order.Status, string(manufacturing.StatusConfirmed))
	s.logger.Info("manufacturing order confirmed", zap.String("order", order.ID), zap.Int("work_orders", len(workOrders)), zap.Bool("forced", req.Force))

	return s.GetOrder(ctx, order.ID)
}

// CompleteOrder completes an IN_PROGRESS order whose work orders are all
// terminal, consuming its components and producing the finished good.
func (s *ManufacturingServiceImpl) CompleteOrder(ctx context.Context, req primary.CompleteOrderRequest) (*primary.CompleteOrderResponse, error) {
	order, err := s.orderRepo.GetByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	current, err := recordToOrder(order)
	if err != nil {
		return nil, err
	}

	guard := manufacturing.CanCompleteOrder(manufacturing.CompleteContext{
		OrderID:  order.ID,
		Status:   current.Status,
		Children: current.Children(),
	})
	if err := guard.Error(); err != nil {
		return nil, err
	}

	input := inventory.CompletionInput{
		OrderID:        order.ID,
		FinishedGoodID: order.ProductID,
		Quantity:       order.Quantity,
	}
	for _, r := range order.Requirements {
		input.Requirements = append(input.Requirements, inventory.Requirement{
			ProductID: r.ProductID,
			PerUnit:   r.QuantityPerUnit,
			Total:     r.QuantityRequired,
		})
	}
	moves := inventory.PlanCompletion(input)

	completion := &secondary.OrderCompletionRecord{
		OrderID:          order.ID,
		QuantityProduced: order.Quantity,
		CompletedAt:      formatTime(ptr(s.clock.Now())),
		Notes:            req.Notes,
	}
	resp := &primary.CompleteOrderResponse{ProducedQuantity: order.Quantity}
	for _, m := range moves {
		completion.Movements = append(completion.Movements, &secondary.StockMovementRecord{
			ProductID:      m.ProductID,
			QuantityChange: m.Change,
			Type:           string(m.Type),
			Reference:      m.Reference,
		})
		if m.Type == inventory.MovementConsumption {
			resp.ConsumedComponents = append(resp.ConsumedComponents, primary.ConsumedComponent{ProductID: m.ProductID, Quantity: -m.Change})
		}
	}

	if err := s.orderRepo.Complete(ctx, completion); err != nil {
		return nil, err
	}
	s.journal.transition(ctx, secondary.EntityManufacturingOrder, order.ID, "complete", order.Status, string(manufacturing.StatusCompleted))
	s.logger.Info("manufacturing order completed", zap.String("order", order.ID), zap.Int("produced", order.Quantity))

	resp.Order, err = s.GetOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// CancelOrder cancels an order and its open work orders.
func (s *ManufacturingServiceImpl) CancelOrder(ctx context.Context, req primary.CancelOrderRequest) (*primary.ManufacturingOrder, error) {
	order, err := s.orderRepo.GetByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	current, err := recordToOrder(order)
	if err != nil {
		return nil, err
	}

	if err := manufacturing.CanCancel(manufacturing.StatusContext{OrderID: order.ID, Status: current.Status}).Error(); err != nil {
		return nil, err
	}

	records, err := s.workOrderRepo.List(ctx, secondary.WorkOrderFilters{OrderID: order.ID})
	if err != nil {
		return nil, err
	}
	cancellation := &secondary.OrderCancellationRecord{OrderID: order.ID, Notes: req.Reason}
	for _, record := range records {
		snap, err := snapshotFromRecord(record)
		if err != nil {
			return nil, err
		}
		if snap.Status.IsTerminal() {
			continue
		}
		next, err := workorder.ApplyCancel(record.ID, snap)
		if err != nil {
			return nil, err
		}
		cancellation.WorkOrders = append(cancellation.WorkOrders, &secondary.WorkOrderTransitionRecord{
			WorkOrder: applySnapshotToRecord(record, next),
			From:      record.Status,
		})
	}

	if err := s.orderRepo.Cancel(ctx, cancellation); err != nil {
		return nil, err
	}
	s.journal.transition(ctx, secondary.EntityManufacturingOrder, order.ID, "cancel", order.Status, string(manufacturing.StatusCanceled))
	for _, t := range cancellation.WorkOrders {
		s.journal.transition(ctx, secondary.EntityWorkOrder, t.WorkOrder.ID, "cancel", t.From, t.WorkOrder.Status)
	}
	s.logger.Info("manufacturing order canceled", zap.String("order", order.ID))

	return s.GetOrder(ctx, order.ID)
}

func ptr[T any](v T) *T { return &v }

// Ensure ManufacturingServiceImpl implements the interface
var _ primary.ManufacturingService = (*ManufacturingServiceImpl)(nil)
