package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/example/shopfloor/internal/apperr"
	"github.com/example/shopfloor/internal/core/manufacturing"
	"github.com/example/shopfloor/internal/core/workorder"
	"github.com/example/shopfloor/internal/ports/primary"
	"github.com/example/shopfloor/internal/ports/secondary"
)

// ExecutionServiceImpl implements the ExecutionService interface.
//
// It is the shop floor client: every action is checked against the cached
// parent order first, sent to the order gateway, and followed by a full
// re-fetch of the parent. Nothing is retried.
type ExecutionServiceImpl struct {
	gateway    secondary.OrderGateway
	operatorID string
	logger     *zap.Logger

	mu       sync.Mutex
	orders   map[string]*primary.ManufacturingOrder
	parentOf map[string]string
	inFlight map[string]struct{}
}

// NewExecutionService creates a new ExecutionService. operatorID is bound to
// work orders started without an explicit operator.
func NewExecutionService(gateway secondary.OrderGateway, operatorID string, logger *zap.Logger) *ExecutionServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExecutionServiceImpl{
		gateway:    gateway,
		operatorID: operatorID,
		logger:     logger,
		orders:     make(map[string]*primary.ManufacturingOrder),
		parentOf:   make(map[string]string),
		inFlight:   make(map[string]struct{}),
	}
}

// LoadOrder fetches a manufacturing order and replaces the cached copy.
func (s *ExecutionServiceImpl) LoadOrder(ctx context.Context, orderID string) (*primary.ManufacturingOrder, error) {
	record, err := s.gateway.GetManufacturingOrder(ctx, orderID)
	if err != nil {
		return nil, gatewayError(err, "failed to load manufacturing order %s", orderID)
	}
	return s.store(record)
}

// LoadOrderForWorkOrder resolves the parent of a work order and loads it.
func (s *ExecutionServiceImpl) LoadOrderForWorkOrder(ctx context.Context, workOrderID string) (*primary.ManufacturingOrder, error) {
	record, err := s.gateway.GetWorkOrder(ctx, workOrderID)
	if err != nil {
		return nil, gatewayError(err, "failed to load work order %s", workOrderID)
	}
	return s.LoadOrder(ctx, record.OrderID)
}

// CachedOrder returns the last loaded copy of an order.
func (s *ExecutionServiceImpl) CachedOrder(orderID string) (*primary.ManufacturingOrder, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	return order, ok
}

// InFlight reports whether an action on the work order is outstanding.
func (s *ExecutionServiceImpl) InFlight(workOrderID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, busy := s.inFlight[workOrderID]
	return busy
}

// Elapsed computes the live duration of a cached work order. No I/O.
func (s *ExecutionServiceImpl) Elapsed(workOrderID string, now time.Time) (workorder.Display, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[s.parentOf[workOrderID]]
	if !ok {
		return workorder.Display{}, apperr.NotFound("work order", workOrderID)
	}
	wo, ok := order.WorkOrder(workOrderID)
	if !ok {
		return workorder.Display{}, apperr.NotFound("work order", workOrderID)
	}
	return workorder.Elapsed(wo.Snapshot(), now), nil
}

// StartWorkOrder starts a work order. A PAUSED work order is resumed.
func (s *ExecutionServiceImpl) StartWorkOrder(ctx context.Context, req primary.StartWorkOrderRequest) (*primary.ExecutionResult, error) {
	release, err := s.begin(req.WorkOrderID)
	if err != nil {
		return nil, err
	}
	defer release()

	wo, err := s.resolve(ctx, req.WorkOrderID)
	if err != nil {
		return nil, err
	}
	if wo.Status == workorder.StatusPaused {
		return s.resume(ctx, wo, req.Notes)
	}

	if err := workorder.CanStart(transitionContext(wo)).Error(); err != nil {
		return nil, err
	}

	operator := req.OperatorID
	if operator == "" {
		operator = s.operatorID
	}
	record, err := s.gateway.StartWorkOrder(ctx, wo.ID, secondary.StartOptions{OperatorID: operator, Notes: req.Notes})
	if err != nil {
		return nil, s.failed("start", wo.ID, err)
	}
	s.logger.Info("work order started", zap.String("work_order", wo.ID), zap.String("operator", operator))

	return s.sync(ctx, wo, record)
}

// PauseWorkOrder pauses a work order.
func (s *ExecutionServiceImpl) PauseWorkOrder(ctx context.Context, req primary.WorkOrderActionRequest) (*primary.ExecutionResult, error) {
	release, err := s.begin(req.WorkOrderID)
	if err != nil {
		return nil, err
	}
	defer release()

	wo, err := s.resolve(ctx, req.WorkOrderID)
	if err != nil {
		return nil, err
	}
	if err := workorder.CanPause(transitionContext(wo)).Error(); err != nil {
		return nil, err
	}

	record, err := s.gateway.PauseWorkOrder(ctx, wo.ID, secondary.NoteOptions{Notes: req.Notes})
	if err != nil {
		return nil, s.failed("pause", wo.ID, err)
	}
	s.logger.Info("work order paused", zap.String("work_order", wo.ID))

	return s.sync(ctx, wo, record)
}

// ResumeWorkOrder resumes a paused work order.
func (s *ExecutionServiceImpl) ResumeWorkOrder(ctx context.Context, req primary.WorkOrderActionRequest) (*primary.ExecutionResult, error) {
	release, err := s.begin(req.WorkOrderID)
	if err != nil {
		return nil, err
	}
	defer release()

	wo, err := s.resolve(ctx, req.WorkOrderID)
	if err != nil {
		return nil, err
	}
	return s.resume(ctx, wo, req.Notes)
}

// CompleteWorkOrder completes a work order and applies the parent cascade.
//
// When the cascade's parent completion fails the work order stays completed:
// the returned result reflects the re-fetched state and the error describes
// the failed parent completion.
func (s *ExecutionServiceImpl) CompleteWorkOrder(ctx context.Context, req primary.CompleteWorkOrderRequest) (*primary.ExecutionResult, error) {
	release, err := s.begin(req.WorkOrderID)
	if err != nil {
		return nil, err
	}
	defer release()

	wo, err := s.resolve(ctx, req.WorkOrderID)
	if err != nil {
		return nil, err
	}
	if err := workorder.CanComplete(transitionContext(wo)).Error(); err != nil {
		return nil, err
	}

	_, err = s.gateway.CompleteWorkOrder(ctx, wo.ID, secondary.CompleteOptions{
		Notes:                 req.Notes,
		ActualDurationMinutes: req.ActualDurationMinutes,
	})
	if err != nil {
		return nil, s.failed("complete", wo.ID, err)
	}
	s.logger.Info("work order completed", zap.String("work_order", wo.ID))

	// The cascade only looks at a freshly fetched parent.
	parent, err := s.LoadOrder(ctx, wo.OrderID)
	if err != nil {
		return nil, err
	}
	result := s.resultFor(parent, wo.ID)
	result.Cascade = manufacturing.EvaluateCascade(parent.Status, parent.Children())

	switch result.Cascade {
	case manufacturing.CascadeInterimInProgress:
		result.Order = s.setLocalStatus(parent.ID, manufacturing.StatusInProgress)
	case manufacturing.CascadeCompleteOrder:
		receipt, err := s.completeOrder(ctx, parent.ID, "")
		if err != nil {
			return result, err
		}
		result.Receipt = receipt
		if refreshed, ok := s.CachedOrder(parent.ID); ok {
			result.Order = refreshed
		}
	}
	s.logger.Debug("cascade evaluated", zap.String("order", parent.ID), zap.Stringer("action", result.Cascade))

	return result, nil
}

// CompleteManufacturingOrder completes a parent order by hand. It is rejected
// with a validation error, before any network call, unless the order is
// IN_PROGRESS and every work order is terminal.
func (s *ExecutionServiceImpl) CompleteManufacturingOrder(ctx context.Context, req primary.CompleteOrderRequest) (*primary.ExecutionResult, error) {
	release, err := s.begin(req.OrderID)
	if err != nil {
		return nil, err
	}
	defer release()

	order, ok := s.CachedOrder(req.OrderID)
	if !ok {
		if order, err = s.LoadOrder(ctx, req.OrderID); err != nil {
			return nil, err
		}
	}

	guard := manufacturing.CanCompleteOrder(manufacturing.CompleteContext{
		OrderID:  order.ID,
		Status:   order.Status,
		Children: order.Children(),
	})
	if !guard.Allowed {
		return nil, apperr.Validation("%s", guard.Reason)
	}

	receipt, err := s.completeOrder(ctx, order.ID, req.Notes)
	if err != nil {
		return nil, err
	}
	refreshed, _ := s.CachedOrder(order.ID)
	return &primary.ExecutionResult{Order: refreshed, Receipt: receipt, Cascade: manufacturing.CascadeNone}, nil
}

func (s *ExecutionServiceImpl) resume(ctx context.Context, wo *primary.WorkOrder, notes string) (*primary.ExecutionResult, error) {
	if err := workorder.CanResume(transitionContext(wo)).Error(); err != nil {
		return nil, err
	}

	record, err := s.gateway.ResumeWorkOrder(ctx, wo.ID, secondary.NoteOptions{Notes: notes})
	if err != nil {
		return nil, s.failed("resume", wo.ID, err)
	}
	s.logger.Info("work order resumed", zap.String("work_order", wo.ID))

	return s.sync(ctx, wo, record)
}

// completeOrder issues the parent completion, marks the cached copy COMPLETED
// and then re-fetches it.
func (s *ExecutionServiceImpl) completeOrder(ctx context.Context, orderID, notes string) (*primary.CompleteOrderResponse, error) {
	receipt, err := s.gateway.CompleteManufacturingOrder(ctx, orderID, secondary.NoteOptions{Notes: notes})
	if err != nil {
		s.logger.Warn("manufacturing order completion failed", zap.String("order", orderID), zap.Error(err))
		return nil, gatewayError(err, "failed to complete manufacturing order %s", orderID)
	}
	resp, err := receiptToResponse(receipt)
	if err != nil {
		return nil, err
	}
	s.setLocalStatus(orderID, manufacturing.StatusCompleted)
	s.logger.Info("manufacturing order completed", zap.String("order", orderID), zap.Int("produced", resp.ProducedQuantity))

	order, err := s.LoadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	resp.Order = order
	return resp, nil
}

// sync replaces the cached parent after a mutation. The order returned by the
// mutation is used when present, otherwise the parent is fetched.
func (s *ExecutionServiceImpl) sync(ctx context.Context, wo *primary.WorkOrder, record *secondary.ManufacturingOrderRecord) (*primary.ExecutionResult, error) {
	var (
		order *primary.ManufacturingOrder
		err   error
	)
	if record != nil {
		order, err = s.store(record)
	} else {
		order, err = s.LoadOrder(ctx, wo.OrderID)
	}
	if err != nil {
		return nil, err
	}
	return s.resultFor(order, wo.ID), nil
}

func (s *ExecutionServiceImpl) resultFor(order *primary.ManufacturingOrder, workOrderID string) *primary.ExecutionResult {
	result := &primary.ExecutionResult{Order: order, Cascade: manufacturing.CascadeNone}
	if wo, ok := order.WorkOrder(workOrderID); ok {
		result.WorkOrder = wo
	}
	return result
}

// resolve finds a work order in the cache, loading its parent on a miss.
func (s *ExecutionServiceImpl) resolve(ctx context.Context, workOrderID string) (*primary.WorkOrder, error) {
	s.mu.Lock()
	if order, ok := s.orders[s.parentOf[workOrderID]]; ok {
		if wo, ok := order.WorkOrder(workOrderID); ok {
			s.mu.Unlock()
			return wo, nil
		}
	}
	s.mu.Unlock()

	order, err := s.LoadOrderForWorkOrder(ctx, workOrderID)
	if err != nil {
		return nil, err
	}
	wo, ok := order.WorkOrder(workOrderID)
	if !ok {
		return nil, apperr.NotFound("work order", workOrderID)
	}
	return wo, nil
}

func (s *ExecutionServiceImpl) store(record *secondary.ManufacturingOrderRecord) (*primary.ManufacturingOrder, error) {
	order, err := recordToOrder(record)
	if err != nil {
		return nil, apperr.Service(fmt.Sprintf("malformed manufacturing order %s", record.ID), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[order.ID] = order
	for _, wo := range order.WorkOrders {
		s.parentOf[wo.ID] = order.ID
	}
	return order, nil
}

// setLocalStatus changes the cached status without a mutation. The next fetch
// replaces it.
func (s *ExecutionServiceImpl) setLocalStatus(orderID string, status manufacturing.Status) *primary.ManufacturingOrder {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[orderID]
	if !ok {
		return nil
	}
	updated := *order
	updated.Status = status
	s.orders[orderID] = &updated
	return &updated
}

// begin marks an action on key as in flight. The returned release must be deferred.
func (s *ExecutionServiceImpl) begin(key string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.inFlight[key]; busy {
		return nil, apperr.InFlight(key)
	}
	s.inFlight[key] = struct{}{}
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.inFlight, key)
	}, nil
}

func (s *ExecutionServiceImpl) failed(action, workOrderID string, err error) error {
	s.logger.Warn("work order action failed", zap.String("action", action), zap.String("work_order", workOrderID), zap.Error(err))
	return gatewayError(err, "failed to %s work order %s", action, workOrderID)
}

func transitionContext(wo *primary.WorkOrder) workorder.StatusTransitionContext {
	return workorder.StatusTransitionContext{WorkOrderID: wo.ID, Status: wo.Status}
}

// gatewayError keeps classified gateway errors as they are and wraps anything
// else as a service failure.
func gatewayError(err error, format string, args ...any) error {
	if apperr.KindOf(err) != "" {
		return err
	}
	return apperr.Service(fmt.Sprintf(format, args...), err)
}

// Ensure ExecutionServiceImpl implements the interface
var _ primary.ExecutionService = (*ExecutionServiceImpl)(nil)
