package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/shopfloor/internal/clock"
	"github.com/example/shopfloor/internal/core/manufacturing"
	"github.com/example/shopfloor/internal/core/workorder"
	"github.com/example/shopfloor/internal/ports/primary"
	"github.com/example/shopfloor/internal/ports/secondary"
)

// WorkOrderServiceImpl implements the WorkOrderService interface.
// It is the authoritative side of work order execution: guards are re-checked
// against the stored record and timestamps come from the service clock.
type WorkOrderServiceImpl struct {
	workOrderRepo secondary.WorkOrderRepository
	orderRepo     secondary.ManufacturingOrderRepository
	journal       journal
	clock         clock.Clock
	logger        *zap.Logger
}

// NewWorkOrderService creates a new WorkOrderService with injected dependencies.
func NewWorkOrderService(
	workOrderRepo secondary.WorkOrderRepository,
	orderRepo secondary.ManufacturingOrderRepository,
	eventWriter secondary.EventWriter,
	clk clock.Clock,
	logger *zap.Logger,
) *WorkOrderServiceImpl {
	if clk == nil {
		clk = clock.Real{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkOrderServiceImpl{
		workOrderRepo: workOrderRepo,
		orderRepo:     orderRepo,
		journal:       journal{writer: eventWriter, logger: logger},
		clock:         clk,
		logger:        logger,
	}
}

// GetWorkOrder retrieves a work order by ID.
func (s *WorkOrderServiceImpl) GetWorkOrder(ctx context.Context, workOrderID string) (*primary.WorkOrder, error) {
	record, err := s.workOrderRepo.GetByID(ctx, workOrderID)
	if err != nil {
		return nil, err
	}
	return recordToWorkOrder(record)
}

// ListWorkOrders lists work orders with optional filters.
func (s *WorkOrderServiceImpl) ListWorkOrders(ctx context.Context, filters primary.WorkOrderFilters) ([]*primary.WorkOrder, error) {
	records, err := s.workOrderRepo.List(ctx, secondary.WorkOrderFilters{
		OrderID:      filters.OrderID,
		Status:       filters.Status,
		WorkCenterID: filters.WorkCenterID,
		OperatorID:   filters.OperatorID,
		Limit:        filters.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list work orders: %w", err)
	}

	workOrders := make([]*primary.WorkOrder, 0, len(records))
	for _, r := range records {
		wo, err := recordToWorkOrder(r)
		if err != nil {
			return nil, err
		}
		workOrders = append(workOrders, wo)
	}
	return workOrders, nil
}

// StartWorkOrder starts a PENDING work order, or resumes a PAUSED one.
// Starting the first work order of a CONFIRMED order moves the order to IN_PROGRESS.
func (s *WorkOrderServiceImpl) StartWorkOrder(ctx context.Context, req primary.StartWorkOrderRequest) (*primary.WorkOrderActionResult, error) {
	record, snap, err := s.load(ctx, req.WorkOrderID)
	if err != nil {
		return nil, err
	}
	if snap.Status == workorder.StatusPaused {
		return s.resume(ctx, record, snap, req.Notes)
	}

	order, err := s.orderRepo.GetByID(ctx, record.OrderID)
	if err != nil {
		return nil, err
	}
	orderStatus, err := manufacturing.ParseStatus(order.Status)
	if err != nil {
		return nil, err
	}
	if snap.Status == workorder.StatusPending {
		guard := manufacturing.CanStartWork(manufacturing.StatusContext{OrderID: order.ID, Status: orderStatus})
		if err := guard.Error(); err != nil {
			return nil, err
		}
	}

	now := s.clock.Now()
	next, err := workorder.ApplyStart(record.ID, snap, req.OperatorID, now)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, record, next, req.Notes, "start", snap.Status); err != nil {
		return nil, err
	}

	if orderStatus == manufacturing.StatusConfirmed {
		err := s.orderRepo.UpdateStatus(ctx, order.ID, string(manufacturing.StatusInProgress), formatTime(&now), "")
		if err != nil {
			return nil, fmt.Errorf("failed to start manufacturing order: %w", err)
		}
		s.journal.transition(ctx, secondary.EntityManufacturingOrder, order.ID, "start", order.Status, string(manufacturing.StatusInProgress))
	}

	return s.result(ctx, record.ID)
}

// PauseWorkOrder pauses an IN_PROGRESS work order.
func (s *WorkOrderServiceImpl) PauseWorkOrder(ctx context.Context, req primary.WorkOrderActionRequest) (*primary.WorkOrderActionResult, error) {
	record, snap, err := s.load(ctx, req.WorkOrderID)
	if err != nil {
		return nil, err
	}

	next, err := workorder.ApplyPause(record.ID, snap, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, record, next, req.Notes, "pause", snap.Status); err != nil {
		return nil, err
	}
	return s.result(ctx, record.ID)
}

// ResumeWorkOrder resumes a PAUSED work order.
func (s *WorkOrderServiceImpl) ResumeWorkOrder(ctx context.Context, req primary.WorkOrderActionRequest) (*primary.WorkOrderActionResult, error) {
	record, snap, err := s.load(ctx, req.WorkOrderID)
	if err != nil {
		return nil, err
	}
	return s.resume(ctx, record, snap, req.Notes)
}

// CompleteWorkOrder completes an IN_PROGRESS or PAUSED work order and
// finalizes its duration. The parent order is left to the caller.
func (s *WorkOrderServiceImpl) CompleteWorkOrder(ctx context.Context, req primary.CompleteWorkOrderRequest) (*primary.WorkOrderActionResult, error) {
	record, snap, err := s.load(ctx, req.WorkOrderID)
	if err != nil {
		return nil, err
	}

	next, err := workorder.ApplyComplete(record.ID, snap, req.ActualDurationMinutes, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, record, next, req.Notes, "complete", snap.Status); err != nil {
		return nil, err
	}
	s.logger.Info("work order completed",
		zap.String("work_order", record.ID),
		zap.Int("actual_minutes", next.ActualDurationMinutes),
		zap.Int("estimated_minutes", record.EstimatedDurationMinutes))

	return s.result(ctx, record.ID)
}

func (s *WorkOrderServiceImpl) resume(ctx context.Context, record *secondary.WorkOrderRecord, snap workorder.Snapshot, notes string) (*primary.WorkOrderActionResult, error) {
	next, err := workorder.ApplyResume(record.ID, snap, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, record, next, notes, "resume", snap.Status); err != nil {
		return nil, err
	}
	return s.result(ctx, record.ID)
}

func (s *WorkOrderServiceImpl) load(ctx context.Context, id string) (*secondary.WorkOrderRecord, workorder.Snapshot, error) {
	record, err := s.workOrderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, workorder.Snapshot{}, err
	}
	snap, err := snapshotFromRecord(record)
	if err != nil {
		return nil, workorder.Snapshot{}, err
	}
	return record, snap, nil
}

func (s *WorkOrderServiceImpl) save(ctx context.Context, record *secondary.WorkOrderRecord, next workorder.Snapshot, notes, action string, from workorder.Status) error {
	updated := applySnapshotToRecord(record, next)
	updated.Notes = appendNote(record.Notes, action, s.clock.Now(), notes)
	if err := s.workOrderRepo.UpdateExecution(ctx, updated, string(from)); err != nil {
		return fmt.Errorf("failed to %s work order: %w", action, err)
	}
	s.journal.transition(ctx, secondary.EntityWorkOrder, record.ID, action, string(from), string(next.Status))
	s.logger.Debug("work order transition",
		zap.String("work_order", record.ID),
		zap.String("action", action),
		zap.Stringer("from", from),
		zap.Stringer("to", next.Status),
		zap.Time("at", s.clock.Now().Truncate(time.Second)))
	return nil
}

// result re-reads the work order and its parent after a mutation.
func (s *WorkOrderServiceImpl) result(ctx context.Context, workOrderID string) (*primary.WorkOrderActionResult, error) {
	record, err := s.workOrderRepo.GetByID(ctx, workOrderID)
	if err != nil {
		return nil, err
	}
	wo, err := recordToWorkOrder(record)
	if err != nil {
		return nil, err
	}
	orderRecord, err := s.orderRepo.GetByID(ctx, record.OrderID)
	if err != nil {
		return nil, err
	}
	order, err := recordToOrder(orderRecord)
	if err != nil {
		return nil, err
	}
	return &primary.WorkOrderActionResult{WorkOrder: wo, Order: order}, nil
}

// Ensure WorkOrderServiceImpl implements the interface
var _ primary.WorkOrderService = (*WorkOrderServiceImpl)(nil)
