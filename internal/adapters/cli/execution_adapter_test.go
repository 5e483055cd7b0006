package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/example/shopfloor/internal/apperr"
	"github.com/example/shopfloor/internal/clock"
	"github.com/example/shopfloor/internal/core/manufacturing"
	"github.com/example/shopfloor/internal/core/workorder"
	"github.com/example/shopfloor/internal/ports/primary"
)

var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

// mockExecutionService implements primary.ExecutionService for testing
type mockExecutionService struct {
	order       *primary.ManufacturingOrder
	completeFn  func(ctx context.Context, req primary.CompleteWorkOrderRequest) (*primary.ExecutionResult, error)
	lastStarted primary.StartWorkOrderRequest
}

func (m *mockExecutionService) LoadOrder(ctx context.Context, orderID string) (*primary.ManufacturingOrder, error) {
	if m.order == nil || m.order.ID != orderID {
		return nil, apperr.NotFound("manufacturing order", orderID)
	}
	return m.order, nil
}

func (m *mockExecutionService) LoadOrderForWorkOrder(ctx context.Context, workOrderID string) (*primary.ManufacturingOrder, error) {
	if _, ok := m.order.WorkOrder(workOrderID); !ok {
		return nil, apperr.NotFound("work order", workOrderID)
	}
	return m.order, nil
}

func (m *mockExecutionService) CachedOrder(orderID string) (*primary.ManufacturingOrder, bool) {
	return m.order, m.order != nil
}

func (m *mockExecutionService) StartWorkOrder(ctx context.Context, req primary.StartWorkOrderRequest) (*primary.ExecutionResult, error) {
	m.lastStarted = req
	wo, _ := m.order.WorkOrder(req.WorkOrderID)
	started := testNow.Add(-90 * time.Second)
	wo.Status = workorder.StatusInProgress
	wo.ActualStart = &started
	m.order.Status = manufacturing.StatusInProgress
	return &primary.ExecutionResult{Order: m.order, WorkOrder: wo}, nil
}

func (m *mockExecutionService) PauseWorkOrder(ctx context.Context, req primary.WorkOrderActionRequest) (*primary.ExecutionResult, error) {
	return nil, apperr.InvalidTransition("cannot pause work order %s", req.WorkOrderID)
}

func (m *mockExecutionService) ResumeWorkOrder(ctx context.Context, req primary.WorkOrderActionRequest) (*primary.ExecutionResult, error) {
	return nil, errors.New("not implemented in adapter test")
}

func (m *mockExecutionService) CompleteWorkOrder(ctx context.Context, req primary.CompleteWorkOrderRequest) (*primary.ExecutionResult, error) {
	return m.completeFn(ctx, req)
}

func (m *mockExecutionService) CompleteManufacturingOrder(ctx context.Context, req primary.CompleteOrderRequest) (*primary.ExecutionResult, error) {
	return nil, apperr.Validation("cannot complete manufacturing order %s: work orders still open", req.OrderID)
}

func (m *mockExecutionService) InFlight(workOrderID string) bool { return false }

func (m *mockExecutionService) Elapsed(workOrderID string, now time.Time) (workorder.Display, error) {
	wo, ok := m.order.WorkOrder(workOrderID)
	if !ok {
		return workorder.Display{}, apperr.NotFound("work order", workOrderID)
	}
	return workorder.Elapsed(wo.Snapshot(), now), nil
}

func newExecutionFixture() (*mockExecutionService, *bytes.Buffer, *ExecutionAdapter) {
	mock := &mockExecutionService{
		order: &primary.ManufacturingOrder{
			ID:        "MO-001",
			ProductID: "PROD-001",
			Quantity:  2,
			Status:    manufacturing.StatusConfirmed,
			WorkOrders: []*primary.WorkOrder{
				{ID: "WO-001", OrderID: "MO-001", Sequence: 1, Name: "Assembly", Status: workorder.StatusPending},
				{ID: "WO-002", OrderID: "MO-001", Sequence: 2, Name: "Finishing", Status: workorder.StatusPending},
			},
		},
	}
	var buf bytes.Buffer
	return mock, &buf, NewExecutionAdapter(mock, clock.NewFake(testNow), &buf)
}

func TestExecutionAdapter_Show(t *testing.T) {
	_, buf, adapter := newExecutionFixture()

	order, err := adapter.Show(context.Background(), "MO-001")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if order.ID != "MO-001" {
		t.Errorf("expected MO-001, got %s", order.ID)
	}

	output := buf.String()
	for _, want := range []string{"Manufacturing order: MO-001", "Progress: 0%", "WO-001", "Finishing", "00:00:00"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got %q", want, output)
		}
	}
}

func TestExecutionAdapter_Start_ShowsElapsed(t *testing.T) {
	mock, buf, adapter := newExecutionFixture()

	if err := adapter.Start(context.Background(), "WO-001", "op-3", ""); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if mock.lastStarted.OperatorID != "op-3" {
		t.Errorf("expected operator op-3, got %q", mock.lastStarted.OperatorID)
	}
	if !strings.Contains(buf.String(), "✓ Work order WO-001 started (00:01:30, MO-001 IN_PROGRESS)") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestExecutionAdapter_Pause_Error(t *testing.T) {
	_, buf, adapter := newExecutionFixture()

	err := adapter.Pause(context.Background(), "WO-001", "")
	if !errors.Is(err, apperr.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestExecutionAdapter_Complete_CascadeFailure(t *testing.T) {
	mock, buf, adapter := newExecutionFixture()
	mock.completeFn = func(ctx context.Context, req primary.CompleteWorkOrderRequest) (*primary.ExecutionResult, error) {
		wo, _ := mock.order.WorkOrder(req.WorkOrderID)
		wo.Status = workorder.StatusCompleted
		wo.ActualDurationMinutes = req.ActualDurationMinutes
		started := testNow.Add(-time.Hour)
		wo.ActualStart = &started
		return &primary.ExecutionResult{Order: mock.order, WorkOrder: wo, Cascade: manufacturing.CascadeCompleteOrder},
			apperr.Service("POST /api/manufacturing-orders/MO-001/complete/ failed", errors.New("connection refused"))
	}

	err := adapter.Complete(context.Background(), "WO-002", "", 45)
	if !errors.Is(err, apperr.ErrService) {
		t.Fatalf("expected service error, got %v", err)
	}
	if !strings.Contains(err.Error(), "work order completed but manufacturing order MO-001 was not") {
		t.Errorf("unexpected error text %q", err.Error())
	}
	if !strings.Contains(buf.String(), "✓ Work order WO-002 completed (00:45:00") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestExecutionAdapter_Complete_WithReceipt(t *testing.T) {
	mock, buf, adapter := newExecutionFixture()
	mock.completeFn = func(ctx context.Context, req primary.CompleteWorkOrderRequest) (*primary.ExecutionResult, error) {
		wo, _ := mock.order.WorkOrder(req.WorkOrderID)
		wo.Status = workorder.StatusCompleted
		mock.order.Status = manufacturing.StatusCompleted
		return &primary.ExecutionResult{
			Order:     mock.order,
			WorkOrder: wo,
			Cascade:   manufacturing.CascadeCompleteOrder,
			Receipt: &primary.CompleteOrderResponse{
				Order:              mock.order,
				ProducedQuantity:   2,
				ConsumedComponents: []primary.ConsumedComponent{{ProductID: "PROD-002", Quantity: 8}},
			},
		}, nil
	}

	if err := adapter.Complete(context.Background(), "WO-002", "", 0); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	output := buf.String()
	if !strings.Contains(output, "produced 2 × PROD-001") || !strings.Contains(output, "consumed 8 × PROD-002") {
		t.Errorf("unexpected output: %q", output)
	}
}

func TestExecutionAdapter_CompleteOrder_Rejected(t *testing.T) {
	_, _, adapter := newExecutionFixture()

	err := adapter.CompleteOrder(context.Background(), "MO-001", "")
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
