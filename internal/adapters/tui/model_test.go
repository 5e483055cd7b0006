package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/example/shopfloor/internal/app"
	"github.com/example/shopfloor/internal/apperr"
	"github.com/example/shopfloor/internal/core/manufacturing"
	"github.com/example/shopfloor/internal/core/workorder"
	"github.com/example/shopfloor/internal/ports/primary"
)

// stubExecution implements primary.ExecutionService for the view tests.
type stubExecution struct {
	order    *primary.ManufacturingOrder
	startErr error
	started  []string
}

func (s *stubExecution) LoadOrder(ctx context.Context, orderID string) (*primary.ManufacturingOrder, error) {
	return s.order, nil
}

func (s *stubExecution) LoadOrderForWorkOrder(ctx context.Context, workOrderID string) (*primary.ManufacturingOrder, error) {
	return s.order, nil
}

func (s *stubExecution) CachedOrder(orderID string) (*primary.ManufacturingOrder, bool) {
	return s.order, true
}

func (s *stubExecution) StartWorkOrder(ctx context.Context, req primary.StartWorkOrderRequest) (*primary.ExecutionResult, error) {
	s.started = append(s.started, req.WorkOrderID)
	if s.startErr != nil {
		return nil, s.startErr
	}
	wo, _ := s.order.WorkOrder(req.WorkOrderID)
	wo.Status = workorder.StatusInProgress
	s.order.Status = manufacturing.StatusInProgress
	return &primary.ExecutionResult{Order: s.order, WorkOrder: wo}, nil
}

func (s *stubExecution) PauseWorkOrder(ctx context.Context, req primary.WorkOrderActionRequest) (*primary.ExecutionResult, error) {
	return nil, apperr.InvalidTransition("cannot pause work order %s", req.WorkOrderID)
}

func (s *stubExecution) ResumeWorkOrder(ctx context.Context, req primary.WorkOrderActionRequest) (*primary.ExecutionResult, error) {
	return nil, apperr.InvalidTransition("cannot resume work order %s", req.WorkOrderID)
}

func (s *stubExecution) CompleteWorkOrder(ctx context.Context, req primary.CompleteWorkOrderRequest) (*primary.ExecutionResult, error) {
	return nil, apperr.InvalidTransition("cannot complete work order %s", req.WorkOrderID)
}

func (s *stubExecution) CompleteManufacturingOrder(ctx context.Context, req primary.CompleteOrderRequest) (*primary.ExecutionResult, error) {
	return nil, apperr.Validation("work orders still open")
}

func (s *stubExecution) InFlight(workOrderID string) bool { return false }

func (s *stubExecution) Elapsed(workOrderID string, now time.Time) (workorder.Display, error) {
	return workorder.Display{}, nil
}

func newTestModel() (*stubExecution, Model) {
	exec := &stubExecution{
		order: &primary.ManufacturingOrder{
			ID:        "MO-001",
			ProductID: "PROD-001",
			Quantity:  2,
			Status:    manufacturing.StatusConfirmed,
			WorkOrders: []*primary.WorkOrder{
				{ID: "WO-001", Name: "Assembly", Status: workorder.StatusPending},
				{ID: "WO-002", Name: "Finishing", Status: workorder.StatusPending},
			},
		},
	}
	return exec, NewModel(context.Background(), exec, exec.order, nil)
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_ViewShowsDurationsFromUpdates(t *testing.T) {
	_, m := newTestModel()

	if !strings.Contains(m.View(), "--:--:--") {
		t.Fatalf("expected placeholder before the first update")
	}

	next, _ := m.Update(updateMsg{Displays: map[string]workorder.Display{
		"WO-001": {Minutes: 1, Seconds: 30, Live: true},
		"WO-002": {Minutes: 5},
	}})
	view := next.(Model).View()
	if !strings.Contains(view, "00:01:30") || !strings.Contains(view, "00:05:00") {
		t.Errorf("expected durations in view, got:\n%s", view)
	}
}

func TestModel_StartSelectedWorkOrder(t *testing.T) {
	exec, m := newTestModel()

	next, _ := m.Update(key("j"))
	next, cmd := next.(Model).Update(key("s"))
	if cmd == nil {
		t.Fatal("expected an action command")
	}
	if !next.(Model).busy {
		t.Error("model should be busy while the action runs")
	}

	// A second action while busy is ignored.
	if _, again := next.(Model).Update(key("s")); again != nil {
		t.Error("expected no command while busy")
	}

	next, _ = next.(Model).Update(cmd())
	if len(exec.started) != 1 || exec.started[0] != "WO-002" {
		t.Fatalf("started = %v, want [WO-002]", exec.started)
	}

	view := next.(Model).View()
	if !strings.Contains(view, "WO-002 started") || !strings.Contains(view, "IN_PROGRESS") {
		t.Errorf("unexpected view:\n%s", view)
	}
}

func TestModel_ActionErrorIsShown(t *testing.T) {
	exec, m := newTestModel()
	exec.startErr = apperr.InvalidTransition("cannot start work order WO-001: must be PENDING or PAUSED (current status: COMPLETED)")

	_, cmd := m.Update(key("s"))
	next, _ := m.Update(cmd())

	view := next.(Model).View()
	if !strings.Contains(view, "not allowed: cannot start work order WO-001") {
		t.Errorf("expected error line, got:\n%s", view)
	}
	if next.(Model).busy {
		t.Error("busy flag must clear after a failure")
	}
}

func TestModel_QuitWhenWatchEnds(t *testing.T) {
	_, m := newTestModel()
	updates := make(chan app.DurationUpdate)
	close(updates)
	m.updates = updates

	msg := m.Init()()
	if _, ok := msg.(watchClosedMsg); !ok {
		t.Fatalf("expected watchClosedMsg, got %T", msg)
	}

	_, cmd := m.Update(msg)
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestModel_CursorStaysInRange(t *testing.T) {
	_, m := newTestModel()

	var next tea.Model = m
	for i := 0; i < 5; i++ {
		next, _ = next.(Model).Update(key("j"))
	}
	if got := next.(Model).cursor; got != 1 {
		t.Errorf("cursor = %d, want 1", got)
	}
	for i := 0; i < 5; i++ {
		next, _ = next.(Model).Update(key("k"))
	}
	if got := next.(Model).cursor; got != 0 {
		t.Errorf("cursor = %d, want 0", got)
	}
}
