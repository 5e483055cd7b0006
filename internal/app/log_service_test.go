package app

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/example/shopfloor/internal/apperr"
	"github.com/example/shopfloor/internal/ports/primary"
	"github.com/example/shopfloor/internal/ports/secondary"
)

// mockEventRepository implements secondary.EventRepository for testing.
type mockEventRepository struct {
	events map[string]*secondary.OrderEventRecord
	nextID int
}

func newMockEventRepository() *mockEventRepository {
	return &mockEventRepository{
		events: make(map[string]*secondary.OrderEventRecord),
		nextID: 1,
	}
}

func (m *mockEventRepository) Create(ctx context.Context, e *secondary.OrderEventRecord) error {
	m.events[e.ID] = e
	return nil
}

func (m *mockEventRepository) GetByID(ctx context.Context, id string) (*secondary.OrderEventRecord, error) {
	if e, ok := m.events[id]; ok {
		return e, nil
	}
	return nil, apperr.NotFound("event", id)
}

func (m *mockEventRepository) List(ctx context.Context, filters secondary.EventFilters) ([]*secondary.OrderEventRecord, error) {
	var result []*secondary.OrderEventRecord
	for _, e := range m.events {
		if filters.EntityType != "" && e.EntityType != filters.EntityType {
			continue
		}
		if filters.EntityID != "" && e.EntityID != filters.EntityID {
			continue
		}
		if filters.ActorID != "" && e.ActorID != filters.ActorID {
			continue
		}
		if filters.Action != "" && e.Action != filters.Action {
			continue
		}
		result = append(result, e)
	}

	if filters.Limit > 0 && len(result) > filters.Limit {
		result = result[:filters.Limit]
	}
	return result, nil
}

func (m *mockEventRepository) GetNextID(ctx context.Context) (string, error) {
	id := m.nextID
	m.nextID++
	return fmt.Sprintf("EV-%04d", id), nil
}

func (m *mockEventRepository) PruneOlderThan(ctx context.Context, days int) (int, error) {
	count := 0
	cutoff := time.Now().AddDate(0, 0, -days)
	for id, e := range m.events {
		ts, err := time.Parse(time.RFC3339, e.Timestamp)
		if err != nil {
			continue
		}
		if ts.Before(cutoff) {
			delete(m.events, id)
			count++
		}
	}
	return count, nil
}

func newTestEventLogService() (*EventLogServiceImpl, *mockEventRepository) {
	repo := newMockEventRepository()
	return NewEventLogService(repo), repo
}

func TestEventLogService_GetEvent(t *testing.T) {
	service, repo := newTestEventLogService()
	ctx := context.Background()

	repo.events["EV-0001"] = &secondary.OrderEventRecord{
		ID:         "EV-0001",
		Timestamp:  "2026-03-02T08:00:00Z",
		ActorID:    "op-7",
		EntityType: "work_order",
		EntityID:   "WO-001",
		Action:     "start",
		FromStatus: "PENDING",
		ToStatus:   "IN_PROGRESS",
	}

	event, err := service.GetEvent(ctx, "EV-0001")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if event.EntityID != "WO-001" || event.ToStatus != "IN_PROGRESS" {
		t.Errorf("unexpected event %+v", event)
	}
}

func TestEventLogService_GetEvent_NotFound(t *testing.T) {
	service, _ := newTestEventLogService()

	_, err := service.GetEvent(context.Background(), "EV-9999")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestEventLogService_ListEvents_WithFilters(t *testing.T) {
	service, repo := newTestEventLogService()
	ctx := context.Background()

	repo.events["EV-0001"] = &secondary.OrderEventRecord{ID: "EV-0001", EntityType: "manufacturing_order", EntityID: "MO-001", Action: "confirm", ActorID: "planner", Timestamp: "2026-03-02T07:00:00Z"}
	repo.events["EV-0002"] = &secondary.OrderEventRecord{ID: "EV-0002", EntityType: "work_order", EntityID: "WO-001", Action: "start", ActorID: "op-7", Timestamp: "2026-03-02T08:00:00Z"}
	repo.events["EV-0003"] = &secondary.OrderEventRecord{ID: "EV-0003", EntityType: "work_order", EntityID: "WO-001", Action: "pause", ActorID: "op-7", Timestamp: "2026-03-02T08:10:00Z"}

	all, err := service.ListEvents(ctx, primary.EventFilters{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 events, got %d", len(all))
	}

	wos, err := service.ListEvents(ctx, primary.EventFilters{EntityType: "work_order", Action: "pause"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(wos) != 1 || wos[0].ID != "EV-0003" {
		t.Errorf("expected only EV-0003, got %+v", wos)
	}
}

func TestEventLogService_PruneEvents(t *testing.T) {
	service, repo := newTestEventLogService()
	ctx := context.Background()

	old := time.Now().AddDate(0, 0, -120).Format(time.RFC3339)
	recent := time.Now().Format(time.RFC3339)
	repo.events["EV-0001"] = &secondary.OrderEventRecord{ID: "EV-0001", EntityType: "work_order", Timestamp: old}
	repo.events["EV-0002"] = &secondary.OrderEventRecord{ID: "EV-0002", EntityType: "work_order", Timestamp: recent}

	count, err := service.PruneEvents(ctx, 90)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 pruned, got %d", count)
	}
	if len(repo.events) != 1 {
		t.Errorf("expected 1 event remaining, got %d", len(repo.events))
	}
}

func TestEventLogService_PruneEvents_RejectsZeroDays(t *testing.T) {
	service, _ := newTestEventLogService()

	if _, err := service.PruneEvents(context.Background(), 0); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}
