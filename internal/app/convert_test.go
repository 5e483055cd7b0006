package app

import (
	"strings"
	"testing"
	"time"

	"github.com/example/shopfloor/internal/ports/secondary"
)

func TestAppendNote(t *testing.T) {
	at := time.Date(2026, 3, 2, 9, 15, 42, 0, time.FixedZone("CET", 3600))

	tests := []struct {
		name     string
		existing string
		action   string
		note     string
		want     string
	}{
		{"empty note keeps existing", "old", "pause", "", "old"},
		{"first note", "", "start", "line 3", "[STARTED 2026-03-02 08:15]: line 3"},
		{"appended on its own line", "[STARTED 2026-03-02 08:00]: a", "complete", "done", "[STARTED 2026-03-02 08:00]: a\n[COMPLETED 2026-03-02 08:15]: done"},
		{"unknown action upper-cased", "", "inspect", "ok", "[INSPECT 2026-03-02 08:15]: ok"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := appendNote(tt.existing, tt.action, at, tt.note); got != tt.want {
				t.Errorf("appendNote() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSnapshotFromRecord_MalformedTimestamp(t *testing.T) {
	record := &secondary.WorkOrderRecord{ID: "WO-001", Status: "IN_PROGRESS", ActualStart: "02/03/2026 08:00"}

	_, err := snapshotFromRecord(record)
	if err == nil {
		t.Fatal("expected error for malformed actual_start")
	}
	if !strings.Contains(err.Error(), "WO-001") || !strings.Contains(err.Error(), "actual_start") {
		t.Errorf("error should name the work order and field, got %v", err)
	}
}

func TestRecordToOrder_MalformedWorkOrderTimestamp(t *testing.T) {
	record := &secondary.ManufacturingOrderRecord{
		ID: "MO-001", Status: "IN_PROGRESS", Priority: "HIGH",
		ActualStart: "2026-03-02T08:00:00Z",
		WorkOrders: []*secondary.WorkOrderRecord{
			{ID: "WO-002", Status: "PAUSED", ActualStart: "2026-03-02T08:00:00Z", PauseStart: "yesterday"},
		},
	}

	_, err := recordToOrder(record)
	if err == nil || !strings.Contains(err.Error(), "pause_start") {
		t.Fatalf("expected pause_start error, got %v", err)
	}

	record.WorkOrders[0].PauseStart = "2026-03-02T08:30:00Z"
	order, err := recordToOrder(record)
	if err != nil {
		t.Fatalf("recordToOrder failed: %v", err)
	}
	if order.ActualStart == nil || !order.ActualStart.Equal(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)) {
		t.Errorf("ActualStart = %v", order.ActualStart)
	}
}
