package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/shopfloor/internal/core/manufacturing"
	"github.com/example/shopfloor/internal/core/workorder"
	"github.com/example/shopfloor/internal/ports/primary"
	"github.com/example/shopfloor/internal/ports/secondary"
)

// Record timestamps are RFC3339 strings; "" means unset.

func parseTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// timeFields decodes a record's timestamps, naming the first bad field.
type timeFields struct {
	entity, id string
	err        error
}

func (f *timeFields) ptr(field, s string) *time.Time {
	if f.err != nil {
		return nil
	}
	t, err := parseTime(s)
	if err != nil {
		f.err = fmt.Errorf("%s %s: invalid %s %q: %w", f.entity, f.id, field, s, err)
	}
	return t
}

func (f *timeFields) value(field, s string) time.Time {
	if t := f.ptr(field, s); t != nil {
		return *t
	}
	return time.Time{}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func recordToOrder(r *secondary.ManufacturingOrderRecord) (*primary.ManufacturingOrder, error) {
	status, err := manufacturing.ParseStatus(r.Status)
	if err != nil {
		return nil, err
	}
	priority, err := manufacturing.ParsePriority(r.Priority)
	if err != nil {
		return nil, err
	}

	tf := timeFields{entity: "manufacturing order", id: r.ID}
	order := &primary.ManufacturingOrder{
		ID:               r.ID,
		ProductID:        r.ProductID,
		BOMID:            r.BOMID,
		Quantity:         r.Quantity,
		QuantityProduced: r.QuantityProduced,
		Status:           status,
		Priority:         priority,
		ScheduledStart:   r.ScheduledStart,
		ActualStart:      tf.ptr("actual_start", r.ActualStart),
		CompletedAt:      tf.ptr("completed_at", r.CompletedAt),
		Notes:            r.Notes,
		CreatedAt:        tf.value("created_at", r.CreatedAt),
		UpdatedAt:        tf.value("updated_at", r.UpdatedAt),
	}
	if tf.err != nil {
		return nil, tf.err
	}
	for _, req := range r.Requirements {
		order.Requirements = append(order.Requirements, primary.ComponentRequirement{
			ProductID:        req.ProductID,
			QuantityPerUnit:  req.QuantityPerUnit,
			QuantityRequired: req.QuantityRequired,
			QuantityConsumed: req.QuantityConsumed,
		})
	}
	for _, w := range r.WorkOrders {
		wo, err := recordToWorkOrder(w)
		if err != nil {
			return nil, err
		}
		order.WorkOrders = append(order.WorkOrders, wo)
	}
	return order, nil
}

func recordToWorkOrder(r *secondary.WorkOrderRecord) (*primary.WorkOrder, error) {
	status, err := workorder.ParseStatus(r.Status)
	if err != nil {
		return nil, err
	}
	tf := timeFields{entity: "work order", id: r.ID}
	wo := &primary.WorkOrder{
		ID:                       r.ID,
		OrderID:                  r.OrderID,
		Number:                   r.Number,
		Sequence:                 r.Sequence,
		Name:                     r.Name,
		WorkCenterID:             r.WorkCenterID,
		Status:                   status,
		OperatorID:               r.OperatorID,
		EstimatedDurationMinutes: r.EstimatedDurationMinutes,
		ActualDurationMinutes:    r.ActualDurationMinutes,
		TotalPauseMinutes:        r.TotalPauseMinutes,
		ActualStart:              tf.ptr("actual_start", r.ActualStart),
		PauseStart:               tf.ptr("pause_start", r.PauseStart),
		CompletedAt:              tf.ptr("completed_at", r.CompletedAt),
		Notes:                    r.Notes,
		CreatedAt:                tf.value("created_at", r.CreatedAt),
		UpdatedAt:                tf.value("updated_at", r.UpdatedAt),
	}
	if tf.err != nil {
		return nil, tf.err
	}
	return wo, nil
}

// snapshotFromRecord decodes the execution fields of a stored work order.
func snapshotFromRecord(r *secondary.WorkOrderRecord) (workorder.Snapshot, error) {
	status, err := workorder.ParseStatus(r.Status)
	if err != nil {
		return workorder.Snapshot{}, err
	}
	tf := timeFields{entity: "work order", id: r.ID}
	snap := workorder.Snapshot{
		Status:                status,
		ActualStart:           tf.ptr("actual_start", r.ActualStart),
		PauseStart:            tf.ptr("pause_start", r.PauseStart),
		CompletedAt:           tf.ptr("completed_at", r.CompletedAt),
		TotalPauseMinutes:     r.TotalPauseMinutes,
		ActualDurationMinutes: r.ActualDurationMinutes,
		OperatorID:            r.OperatorID,
	}
	if tf.err != nil {
		return workorder.Snapshot{}, tf.err
	}
	return snap, nil
}

// applySnapshotToRecord writes execution fields back onto a record copy.
func applySnapshotToRecord(r *secondary.WorkOrderRecord, s workorder.Snapshot) *secondary.WorkOrderRecord {
	out := *r
	out.Status = string(s.Status)
	out.ActualStart = formatTime(s.ActualStart)
	out.PauseStart = formatTime(s.PauseStart)
	out.CompletedAt = formatTime(s.CompletedAt)
	out.TotalPauseMinutes = s.TotalPauseMinutes
	out.ActualDurationMinutes = s.ActualDurationMinutes
	out.OperatorID = s.OperatorID
	return &out
}

func receiptToResponse(r *secondary.CompletionReceipt) (*primary.CompleteOrderResponse, error) {
	resp := &primary.CompleteOrderResponse{ProducedQuantity: r.ProducedQuantity}
	for _, c := range r.ConsumedComponents {
		resp.ConsumedComponents = append(resp.ConsumedComponents, primary.ConsumedComponent{
			ProductID: c.ProductID,
			Quantity:  c.Quantity,
		})
	}
	if r.Order != nil {
		order, err := recordToOrder(r.Order)
		if err != nil {
			return nil, err
		}
		resp.Order = order
	}
	return resp, nil
}

var noteLabels = map[string]string{
	"start":    "STARTED",
	"pause":    "PAUSED",
	"resume":   "RESUMED",
	"complete": "COMPLETED",
}

// appendNote adds an operator note as its own "[LABEL time]: note" line.
func appendNote(existing, action string, at time.Time, note string) string {
	if note == "" {
		return existing
	}
	label, ok := noteLabels[action]
	if !ok {
		label = strings.ToUpper(action)
	}
	line := fmt.Sprintf("[%s %s]: %s", label, at.UTC().Format("2006-01-02 15:04"), note)
	if existing == "" {
		return line
	}
	return existing + "\n" + line
}
