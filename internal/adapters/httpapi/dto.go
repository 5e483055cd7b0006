// Package httpapi exposes the reference order backend over REST and provides
// the matching client gateway.
package httpapi

import (
	"time"

	"github.com/example/shopfloor/internal/core/workorder"
	"github.com/example/shopfloor/internal/ports/primary"
	"github.com/example/shopfloor/internal/ports/secondary"
)

// Timestamps travel as RFC3339 strings; an absent field means unset.

type orderJSON struct {
	ID                 string            `json:"mo_id"`
	ProductID          string            `json:"product"`
	BOMID              string            `json:"bom"`
	Quantity           int               `json:"quantity_to_produce"`
	QuantityProduced   int               `json:"quantity_produced"`
	Status             string            `json:"status"`
	Priority           string            `json:"priority"`
	ScheduledStart     string            `json:"scheduled_start_date,omitempty"`
	ActualStart        string            `json:"actual_start_date,omitempty"`
	CompletedAt        string            `json:"completion_date,omitempty"`
	Notes              string            `json:"notes,omitempty"`
	CreatedAt          string            `json:"created_at,omitempty"`
	UpdatedAt          string            `json:"updated_at,omitempty"`
	ProgressPercentage float64           `json:"progress_percentage"`
	Requirements       []requirementJSON `json:"component_requirements,omitempty"`
	WorkOrders         []workOrderJSON   `json:"work_orders"`
}

type requirementJSON struct {
	ProductID        string  `json:"product"`
	QuantityPerUnit  float64 `json:"quantity_per_unit"`
	QuantityRequired float64 `json:"quantity_required"`
	QuantityConsumed float64 `json:"quantity_consumed"`
}

type workOrderJSON struct {
	ID                       string  `json:"wo_id"`
	OrderID                  string  `json:"mo"`
	Number                   string  `json:"wo_number"`
	Sequence                 int     `json:"sequence"`
	Name                     string  `json:"name"`
	WorkCenterID             string  `json:"work_center"`
	Status                   string  `json:"status"`
	OperatorID               string  `json:"operator,omitempty"`
	EstimatedDurationMinutes int     `json:"estimated_duration_minutes"`
	ActualDurationMinutes    int     `json:"actual_duration_minutes"`
	TotalPauseMinutes        int     `json:"total_pause_minutes"`
	ActualStart              string  `json:"actual_start_date,omitempty"`
	PauseStart               string  `json:"pause_start_time,omitempty"`
	CompletedAt              string  `json:"completion_date,omitempty"`
	Notes                    string  `json:"notes,omitempty"`
	CreatedAt                string  `json:"created_at,omitempty"`
	UpdatedAt                string  `json:"updated_at,omitempty"`
	EfficiencyPercentage     float64 `json:"efficiency_percentage"`
}

type movementJSON struct {
	ID             string  `json:"ledger_id"`
	ProductID      string  `json:"product"`
	QuantityChange float64 `json:"quantity_change"`
	Type           string  `json:"movement_type"`
	Reference      string  `json:"reference_number,omitempty"`
	Notes          string  `json:"notes,omitempty"`
	CreatedAt      string  `json:"transaction_time"`
}

type consumedJSON struct {
	ProductID string  `json:"product"`
	Quantity  float64 `json:"quantity"`
}

// Request bodies

type createOrderBody struct {
	ProductID      string `json:"product"`
	BOMID          string `json:"bom"`
	Quantity       int    `json:"quantity_to_produce"`
	Priority       string `json:"priority"`
	ScheduledStart string `json:"scheduled_start_date"`
	Notes          string `json:"notes"`
}

type confirmBody struct {
	Force bool `json:"force_confirm"`
}

type notesBody struct {
	Notes string `json:"notes"`
}

type cancelBody struct {
	Reason string `json:"reason"`
}

type startBody struct {
	OperatorID string `json:"operator"`
	Notes      string `json:"notes"`
}

type completeWorkOrderBody struct {
	Notes          string `json:"notes"`
	ActualDuration int    `json:"actual_duration"`
}

// Response bodies

type orderActionResponse struct {
	Message string    `json:"message"`
	Order   orderJSON `json:"mo"`
}

// Order is optional in action responses; a client re-fetches the parent when
// the service sends only the work order.
type workOrderActionResponse struct {
	Message   string        `json:"message"`
	WorkOrder workOrderJSON `json:"wo"`
	Order     *orderJSON    `json:"mo,omitempty"`
}

type completeOrderResponse struct {
	Message            string         `json:"message"`
	ConsumedComponents []consumedJSON `json:"consumed_components"`
	ProducedQuantity   int            `json:"produced_quantity"`
	Order              *orderJSON     `json:"mo,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Server side: port types to JSON

func fromOrder(o *primary.ManufacturingOrder) orderJSON {
	out := orderJSON{
		ID:                 o.ID,
		ProductID:          o.ProductID,
		BOMID:              o.BOMID,
		Quantity:           o.Quantity,
		QuantityProduced:   o.QuantityProduced,
		Status:             string(o.Status),
		Priority:           string(o.Priority),
		ScheduledStart:     o.ScheduledStart,
		ActualStart:        formatTime(o.ActualStart),
		CompletedAt:        formatTime(o.CompletedAt),
		Notes:              o.Notes,
		CreatedAt:          formatTime(&o.CreatedAt),
		UpdatedAt:          formatTime(&o.UpdatedAt),
		ProgressPercentage: o.Progress(),
		WorkOrders:         make([]workOrderJSON, 0, len(o.WorkOrders)),
	}
	for _, r := range o.Requirements {
		out.Requirements = append(out.Requirements, requirementJSON(r))
	}
	for _, wo := range o.WorkOrders {
		out.WorkOrders = append(out.WorkOrders, fromWorkOrder(wo))
	}
	return out
}

func orderRef(o *primary.ManufacturingOrder) *orderJSON {
	if o == nil {
		return nil
	}
	out := fromOrder(o)
	return &out
}

func fromWorkOrder(w *primary.WorkOrder) workOrderJSON {
	return workOrderJSON{
		ID:                       w.ID,
		OrderID:                  w.OrderID,
		Number:                   w.Number,
		Sequence:                 w.Sequence,
		Name:                     w.Name,
		WorkCenterID:             w.WorkCenterID,
		Status:                   string(w.Status),
		OperatorID:               w.OperatorID,
		EstimatedDurationMinutes: w.EstimatedDurationMinutes,
		ActualDurationMinutes:    w.ActualDurationMinutes,
		TotalPauseMinutes:        w.TotalPauseMinutes,
		ActualStart:              formatTime(w.ActualStart),
		PauseStart:               formatTime(w.PauseStart),
		CompletedAt:              formatTime(w.CompletedAt),
		Notes:                    w.Notes,
		CreatedAt:                formatTime(&w.CreatedAt),
		UpdatedAt:                formatTime(&w.UpdatedAt),
		EfficiencyPercentage:     workorder.Efficiency(w.EstimatedDurationMinutes, w.ActualDurationMinutes),
	}
}

func fromMovement(m *primary.StockMovement) movementJSON {
	return movementJSON{
		ID:             m.ID,
		ProductID:      m.ProductID,
		QuantityChange: m.QuantityChange,
		Type:           m.Type,
		Reference:      m.Reference,
		Notes:          m.Notes,
		CreatedAt:      m.CreatedAt,
	}
}

// Client side: JSON to gateway records

func (o orderJSON) toRecord() *secondary.ManufacturingOrderRecord {
	r := &secondary.ManufacturingOrderRecord{
		ID:               o.ID,
		ProductID:        o.ProductID,
		BOMID:            o.BOMID,
		Quantity:         o.Quantity,
		QuantityProduced: o.QuantityProduced,
		Status:           o.Status,
		Priority:         o.Priority,
		ScheduledStart:   o.ScheduledStart,
		ActualStart:      o.ActualStart,
		CompletedAt:      o.CompletedAt,
		Notes:            o.Notes,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
	for _, req := range o.Requirements {
		r.Requirements = append(r.Requirements, &secondary.ComponentRequirementRecord{
			OrderID:          o.ID,
			ProductID:        req.ProductID,
			QuantityPerUnit:  req.QuantityPerUnit,
			QuantityRequired: req.QuantityRequired,
			QuantityConsumed: req.QuantityConsumed,
		})
	}
	for _, wo := range o.WorkOrders {
		r.WorkOrders = append(r.WorkOrders, wo.toRecord())
	}
	return r
}

// optionalRecord converts an order that may be absent from a response.
func optionalRecord(o *orderJSON) *secondary.ManufacturingOrderRecord {
	if o == nil {
		return nil
	}
	return o.toRecord()
}

func (w workOrderJSON) toRecord() *secondary.WorkOrderRecord {
	return &secondary.WorkOrderRecord{
		ID:                       w.ID,
		OrderID:                  w.OrderID,
		Number:                   w.Number,
		Sequence:                 w.Sequence,
		Name:                     w.Name,
		WorkCenterID:             w.WorkCenterID,
		Status:                   w.Status,
		OperatorID:               w.OperatorID,
		EstimatedDurationMinutes: w.EstimatedDurationMinutes,
		ActualDurationMinutes:    w.ActualDurationMinutes,
		TotalPauseMinutes:        w.TotalPauseMinutes,
		ActualStart:              w.ActualStart,
		PauseStart:               w.PauseStart,
		CompletedAt:              w.CompletedAt,
		Notes:                    w.Notes,
		CreatedAt:                w.CreatedAt,
		UpdatedAt:                w.UpdatedAt,
	}
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
