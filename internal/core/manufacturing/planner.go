package manufacturing

import (
	"sort"

	"github.com/example/shopfloor/internal/core/inventory"
	"github.com/example/shopfloor/internal/core/workorder"
)

// Operation is a BOM routing step.
type Operation struct {
	Sequence        int
	Name            string
	WorkCenterID    string
	DurationMinutes int // per unit
	SetupMinutes    int
}

// EstimatedMinutes is the planned time for quantity units including setup.
func (o Operation) EstimatedMinutes(quantity int) int {
	return o.DurationMinutes*quantity + o.SetupMinutes
}

// Component is a BOM line.
type Component struct {
	ProductID       string
	QuantityPerUnit float64
}

// ConfirmPlanInput contains the inputs needed to plan a confirmation.
// All values are pre-fetched by the caller - no I/O in the planner.
type ConfirmPlanInput struct {
	OrderID    string
	Quantity   int
	Operations []Operation
	Components []Component
}

// PlannedWorkOrder is a work order to create on confirmation.
type PlannedWorkOrder struct {
	Sequence         int
	Number           string
	Name             string
	WorkCenterID     string
	EstimatedMinutes int
	Status           workorder.Status
}

// ConfirmPlan is the set of records created when an order is confirmed.
type ConfirmPlan struct {
	OrderID      string
	WorkOrders   []PlannedWorkOrder
	Requirements []inventory.Requirement
}

// GenerateConfirmPlan creates one PENDING work order per operation, in sequence
// order, and the component requirements for the order quantity.
func GenerateConfirmPlan(input ConfirmPlanInput) ConfirmPlan {
	ops := make([]Operation, len(input.Operations))
	copy(ops, input.Operations)
	sort.SliceStable(ops, func(i, j int) bool { return ops[i].Sequence < ops[j].Sequence })

	plan := ConfirmPlan{OrderID: input.OrderID}
	for i, op := range ops {
		seq := i + 1
		plan.WorkOrders = append(plan.WorkOrders, PlannedWorkOrder{
			Sequence:         seq,
			Number:           WorkOrderNumber(input.OrderID, seq),
			Name:             op.Name,
			WorkCenterID:     op.WorkCenterID,
			EstimatedMinutes: op.EstimatedMinutes(input.Quantity),
			Status:           workorder.InitialStatus(),
		})
	}
	plan.Requirements = Requirements(input.Components, input.Quantity)
	return plan
}

// Requirements derives per-component totals for quantity units.
func Requirements(components []Component, quantity int) []inventory.Requirement {
	reqs := make([]inventory.Requirement, 0, len(components))
	for _, c := range components {
		reqs = append(reqs, inventory.Requirement{
			ProductID: c.ProductID,
			PerUnit:   c.QuantityPerUnit,
			Total:     c.QuantityPerUnit * float64(quantity),
		})
	}
	return reqs
}

// Progress is the share of completed children as a percentage.
func Progress(children []ChildRef) float64 {
	if len(children) == 0 {
		return 0
	}
	done := 0
	for _, c := range children {
		if c.Status == workorder.StatusCompleted {
			done++
		}
	}
	return float64(done) / float64(len(children)) * 100
}
