package manufacturing

import (
	"fmt"
	"strings"

	"github.com/example/shopfloor/internal/apperr"
	"github.com/example/shopfloor/internal/core/inventory"
	"github.com/example/shopfloor/internal/core/workorder"
)

// GuardResult represents the outcome of a guard evaluation.
// Kind defaults to an invalid transition when empty.
type GuardResult struct {
	Allowed bool
	Reason  string
	Kind    apperr.Kind
}

// Error converts the guard result to a typed error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	kind := r.Kind
	if kind == "" {
		kind = apperr.KindInvalidTransition
	}
	return apperr.FromKind(kind, r.Reason)
}

// ChildRef identifies a work order owned by a manufacturing order.
type ChildRef struct {
	ID     string
	Status workorder.Status
}

// ConfirmContext provides context for the confirm guard.
type ConfirmContext struct {
	OrderID        string
	Status         Status
	OperationCount int
	Shortages      []inventory.Shortage
	Force          bool
}

// CompleteContext provides context for the complete guard.
type CompleteContext struct {
	OrderID  string
	Status   Status
	Children []ChildRef
}

// StatusContext provides context for guards that only look at the order status.
type StatusContext struct {
	OrderID string
	Status  Status
}

// CanConfirm evaluates whether a manufacturing order can be confirmed.
// Rules:
// - Status must be DRAFT
// - The BOM must define at least one operation
// - Every component must be in stock unless Force is set
func CanConfirm(ctx ConfirmContext) GuardResult {
	if ctx.Status != StatusDraft {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("cannot confirm manufacturing order %s: must be DRAFT (current status: %s)", ctx.OrderID, ctx.Status),
		}
	}
	if ctx.OperationCount == 0 {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("cannot confirm manufacturing order %s: bill of materials has no operations", ctx.OrderID),
			Kind:    apperr.KindValidation,
		}
	}
	if len(ctx.Shortages) > 0 && !ctx.Force {
		parts := make([]string, 0, len(ctx.Shortages))
		for _, s := range ctx.Shortages {
			parts = append(parts, s.String())
		}
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("cannot confirm manufacturing order %s: insufficient components (%s)", ctx.OrderID, strings.Join(parts, "; ")),
			Kind:    apperr.KindValidation,
		}
	}
	return GuardResult{Allowed: true}
}

// CanCompleteOrder evaluates whether a manufacturing order can be completed.
// Rules:
// - Status must be IN_PROGRESS
// - Every work order must be COMPLETED or CANCELED
func CanCompleteOrder(ctx CompleteContext) GuardResult {
	if ctx.Status != StatusInProgress {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("cannot complete manufacturing order %s: must be IN_PROGRESS (current status: %s)", ctx.OrderID, ctx.Status),
		}
	}
	if open := OpenWorkOrders(ctx.Children); len(open) > 0 {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("cannot complete manufacturing order %s: %d work order(s) still open (%s)", ctx.OrderID, len(open), strings.Join(open, ", ")),
			Kind:    apperr.KindValidation,
		}
	}
	return GuardResult{Allowed: true}
}

// CanCancel evaluates whether a manufacturing order can be canceled.
// Rules:
// - Status must not be COMPLETED or CANCELED
func CanCancel(ctx StatusContext) GuardResult {
	if ctx.Status.IsTerminal() {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("cannot cancel manufacturing order %s: already %s", ctx.OrderID, ctx.Status),
		}
	}
	return GuardResult{Allowed: true}
}

// CanStartWork evaluates whether work orders of a manufacturing order may be started.
// Rules:
// - Status must be CONFIRMED or IN_PROGRESS
func CanStartWork(ctx StatusContext) GuardResult {
	if ctx.Status != StatusConfirmed && ctx.Status != StatusInProgress {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("cannot start work on manufacturing order %s: must be CONFIRMED or IN_PROGRESS (current status: %s)", ctx.OrderID, ctx.Status),
		}
	}
	return GuardResult{Allowed: true}
}

// OpenWorkOrders returns the ids of children that still block completion.
func OpenWorkOrders(children []ChildRef) []string {
	var open []string
	for _, c := range children {
		if c.Status.IsOpen() {
			open = append(open, c.ID)
		}
	}
	return open
}
