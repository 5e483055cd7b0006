package workorder

import (
	"fmt"

	"github.com/example/shopfloor/internal/apperr"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an invalid-transition error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return apperr.InvalidTransition("%s", r.Reason)
}

// StatusTransitionContext provides context for start/pause/resume/complete/cancel guards.
type StatusTransitionContext struct {
	WorkOrderID string
	Status      Status
}

// CanStart evaluates whether a work order can be started.
// Rules:
// - Status must be PENDING (first start) or PAUSED (resume)
func CanStart(ctx StatusTransitionContext) GuardResult {
	if ctx.Status != StatusPending && ctx.Status != StatusPaused {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("cannot start work order %s: must be PENDING or PAUSED (current status: %s)", ctx.WorkOrderID, ctx.Status),
		}
	}
	return GuardResult{Allowed: true}
}

// CanPause evaluates whether a work order can be paused.
// Rules:
// - Status must be IN_PROGRESS
func CanPause(ctx StatusTransitionContext) GuardResult {
	if ctx.Status != StatusInProgress {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("cannot pause work order %s: must be IN_PROGRESS (current status: %s)", ctx.WorkOrderID, ctx.Status),
		}
	}
	return GuardResult{Allowed: true}
}

// CanResume evaluates whether a work order can be resumed.
// Rules:
// - Status must be PAUSED
func CanResume(ctx StatusTransitionContext) GuardResult {
	if ctx.Status != StatusPaused {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("cannot resume work order %s: must be PAUSED (current status: %s)", ctx.WorkOrderID, ctx.Status),
		}
	}
	return GuardResult{Allowed: true}
}

// CanComplete evaluates whether a work order can be completed.
// Rules:
// - Status must be IN_PROGRESS or PAUSED
func CanComplete(ctx StatusTransitionContext) GuardResult {
	if ctx.Status != StatusInProgress && ctx.Status != StatusPaused {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("cannot complete work order %s: must be IN_PROGRESS or PAUSED (current status: %s)", ctx.WorkOrderID, ctx.Status),
		}
	}
	return GuardResult{Allowed: true}
}

// CanCancel evaluates whether a work order can be canceled.
// Rules:
// - Status must not be terminal
func CanCancel(ctx StatusTransitionContext) GuardResult {
	if ctx.Status.IsTerminal() {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("cannot cancel work order %s: already %s", ctx.WorkOrderID, ctx.Status),
		}
	}
	return GuardResult{Allowed: true}
}
