package manufacturing

import "github.com/example/shopfloor/internal/core/workorder"

// CascadeAction is what the client does with the parent order after a child completes.
type CascadeAction int

const (
	// CascadeNone leaves the parent alone.
	CascadeNone CascadeAction = iota
	// CascadeInterimInProgress shows the parent as IN_PROGRESS locally without a mutation.
	CascadeInterimInProgress
	// CascadeCompleteOrder issues the parent's complete mutation.
	CascadeCompleteOrder
)

func (a CascadeAction) String() string {
	switch a {
	case CascadeInterimInProgress:
		return "interim_in_progress"
	case CascadeCompleteOrder:
		return "complete_order"
	default:
		return "none"
	}
}

// AllChildrenTerminal reports whether every child is COMPLETED or CANCELED.
// An order with no children is vacuously terminal.
func AllChildrenTerminal(children []ChildRef) bool {
	for _, c := range children {
		if c.Status != workorder.StatusCompleted && c.Status != workorder.StatusCanceled {
			return false
		}
	}
	return true
}

// EvaluateCascade decides the parent transition from a freshly fetched parent.
// Rules:
// - any open child: no transition
// - all children terminal and parent CONFIRMED: interim IN_PROGRESS
// - all children terminal and parent IN_PROGRESS: complete the order
// - any other parent status: no transition
func EvaluateCascade(parent Status, children []ChildRef) CascadeAction {
	if !AllChildrenTerminal(children) {
		return CascadeNone
	}
	switch parent {
	case StatusConfirmed:
		return CascadeInterimInProgress
	case StatusInProgress:
		return CascadeCompleteOrder
	}
	return CascadeNone
}
