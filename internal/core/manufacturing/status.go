// Package manufacturing contains the pure business logic for manufacturing orders.
// This is part of the Functional Core - no I/O, only pure functions.
package manufacturing

import "fmt"

// Status is the wire status of a manufacturing order.
type Status string

const (
	StatusDraft      Status = "DRAFT"
	StatusConfirmed  Status = "CONFIRMED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCanceled   Status = "CANCELED"
)

// legacyDone is emitted by older order backends for a completed order.
const legacyDone = "DONE"

// ParseStatus validates a wire status string. DONE decodes to COMPLETED.
func ParseStatus(s string) (Status, error) {
	if s == legacyDone {
		return StatusCompleted, nil
	}
	switch st := Status(s); st {
	case StatusDraft, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCanceled:
		return st, nil
	}
	return "", fmt.Errorf("unknown manufacturing order status %q", s)
}

// IsTerminal reports whether the order can no longer change.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCanceled
}

func (s Status) String() string { return string(s) }

// Priority orders the shop floor queue.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// ParsePriority validates a priority, defaulting empty input to MEDIUM.
func ParsePriority(s string) (Priority, error) {
	switch p := Priority(s); p {
	case "":
		return PriorityMedium, nil
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	}
	return "", fmt.Errorf("unknown priority %q (want LOW, MEDIUM or HIGH)", s)
}
