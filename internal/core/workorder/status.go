// Package workorder contains the pure business logic for work order execution.
// This is part of the Functional Core - no I/O, only pure functions.
package workorder

import "fmt"

// Status is the wire status of a work order.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusPaused     Status = "PAUSED"
	StatusCompleted  Status = "COMPLETED"
	StatusCanceled   Status = "CANCELED"
)

// ParseStatus validates a wire status string.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusInProgress, StatusPaused, StatusCompleted, StatusCanceled:
		return st, nil
	}
	return "", fmt.Errorf("unknown work order status %q", s)
}

// IsTerminal reports whether no transition can leave the status.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCanceled
}

// IsOpen reports whether the status blocks completion of the parent order.
func (s Status) IsOpen() bool {
	return s == StatusPending || s == StatusInProgress || s == StatusPaused
}

func (s Status) String() string { return string(s) }

// InitialStatus returns the status of a freshly generated work order.
func InitialStatus() Status {
	return StatusPending
}
