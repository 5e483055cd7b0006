package workorder

import (
	"fmt"
	"time"
)

// Snapshot is the loosely typed shape of a work order as stored or sent over the wire.
// Nil pointers mean the field is unset.
type Snapshot struct {
	Status                Status
	ActualStart           *time.Time
	PauseStart            *time.Time
	CompletedAt           *time.Time
	TotalPauseMinutes     int
	ActualDurationMinutes int
	OperatorID            string
}

// State is the execution state of a work order as a tagged variant.
// Each variant carries only the fields that are valid for it.
type State interface {
	Status() Status
	isState()
}

// Pending has not been started.
type Pending struct{}

// Running is IN_PROGRESS. PauseMarker is only set when the record still carries a
// pause timestamp while already reported as running (a resume race); the elapsed
// time then freezes at the marker.
type Running struct {
	StartedAt   time.Time
	PauseMarker *time.Time
}

// Paused is PAUSED mid-session.
type Paused struct {
	StartedAt time.Time
	PausedAt  time.Time
}

// Completed is terminal. StartedAt may be nil for records completed by a backend
// that never stamped a start.
type Completed struct {
	StartedAt   *time.Time
	CompletedAt *time.Time
}

// Canceled is terminal. StartedAt is nil when canceled before starting.
type Canceled struct {
	StartedAt *time.Time
}

func (Pending) Status() Status   { return StatusPending }
func (Running) Status() Status   { return StatusInProgress }
func (Paused) Status() Status    { return StatusPaused }
func (Completed) Status() Status { return StatusCompleted }
func (Canceled) Status() Status  { return StatusCanceled }

func (Pending) isState()   {}
func (Running) isState()   {}
func (Paused) isState()    {}
func (Completed) isState() {}
func (Canceled) isState()  {}

// Decode converts a snapshot into its tagged state.
// Contradictory records (running or paused without a start, paused without a
// pause marker) are rejected.
func Decode(s Snapshot) (State, error) {
	switch s.Status {
	case StatusPending:
		return Pending{}, nil
	case StatusInProgress:
		if s.ActualStart == nil {
			return nil, fmt.Errorf("work order is %s but has no actual start time", s.Status)
		}
		return Running{StartedAt: *s.ActualStart, PauseMarker: s.PauseStart}, nil
	case StatusPaused:
		if s.ActualStart == nil {
			return nil, fmt.Errorf("work order is %s but has no actual start time", s.Status)
		}
		if s.PauseStart == nil {
			return nil, fmt.Errorf("work order is %s but has no pause start time", s.Status)
		}
		return Paused{StartedAt: *s.ActualStart, PausedAt: *s.PauseStart}, nil
	case StatusCompleted:
		return Completed{StartedAt: s.ActualStart, CompletedAt: s.CompletedAt}, nil
	case StatusCanceled:
		return Canceled{StartedAt: s.ActualStart}, nil
	}
	return nil, fmt.Errorf("unknown work order status %q", s.Status)
}

// Encode writes the state-bearing fields of st into a copy of base.
// Counters and the operator are carried over from base unchanged.
func Encode(st State, base Snapshot) Snapshot {
	out := base
	out.Status = st.Status()
	out.PauseStart = nil
	switch v := st.(type) {
	case Pending:
		out.ActualStart = nil
		out.CompletedAt = nil
	case Running:
		out.ActualStart = timePtr(v.StartedAt)
		out.PauseStart = v.PauseMarker
		out.CompletedAt = nil
	case Paused:
		out.ActualStart = timePtr(v.StartedAt)
		out.PauseStart = timePtr(v.PausedAt)
		out.CompletedAt = nil
	case Completed:
		out.ActualStart = v.StartedAt
		out.CompletedAt = v.CompletedAt
	case Canceled:
		out.ActualStart = v.StartedAt
	}
	return out
}

func timePtr(t time.Time) *time.Time {
	return &t
}
