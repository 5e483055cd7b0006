package workorder

import "time"

// The Apply* functions are the authoritative transitions used by the order backend.
// Each checks its guard, then returns the new snapshot. The caller passes the
// current time to enable testing.

// ApplyStart starts a PENDING work order or resumes a PAUSED one.
// The operator is bound only if none is set yet.
func ApplyStart(workOrderID string, snap Snapshot, operatorID string, now time.Time) (Snapshot, error) {
	if err := CanStart(StatusTransitionContext{WorkOrderID: workOrderID, Status: snap.Status}).Error(); err != nil {
		return snap, err
	}

	var out Snapshot
	if snap.Status == StatusPaused {
		resumed, err := ApplyResume(workOrderID, snap, now)
		if err != nil {
			return snap, err
		}
		out = resumed
	} else {
		out = Encode(Running{StartedAt: now}, snap)
	}

	if out.OperatorID == "" {
		out.OperatorID = operatorID
	}
	return out, nil
}

// ApplyPause pauses an IN_PROGRESS work order at now.
func ApplyPause(workOrderID string, snap Snapshot, now time.Time) (Snapshot, error) {
	if err := CanPause(StatusTransitionContext{WorkOrderID: workOrderID, Status: snap.Status}).Error(); err != nil {
		return snap, err
	}
	st, err := Decode(snap)
	if err != nil {
		return snap, err
	}
	running := st.(Running)
	return Encode(Paused{StartedAt: running.StartedAt, PausedAt: now}, snap), nil
}

// ApplyResume resumes a PAUSED work order. The whole minutes spent paused are
// added to the pause total; the original start time is kept.
func ApplyResume(workOrderID string, snap Snapshot, now time.Time) (Snapshot, error) {
	if err := CanResume(StatusTransitionContext{WorkOrderID: workOrderID, Status: snap.Status}).Error(); err != nil {
		return snap, err
	}
	st, err := Decode(snap)
	if err != nil {
		return snap, err
	}
	paused := st.(Paused)

	out := Encode(Running{StartedAt: paused.StartedAt}, snap)
	out.TotalPauseMinutes += wholeMinutes(now.Sub(paused.PausedAt))
	return out, nil
}

// ApplyComplete completes an IN_PROGRESS or PAUSED work order and finalizes its
// duration. A positive overrideMinutes is persisted verbatim.
func ApplyComplete(workOrderID string, snap Snapshot, overrideMinutes int, now time.Time) (Snapshot, error) {
	if err := CanComplete(StatusTransitionContext{WorkOrderID: workOrderID, Status: snap.Status}).Error(); err != nil {
		return snap, err
	}
	st, err := Decode(snap)
	if err != nil {
		return snap, err
	}

	var start time.Time
	end := now
	switch v := st.(type) {
	case Running:
		start = v.StartedAt
		if v.PauseMarker != nil {
			end = *v.PauseMarker
		}
	case Paused:
		start = v.StartedAt
		end = v.PausedAt
	}

	out := Encode(Completed{StartedAt: timePtr(start), CompletedAt: timePtr(now)}, snap)
	if overrideMinutes > 0 {
		out.ActualDurationMinutes = overrideMinutes
	} else {
		out.ActualDurationMinutes = FinalMinutes(snap, start, end)
	}
	return out, nil
}

// ApplyCancel cancels a non-terminal work order.
func ApplyCancel(workOrderID string, snap Snapshot) (Snapshot, error) {
	if err := CanCancel(StatusTransitionContext{WorkOrderID: workOrderID, Status: snap.Status}).Error(); err != nil {
		return snap, err
	}
	return Encode(Canceled{StartedAt: snap.ActualStart}, snap), nil
}
