package workorder

import (
	"fmt"
	"time"
)

// Display is a worked duration as shown to an operator.
// Live is true while the clock is actively running.
type Display struct {
	Minutes int
	Seconds int
	Live    bool
}

// String formats the display as HH:MM:SS.
func (d Display) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", d.Minutes/60, d.Minutes%60, d.Seconds)
}

// Elapsed computes the worked duration of a work order at now.
//
// Rules:
//   - no actual start: 00:00:00 whatever the status
//   - IN_PROGRESS: persisted + floor(session) - pauses, where the session runs from
//     the actual start to now, or to the pause marker when one is present
//   - PAUSED: same formula frozen at the pause instant, zero seconds
//   - anything else: persisted minutes, zero seconds
//
// Elapsed performs no I/O and is safe to call on every display tick.
func Elapsed(snap Snapshot, now time.Time) Display {
	if snap.ActualStart == nil {
		return Display{}
	}

	st, err := Decode(snap)
	if err != nil {
		return Display{Minutes: nonNegative(snap.ActualDurationMinutes)}
	}

	switch v := st.(type) {
	case Running:
		end, live := now, true
		if v.PauseMarker != nil {
			end, live = *v.PauseMarker, false
		}
		session := clampDuration(end.Sub(v.StartedAt))
		return Display{
			Minutes: nonNegative(snap.ActualDurationMinutes + wholeMinutes(session) - snap.TotalPauseMinutes),
			Seconds: int((session % time.Minute) / time.Second),
			Live:    live,
		}
	case Paused:
		session := clampDuration(v.PausedAt.Sub(v.StartedAt))
		return Display{Minutes: nonNegative(snap.ActualDurationMinutes + wholeMinutes(session) - snap.TotalPauseMinutes)}
	default:
		return Display{Minutes: nonNegative(snap.ActualDurationMinutes)}
	}
}

// FinalMinutes is the duration persisted when a session ends at end.
func FinalMinutes(snap Snapshot, start, end time.Time) int {
	return nonNegative(snap.ActualDurationMinutes + wholeMinutes(clampDuration(end.Sub(start))) - snap.TotalPauseMinutes)
}

// FormatMinutes formats a whole number of minutes as HH:MM:00.
func FormatMinutes(minutes int) string {
	return Display{Minutes: nonNegative(minutes)}.String()
}

// Efficiency returns estimated/actual as a percentage, or 0 when nothing was recorded.
func Efficiency(estimatedMinutes, actualMinutes int) float64 {
	if actualMinutes <= 0 {
		return 0
	}
	return float64(estimatedMinutes) / float64(actualMinutes) * 100
}

func wholeMinutes(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d / time.Minute)
}

func clampDuration(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
