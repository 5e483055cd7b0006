package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorIs(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"invalid transition matches sentinel", InvalidTransition("cannot start %s", "WO-001"), ErrInvalidTransition, true},
		{"wrapped validation matches sentinel", fmt.Errorf("complete MO-001: %w", Validation("open work orders")), ErrValidation, true},
		{"not found does not match service", NotFound("work order", "WO-009"), ErrService, false},
		{"service wraps cause", Service("HTTP 502", errors.New("bad gateway")), ErrService, true},
		{"plain error matches nothing", errors.New("boom"), ErrNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.want {
				t.Errorf("errors.Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	if got := NotFound("work order", "WO-009").Error(); got != "work order WO-009 not found" {
		t.Errorf("NotFound message = %q", got)
	}
	if got := Service("request failed", errors.New("connection refused")).Error(); got != "request failed: connection refused" {
		t.Errorf("Service message = %q", got)
	}
	if got := ErrValidation.Error(); got != "validation" {
		t.Errorf("sentinel message = %q", got)
	}
}

func TestKindRoundTrip(t *testing.T) {
	err := InvalidTransition("can only pause IN_PROGRESS work orders (current status: PAUSED)")
	rebuilt := FromKind(KindOf(err), err.Error())
	if !errors.Is(rebuilt, ErrInvalidTransition) {
		t.Fatalf("rebuilt error lost its kind: %v", rebuilt)
	}
	if rebuilt.Error() != err.Error() {
		t.Errorf("message = %q, want %q", rebuilt.Error(), err.Error())
	}
	if !errors.Is(FromKind("teapot", "x"), ErrService) {
		t.Error("unknown kinds should map to service errors")
	}
}
