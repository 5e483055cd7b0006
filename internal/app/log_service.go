package app

import (
	"context"
	"fmt"

	"github.com/example/shopfloor/internal/apperr"
	"github.com/example/shopfloor/internal/ports/primary"
	"github.com/example/shopfloor/internal/ports/secondary"
)

// EventLogServiceImpl implements the EventLogService interface.
type EventLogServiceImpl struct {
	eventRepo secondary.EventRepository
}

// NewEventLogService creates a new EventLogService with injected dependencies.
func NewEventLogService(eventRepo secondary.EventRepository) *EventLogServiceImpl {
	return &EventLogServiceImpl{
		eventRepo: eventRepo,
	}
}

// ListEvents retrieves events matching the given filters.
func (s *EventLogServiceImpl) ListEvents(ctx context.Context, filters primary.EventFilters) ([]*primary.OrderEvent, error) {
	records, err := s.eventRepo.List(ctx, secondary.EventFilters{
		EntityType: filters.EntityType,
		EntityID:   filters.EntityID,
		ActorID:    filters.ActorID,
		Action:     filters.Action,
		Limit:      filters.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	events := make([]*primary.OrderEvent, len(records))
	for i, r := range records {
		events[i] = s.recordToEvent(r)
	}
	return events, nil
}

// GetEvent retrieves a single event by ID.
func (s *EventLogServiceImpl) GetEvent(ctx context.Context, id string) (*primary.OrderEvent, error) {
	record, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.recordToEvent(record), nil
}

// PruneEvents deletes events older than the specified number of days.
func (s *EventLogServiceImpl) PruneEvents(ctx context.Context, olderThanDays int) (int, error) {
	if olderThanDays <= 0 {
		return 0, apperr.Validation("retention must be at least one day (got %d)", olderThanDays)
	}
	return s.eventRepo.PruneOlderThan(ctx, olderThanDays)
}

// Helper methods

func (s *EventLogServiceImpl) recordToEvent(r *secondary.OrderEventRecord) *primary.OrderEvent {
	return &primary.OrderEvent{
		ID:         r.ID,
		Timestamp:  r.Timestamp,
		ActorID:    r.ActorID,
		EntityType: r.EntityType,
		EntityID:   r.EntityID,
		Action:     r.Action,
		FromStatus: r.FromStatus,
		ToStatus:   r.ToStatus,
	}
}

// Ensure EventLogServiceImpl implements the interface
var _ primary.EventLogService = (*EventLogServiceImpl)(nil)
