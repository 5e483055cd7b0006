package app

import (
	"context"

	"go.uber.org/zap"

	"github.com/example/shopfloor/internal/ports/secondary"
)

// journal writes best-effort audit entries. A failed write is logged and
// never fails the operation that caused it.
type journal struct {
	writer secondary.EventWriter
	logger *zap.Logger
}

func (j journal) created(ctx context.Context, entityType, entityID string) {
	if j.writer == nil {
		return
	}
	if err := j.writer.LogCreate(ctx, entityType, entityID); err != nil {
		j.logger.Warn("failed to journal create", zap.String("entity", entityType), zap.String("id", entityID), zap.Error(err))
	}
}

func (j journal) transition(ctx context.Context, entityType, entityID, action, from, to string) {
	if j.writer == nil {
		return
	}
	if err := j.writer.LogTransition(ctx, entityType, entityID, action, from, to); err != nil {
		j.logger.Warn("failed to journal transition",
			zap.String("entity", entityType), zap.String("id", entityID), zap.String("action", action), zap.Error(err))
	}
}
