package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/shopstack/backend/internal/domain/shared"
	"github.com/shopstack/backend/internal/infrastructure/logger"
)

// LogNotifier reports unexpected failures through the structured log at
// Error level. It stands in for an external pager or email channel; the
// ops side alerts on the "unexpected failure" message.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a notifier writing to the given logger.
func NewLogNotifier(log *zap.Logger) *LogNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogNotifier{logger: log}
}

// NotifyError implements shared.ErrorNotifier. Request metadata from the
// context is attached so an alert can be traced back to the call.
func (n *LogNotifier) NotifyError(ctx context.Context, operation string, err error) {
	fields := []zap.Field{
		zap.String("operation", operation),
		zap.Error(err),
	}
	if requestID := logger.GetRequestID(ctx); requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}
	if actorID := logger.GetActorID(ctx); actorID != "" {
		fields = append(fields, zap.String("actor_id", actorID))
	}

	n.logger.Error("unexpected failure", fields...)
}

var _ shared.ErrorNotifier = (*LogNotifier)(nil)
