package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aetherboard/aetherboard/internal/events"
	"github.com/aetherboard/aetherboard/internal/realtime"
)

// changePublisher pushes row changes to realtime subscribers. Rows are the
// source of truth, so a failed publish is logged and never fails the write.
type changePublisher struct {
	broker realtime.Broker
	logger *zap.Logger
}

func newChangePublisher(broker realtime.Broker, logger *zap.Logger) changePublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return changePublisher{broker: broker, logger: logger}
}

func (p changePublisher) change(ctx context.Context, topic, table string, typ realtime.ChangeType, record, old any) {
	if p.broker == nil {
		return
	}
	if err := realtime.PublishChange(ctx, p.broker, topic, table, typ, record, old); err != nil {
		p.logger.Warn("publish change failed",
			zap.String("topic", topic),
			zap.String("type", string(typ)),
			zap.Error(err))
	}
}

func (p changePublisher) broadcast(ctx context.Context, topic, event string, payload any) {
	if p.broker == nil {
		return
	}
	if err := realtime.Publish(ctx, p.broker, topic, event, payload); err != nil {
		p.logger.Warn("publish broadcast failed",
			zap.String("topic", topic),
			zap.String("event", event),
			zap.Error(err))
	}
}

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := dispatcher.Publish(ctx, event); err != nil && logger != nil {
		logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.String("subject_id", event.SubjectID), zap.Error(err))
	}
}
