package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jjudge-oj/accounts/types"
)

// Publisher sends a payload to a named channel. *mq.MQ satisfies it.
type Publisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

// UserEventPublisher emits user lifecycle events. Delivery is best-effort:
// failures are logged and never reach the caller. A nil *UserEventPublisher
// publishes nothing.
type UserEventPublisher struct {
	publisher Publisher
	channel   string
	logger    *slog.Logger
	now       func() time.Time
}

func NewUserEventPublisher(publisher Publisher, channel string, logger *slog.Logger) *UserEventPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserEventPublisher{
		publisher: publisher,
		channel:   channel,
		logger:    logger,
		now:       time.Now,
	}
}

func (p *UserEventPublisher) publish(ctx context.Context, eventType types.UserEventType, userID string) {
	if p == nil || p.publisher == nil {
		return
	}

	event := types.UserEvent{
		Type:       eventType,
		UserID:     userID,
		OccurredAt: p.now().UTC(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		p.logger.ErrorContext(ctx, "encode user event", "type", eventType, "error", err)
		return
	}

	attrs := map[string]string{"type": string(eventType)}
	if _, err := p.publisher.Publish(context.WithoutCancel(ctx), p.channel, data, attrs); err != nil {
		p.logger.ErrorContext(ctx, "publish user event", "type", eventType, "user_id", userID, "error", err)
	}
}
