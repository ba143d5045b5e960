package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nuvix-market/nuvix-suite/internal/domain"
	"github.com/nuvix-market/nuvix-suite/internal/events"
	"github.com/nuvix-market/nuvix-suite/internal/repository"
	apperrors "github.com/nuvix-market/nuvix-suite/pkg/util"
)

// Clock returns the current time. Tests swap it for a fixed clock.
type Clock func() time.Time

func clockOrNow(c Clock) Clock {
	if c == nil {
		return time.Now
	}
	return c
}

func loggerOrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

// mapNotFound turns a missing store key into a domain error.
func mapNotFound(err error, resource string, id domain.Snowflake) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound(resource, map[string]any{"id": id.String()})
	}
	return err
}

// publisher sends events after a committed mutation. Handler failures are
// logged, never returned, so a broken notification cannot undo a write.
type publisher struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        Clock
}

func (p publisher) publish(ctx context.Context, eventType events.EventType, channelID, actorID domain.Snowflake, payload any) {
	if p.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ChannelID: channelID,
		ActorID:   actorID,
		Timestamp: p.now(),
		Payload:   payload,
	}
	if err := p.dispatcher.Publish(ctx, event); err != nil {
		p.logger.Warn("event handlers failed",
			zap.String("event_type", string(eventType)),
			zap.String("channel_id", channelID.String()),
			zap.Error(err))
	}
}
