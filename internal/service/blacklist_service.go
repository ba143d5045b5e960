package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/nuvix-market/nuvix-suite/internal/domain"
	"github.com/nuvix-market/nuvix-suite/internal/events"
	"github.com/nuvix-market/nuvix-suite/internal/repository"
)

// BlacklistService manages users barred from opening tickets.
type BlacklistService struct {
	blacklist repository.BlacklistRepository
	publisher
}

// BlacklistDependencies bundles collaborators for the blacklist service.
type BlacklistDependencies struct {
	Blacklist  repository.BlacklistRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      Clock
}

// NewBlacklistService constructs the service.
func NewBlacklistService(deps BlacklistDependencies) *BlacklistService {
	return &BlacklistService{
		blacklist: deps.Blacklist,
		publisher: publisher{dispatcher: deps.Dispatcher, logger: loggerOrNop(deps.Logger), now: clockOrNow(deps.Clock)},
	}
}

// Add bars userID. Adding an existing entry is a no-op that returns false.
func (s *BlacklistService) Add(ctx context.Context, userID, actorID domain.Snowflake) (bool, error) {
	added, err := s.blacklist.Put(ctx, userID)
	if err != nil || !added {
		return added, err
	}
	s.publish(ctx, events.EventBlacklistChanged, 0, actorID, events.BlacklistChangedPayload{UserID: userID, Added: true})
	return true, nil
}

// Remove lifts the bar on userID. Removing a missing entry returns false.
func (s *BlacklistService) Remove(ctx context.Context, userID, actorID domain.Snowflake) (bool, error) {
	removed, err := s.blacklist.Delete(ctx, userID)
	if err != nil || !removed {
		return removed, err
	}
	s.publish(ctx, events.EventBlacklistChanged, 0, actorID, events.BlacklistChangedPayload{UserID: userID, Added: false})
	return true, nil
}

// Contains reports whether userID is barred.
func (s *BlacklistService) Contains(ctx context.Context, userID domain.Snowflake) (bool, error) {
	return s.blacklist.Contains(ctx, userID)
}

// List returns barred users in insertion order.
func (s *BlacklistService) List(ctx context.Context) ([]domain.Snowflake, error) {
	return s.blacklist.List(ctx)
}
