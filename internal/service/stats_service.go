package service

import (
	"context"
	"errors"
	"sort"

	"go.uber.org/zap"

	"github.com/nuvix-market/nuvix-suite/internal/domain"
	"github.com/nuvix-market/nuvix-suite/internal/repository"
)

// DefaultLeaderboardSize is the number of rows the leaderboard shows.
const DefaultLeaderboardSize = 10

// StatsService maintains per-staff counters.
type StatsService struct {
	stats  repository.StatsRepository
	logger *zap.Logger
}

// NewStatsService constructs the service.
func NewStatsService(stats repository.StatsRepository, logger *zap.Logger) *StatsService {
	return &StatsService{stats: stats, logger: loggerOrNop(logger)}
}

// Get returns the stat for staffID, zero-valued when none exists yet.
func (s *StatsService) Get(ctx context.Context, staffID domain.Snowflake) (*domain.StaffStat, error) {
	stat, err := s.stats.Get(ctx, staffID)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.NewStaffStat(staffID), nil
	}
	return stat, err
}

func (s *StatsService) update(ctx context.Context, staffID domain.Snowflake, fn func(*domain.StaffStat)) error {
	stat, err := s.Get(ctx, staffID)
	if err != nil {
		return err
	}
	fn(stat)
	return s.stats.Put(ctx, stat)
}

// RecordClaim increments claims for staffID.
func (s *StatsService) RecordClaim(ctx context.Context, staffID domain.Snowflake) error {
	return s.update(ctx, staffID, func(st *domain.StaffStat) { st.Claims++ })
}

// RecordClose increments closed for staffID.
func (s *StatsService) RecordClose(ctx context.Context, staffID domain.Snowflake) error {
	return s.update(ctx, staffID, func(st *domain.StaffStat) { st.Closed++ })
}

// RecordMessage counts one message by staffID in channelID.
func (s *StatsService) RecordMessage(ctx context.Context, staffID, channelID domain.Snowflake) error {
	return s.update(ctx, staffID, func(st *domain.StaffStat) { st.MessagesByTicket[channelID]++ })
}

// ActiveTicketCount returns how many tickets staffID posted at least
// domain.ActiveParticipationThreshold messages in.
func (s *StatsService) ActiveTicketCount(ctx context.Context, staffID domain.Snowflake) (int, error) {
	stat, err := s.Get(ctx, staffID)
	if err != nil {
		return 0, err
	}
	return stat.ActiveTickets(), nil
}

// Leaderboard ranks staff by closed then claims, both descending. Ties keep
// the order in which staff first appeared.
func (s *StatsService) Leaderboard(ctx context.Context, topN int) ([]domain.StaffStat, error) {
	if topN <= 0 {
		topN = DefaultLeaderboardSize
	}
	all, err := s.stats.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Closed != all[j].Closed {
			return all[i].Closed > all[j].Closed
		}
		return all[i].Claims > all[j].Claims
	})
	if len(all) > topN {
		all = all[:topN]
	}
	return all, nil
}
