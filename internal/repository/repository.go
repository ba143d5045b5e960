package repository

import (
	"context"
	"errors"
	"sort"

	"github.com/nuvix-market/nuvix-suite/internal/domain"
)

// ErrNotFound is returned by Get and Delete when the key is absent.
var ErrNotFound = errors.New("record not found")

// TicketRepository persists the active ticket set keyed by channel id.
type TicketRepository interface {
	Get(ctx context.Context, channelID domain.Snowflake) (*domain.Ticket, error)
	Put(ctx context.Context, ticket *domain.Ticket) error
	Delete(ctx context.Context, channelID domain.Snowflake) (*domain.Ticket, error)
	List(ctx context.Context) ([]domain.Ticket, error)
}

// StatsRepository persists per-staff counters. List returns records in
// first-insertion order.
type StatsRepository interface {
	Get(ctx context.Context, staffID domain.Snowflake) (*domain.StaffStat, error)
	Put(ctx context.Context, stat *domain.StaffStat) error
	List(ctx context.Context) ([]domain.StaffStat, error)
}

// BlacklistRepository persists the ordered set of blocked user ids.
// Put and Delete report whether the set changed.
type BlacklistRepository interface {
	Contains(ctx context.Context, userID domain.Snowflake) (bool, error)
	Put(ctx context.Context, userID domain.Snowflake) (bool, error)
	Delete(ctx context.Context, userID domain.Snowflake) (bool, error)
	List(ctx context.Context) ([]domain.Snowflake, error)
}

// ReviewRepository persists the append-only review log.
type ReviewRepository interface {
	Append(ctx context.Context, review *domain.Review) error
	List(ctx context.Context) ([]domain.Review, error)
}

// Store owns the four durable collections.
type Store interface {
	Tickets() TicketRepository
	Stats() StatsRepository
	Blacklist() BlacklistRepository
	Reviews() ReviewRepository
	Ping(ctx context.Context) error
	Close() error
}

// sortTickets orders tickets oldest first, channel id breaking ties.
func sortTickets(tickets []domain.Ticket) {
	sort.SliceStable(tickets, func(i, j int) bool {
		if !tickets[i].CreatedAt.Equal(tickets[j].CreatedAt) {
			return tickets[i].CreatedAt.Before(tickets[j].CreatedAt)
		}
		return tickets[i].ChannelID < tickets[j].ChannelID
	})
}
