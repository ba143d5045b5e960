package repository

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/nuvix-market/nuvix-suite/internal/domain"
)

// FileStore keeps the whole state in memory and rewrites every collection
// file after each mutation. A failed write rolls the mutation back.
type FileStore struct {
	mu     sync.RWMutex
	dir    string
	state  *Snapshot
	logger *zap.Logger
}

// NewFileStore loads the snapshot in dir.
func NewFileStore(dir string, logger *zap.Logger) (*FileStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	snap, err := LoadSnapshot(dir)
	if err != nil {
		return nil, fmt.Errorf("load store %s: %w", dir, err)
	}
	logger.Info("file store loaded",
		zap.String("dir", dir),
		zap.Int("tickets", len(snap.Tickets)),
		zap.Int("staff", len(snap.Stats)),
		zap.Int("blacklisted", len(snap.Blacklist)),
		zap.Int("reviews", len(snap.Reviews)),
	)
	return &FileStore{dir: dir, state: snap, logger: logger}, nil
}

func (s *FileStore) Tickets() TicketRepository      { return fileTickets{s} }
func (s *FileStore) Stats() StatsRepository         { return fileStats{s} }
func (s *FileStore) Blacklist() BlacklistRepository { return fileBlacklist{s} }
func (s *FileStore) Reviews() ReviewRepository      { return fileReviews{s} }
func (s *FileStore) Ping(ctx context.Context) error { return ctx.Err() }
func (s *FileStore) Close() error                   { return nil }

// Snapshot returns a deep copy of the current state.
func (s *FileStore) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// mutate applies fn to a copy of the state and commits it once flushed.
func (s *FileStore) mutate(ctx context.Context, fn func(next *Snapshot) (bool, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.Clone()
	changed, err := fn(next)
	if err != nil || !changed {
		return err
	}
	if err := WriteSnapshot(s.dir, next); err != nil {
		s.logger.Error("store flush failed", zap.String("dir", s.dir), zap.Error(err))
		return err
	}
	s.state = next
	return nil
}

type fileTickets struct{ s *FileStore }

func (r fileTickets) Get(ctx context.Context, channelID domain.Snowflake) (*domain.Ticket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.state.Tickets[channelID]
	if !ok {
		return nil, ErrNotFound
	}
	return t.Clone(), nil
}

func (r fileTickets) Put(ctx context.Context, ticket *domain.Ticket) error {
	if err := ticket.Validate(); err != nil {
		return err
	}
	return r.s.mutate(ctx, func(next *Snapshot) (bool, error) {
		next.Tickets[ticket.ChannelID] = ticket.Clone()
		return true, nil
	})
}

func (r fileTickets) Delete(ctx context.Context, channelID domain.Snowflake) (*domain.Ticket, error) {
	var removed *domain.Ticket
	err := r.s.mutate(ctx, func(next *Snapshot) (bool, error) {
		t, ok := next.Tickets[channelID]
		if !ok {
			return false, ErrNotFound
		}
		removed = t
		delete(next.Tickets, channelID)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

func (r fileTickets) List(ctx context.Context) ([]domain.Ticket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	out := make([]domain.Ticket, 0, len(r.s.state.Tickets))
	for _, t := range r.s.state.Tickets {
		out = append(out, *t.Clone())
	}
	r.s.mu.RUnlock()
	sortTickets(out)
	return out, nil
}

type fileStats struct{ s *FileStore }

func (r fileStats) Get(ctx context.Context, staffID domain.Snowflake) (*domain.StaffStat, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, stat := range r.s.state.Stats {
		if stat.StaffID == staffID {
			return stat.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

func (r fileStats) Put(ctx context.Context, stat *domain.StaffStat) error {
	if err := stat.Validate(); err != nil {
		return err
	}
	return r.s.mutate(ctx, func(next *Snapshot) (bool, error) {
		for i, existing := range next.Stats {
			if existing.StaffID == stat.StaffID {
				next.Stats[i] = stat.Clone()
				return true, nil
			}
		}
		next.Stats = append(next.Stats, stat.Clone())
		return true, nil
	})
}

func (r fileStats) List(ctx context.Context) ([]domain.StaffStat, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.StaffStat, 0, len(r.s.state.Stats))
	for _, stat := range r.s.state.Stats {
		out = append(out, *stat.Clone())
	}
	return out, nil
}

type fileBlacklist struct{ s *FileStore }

func (r fileBlacklist) Contains(ctx context.Context, userID domain.Snowflake) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return indexOf(r.s.state.Blacklist, userID) >= 0, nil
}

func (r fileBlacklist) Put(ctx context.Context, userID domain.Snowflake) (bool, error) {
	added := false
	err := r.s.mutate(ctx, func(next *Snapshot) (bool, error) {
		if indexOf(next.Blacklist, userID) >= 0 {
			return false, nil
		}
		next.Blacklist = append(next.Blacklist, userID)
		added = true
		return true, nil
	})
	return added, err
}

func (r fileBlacklist) Delete(ctx context.Context, userID domain.Snowflake) (bool, error) {
	removed := false
	err := r.s.mutate(ctx, func(next *Snapshot) (bool, error) {
		i := indexOf(next.Blacklist, userID)
		if i < 0 {
			return false, nil
		}
		next.Blacklist = append(next.Blacklist[:i], next.Blacklist[i+1:]...)
		removed = true
		return true, nil
	})
	return removed, err
}

func (r fileBlacklist) List(ctx context.Context) ([]domain.Snowflake, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return append([]domain.Snowflake{}, r.s.state.Blacklist...), nil
}

type fileReviews struct{ s *FileStore }

func (r fileReviews) Append(ctx context.Context, review *domain.Review) error {
	if err := review.Validate(); err != nil {
		return err
	}
	return r.s.mutate(ctx, func(next *Snapshot) (bool, error) {
		next.Reviews = append(next.Reviews, *review)
		return true, nil
	})
}

func (r fileReviews) List(ctx context.Context) ([]domain.Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return append([]domain.Review{}, r.s.state.Reviews...), nil
}

func indexOf(ids []domain.Snowflake, id domain.Snowflake) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
