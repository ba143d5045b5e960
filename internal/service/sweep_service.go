package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/nuvix-market/nuvix-suite/internal/domain"
	"github.com/nuvix-market/nuvix-suite/internal/observability"
	apperrors "github.com/nuvix-market/nuvix-suite/pkg/util"
)

// DefaultInactivityThreshold is how long a ticket may idle before a warning.
const DefaultInactivityThreshold = 24 * time.Hour

// ChannelHistory reads the time of the newest message in a channel. ok is
// false when the channel has no messages.
type ChannelHistory interface {
	LastMessageAt(ctx context.Context, channelID domain.Snowflake) (at time.Time, ok bool, err error)
}

// Warner posts the inactivity warning into a ticket channel.
type Warner interface {
	WarnInactive(ctx context.Context, ticket domain.Ticket, idle time.Duration) error
}

// Serializer runs a mutation alone, in submission order. worker.Queue
// satisfies it.
type Serializer interface {
	Do(ctx context.Context, name string, fn func(ctx context.Context) error) error
}

type inline struct{}

func (inline) Do(ctx context.Context, _ string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// SweepReport summarizes one sweep.
type SweepReport struct {
	Checked int
	Warned  int
	Skipped int
	Failed  int
}

// SweepService warns tickets that went quiet.
type SweepService struct {
	tickets   *TicketService
	history   ChannelHistory
	warner    Warner
	serial    Serializer
	threshold time.Duration
	now       Clock
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// SweepDependencies bundles collaborators for the sweeper.
type SweepDependencies struct {
	Tickets   *TicketService
	History   ChannelHistory
	Warner    Warner
	Serial    Serializer
	Threshold time.Duration
	Metrics   *observability.Metrics
	Logger    *zap.Logger
	Clock     Clock
}

// NewSweepService constructs the sweeper.
func NewSweepService(deps SweepDependencies) *SweepService {
	threshold := deps.Threshold
	if threshold <= 0 {
		threshold = DefaultInactivityThreshold
	}
	serial := deps.Serial
	if serial == nil {
		serial = inline{}
	}
	return &SweepService{
		tickets:   deps.Tickets,
		history:   deps.History,
		warner:    deps.Warner,
		serial:    serial,
		threshold: threshold,
		now:       clockOrNow(deps.Clock),
		metrics:   deps.Metrics,
		logger:    loggerOrNop(deps.Logger),
	}
}

// Sweep makes one pass over the active tickets. Per-ticket failures are
// logged and counted; only a failure to list tickets aborts the pass.
// History reads and warnings run on the caller's goroutine; only the
// warned flag is set through the serializer.
func (s *SweepService) Sweep(ctx context.Context) (SweepReport, error) {
	start := time.Now()
	defer func() { s.metrics.RecordSweep(time.Since(start)) }()

	var report SweepReport
	tickets, err := s.tickets.List(ctx)
	if err != nil {
		return report, err
	}

	for _, ticket := range tickets {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		report.Checked++
		warned, err := s.sweepOne(ctx, ticket)
		switch {
		case err != nil:
			report.Failed++
			s.logger.Warn("inactivity check failed",
				zap.String("channel_id", ticket.ChannelID.String()),
				zap.Error(err))
		case warned:
			report.Warned++
		default:
			report.Skipped++
		}
	}

	s.logger.Info("inactivity sweep finished",
		zap.Int("checked", report.Checked),
		zap.Int("warned", report.Warned),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed))
	return report, nil
}

func (s *SweepService) sweepOne(ctx context.Context, ticket domain.Ticket) (bool, error) {
	if ticket.IsWarned() {
		return false, nil
	}
	last, ok, err := s.history.LastMessageAt(ctx, ticket.ChannelID)
	if err != nil || !ok {
		return false, err
	}
	idle := s.now().Sub(last)
	if idle < s.threshold {
		return false, nil
	}

	// The ticket may have been closed or warned while history was read.
	current, err := s.tickets.Get(ctx, ticket.ChannelID)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return false, nil
	case err != nil:
		return false, err
	case current.IsWarned():
		return false, nil
	}

	if err := s.warner.WarnInactive(ctx, *current, idle); err != nil {
		return false, err
	}
	marked := false
	err = s.serial.Do(ctx, "mark_inactivity_warned", func(ctx context.Context) error {
		_, err := s.tickets.MarkInactivityWarned(ctx, ticket.ChannelID)
		switch {
		case err == nil:
			marked = true
		case errors.Is(err, apperrors.ErrAlreadyWarned), errors.Is(err, apperrors.ErrNotFound):
		default:
			return err
		}
		return nil
	})
	return marked, err
}
