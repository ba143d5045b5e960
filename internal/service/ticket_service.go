package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/nuvix-market/nuvix-suite/internal/domain"
	"github.com/nuvix-market/nuvix-suite/internal/events"
	"github.com/nuvix-market/nuvix-suite/internal/observability"
	"github.com/nuvix-market/nuvix-suite/internal/repository"
	apperrors "github.com/nuvix-market/nuvix-suite/pkg/util"
)

// TicketService coordinates the ticket lifecycle. Callers serialize
// mutations through the command queue.
type TicketService struct {
	tickets   repository.TicketRepository
	blacklist repository.BlacklistRepository
	stats     *StatsService
	metrics   *observability.Metrics
	logger    *zap.Logger
	publisher
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	Tickets    repository.TicketRepository
	Blacklist  repository.BlacklistRepository
	Stats      *StatsService
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
	Clock      Clock
}

// OpenTicketInput describes a ticket being opened in a freshly created channel.
type OpenTicketInput struct {
	ChannelID  domain.Snowflake
	OpenerID   domain.Snowflake
	OpenerName string
	Category   domain.Category
}

// CloseRequest identifies who ends a ticket and where.
type CloseRequest struct {
	ChannelID   domain.Snowflake
	ChannelName string
	ActorID     domain.Snowflake
	ClosedBy    string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := loggerOrNop(deps.Logger)
	return &TicketService{
		tickets:   deps.Tickets,
		blacklist: deps.Blacklist,
		stats:     deps.Stats,
		metrics:   deps.Metrics,
		logger:    logger,
		publisher: publisher{dispatcher: deps.Dispatcher, logger: logger, now: clockOrNow(deps.Clock)},
	}
}

// CheckOpener fails with Blacklisted when userID may not open tickets.
func (s *TicketService) CheckOpener(ctx context.Context, userID domain.Snowflake) error {
	barred, err := s.blacklist.Contains(ctx, userID)
	if err != nil {
		return err
	}
	if barred {
		return apperrors.NewBlacklisted(map[string]any{"user_id": userID.String()})
	}
	return nil
}

// Open records a new unassigned ticket.
func (s *TicketService) Open(ctx context.Context, input OpenTicketInput) (*domain.Ticket, error) {
	if err := s.CheckOpener(ctx, input.OpenerID); err != nil {
		return nil, err
	}
	ticket, err := domain.NewTicket(input.ChannelID, input.OpenerID, input.Category, s.now())
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), map[string]any{"category": string(input.Category)})
	}

	_, err = s.tickets.Get(ctx, input.ChannelID)
	switch {
	case err == nil:
		return nil, apperrors.NewDuplicateChannel(map[string]any{"channel_id": input.ChannelID.String()})
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	if err := s.tickets.Put(ctx, ticket); err != nil {
		return nil, err
	}

	s.metrics.TicketOpened(string(ticket.Category))
	s.refreshActive(ctx)
	s.logger.Info("ticket opened",
		zap.String("channel_id", ticket.ChannelID.String()),
		zap.String("opener_id", ticket.OpenerID.String()),
		zap.String("category", string(ticket.Category)))
	s.publish(ctx, events.EventTicketOpened, ticket.ChannelID, ticket.OpenerID, events.TicketOpenedPayload{
		OpenerID:   ticket.OpenerID,
		OpenerName: input.OpenerName,
		Category:   ticket.Category,
	})
	return ticket, nil
}

// Get returns the ticket bound to channelID.
func (s *TicketService) Get(ctx context.Context, channelID domain.Snowflake) (*domain.Ticket, error) {
	t, err := s.tickets.Get(ctx, channelID)
	if err != nil {
		return nil, mapNotFound(err, "ticket", channelID)
	}
	return t, nil
}

// IsTicket reports whether channelID holds an active ticket.
func (s *TicketService) IsTicket(ctx context.Context, channelID domain.Snowflake) (bool, error) {
	_, err := s.tickets.Get(ctx, channelID)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// List returns the active tickets, oldest first.
func (s *TicketService) List(ctx context.Context) ([]domain.Ticket, error) {
	return s.tickets.List(ctx)
}

// Assign hands the ticket to staffID and counts a claim, also when the
// ticket already belonged to staffID.
func (s *TicketService) Assign(ctx context.Context, channelID, staffID domain.Snowflake) (*domain.Ticket, error) {
	ticket, err := s.Get(ctx, channelID)
	if err != nil {
		return nil, err
	}
	previous := ticket.AssignedToID()
	assignee := staffID
	ticket.AssignedTo = &assignee
	ticket.UpdatedAt = s.now()
	if err := s.tickets.Put(ctx, ticket); err != nil {
		return nil, err
	}
	if err := s.stats.RecordClaim(ctx, staffID); err != nil {
		return nil, err
	}

	s.metrics.TicketClaimed()
	s.publish(ctx, events.EventTicketAssigned, channelID, staffID, events.TicketAssignedPayload{
		AssigneeID:         staffID,
		PreviousAssigneeID: previous,
	})
	return ticket, nil
}

// Unassign clears the assignee. Only the assignee or an elevated member may
// unclaim someone else's ticket.
func (s *TicketService) Unassign(ctx context.Context, channelID, requesterID domain.Snowflake, elevated bool) (*domain.Ticket, error) {
	ticket, err := s.Get(ctx, channelID)
	if err != nil {
		return nil, err
	}
	previous := ticket.AssignedToID()
	if ticket.IsAssigned() && previous != requesterID && !elevated {
		return nil, apperrors.NewPermissionDenied("Only the assigned staff or Admin+ can unclaim.")
	}

	ticket.AssignedTo = nil
	ticket.UpdatedAt = s.now()
	if err := s.tickets.Put(ctx, ticket); err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventTicketUnassigned, channelID, requesterID, events.TicketAssignedPayload{
		PreviousAssigneeID: previous,
	})
	return ticket, nil
}

// Close removes the ticket and credits the assignee with a close.
func (s *TicketService) Close(ctx context.Context, req CloseRequest) (*domain.Ticket, error) {
	ticket, err := s.tickets.Delete(ctx, req.ChannelID)
	if err != nil {
		return nil, mapNotFound(err, "ticket", req.ChannelID)
	}
	if err := s.finish(ctx, req, ticket, events.EventTicketClosed); err != nil {
		return nil, err
	}
	return ticket, nil
}

// ForceDelete removes the ticket when one exists and always reports the
// deletion. The returned ticket is nil for channels without a record.
func (s *TicketService) ForceDelete(ctx context.Context, req CloseRequest) (*domain.Ticket, error) {
	ticket, err := s.tickets.Delete(ctx, req.ChannelID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if err := s.finish(ctx, req, ticket, events.EventTicketDeleted); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *TicketService) finish(ctx context.Context, req CloseRequest, ticket *domain.Ticket, eventType events.EventType) error {
	payload := events.TicketClosedPayload{ChannelName: req.ChannelName, ClosedBy: req.ClosedBy}
	reason := "closed"
	if eventType == events.EventTicketDeleted {
		reason = "deleted"
	}
	if ticket != nil {
		payload.OpenerID = ticket.OpenerID
		payload.AssigneeID = ticket.AssignedToID()
		payload.Category = ticket.Category
		if ticket.IsAssigned() {
			if err := s.stats.RecordClose(ctx, ticket.AssignedToID()); err != nil {
				return err
			}
		}
		s.metrics.TicketClosed(reason)
		s.refreshActive(ctx)
	}

	s.logger.Info("ticket "+reason,
		zap.String("channel_id", req.ChannelID.String()),
		zap.String("closed_by", req.ClosedBy),
		zap.Bool("had_record", ticket != nil))
	s.publish(ctx, eventType, req.ChannelID, req.ActorID, payload)
	return nil
}

// MarkInactivityWarned records that the inactivity warning fired. It fires at
// most once per ticket.
func (s *TicketService) MarkInactivityWarned(ctx context.Context, channelID domain.Snowflake) (*domain.Ticket, error) {
	ticket, err := s.Get(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if ticket.IsWarned() {
		return nil, apperrors.NewAlreadyWarned(map[string]any{"channel_id": channelID.String()})
	}
	now := s.now()
	ticket.WarnedInactiveAt = &now
	if err := s.tickets.Put(ctx, ticket); err != nil {
		return nil, err
	}
	s.metrics.InactivityWarned()
	s.publish(ctx, events.EventTicketInactivityWarned, channelID, 0, events.TicketInactivityWarnedPayload{WarnedAt: now})
	return ticket, nil
}

// RecordStaffMessage counts a staff message when channelID is an active
// ticket and reports whether it counted.
func (s *TicketService) RecordStaffMessage(ctx context.Context, staffID, channelID domain.Snowflake) (bool, error) {
	ok, err := s.IsTicket(ctx, channelID)
	if err != nil || !ok {
		return false, err
	}
	if err := s.stats.RecordMessage(ctx, staffID, channelID); err != nil {
		return false, err
	}
	return true, nil
}

func (s *TicketService) refreshActive(ctx context.Context) {
	if s.metrics == nil {
		return
	}
	tickets, err := s.tickets.List(ctx)
	if err != nil {
		s.logger.Warn("count active tickets", zap.Error(err))
		return
	}
	s.metrics.SetActiveTickets(len(tickets))
}
