package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nuvix-market/nuvix-suite/internal/domain"
	"github.com/nuvix-market/nuvix-suite/internal/events"
	"github.com/nuvix-market/nuvix-suite/internal/observability"
)

// NoticeTarget names the configured channel a notice goes to.
type NoticeTarget string

const (
	TargetLogs    NoticeTarget = "logs"
	TargetReviews NoticeTarget = "reviews"
)

// Embed colors.
const (
	ColorGreen   = 0x2ecc71
	ColorRed     = 0xe74c3c
	ColorDarkRed = 0x992d22
	ColorGold    = 0xf1c40f
	ColorOrange  = 0xe67e22
	ColorBlurple = 0x5865f2
)

// NoticeField is one titled value of a notice.
type NoticeField struct {
	Name   string
	Value  string
	Inline bool
}

// Notice is a platform-neutral rich message.
type Notice struct {
	Title       string
	Description string
	Color       int
	Fields      []NoticeField
	Timestamp   time.Time
}

// Notifier delivers notices. Implementations treat an unconfigured target
// as a no-op.
type Notifier interface {
	Notify(ctx context.Context, target NoticeTarget, notice Notice) error
}

// NotificationService turns domain events into channel notices and audit
// log lines.
type NotificationService struct {
	dispatcher events.Dispatcher
	notifier   Notifier
	audit      *zap.Logger
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NotificationDependencies bundles collaborators for the notification service.
type NotificationDependencies struct {
	Dispatcher events.Dispatcher
	Notifier   Notifier
	Audit      *zap.Logger
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	audit := deps.Audit
	if audit == nil {
		audit = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: deps.Dispatcher,
		notifier:   deps.Notifier,
		audit:      audit,
		metrics:    deps.Metrics,
		logger:     loggerOrNop(deps.Logger),
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	events.SubscribeAll(n.dispatcher, n.handleAudit)
	n.dispatcher.Subscribe(events.EventTicketOpened, n.handleTicketOpened)
	n.dispatcher.Subscribe(events.EventTicketClosed, n.handleTicketClosed)
	n.dispatcher.Subscribe(events.EventTicketDeleted, n.handleTicketClosed)
	n.dispatcher.Subscribe(events.EventReviewSubmitted, n.handleReviewSubmitted)
}

func (n *NotificationService) handleAudit(_ context.Context, event events.Event) error {
	n.audit.Info(string(event.Type),
		zap.String("id", event.ID),
		zap.String("channel_id", event.ChannelID.String()),
		zap.String("actor_id", event.ActorID.String()),
		zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleTicketOpened(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketOpenedPayload)
	if !ok {
		return nil
	}
	user := payload.OpenerID.Mention()
	if payload.OpenerName != "" {
		user = fmt.Sprintf("%s (%s)", payload.OpenerName, payload.OpenerID)
	}
	n.send(ctx, TargetLogs, Notice{
		Title: "🆕 Ticket opened",
		Color: ColorGreen,
		Fields: []NoticeField{
			{Name: "User", Value: user},
			{Name: "Channel", Value: event.ChannelID.ChannelMention()},
			{Name: "Category", Value: payload.Category.Label()},
		},
		Timestamp: event.Timestamp,
	})
	return nil
}

func (n *NotificationService) handleTicketClosed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketClosedPayload)
	if !ok {
		return nil
	}
	notice := Notice{Title: "⏹️ Ticket closed", Color: ColorRed, Timestamp: event.Timestamp}
	if event.Type == events.EventTicketDeleted {
		notice.Title = "🗑️ Ticket deleted"
		notice.Color = ColorDarkRed
	}
	notice.Fields = append(notice.Fields,
		NoticeField{Name: "Channel", Value: "#" + payload.ChannelName},
		NoticeField{Name: "Closed by", Value: fmt.Sprintf("%s (%s)", payload.ClosedBy, event.ActorID)},
	)
	if !payload.AssigneeID.IsZero() {
		notice.Fields = append(notice.Fields, NoticeField{Name: "Assigned to", Value: payload.AssigneeID.Mention()})
	}
	n.send(ctx, TargetLogs, notice)
	return nil
}

func (n *NotificationService) handleReviewSubmitted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ReviewSubmittedPayload)
	if !ok {
		return nil
	}
	n.send(ctx, TargetReviews, ReviewNotice(payload.Review))
	return nil
}

// ReviewNotice renders a review the way the reviews channel shows it.
func ReviewNotice(r domain.Review) Notice {
	notice := Notice{
		Title: "📝 New Ticket Review",
		Color: ColorGold,
		Fields: []NoticeField{
			{Name: "Stars", Value: fmt.Sprintf("%d⭐", r.Stars), Inline: true},
			{Name: "User ID", Value: r.UserID.String(), Inline: true},
			{Name: "Ticket Channel ID", Value: r.ChannelID.String(), Inline: true},
		},
		Timestamp: r.CreatedAt,
	}
	if r.Comment != "" {
		notice.Fields = append(notice.Fields, NoticeField{Name: "Comment", Value: r.Comment})
	}
	return notice
}

func (n *NotificationService) send(ctx context.Context, target NoticeTarget, notice Notice) {
	if n.notifier == nil {
		return
	}
	if err := n.notifier.Notify(ctx, target, notice); err != nil {
		n.metrics.NotificationFailed(string(target))
		n.logger.Warn("notification failed",
			zap.String("target", string(target)),
			zap.String("title", notice.Title),
			zap.Error(err))
	}
}
