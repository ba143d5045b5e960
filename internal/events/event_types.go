package events

import (
	"time"

	"github.com/nuvix-market/nuvix-suite/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketOpened           EventType = "ticket_opened"
	EventTicketAssigned         EventType = "ticket_assigned"
	EventTicketUnassigned       EventType = "ticket_unassigned"
	EventTicketClosed           EventType = "ticket_closed"
	EventTicketDeleted          EventType = "ticket_deleted"
	EventTicketInactivityWarned EventType = "ticket_inactivity_warned"
	EventReviewSubmitted        EventType = "review_submitted"
	EventBlacklistChanged       EventType = "blacklist_changed"
)

// AllEventTypes lists every type, for subscribers that want everything.
var AllEventTypes = []EventType{
	EventTicketOpened,
	EventTicketAssigned,
	EventTicketUnassigned,
	EventTicketClosed,
	EventTicketDeleted,
	EventTicketInactivityWarned,
	EventReviewSubmitted,
	EventBlacklistChanged,
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string           `json:"id"`
	Type      EventType        `json:"type"`
	ChannelID domain.Snowflake `json:"channel_id,omitempty"`
	ActorID   domain.Snowflake `json:"actor_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Payload   interface{}      `json:"payload"`
}

// TicketOpenedPayload payload.
type TicketOpenedPayload struct {
	OpenerID   domain.Snowflake `json:"opener_id"`
	OpenerName string           `json:"opener_name,omitempty"`
	Category   domain.Category  `json:"category"`
}

// TicketAssignedPayload payload. AssigneeID is zero when the ticket was unclaimed.
type TicketAssignedPayload struct {
	AssigneeID         domain.Snowflake `json:"assignee_id,omitempty"`
	PreviousAssigneeID domain.Snowflake `json:"previous_assignee_id,omitempty"`
}

// TicketClosedPayload payload, used for both closures and force deletions.
type TicketClosedPayload struct {
	ChannelName string           `json:"channel_name"`
	OpenerID    domain.Snowflake `json:"opener_id,omitempty"`
	AssigneeID  domain.Snowflake `json:"assignee_id,omitempty"`
	ClosedBy    string           `json:"closed_by"`
	Category    domain.Category  `json:"category,omitempty"`
}

// TicketInactivityWarnedPayload payload.
type TicketInactivityWarnedPayload struct {
	WarnedAt time.Time `json:"warned_at"`
}

// ReviewSubmittedPayload payload.
type ReviewSubmittedPayload struct {
	Review domain.Review `json:"review"`
}

// BlacklistChangedPayload payload.
type BlacklistChangedPayload struct {
	UserID domain.Snowflake `json:"user_id"`
	Added  bool             `json:"added"`
}
