package dto

import (
	"time"

	"github.com/nuvix-market/nuvix-suite/internal/domain"
)

// Ids are rendered as strings; they overflow JSON numbers in browsers.

// TicketResponse is an open ticket.
type TicketResponse struct {
	ChannelID        string     `json:"channel_id"`
	OpenerID         string     `json:"opener_id"`
	Category         string     `json:"category"`
	CategoryLabel    string     `json:"category_label"`
	AssignedTo       *string    `json:"assigned_to"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	WarnedInactiveAt *time.Time `json:"warned_inactive_at,omitempty"`
}

// ReviewResponse is a submitted review.
type ReviewResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ChannelID string    `json:"channel_id"`
	Stars     int       `json:"stars"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTicketResponse maps a ticket.
func NewTicketResponse(t domain.Ticket) TicketResponse {
	resp := TicketResponse{
		ChannelID:        t.ChannelID.String(),
		OpenerID:         t.OpenerID.String(),
		Category:         string(t.Category),
		CategoryLabel:    t.Category.Label(),
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
		WarnedInactiveAt: t.WarnedInactiveAt,
	}
	if t.AssignedTo != nil {
		id := t.AssignedTo.String()
		resp.AssignedTo = &id
	}
	return resp
}

// NewReviewResponse maps a review.
func NewReviewResponse(r domain.Review) ReviewResponse {
	return ReviewResponse{
		ID:        r.ID,
		UserID:    r.UserID.String(),
		ChannelID: r.ChannelID.String(),
		Stars:     r.Stars,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}
