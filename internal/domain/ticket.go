package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Ticket is an open support request bound to one channel.
type Ticket struct {
	ChannelID        Snowflake  `json:"channel_id"`
	OpenerID         Snowflake  `json:"opener_id"`
	Category         Category   `json:"category"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	AssignedTo       *Snowflake `json:"assigned_to"`
	WarnedInactiveAt *time.Time `json:"warned_inactive_at"`
}

// NewTicket builds an unassigned ticket with both timestamps set to now.
func NewTicket(channelID, openerID Snowflake, category Category, now time.Time) (*Ticket, error) {
	t := &Ticket{
		ChannelID: channelID,
		OpenerID:  openerID,
		Category:  category,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks the record invariants.
func (t *Ticket) Validate() error {
	if t.ChannelID.IsZero() {
		return errors.New("ticket: channel_id is required")
	}
	if t.OpenerID.IsZero() {
		return errors.New("ticket: opener_id is required")
	}
	if !t.Category.Valid() {
		return fmt.Errorf("ticket: unknown category %q", t.Category)
	}
	if t.CreatedAt.IsZero() {
		return errors.New("ticket: created_at is required")
	}
	if t.UpdatedAt.Before(t.CreatedAt) {
		return errors.New("ticket: updated_at precedes created_at")
	}
	if t.AssignedTo != nil && t.AssignedTo.IsZero() {
		return errors.New("ticket: assigned_to must be a staff id or null")
	}
	return nil
}

// UnmarshalJSON accepts the timestamp formats of ParseTimestamp. A missing
// updated_at falls back to created_at.
func (t *Ticket) UnmarshalJSON(raw []byte) error {
	type plain Ticket
	aux := struct {
		*plain
		CreatedAt        storedTime  `json:"created_at"`
		UpdatedAt        storedTime  `json:"updated_at"`
		WarnedInactiveAt *storedTime `json:"warned_inactive_at"`
	}{plain: (*plain)(t)}
	if err := json.Unmarshal(raw, &aux); err != nil {
		return err
	}
	t.CreatedAt = time.Time(aux.CreatedAt)
	t.UpdatedAt = time.Time(aux.UpdatedAt)
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = t.CreatedAt
	}
	t.WarnedInactiveAt = aux.WarnedInactiveAt.timePtr()
	return nil
}

// IsAssigned reports whether a staff member holds the ticket.
func (t *Ticket) IsAssigned() bool {
	return t.AssignedTo != nil
}

// AssignedToID returns the assignee or zero.
func (t *Ticket) AssignedToID() Snowflake {
	if t.AssignedTo == nil {
		return 0
	}
	return *t.AssignedTo
}

// IsWarned reports whether the inactivity warning already fired.
func (t *Ticket) IsWarned() bool {
	return t.WarnedInactiveAt != nil
}

// Clone returns a deep copy so callers never share pointer fields with a store.
func (t *Ticket) Clone() *Ticket {
	if t == nil {
		return nil
	}
	c := *t
	if t.AssignedTo != nil {
		id := *t.AssignedTo
		c.AssignedTo = &id
	}
	if t.WarnedInactiveAt != nil {
		at := *t.WarnedInactiveAt
		c.WarnedInactiveAt = &at
	}
	return &c
}
