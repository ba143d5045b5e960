package domain

import "errors"

// ActiveParticipationThreshold is the message count at which a ticket counts as
// active participation for a staff member.
const ActiveParticipationThreshold = 5

// StaffStat accumulates per-staff counters.
type StaffStat struct {
	StaffID          Snowflake         `json:"-"`
	Claims           int               `json:"claims"`
	Closed           int               `json:"closed"`
	MessagesByTicket map[Snowflake]int `json:"messages_by_ticket"`
}

// NewStaffStat returns an empty stat record.
func NewStaffStat(staffID Snowflake) *StaffStat {
	return &StaffStat{StaffID: staffID, MessagesByTicket: map[Snowflake]int{}}
}

// Validate checks the record invariants.
func (s *StaffStat) Validate() error {
	if s.StaffID.IsZero() {
		return errors.New("staff stat: staff id is required")
	}
	if s.Claims < 0 || s.Closed < 0 {
		return errors.New("staff stat: counters must be non-negative")
	}
	for channel, count := range s.MessagesByTicket {
		if channel.IsZero() {
			return errors.New("staff stat: message counts need a channel id")
		}
		if count < 0 {
			return errors.New("staff stat: message counts must be non-negative")
		}
	}
	return nil
}

// ActiveTickets counts tickets with at least ActiveParticipationThreshold messages.
func (s *StaffStat) ActiveTickets() int {
	n := 0
	for _, count := range s.MessagesByTicket {
		if count >= ActiveParticipationThreshold {
			n++
		}
	}
	return n
}

// Clone returns a deep copy.
func (s *StaffStat) Clone() *StaffStat {
	if s == nil {
		return nil
	}
	c := *s
	c.MessagesByTicket = make(map[Snowflake]int, len(s.MessagesByTicket))
	for k, v := range s.MessagesByTicket {
		c.MessagesByTicket[k] = v
	}
	return &c
}
