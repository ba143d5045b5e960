package dto

import "github.com/nuvix-market/nuvix-suite/internal/domain"

// StaffStatResponse summarizes one staff member.
type StaffStatResponse struct {
	StaffID       string `json:"staff_id"`
	Claims        int    `json:"claims"`
	Closed        int    `json:"closed"`
	ActiveTickets int    `json:"active_tickets"`
}

// LeaderboardEntry is a ranked staff member.
type LeaderboardEntry struct {
	Rank int `json:"rank"`
	StaffStatResponse
}

// NewStaffStatResponse maps a stat.
func NewStaffStatResponse(s domain.StaffStat) StaffStatResponse {
	return StaffStatResponse{
		StaffID:       s.StaffID.String(),
		Claims:        s.Claims,
		Closed:        s.Closed,
		ActiveTickets: s.ActiveTickets(),
	}
}
