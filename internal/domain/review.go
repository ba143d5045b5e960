package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MinStars = 1
	MaxStars = 5

	// DefaultReviewWindow is how long a review prompt accepts input.
	DefaultReviewWindow = 5 * time.Minute
)

// Review is an append-only rating left by a ticket opener.
type Review struct {
	ID        string    `json:"id,omitempty"`
	UserID    Snowflake `json:"user_id"`
	ChannelID Snowflake `json:"channel_id"`
	Stars     int       `json:"stars"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// NewReview validates the rating and builds a record.
func NewReview(userID, channelID Snowflake, stars int, comment string, now time.Time) (*Review, error) {
	r := &Review{
		ID:        uuid.NewString(),
		UserID:    userID,
		ChannelID: channelID,
		Stars:     stars,
		Comment:   strings.TrimSpace(comment),
		CreatedAt: now,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// UnmarshalJSON accepts the timestamp formats of ParseTimestamp.
func (r *Review) UnmarshalJSON(raw []byte) error {
	type plain Review
	aux := struct {
		*plain
		CreatedAt storedTime `json:"created_at"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(raw, &aux); err != nil {
		return err
	}
	r.CreatedAt = time.Time(aux.CreatedAt)
	return nil
}

// Validate checks the record invariants.
func (r *Review) Validate() error {
	if r.UserID.IsZero() {
		return errors.New("review: user_id is required")
	}
	if r.ChannelID.IsZero() {
		return errors.New("review: channel_id is required")
	}
	if r.Stars < MinStars || r.Stars > MaxStars {
		return fmt.Errorf("review: stars must be between %d and %d, got %d", MinStars, MaxStars, r.Stars)
	}
	if r.CreatedAt.IsZero() {
		return errors.New("review: created_at is required")
	}
	return nil
}

// ReviewPrompt is the rating request sent to an opener after closure.
type ReviewPrompt struct {
	UserID    Snowflake
	ChannelID Snowflake
	IssuedAt  time.Time
}

// Expired reports whether the prompt stopped accepting input at now.
func (p ReviewPrompt) Expired(now time.Time, window time.Duration) bool {
	if window <= 0 {
		window = DefaultReviewWindow
	}
	return now.Sub(p.IssuedAt) > window
}
