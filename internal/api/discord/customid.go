package discord

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nuvix-market/nuvix-suite/internal/domain"
)

// Component custom ids. Stateful ids carry their state after a colon so
// components keep working across restarts.
const (
	idCategorySelect = "ticket_category_select"
	idTicketModal    = "ticket_modal"
	idAssign         = "ticket_assign"
	idUnclaim        = "ticket_unclaim"
	idClose          = "ticket_close"
	idReviewRate     = "review_rate"
	idReviewModal    = "review_modal"
)

func splitID(customID string) (string, []string) {
	parts := strings.Split(customID, ":")
	return parts[0], parts[1:]
}

func ticketModalID(c domain.Category) string {
	return idTicketModal + ":" + string(c)
}

func reviewRateID(p domain.ReviewPrompt) string {
	return fmt.Sprintf("%s:%s:%s:%d", idReviewRate, p.UserID, p.ChannelID, p.IssuedAt.Unix())
}

func parseReviewRateID(args []string) (domain.ReviewPrompt, error) {
	if len(args) != 3 {
		return domain.ReviewPrompt{}, fmt.Errorf("review prompt id: want 3 fields, got %d", len(args))
	}
	user, err := domain.ParseSnowflake(args[0])
	if err != nil {
		return domain.ReviewPrompt{}, err
	}
	channel, err := domain.ParseSnowflake(args[1])
	if err != nil {
		return domain.ReviewPrompt{}, err
	}
	issued, err := strconv.ParseInt(args[2], 10, 64)
	if err != nil {
		return domain.ReviewPrompt{}, fmt.Errorf("review prompt id: %w", err)
	}
	return domain.ReviewPrompt{UserID: user, ChannelID: channel, IssuedAt: time.Unix(issued, 0).UTC()}, nil
}

func reviewModalID(user, channel domain.Snowflake, stars int) string {
	return fmt.Sprintf("%s:%s:%s:%d", idReviewModal, user, channel, stars)
}

func parseReviewModalID(args []string) (user, channel domain.Snowflake, stars int, err error) {
	if len(args) != 3 {
		return 0, 0, 0, fmt.Errorf("review modal id: want 3 fields, got %d", len(args))
	}
	if user, err = domain.ParseSnowflake(args[0]); err != nil {
		return 0, 0, 0, err
	}
	if channel, err = domain.ParseSnowflake(args[1]); err != nil {
		return 0, 0, 0, err
	}
	if stars, err = strconv.Atoi(args[2]); err != nil {
		return 0, 0, 0, fmt.Errorf("review modal id: %w", err)
	}
	return user, channel, stars, nil
}
