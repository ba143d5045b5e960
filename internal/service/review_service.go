package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nuvix-market/nuvix-suite/internal/domain"
	"github.com/nuvix-market/nuvix-suite/internal/events"
	"github.com/nuvix-market/nuvix-suite/internal/observability"
	"github.com/nuvix-market/nuvix-suite/internal/repository"
	apperrors "github.com/nuvix-market/nuvix-suite/pkg/util"
)

// ReviewService issues rating prompts and records reviews.
type ReviewService struct {
	reviews repository.ReviewRepository
	window  time.Duration
	metrics *observability.Metrics
	publisher
}

// ReviewDependencies bundles collaborators for the review service.
type ReviewDependencies struct {
	Reviews    repository.ReviewRepository
	Window     time.Duration
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
	Clock      Clock
}

// NewReviewService constructs the service.
func NewReviewService(deps ReviewDependencies) *ReviewService {
	window := deps.Window
	if window <= 0 {
		window = domain.DefaultReviewWindow
	}
	return &ReviewService{
		reviews:   deps.Reviews,
		window:    window,
		metrics:   deps.Metrics,
		publisher: publisher{dispatcher: deps.Dispatcher, logger: loggerOrNop(deps.Logger), now: clockOrNow(deps.Clock)},
	}
}

// Window returns how long a prompt accepts input.
func (s *ReviewService) Window() time.Duration {
	return s.window
}

// IssuePrompt builds the rating prompt sent to the opener of a closed ticket.
func (s *ReviewService) IssuePrompt(ticket *domain.Ticket) domain.ReviewPrompt {
	return domain.ReviewPrompt{UserID: ticket.OpenerID, ChannelID: ticket.ChannelID, IssuedAt: s.now()}
}

// CheckPrompt verifies userID may still answer prompt.
func (s *ReviewService) CheckPrompt(prompt domain.ReviewPrompt, userID domain.Snowflake) error {
	if prompt.UserID != userID {
		return apperrors.NewPermissionDenied("This review is not for you.")
	}
	if prompt.Expired(s.now(), s.window) {
		return apperrors.NewExpired("This review prompt has expired.")
	}
	return nil
}

// SubmitPrompted checks the prompt and records the review.
func (s *ReviewService) SubmitPrompted(ctx context.Context, prompt domain.ReviewPrompt, userID domain.Snowflake, stars int, comment string) (*domain.Review, error) {
	if err := s.CheckPrompt(prompt, userID); err != nil {
		return nil, err
	}
	return s.Submit(ctx, userID, prompt.ChannelID, stars, comment)
}

// Submit validates and appends a review.
func (s *ReviewService) Submit(ctx context.Context, userID, channelID domain.Snowflake, stars int, comment string) (*domain.Review, error) {
	review, err := domain.NewReview(userID, channelID, stars, strings.TrimSpace(comment), s.now())
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), map[string]any{"stars": stars})
	}
	if err := s.reviews.Append(ctx, review); err != nil {
		return nil, err
	}
	s.metrics.ReviewSubmitted(fmt.Sprint(review.Stars))
	s.publish(ctx, events.EventReviewSubmitted, channelID, userID, events.ReviewSubmittedPayload{Review: *review})
	return review, nil
}

// List returns every review in submission order.
func (s *ReviewService) List(ctx context.Context) ([]domain.Review, error) {
	return s.reviews.List(ctx)
}
