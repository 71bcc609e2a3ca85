package service

import (
	"context"
	"strings"

	"github.com/aetherboard/aetherboard/internal/domain"
	"github.com/aetherboard/aetherboard/internal/repository"
	apperrors "github.com/aetherboard/aetherboard/pkg/util/errorutil"
)

type FeedbackService struct {
	feedback repository.FeedbackRepository
}

func NewFeedbackService(feedback repository.FeedbackRepository) *FeedbackService {
	return &FeedbackService{feedback: feedback}
}

// Submit stores feedback; userID may be nil for anonymous input.
func (s *FeedbackService) Submit(ctx context.Context, userID *string, kind, message string) (*domain.Feedback, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperrors.NewValidationError("message is required", nil)
	}
	kind = strings.TrimSpace(kind)
	if kind == "" {
		kind = "General"
	}
	fb := &domain.Feedback{UserID: userID, Type: kind, Message: message}
	if err := s.feedback.Create(ctx, fb); err != nil {
		return nil, apperrors.MapError(err)
	}
	return fb, nil
}
