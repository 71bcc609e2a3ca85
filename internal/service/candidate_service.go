package service

import (
	"context"
	"strings"

	"github.com/aetherboard/aetherboard/internal/domain"
	"github.com/aetherboard/aetherboard/internal/repository"
	apperrors "github.com/aetherboard/aetherboard/pkg/util/errorutil"
)

// CandidateService backs the HR smart filter.
type CandidateService struct {
	candidates repository.CandidateRepository
}

func NewCandidateService(candidates repository.CandidateRepository) *CandidateService {
	return &CandidateService{candidates: candidates}
}

func (s *CandidateService) List(ctx context.Context, filter repository.CandidateFilter) ([]domain.Candidate, error) {
	if filter.Status != nil && !validCandidateStatus(*filter.Status) {
		return nil, apperrors.NewValidationError("invalid candidate status", map[string]any{"status": *filter.Status})
	}
	candidates, err := s.candidates.List(ctx, filter)
	return candidates, apperrors.MapError(err)
}

func (s *CandidateService) Create(ctx context.Context, c *domain.Candidate) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return apperrors.NewValidationError("name is required", nil)
	}
	if c.Score < 0 || c.Score > 100 {
		return apperrors.NewValidationError("score must be between 0 and 100", map[string]any{"score": c.Score})
	}
	if c.Status == "" {
		c.Status = domain.CandidateNew
	}
	if !validCandidateStatus(c.Status) {
		return apperrors.NewValidationError("invalid candidate status", map[string]any{"status": c.Status})
	}
	return apperrors.MapError(s.candidates.Create(ctx, c))
}

func validCandidateStatus(status domain.CandidateStatus) bool {
	switch status {
	case domain.CandidateNew, domain.CandidateScreening, domain.CandidateInterview, domain.CandidateHired, domain.CandidateRejected:
		return true
	}
	return false
}
