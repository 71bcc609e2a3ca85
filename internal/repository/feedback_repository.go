package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aetherboard/aetherboard/internal/domain"
)

// FeedbackRepository stores product feedback.
type FeedbackRepository interface {
	Create(ctx context.Context, fb *domain.Feedback) error
}

type feedbackRepository struct {
	pool *pgxpool.Pool
}

// NewFeedbackRepository instantiates repository.
func NewFeedbackRepository(pool *pgxpool.Pool) FeedbackRepository {
	return &feedbackRepository{pool: pool}
}

func (r *feedbackRepository) Create(ctx context.Context, fb *domain.Feedback) error {
	const query = `
        INSERT INTO feedback (user_id, type, message)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query, fb.UserID, fb.Type, fb.Message).Scan(&fb.ID, &fb.CreatedAt)
}
