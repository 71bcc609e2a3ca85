package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aetherboard/aetherboard/internal/domain"
)

// CandidateFilter drives the HR smart filter.
type CandidateFilter struct {
	SearchTerm string
	Status     *domain.CandidateStatus
	SortDesc   bool
}

// CandidateRepository persists applicants.
type CandidateRepository interface {
	Create(ctx context.Context, c *domain.Candidate) error
	List(ctx context.Context, filter CandidateFilter) ([]domain.Candidate, error)
}

type candidateRepository struct {
	pool *pgxpool.Pool
}

// NewCandidateRepository instantiates repository.
func NewCandidateRepository(pool *pgxpool.Pool) CandidateRepository {
	return &candidateRepository{pool: pool}
}

func (r *candidateRepository) Create(ctx context.Context, c *domain.Candidate) error {
	const query = `
        INSERT INTO candidates (name, position, score, status)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query, c.Name, c.Position, c.Score, c.Status).Scan(&c.ID, &c.CreatedAt)
}

func (r *candidateRepository) List(ctx context.Context, filter CandidateFilter) ([]domain.Candidate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if term := strings.TrimSpace(filter.SearchTerm); term != "" {
		args = append(args, "%"+strings.ToLower(term)+"%")
		clauses = append(clauses, fmt.Sprintf("LOWER(name) LIKE $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	order := "ASC"
	if filter.SortDesc {
		order = "DESC"
	}

	query := fmt.Sprintf(`SELECT id, name, position, score, status, created_at FROM candidates
        WHERE %s ORDER BY score %s, name ASC`, strings.Join(clauses, " AND "), order)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Candidate
	for rows.Next() {
		var c domain.Candidate
		if err := rows.Scan(&c.ID, &c.Name, &c.Position, &c.Score, &c.Status, &c.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}
