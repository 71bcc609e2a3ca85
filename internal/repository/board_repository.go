package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aetherboard/aetherboard/internal/domain"
)

// BoardRepository persists kanban boards.
type BoardRepository interface {
	Create(ctx context.Context, board *domain.Board) error
	GetByID(ctx context.Context, id string) (*domain.Board, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Board, error)
	Delete(ctx context.Context, id, ownerID string) error
}

type boardRepository struct {
	pool *pgxpool.Pool
}

// NewBoardRepository instantiates repository.
func NewBoardRepository(pool *pgxpool.Pool) BoardRepository {
	return &boardRepository{pool: pool}
}

func (r *boardRepository) Create(ctx context.Context, board *domain.Board) error {
	const query = `
        INSERT INTO boards (title, owner_id)
        VALUES ($1, $2)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query, board.Title, board.OwnerID).Scan(&board.ID, &board.CreatedAt)
}

func (r *boardRepository) GetByID(ctx context.Context, id string) (*domain.Board, error) {
	const query = `SELECT id, title, owner_id, created_at FROM boards WHERE id=$1`
	var board domain.Board
	if err := r.pool.QueryRow(ctx, query, id).Scan(&board.ID, &board.Title, &board.OwnerID, &board.CreatedAt); err != nil {
		return nil, err
	}
	return &board, nil
}

func (r *boardRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Board, error) {
	const query = `SELECT id, title, owner_id, created_at FROM boards WHERE owner_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Board
	for rows.Next() {
		var board domain.Board
		if err := rows.Scan(&board.ID, &board.Title, &board.OwnerID, &board.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, board)
	}
	return result, rows.Err()
}

func (r *boardRepository) Delete(ctx context.Context, id, ownerID string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM boards WHERE id=$1 AND owner_id=$2`, id, ownerID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
