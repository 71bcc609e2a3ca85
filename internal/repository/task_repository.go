package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aetherboard/aetherboard/internal/domain"
)

// TaskRepository persists kanban cards.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	Update(ctx context.Context, task *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	ListByBoard(ctx context.Context, boardID string) ([]domain.Task, error)
	ListBacklogCandidates(ctx context.Context) ([]domain.Task, error)
	MarkBacklog(ctx context.Context, id string) (bool, error)
	Complete(ctx context.Context, id string) (*domain.Task, error)
	Delete(ctx context.Context, id string) error
}

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository instantiates repository.
func NewTaskRepository(pool *pgxpool.Pool) TaskRepository {
	return &taskRepository{pool: pool}
}

const taskColumns = `id, board_id, title, description, duration, status, position, backlog, completed,
               completed_at, created_at, updated_at`

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	const query = `
        INSERT INTO tasks (board_id, title, description, duration, status, position)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, backlog, completed, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		task.BoardID,
		task.Title,
		task.Description,
		task.Duration,
		task.Status,
		task.Position,
	).Scan(&task.ID, &task.Backlog, &task.Completed, &task.CreatedAt, &task.UpdatedAt)
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	const query = `
        UPDATE tasks SET title=$1, description=$2, duration=$3, status=$4, position=$5,
            completed=$6, completed_at=$7, updated_at=NOW()
        WHERE id=$8
        RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		task.Title,
		task.Description,
		task.Duration,
		task.Status,
		task.Position,
		task.Completed,
		task.CompletedAt,
		task.ID,
	).Scan(&task.UpdatedAt)
	return err
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	return scanTask(r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id=$1`, id))
}

func (r *taskRepository) ListByBoard(ctx context.Context, boardID string) ([]domain.Task, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+taskColumns+` FROM tasks WHERE board_id=$1 ORDER BY position ASC, created_at ASC`, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

// ListBacklogCandidates returns incomplete, unmarked tasks that declare a duration.
func (r *taskRepository) ListBacklogCandidates(ctx context.Context) ([]domain.Task, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+taskColumns+` FROM tasks
        WHERE backlog=false AND completed=false AND duration <> ''`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

// MarkBacklog flips backlog on an incomplete task. It reports false when another
// caller already marked it.
func (r *taskRepository) MarkBacklog(ctx context.Context, id string) (bool, error) {
	const query = `
        UPDATE tasks SET backlog=true, updated_at=NOW()
        WHERE id=$1 AND backlog=false AND completed=false`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *taskRepository) Complete(ctx context.Context, id string) (*domain.Task, error) {
	query := `
        UPDATE tasks SET completed=true, backlog=false, completed_at=NOW(), status='done', updated_at=NOW()
        WHERE id=$1
        RETURNING ` + taskColumns
	return scanTask(r.pool.QueryRow(ctx, query, id))
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var task domain.Task
	if err := row.Scan(
		&task.ID,
		&task.BoardID,
		&task.Title,
		&task.Description,
		&task.Duration,
		&task.Status,
		&task.Position,
		&task.Backlog,
		&task.Completed,
		&task.CompletedAt,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &task, nil
}

func scanTasks(rows pgx.Rows) ([]domain.Task, error) {
	var result []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *task)
	}
	return result, rows.Err()
}
