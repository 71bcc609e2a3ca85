package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aetherboard/aetherboard/internal/domain"
)

// MessageRepository persists chat rows.
type MessageRepository interface {
	ListByRoom(ctx context.Context, roomID string) ([]domain.Message, error)
	GetByID(ctx context.Context, id string) (*domain.Message, error)
	Create(ctx context.Context, msg *domain.Message) error
	UpdateContent(ctx context.Context, msg *domain.Message) error
	RenameSender(ctx context.Context, senderID, name string) ([]domain.Message, error)
	Delete(ctx context.Context, id string) error
}

type messageRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRepository instantiates repository.
func NewMessageRepository(pool *pgxpool.Pool) MessageRepository {
	return &messageRepository{pool: pool}
}

const messageColumns = `id, room_id, sender_id, sender_name, sender_avatar, content, edited, created_at, updated_at`

// ListByRoom is the single bulk read of a room, oldest first.
func (r *messageRepository) ListByRoom(ctx context.Context, roomID string) ([]domain.Message, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+messageColumns+` FROM messages WHERE room_id=$1 ORDER BY created_at ASC, id ASC`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *msg)
	}
	return result, rows.Err()
}

func (r *messageRepository) GetByID(ctx context.Context, id string) (*domain.Message, error) {
	return scanMessage(r.pool.QueryRow(ctx, `SELECT `+messageColumns+` FROM messages WHERE id=$1`, id))
}

func (r *messageRepository) Create(ctx context.Context, msg *domain.Message) error {
	const query = `
        INSERT INTO messages (room_id, sender_id, sender_name, sender_avatar, content)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, edited, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		msg.RoomID,
		msg.SenderID,
		msg.SenderName,
		msg.SenderAvatar,
		msg.Content,
	).Scan(&msg.ID, &msg.Edited, &msg.CreatedAt, &msg.UpdatedAt)
}

func (r *messageRepository) UpdateContent(ctx context.Context, msg *domain.Message) error {
	const query = `
        UPDATE messages SET content=$1, edited=$2, updated_at=NOW()
        WHERE id=$3
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query, msg.Content, msg.Edited, msg.ID).Scan(&msg.UpdatedAt)
}

// RenameSender rewrites the display name on every message of senderID and
// returns the changed rows.
func (r *messageRepository) RenameSender(ctx context.Context, senderID, name string) ([]domain.Message, error) {
	rows, err := r.pool.Query(ctx, `
        UPDATE messages SET sender_name=$1, updated_at=NOW()
        WHERE sender_id=$2 AND sender_name<>$1
        RETURNING `+messageColumns, name, senderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *msg)
	}
	return result, rows.Err()
}

func (r *messageRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM messages WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanMessage(row pgx.Row) (*domain.Message, error) {
	var msg domain.Message
	if err := row.Scan(
		&msg.ID,
		&msg.RoomID,
		&msg.SenderID,
		&msg.SenderName,
		&msg.SenderAvatar,
		&msg.Content,
		&msg.Edited,
		&msg.CreatedAt,
		&msg.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &msg, nil
}
