package realtime

import (
	"time"

	"github.com/aetherboard/aetherboard/internal/domain"
)

// MessageRecord is the wire row of the messages table.
type MessageRecord struct {
	ID           string    `json:"id"`
	RoomID       string    `json:"room_id"`
	SenderID     string    `json:"sender_id"`
	SenderName   string    `json:"sender_name"`
	SenderAvatar string    `json:"sender_avatar,omitempty"`
	Content      string    `json:"content"`
	Edited       bool      `json:"edited"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func MessageRecordFrom(m domain.Message) MessageRecord {
	return MessageRecord{
		ID:           m.ID,
		RoomID:       m.RoomID,
		SenderID:     m.SenderID,
		SenderName:   m.SenderName,
		SenderAvatar: m.SenderAvatar,
		Content:      m.Content,
		Edited:       m.Edited,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// TaskRecord is the wire row of the tasks table.
type TaskRecord struct {
	ID          string            `json:"id"`
	BoardID     string            `json:"board_id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Duration    string            `json:"duration"`
	Status      domain.TaskStatus `json:"status"`
	Position    int               `json:"position"`
	Backlog     bool              `json:"backlog"`
	Completed   bool              `json:"completed"`
	CompletedAt *time.Time        `json:"completed_at"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func TaskRecordFrom(t domain.Task) TaskRecord {
	return TaskRecord{
		ID:          t.ID,
		BoardID:     t.BoardID,
		Title:       t.Title,
		Description: t.Description,
		Duration:    t.Duration,
		Status:      t.Status,
		Position:    t.Position,
		Backlog:     t.Backlog,
		Completed:   t.Completed,
		CompletedAt: t.CompletedAt,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// NotificationRecord is the wire row of the notifications table.
type NotificationRecord struct {
	ID        string                  `json:"id"`
	UserID    string                  `json:"user_id"`
	Kind      domain.NotificationKind `json:"kind"`
	Message   string                  `json:"message"`
	Read      bool                    `json:"read"`
	CreatedAt time.Time               `json:"created_at"`
}

func NotificationRecordFrom(n domain.Notification) NotificationRecord {
	return NotificationRecord{
		ID:        n.ID,
		UserID:    n.UserID,
		Kind:      n.Kind,
		Message:   n.Message,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}
