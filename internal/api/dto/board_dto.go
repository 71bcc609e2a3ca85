package dto

import (
	"time"

	"github.com/aetherboard/aetherboard/internal/domain"
)

// CreateBoardRequest payload.
type CreateBoardRequest struct {
	Title string `json:"title"`
}

// BoardResponse describes a board.
type BoardResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateTaskRequest payload.
type CreateTaskRequest struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Duration    string            `json:"duration"`
	Status      domain.TaskStatus `json:"status"`
	Position    int               `json:"position"`
}

// UpdateTaskRequest payload; absent fields are left unchanged. Moving a card
// between columns is an update of status and position.
type UpdateTaskRequest struct {
	Title       *string            `json:"title"`
	Description *string            `json:"description"`
	Duration    *string            `json:"duration"`
	Status      *domain.TaskStatus `json:"status"`
	Position    *int               `json:"position"`
}

// TaskResponse describes a kanban card.
type TaskResponse struct {
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

// TaskListResponse is the board page payload.
type TaskListResponse struct {
	Tasks   []TaskResponse      `json:"tasks"`
	Summary domain.BoardSummary `json:"summary"`
}
