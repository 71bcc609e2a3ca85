package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/aetherboard/aetherboard/internal/api/dto"
	"github.com/aetherboard/aetherboard/internal/domain"
	"github.com/aetherboard/aetherboard/internal/service"
)

// BoardService is the kanban surface used by BoardHandler.
type BoardService interface {
	ListBoards(ctx context.Context, ownerID string) ([]domain.Board, error)
	CreateBoard(ctx context.Context, ownerID, title string) (*domain.Board, error)
	DeleteBoard(ctx context.Context, ownerID, boardID string) error
	ListTasks(ctx context.Context, ownerID, boardID string) ([]domain.Task, domain.BoardSummary, error)
	CreateTask(ctx context.Context, ownerID, boardID string, in service.TaskInput) (*domain.Task, error)
	UpdateTask(ctx context.Context, ownerID, taskID string, in service.TaskUpdate) (*domain.Task, error)
	CompleteTask(ctx context.Context, ownerID, taskID string) (*domain.Task, error)
	DeleteTask(ctx context.Context, ownerID, taskID string) error
}

// BoardHandler manages boards and their tasks.
type BoardHandler struct {
	service BoardService
}

// NewBoardHandler constructs handler.
func NewBoardHandler(boards BoardService) *BoardHandler {
	return &BoardHandler{service: boards}
}

// ListBoards GET /boards.
func (h *BoardHandler) ListBoards(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	boards, err := h.service.ListBoards(c.UserContext(), profile.ID)
	if err != nil {
		return err
	}
	items := make([]dto.BoardResponse, 0, len(boards))
	for i := range boards {
		items = append(items, boardResponse(&boards[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateBoard POST /boards.
func (h *BoardHandler) CreateBoard(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	var req dto.CreateBoardRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	board, err := h.service.CreateBoard(c.UserContext(), profile.ID, req.Title)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": boardResponse(board)})
}

// DeleteBoard DELETE /boards/:id.
func (h *BoardHandler) DeleteBoard(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteBoard(c.UserContext(), profile.ID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListTasks GET /boards/:id/tasks. Fetching classifies overdue tasks as backlog.
func (h *BoardHandler) ListTasks(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	tasks, summary, err := h.service.ListTasks(c.UserContext(), profile.ID, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.TaskResponse, 0, len(tasks))
	for i := range tasks {
		items = append(items, taskResponse(&tasks[i]))
	}
	return c.JSON(fiber.Map{"data": dto.TaskListResponse{Tasks: items, Summary: summary}})
}

// CreateTask POST /boards/:id/tasks.
func (h *BoardHandler) CreateTask(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	var req dto.CreateTaskRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	task, err := h.service.CreateTask(c.UserContext(), profile.ID, c.Params("id"), service.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Duration:    req.Duration,
		Status:      req.Status,
		Position:    req.Position,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": taskResponse(task)})
}

// UpdateTask PATCH /tasks/:id.
func (h *BoardHandler) UpdateTask(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTaskRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	task, err := h.service.UpdateTask(c.UserContext(), profile.ID, c.Params("id"), service.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		Duration:    req.Duration,
		Status:      req.Status,
		Position:    req.Position,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": taskResponse(task)})
}

// CompleteTask POST /tasks/:id/complete.
func (h *BoardHandler) CompleteTask(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	task, err := h.service.CompleteTask(c.UserContext(), profile.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": taskResponse(task)})
}

// DeleteTask DELETE /tasks/:id.
func (h *BoardHandler) DeleteTask(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteTask(c.UserContext(), profile.ID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func boardResponse(b *domain.Board) dto.BoardResponse {
	return dto.BoardResponse{ID: b.ID, Title: b.Title, OwnerID: b.OwnerID, CreatedAt: b.CreatedAt}
}

func taskResponse(t *domain.Task) dto.TaskResponse {
	return dto.TaskResponse{
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
