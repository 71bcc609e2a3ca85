package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aetherboard/aetherboard/internal/domain"
	"github.com/aetherboard/aetherboard/internal/realtime"
	"github.com/aetherboard/aetherboard/internal/repository"
	apperrors "github.com/aetherboard/aetherboard/pkg/util/errorutil"
)

// BoardService implements the kanban page, including the duration-based
// backlog rule.
type BoardService struct {
	boards    repository.BoardRepository
	tasks     repository.TaskRepository
	publisher changePublisher
	logger    *zap.Logger
	now       func() time.Time
}

// BoardDependencies bundles collaborators for the board service.
type BoardDependencies struct {
	BoardRepo repository.BoardRepository
	TaskRepo  repository.TaskRepository
	Broker    realtime.Broker
	Logger    *zap.Logger
	Now       func() time.Time
}

// TaskInput describes a new task.
type TaskInput struct {
	Title       string
	Description string
	Duration    string
	Status      domain.TaskStatus
	Position    int
}

// TaskUpdate carries the fields to change; nil leaves a field as is.
type TaskUpdate struct {
	Title       *string
	Description *string
	Duration    *string
	Status      *domain.TaskStatus
	Position    *int
}

// NewBoardService constructs the service.
func NewBoardService(deps BoardDependencies) *BoardService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &BoardService{
		boards:    deps.BoardRepo,
		tasks:     deps.TaskRepo,
		publisher: newChangePublisher(deps.Broker, logger),
		logger:    logger,
		now:       now,
	}
}

func (s *BoardService) ListBoards(ctx context.Context, ownerID string) ([]domain.Board, error) {
	boards, err := s.boards.ListByOwner(ctx, ownerID)
	return boards, apperrors.MapError(err)
}

func (s *BoardService) CreateBoard(ctx context.Context, ownerID, title string) (*domain.Board, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.NewValidationError("title is required", nil)
	}
	board := &domain.Board{Title: title, OwnerID: ownerID}
	if err := s.boards.Create(ctx, board); err != nil {
		return nil, apperrors.MapError(err)
	}
	return board, nil
}

func (s *BoardService) DeleteBoard(ctx context.Context, ownerID, boardID string) error {
	if err := s.boards.Delete(ctx, boardID, ownerID); err != nil {
		return apperrors.MapNotFound(err, "board", map[string]any{"board_id": boardID})
	}
	return nil
}

// Authorize returns the board when ownerID owns it.
func (s *BoardService) Authorize(ctx context.Context, ownerID, boardID string) (*domain.Board, error) {
	board, err := s.boards.GetByID(ctx, boardID)
	if err != nil {
		return nil, apperrors.MapNotFound(err, "board", map[string]any{"board_id": boardID})
	}
	if board.OwnerID != ownerID {
		return nil, apperrors.NewForbidden("board belongs to another user")
	}
	return board, nil
}

// ListTasks returns the board's tasks after applying the backlog rule, plus
// the bucket summary.
func (s *BoardService) ListTasks(ctx context.Context, ownerID, boardID string) ([]domain.Task, domain.BoardSummary, error) {
	if _, err := s.Authorize(ctx, ownerID, boardID); err != nil {
		return nil, domain.BoardSummary{}, err
	}
	tasks, err := s.tasks.ListByBoard(ctx, boardID)
	if err != nil {
		return nil, domain.BoardSummary{}, apperrors.MapError(err)
	}
	now := s.now()
	for i := range tasks {
		if !tasks[i].BacklogDue(now) {
			continue
		}
		marked, err := s.markBacklog(ctx, &tasks[i])
		if err != nil {
			return nil, domain.BoardSummary{}, err
		}
		if marked {
			tasks[i].Backlog = true
		}
	}
	return tasks, domain.SummarizeTasks(tasks), nil
}

// SweepBacklog applies the backlog rule to every board.
func (s *BoardService) SweepBacklog(ctx context.Context) (int, error) {
	candidates, err := s.tasks.ListBacklogCandidates(ctx)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	now := s.now()
	marked := 0
	for i := range candidates {
		if !candidates[i].BacklogDue(now) {
			continue
		}
		ok, err := s.markBacklog(ctx, &candidates[i])
		if err != nil {
			return marked, err
		}
		if ok {
			marked++
		}
	}
	return marked, nil
}

// markBacklog flips the flag once; only the caller that actually flipped it
// publishes the update.
func (s *BoardService) markBacklog(ctx context.Context, task *domain.Task) (bool, error) {
	marked, err := s.tasks.MarkBacklog(ctx, task.ID)
	if err != nil {
		return false, apperrors.MapError(err)
	}
	if !marked {
		return false, nil
	}
	old := realtime.TaskRecordFrom(*task)
	updated := *task
	updated.Backlog = true
	s.publisher.change(ctx, realtime.BoardTopic(task.BoardID), "tasks", realtime.ChangeUpdate, realtime.TaskRecordFrom(updated), old)
	s.logger.Debug("task moved to backlog", zap.String("task_id", task.ID), zap.String("board_id", task.BoardID))
	return true, nil
}

func (s *BoardService) CreateTask(ctx context.Context, ownerID, boardID string, in TaskInput) (*domain.Task, error) {
	if _, err := s.Authorize(ctx, ownerID, boardID); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title is required", nil)
	}
	status := in.Status
	if status == "" {
		status = domain.TaskStatusTodo
	}
	if !status.Valid() {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": status})
	}
	task := &domain.Task{
		BoardID:     boardID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Duration:    strings.TrimSpace(in.Duration),
		Status:      status,
		Position:    in.Position,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publisher.change(ctx, realtime.BoardTopic(boardID), "tasks", realtime.ChangeInsert, realtime.TaskRecordFrom(*task), nil)
	if status == domain.TaskStatusDone {
		return s.complete(ctx, task)
	}
	return task, nil
}

// UpdateTask edits or moves a task. Moving it to done completes it and moving
// it anywhere else reopens it.
func (s *BoardService) UpdateTask(ctx context.Context, ownerID, taskID string, in TaskUpdate) (*domain.Task, error) {
	task, err := s.ownedTask(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}
	old := realtime.TaskRecordFrom(*task)
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, apperrors.NewValidationError("title is required", nil)
		}
		task.Title = title
	}
	if in.Description != nil {
		task.Description = strings.TrimSpace(*in.Description)
	}
	if in.Duration != nil {
		task.Duration = strings.TrimSpace(*in.Duration)
	}
	if in.Position != nil {
		task.Position = *in.Position
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": *in.Status})
		}
		task.Status = *in.Status
		if task.Status != domain.TaskStatusDone {
			task.Completed = false
			task.CompletedAt = nil
		}
	}
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, apperrors.MapNotFound(err, "task", map[string]any{"task_id": taskID})
	}
	s.publisher.change(ctx, realtime.BoardTopic(task.BoardID), "tasks", realtime.ChangeUpdate, realtime.TaskRecordFrom(*task), old)
	if task.Status == domain.TaskStatusDone && !task.Completed {
		return s.complete(ctx, task)
	}
	return task, nil
}

// CompleteTask marks the task done and takes it out of the backlog.
func (s *BoardService) CompleteTask(ctx context.Context, ownerID, taskID string) (*domain.Task, error) {
	task, err := s.ownedTask(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}
	return s.complete(ctx, task)
}

func (s *BoardService) complete(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	old := realtime.TaskRecordFrom(*task)
	completed, err := s.tasks.Complete(ctx, task.ID)
	if err != nil {
		return nil, apperrors.MapNotFound(err, "task", map[string]any{"task_id": task.ID})
	}
	s.publisher.change(ctx, realtime.BoardTopic(completed.BoardID), "tasks", realtime.ChangeUpdate, realtime.TaskRecordFrom(*completed), old)
	return completed, nil
}

func (s *BoardService) DeleteTask(ctx context.Context, ownerID, taskID string) error {
	task, err := s.ownedTask(ctx, ownerID, taskID)
	if err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, taskID); err != nil {
		return apperrors.MapNotFound(err, "task", map[string]any{"task_id": taskID})
	}
	s.publisher.change(ctx, realtime.BoardTopic(task.BoardID), "tasks", realtime.ChangeDelete, nil, realtime.TaskRecordFrom(*task))
	return nil
}

func (s *BoardService) ownedTask(ctx context.Context, ownerID, taskID string) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, apperrors.MapNotFound(err, "task", map[string]any{"task_id": taskID})
	}
	if _, err := s.Authorize(ctx, ownerID, task.BoardID); err != nil {
		return nil, err
	}
	return task, nil
}
