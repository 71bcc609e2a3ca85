package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/aetherboard/aetherboard/internal/config"
	"github.com/aetherboard/aetherboard/internal/domain"
	"github.com/aetherboard/aetherboard/internal/events"
	"github.com/aetherboard/aetherboard/internal/repository"
	apperrors "github.com/aetherboard/aetherboard/pkg/util/errorutil"
)

// VacationLeaveTask is the entry task used when filling leave days.
const VacationLeaveTask = "Vacation Leave"

// TimesheetService implements weekly timesheets, their review and overtime decisions.
type TimesheetService struct {
	sheets     repository.TimesheetRepository
	dispatcher events.Dispatcher
	cfg        config.TimesheetConfig
	logger     *zap.Logger
	now        func() time.Time
}

// TimesheetDependencies bundles collaborators for the timesheet service.
type TimesheetDependencies struct {
	TimesheetRepo repository.TimesheetRepository
	Dispatcher    events.Dispatcher
	Config        config.TimesheetConfig
	Logger        *zap.Logger
	Now           func() time.Time
}

// EntryInput describes one day of work.
type EntryInput struct {
	Date        time.Time
	Task        string
	Hours       float64
	Description string
}

// NewTimesheetService constructs the service.
func NewTimesheetService(deps TimesheetDependencies) *TimesheetService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &TimesheetService{
		sheets:     deps.TimesheetRepo,
		dispatcher: deps.Dispatcher,
		cfg:        deps.Config,
		logger:     logger,
		now:        now,
	}
}

// Today returns the current instant as seen by the service clock.
func (s *TimesheetService) Today() time.Time { return s.now() }

// GetWeek returns the user's sheet for the week containing day, creating a
// draft on first access.
func (s *TimesheetService) GetWeek(ctx context.Context, userID string, day time.Time) (*domain.Timesheet, error) {
	sheet, err := s.sheets.GetOrCreate(ctx, userID, domain.WeekStart(day))
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return s.withEntries(ctx, sheet)
}

func (s *TimesheetService) withEntries(ctx context.Context, sheet *domain.Timesheet) (*domain.Timesheet, error) {
	entries, err := s.sheets.ListEntries(ctx, sheet.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	sheet.Entries = entries
	return sheet, nil
}

// SaveEntry creates or replaces the entry for the input's day and recomputes
// the weekly total.
func (s *TimesheetService) SaveEntry(ctx context.Context, userID string, in EntryInput) (*domain.Timesheet, *domain.TimesheetEntry, error) {
	task := strings.TrimSpace(in.Task)
	if task == "" {
		return nil, nil, apperrors.NewValidationError("task is required", nil)
	}
	if !domain.ValidTimesheetTask(task) {
		return nil, nil, apperrors.NewValidationError("unknown task", map[string]any{"task": task, "tasks": domain.TimesheetTasks})
	}
	if in.Hours < 0 || in.Hours > 24 {
		return nil, nil, apperrors.NewValidationError("hours must be between 0 and 24", map[string]any{"hours": in.Hours})
	}
	if in.Date.IsZero() {
		return nil, nil, apperrors.NewValidationError("entry date is required", nil)
	}

	sheet, err := s.GetWeek(ctx, userID, in.Date)
	if err != nil {
		return nil, nil, err
	}
	if !sheet.Status.Editable() {
		return nil, nil, apperrors.NewConflict("timesheet is locked", map[string]any{"status": sheet.Status})
	}

	entry := &domain.TimesheetEntry{
		TimesheetID:    sheet.ID,
		EntryDate:      dateOnly(in.Date),
		Task:           task,
		Hours:          in.Hours,
		Description:    strings.TrimSpace(in.Description),
		OvertimeStatus: domain.OvertimeStatusNone,
	}
	if ot := domain.OvertimeFor(in.Hours, s.cfg.OvertimeDailyHours); ot > 0 {
		entry.OvertimeHours = ot
		entry.OvertimeStatus = domain.OvertimeStatusPending
	}
	if err := s.sheets.UpsertEntry(ctx, entry); err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	sheet, err = s.recomputeTotal(ctx, sheet)
	if err != nil {
		return nil, nil, err
	}
	return sheet, entry, nil
}

// DeleteEntry removes an entry from an editable sheet of the user.
func (s *TimesheetService) DeleteEntry(ctx context.Context, userID, entryID string) (*domain.Timesheet, error) {
	entry, err := s.sheets.GetEntry(ctx, entryID)
	if err != nil {
		return nil, apperrors.MapNotFound(err, "timesheet entry", map[string]any{"entry_id": entryID})
	}
	sheet, err := s.ownedSheet(ctx, userID, entry.TimesheetID)
	if err != nil {
		return nil, err
	}
	if !sheet.Status.Editable() {
		return nil, apperrors.NewConflict("timesheet is locked", map[string]any{"status": sheet.Status})
	}
	if err := s.sheets.DeleteEntry(ctx, entryID); err != nil {
		return nil, apperrors.MapNotFound(err, "timesheet entry", map[string]any{"entry_id": entryID})
	}
	return s.recomputeTotal(ctx, sheet)
}

func (s *TimesheetService) recomputeTotal(ctx context.Context, sheet *domain.Timesheet) (*domain.Timesheet, error) {
	sheet, err := s.withEntries(ctx, sheet)
	if err != nil {
		return nil, err
	}
	sheet.TotalHours = domain.SumHours(sheet.Entries)
	if err := s.sheets.UpdateTotal(ctx, sheet.ID, sheet.TotalHours); err != nil {
		return nil, apperrors.MapError(err)
	}
	return sheet, nil
}

// Submit hands the week to reviewers.
func (s *TimesheetService) Submit(ctx context.Context, userID string, day time.Time) (*domain.Timesheet, error) {
	sheet, err := s.GetWeek(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	if !sheet.Status.Editable() {
		return nil, apperrors.NewConflict("timesheet already submitted", map[string]any{"status": sheet.Status})
	}
	total := domain.SumHours(sheet.Entries)
	if total < s.cfg.MinWeeklyHours {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("at least %g hours are required to submit", s.cfg.MinWeeklyHours),
			map[string]any{"total_hours": total, "required_hours": s.cfg.MinWeeklyHours})
	}
	now := s.now()
	sheet.TotalHours = total
	sheet.Status = domain.TimesheetStatusSubmitted
	sheet.SubmittedAt = &now
	sheet.ReviewedBy = nil
	sheet.ReviewedAt = nil
	if err := s.sheets.UpdateStatus(ctx, sheet); err != nil {
		return nil, apperrors.MapError(err)
	}
	return sheet, nil
}

// Withdraw returns a submitted sheet to draft. It undoes Submit.
func (s *TimesheetService) Withdraw(ctx context.Context, userID, sheetID string) (*domain.Timesheet, error) {
	sheet, err := s.ownedSheet(ctx, userID, sheetID)
	if err != nil {
		return nil, err
	}
	if sheet.Status != domain.TimesheetStatusSubmitted {
		return nil, apperrors.NewConflict("only submitted timesheets can be withdrawn", map[string]any{"status": sheet.Status})
	}
	sheet.Status = domain.TimesheetStatusDraft
	sheet.SubmittedAt = nil
	if err := s.sheets.UpdateStatus(ctx, sheet); err != nil {
		return nil, apperrors.MapError(err)
	}
	return s.withEntries(ctx, sheet)
}

// ListForReview lists sheets in status, optionally limited to one week.
func (s *TimesheetService) ListForReview(ctx context.Context, reviewer *domain.Profile, status domain.TimesheetStatus, week *time.Time) ([]domain.Timesheet, error) {
	if err := requireReviewer(reviewer); err != nil {
		return nil, err
	}
	if status == "" {
		status = domain.TimesheetStatusSubmitted
	}
	var weekStart *time.Time
	if week != nil {
		ws := domain.WeekStart(*week)
		weekStart = &ws
	}
	sheets, err := s.sheets.ListByStatusAndWeek(ctx, status, weekStart)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	for i := range sheets {
		entries, err := s.sheets.ListEntries(ctx, sheets[i].ID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		sheets[i].Entries = entries
	}
	return sheets, nil
}

// Review approves or rejects a submitted sheet and notifies its owner.
func (s *TimesheetService) Review(ctx context.Context, reviewer *domain.Profile, sheetID string, approve bool) (*domain.Timesheet, error) {
	if err := requireReviewer(reviewer); err != nil {
		return nil, err
	}
	sheet, err := s.sheets.GetByID(ctx, sheetID)
	if err != nil {
		return nil, apperrors.MapNotFound(err, "timesheet", map[string]any{"timesheet_id": sheetID})
	}
	if sheet.Status != domain.TimesheetStatusSubmitted {
		return nil, apperrors.NewConflict("timesheet is not awaiting review", map[string]any{"status": sheet.Status})
	}
	now := s.now()
	sheet.Status = domain.TimesheetStatusRejected
	if approve {
		sheet.Status = domain.TimesheetStatusApproved
	}
	sheet.ReviewedBy = &reviewer.ID
	sheet.ReviewedAt = &now
	if err := s.sheets.UpdateStatus(ctx, sheet); err != nil {
		return nil, apperrors.MapError(err)
	}
	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:      events.EventTimesheetReviewed,
		SubjectID: sheet.ID,
		ActorID:   reviewer.ID,
		Payload: events.TimesheetReviewedPayload{
			OwnerID:   sheet.UserID,
			WeekStart: sheet.WeekStart,
			Status:    sheet.Status,
		},
	})
	return s.withEntries(ctx, sheet)
}

// ReopenReview puts an approved or rejected sheet back to submitted. It undoes Review.
func (s *TimesheetService) ReopenReview(ctx context.Context, reviewer *domain.Profile, sheetID string) (*domain.Timesheet, error) {
	if err := requireReviewer(reviewer); err != nil {
		return nil, err
	}
	sheet, err := s.sheets.GetByID(ctx, sheetID)
	if err != nil {
		return nil, apperrors.MapNotFound(err, "timesheet", map[string]any{"timesheet_id": sheetID})
	}
	if sheet.Status != domain.TimesheetStatusApproved && sheet.Status != domain.TimesheetStatusRejected {
		return nil, apperrors.NewConflict("timesheet has not been reviewed", map[string]any{"status": sheet.Status})
	}
	sheet.Status = domain.TimesheetStatusSubmitted
	sheet.ReviewedBy = nil
	sheet.ReviewedAt = nil
	if err := s.sheets.UpdateStatus(ctx, sheet); err != nil {
		return nil, apperrors.MapError(err)
	}
	return sheet, nil
}

// ListPendingOvertime returns overtime entries awaiting a decision.
func (s *TimesheetService) ListPendingOvertime(ctx context.Context, reviewer *domain.Profile) ([]domain.OvertimeRequest, error) {
	if err := requireReviewer(reviewer); err != nil {
		return nil, err
	}
	reqs, err := s.sheets.ListPendingOvertime(ctx)
	return reqs, apperrors.MapError(err)
}

// DecideOvertime approves or rejects the overtime of one entry.
func (s *TimesheetService) DecideOvertime(ctx context.Context, reviewer *domain.Profile, entryID string, approve bool) (*domain.TimesheetEntry, error) {
	if err := requireReviewer(reviewer); err != nil {
		return nil, err
	}
	entry, err := s.sheets.GetEntry(ctx, entryID)
	if err != nil {
		return nil, apperrors.MapNotFound(err, "timesheet entry", map[string]any{"entry_id": entryID})
	}
	if entry.OvertimeStatus != domain.OvertimeStatusPending {
		return nil, apperrors.NewConflict("overtime is not pending", map[string]any{"overtime_status": entry.OvertimeStatus})
	}
	sheet, err := s.sheets.GetByID(ctx, entry.TimesheetID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	status := domain.OvertimeStatusRejected
	if approve {
		status = domain.OvertimeStatusApproved
	}
	if err := s.sheets.SetOvertimeStatus(ctx, entryID, status); err != nil {
		return nil, apperrors.MapNotFound(err, "timesheet entry", map[string]any{"entry_id": entryID})
	}
	entry.OvertimeStatus = status
	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:      events.EventOvertimeReviewed,
		SubjectID: entry.ID,
		ActorID:   reviewer.ID,
		Payload: events.OvertimeReviewedPayload{
			OwnerID:   sheet.UserID,
			EntryDate: entry.EntryDate,
			Hours:     entry.OvertimeHours,
			Status:    status,
		},
	})
	return entry, nil
}

// FillVacationLeave writes an 8 hour "Vacation Leave" entry on every weekday
// of the week that has no entry yet. It returns the ids of the created entries.
func (s *TimesheetService) FillVacationLeave(ctx context.Context, userID string, day time.Time) (*domain.Timesheet, []string, error) {
	sheet, err := s.GetWeek(ctx, userID, day)
	if err != nil {
		return nil, nil, err
	}
	if !sheet.Status.Editable() {
		return nil, nil, apperrors.NewConflict("timesheet is locked", map[string]any{"status": sheet.Status})
	}
	var created []string
	for _, weekday := range domain.Weekdays(sheet.WeekStart) {
		if hasEntryOn(sheet.Entries, weekday) {
			continue
		}
		_, entry, err := s.SaveEntry(ctx, userID, EntryInput{Date: weekday, Task: VacationLeaveTask, Hours: 8})
		if err != nil {
			return nil, created, err
		}
		created = append(created, entry.ID)
	}
	sheet, err = s.GetWeek(ctx, userID, day)
	if err != nil {
		return nil, created, err
	}
	return sheet, created, nil
}

// RemoveEntries deletes the given entries of the user, skipping ones already gone.
func (s *TimesheetService) RemoveEntries(ctx context.Context, userID string, entryIDs []string) error {
	for _, id := range entryIDs {
		if _, err := s.DeleteEntry(ctx, userID, id); err != nil {
			var domainErr *apperrors.DomainError
			if errors.As(err, &domainErr) && domainErr.Code == "NOT_FOUND" {
				continue
			}
			return err
		}
	}
	return nil
}

func (s *TimesheetService) ownedSheet(ctx context.Context, userID, sheetID string) (*domain.Timesheet, error) {
	sheet, err := s.sheets.GetByID(ctx, sheetID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("timesheet", map[string]any{"timesheet_id": sheetID})
		}
		return nil, apperrors.MapError(err)
	}
	if sheet.UserID != userID {
		return nil, apperrors.NewForbidden("timesheet belongs to another user")
	}
	return sheet, nil
}

func hasEntryOn(entries []domain.TimesheetEntry, day time.Time) bool {
	for _, e := range entries {
		if domain.SameDay(e.EntryDate, day) {
			return true
		}
	}
	return false
}

func requireReviewer(p *domain.Profile) error {
	if p == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if !p.Role.CanReview() {
		return apperrors.NewForbidden("reviewer role required")
	}
	return nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
