package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/aetherboard/aetherboard/internal/api/dto"
	"github.com/aetherboard/aetherboard/internal/domain"
	"github.com/aetherboard/aetherboard/internal/service"
)

// TimesheetService is the weekly timesheet surface used by TimesheetHandler.
type TimesheetService interface {
	Today() time.Time
	GetWeek(ctx context.Context, userID string, day time.Time) (*domain.Timesheet, error)
	SaveEntry(ctx context.Context, userID string, in service.EntryInput) (*domain.Timesheet, *domain.TimesheetEntry, error)
	DeleteEntry(ctx context.Context, userID, entryID string) (*domain.Timesheet, error)
	Submit(ctx context.Context, userID string, day time.Time) (*domain.Timesheet, error)
	Withdraw(ctx context.Context, userID, sheetID string) (*domain.Timesheet, error)
	FillVacationLeave(ctx context.Context, userID string, day time.Time) (*domain.Timesheet, []string, error)
	ListForReview(ctx context.Context, reviewer *domain.Profile, status domain.TimesheetStatus, week *time.Time) ([]domain.Timesheet, error)
	Review(ctx context.Context, reviewer *domain.Profile, sheetID string, approve bool) (*domain.Timesheet, error)
	ReopenReview(ctx context.Context, reviewer *domain.Profile, sheetID string) (*domain.Timesheet, error)
	ListPendingOvertime(ctx context.Context, reviewer *domain.Profile) ([]domain.OvertimeRequest, error)
	DecideOvertime(ctx context.Context, reviewer *domain.Profile, entryID string, approve bool) (*domain.TimesheetEntry, error)
}

// TimesheetHandler exposes the employee and reviewer timesheet pages.
type TimesheetHandler struct {
	service TimesheetService
}

// NewTimesheetHandler constructs handler.
func NewTimesheetHandler(timesheets TimesheetService) *TimesheetHandler {
	return &TimesheetHandler{service: timesheets}
}

// GetWeek GET /timesheets/week?week=YYYY-MM-DD.
func (h *TimesheetHandler) GetWeek(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	day, err := parseDate("week", c.Query("week"), h.service.Today())
	if err != nil {
		return err
	}
	sheet, err := h.service.GetWeek(c.UserContext(), profile.ID, day)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": timesheetResponse(sheet)})
}

// SaveEntry PUT /timesheets/entries. A second entry for the same day updates it.
func (h *TimesheetHandler) SaveEntry(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	var req dto.SaveEntryRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	date, err := parseDate("date", req.Date, h.service.Today())
	if err != nil {
		return err
	}
	sheet, _, err := h.service.SaveEntry(c.UserContext(), profile.ID, service.EntryInput{
		Date:        date,
		Task:        req.Task,
		Hours:       req.Hours,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": timesheetResponse(sheet)})
}

// DeleteEntry DELETE /timesheets/entries/:id.
func (h *TimesheetHandler) DeleteEntry(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	sheet, err := h.service.DeleteEntry(c.UserContext(), profile.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": timesheetResponse(sheet)})
}

// Submit POST /timesheets/submit.
func (h *TimesheetHandler) Submit(c *fiber.Ctx) error {
	profile, day, err := h.weekRequest(c)
	if err != nil {
		return err
	}
	sheet, err := h.service.Submit(c.UserContext(), profile.ID, day)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": timesheetResponse(sheet)})
}

// FillVacation POST /timesheets/vacation.
func (h *TimesheetHandler) FillVacation(c *fiber.Ctx) error {
	profile, day, err := h.weekRequest(c)
	if err != nil {
		return err
	}
	sheet, created, err := h.service.FillVacationLeave(c.UserContext(), profile.ID, day)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"timesheet":       timesheetResponse(sheet),
		"created_entries": created,
	}})
}

// Withdraw POST /timesheets/:id/withdraw.
func (h *TimesheetHandler) Withdraw(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	sheet, err := h.service.Withdraw(c.UserContext(), profile.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": timesheetResponse(sheet)})
}

// ListForReview GET /timesheets/review?status=&week=.
func (h *TimesheetHandler) ListForReview(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	var week *time.Time
	if raw := c.Query("week"); raw != "" {
		day, err := parseDate("week", raw, time.Time{})
		if err != nil {
			return err
		}
		week = &day
	}
	sheets, err := h.service.ListForReview(c.UserContext(), profile, domain.TimesheetStatus(c.Query("status")), week)
	if err != nil {
		return err
	}
	items := make([]dto.TimesheetResponse, 0, len(sheets))
	for i := range sheets {
		items = append(items, timesheetResponse(&sheets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Review POST /timesheets/:id/review.
func (h *TimesheetHandler) Review(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	var req dto.ReviewRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	sheet, err := h.service.Review(c.UserContext(), profile, c.Params("id"), req.Approve)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": timesheetResponse(sheet)})
}

// Reopen POST /timesheets/:id/reopen.
func (h *TimesheetHandler) Reopen(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	sheet, err := h.service.ReopenReview(c.UserContext(), profile, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": timesheetResponse(sheet)})
}

// ListOvertime GET /overtime.
func (h *TimesheetHandler) ListOvertime(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	reqs, err := h.service.ListPendingOvertime(c.UserContext(), profile)
	if err != nil {
		return err
	}
	items := make([]dto.OvertimeResponse, 0, len(reqs))
	for i := range reqs {
		items = append(items, dto.OvertimeResponse{
			Entry:        entryResponse(&reqs[i].Entry),
			UserID:       reqs[i].UserID,
			EmployeeName: reqs[i].EmployeeName,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// DecideOvertime POST /overtime/:id/decision.
func (h *TimesheetHandler) DecideOvertime(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	var req dto.ReviewRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	entry, err := h.service.DecideOvertime(c.UserContext(), profile, c.Params("id"), req.Approve)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": entryResponse(entry)})
}

func (h *TimesheetHandler) weekRequest(c *fiber.Ctx) (*domain.Profile, time.Time, error) {
	profile, err := currentProfile(c)
	if err != nil {
		return nil, time.Time{}, err
	}
	var req dto.WeekRequest
	if len(c.Body()) > 0 {
		if err := bindJSON(c, &req); err != nil {
			return nil, time.Time{}, err
		}
	}
	day, err := parseDate("week", req.Week, h.service.Today())
	if err != nil {
		return nil, time.Time{}, err
	}
	return profile, day, nil
}

func timesheetResponse(s *domain.Timesheet) dto.TimesheetResponse {
	entries := make([]dto.EntryResponse, 0, len(s.Entries))
	for i := range s.Entries {
		entries = append(entries, entryResponse(&s.Entries[i]))
	}
	return dto.TimesheetResponse{
		ID:          s.ID,
		UserID:      s.UserID,
		WeekStart:   s.WeekStart.Format(domain.DateLayout),
		Status:      s.Status,
		TotalHours:  s.TotalHours,
		SubmittedAt: s.SubmittedAt,
		ReviewedBy:  s.ReviewedBy,
		ReviewedAt:  s.ReviewedAt,
		Entries:     entries,
	}
}

func entryResponse(e *domain.TimesheetEntry) dto.EntryResponse {
	return dto.EntryResponse{
		ID:             e.ID,
		TimesheetID:    e.TimesheetID,
		Date:           e.EntryDate.Format(domain.DateLayout),
		Task:           e.Task,
		Hours:          e.Hours,
		Description:    e.Description,
		OvertimeHours:  e.OvertimeHours,
		OvertimeStatus: e.OvertimeStatus,
	}
}
