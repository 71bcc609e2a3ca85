package dto

import (
	"time"

	"github.com/aetherboard/aetherboard/internal/domain"
)

// SaveEntryRequest upserts the entry of one day.
type SaveEntryRequest struct {
	Date        string  `json:"date"`
	Task        string  `json:"task"`
	Hours       float64 `json:"hours"`
	Description string  `json:"description"`
}

// WeekRequest names a week by any of its days; empty means the current week.
type WeekRequest struct {
	Week string `json:"week"`
}

// ReviewRequest approves or rejects a sheet or an overtime entry.
type ReviewRequest struct {
	Approve bool `json:"approve"`
}

// TimesheetResponse describes a weekly sheet with its entries.
type TimesheetResponse struct {
	ID          string                 `json:"id"`
	UserID      string                 `json:"user_id"`
	WeekStart   string                 `json:"week_start"`
	Status      domain.TimesheetStatus `json:"status"`
	TotalHours  float64                `json:"total_hours"`
	SubmittedAt *time.Time             `json:"submitted_at"`
	ReviewedBy  *string                `json:"reviewed_by"`
	ReviewedAt  *time.Time             `json:"reviewed_at"`
	Entries     []EntryResponse        `json:"entries"`
}

// EntryResponse describes one day of a sheet.
type EntryResponse struct {
	ID             string                `json:"id"`
	TimesheetID    string                `json:"timesheet_id"`
	Date           string                `json:"date"`
	Task           string                `json:"task"`
	Hours          float64               `json:"hours"`
	Description    string                `json:"description"`
	OvertimeHours  float64               `json:"overtime_hours"`
	OvertimeStatus domain.OvertimeStatus `json:"overtime_status"`
}

// OvertimeResponse is a pending overtime entry with its owner.
type OvertimeResponse struct {
	Entry        EntryResponse `json:"entry"`
	UserID       string        `json:"user_id"`
	EmployeeName string        `json:"employee_name"`
}
