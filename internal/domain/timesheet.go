package domain

import (
	"math"
	"time"
)

// TimesheetStatus enumerates the weekly sheet lifecycle.
type TimesheetStatus string

const (
	TimesheetStatusDraft     TimesheetStatus = "draft"
	TimesheetStatusSubmitted TimesheetStatus = "submitted"
	TimesheetStatusApproved  TimesheetStatus = "approved"
	TimesheetStatusRejected  TimesheetStatus = "rejected"
)

// Editable reports whether entries may still change.
func (s TimesheetStatus) Editable() bool {
	return s == TimesheetStatusDraft || s == TimesheetStatusRejected
}

// OvertimeStatus tracks the approval of hours above the daily threshold.
type OvertimeStatus string

const (
	OvertimeStatusNone     OvertimeStatus = "none"
	OvertimeStatusPending  OvertimeStatus = "pending"
	OvertimeStatusApproved OvertimeStatus = "approved"
	OvertimeStatusRejected OvertimeStatus = "rejected"
)

// Timesheet is the weekly header row.
type Timesheet struct {
	ID          string
	UserID      string
	WeekStart   time.Time
	Status      TimesheetStatus
	TotalHours  float64
	SubmittedAt *time.Time
	ReviewedBy  *string
	ReviewedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Entries     []TimesheetEntry
}

// TimesheetEntry is one day of work inside a weekly sheet.
type TimesheetEntry struct {
	ID             string
	TimesheetID    string
	EntryDate      time.Time
	Task           string
	Hours          float64
	Description    string
	OvertimeHours  float64
	OvertimeStatus OvertimeStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TimesheetTasks are the task options offered for an entry.
var TimesheetTasks = []string{"IT Management", "Development", "Testing", "Vacation Leave", "Sick Leave"}

// ValidTimesheetTask reports whether task is one of TimesheetTasks.
func ValidTimesheetTask(task string) bool {
	for _, t := range TimesheetTasks {
		if t == task {
			return true
		}
	}
	return false
}

// WeekStart returns the Monday (00:00 UTC) of the week containing t.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// Weekdays returns Monday through Friday of the week starting at weekStart.
func Weekdays(weekStart time.Time) []time.Time {
	days := make([]time.Time, 0, 5)
	for i := 0; i < 5; i++ {
		days = append(days, weekStart.AddDate(0, 0, i))
	}
	return days
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// SumHours is the arithmetic total of the entries, rounded to cents.
func SumHours(entries []TimesheetEntry) float64 {
	total := 0.0
	for _, e := range entries {
		total += e.Hours
	}
	return math.Round(total*100) / 100
}

// OvertimeFor returns the hours above the daily threshold.
func OvertimeFor(hours, dailyThreshold float64) float64 {
	if dailyThreshold <= 0 || hours <= dailyThreshold {
		return 0
	}
	return math.Round((hours-dailyThreshold)*100) / 100
}

// OvertimeRequest is a pending overtime entry together with its owner.
type OvertimeRequest struct {
	Entry        TimesheetEntry
	UserID       string
	EmployeeName string
}
