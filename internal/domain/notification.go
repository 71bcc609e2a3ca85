package domain

import "time"

// NotificationKind classifies what produced a notification.
type NotificationKind string

const (
	NotificationGeneral         NotificationKind = "general"
	NotificationTimesheetReview NotificationKind = "timesheet_review"
	NotificationOvertimeReview  NotificationKind = "overtime_review"
	NotificationTicketComment   NotificationKind = "ticket_comment"
	NotificationTicketAssigned  NotificationKind = "ticket_assigned"
	NotificationPayroll         NotificationKind = "payroll"
)

// Notification is surfaced to a single user through the realtime feed.
type Notification struct {
	ID        string
	UserID    string
	Kind      NotificationKind
	Message   string
	Read      bool
	CreatedAt time.Time
}
