package events

import (
	"time"

	"github.com/aetherboard/aetherboard/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTimesheetReviewed  EventType = "timesheet_reviewed"
	EventOvertimeReviewed   EventType = "overtime_reviewed"
	EventTicketCommentAdded EventType = "ticket_comment_added"
	EventTicketAssigned     EventType = "ticket_assigned"
	EventPayrollPaid        EventType = "payroll_paid"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TimesheetReviewedPayload payload.
type TimesheetReviewedPayload struct {
	OwnerID   string                 `json:"owner_id"`
	WeekStart time.Time              `json:"week_start"`
	Status    domain.TimesheetStatus `json:"status"`
}

// OvertimeReviewedPayload payload.
type OvertimeReviewedPayload struct {
	OwnerID   string                `json:"owner_id"`
	EntryDate time.Time             `json:"entry_date"`
	Hours     float64               `json:"hours"`
	Status    domain.OvertimeStatus `json:"status"`
}

// TicketCommentAddedPayload payload. Recipients already excludes the commenter.
type TicketCommentAddedPayload struct {
	CommentID   string   `json:"comment_id"`
	TicketTitle string   `json:"ticket_title"`
	Recipients  []string `json:"recipients"`
	Preview     string   `json:"preview"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssigneeID  string `json:"assignee_id"`
	TicketTitle string `json:"ticket_title"`
}

// PayrollPaidPayload payload.
type PayrollPaidPayload struct {
	UserID string        `json:"user_id"`
	Cutoff domain.Cutoff `json:"cutoff"`
	NetPay float64       `json:"net_pay"`
}
