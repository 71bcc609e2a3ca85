package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/aetherboard/aetherboard/internal/domain"
	"github.com/aetherboard/aetherboard/internal/events"
	"github.com/aetherboard/aetherboard/internal/realtime"
	"github.com/aetherboard/aetherboard/internal/repository"
	apperrors "github.com/aetherboard/aetherboard/pkg/util/errorutil"
)

// NotificationService turns domain events into notification rows and pushes
// each new row to its recipient's realtime feed.
type NotificationService struct {
	notifications repository.NotificationRepository
	dispatcher    events.Dispatcher
	publisher     changePublisher
	logger        *zap.Logger
}

// NotificationDependencies bundles collaborators for the notification service.
type NotificationDependencies struct {
	NotificationRepo repository.NotificationRepository
	Dispatcher       events.Dispatcher
	Broker           realtime.Broker
	Logger           *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		notifications: deps.NotificationRepo,
		dispatcher:    deps.Dispatcher,
		publisher:     newChangePublisher(deps.Broker, logger),
		logger:        logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTimesheetReviewed, n.handleTimesheetReviewed)
	n.dispatcher.Subscribe(events.EventOvertimeReviewed, n.handleOvertimeReviewed)
	n.dispatcher.Subscribe(events.EventTicketCommentAdded, n.handleTicketCommentAdded)
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.handleTicketAssigned)
	n.dispatcher.Subscribe(events.EventPayrollPaid, n.handlePayrollPaid)
}

// Notify stores a notification and publishes it to the recipient.
func (n *NotificationService) Notify(ctx context.Context, userID string, kind domain.NotificationKind, message string) (*domain.Notification, error) {
	message = strings.TrimSpace(message)
	if userID == "" || message == "" {
		return nil, apperrors.NewValidationError("recipient and message are required", nil)
	}
	if kind == "" {
		kind = domain.NotificationGeneral
	}
	note := &domain.Notification{UserID: userID, Kind: kind, Message: message}
	if err := n.notifications.Create(ctx, note); err != nil {
		return nil, apperrors.MapError(err)
	}
	n.publisher.change(ctx, realtime.NotificationTopic(userID), "notifications", realtime.ChangeInsert, realtime.NotificationRecordFrom(*note), nil)
	return note, nil
}

// List returns the user's most recent notifications.
func (n *NotificationService) List(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	notes, err := n.notifications.ListByUser(ctx, userID, limit)
	return notes, apperrors.MapError(err)
}

func (n *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	if err := n.notifications.MarkRead(ctx, id, userID); err != nil {
		return apperrors.MapNotFound(err, "notification", map[string]any{"notification_id": id})
	}
	return nil
}

func (n *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	updated, err := n.notifications.MarkAllRead(ctx, userID)
	return updated, apperrors.MapError(err)
}

func (n *NotificationService) handleTimesheetReviewed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TimesheetReviewedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	msg := fmt.Sprintf("Your timesheet for the week of %s was %s.", payload.WeekStart.Format(domain.DateLayout), payload.Status)
	return n.deliver(ctx, event, payload.OwnerID, domain.NotificationTimesheetReview, msg)
}

func (n *NotificationService) handleOvertimeReviewed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.OvertimeReviewedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	msg := fmt.Sprintf("Your overtime of %gh on %s was %s.", payload.Hours, payload.EntryDate.Format(domain.DateLayout), payload.Status)
	return n.deliver(ctx, event, payload.OwnerID, domain.NotificationOvertimeReview, msg)
}

func (n *NotificationService) handleTicketCommentAdded(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCommentAddedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	msg := fmt.Sprintf("New comment on %q: %s", payload.TicketTitle, payload.Preview)
	var firstErr error
	for _, recipient := range payload.Recipients {
		if err := n.deliver(ctx, event, recipient, domain.NotificationTicketComment, msg); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (n *NotificationService) handleTicketAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketAssignedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	msg := fmt.Sprintf("You were assigned ticket %q.", payload.TicketTitle)
	return n.deliver(ctx, event, payload.AssigneeID, domain.NotificationTicketAssigned, msg)
}

func (n *NotificationService) handlePayrollPaid(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.PayrollPaidPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	msg := fmt.Sprintf("Your payroll for %s was paid (net %.2f).", payload.Cutoff, payload.NetPay)
	return n.deliver(ctx, event, payload.UserID, domain.NotificationPayroll, msg)
}

func (n *NotificationService) deliver(ctx context.Context, event events.Event, userID string, kind domain.NotificationKind, msg string) error {
	if _, err := n.Notify(ctx, userID, kind, msg); err != nil {
		n.logger.Error("notification insert failed",
			zap.String("event_type", string(event.Type)),
			zap.String("subject_id", event.SubjectID),
			zap.String("user_id", userID),
			zap.Error(err))
		return err
	}
	n.logger.Debug("notification delivered",
		zap.String("event_type", string(event.Type)),
		zap.String("user_id", userID))
	return nil
}
