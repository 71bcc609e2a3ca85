package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/aetherboard/aetherboard/internal/domain"
	"github.com/aetherboard/aetherboard/internal/events"
	"github.com/aetherboard/aetherboard/internal/repository"
	apperrors "github.com/aetherboard/aetherboard/pkg/util/errorutil"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	comments   repository.TicketCommentRepository
	profiles   repository.ProfileRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	CommentRepo repository.TicketCommentRepository
	ProfileRepo repository.ProfileRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
	AssigneeID  *string
}

// TicketListFilter describes listing filters.
type TicketListFilter struct {
	Statuses   []domain.TicketStatus
	Priorities []domain.TicketPriority
	SearchTerm *string
	Limit      int
	Offset     int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		comments:   deps.CommentRepo,
		profiles:   deps.ProfileRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// CreateTicket opens a ticket for the caller.
func (s *TicketService) CreateTicket(ctx context.Context, caller *domain.Profile, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title is required", nil)
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !priority.Valid() {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": priority})
	}
	if input.AssigneeID != nil {
		if err := s.checkAssignee(ctx, *input.AssigneeID); err != nil {
			return nil, err
		}
	}

	ticket := &domain.Ticket{
		UserID:      caller.ID,
		AssigneeID:  input.AssigneeID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Priority:    priority,
		Status:      domain.TicketStatusOpen,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	if ticket.AssigneeID != nil && *ticket.AssigneeID != caller.ID {
		s.publishAssigned(ctx, caller.ID, ticket)
	}
	return ticket, nil
}

// ListTickets returns tickets the caller may see. Staff roles see all tickets.
func (s *TicketService) ListTickets(ctx context.Context, caller *domain.Profile, filter TicketListFilter) ([]domain.Ticket, error) {
	repoFilter := repository.TicketFilter{
		Statuses:   filter.Statuses,
		Priorities: filter.Priorities,
		SearchTerm: filter.SearchTerm,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	if !caller.Role.IsStaff() {
		repoFilter.ParticipantID = &caller.ID
	}
	tickets, err := s.tickets.List(ctx, repoFilter)
	return tickets, apperrors.MapError(err)
}

// GetTicket returns a ticket and its thread.
func (s *TicketService) GetTicket(ctx context.Context, caller *domain.Profile, ticketID string) (*domain.Ticket, []domain.TicketComment, error) {
	ticket, err := s.accessibleTicket(ctx, caller, ticketID)
	if err != nil {
		return nil, nil, err
	}
	comments, err := s.comments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return ticket, comments, nil
}

// AddComment appends to the thread and notifies the owner and assignee other
// than the commenter.
func (s *TicketService) AddComment(ctx context.Context, caller *domain.Profile, ticketID, body string) (*domain.TicketComment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewValidationError("comment is required", nil)
	}
	ticket, err := s.accessibleTicket(ctx, caller, ticketID)
	if err != nil {
		return nil, err
	}
	comment := &domain.TicketComment{TicketID: ticket.ID, UserID: caller.ID, Comment: body}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}

	recipients := commentRecipients(ticket, caller.ID)
	if len(recipients) > 0 {
		publishEvent(ctx, s.dispatcher, s.logger, events.Event{
			Type:      events.EventTicketCommentAdded,
			SubjectID: ticket.ID,
			ActorID:   caller.ID,
			Payload: events.TicketCommentAddedPayload{
				CommentID:   comment.ID,
				TicketTitle: ticket.Title,
				Recipients:  recipients,
				Preview:     stringPreview(body, 120),
			},
		})
	}
	return comment, nil
}

// UpdateStatus moves a ticket along its lifecycle. Owners may only close
// their own tickets; staff may make any allowed transition.
func (s *TicketService) UpdateStatus(ctx context.Context, caller *domain.Profile, ticketID string, status domain.TicketStatus) (*domain.Ticket, error) {
	ticket, err := s.accessibleTicket(ctx, caller, ticketID)
	if err != nil {
		return nil, err
	}
	if !caller.Role.IsStaff() && status != domain.TicketStatusClosed {
		return nil, apperrors.NewForbidden("only staff can change ticket status")
	}
	if !domain.CanTransition(ticket.Status, status) {
		return nil, apperrors.NewValidationError("invalid status transition", map[string]any{
			"from": ticket.Status,
			"to":   status,
		})
	}
	ticket.Status = status
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapNotFound(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	return ticket, nil
}

// AssignTicket sets or clears the assignee. Staff only.
func (s *TicketService) AssignTicket(ctx context.Context, caller *domain.Profile, ticketID string, assigneeID *string) (*domain.Ticket, error) {
	if !caller.Role.IsStaff() {
		return nil, apperrors.NewForbidden("only staff can assign tickets")
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapNotFound(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	if assigneeID != nil {
		if err := s.checkAssignee(ctx, *assigneeID); err != nil {
			return nil, err
		}
	}
	previous := ticket.AssigneeID
	ticket.AssigneeID = assigneeID
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapNotFound(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	if assigneeID != nil && (previous == nil || *previous != *assigneeID) && *assigneeID != caller.ID {
		s.publishAssigned(ctx, caller.ID, ticket)
	}
	return ticket, nil
}

func (s *TicketService) checkAssignee(ctx context.Context, assigneeID string) error {
	if _, err := s.profiles.GetByID(ctx, assigneeID); err != nil {
		return apperrors.MapNotFound(err, "assignee", map[string]any{"assignee_id": assigneeID})
	}
	return nil
}

func (s *TicketService) accessibleTicket(ctx context.Context, caller *domain.Profile, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapNotFound(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	if !canAccessTicket(caller, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return ticket, nil
}

func (s *TicketService) publishAssigned(ctx context.Context, actorID string, ticket *domain.Ticket) {
	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:      events.EventTicketAssigned,
		SubjectID: ticket.ID,
		ActorID:   actorID,
		Payload: events.TicketAssignedPayload{
			AssigneeID:  *ticket.AssigneeID,
			TicketTitle: ticket.Title,
		},
	})
}

func canAccessTicket(caller *domain.Profile, ticket *domain.Ticket) bool {
	if caller == nil {
		return false
	}
	if caller.Role.IsStaff() || ticket.UserID == caller.ID {
		return true
	}
	return ticket.AssigneeID != nil && *ticket.AssigneeID == caller.ID
}

func commentRecipients(ticket *domain.Ticket, commenterID string) []string {
	var out []string
	if ticket.UserID != commenterID {
		out = append(out, ticket.UserID)
	}
	if ticket.AssigneeID != nil && *ticket.AssigneeID != commenterID && *ticket.AssigneeID != ticket.UserID {
		out = append(out, *ticket.AssigneeID)
	}
	return out
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if utf8.RuneCountInString(body) <= max {
		return body
	}
	runes := []rune(body)
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
