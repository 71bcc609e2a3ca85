package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aetherboard/aetherboard/internal/domain"
)

type ticketFixture struct {
	svc   *TicketService
	notes *fakeNotificationRepo
	owner *domain.Profile
	agent *domain.Profile
	staff *domain.Profile
	other *domain.Profile
}

func newTicketFixture() *ticketFixture {
	f := &ticketFixture{
		owner: &domain.Profile{ID: "owner", Role: domain.RoleEmployee},
		agent: &domain.Profile{ID: "agent", Role: domain.RoleEmployee},
		staff: &domain.Profile{ID: "staff", Role: domain.RoleManager},
		other: &domain.Profile{ID: "other", Role: domain.RoleEmployee},
	}
	dispatcher, notes := notifier(nil)
	f.notes = notes
	f.svc = NewTicketService(TicketDependencies{
		TicketRepo:  newFakeTicketRepo(),
		CommentRepo: &fakeCommentRepo{},
		ProfileRepo: newFakeProfileRepo(f.owner, f.agent, f.staff, f.other),
		Dispatcher:  dispatcher,
	})
	return f
}

func (f *ticketFixture) recipientsOf(kind domain.NotificationKind) []string {
	var out []string
	for _, n := range f.notes.rows {
		if n.Kind == kind {
			out = append(out, n.UserID)
		}
	}
	return out
}

func TestCreateTicketDefaults(t *testing.T) {
	f := newTicketFixture()
	ticket, err := f.svc.CreateTicket(context.Background(), f.owner, TicketCreateInput{Title: " VPN broken "})
	require.NoError(t, err)
	assert.Equal(t, "VPN broken", ticket.Title)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)

	_, err = f.svc.CreateTicket(context.Background(), f.owner, TicketCreateInput{Title: "x", Priority: "asap"})
	assert.Equal(t, "VALIDATION_FAILED", errorCode(err))
	missing := "ghost"
	_, err = f.svc.CreateTicket(context.Background(), f.owner, TicketCreateInput{Title: "x", AssigneeID: &missing})
	assert.Equal(t, "NOT_FOUND", errorCode(err))
}

func TestCommentNotifiesParticipantsExceptCommenter(t *testing.T) {
	ctx := context.Background()
	f := newTicketFixture()
	ticket, err := f.svc.CreateTicket(ctx, f.owner, TicketCreateInput{Title: "Printer"})
	require.NoError(t, err)
	_, err = f.svc.AssignTicket(ctx, f.staff, ticket.ID, &f.agent.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"agent"}, f.recipientsOf(domain.NotificationTicketAssigned))

	_, err = f.svc.AddComment(ctx, f.staff, ticket.ID, "looking into it")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"owner", "agent"}, f.recipientsOf(domain.NotificationTicketComment))

	_, err = f.svc.AddComment(ctx, f.owner, ticket.ID, "thanks")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"owner", "agent", "agent"}, f.recipientsOf(domain.NotificationTicketComment))

	_, err = f.svc.AddComment(ctx, f.other, ticket.ID, "me too")
	assert.Equal(t, "FORBIDDEN", errorCode(err))

	_, comments, err := f.svc.GetTicket(ctx, f.agent, ticket.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 2)
}

func TestListTicketsScopesEmployees(t *testing.T) {
	ctx := context.Background()
	f := newTicketFixture()
	_, err := f.svc.CreateTicket(ctx, f.owner, TicketCreateInput{Title: "mine"})
	require.NoError(t, err)
	_, err = f.svc.CreateTicket(ctx, f.other, TicketCreateInput{Title: "theirs"})
	require.NoError(t, err)

	own, err := f.svc.ListTickets(ctx, f.owner, TicketListFilter{})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "mine", own[0].Title)

	all, err := f.svc.ListTickets(ctx, f.staff, TicketListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdateStatusRules(t *testing.T) {
	ctx := context.Background()
	f := newTicketFixture()
	ticket, err := f.svc.CreateTicket(ctx, f.owner, TicketCreateInput{Title: "Laptop"})
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, f.owner, ticket.ID, domain.TicketStatusInProgress)
	assert.Equal(t, "FORBIDDEN", errorCode(err))

	updated, err := f.svc.UpdateStatus(ctx, f.staff, ticket.ID, domain.TicketStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, updated.Status)

	closed, err := f.svc.UpdateStatus(ctx, f.owner, ticket.ID, domain.TicketStatusClosed)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, closed.Status)

	_, err = f.svc.UpdateStatus(ctx, f.staff, ticket.ID, domain.TicketStatusOpen)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(err))
}

func TestStringPreviewIsRuneSafe(t *testing.T) {
	assert.Equal(t, "short", stringPreview(" short ", 10))
	assert.Equal(t, "héllo w...", stringPreview("héllo wörld and more", 10))
}
