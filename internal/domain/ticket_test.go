package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTicketTransitions(t *testing.T) {
	assert.True(t, CanTransition(TicketStatusOpen, TicketStatusInProgress))
	assert.True(t, CanTransition(TicketStatusResolved, TicketStatusInProgress))
	assert.False(t, CanTransition(TicketStatusClosed, TicketStatusOpen))
	assert.False(t, CanTransition(TicketStatusOpen, TicketStatusOpen))
}

func TestRoleCapabilities(t *testing.T) {
	assert.True(t, RoleManager.CanReview())
	assert.False(t, RoleEmployee.CanReview())
	assert.True(t, RoleHR.CanManagePayroll())
	assert.False(t, RoleManager.CanManagePayroll())
	assert.False(t, Role("owner").Valid())
}
