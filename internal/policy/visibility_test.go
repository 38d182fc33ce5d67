package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/helpdesk-central/ticket-hub/internal/domain"
)

func TestVisible(t *testing.T) {
	unassigned := unassignedTicket()
	ownedByA := ticketOwnedBy(agentA.ID)
	ownedByB := ticketOwnedBy(agentB.ID)

	assert.True(t, Visible(agentA, unassigned))
	assert.True(t, Visible(agentA, ownedByA))
	assert.False(t, Visible(agentA, ownedByB))

	assert.True(t, Visible(admin, unassigned))
	assert.True(t, Visible(admin, ownedByA))
	assert.True(t, Visible(admin, ownedByB))
}

func TestFilter(t *testing.T) {
	tickets := []domain.Ticket{
		{ID: 1},
		{ID: 2, AgentID: ptr(agentA.ID)},
		{ID: 3, AgentID: ptr(agentB.ID)},
	}

	visible := Filter(agentA, tickets)
	ids := make([]int64, 0, len(visible))
	for _, ticket := range visible {
		ids = append(ids, ticket.ID)
	}
	assert.Equal(t, []int64{1, 2}, ids)

	assert.Len(t, Filter(admin, tickets), 3)
}
