package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpdesk-central/ticket-hub/internal/domain"
	apperrors "github.com/helpdesk-central/ticket-hub/pkg/util"
)

var (
	agentA = domain.Principal{ID: 1, Username: "amadou"}
	agentB = domain.Principal{ID: 2, Username: "brigitte"}
	admin  = domain.Principal{ID: 9, Username: "root", Privileged: true}
)

func ptr(v int64) *int64 { return &v }

func unassignedTicket() *domain.Ticket {
	return &domain.Ticket{ID: 100, Status: domain.TicketStatusNew}
}

func ticketOwnedBy(agentID int64) *domain.Ticket {
	return &domain.Ticket{ID: 100, Status: domain.TicketStatusInProgress, AgentID: ptr(agentID)}
}

func TestResolveAssignmentClaimOnTouch(t *testing.T) {
	// Moving an unassigned ticket to in_progress binds the actor, even when
	// the patch carries no agent at all.
	got, err := ResolveAssignment(unassignedTicket(), agentA, AgentPatch{}, domain.TicketStatusInProgress)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, agentA.ID, *got)
}

func TestResolveAssignmentClaimOnTouchOverridesPatch(t *testing.T) {
	// The requested agent is ignored on the claim path; the actor claims.
	got, err := ResolveAssignment(unassignedTicket(), agentA, AgentPatch{Set: true, AgentID: ptr(agentB.ID)}, domain.TicketStatusInProgress)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, agentA.ID, *got)
}

func TestResolveAssignmentSelfClaim(t *testing.T) {
	got, err := ResolveAssignment(unassignedTicket(), agentA, AgentPatch{Set: true, AgentID: ptr(agentA.ID)}, domain.TicketStatusNew)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, agentA.ID, *got)
}

func TestResolveAssignmentBindOtherDenied(t *testing.T) {
	_, err := ResolveAssignment(unassignedTicket(), agentA, AgentPatch{Set: true, AgentID: ptr(agentB.ID)}, domain.TicketStatusNew)
	require.Error(t, err)
	assert.Equal(t, "REASSIGNMENT_DENIED", apperrors.ToDomainError(err).Code)
}

func TestResolveAssignmentUntouchedStaysUnassigned(t *testing.T) {
	got, err := ResolveAssignment(unassignedTicket(), agentA, AgentPatch{}, domain.TicketStatusIgnored)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestResolveAssignmentClearAbsentIsNoop(t *testing.T) {
	got, err := ResolveAssignment(unassignedTicket(), agentA, AgentPatch{Set: true}, domain.TicketStatusNew)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestResolveAssignmentResaveOwnTicket(t *testing.T) {
	ticket := ticketOwnedBy(agentA.ID)

	got, err := ResolveAssignment(ticket, agentA, AgentPatch{}, domain.TicketStatusResolved)
	require.NoError(t, err)
	assert.Equal(t, agentA.ID, *got)

	got, err = ResolveAssignment(ticket, agentA, AgentPatch{Set: true, AgentID: ptr(agentA.ID)}, domain.TicketStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, agentA.ID, *got)
}

func TestResolveAssignmentOwnTicketHandoverDenied(t *testing.T) {
	ticket := ticketOwnedBy(agentA.ID)

	_, err := ResolveAssignment(ticket, agentA, AgentPatch{Set: true, AgentID: ptr(agentB.ID)}, domain.TicketStatusInProgress)
	require.Error(t, err)
	assert.Equal(t, "REASSIGNMENT_DENIED", apperrors.ToDomainError(err).Code)

	_, err = ResolveAssignment(ticket, agentA, AgentPatch{Set: true}, domain.TicketStatusInProgress)
	require.Error(t, err)
	assert.Equal(t, "REASSIGNMENT_DENIED", apperrors.ToDomainError(err).Code)
}

func TestResolveAssignmentClaimedByOtherDenied(t *testing.T) {
	ticket := ticketOwnedBy(agentB.ID)

	for _, patch := range []AgentPatch{
		{},
		{Set: true, AgentID: ptr(agentA.ID)},
		{Set: true},
	} {
		_, err := ResolveAssignment(ticket, agentA, patch, domain.TicketStatusInProgress)
		require.Error(t, err)
		assert.Equal(t, "REASSIGNMENT_DENIED", apperrors.ToDomainError(err).Code)
	}
}

func TestResolveAssignmentPrivileged(t *testing.T) {
	ticket := ticketOwnedBy(agentA.ID)

	got, err := ResolveAssignment(ticket, admin, AgentPatch{Set: true, AgentID: ptr(agentB.ID)}, domain.TicketStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, agentB.ID, *got)

	got, err = ResolveAssignment(ticket, admin, AgentPatch{Set: true}, domain.TicketStatusInProgress)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = ResolveAssignment(ticket, admin, AgentPatch{}, domain.TicketStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, agentA.ID, *got)
}
