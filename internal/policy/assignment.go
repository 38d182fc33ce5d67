package policy

import (
	"github.com/helpdesk-central/ticket-hub/internal/domain"
	apperrors "github.com/helpdesk-central/ticket-hub/pkg/util"
)

// AgentPatch carries the agent portion of a ticket update. Set distinguishes
// "field absent from the patch" from an explicit value, including an explicit
// null used by administrators to clear the assignment.
type AgentPatch struct {
	Set     bool
	AgentID *int64
}

// ResolveAssignment decides the agent a ticket ends up with after a mutation.
// nextStatus is the status the same mutation will apply, needed for the
// claim-on-touch rule: an agent moving an unassigned ticket to in_progress
// implicitly claims it, whatever the patch says.
//
// Non-privileged callers may claim unassigned tickets (implicitly or by
// naming themselves) and re-save their own; every other agent change is a
// reassignment and is denied.
func ResolveAssignment(ticket *domain.Ticket, actor domain.Principal, patch AgentPatch, nextStatus domain.TicketStatus) (*int64, error) {
	if actor.Privileged {
		if patch.Set {
			return patch.AgentID, nil
		}
		return ticket.AgentID, nil
	}

	if !ticket.Assigned() {
		if nextStatus == domain.TicketStatusInProgress {
			claimed := actor.ID
			return &claimed, nil
		}
		if patch.Set && patch.AgentID != nil {
			if *patch.AgentID == actor.ID {
				claimed := actor.ID
				return &claimed, nil
			}
			return nil, apperrors.NewReassignmentDenied("agents may only claim tickets for themselves")
		}
		// Field absent, or an explicit clear of an already-absent agent.
		return nil, nil
	}

	if ticket.AssignedTo(actor.ID) {
		if !patch.Set || (patch.AgentID != nil && *patch.AgentID == actor.ID) {
			return ticket.AgentID, nil
		}
		return nil, apperrors.NewReassignmentDenied("agents may not release or hand over their tickets")
	}

	return nil, apperrors.NewReassignmentDenied("ticket already claimed by another agent")
}
