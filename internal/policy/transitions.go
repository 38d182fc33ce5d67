package policy

import (
	"github.com/helpdesk-central/ticket-hub/internal/domain"
	apperrors "github.com/helpdesk-central/ticket-hub/pkg/util"
)

// agentTransitions is the single source of truth for the non-privileged
// status machine. Both ValidateTransition and AllowedStatuses derive from it;
// resolved and ignored are terminal for agents.
var agentTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusNew:        {domain.TicketStatusInProgress, domain.TicketStatusIgnored},
	domain.TicketStatusInProgress: {domain.TicketStatusResolved, domain.TicketStatusIgnored},
	domain.TicketStatusResolved:   {},
	domain.TicketStatusIgnored:    {},
}

// ValidateTransition checks whether the caller may move a ticket from current
// to requested. Re-submitting the current status is always allowed, and a
// privileged caller bypasses the transition table entirely.
func ValidateTransition(current, requested domain.TicketStatus, privileged bool) error {
	if !requested.Valid() {
		return apperrors.NewValidationError("unknown status", map[string]any{
			"status": string(requested),
		})
	}
	if privileged || requested == current {
		return nil
	}
	for _, candidate := range agentTransitions[current] {
		if candidate == requested {
			return nil
		}
	}
	return apperrors.NewIllegalTransition(string(current), string(requested))
}

// AllowedStatuses lists the statuses the caller may set on a ticket in the
// given state, the current status included. The console uses this to narrow
// its status dropdown so enforcement and presentation never diverge.
func AllowedStatuses(current domain.TicketStatus, privileged bool) []domain.TicketStatus {
	if privileged {
		return []domain.TicketStatus{
			domain.TicketStatusNew,
			domain.TicketStatusInProgress,
			domain.TicketStatusResolved,
			domain.TicketStatusIgnored,
		}
	}
	allowed := []domain.TicketStatus{current}
	allowed = append(allowed, agentTransitions[current]...)
	return allowed
}
