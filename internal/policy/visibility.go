package policy

import "github.com/helpdesk-central/ticket-hub/internal/domain"

// Visible reports whether the principal may see the ticket. Privileged
// principals see everything; agents see unassigned tickets and their own.
// Callers must surface an invisible ticket as not found, never as forbidden,
// so existence is not leaked.
func Visible(p domain.Principal, ticket *domain.Ticket) bool {
	if p.Privileged {
		return true
	}
	return !ticket.Assigned() || ticket.AssignedTo(p.ID)
}

// Filter returns the tickets visible to the principal, preserving order.
func Filter(p domain.Principal, tickets []domain.Ticket) []domain.Ticket {
	if p.Privileged {
		return tickets
	}
	visible := make([]domain.Ticket, 0, len(tickets))
	for i := range tickets {
		if Visible(p, &tickets[i]) {
			visible = append(visible, tickets[i])
		}
	}
	return visible
}
