package domain

import "time"

// TicketStatus enumerates lifecycle states for complaint tickets.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "new"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusIgnored    TicketStatus = "ignored"
)

// Valid reports whether the status belongs to the enumeration.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusNew, TicketStatusInProgress, TicketStatusResolved, TicketStatusIgnored:
		return true
	}
	return false
}

// Terminal reports whether the status has no outgoing transitions for agents.
func (s TicketStatus) Terminal() bool {
	return s == TicketStatusResolved || s == TicketStatusIgnored
}

// TicketPriority enumerates urgency levels computed at intake.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "low"
	TicketPriorityMedium   TicketPriority = "medium"
	TicketPriorityCritical TicketPriority = "critical"
)

// Valid reports whether the priority belongs to the enumeration.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityCritical:
		return true
	}
	return false
}

// Ticket is the aggregate for complaints submitted by external platforms.
//
// SubmissionDate and PlatformName are write-once: set at creation and never
// updated afterwards. AgentID is a weak reference to the handling agent;
// deleting the agent reverts the field to nil without touching the ticket.
type Ticket struct {
	ID             int64
	FirstName      string
	LastName       string
	Email          string
	Subject        string
	Message        string
	SubmissionDate time.Time
	PlatformName   string
	Status         TicketStatus
	Priority       TicketPriority
	AgentID        *int64
}

// Assigned reports whether the ticket is bound to an agent.
func (t *Ticket) Assigned() bool {
	return t.AgentID != nil
}

// AssignedTo reports whether the ticket is bound to the given agent.
func (t *Ticket) AssignedTo(agentID int64) bool {
	return t.AgentID != nil && *t.AgentID == agentID
}
