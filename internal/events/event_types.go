package events

import (
	"time"

	"github.com/helpdesk-central/ticket-hub/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketReceived      EventType = "ticket_received"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketClaimed       EventType = "ticket_claimed"
	EventTicketReassigned    EventType = "ticket_reassigned"
	EventTicketDeleted       EventType = "ticket_deleted"
)

// Actor encapsulates who triggered an event: a staff agent for mutations,
// a platform for intake.
type Actor struct {
	AgentID  *int64  `json:"agent_id,omitempty"`
	Platform *string `json:"platform,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  int64       `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketReceivedPayload payload.
type TicketReceivedPayload struct {
	Platform string                `json:"platform"`
	Priority domain.TicketPriority `json:"priority"`
	Subject  string                `json:"subject"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketClaimedPayload payload.
type TicketClaimedPayload struct {
	AgentID int64 `json:"agent_id"`
}

// TicketReassignedPayload payload.
type TicketReassignedPayload struct {
	OldAgentID *int64 `json:"old_agent_id,omitempty"`
	NewAgentID *int64 `json:"new_agent_id,omitempty"`
}

// TicketDeletedPayload payload.
type TicketDeletedPayload struct {
	Subject string `json:"subject"`
}
