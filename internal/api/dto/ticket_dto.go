package dto

import (
	"encoding/json"
	"time"

	"github.com/helpdesk-central/ticket-hub/internal/domain"
)

// SubmitTicketRequest is the intake payload sent by an authenticated
// platform. Platform, status, priority and submission date are never part of
// the payload; the server determines them all.
type SubmitTicketRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
}

// OptionalInt64 distinguishes an absent JSON field from an explicit null.
// Administrators clear a ticket's agent by sending "agent_id": null.
type OptionalInt64 struct {
	Set   bool
	Value *int64
}

// UnmarshalJSON is only invoked when the field is present, which is what
// flips Set.
func (o *OptionalInt64) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var v int64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// UpdateTicketRequest is a partial staff update. Fields beyond status and
// agent_id are accepted only from administrators.
type UpdateTicketRequest struct {
	Status    *domain.TicketStatus `json:"status,omitempty"`
	AgentID   OptionalInt64        `json:"agent_id"`
	FirstName *string              `json:"first_name,omitempty"`
	LastName  *string              `json:"last_name,omitempty"`
	Email     *string              `json:"email,omitempty"`
	Subject   *string              `json:"subject,omitempty"`
	Message   *string              `json:"message,omitempty"`
}

// TicketResponse is the full ticket representation.
type TicketResponse struct {
	ID             int64                 `json:"id"`
	FirstName      string                `json:"first_name"`
	LastName       string                `json:"last_name"`
	Email          string                `json:"email"`
	Subject        string                `json:"subject"`
	Message        string                `json:"message"`
	SubmissionDate time.Time             `json:"submission_date"`
	PlatformName   string                `json:"platform_name"`
	Status         domain.TicketStatus   `json:"status"`
	Priority       domain.TicketPriority `json:"priority"`
	AgentID        *int64                `json:"agent_id"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:             t.ID,
		FirstName:      t.FirstName,
		LastName:       t.LastName,
		Email:          t.Email,
		Subject:        t.Subject,
		Message:        t.Message,
		SubmissionDate: t.SubmissionDate,
		PlatformName:   t.PlatformName,
		Status:         t.Status,
		Priority:       t.Priority,
		AgentID:        t.AgentID,
	}
}

// StatusOptionsResponse lists the statuses the caller may set on a ticket.
type StatusOptionsResponse struct {
	Current domain.TicketStatus   `json:"current"`
	Options []domain.TicketStatus `json:"options"`
}

// HistoryEntryResponse is one audit trail entry.
type HistoryEntryResponse struct {
	ID         int64             `json:"id"`
	TicketID   int64             `json:"ticket_id"`
	ChangedBy  *int64            `json:"changed_by"`
	ChangeType domain.ChangeType `json:"change_type"`
	OldValue   map[string]any    `json:"old_value"`
	NewValue   map[string]any    `json:"new_value"`
	CreatedAt  time.Time         `json:"created_at"`
}

// NewHistoryEntryResponse maps a history entry.
func NewHistoryEntryResponse(h *domain.TicketHistory) HistoryEntryResponse {
	return HistoryEntryResponse{
		ID:         h.ID,
		TicketID:   h.TicketID,
		ChangedBy:  h.ChangedBy,
		ChangeType: h.ChangeType,
		OldValue:   h.OldValue,
		NewValue:   h.NewValue,
		CreatedAt:  h.CreatedAt,
	}
}
