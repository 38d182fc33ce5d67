package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/helpdesk-central/ticket-hub/internal/domain"
	"github.com/helpdesk-central/ticket-hub/internal/events"
	"github.com/helpdesk-central/ticket-hub/internal/policy"
	"github.com/helpdesk-central/ticket-hub/internal/repository"
	apperrors "github.com/helpdesk-central/ticket-hub/pkg/util"
)

// TicketService coordinates staff-facing ticket workflows: listing, detail,
// mutation, deletion and history. Every operation runs through the
// visibility policy first; the status machine and assignment policy gate
// each mutation.
type TicketService struct {
	tickets    repository.TicketRepository
	agents     repository.AgentRepository
	history    repository.TicketHistoryRepository
	dispatcher events.Dispatcher
}

// TicketDependencies bundles repositories for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	AgentRepo   repository.AgentRepository
	HistoryRepo repository.TicketHistoryRepository
	Dispatcher  events.Dispatcher
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		agents:     deps.AgentRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
	}
}

// TicketListFilter describes staff listing parameters.
type TicketListFilter struct {
	Statuses      []domain.TicketStatus
	Priorities    []domain.TicketPriority
	Platform      *string
	Unassigned    *bool
	SearchTerm    *string
	SubmittedFrom *time.Time
	SubmittedTo   *time.Time
	Limit         int
	Offset        int
}

// TicketPatch is a partial ticket update. Status and Agent are open to every
// staff principal (subject to policy); the remaining fields are
// administrator-only. SubmissionDate and PlatformName have no patch fields,
// they are immutable for everyone.
type TicketPatch struct {
	Status    *domain.TicketStatus
	Agent     policy.AgentPatch
	FirstName *string
	LastName  *string
	Email     *string
	Subject   *string
	Message   *string
}

func (p TicketPatch) touchesRestricted() bool {
	return p.FirstName != nil || p.LastName != nil || p.Email != nil || p.Subject != nil || p.Message != nil
}

// ListTickets returns tickets visible to the principal, most recent first.
func (s *TicketService) ListTickets(ctx context.Context, principal domain.Principal, filter TicketListFilter) ([]domain.Ticket, error) {
	repoFilter := repository.TicketFilter{
		Statuses:      filter.Statuses,
		Priorities:    filter.Priorities,
		Platform:      filter.Platform,
		Unassigned:    filter.Unassigned,
		SearchTerm:    filter.SearchTerm,
		SubmittedFrom: filter.SubmittedFrom,
		SubmittedTo:   filter.SubmittedTo,
		Limit:         filter.Limit,
		Offset:        filter.Offset,
	}
	if !principal.Privileged {
		repoFilter.VisibleToAgent = &principal.ID
	}
	tickets, err := s.tickets.List(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// GetTicket fetches a ticket the principal may see. An existing but
// invisible ticket yields the same not-found as a missing one.
func (s *TicketService) GetTicket(ctx context.Context, principal domain.Principal, ticketID int64) (*domain.Ticket, error) {
	return s.getVisible(ctx, principal, ticketID)
}

// StatusOptions lists the statuses the principal may set on the ticket,
// derived from the same table that enforces transitions.
func (s *TicketService) StatusOptions(ctx context.Context, principal domain.Principal, ticketID int64) ([]domain.TicketStatus, error) {
	ticket, err := s.getVisible(ctx, principal, ticketID)
	if err != nil {
		return nil, err
	}
	return policy.AllowedStatuses(ticket.Status, principal.Privileged), nil
}

// UpdateTicket validates and applies a partial update. All policy checks run
// before the single conditional write; a failed check aborts the whole
// mutation. The write is guarded by a compare-and-set on the agent observed
// at read time so concurrent claims cannot both succeed.
func (s *TicketService) UpdateTicket(ctx context.Context, principal domain.Principal, ticketID int64, patch TicketPatch) (*domain.Ticket, error) {
	// On a CAS miss the state is re-read once and the policies re-evaluated:
	// the loser of a claim race then sees the post-claim state and receives
	// a reassignment denial, or not-found once the ticket left its scope.
	for attempt := 0; attempt < 2; attempt++ {
		ticket, err := s.getVisible(ctx, principal, ticketID)
		if err != nil {
			return nil, err
		}

		if !principal.Privileged && patch.touchesRestricted() {
			return nil, apperrors.NewForbidden("only status and agent may be changed")
		}

		nextStatus := ticket.Status
		if patch.Status != nil {
			if err := policy.ValidateTransition(ticket.Status, *patch.Status, principal.Privileged); err != nil {
				return nil, err
			}
			nextStatus = *patch.Status
		}

		newAgent, err := policy.ResolveAssignment(ticket, principal, patch.Agent, nextStatus)
		if err != nil {
			return nil, err
		}
		if err := s.checkAgentExists(ctx, principal, newAgent); err != nil {
			return nil, err
		}

		observedAgent := ticket.AgentID
		oldStatus := ticket.Status

		ticket.Status = nextStatus
		ticket.AgentID = newAgent
		if principal.Privileged {
			applyEditableFields(ticket, patch)
		}

		if err := s.tickets.Update(ctx, ticket, observedAgent); err != nil {
			if errors.Is(err, repository.ErrStaleAgent) {
				continue
			}
			return nil, apperrors.MapError(err)
		}

		s.recordMutation(ctx, principal, ticket, oldStatus, observedAgent)
		s.publishMutation(ctx, principal, ticket, oldStatus, observedAgent)
		return ticket, nil
	}
	return nil, apperrors.NewConflict("ticket changed concurrently, retry", map[string]any{
		"ticket_id": ticketID,
	})
}

// DeleteTicket removes a ticket. Administrative only; regular agents never
// delete tickets.
func (s *TicketService) DeleteTicket(ctx context.Context, principal domain.Principal, ticketID int64) error {
	if !principal.Privileged {
		return apperrors.NewForbidden("administrator access required")
	}
	ticket, err := s.getVisible(ctx, principal, ticketID)
	if err != nil {
		return err
	}
	if err := s.tickets.Delete(ctx, ticketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return apperrors.MapError(err)
	}
	s.publish(ctx, events.Event{
		Type:     events.EventTicketDeleted,
		TicketID: ticketID,
		Actor:    events.Actor{AgentID: &principal.ID},
		Payload:  events.TicketDeletedPayload{Subject: ticket.Subject},
	})
	return nil
}

// ListHistory returns the audit trail for a ticket. Administrative only.
func (s *TicketService) ListHistory(ctx context.Context, principal domain.Principal, ticketID int64) ([]domain.TicketHistory, error) {
	if !principal.Privileged {
		return nil, apperrors.NewForbidden("administrator access required")
	}
	if _, err := s.getVisible(ctx, principal, ticketID); err != nil {
		return nil, err
	}
	entries, err := s.history.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

func (s *TicketService) getVisible(ctx context.Context, principal domain.Principal, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	if !policy.Visible(principal, ticket) {
		// Same shape as a missing ticket: visibility must not leak existence.
		return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}
	return ticket, nil
}

// checkAgentExists verifies an administrator-requested assignee. Self-claims
// need no lookup, the actor is authenticated.
func (s *TicketService) checkAgentExists(ctx context.Context, principal domain.Principal, agentID *int64) error {
	if agentID == nil || *agentID == principal.ID {
		return nil
	}
	if _, err := s.agents.GetByID(ctx, *agentID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewValidationError("unknown agent", map[string]any{"agent_id": *agentID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

func applyEditableFields(ticket *domain.Ticket, patch TicketPatch) {
	if patch.FirstName != nil {
		ticket.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		ticket.LastName = *patch.LastName
	}
	if patch.Email != nil {
		ticket.Email = *patch.Email
	}
	if patch.Subject != nil {
		ticket.Subject = *patch.Subject
	}
	if patch.Message != nil {
		ticket.Message = *patch.Message
	}
}

func (s *TicketService) recordMutation(ctx context.Context, principal domain.Principal, ticket *domain.Ticket, oldStatus domain.TicketStatus, oldAgent *int64) {
	if s.history == nil {
		return
	}
	if oldStatus != ticket.Status {
		_ = s.history.Create(ctx, &domain.TicketHistory{
			TicketID:   ticket.ID,
			ChangedBy:  &principal.ID,
			ChangeType: domain.ChangeTypeStatus,
			OldValue:   map[string]any{"status": oldStatus},
			NewValue:   map[string]any{"status": ticket.Status},
		})
	}
	if !agentEqual(oldAgent, ticket.AgentID) {
		_ = s.history.Create(ctx, &domain.TicketHistory{
			TicketID:   ticket.ID,
			ChangedBy:  &principal.ID,
			ChangeType: domain.ChangeTypeAgent,
			OldValue:   map[string]any{"agent_id": oldAgent},
			NewValue:   map[string]any{"agent_id": ticket.AgentID},
		})
	}
}

func (s *TicketService) publishMutation(ctx context.Context, principal domain.Principal, ticket *domain.Ticket, oldStatus domain.TicketStatus, oldAgent *int64) {
	if oldStatus != ticket.Status {
		s.publish(ctx, events.Event{
			Type:     events.EventTicketStatusChanged,
			TicketID: ticket.ID,
			Actor:    events.Actor{AgentID: &principal.ID},
			Payload: events.TicketStatusChangedPayload{
				OldStatus: oldStatus,
				NewStatus: ticket.Status,
			},
		})
	}
	if !agentEqual(oldAgent, ticket.AgentID) {
		if oldAgent == nil && ticket.AssignedTo(principal.ID) {
			s.publish(ctx, events.Event{
				Type:     events.EventTicketClaimed,
				TicketID: ticket.ID,
				Actor:    events.Actor{AgentID: &principal.ID},
				Payload:  events.TicketClaimedPayload{AgentID: principal.ID},
			})
			return
		}
		s.publish(ctx, events.Event{
			Type:     events.EventTicketReassigned,
			TicketID: ticket.ID,
			Actor:    events.Actor{AgentID: &principal.ID},
			Payload: events.TicketReassignedPayload{
				OldAgentID: oldAgent,
				NewAgentID: ticket.AgentID,
			},
		})
	}
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now()
	_ = s.dispatcher.Publish(ctx, event)
}

func agentEqual(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
