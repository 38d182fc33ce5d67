package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-central/ticket-hub/internal/api/dto"
	"github.com/helpdesk-central/ticket-hub/internal/auth"
	"github.com/helpdesk-central/ticket-hub/internal/domain"
	"github.com/helpdesk-central/ticket-hub/internal/policy"
	"github.com/helpdesk-central/ticket-hub/internal/service"
	apperrors "github.com/helpdesk-central/ticket-hub/pkg/util"
)

// TicketsHandler serves the staff ticket console endpoints.
type TicketsHandler struct {
	tickets *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets}
}

// List GET /staff/tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	principal, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	filter := parseTicketFilter(c)
	tickets, err := h.tickets.ListTickets(c.UserContext(), principal, filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.NewTicketResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /staff/tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	principal, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	ticketID, err := parseTicketID(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.GetTicket(c.UserContext(), principal, ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// StatusOptions GET /staff/tickets/:id/status-options.
func (h *TicketsHandler) StatusOptions(c *fiber.Ctx) error {
	principal, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	ticketID, err := parseTicketID(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.GetTicket(c.UserContext(), principal, ticketID)
	if err != nil {
		return err
	}
	options, err := h.tickets.StatusOptions(c.UserContext(), principal, ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.StatusOptionsResponse{
		Current: ticket.Status,
		Options: options,
	}})
}

// Update PATCH /staff/tickets/:id.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	principal, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	ticketID, err := parseTicketID(c)
	if err != nil {
		return err
	}

	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.UpdateTicket(c.UserContext(), principal, ticketID, service.TicketPatch{
		Status:    req.Status,
		Agent:     policy.AgentPatch{Set: req.AgentID.Set, AgentID: req.AgentID.Value},
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Subject:   req.Subject,
		Message:   req.Message,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// Delete DELETE /staff/tickets/:id. Administrative.
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	principal, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	ticketID, err := parseTicketID(c)
	if err != nil {
		return err
	}
	if err := h.tickets.DeleteTicket(c.UserContext(), principal, ticketID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// History GET /staff/tickets/:id/history. Administrative.
func (h *TicketsHandler) History(c *fiber.Ctx) error {
	principal, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	ticketID, err := parseTicketID(c)
	if err != nil {
		return err
	}
	entries, err := h.tickets.ListHistory(c.UserContext(), principal, ticketID)
	if err != nil {
		return err
	}
	items := make([]dto.HistoryEntryResponse, 0, len(entries))
	for i := range entries {
		items = append(items, dto.NewHistoryEntryResponse(&entries[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func staffPrincipal(c *fiber.Ctx) (domain.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return domain.Principal{}, apperrors.NewUnauthorized("authentication required")
	}
	return principal, nil
}

func parseTicketID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid ticket id", nil)
	}
	return id, nil
}

func parseTicketFilter(c *fiber.Ctx) service.TicketListFilter {
	filter := service.TicketListFilter{}
	if statuses := c.Query("status"); statuses != "" {
		for _, part := range strings.Split(statuses, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.TrimSpace(part)))
		}
	}
	if priorities := c.Query("priority"); priorities != "" {
		for _, part := range strings.Split(priorities, ",") {
			filter.Priorities = append(filter.Priorities, domain.TicketPriority(strings.TrimSpace(part)))
		}
	}
	if platform := c.Query("platform"); platform != "" {
		filter.Platform = &platform
	}
	if unassigned := c.Query("unassigned"); unassigned != "" {
		val := unassigned == "true" || unassigned == "1"
		filter.Unassigned = &val
	}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}
	if from := parseTime(c.Query("submitted_from")); from != nil {
		filter.SubmittedFrom = from
	}
	if to := parseTime(c.Query("submitted_to")); to != nil {
		filter.SubmittedTo = to
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseTime(value string) *time.Time {
	if value == "" {
		return nil
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return &ts
	}
	if ts, err := time.Parse("2006-01-02", value); err == nil {
		return &ts
	}
	return nil
}

func parseInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
