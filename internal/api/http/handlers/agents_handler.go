package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-central/ticket-hub/internal/api/dto"
	"github.com/helpdesk-central/ticket-hub/internal/repository"
	"github.com/helpdesk-central/ticket-hub/internal/service"
	apperrors "github.com/helpdesk-central/ticket-hub/pkg/util"
)

// AgentsHandler serves the administrative agent directory.
type AgentsHandler struct {
	auth *service.AuthService
}

// NewAgentsHandler constructs handler.
func NewAgentsHandler(auth *service.AuthService) *AgentsHandler {
	return &AgentsHandler{auth: auth}
}

// List GET /admin/agents.
func (h *AgentsHandler) List(c *fiber.Ctx) error {
	principal, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	filter := repository.AgentFilter{
		Limit:  parseInt(c.Query("page_size"), 50),
		Offset: (parseInt(c.Query("page"), 1) - 1) * parseInt(c.Query("page_size"), 50),
	}
	if privileged := c.Query("privileged"); privileged != "" {
		val := privileged == "true" || privileged == "1"
		filter.Privileged = &val
	}
	agents, err := h.auth.ListAgents(c.UserContext(), principal, filter)
	if err != nil {
		return err
	}
	items := make([]dto.AgentResponse, 0, len(agents))
	for i := range agents {
		items = append(items, dto.NewAgentResponse(&agents[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Create POST /admin/agents.
func (h *AgentsHandler) Create(c *fiber.Ctx) error {
	principal, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateAgentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	agent, err := h.auth.CreateAgent(c.UserContext(), principal, service.CreateAgentInput{
		Username:   req.Username,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Password:   req.Password,
		Privileged: req.Privileged,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewAgentResponse(agent)})
}

// Delete DELETE /admin/agents/:id.
func (h *AgentsHandler) Delete(c *fiber.Ctx) error {
	principal, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	agentID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || agentID <= 0 {
		return apperrors.NewValidationError("invalid agent id", nil)
	}
	if err := h.auth.DeleteAgent(c.UserContext(), principal, agentID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
