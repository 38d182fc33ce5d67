package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-central/ticket-hub/internal/api/dto"
	"github.com/helpdesk-central/ticket-hub/internal/auth"
	"github.com/helpdesk-central/ticket-hub/internal/service"
	apperrors "github.com/helpdesk-central/ticket-hub/pkg/util"
)

// IntakeHandler receives complaint submissions from external platforms.
type IntakeHandler struct {
	intake *service.IntakeService
}

// NewIntakeHandler constructs handler.
func NewIntakeHandler(intake *service.IntakeService) *IntakeHandler {
	return &IntakeHandler{intake: intake}
}

// Submit POST /api/tickets/submit.
func (h *IntakeHandler) Submit(c *fiber.Ctx) error {
	platform, ok := auth.PlatformFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("platform identity not determined")
	}

	var req dto.SubmitTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.intake.Submit(c.UserContext(), platform, service.IntakeInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Subject:   req.Subject,
		Message:   req.Message,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}
