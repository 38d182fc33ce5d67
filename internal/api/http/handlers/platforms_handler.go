package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-central/ticket-hub/internal/api/dto"
	"github.com/helpdesk-central/ticket-hub/internal/service"
	apperrors "github.com/helpdesk-central/ticket-hub/pkg/util"
)

// PlatformsHandler serves administrative platform credential management.
type PlatformsHandler struct {
	platforms *service.PlatformService
}

// NewPlatformsHandler constructs handler.
func NewPlatformsHandler(platforms *service.PlatformService) *PlatformsHandler {
	return &PlatformsHandler{platforms: platforms}
}

// List GET /admin/platforms.
func (h *PlatformsHandler) List(c *fiber.Ctx) error {
	principal, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	platforms, err := h.platforms.ListPlatforms(c.UserContext(), principal)
	if err != nil {
		return err
	}
	items := make([]dto.PlatformResponse, 0, len(platforms))
	for i := range platforms {
		items = append(items, dto.NewPlatformResponse(&platforms[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Create POST /admin/platforms.
func (h *PlatformsHandler) Create(c *fiber.Ctx) error {
	principal, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreatePlatformRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	platform, err := h.platforms.RegisterPlatform(c.UserContext(), principal, req.Name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.PlatformCreatedResponse{
		PlatformResponse: dto.NewPlatformResponse(platform),
		APIKey:           platform.APIKey,
	}})
}

// Delete DELETE /admin/platforms/:id.
func (h *PlatformsHandler) Delete(c *fiber.Ctx) error {
	principal, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	platformID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || platformID <= 0 {
		return apperrors.NewValidationError("invalid platform id", nil)
	}
	if err := h.platforms.RevokePlatform(c.UserContext(), principal, platformID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
