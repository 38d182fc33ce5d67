package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-central/ticket-hub/internal/api/dto"
	"github.com/helpdesk-central/ticket-hub/internal/service"
	apperrors "github.com/helpdesk-central/ticket-hub/pkg/util"
)

// AuthHandler serves staff login and password management.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.NewValidationError("username and password required", nil)
	}

	agent, token, expiresAt, err := h.auth.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Agent:     dto.NewAgentResponse(agent),
	}})
}

// ChangePassword POST /staff/password/change.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	principal, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.NewPassword == "" {
		return apperrors.NewValidationError("new password required", nil)
	}
	if err := h.auth.ChangePassword(c.UserContext(), principal.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"changed": true}})
}
