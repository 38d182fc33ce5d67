package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/helpdesk-central/ticket-hub/pkg/util"
)

// RequireStaff ensures a staff principal is authenticated.
func RequireStaff() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}

// RequirePrivileged ensures the caller is an administrator. The caller is
// authenticated at this point, so the failure is a plain forbidden.
func RequirePrivileged() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !principal.Privileged {
			return apperrors.NewForbidden("administrator access required")
		}
		return c.Next()
	}
}
