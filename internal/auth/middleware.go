package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/helpdesk-central/ticket-hub/internal/domain"
	"github.com/helpdesk-central/ticket-hub/internal/repository"
	apperrors "github.com/helpdesk-central/ticket-hub/pkg/util"
)

const principalKey = "auth_principal"

// StaffMiddleware validates bearer tokens and loads the staff principal.
type StaffMiddleware struct {
	tokens *TokenManager
	agents repository.AgentRepository
}

// NewStaffMiddleware constructs middleware.
func NewStaffMiddleware(tokens *TokenManager, agents repository.AgentRepository) *StaffMiddleware {
	return &StaffMiddleware{tokens: tokens, agents: agents}
}

// Handle enforces authentication for staff routes. Every policy decision
// downstream consumes the Principal set here.
func (m *StaffMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	agent, err := m.agents.GetByID(c.Context(), claims.AgentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("agent not found")
		}
		return apperrors.MapError(err)
	}
	if !agent.Active {
		return apperrors.NewUnauthorized("agent deactivated")
	}

	principal := agent.Principal()
	c.Locals(principalKey, &principal)
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated staff identity.
func PrincipalFromContext(c *fiber.Ctx) (domain.Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return domain.Principal{}, false
	}
	principal, ok := val.(*domain.Principal)
	if !ok {
		return domain.Principal{}, false
	}
	return *principal, true
}
