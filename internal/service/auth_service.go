package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/helpdesk-central/ticket-hub/internal/auth"
	"github.com/helpdesk-central/ticket-hub/internal/config"
	"github.com/helpdesk-central/ticket-hub/internal/domain"
	"github.com/helpdesk-central/ticket-hub/internal/repository"
	apperrors "github.com/helpdesk-central/ticket-hub/pkg/util"
)

// AuthService coordinates staff login and account management.
type AuthService struct {
	agents     repository.AgentRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	AgentRepo repository.AgentRepository
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		agents:     deps.AgentRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Login authenticates an agent and issues a bearer token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.Agent, string, time.Time, error) {
	agent, err := s.agents.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	if !agent.Active {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("agent deactivated")
	}
	if err := auth.ComparePassword(agent.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(agent.ID, agent.Privileged)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	return agent, token, exp, nil
}

// ChangePassword verifies the current password before updating to a new hash.
func (s *AuthService) ChangePassword(ctx context.Context, agentID int64, currentPassword, newPassword string) error {
	agent, err := s.agents.GetByID(ctx, agentID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if err := auth.ComparePassword(agent.PasswordHash, currentPassword); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.MapError(err)
	}
	agent.PasswordHash = hash
	return apperrors.MapError(s.agents.Update(ctx, agent))
}

// CreateAgentInput describes a new staff account.
type CreateAgentInput struct {
	Username   string
	FirstName  string
	LastName   string
	Email      string
	Password   string
	Privileged bool
}

// CreateAgent registers a staff account. Administrative only.
func (s *AuthService) CreateAgent(ctx context.Context, actor domain.Principal, input CreateAgentInput) (*domain.Agent, error) {
	if !actor.Privileged {
		return nil, apperrors.NewForbidden("administrator access required")
	}
	if strings.TrimSpace(input.Username) == "" || input.Password == "" {
		return nil, apperrors.NewValidationError("username and password required", nil)
	}
	if _, err := s.agents.GetByUsername(ctx, input.Username); err == nil {
		return nil, apperrors.NewConflict("username already taken", map[string]any{"username": input.Username})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	agent := &domain.Agent{
		Username:     strings.TrimSpace(input.Username),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		PasswordHash: hash,
		Privileged:   input.Privileged,
		Active:       true,
	}
	if err := s.agents.Create(ctx, agent); err != nil {
		return nil, apperrors.MapError(err)
	}
	return agent, nil
}

// ListAgents returns staff accounts. Administrative only.
func (s *AuthService) ListAgents(ctx context.Context, actor domain.Principal, filter repository.AgentFilter) ([]domain.Agent, error) {
	if !actor.Privileged {
		return nil, apperrors.NewForbidden("administrator access required")
	}
	agents, err := s.agents.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return agents, nil
}

// DeleteAgent removes a staff account. Tickets assigned to it revert to
// unassigned through the schema's weak reference. Administrative only.
func (s *AuthService) DeleteAgent(ctx context.Context, actor domain.Principal, agentID int64) error {
	if !actor.Privileged {
		return apperrors.NewForbidden("administrator access required")
	}
	if agentID == actor.ID {
		return apperrors.NewConflict("cannot delete own account", nil)
	}
	if err := s.agents.Delete(ctx, agentID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("agent", map[string]any{"agent_id": agentID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
